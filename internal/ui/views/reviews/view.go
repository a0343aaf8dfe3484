package reviews

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	reviewdto "cadence/internal/modules/review/dto"
	"cadence/internal/ui/components"
	"cadence/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Dashboard(ctx context.Context, input reviewdto.DashboardInput) (reviewdto.DashboardOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// DashboardLoadedMsg feeds both the Today and Completed tabs.
type DashboardLoadedMsg struct {
	Dashboard reviewdto.DashboardOutput
	Err       error
}

// Load fetches the dashboard for the current day.
func Load(port Port) tea.Cmd {
	return func() tea.Msg {
		out, err := port.Dashboard(context.Background(), reviewdto.DashboardInput{})
		return DashboardLoadedMsg{Dashboard: out, Err: err}
	}
}

// ─── mode ────────────────────────────────────────────────────────────────────

type Mode int

const (
	ModeToday Mode = iota
	ModeCompleted
)

func (m Mode) title() string {
	if m == ModeCompleted {
		return "Completed"
	}
	return "Today"
}

// ─── list item ───────────────────────────────────────────────────────────────

type reviewItem struct {
	review reviewdto.ReviewOutput
	bucket string
}

func (i reviewItem) Title() string {
	return i.review.SubjectName + ": " + i.review.Topic
}

func (i reviewItem) Description() string {
	switch i.bucket {
	case "overdue":
		return fmt.Sprintf("overdue · due %s · %dd late", i.review.DueAt, i.review.DaysLate)
	case "completed":
		return fmt.Sprintf("done · %s", components.FormatDuration(i.review.DurationSeconds)) + quizSuffix(i.review)
	}
	return fmt.Sprintf("%s · due %s · day %d", i.bucket, i.review.DueAt, i.review.Offset)
}

func (i reviewItem) FilterValue() string { return i.review.SubjectName + " " + i.review.Topic }

func quizSuffix(r reviewdto.ReviewOutput) string {
	if r.QuizCorrect == nil || r.QuizTotal == nil {
		return ""
	}
	return fmt.Sprintf(" · quiz %d/%d", *r.QuizCorrect, *r.QuizTotal)
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	mode    Mode
	list    list.Model
	preview viewport.Model
	spinner spinner.Model
	today   string
	loading bool
	err     error
	width   int
	height  int
}

func New(mode Mode) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = mode.title()
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		mode:    mode,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case DashboardLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.list.Title = m.mode.title() + " · " + msg.Err.Error()
			return m, nil
		}
		m.today = msg.Dashboard.Today
		m.list.Title = m.mode.title() + " · " + m.today
		cmds = append(cmds, m.list.SetItems(m.itemsOf(msg.Dashboard)))
		m.preview.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.preview.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading reviews…")
	}

	listW := m.width * 5 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(max(m.height-2, 1)).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Selected returns the highlighted review, if any.
func (m Model) Selected() (reviewdto.ReviewOutput, bool) {
	if item, ok := m.list.SelectedItem().(reviewItem); ok {
		return item.review, true
	}
	return reviewdto.ReviewOutput{}, false
}

// Len is the number of listed reviews.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) itemsOf(d reviewdto.DashboardOutput) []list.Item {
	var items []list.Item
	add := func(bucket string, reviews []reviewdto.ReviewOutput) {
		for _, r := range reviews {
			items = append(items, reviewItem{review: r, bucket: bucket})
		}
	}
	if m.mode == ModeCompleted {
		add("completed", d.Completed)
		return items
	}
	add("overdue", d.Overdue)
	add("today", d.DueToday)
	add("upcoming", d.Upcoming)
	return items
}

func (m *Model) resize() {
	listW := m.width * 5 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = max(detailW-4, 0)
	m.preview.Height = max(m.height-4, 0)
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(reviewItem)
	if !ok {
		if m.mode == ModeCompleted {
			return theme.Muted.Render("Nothing completed yet")
		}
		return theme.Muted.Render("Nothing due. Log a study session with :study:log")
	}
	r := item.review
	status := lipgloss.NewStyle().Foreground(theme.StatusColor(item.bucket)).Render(item.bucket)

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(r.Topic) + "\n\n")
	sb.WriteString(theme.Muted.Render("subject: ") + r.SubjectName + "\n")
	sb.WriteString(theme.Muted.Render("status:  ") + status + "\n")
	sb.WriteString(theme.Muted.Render("studied: ") + r.StudiedAt + "\n")
	sb.WriteString(fmt.Sprintf("%s%s (day %d)\n", theme.Muted.Render("due:     "), r.DueAt, r.Offset))
	if r.DaysLate > 0 {
		sb.WriteString(theme.Muted.Render("late:    ") + theme.Late.Render(fmt.Sprintf("%d days", r.DaysLate)) + "\n")
	}
	if r.CompletedAt != nil {
		sb.WriteString(theme.Muted.Render("done:    ") + r.CompletedAt.Local().Format("2006-01-02 15:04") + "\n")
		sb.WriteString(theme.Muted.Render("time:    ") + components.FormatDuration(r.DurationSeconds))
		if r.PausedSeconds > 0 {
			sb.WriteString(theme.Muted.Render(" (paused " + components.FormatDuration(r.PausedSeconds) + ")"))
		}
		sb.WriteString("\n")
	}
	if r.QuizCorrect != nil && r.QuizTotal != nil {
		sb.WriteString(fmt.Sprintf("%s%d/%d\n", theme.Muted.Render("quiz:    "), *r.QuizCorrect, *r.QuizTotal))
	}
	if m.mode == ModeToday {
		sb.WriteString("\n" + theme.Muted.Render("enter: open  t: start timer  d: defer a day"))
	} else {
		sb.WriteString("\n" + theme.Muted.Render("enter: open"))
	}
	return sb.String()
}

// Find returns the listed review with the given id.
func (m Model) Find(id string) (reviewdto.ReviewOutput, bool) {
	for _, it := range m.list.Items() {
		if item, ok := it.(reviewItem); ok && item.review.ID == id {
			return item.review, true
		}
	}
	return reviewdto.ReviewOutput{}, false
}
