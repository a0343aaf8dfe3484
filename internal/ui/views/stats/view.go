package stats

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	reviewdto "cadence/internal/modules/review/dto"
	"cadence/internal/ui/components"
	"cadence/internal/ui/theme"
)

type Port interface {
	Stats(ctx context.Context, input reviewdto.StatsInput) (reviewdto.StatsOutput, error)
}

type LoadedMsg struct {
	Stats reviewdto.StatsOutput
	Err   error
}

type Model struct {
	port     Port
	viewport viewport.Model
	stats    reviewdto.StatsOutput
	err      error
	loaded   bool
	width    int
	height   int
}

func New(port Port) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Padding(1, 2)
	return Model{port: port, viewport: vp}
}

// Load refreshes the numbers for the current day.
func (m Model) Load() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.Stats(context.Background(), reviewdto.StatsInput{})
		return LoadedMsg{Stats: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height
		m.viewport.SetContent(m.render())
		return m, nil
	case LoadedMsg:
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.stats = msg.Stats
		}
		m.viewport.SetContent(m.render())
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m Model) render() string {
	if !m.loaded {
		return theme.Muted.Render("Loading stats…")
	}
	if m.err != nil {
		return theme.Late.Render("stats: " + m.err.Error())
	}
	s := m.stats
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Stats · "+s.Today) + "\n\n")

	cards := []string{
		card("streak", fmt.Sprintf("%d days", s.Streak)),
		card("completion", fmt.Sprintf("%.0f%%", s.CompletionRate*100)),
		card("reviewed", components.FormatDuration(s.ReviewedSeconds)),
		card("quiz", fmt.Sprintf("%.0f%%", s.QuizAccuracy*100)),
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n\n")

	sb.WriteString(fmt.Sprintf("%s %d   %s %d   %s %d   %s %d   %s %d\n\n",
		theme.Muted.Render("studied"), s.StudyEvents,
		theme.Muted.Render("done"), s.Completed,
		theme.Late.Render("overdue"), s.Overdue,
		theme.Hot.Render("today"), s.DueToday,
		theme.Muted.Render("upcoming"), s.Upcoming,
	))

	if len(s.Subjects) == 0 {
		sb.WriteString(theme.Muted.Render("No subjects yet"))
		return sb.String()
	}
	header := fmt.Sprintf("%-24s %8s %6s %6s %10s", "subject", "studied", "due", "done", "time")
	sb.WriteString(theme.Muted.Render(header) + "\n")
	for _, sub := range s.Subjects {
		sb.WriteString(fmt.Sprintf("%-24s %8d %6d %6d %10s\n",
			truncate(sub.SubjectName, 24), sub.StudyEvents, sub.ReviewsDue, sub.ReviewsDone,
			components.FormatDuration(sub.ReviewedSeconds)))
	}
	return sb.String()
}

var cardStyle = theme.Pane.Padding(0, 2).MarginRight(1)

func card(label, value string) string {
	return cardStyle.Render(theme.Muted.Render(label) + "\n" + theme.Hot.Render(value))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
