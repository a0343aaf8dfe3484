package timer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	reviewdto "cadence/internal/modules/review/dto"
	timerdto "cadence/internal/modules/timer/dto"
	"cadence/internal/ui/components"
	"cadence/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type Port interface {
	Start(ctx context.Context, input timerdto.StartInput) (timerdto.CommandOutput, error)
	Pause(ctx context.Context) (timerdto.CommandOutput, error)
	Resume(ctx context.Context) (timerdto.CommandOutput, error)
	RequestFinish(ctx context.Context) (timerdto.CommandOutput, error)
	CancelFinish(ctx context.Context) (timerdto.CommandOutput, error)
	ConfirmFinish(ctx context.Context) (timerdto.ConfirmOutput, error)
	Commit(ctx context.Context, input timerdto.CommitInput) (timerdto.StateOutput, error)
}

type NotePort interface {
	GetReview(ctx context.Context, id string) (reviewdto.ReviewDetailOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// StateMsg carries a timer state change from the event bridge.
type StateMsg struct{ State timerdto.StateOutput }

// FinishedMsg carries a confirmed finish that still needs saving.
type FinishedMsg struct{ Pending timerdto.PendingOutput }

type DetailLoadedMsg struct {
	Detail reviewdto.ReviewDetailOutput
	Err    error
}

// CommandDoneMsg reports the outcome of a timer command issued by the dialog.
type CommandDoneMsg struct {
	Action string
	State  timerdto.StateOutput
	Err    error
}

// CommittedMsg is sent once a finished review has been saved.
type CommittedMsg struct {
	ReviewID string
	Err      error
}

// ─── stage ───────────────────────────────────────────────────────────────────

type stage int

const (
	stageIdle stage = iota
	stageTiming
	stageConfirm
	stageQuiz
)

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the full-screen review dialog: a large timer, the finish
// confirmation, the quiz form and the rendered journal note.
type Model struct {
	port  Port
	notes NotePort

	open     bool
	reviewID string
	detail   reviewdto.ReviewDetailOutput
	note     viewport.Model
	renderer *glamour.TermRenderer

	state   timerdto.StateOutput
	stateAt time.Time
	now     time.Time

	quiz  [2]textinput.Model
	focus int

	busy   bool
	err    string
	width  int
	height int
}

func New(port Port, notes NotePort) Model {
	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
	}

	var quiz [2]textinput.Model
	for i, placeholder := range []string{"correct", "total"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 4
		ti.Width = 8
		quiz[i] = ti
	}

	return Model{
		port:  port,
		notes: notes,
		note:  vp,
		quiz:  quiz,
		now:   time.Now(),
	}
}

func (m Model) Visible() bool    { return m.open }
func (m Model) ReviewID() string { return m.reviewID }

// Open shows the dialog for a review and loads its note.
func (m *Model) Open(reviewID string) tea.Cmd {
	if m.open && m.reviewID == reviewID {
		return nil
	}
	m.open = true
	m.reviewID = reviewID
	m.detail = reviewdto.ReviewDetailOutput{}
	m.note.SetContent(theme.Muted.Render("Loading note…"))
	m.err = ""
	m.resetQuiz()
	notes := m.notes
	return func() tea.Msg {
		detail, err := notes.GetReview(context.Background(), reviewID)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}

func (m *Model) Close() {
	m.open = false
	m.busy = false
	m.err = ""
	for i := range m.quiz {
		m.quiz[i].Blur()
	}
}

// SetState records the latest timer state and when it was observed.
func (m *Model) SetState(state timerdto.StateOutput, at time.Time) {
	prev := m.stage()
	m.state = state
	m.stateAt = at
	if m.stage() == stageQuiz && prev != stageQuiz {
		m.resetQuiz()
	}
}

func (m *Model) SetNow(now time.Time) { m.now = now }

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.note.Width = max(w-4, 0)
	m.note.Height = max(h-m.headerHeight(), 1)
	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(max(w-6, 20)),
	)
	m.note.SetContent(m.renderNote())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		if msg.Detail.Review.ID != "" && msg.Detail.Review.ID != m.reviewID {
			return m, nil
		}
		if msg.Err != nil {
			m.err = "note: " + msg.Err.Error()
			m.note.SetContent("")
			return m, nil
		}
		m.detail = msg.Detail
		m.note.SetContent(m.renderNote())
		return m, nil

	case CommandDoneMsg:
		m.busy = false
		if msg.Err != nil {
			m.err = msg.Action + ": " + msg.Err.Error()
			return m, nil
		}
		m.err = ""
		m.SetState(msg.State, m.now)
		return m, nil

	case CommittedMsg:
		m.busy = false
		if msg.Err != nil {
			m.err = "save: " + msg.Err.Error()
			return m, nil
		}
		m.Close()
		return m, nil

	case tea.KeyMsg:
		if !m.open {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := msg.String()
	if m.busy && k != "esc" {
		return m, nil
	}
	switch m.stage() {
	case stageIdle:
		switch k {
		case "s", "enter":
			return m.run("start", func(ctx context.Context) (timerdto.StateOutput, error) {
				out, err := m.port.Start(ctx, timerdto.StartInput{ReviewID: m.reviewID})
				return out.State, err
			})
		case "esc", "q":
			m.Close()
			return m, nil
		}

	case stageTiming:
		switch k {
		case " ", "p":
			if m.state.IsPaused {
				return m.run("resume", command(m.port.Resume))
			}
			return m.run("pause", command(m.port.Pause))
		case "f":
			return m.run("finish", command(m.port.RequestFinish))
		case "esc", "q":
			m.Close()
			return m, nil
		}

	case stageConfirm:
		switch k {
		case "y", "enter":
			return m.run("confirm", func(ctx context.Context) (timerdto.StateOutput, error) {
				out, err := m.port.ConfirmFinish(ctx)
				return out.State, err
			})
		case "n", "esc":
			return m.run("cancel", command(m.port.CancelFinish))
		}
		return m, nil

	case stageQuiz:
		switch k {
		case "tab", "shift+tab":
			m.quiz[m.focus].Blur()
			m.focus = 1 - m.focus
			return m, m.quiz[m.focus].Focus()
		case "enter":
			return m.commit()
		case "esc":
			return m.run("reopen", command(m.port.CancelFinish))
		}
		var cmd tea.Cmd
		m.quiz[m.focus], cmd = m.quiz[m.focus].Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.note, cmd = m.note.Update(msg)
	return m, cmd
}

func (m Model) commit() (Model, tea.Cmd) {
	correct, total, err := parseQuiz(m.quiz[0].Value(), m.quiz[1].Value())
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.busy = true
	m.err = ""
	port, reviewID := m.port, m.reviewID
	return m, func() tea.Msg {
		_, err := port.Commit(context.Background(), timerdto.CommitInput{
			ReviewID:    reviewID,
			QuizCorrect: correct,
			QuizTotal:   total,
		})
		return CommittedMsg{ReviewID: reviewID, Err: err}
	}
}

func (m Model) run(action string, fn func(context.Context) (timerdto.StateOutput, error)) (Model, tea.Cmd) {
	m.busy = true
	return m, func() tea.Msg {
		state, err := fn(context.Background())
		return CommandDoneMsg{Action: action, State: state, Err: err}
	}
}

func command(fn func(context.Context) (timerdto.CommandOutput, error)) func(context.Context) (timerdto.StateOutput, error) {
	return func(ctx context.Context) (timerdto.StateOutput, error) {
		out, err := fn(ctx)
		return out.State, err
	}
}

func (m Model) stage() stage {
	s := m.state
	switch {
	case s.Pending != nil:
		if s.Pending.ReviewID == m.reviewID {
			return stageQuiz
		}
		return stageIdle
	case s.ReviewID != m.reviewID || s.Phase == "" || s.Phase == "idle":
		return stageIdle
	case s.FinishRequested:
		return stageConfirm
	}
	return stageTiming
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	if !m.open {
		return ""
	}
	header := m.renderHeader()
	note := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Width(max(m.width-2, 0)).
		Render(m.note.View())
	return lipgloss.JoinVertical(lipgloss.Left, header, note)
}

func (m Model) headerHeight() int {
	return lipgloss.Height(m.renderHeader()) + 2
}

func (m Model) renderHeader() string {
	r := m.detail.Review
	title := m.reviewID
	if r.ID != "" {
		title = r.SubjectName + ": " + r.Topic
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(title) + "\n")
	if r.ID != "" {
		meta := fmt.Sprintf("due %s · day %d · %s", r.DueAt, r.Offset, r.Status)
		if r.DaysLate > 0 {
			meta += theme.Late.Render(fmt.Sprintf(" · %dd late", r.DaysLate))
		}
		sb.WriteString(theme.Muted.Render(meta) + "\n")
	}

	clock := theme.Clock.Render(components.FormatDuration(m.elapsed()))
	sb.WriteString(lipgloss.PlaceHorizontal(max(m.width, lipgloss.Width(clock)), lipgloss.Center, clock) + "\n")
	sb.WriteString(lipgloss.PlaceHorizontal(max(m.width, 1), lipgloss.Center, m.renderPhase()) + "\n")

	if m.stage() == stageQuiz {
		sb.WriteString("\n" + theme.Muted.Render("quiz (optional) ") +
			m.quiz[0].View() + theme.Muted.Render(" of ") + m.quiz[1].View() + "\n")
	}
	if m.err != "" {
		sb.WriteString(theme.Late.Render(m.err) + "\n")
	}
	sb.WriteString(theme.Muted.Render(m.controls()))
	return sb.String()
}

func (m Model) renderPhase() string {
	switch m.stage() {
	case stageTiming:
		if m.state.IsPaused {
			return theme.Warning.Render("paused")
		}
		return theme.Good.Render("running")
	case stageConfirm:
		return theme.Hot.Render("finish this review?")
	case stageQuiz:
		return theme.Hot.Render("finished · record your quiz and save")
	}
	if m.state.ReviewID != "" || m.state.Pending != nil {
		return theme.Warning.Render("another review is being timed")
	}
	return theme.Muted.Render("not started")
}

func (m Model) controls() string {
	if m.busy {
		return "working…"
	}
	switch m.stage() {
	case stageTiming:
		if m.state.IsPaused {
			return "space: resume  f: finish  esc: close"
		}
		return "space: pause  f: finish  esc: close"
	case stageConfirm:
		return "y: confirm  n: keep going"
	case stageQuiz:
		return "tab: next field  enter: save  esc: keep going"
	}
	return "s: start  esc: close"
}

func (m Model) elapsed() int64 {
	if m.stage() == stageQuiz {
		return m.state.Pending.DurationSeconds
	}
	if m.stage() == stageIdle {
		return 0
	}
	return LiveElapsed(m.state, m.stateAt, m.now)
}

func (m Model) renderNote() string {
	body := strings.TrimSpace(m.detail.NoteBody)
	if body == "" {
		if m.detail.Notes != "" {
			body = m.detail.Notes
		} else {
			return theme.Muted.Render("No note for this review.")
		}
	}
	if m.renderer == nil {
		return body
	}
	out, err := m.renderer.Render(body)
	if err != nil {
		return body
	}
	return out
}

func (m *Model) resetQuiz() {
	for i := range m.quiz {
		m.quiz[i].SetValue("")
		m.quiz[i].Blur()
	}
	m.focus = 0
	m.quiz[0].Focus()
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// LiveElapsed extends the elapsed seconds of a running state by the wall
// time since it was observed.
func LiveElapsed(s timerdto.StateOutput, at, now time.Time) int64 {
	elapsed := s.ElapsedSeconds
	if s.Phase == "running" && !at.IsZero() && now.After(at) {
		elapsed += int64(now.Sub(at) / time.Second)
	}
	return elapsed
}

var errQuiz = errors.New("quiz needs both numbers, with correct between 0 and total")

// parseQuiz reads the optional quiz fields. Both empty means no quiz.
func parseQuiz(correctRaw, totalRaw string) (*int, *int, error) {
	correctRaw, totalRaw = strings.TrimSpace(correctRaw), strings.TrimSpace(totalRaw)
	if correctRaw == "" && totalRaw == "" {
		return nil, nil, nil
	}
	correct, err1 := strconv.Atoi(correctRaw)
	total, err2 := strconv.Atoi(totalRaw)
	if err1 != nil || err2 != nil || total < 1 || correct < 0 || correct > total {
		return nil, nil, errQuiz
	}
	return &correct, &total, nil
}
