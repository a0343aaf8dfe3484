package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	reviewdto "cadence/internal/modules/review/dto"
	timerdto "cadence/internal/modules/timer/dto"
	"cadence/internal/ui/components"
	"cadence/internal/ui/theme"
	reviewsview "cadence/internal/ui/views/reviews"
	statsview "cadence/internal/ui/views/stats"
	timerview "cadence/internal/ui/views/timer"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type reviewPort interface {
	reviewsview.Port
	statsview.Port
	timerview.NotePort
	Defer(ctx context.Context, input reviewdto.DeferInput) (reviewdto.ReviewOutput, error)
	LogStudy(ctx context.Context, input reviewdto.LogStudyInput) (reviewdto.StudyOutput, error)
}

type timerPort interface {
	timerview.Port
	Discard(ctx context.Context) (timerdto.CommandOutput, error)
	Recover(ctx context.Context) (timerdto.StateOutput, error)
}

type timerEvents interface {
	Subscribe(onState func(timerdto.StateOutput), onFinished func(timerdto.PendingOutput)) func()
	SubscribeDialog(onDialog func(open bool)) func()
	SubscribeLayout(onLayout func(lines int)) func()
	SetFinishDialogOpen(open bool)
	SetLayoutOffset(lines int)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabToday tabID = iota
	tabCompleted
	tabStats
	tabCount
)

var tabLabels = [tabCount]string{
	"Today", "Completed", "Stats",
}

// ─── async messages ───────────────────────────────────────────────────────────

type tickMsg time.Time

type recoveredMsg struct {
	state timerdto.StateOutput
	err   error
}

type timerActionMsg struct {
	action string
	state  timerdto.StateOutput
	err    error
}

type deferredMsg struct {
	review reviewdto.ReviewOutput
	err    error
}

type loggedMsg struct {
	study reviewdto.StudyOutput
	err   error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Open    key.Binding
	Start   key.Binding
	Defer   key.Binding
	Timer   key.Binding
	Refresh key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open review")),
		Start:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "start timer")),
		Defer:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "defer a day")),
		Timer:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open timer")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Open, k.Start, k.Defer},
		{k.Timer, k.Refresh},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the review dialog,
// the compact timer indicator, the help overlay and the command palette.
// Timer state arrives through the event bridge; the model only renders it.
type Model struct {
	reviews reviewPort
	timer   timerPort
	events  timerEvents
	bridge  *eventBridge

	today     reviewsview.Model
	completed reviewsview.Model
	statsView statsview.Model
	dialog    timerview.Model

	timerState timerdto.StateOutput
	stateAt    time.Time
	now        time.Time
	dialogOpen bool
	// reserved is the indicator height last announced on the layout topic.
	reserved  int
	published int

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(reviews reviewPort, timer timerPort, events timerEvents) Model {
	return Model{
		reviews:   reviews,
		timer:     timer,
		events:    events,
		bridge:    newEventBridge(events),
		today:     reviewsview.New(reviewsview.ModeToday),
		completed: reviewsview.New(reviewsview.ModeCompleted),
		statsView: statsview.New(reviews),
		dialog:    timerview.New(timer, reviews),
		now:       time.Now(),
		activeTab: tabToday,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
}

// Close detaches the model from the timer events.
func (m Model) Close() {
	m.bridge.close()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.today.Init(),
		m.completed.Init(),
		reviewsview.Load(m.reviews),
		m.statsView.Load(),
		m.recoverCmd(),
		m.bridge.wait(),
		tick(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		m.dialog.SetNow(m.now)
		return m, tick()

	case timerview.StateMsg:
		hadPending := m.timerState.Pending != nil
		m.applyState(msg.State)
		cmds = append(cmds, m.bridge.wait())
		if hadPending && msg.State.Pending == nil {
			cmds = append(cmds, m.reload())
		}
		return m, tea.Batch(cmds...)

	case timerview.FinishedMsg:
		cmds = append(cmds, m.bridge.wait(), m.openDialog(msg.Pending.ReviewID))
		m.status = "review finished: add quiz results and save"
		return m, tea.Batch(cmds...)

	case dialogMsg:
		m.dialogOpen = msg.open
		m.publishLayout()
		return m, m.bridge.wait()

	case layoutMsg:
		m.reserved = msg.lines
		m.propagateSize()
		return m, m.bridge.wait()

	case recoveredMsg:
		if msg.err != nil {
			m.status = "timer recovery: " + msg.err.Error()
			return m, nil
		}
		m.applyState(msg.state)
		switch {
		case msg.state.Pending != nil:
			m.status = "unsaved review found"
			return m, m.openDialog(msg.state.Pending.ReviewID)
		case msg.state.ReviewID != "":
			m.status = "timer recovered"
		}
		return m, nil

	case timerActionMsg:
		if msg.err != nil {
			m.status = msg.action + ": " + msg.err.Error()
			return m, nil
		}
		m.applyState(msg.state)
		m.status = "timer " + msg.action
		return m, nil

	case timerview.DetailLoadedMsg:
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		return m, cmd

	case timerview.CommandDoneMsg:
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		if msg.Err != nil {
			m.status = msg.Action + ": " + msg.Err.Error()
		} else {
			m.applyState(msg.State)
		}
		return m, cmd

	case timerview.CommittedMsg:
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		if msg.Err != nil {
			m.status = "save failed: " + msg.Err.Error()
			return m, cmd
		}
		m.syncDialogOpen()
		m.status = "review saved"
		return m, tea.Batch(cmd, m.reload())

	case deferredMsg:
		if msg.err != nil {
			m.status = "defer: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("deferred %s to %s", msg.review.Topic, msg.review.DueAt)
		return m, m.reload()

	case loggedMsg:
		if msg.err != nil {
			m.status = "study log: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("logged %s: %d reviews scheduled", msg.study.Topic, len(msg.study.Reviews))
		return m, m.reload()

	case reviewsview.DashboardLoadedMsg:
		var c1, c2 tea.Cmd
		m.today, c1 = m.today.Update(msg)
		m.completed, c2 = m.completed.Update(msg)
		return m, tea.Batch(c1, c2)

	case statsview.LoadedMsg:
		var cmd tea.Cmd
		m.statsView, cmd = m.statsView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.dialog.Visible() {
			var cmd tea.Cmd
			m.dialog, cmd = m.dialog.Update(msg)
			m.syncDialogOpen()
			return m, cmd
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			return m, m.switchTab((m.activeTab + 1) % tabCount)
		case "shift+tab":
			return m, m.switchTab((m.activeTab + tabCount - 1) % tabCount)
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "enter":
			if r, ok := m.selected(); ok {
				return m, m.openDialog(r.ID)
			}
			return m, nil
		case "t":
			if r, ok := m.selected(); ok && m.activeTab == tabToday {
				return m, m.startCmd(r.ID)
			}
			return m, nil
		case "d":
			if r, ok := m.selected(); ok && m.activeTab == tabToday {
				return m, m.deferCmd(r.ID, 1)
			}
			return m, nil
		case "o":
			if id := m.timerReviewID(); id != "" {
				return m, m.openDialog(id)
			}
			m.status = "no timer running"
			return m, nil
		case "r":
			return m, m.reload()
		}
	}

	// Keys go to the visible tab; everything else reaches every tab.
	_, isKey := msg.(tea.KeyMsg)
	var cmd tea.Cmd
	if !isKey || m.activeTab == tabToday {
		m.today, cmd = m.today.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !isKey || m.activeTab == tabCompleted {
		m.completed, cmd = m.completed.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !isKey || m.activeTab == tabStats {
		m.statsView, cmd = m.statsView.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	statusBar := m.renderStatusBar()
	if m.dialog.Visible() && !m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, m.dialog.View(), statusBar)
	}

	tabBar := m.renderTabBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar)-m.reserved, 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	parts := []string{tabBar, content}
	if m.reserved > 0 && timerview.ShowIndicator(m.timerState, m.dialogOpen) {
		parts = append(parts, timerview.Indicator(m.timerState, m.indicatorLabel(), m.stateAt, m.now, m.width))
	}
	parts = append(parts, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabToday:
		return m.today.View()
	case tabCompleted:
		return m.completed.View()
	case tabStats:
		return m.statsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "cadence  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	if m.dialog.Visible() {
		right = theme.Muted.Render("ctrl+c:quit")
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	selected, hasSelected := m.selected()

	switch parts[0] {
	case "study:log":
		if len(parts) < 3 {
			m.status = "usage: study:log <subject> <topic>"
			return m, nil
		}
		topic := strings.Join(parts[2:], " ")
		return m, m.logStudyCmd(parts[1], topic)

	case "review:open":
		if !hasSelected {
			m.status = "no review selected"
			return m, nil
		}
		return m, m.openDialog(selected.ID)

	case "review:start":
		if !hasSelected {
			m.status = "no review selected"
			return m, nil
		}
		return m, m.startCmd(selected.ID)

	case "review:defer":
		if !hasSelected {
			m.status = "no review selected"
			return m, nil
		}
		days := 1
		if len(parts) >= 2 {
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				m.status = "invalid days"
				return m, nil
			}
			days = n
		}
		return m, m.deferCmd(selected.ID, days)

	case "timer:open":
		if id := m.timerReviewID(); id != "" {
			return m, m.openDialog(id)
		}
		m.status = "no timer running"
		return m, nil

	case "timer:pause":
		return m, m.timerCmd("paused", m.timer.Pause)

	case "timer:resume":
		return m, m.timerCmd("resumed", m.timer.Resume)

	case "timer:finish":
		id := m.timerReviewID()
		if id == "" {
			m.status = "no timer running"
			return m, nil
		}
		return m, tea.Batch(m.timerCmd("finishing", m.timer.RequestFinish), m.openDialog(id))

	case "timer:cancel":
		return m, m.timerCmd("continued", m.timer.CancelFinish)

	case "timer:discard":
		return m, m.timerCmd("discarded", m.timer.Discard)

	case "refresh":
		return m, m.reload()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) applyState(state timerdto.StateOutput) {
	m.timerState = state
	m.stateAt = time.Now()
	m.dialog.SetState(state, m.stateAt)
	m.publishLayout()
}

// publishLayout announces the indicator height when it changes. The
// reserved space itself follows the layout topic.
func (m *Model) publishLayout() {
	lines := 0
	if timerview.ShowIndicator(m.timerState, m.dialogOpen) {
		lines = timerview.IndicatorLines
	}
	if lines == m.published || m.events == nil {
		return
	}
	m.published = lines
	m.events.SetLayoutOffset(lines)
}

func (m *Model) openDialog(reviewID string) tea.Cmd {
	cmd := m.dialog.Open(reviewID)
	m.syncDialogOpen()
	return cmd
}

// syncDialogOpen mirrors the dialog's visibility onto the shared signal.
func (m *Model) syncDialogOpen() {
	open := m.dialog.Visible()
	if open == m.dialogOpen {
		return
	}
	m.dialogOpen = open
	if m.events != nil {
		m.events.SetFinishDialogOpen(open)
	}
	m.publishLayout()
}

func (m *Model) switchTab(tab tabID) tea.Cmd {
	m.activeTab = tab
	if tab == tabStats {
		return m.statsView.Load()
	}
	return nil
}

func (m Model) selected() (reviewdto.ReviewOutput, bool) {
	switch m.activeTab {
	case tabToday:
		return m.today.Selected()
	case tabCompleted:
		return m.completed.Selected()
	}
	return reviewdto.ReviewOutput{}, false
}

func (m Model) timerReviewID() string {
	if m.timerState.Pending != nil {
		return m.timerState.Pending.ReviewID
	}
	return m.timerState.ReviewID
}

func (m Model) indicatorLabel() string {
	id := m.timerReviewID()
	if r, ok := m.today.Find(id); ok {
		return r.SubjectName + ": " + r.Topic
	}
	return ""
}

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabToday:
		return m.today.Filtering()
	case tabCompleted:
		return m.completed.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	const chrome = 4 // tab bar and status bar
	sz := tea.WindowSizeMsg{Width: m.width, Height: max(m.height-chrome-m.reserved, 1)}
	m.today, _ = m.today.Update(sz)
	m.completed, _ = m.completed.Update(sz)
	m.statsView, _ = m.statsView.Update(sz)
	m.dialog.SetSize(m.width, max(m.height-2, 1))
}

// ─── async commands ───────────────────────────────────────────────────────────

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) reload() tea.Cmd {
	return tea.Batch(reviewsview.Load(m.reviews), m.statsView.Load())
}

func (m Model) recoverCmd() tea.Cmd {
	return func() tea.Msg {
		state, err := m.timer.Recover(context.Background())
		return recoveredMsg{state: state, err: err}
	}
}

func (m Model) startCmd(reviewID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.timer.Start(context.Background(), timerdto.StartInput{ReviewID: reviewID})
		action := "started"
		if out.AlreadyActive {
			action = "already running"
		}
		return timerActionMsg{action: action, state: out.State, err: err}
	}
}

func (m Model) timerCmd(action string, fn func(context.Context) (timerdto.CommandOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := fn(context.Background())
		return timerActionMsg{action: action, state: out.State, err: err}
	}
}

func (m Model) deferCmd(reviewID string, days int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.reviews.Defer(context.Background(), reviewdto.DeferInput{ReviewID: reviewID, Days: days})
		return deferredMsg{review: out, err: err}
	}
}

func (m Model) logStudyCmd(subject, topic string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.reviews.LogStudy(context.Background(), reviewdto.LogStudyInput{Subject: subject, Topic: topic})
		return loggedMsg{study: out, err: err}
	}
}
