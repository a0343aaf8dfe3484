package app

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reviewdto "cadence/internal/modules/review/dto"
	timerdto "cadence/internal/modules/timer/dto"
	"cadence/internal/ui/components"
	reviewsview "cadence/internal/ui/views/reviews"
	timerview "cadence/internal/ui/views/timer"
)

type fakeReviews struct {
	deferred []reviewdto.DeferInput
}

func (f *fakeReviews) Dashboard(context.Context, reviewdto.DashboardInput) (reviewdto.DashboardOutput, error) {
	return reviewdto.DashboardOutput{
		Today:    "2026-03-10",
		DueToday: []reviewdto.ReviewOutput{{ID: "rev-1", SubjectName: "Math", Topic: "Limits", DueAt: "2026-03-10"}},
	}, nil
}

func (f *fakeReviews) Stats(context.Context, reviewdto.StatsInput) (reviewdto.StatsOutput, error) {
	return reviewdto.StatsOutput{Today: "2026-03-10"}, nil
}

func (f *fakeReviews) GetReview(_ context.Context, id string) (reviewdto.ReviewDetailOutput, error) {
	return reviewdto.ReviewDetailOutput{Review: reviewdto.ReviewOutput{ID: id, SubjectName: "Math", Topic: "Limits"}}, nil
}

func (f *fakeReviews) Defer(_ context.Context, in reviewdto.DeferInput) (reviewdto.ReviewOutput, error) {
	f.deferred = append(f.deferred, in)
	return reviewdto.ReviewOutput{ID: in.ReviewID, Topic: "Limits", DueAt: "2026-03-11"}, nil
}

func (f *fakeReviews) LogStudy(_ context.Context, in reviewdto.LogStudyInput) (reviewdto.StudyOutput, error) {
	return reviewdto.StudyOutput{Topic: in.Topic, Reviews: make([]reviewdto.ReviewOutput, 3)}, nil
}

type fakeTimer struct {
	recovered timerdto.StateOutput
}

func (f *fakeTimer) Start(_ context.Context, in timerdto.StartInput) (timerdto.CommandOutput, error) {
	return timerdto.CommandOutput{State: timerdto.StateOutput{Phase: "running", ReviewID: in.ReviewID}, Changed: true}, nil
}
func (f *fakeTimer) Pause(context.Context) (timerdto.CommandOutput, error) {
	return timerdto.CommandOutput{}, nil
}
func (f *fakeTimer) Resume(context.Context) (timerdto.CommandOutput, error) {
	return timerdto.CommandOutput{}, nil
}
func (f *fakeTimer) RequestFinish(context.Context) (timerdto.CommandOutput, error) {
	return timerdto.CommandOutput{}, nil
}
func (f *fakeTimer) CancelFinish(context.Context) (timerdto.CommandOutput, error) {
	return timerdto.CommandOutput{}, nil
}
func (f *fakeTimer) ConfirmFinish(context.Context) (timerdto.ConfirmOutput, error) {
	return timerdto.ConfirmOutput{}, nil
}
func (f *fakeTimer) Commit(context.Context, timerdto.CommitInput) (timerdto.StateOutput, error) {
	return timerdto.StateOutput{Phase: "idle"}, nil
}
func (f *fakeTimer) Discard(context.Context) (timerdto.CommandOutput, error) {
	return timerdto.CommandOutput{}, nil
}
func (f *fakeTimer) Recover(context.Context) (timerdto.StateOutput, error) {
	return f.recovered, nil
}

type fakeEvents struct {
	onState  []func(timerdto.StateOutput)
	dialog   []bool
	layout   []int
	onLayout []func(int)
}

func (f *fakeEvents) Subscribe(onState func(timerdto.StateOutput), _ func(timerdto.PendingOutput)) func() {
	f.onState = append(f.onState, onState)
	return func() { f.onState = nil }
}
func (f *fakeEvents) SubscribeDialog(func(bool)) func() { return func() {} }
func (f *fakeEvents) SubscribeLayout(fn func(int)) func() {
	f.onLayout = append(f.onLayout, fn)
	return func() { f.onLayout = nil }
}
func (f *fakeEvents) SetFinishDialogOpen(open bool) { f.dialog = append(f.dialog, open) }
func (f *fakeEvents) SetLayoutOffset(lines int) {
	f.layout = append(f.layout, lines)
	for _, fn := range f.onLayout {
		fn(lines)
	}
}

func newTestModel(t *testing.T, timer *fakeTimer) (Model, *fakeReviews, *fakeEvents) {
	t.Helper()
	reviews := &fakeReviews{}
	events := &fakeEvents{}
	m := NewModel(reviews, timer, events)
	t.Cleanup(m.Close)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)
	next, _ = m.Update(reviewsview.Load(reviews)())
	return next.(Model), reviews, events
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestRecoverReopensQuizPrompt(t *testing.T) {
	t.Parallel()
	pending := &timerdto.PendingOutput{ReviewID: "rev-1", DurationSeconds: 60}
	m, _, events := newTestModel(t, &fakeTimer{recovered: timerdto.StateOutput{Phase: "pending", Pending: pending}})

	m, cmd := update(t, m, m.recoverCmd()())

	require.NotNil(t, cmd)
	assert.True(t, m.dialog.Visible())
	assert.Equal(t, "rev-1", m.dialog.ReviewID())
	assert.Equal(t, []bool{true}, events.dialog)
	assert.Equal(t, "unsaved review found", m.status)
}

func TestRunningTimerReservesIndicatorLine(t *testing.T) {
	t.Parallel()
	m, _, events := newTestModel(t, &fakeTimer{})

	// A state published elsewhere reaches the model through the bridge.
	for _, fn := range events.onState {
		fn(timerdto.StateOutput{Phase: "running", ReviewID: "rev-1", ElapsedSeconds: 75})
	}
	msg := m.bridge.wait()()
	require.IsType(t, timerview.StateMsg{}, msg)
	m, _ = update(t, m, msg)

	assert.Equal(t, []int{1}, events.layout)
	layout := m.bridge.wait()()
	assert.Equal(t, layoutMsg{lines: 1}, layout)
	m, _ = update(t, m, layout)

	assert.Equal(t, 1, m.reserved)
	view := m.View()
	assert.Contains(t, view, "running")
	assert.Contains(t, view, "Math: Limits")
}

func TestOpeningDialogHidesIndicator(t *testing.T) {
	t.Parallel()
	m, _, events := newTestModel(t, &fakeTimer{})
	m, _ = update(t, m, timerActionMsg{action: "started", state: timerdto.StateOutput{Phase: "running", ReviewID: "rev-1"}})
	require.Equal(t, []int{1}, events.layout)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})

	assert.True(t, m.dialog.Visible())
	assert.Equal(t, []bool{true}, events.dialog)
	assert.Equal(t, []int{1, 0}, events.layout)
}

func TestDeferKeyDefersSelectedReview(t *testing.T) {
	t.Parallel()
	m, reviews, _ := newTestModel(t, &fakeTimer{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	require.Len(t, reviews.deferred, 1)
	assert.Equal(t, reviewdto.DeferInput{ReviewID: "rev-1", Days: 1}, reviews.deferred[0])
	assert.Equal(t, "deferred Limits to 2026-03-11", m.status)
}

func TestPaletteCommands(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(t, &fakeTimer{})

	m, cmd := update(t, m, components.PaletteSubmitMsg{Input: "study:log Math Limits and series"})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "logged Limits and series: 3 reviews scheduled", m.status)

	m, _ = update(t, m, components.PaletteSubmitMsg{Input: "review:defer soon"})
	assert.Equal(t, "invalid days", m.status)

	m, _ = update(t, m, components.PaletteSubmitMsg{Input: "timer:open"})
	assert.Equal(t, "no timer running", m.status)

	m, _ = update(t, m, components.PaletteSubmitMsg{Input: "bogus"})
	assert.Equal(t, "unknown command: bogus", m.status)
}
