package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reviewdto "cadence/internal/modules/review/dto"
	timerdto "cadence/internal/modules/timer/dto"
)

type fakePort struct {
	state     timerdto.StateOutput
	commitErr error
	commits   []timerdto.CommitInput
}

func (f *fakePort) Start(_ context.Context, in timerdto.StartInput) (timerdto.CommandOutput, error) {
	f.state = timerdto.StateOutput{Phase: "running", ReviewID: in.ReviewID}
	return timerdto.CommandOutput{State: f.state, Changed: true}, nil
}

func (f *fakePort) Pause(context.Context) (timerdto.CommandOutput, error) {
	f.state.Phase, f.state.IsPaused = "paused", true
	return timerdto.CommandOutput{State: f.state, Changed: true}, nil
}

func (f *fakePort) Resume(context.Context) (timerdto.CommandOutput, error) {
	f.state.Phase, f.state.IsPaused = "running", false
	return timerdto.CommandOutput{State: f.state, Changed: true}, nil
}

func (f *fakePort) RequestFinish(context.Context) (timerdto.CommandOutput, error) {
	f.state.Phase, f.state.FinishRequested = "finish_requested", true
	return timerdto.CommandOutput{State: f.state, Changed: true}, nil
}

func (f *fakePort) CancelFinish(context.Context) (timerdto.CommandOutput, error) {
	f.state.Phase, f.state.FinishRequested = "running", false
	return timerdto.CommandOutput{State: f.state, Changed: true}, nil
}

func (f *fakePort) ConfirmFinish(context.Context) (timerdto.ConfirmOutput, error) {
	pending := &timerdto.PendingOutput{ReviewID: f.state.ReviewID, DurationSeconds: 90}
	f.state = timerdto.StateOutput{Phase: "pending", Pending: pending}
	return timerdto.ConfirmOutput{CommandOutput: timerdto.CommandOutput{State: f.state, Changed: true}, Pending: pending}, nil
}

func (f *fakePort) Commit(_ context.Context, in timerdto.CommitInput) (timerdto.StateOutput, error) {
	f.commits = append(f.commits, in)
	if f.commitErr != nil {
		return f.state, f.commitErr
	}
	f.state = timerdto.StateOutput{Phase: "idle"}
	return f.state, nil
}

type fakeNotes struct{}

func (fakeNotes) GetReview(_ context.Context, id string) (reviewdto.ReviewDetailOutput, error) {
	return reviewdto.ReviewDetailOutput{
		Review:   reviewdto.ReviewOutput{ID: id, SubjectName: "Math", Topic: "Limits", DueAt: "2026-03-10", Offset: 7, Status: "pending"},
		NoteBody: "# Limits\n\nepsilon and delta",
	}, nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and feeds the resulting command's message back in.
func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	m, cmd := m.Update(k)
	if cmd != nil {
		m, _ = m.Update(cmd())
	}
	return m
}

func opened(t *testing.T, port *fakePort) Model {
	t.Helper()
	m := New(port, fakeNotes{})
	m.SetSize(100, 40)
	cmd := m.Open("rev-1")
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	return m
}

func TestDialogLoadsDetail(t *testing.T) {
	t.Parallel()
	m := opened(t, &fakePort{})

	assert.True(t, m.Visible())
	assert.Equal(t, "rev-1", m.ReviewID())
	assert.Equal(t, stageIdle, m.stage())
	assert.Contains(t, m.View(), "Math: Limits")
	assert.Equal(t, "# Limits\n\nepsilon and delta", m.detail.NoteBody)
}

func TestDialogTimerFlow(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := opened(t, port)

	m = press(t, m, runes("s"))
	assert.Equal(t, stageTiming, m.stage())
	assert.Contains(t, m.View(), "running")

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, m.state.IsPaused)
	assert.Contains(t, m.View(), "paused")

	m = press(t, m, runes("f"))
	assert.Equal(t, stageConfirm, m.stage())

	m = press(t, m, runes("n"))
	assert.Equal(t, stageTiming, m.stage())

	m = press(t, m, runes("f"))
	m = press(t, m, runes("y"))
	assert.Equal(t, stageQuiz, m.stage())
	assert.Equal(t, int64(90), m.elapsed())
}

func TestDialogSavesQuiz(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := opened(t, port)
	m.SetState(timerdto.StateOutput{Phase: "pending", Pending: &timerdto.PendingOutput{ReviewID: "rev-1", DurationSeconds: 90}}, time.Now())
	require.Equal(t, stageQuiz, m.stage())

	m, _ = m.Update(runes("4"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(runes("5"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, port.commits, 1)
	assert.Equal(t, "rev-1", port.commits[0].ReviewID)
	require.NotNil(t, port.commits[0].QuizCorrect)
	assert.Equal(t, 4, *port.commits[0].QuizCorrect)
	assert.Equal(t, 5, *port.commits[0].QuizTotal)
	assert.False(t, m.Visible())
}

func TestDialogKeepsQuizOnSaveFailure(t *testing.T) {
	t.Parallel()
	port := &fakePort{commitErr: errors.New("disk full")}
	m := opened(t, port)
	m.SetState(timerdto.StateOutput{Phase: "pending", Pending: &timerdto.PendingOutput{ReviewID: "rev-1"}}, time.Now())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, port.commits, 1)
	assert.Nil(t, port.commits[0].QuizCorrect)
	assert.True(t, m.Visible())
	assert.Contains(t, m.View(), "save: disk full")
}

func TestDialogRejectsBadQuiz(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := opened(t, port)
	m.SetState(timerdto.StateOutput{Phase: "pending", Pending: &timerdto.PendingOutput{ReviewID: "rev-1"}}, time.Now())

	m, _ = m.Update(runes("6"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(runes("5"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, port.commits)
	assert.Contains(t, m.View(), "quiz needs both numbers")
}

func TestDialogEscClosesWhileTiming(t *testing.T) {
	t.Parallel()
	m := opened(t, &fakePort{})
	m = press(t, m, runes("s"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Visible())
}

func TestLiveElapsed(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	running := timerdto.StateOutput{Phase: "running", ElapsedSeconds: 10}
	paused := timerdto.StateOutput{Phase: "paused", ElapsedSeconds: 10, IsPaused: true}

	assert.Equal(t, int64(15), LiveElapsed(running, at, at.Add(5500*time.Millisecond)))
	assert.Equal(t, int64(10), LiveElapsed(paused, at, at.Add(time.Minute)))
	assert.Equal(t, int64(10), LiveElapsed(running, at, at.Add(-time.Second)))
}

func TestParseQuiz(t *testing.T) {
	t.Parallel()
	c, total, err := parseQuiz("", " ")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Nil(t, total)

	c, total, err = parseQuiz("0", "3")
	require.NoError(t, err)
	assert.Equal(t, 0, *c)
	assert.Equal(t, 3, *total)

	for _, in := range [][2]string{{"3", ""}, {"4", "3"}, {"1", "0"}, {"x", "2"}} {
		_, _, err := parseQuiz(in[0], in[1])
		assert.ErrorIs(t, err, errQuiz, "%v", in)
	}
}

func TestIndicatorVisibility(t *testing.T) {
	t.Parallel()
	assert.False(t, ShowIndicator(timerdto.StateOutput{Phase: "idle"}, false))
	assert.True(t, ShowIndicator(timerdto.StateOutput{Phase: "running", ReviewID: "r"}, false))
	assert.False(t, ShowIndicator(timerdto.StateOutput{Phase: "running", ReviewID: "r"}, true))
	assert.True(t, ShowIndicator(timerdto.StateOutput{Phase: "pending", Pending: &timerdto.PendingOutput{ReviewID: "r"}}, false))

	bar := Indicator(timerdto.StateOutput{Phase: "paused", ReviewID: "r", IsPaused: true, ElapsedSeconds: 75}, "Math: Limits", time.Time{}, time.Now(), 80)
	assert.Contains(t, bar, "paused")
	assert.Contains(t, bar, "1:15")
	assert.Contains(t, bar, "Math: Limits")
}
