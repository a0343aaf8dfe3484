package stats

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	reviewdto "cadence/internal/modules/review/dto"
)

type fakePort struct {
	out reviewdto.StatsOutput
	err error
}

func (f fakePort) Stats(context.Context, reviewdto.StatsInput) (reviewdto.StatsOutput, error) {
	return f.out, f.err
}

func TestRenderShowsTotalsAndSubjects(t *testing.T) {
	t.Parallel()
	m := New(fakePort{out: reviewdto.StatsOutput{
		Today:           "2026-03-10",
		Streak:          3,
		CompletionRate:  0.5,
		ReviewedSeconds: 3725,
		Subjects: []reviewdto.SubjectStatsOutput{
			{SubjectName: "Mathematics and other very long names", StudyEvents: 2, ReviewsDone: 1},
		},
	}})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(m.Load()())

	out := m.render()
	assert.Contains(t, out, "3 days")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "1:02:05")
	assert.Contains(t, out, "Mathematics and other v…")
}

func TestRenderShowsError(t *testing.T) {
	t.Parallel()
	m := New(fakePort{err: errors.New("boom")})
	m, _ = m.Update(m.Load()())
	assert.Contains(t, m.render(), "stats: boom")
}
