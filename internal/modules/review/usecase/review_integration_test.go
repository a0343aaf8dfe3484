package usecase_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogout "cadence/internal/modules/catalog/adapter/out"
	catalogdomain "cadence/internal/modules/catalog/domain"
	catalogdto "cadence/internal/modules/catalog/dto"
	catalogin "cadence/internal/modules/catalog/port/in"
	catalogservice "cadence/internal/modules/catalog/service"
	catalogusecase "cadence/internal/modules/catalog/usecase"
	reviewout "cadence/internal/modules/review/adapter/out"
	"cadence/internal/modules/review/dto"
	reviewin "cadence/internal/modules/review/port/in"
	"cadence/internal/modules/review/service"
	"cadence/internal/modules/review/usecase"
	"cadence/internal/platform/clock"
	"cadence/internal/platform/database"
	apperrors "cadence/internal/platform/errors"
	"cadence/internal/platform/logging"
)

type seqIDs struct{ n int }

func (g *seqIDs) New() string {
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}

type fixture struct {
	clock   *clock.Manual
	catalog catalogin.Usecase
	reviews reviewin.Usecase
	journal string
}

func newFixture(t *testing.T, defaultOffsets []int) fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	db, err := database.Open(ctx, filepath.Join(dir, ".cadence", "cadence.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clk := clock.NewManual(time.Date(2024, 1, 1, 20, 15, 0, 0, time.UTC))
	ids := &seqIDs{}
	catalogStore, err := catalogout.NewSQLiteCatalogStore(ctx, db)
	require.NoError(t, err)
	catalog := catalogusecase.NewInteractor(catalogservice.NewCatalogService(clk, ids, catalogStore, catalogStore, catalogdomain.Plan{Tier: catalogdomain.TierPro}))

	reviewStore, err := reviewout.NewSQLiteReviewStore(ctx, db)
	require.NoError(t, err)
	journalPath := filepath.Join(dir, "journal")
	svc := service.NewReviewService(clk, ids, reviewStore, reviewout.NewJournalStore(journalPath), logging.Nop())
	return fixture{
		clock:   clk,
		catalog: catalog,
		reviews: usecase.NewInteractor(svc, catalog, defaultOffsets),
		journal: journalPath,
	}
}

func intp(v int) *int { return &v }

func TestLogStudySchedulesReviewsAndWritesJournal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)
	subject, err := f.catalog.AddSubject(ctx, catalogdto.AddSubjectInput{Name: "Math"})
	require.NoError(t, err)

	out, err := f.reviews.LogStudy(ctx, dto.LogStudyInput{
		Subject:     "math",
		Topic:       "Limits",
		Notes:       "epsilon-delta",
		QuizCorrect: intp(7),
		QuizTotal:   intp(10),
	})
	require.NoError(t, err)
	assert.Equal(t, subject.ID, out.SubjectID)
	assert.Equal(t, []int{1, 7, 15}, out.Offsets)
	require.Len(t, out.Reviews, 3)
	assert.Equal(t, "2024-01-02", out.Reviews[0].DueAt)
	assert.Equal(t, "2024-01-08", out.Reviews[1].DueAt)
	assert.Equal(t, "2024-01-16", out.Reviews[2].DueAt)

	require.True(t, strings.HasPrefix(out.NotePath, filepath.Join(f.journal, "2024", "01", "01")))
	content, err := os.ReadFile(out.NotePath)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "topic: Limits")
	assert.Contains(t, text, "epsilon-delta")
	assert.Contains(t, text, "<!-- cadence:reviews:start -->")
	assert.Contains(t, text, "- [ ] 2024-01-08 (+7d) pending")
}

func TestLogStudyUsesDefaultTemplateThenConfiguredFallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, []int{2, 4})
	_, err := f.catalog.AddSubject(ctx, catalogdto.AddSubjectInput{Name: "Bio"})
	require.NoError(t, err)

	out, err := f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: "Bio", Topic: "Cells"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, out.Offsets)

	cram, err := f.catalog.AddTemplate(ctx, catalogdto.AddTemplateInput{Name: "Cram", Offsets: []int{3, 1}})
	require.NoError(t, err)
	out, err = f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: "Bio", Topic: "Mitosis"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, out.Offsets)

	_, err = f.catalog.AddTemplate(ctx, catalogdto.AddTemplateInput{Name: "Long", Offsets: []int{30}})
	require.NoError(t, err)
	out, err = f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: "Bio", Topic: "Meiosis", TemplateID: cram.ID})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, out.Offsets)
}

func TestLogStudyRejectsBadInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)
	archived, err := f.catalog.AddSubject(ctx, catalogdto.AddSubjectInput{Name: "Old"})
	require.NoError(t, err)
	_, err = f.catalog.ArchiveSubject(ctx, archived.ID)
	require.NoError(t, err)

	_, err = f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: "Old", Topic: "x"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: "Nope", Topic: "x"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: "Old"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: "Old", Topic: "x", QuizCorrect: intp(3)})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDashboardDeferAndComplete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.catalog.AddSubject(ctx, catalogdto.AddSubjectInput{Name: "Math"})
	require.NoError(t, err)
	_, err = f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: "Math", Topic: "Limits"})
	require.NoError(t, err)

	board, err := f.reviews.Dashboard(ctx, dto.DashboardInput{Today: "2024-01-10"})
	require.NoError(t, err)
	require.Len(t, board.Overdue, 2)
	assert.Equal(t, "2024-01-02", board.Overdue[0].DueAt)
	assert.Equal(t, 8, board.Overdue[0].DaysLate)
	assert.Equal(t, "2024-01-08", board.Overdue[1].DueAt)
	assert.Equal(t, 2, board.Overdue[1].DaysLate)
	require.Len(t, board.Upcoming, 1)
	assert.Empty(t, board.DueToday)

	overdueID := board.Overdue[1].ID
	deferred, err := f.reviews.Defer(ctx, dto.DeferInput{ReviewID: overdueID})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-09", deferred.DueAt)
	assert.Equal(t, "deferred", deferred.Status)

	f.clock.Set(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	started := f.clock.Now().Add(-150 * time.Second)
	done, err := f.reviews.Complete(ctx, dto.CompleteInput{
		ReviewID:        overdueID,
		ReviewStartedAt: started,
		DurationSeconds: 120,
		PausedSeconds:   30,
		QuizCorrect:     intp(4),
		QuizTotal:       intp(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, f.clock.Now().Equal(*done.CompletedAt))

	_, err = f.reviews.Complete(ctx, dto.CompleteInput{ReviewID: overdueID})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = f.reviews.Defer(ctx, dto.DeferInput{ReviewID: overdueID, Days: 2})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	detail, err := f.reviews.GetReview(ctx, overdueID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), detail.Review.DurationSeconds)
	require.Len(t, detail.Schedule, 3)
	assert.Contains(t, detail.NoteBody, "- [x] 2024-01-09 (+7d) completed, 2m0s")

	listed, err := f.reviews.ListReviews(ctx, dto.ListReviewsInput{From: "2024-01-01", To: "2024-01-09"})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "2024-01-02", listed[0].DueAt)

	_, err = f.reviews.ListReviews(ctx, dto.ListReviewsInput{From: "2024-01-09", To: "2024-01-01"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = f.reviews.Defer(ctx, dto.DeferInput{ReviewID: "missing"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestArchivedSubjectsLeaveTheDashboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)
	subject, err := f.catalog.AddSubject(ctx, catalogdto.AddSubjectInput{Name: "Chem"})
	require.NoError(t, err)
	_, err = f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: subject.ID, Topic: "Bonds"})
	require.NoError(t, err)
	_, err = f.catalog.ArchiveSubject(ctx, subject.ID)
	require.NoError(t, err)

	board, err := f.reviews.Dashboard(ctx, dto.DashboardInput{Today: "2024-01-10"})
	require.NoError(t, err)
	assert.Empty(t, board.Overdue)
	assert.Empty(t, board.Upcoming)
}

func TestStatsStreakAndCompletion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, []int{1})
	_, err := f.catalog.AddSubject(ctx, catalogdto.AddSubjectInput{Name: "Math"})
	require.NoError(t, err)
	for day := 8; day <= 10; day++ {
		_, err := f.reviews.LogStudy(ctx, dto.LogStudyInput{
			Subject:   "Math",
			Topic:     fmt.Sprintf("Day %d", day),
			StudiedAt: time.Date(2024, 1, day, 18, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	stats, err := f.reviews.Stats(ctx, dto.StatsInput{Today: "2024-01-10"})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Streak)
	assert.Equal(t, 3, stats.StudyEvents)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.DueToday)
	assert.Equal(t, 1, stats.Upcoming)
	assert.Zero(t, stats.CompletionRate)
	require.Len(t, stats.Subjects, 1)
	assert.Equal(t, 2, stats.Subjects[0].ReviewsDue)

	stats, err = f.reviews.Stats(ctx, dto.StatsInput{Today: "2024-01-10", From: "2024-01-10", To: "2024-01-10"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.StudyEvents)
	assert.Equal(t, 3, stats.Streak)

	stats, err = f.reviews.Stats(ctx, dto.StatsInput{Today: "2024-01-10", From: "2024-01-01", To: "2024-01-08"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.StudyEvents)
	assert.Equal(t, 3, stats.Streak)

	stats, err = f.reviews.Stats(ctx, dto.StatsInput{Today: "2024-01-12"})
	require.NoError(t, err)
	assert.Zero(t, stats.Streak)
}

func TestReindexRecreatesMissingNotes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.catalog.AddSubject(ctx, catalogdto.AddSubjectInput{Name: "Math"})
	require.NoError(t, err)
	kept, err := f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: "Math", Topic: "Kept"})
	require.NoError(t, err)
	lost, err := f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: "Math", Topic: "Lost"})
	require.NoError(t, err)

	edited := "# Kept\n\nmy own words\n"
	raw, err := os.ReadFile(kept.NotePath)
	require.NoError(t, err)
	head := strings.SplitN(string(raw), "\n---\n", 2)[0] + "\n---\n"
	require.NoError(t, os.WriteFile(kept.NotePath, []byte(head+edited), 0o644))
	require.NoError(t, os.Remove(lost.NotePath))

	out, err := f.reviews.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, out.StudyEvents)
	assert.Equal(t, 1, out.NotesWritten)

	_, err = os.Stat(lost.NotePath)
	require.NoError(t, err)
	raw, err = os.ReadFile(kept.NotePath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "my own words")
	assert.Contains(t, string(raw), "<!-- cadence:reviews:end -->")
}

func TestCompleteReplayIsAcceptedOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.catalog.AddSubject(ctx, catalogdto.AddSubjectInput{Name: "Math"})
	require.NoError(t, err)
	study, err := f.reviews.LogStudy(ctx, dto.LogStudyInput{Subject: "Math", Topic: "Series"})
	require.NoError(t, err)
	reviewID := study.Reviews[0].ID

	f.clock.Set(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	input := dto.CompleteInput{
		ReviewID:        reviewID,
		CompletedAt:     f.clock.Now(),
		ReviewStartedAt: f.clock.Now().Add(-90*time.Second + 250*time.Millisecond),
		DurationSeconds: 90,
	}
	first, err := f.reviews.Complete(ctx, input)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	again, err := f.reviews.Complete(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, first.CompletedAt.Equal(*again.CompletedAt))

	input.DurationSeconds = 45
	_, err = f.reviews.Complete(ctx, input)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
