package service_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogout "cadence/internal/modules/catalog/adapter/out"
	catalogdomain "cadence/internal/modules/catalog/domain"
	catalogdto "cadence/internal/modules/catalog/dto"
	catalogservice "cadence/internal/modules/catalog/service"
	catalogusecase "cadence/internal/modules/catalog/usecase"
	reviewout "cadence/internal/modules/review/adapter/out"
	reviewdto "cadence/internal/modules/review/dto"
	reviewin "cadence/internal/modules/review/port/in"
	reviewservice "cadence/internal/modules/review/service"
	reviewusecase "cadence/internal/modules/review/usecase"
	timerout "cadence/internal/modules/timer/adapter/out"
	"cadence/internal/modules/timer/domain"
	"cadence/internal/modules/timer/service"
	"cadence/internal/platform/clock"
	"cadence/internal/platform/database"
	"cadence/internal/platform/logging"
)

func TestFileSlotsSurviveRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	clk := clock.NewManual(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	first := service.NewTimerService(clk, timerout.NewFileStateStore(dir), &fakeCompleter{}, domain.NewEvents(), logging.Nop())

	_, err := first.Start(ctx, "rev-1")
	require.NoError(t, err)
	clk.Advance(60 * time.Second)
	_, err = first.Pause(ctx)
	require.NoError(t, err)
	clk.Advance(30 * time.Second)
	_, err = first.Resume(ctx)
	require.NoError(t, err)
	clk.Advance(10 * time.Second)
	_, err = first.Pause(ctx)
	require.NoError(t, err)

	second := service.NewTimerService(clk, timerout.NewFileStateStore(dir), &fakeCompleter{}, domain.NewEvents(), logging.Nop())
	state, err := second.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePaused, state.Phase)
	assert.Equal(t, "rev-1", state.ReviewID())
	require.NotNil(t, state.Session)
	assert.Equal(t, int64(30), state.Session.PausedSeconds)
	assert.Equal(t, int64(70), state.ElapsedSeconds)

	_, err = second.Start(ctx, "rev-2")
	require.Error(t, err)

	// The second instance finishes the review; a third one started later
	// finds the pending completion and asks for it again.
	_, err = second.RequestFinish(ctx)
	require.NoError(t, err)
	_, pending, err := second.ConfirmFinish(ctx)
	require.NoError(t, err)
	require.NotNil(t, pending)

	restarted := &fixture{}
	third := service.NewTimerService(clk, timerout.NewFileStateStore(dir), &fakeCompleter{}, eventsInto(restarted), logging.Nop())
	state, err = third.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePending, state.Phase)
	require.NotNil(t, state.Pending)
	assert.Equal(t, int64(70), state.Pending.DurationSeconds)
	assert.Equal(t, []string{"changed:pending", "finished:rev-1"}, restarted.log)
}

// flakyStore fails the first removal of one key.
type flakyStore struct {
	*timerout.FileStateStore
	mu     sync.Mutex
	failOn string
	failed bool
}

func (s *flakyStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	fail := key == s.failOn && !s.failed
	if fail {
		s.failed = true
	}
	s.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return s.FileStateStore.Remove(ctx, key)
}

func newReviewStack(t *testing.T, clk clock.Clock) reviewin.Usecase {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	db, err := database.Open(ctx, filepath.Join(dir, "cadence.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ids := &seqIDs{}
	catalogStore, err := catalogout.NewSQLiteCatalogStore(ctx, db)
	require.NoError(t, err)
	catalog := catalogusecase.NewInteractor(catalogservice.NewCatalogService(clk, ids, catalogStore, catalogStore, catalogdomain.Plan{Tier: catalogdomain.TierPro}))
	reviewStore, err := reviewout.NewSQLiteReviewStore(ctx, db)
	require.NoError(t, err)
	svc := reviewservice.NewReviewService(clk, ids, reviewStore, reviewout.NewJournalStore(filepath.Join(dir, "journal")), logging.Nop())

	_, err = catalog.AddSubject(ctx, catalogdto.AddSubjectInput{Name: "Math"})
	require.NoError(t, err)
	return reviewusecase.NewInteractor(svc, catalog, nil)
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}

func TestCommitRetrySucceedsAfterPendingClearFailed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	reviews := newReviewStack(t, clk)
	study, err := reviews.LogStudy(ctx, reviewdto.LogStudyInput{Subject: "Math", Topic: "Limits"})
	require.NoError(t, err)
	require.NotEmpty(t, study.Reviews)
	reviewID := study.Reviews[0].ID

	store := &flakyStore{FileStateStore: timerout.NewFileStateStore(t.TempDir()), failOn: service.PendingKey}
	svc := service.NewTimerService(clk, store, timerout.NewReviewCompleter(reviews), domain.NewEvents(), logging.Nop())

	_, err = svc.Start(ctx, reviewID)
	require.NoError(t, err)
	clk.Advance(90 * time.Second)
	_, err = svc.RequestFinish(ctx)
	require.NoError(t, err)
	_, _, err = svc.ConfirmFinish(ctx)
	require.NoError(t, err)

	_, err = svc.Commit(ctx, reviewID, nil)
	require.Error(t, err)
	state, err := svc.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePending, state.Phase)

	state, err = svc.Commit(ctx, reviewID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseIdle, state.Phase)

	detail, err := reviews.GetReview(ctx, reviewID)
	require.NoError(t, err)
	assert.Equal(t, "completed", detail.Review.Status)
	assert.Equal(t, int64(90), detail.Review.DurationSeconds)
}
