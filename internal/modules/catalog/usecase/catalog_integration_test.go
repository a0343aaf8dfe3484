package usecase_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogout "cadence/internal/modules/catalog/adapter/out"
	"cadence/internal/modules/catalog/domain"
	"cadence/internal/modules/catalog/dto"
	catalogin "cadence/internal/modules/catalog/port/in"
	"cadence/internal/modules/catalog/service"
	"cadence/internal/modules/catalog/usecase"
	"cadence/internal/platform/database"
	apperrors "cadence/internal/platform/errors"
)

type tickingClock struct{ now time.Time }

func (c *tickingClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

type seqIDs struct{ n int }

func (g *seqIDs) New() string {
	g.n++
	return fmt.Sprintf("id-%02d", g.n)
}

func newCatalog(t *testing.T, plan domain.Plan) catalogin.Usecase {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "cadence.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := catalogout.NewSQLiteCatalogStore(ctx, db)
	require.NoError(t, err)
	clk := &tickingClock{now: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	return usecase.NewInteractor(service.NewCatalogService(clk, &seqIDs{}, store, store, plan))
}

func TestSubjectsAreUniqueCaseInsensitively(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := newCatalog(t, domain.Plan{Tier: domain.TierPro})

	math, err := uc.AddSubject(ctx, dto.AddSubjectInput{Name: "Math", Color: "#ff8800"})
	require.NoError(t, err)
	_, err = uc.AddSubject(ctx, dto.AddSubjectInput{Name: " math "})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = uc.AddSubject(ctx, dto.AddSubjectInput{Name: "Biology"})
	require.NoError(t, err)

	list, err := uc.ListSubjects(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Biology", list[0].Name)
	assert.Equal(t, math.ID, list[1].ID)
}

func TestAddSubjectValidatesInput(t *testing.T) {
	t.Parallel()
	uc := newCatalog(t, domain.Plan{Tier: domain.TierPro})
	_, err := uc.AddSubject(context.Background(), dto.AddSubjectInput{Name: ""})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = uc.AddSubject(context.Background(), dto.AddSubjectInput{Name: "Art", Color: "teal"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestFreePlanLimitsActiveSubjects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := newCatalog(t, domain.Plan{Tier: domain.TierFree, SubjectLimit: 2, TemplateLimit: 1})

	first, err := uc.AddSubject(ctx, dto.AddSubjectInput{Name: "One"})
	require.NoError(t, err)
	_, err = uc.AddSubject(ctx, dto.AddSubjectInput{Name: "Two"})
	require.NoError(t, err)
	_, err = uc.AddSubject(ctx, dto.AddSubjectInput{Name: "Three"})
	require.ErrorIs(t, err, apperrors.ErrPlanLimit)

	archived, err := uc.ArchiveSubject(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	_, err = uc.AddSubject(ctx, dto.AddSubjectInput{Name: "Three"})
	require.NoError(t, err)

	// Restoring an archived subject counts against the limit again.
	_, err = uc.AddSubject(ctx, dto.AddSubjectInput{Name: "one"})
	require.ErrorIs(t, err, apperrors.ErrPlanLimit)

	all, err := uc.ListSubjects(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	plan, err := uc.Plan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.ActiveSubjects)
	assert.Equal(t, "free", plan.Tier)
}

func TestTemplatesNormaliseAndTrackDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := newCatalog(t, domain.Plan{Tier: domain.TierFree, SubjectLimit: 5, TemplateLimit: 2})

	_, err := uc.DefaultTemplate(ctx)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	standard, err := uc.AddTemplate(ctx, dto.AddTemplateInput{Name: "Standard", Offsets: []int{15, 1, 7, 7}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 7, 15}, standard.Offsets)
	assert.True(t, standard.IsDefault, "first template becomes the default")

	cram, err := uc.AddTemplate(ctx, dto.AddTemplateInput{Name: "Cram", Offsets: []int{1, 2}})
	require.NoError(t, err)
	assert.False(t, cram.IsDefault)

	_, err = uc.AddTemplate(ctx, dto.AddTemplateInput{Name: "Third", Offsets: []int{3}})
	require.ErrorIs(t, err, apperrors.ErrPlanLimit)

	_, err = uc.SetDefaultTemplate(ctx, cram.ID)
	require.NoError(t, err)
	def, err := uc.DefaultTemplate(ctx)
	require.NoError(t, err)
	assert.Equal(t, cram.ID, def.ID)

	got, err := uc.GetTemplate(ctx, standard.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	_, err = uc.SetDefaultTemplate(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddTemplateRejectsOffsetsThatNormaliseToNothing(t *testing.T) {
	t.Parallel()
	uc := newCatalog(t, domain.Plan{Tier: domain.TierPro})
	_, err := uc.AddTemplate(context.Background(), dto.AddTemplateInput{Name: "Broken", Offsets: []int{0, -2}})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
