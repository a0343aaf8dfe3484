package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	catalogdto "cadence/internal/modules/catalog/dto"
	catalogin "cadence/internal/modules/catalog/port/in"
	"cadence/internal/modules/review/domain"
	"cadence/internal/modules/review/dto"
	reviewin "cadence/internal/modules/review/port/in"
	reviewout "cadence/internal/modules/review/port/out"
	"cadence/internal/modules/review/service"
	apperrors "cadence/internal/platform/errors"
	"cadence/internal/platform/validate"
)

type Interactor struct {
	svc            *service.ReviewService
	catalog        catalogin.Usecase
	defaultOffsets []int
}

// NewInteractor wires the review usecase. defaultOffsets apply when the
// catalog has no default template; an empty slice falls back to
// domain.DefaultOffsets.
func NewInteractor(svc *service.ReviewService, catalog catalogin.Usecase, defaultOffsets []int) reviewin.Usecase {
	offsets := domain.NormalizeOffsets(defaultOffsets)
	if len(offsets) == 0 {
		offsets = domain.DefaultOffsets
	}
	return &Interactor{svc: svc, catalog: catalog, defaultOffsets: offsets}
}

func (i *Interactor) LogStudy(ctx context.Context, input dto.LogStudyInput) (dto.StudyOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.StudyOutput{}, err
	}
	quiz, err := quizOf(input.QuizCorrect, input.QuizTotal)
	if err != nil {
		return dto.StudyOutput{}, err
	}
	subject, err := i.resolveSubject(ctx, input.Subject)
	if err != nil {
		return dto.StudyOutput{}, err
	}
	templateID, offsets, err := i.resolveOffsets(ctx, input.TemplateID)
	if err != nil {
		return dto.StudyOutput{}, err
	}

	event, reviews, err := i.svc.LogStudy(ctx, domain.StudyEvent{
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		Topic:       input.Topic,
		Notes:       input.Notes,
		StudiedAt:   input.StudiedAt,
		TemplateID:  templateID,
		Offsets:     offsets,
		Quiz:        quiz,
	})
	if err != nil {
		return dto.StudyOutput{}, err
	}
	today := i.svc.Today()
	out := dto.StudyOutput{
		ID:          event.ID,
		SubjectID:   event.SubjectID,
		SubjectName: event.SubjectName,
		Topic:       event.Topic,
		StudiedAt:   event.StudiedAt,
		Offsets:     event.Offsets,
		NotePath:    event.NotePath,
		Reviews:     toReviewOutputs(today, reviews),
	}
	return out, nil
}

func (i *Interactor) resolveSubject(ctx context.Context, ref string) (catalogdto.SubjectOutput, error) {
	ref = strings.TrimSpace(ref)
	subject, err := i.catalog.GetSubject(ctx, ref)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return catalogdto.SubjectOutput{}, err
		}
		subjects, listErr := i.catalog.ListSubjects(ctx, true)
		if listErr != nil {
			return catalogdto.SubjectOutput{}, listErr
		}
		found := false
		for _, candidate := range subjects {
			if strings.EqualFold(candidate.Name, ref) {
				subject, found = candidate, true
				break
			}
		}
		if !found {
			return catalogdto.SubjectOutput{}, fmt.Errorf("subject %q: %w", ref, apperrors.ErrNotFound)
		}
	}
	if subject.Archived {
		return catalogdto.SubjectOutput{}, fmt.Errorf("%w: subject %q is archived", apperrors.ErrInvalidInput, subject.Name)
	}
	return subject, nil
}

func (i *Interactor) resolveOffsets(ctx context.Context, templateID string) (string, []int, error) {
	if strings.TrimSpace(templateID) != "" {
		template, err := i.catalog.GetTemplate(ctx, templateID)
		if err != nil {
			return "", nil, err
		}
		return template.ID, template.Offsets, nil
	}
	template, err := i.catalog.DefaultTemplate(ctx)
	switch {
	case err == nil:
		return template.ID, template.Offsets, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return "", i.defaultOffsets, nil
	default:
		return "", nil, err
	}
}

func (i *Interactor) Dashboard(ctx context.Context, input dto.DashboardInput) (dto.DashboardOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.DashboardOutput{}, err
	}
	today := i.todayOr(input.Today)
	buckets, err := i.svc.Dashboard(ctx, today)
	if err != nil {
		return dto.DashboardOutput{}, err
	}
	return dto.DashboardOutput{
		Today:     today.String(),
		Overdue:   toReviewOutputs(today, buckets.Overdue),
		DueToday:  toReviewOutputs(today, buckets.DueToday),
		Upcoming:  toReviewOutputs(today, buckets.Upcoming),
		Completed: toReviewOutputs(today, buckets.Completed),
	}, nil
}

func (i *Interactor) ListReviews(ctx context.Context, input dto.ListReviewsInput) ([]dto.ReviewOutput, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if input.From != "" && input.To != "" && input.To < input.From {
		return nil, fmt.Errorf("%w: to must not be before from", apperrors.ErrInvalidInput)
	}
	reviews, err := i.svc.ListReviews(ctx, reviewout.ReviewFilter{
		From:   domain.DateKey(input.From),
		To:     domain.DateKey(input.To),
		Status: domain.Status(input.Status),
	})
	if err != nil {
		return nil, err
	}
	return toReviewOutputs(i.svc.Today(), reviews), nil
}

func (i *Interactor) GetReview(ctx context.Context, id string) (dto.ReviewDetailOutput, error) {
	review, note, err := i.svc.GetReview(ctx, id)
	if err != nil {
		return dto.ReviewDetailOutput{}, err
	}
	today := i.svc.Today()
	return dto.ReviewDetailOutput{
		Review:   toReviewOutput(today, review),
		Notes:    note.Event.Notes,
		NotePath: note.Event.NotePath,
		NoteBody: note.Body,
		Schedule: toReviewOutputs(today, note.Reviews),
	}, nil
}

func (i *Interactor) Defer(ctx context.Context, input dto.DeferInput) (dto.ReviewOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.ReviewOutput{}, err
	}
	review, err := i.svc.Defer(ctx, input.ReviewID, input.Days)
	if err != nil {
		return dto.ReviewOutput{}, err
	}
	return toReviewOutput(i.svc.Today(), review), nil
}

func (i *Interactor) Complete(ctx context.Context, input dto.CompleteInput) (dto.ReviewOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.ReviewOutput{}, err
	}
	quiz, err := quizOf(input.QuizCorrect, input.QuizTotal)
	if err != nil {
		return dto.ReviewOutput{}, err
	}
	review, err := i.svc.Complete(ctx, input.ReviewID, domain.Completion{
		CompletedAt:     input.CompletedAt,
		ReviewStartedAt: input.ReviewStartedAt,
		DurationSeconds: input.DurationSeconds,
		PausedSeconds:   input.PausedSeconds,
		Quiz:            quiz,
	})
	if err != nil {
		return dto.ReviewOutput{}, err
	}
	return toReviewOutput(i.svc.Today(), review), nil
}

func (i *Interactor) Stats(ctx context.Context, input dto.StatsInput) (dto.StatsOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.StatsOutput{}, err
	}
	today := i.todayOr(input.Today)
	stats, err := i.svc.Stats(ctx, today, domain.DateKey(input.From), domain.DateKey(input.To))
	if err != nil {
		return dto.StatsOutput{}, err
	}
	out := dto.StatsOutput{
		Today:           stats.Today.String(),
		Streak:          stats.Streak,
		CompletionRate:  stats.CompletionRate,
		StudyEvents:     stats.StudyEvents,
		Completed:       stats.Completed,
		Overdue:         stats.Overdue,
		DueToday:        stats.DueToday,
		Upcoming:        stats.Upcoming,
		ReviewedSeconds: stats.ReviewedSeconds,
		QuizAccuracy:    stats.QuizAccuracy,
		Subjects:        make([]dto.SubjectStatsOutput, 0, len(stats.Subjects)),
	}
	for _, subject := range stats.Subjects {
		out.Subjects = append(out.Subjects, dto.SubjectStatsOutput{
			SubjectID:       subject.SubjectID,
			SubjectName:     subject.SubjectName,
			StudyEvents:     subject.StudyEvents,
			ReviewsDue:      subject.ReviewsDue,
			ReviewsDone:     subject.ReviewsDone,
			ReviewedSeconds: subject.ReviewedSeconds,
		})
	}
	return out, nil
}

func (i *Interactor) Reindex(ctx context.Context) (dto.ReindexOutput, error) {
	events, written, err := i.svc.Reindex(ctx)
	if err != nil {
		return dto.ReindexOutput{}, err
	}
	return dto.ReindexOutput{StudyEvents: events, NotesWritten: written}, nil
}

func (i *Interactor) todayOr(raw string) domain.DateKey {
	if raw == "" {
		return i.svc.Today()
	}
	return domain.DateKey(raw)
}

func quizOf(correct, total *int) (*domain.Quiz, error) {
	if correct == nil && total == nil {
		return nil, nil
	}
	if correct == nil || total == nil {
		return nil, fmt.Errorf("%w: quiz_correct and quiz_total go together", apperrors.ErrInvalidInput)
	}
	quiz := domain.Quiz{Correct: *correct, Total: *total}
	if err := quiz.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return &quiz, nil
}

func toReviewOutputs(today domain.DateKey, reviews []domain.Review) []dto.ReviewOutput {
	out := make([]dto.ReviewOutput, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, toReviewOutput(today, review))
	}
	return out
}

func toReviewOutput(today domain.DateKey, review domain.Review) dto.ReviewOutput {
	out := dto.ReviewOutput{
		ID:              review.ID,
		StudyEventID:    review.StudyEventID,
		SubjectID:       review.SubjectID,
		SubjectName:     review.SubjectName,
		Topic:           review.Topic,
		StudiedAt:       review.StudiedAt.String(),
		DueAt:           review.DueAt.String(),
		Offset:          review.Offset,
		Status:          string(review.Status),
		DurationSeconds: review.DurationSeconds,
		PausedSeconds:   review.PausedSeconds,
	}
	if !review.Completed() {
		out.DaysLate = domain.DaysLate(today, review.DueAt)
	}
	if !review.CompletedAt.IsZero() {
		completedAt := review.CompletedAt
		out.CompletedAt = &completedAt
	}
	if review.Quiz != nil {
		correct, total := review.Quiz.Correct, review.Quiz.Total
		out.QuizCorrect = &correct
		out.QuizTotal = &total
	}
	return out
}
