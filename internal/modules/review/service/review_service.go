package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cadence/internal/modules/review/domain"
	reviewout "cadence/internal/modules/review/port/out"
	"cadence/internal/platform/clock"
	apperrors "cadence/internal/platform/errors"
	"cadence/internal/platform/id"
	"cadence/internal/platform/logging"
)

type ReviewService struct {
	clock   clock.Clock
	idGen   id.Generator
	store   reviewout.ReviewStore
	journal reviewout.JournalStore
	logger  *slog.Logger
}

func NewReviewService(clock clock.Clock, idGen id.Generator, store reviewout.ReviewStore, journal reviewout.JournalStore, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		clock:   clock,
		idGen:   idGen,
		store:   store,
		journal: journal,
		logger:  logging.Component(logger, "review"),
	}
}

func (s *ReviewService) Today() domain.DateKey {
	return domain.KeyOf(s.clock.Now())
}

// LogStudy records a study event and schedules one review per offset.
// SubjectName and Offsets must already be resolved by the caller.
func (s *ReviewService) LogStudy(ctx context.Context, event domain.StudyEvent) (domain.StudyEvent, []domain.Review, error) {
	now := s.clock.Now()
	event.ID = s.idGen.New()
	event.Topic = strings.TrimSpace(event.Topic)
	event.CreatedAt = now
	if event.StudiedAt.IsZero() {
		event.StudiedAt = now
	}
	event.Offsets = domain.NormalizeOffsets(event.Offsets)
	if len(event.Offsets) == 0 {
		return domain.StudyEvent{}, nil, fmt.Errorf("%w: no positive review offsets", apperrors.ErrInvalidInput)
	}
	if err := event.Validate(); err != nil {
		return domain.StudyEvent{}, nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	studied := event.Day()
	dueDates := domain.ComputeDueDates(studied, event.Offsets)
	reviews := make([]domain.Review, 0, len(dueDates))
	for i, due := range dueDates {
		reviews = append(reviews, domain.Review{
			ID:           s.idGen.New(),
			StudyEventID: event.ID,
			SubjectID:    event.SubjectID,
			SubjectName:  event.SubjectName,
			Topic:        event.Topic,
			StudiedAt:    studied,
			DueAt:        due,
			Offset:       event.Offsets[i],
			Status:       domain.StatusPending,
			UpdatedAt:    now,
		})
	}

	path, err := s.journal.Save(ctx, domain.JournalNote{Event: event, Reviews: reviews})
	if err != nil {
		return domain.StudyEvent{}, nil, err
	}
	event.NotePath = path
	if err := s.store.SaveStudyEvent(ctx, event, reviews); err != nil {
		return domain.StudyEvent{}, nil, err
	}
	return event, reviews, nil
}

func (s *ReviewService) Dashboard(ctx context.Context, today domain.DateKey) (domain.Buckets, error) {
	reviews, err := s.store.ListReviews(ctx, reviewout.ReviewFilter{})
	if err != nil {
		return domain.Buckets{}, err
	}
	return domain.Classify(today, reviews), nil
}

func (s *ReviewService) ListReviews(ctx context.Context, filter reviewout.ReviewFilter) ([]domain.Review, error) {
	reviews, err := s.store.ListReviews(ctx, filter)
	if err != nil {
		return nil, err
	}
	domain.SortByDue(reviews)
	return reviews, nil
}

func (s *ReviewService) GetReview(ctx context.Context, reviewID string) (domain.Review, domain.JournalNote, error) {
	review, err := s.store.FindReview(ctx, reviewID)
	if err != nil {
		return domain.Review{}, domain.JournalNote{}, err
	}
	event, err := s.store.FindStudyEvent(ctx, review.StudyEventID)
	if err != nil {
		return domain.Review{}, domain.JournalNote{}, err
	}
	schedule, err := s.store.ListReviews(ctx, reviewout.ReviewFilter{StudyEventID: event.ID, IncludeArchived: true})
	if err != nil {
		return domain.Review{}, domain.JournalNote{}, err
	}
	domain.SortByDue(schedule)
	note := domain.JournalNote{Event: event, Reviews: schedule}
	if event.NotePath != "" {
		loaded, loadErr := s.journal.Load(ctx, event.NotePath)
		if loadErr != nil {
			s.logger.Warn("journal note unreadable", "path", event.NotePath, "error", loadErr)
		} else {
			note.Body = loaded.Body
		}
	}
	return review, note, nil
}

// Defer moves an open review days forward and marks it deferred.
func (s *ReviewService) Defer(ctx context.Context, reviewID string, days int) (domain.Review, error) {
	review, err := s.store.FindReview(ctx, reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	if review.Completed() {
		return domain.Review{}, fmt.Errorf("%w: review %s is already completed", apperrors.ErrInvalidInput, reviewID)
	}
	review.DueAt = domain.Defer(review.DueAt, days)
	review.Status = domain.StatusDeferred
	review.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateReview(ctx, review); err != nil {
		return domain.Review{}, err
	}
	s.refreshNote(ctx, review.StudyEventID)
	return review, nil
}

// Complete writes the outcome of a finished review exactly once. Replaying
// the completion that was already stored succeeds without writing again,
// so a caller that lost track of an earlier success can retry.
func (s *ReviewService) Complete(ctx context.Context, reviewID string, completion domain.Completion) (domain.Review, error) {
	review, err := s.store.FindReview(ctx, reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	if completion.Replays(review) {
		return review, nil
	}
	if review.Completed() {
		return domain.Review{}, fmt.Errorf("%w: review %s is already completed", apperrors.ErrInvalidInput, reviewID)
	}
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = s.clock.Now()
	}
	if err := completion.Validate(); err != nil {
		return domain.Review{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	review = completion.Apply(review)
	if err := s.store.UpdateReview(ctx, review); err != nil {
		return domain.Review{}, err
	}
	s.refreshNote(ctx, review.StudyEventID)
	return review, nil
}

func (s *ReviewService) Stats(ctx context.Context, today, from, to domain.DateKey) (domain.Stats, error) {
	events, err := s.store.ListStudyEvents(ctx, from, to)
	if err != nil {
		return domain.Stats{}, err
	}
	reviews, err := s.store.ListReviews(ctx, reviewout.ReviewFilter{From: from, To: to})
	if err != nil {
		return domain.Stats{}, err
	}
	stats := domain.Summarize(today, events, reviews)
	if from != "" || to != "" {
		history, err := s.store.ListStudyEvents(ctx, "", today)
		if err != nil {
			return domain.Stats{}, err
		}
		stats.Streak = domain.Streak(today, domain.ActiveDays(history))
	}
	return stats, nil
}

// Reindex rewrites the journal note of every study event from the
// database, recreating notes that went missing. Note bodies are kept.
func (s *ReviewService) Reindex(ctx context.Context) (int, int, error) {
	events, err := s.store.ListStudyEvents(ctx, "", "")
	if err != nil {
		return 0, 0, err
	}
	written := 0
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return len(events), written, err
		}
		changed, err := s.writeNote(ctx, event)
		if err != nil {
			return len(events), written, err
		}
		if changed {
			written++
		}
	}
	return len(events), written, nil
}

func (s *ReviewService) refreshNote(ctx context.Context, eventID string) {
	event, err := s.store.FindStudyEvent(ctx, eventID)
	if err == nil {
		_, err = s.writeNote(ctx, event)
	}
	if err != nil {
		s.logger.Warn("journal note not refreshed", "study_event_id", eventID, "error", err)
	}
}

// writeNote regenerates the managed schedule of event's note and reports
// whether the note had to be created from scratch.
func (s *ReviewService) writeNote(ctx context.Context, event domain.StudyEvent) (bool, error) {
	reviews, err := s.store.ListReviews(ctx, reviewout.ReviewFilter{StudyEventID: event.ID, IncludeArchived: true})
	if err != nil {
		return false, err
	}
	domain.SortByDue(reviews)
	note := domain.JournalNote{Event: event, Reviews: reviews}
	created := true
	if event.NotePath != "" {
		if existing, loadErr := s.journal.Load(ctx, event.NotePath); loadErr == nil {
			note.Body = existing.Body
			created = false
		}
	}
	path, err := s.journal.Save(ctx, note)
	if err != nil {
		return false, err
	}
	if path != event.NotePath {
		if err := s.store.SetNotePath(ctx, event.ID, path); err != nil {
			return false, err
		}
	}
	return created, nil
}
