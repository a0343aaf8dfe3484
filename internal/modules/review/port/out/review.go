package out

import (
	"context"

	"cadence/internal/modules/review/domain"
)

// ReviewFilter narrows a review listing. Empty date bounds are open.
type ReviewFilter struct {
	From            domain.DateKey
	To              domain.DateKey
	Status          domain.Status
	StudyEventID    string
	IncludeArchived bool
}

type ReviewStore interface {
	// SaveStudyEvent stores the event and its reviews atomically.
	SaveStudyEvent(ctx context.Context, event domain.StudyEvent, reviews []domain.Review) error
	SetNotePath(ctx context.Context, eventID, notePath string) error
	FindStudyEvent(ctx context.Context, id string) (domain.StudyEvent, error)
	ListStudyEvents(ctx context.Context, from, to domain.DateKey) ([]domain.StudyEvent, error)
	FindReview(ctx context.Context, id string) (domain.Review, error)
	ListReviews(ctx context.Context, filter ReviewFilter) ([]domain.Review, error)
	UpdateReview(ctx context.Context, review domain.Review) error
}

// JournalStore keeps one markdown note per study event.
type JournalStore interface {
	Save(ctx context.Context, note domain.JournalNote) (string, error)
	Load(ctx context.Context, path string) (domain.JournalNote, error)
}
