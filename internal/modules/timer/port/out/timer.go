package out

import (
	"context"

	"cadence/internal/modules/timer/domain"
)

// StateStore is a durable key-value store shared by every process that
// drives the timer.
type StateStore interface {
	// Get reports ok=false when key has never been set or was removed.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// ChangeWatcher reports keys changed by any process, including this one.
type ChangeWatcher interface {
	// Watch blocks until ctx is done.
	Watch(ctx context.Context, onChange func(key string)) error
}

// ReviewCompleter saves a confirmed review outcome.
type ReviewCompleter interface {
	CompleteReview(ctx context.Context, pending domain.PendingCompletion, quiz *domain.Quiz) error
}
