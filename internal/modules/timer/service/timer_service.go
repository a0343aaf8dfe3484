package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"cadence/internal/modules/timer/domain"
	timerout "cadence/internal/modules/timer/port/out"
	"cadence/internal/platform/clock"
	apperrors "cadence/internal/platform/errors"
	"cadence/internal/platform/logging"
)

const (
	SessionKey = "timer.session"
	PendingKey = "timer.pending"
)

// TimerService owns the timer slots. Every mutation is persisted before
// it is published, so subscribers always observe stored state.
type TimerService struct {
	clock     clock.Clock
	store     timerout.StateStore
	completer timerout.ReviewCompleter
	events    *domain.Events
	logger    *slog.Logger

	mu         sync.Mutex
	last       domain.State
	dialogOpen bool
	layout     int

	committing atomic.Bool
}

type slots struct {
	session *domain.Session
	pending *domain.PendingCompletion
}

func NewTimerService(clock clock.Clock, store timerout.StateStore, completer timerout.ReviewCompleter, events *domain.Events, logger *slog.Logger) *TimerService {
	return &TimerService{
		clock:     clock,
		store:     store,
		completer: completer,
		events:    events,
		logger:    logging.Component(logger, "timer"),
		last:      domain.State{Phase: domain.PhaseIdle},
	}
}

func (s *TimerService) Events() *domain.Events {
	return s.events
}

func (s *TimerService) State(ctx context.Context) (domain.State, error) {
	current, err := s.load(ctx)
	if err != nil {
		return domain.State{}, err
	}
	return domain.NewState(current.session, current.pending, s.clock.Now()), nil
}

// Start times reviewID. A different review already owning the timer is a
// conflict; the same review keeps running, or resumes when paused.
func (s *TimerService) Start(ctx context.Context, reviewID string) (domain.Result, error) {
	if reviewID == "" {
		return domain.Result{}, fmt.Errorf("%w: review id is required", apperrors.ErrInvalidInput)
	}
	return s.mutate(ctx, func(current slots, result *domain.Result) (slots, error) {
		now := s.clock.Now()
		switch {
		case current.pending != nil:
			return current, fmt.Errorf("%w: review %s is waiting to be saved", apperrors.ErrTimerConflict, current.pending.ReviewID)
		case current.session == nil:
			session := domain.NewSession(reviewID, now)
			current.session = &session
			result.Changed = true
		case current.session.ReviewID != reviewID:
			return current, fmt.Errorf("%w: review %s is being timed", apperrors.ErrTimerConflict, current.session.ReviewID)
		default:
			resumed, ok := current.session.Resume(now)
			if !ok {
				result.AlreadyActive = true
				return current, nil
			}
			current.session = &resumed
			result.Changed = true
		}
		return current, nil
	})
}

func (s *TimerService) Pause(ctx context.Context) (domain.Result, error) {
	return s.transition(ctx, domain.Session.Pause)
}

func (s *TimerService) Resume(ctx context.Context) (domain.Result, error) {
	return s.transition(ctx, domain.Session.Resume)
}

func (s *TimerService) RequestFinish(ctx context.Context) (domain.Result, error) {
	return s.transition(ctx, domain.Session.RequestFinish)
}

// CancelFinish restores the run state from before the finish flow. A
// session already converted into a pending record is rebuilt from it.
func (s *TimerService) CancelFinish(ctx context.Context) (domain.Result, error) {
	return s.mutate(ctx, func(current slots, result *domain.Result) (slots, error) {
		now := s.clock.Now()
		if current.session != nil {
			next, ok := current.session.CancelFinish(now)
			if ok {
				current.session = &next
				current.pending = nil
				result.Changed = true
			}
			return current, nil
		}
		if current.pending != nil {
			session := current.pending.Reopen(now)
			current.session = &session
			current.pending = nil
			result.Changed = true
		}
		return current, nil
	})
}

// ConfirmFinish turns a finish-requested session into a pending
// completion and announces it once. When a pending completion is already
// stored, from a commit that failed earlier, it is announced again as is.
func (s *TimerService) ConfirmFinish(ctx context.Context) (domain.Result, *domain.PendingCompletion, error) {
	var pending *domain.PendingCompletion
	result, err := s.mutate(ctx, func(current slots, result *domain.Result) (slots, error) {
		switch {
		case current.session != nil && current.session.FinishRequested:
			snapshot := current.session.Snapshot(s.clock.Now())
			current.pending = &snapshot
			current.session = nil
			result.Changed = true
		case current.session == nil && current.pending != nil:
		default:
			return current, nil
		}
		p := *current.pending
		pending = &p
		return current, nil
	})
	if err != nil {
		return domain.Result{}, nil, err
	}
	if pending != nil {
		s.events.ReviewFinished.Publish(domain.ReviewFinished{Pending: *pending})
	}
	return result, pending, nil
}

// Commit saves the pending completion with optional quiz results. The
// pending record is dropped only after the review store accepted it.
func (s *TimerService) Commit(ctx context.Context, reviewID string, quiz *domain.Quiz) (domain.State, error) {
	if !s.committing.CompareAndSwap(false, true) {
		return domain.State{}, apperrors.ErrCommitInFlight
	}
	defer s.committing.Store(false)

	current, err := s.load(ctx)
	if err != nil {
		return domain.State{}, err
	}
	if current.pending == nil {
		return domain.State{}, fmt.Errorf("nothing to save: %w", apperrors.ErrNoActiveSession)
	}
	pending := *current.pending
	if reviewID != "" && reviewID != pending.ReviewID {
		return domain.State{}, fmt.Errorf("%w: pending completion belongs to review %s", apperrors.ErrInvalidInput, pending.ReviewID)
	}

	if err := s.completer.CompleteReview(ctx, pending, quiz); err != nil {
		return domain.State{}, fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}

	result, err := s.mutate(ctx, func(current slots, result *domain.Result) (slots, error) {
		if current.pending != nil && current.pending.Equal(pending) {
			current.pending = nil
			result.Changed = true
		}
		return current, nil
	})
	if err != nil {
		return domain.State{}, err
	}
	return result.State, nil
}

// Discard drops the session and any pending completion without saving.
func (s *TimerService) Discard(ctx context.Context) (domain.Result, error) {
	return s.mutate(ctx, func(current slots, result *domain.Result) (slots, error) {
		if current.session == nil && current.pending == nil {
			return current, nil
		}
		result.Changed = true
		return slots{}, nil
	})
}

// Recover publishes the stored state after a restart and re-announces a
// pending completion so its form can be shown again.
func (s *TimerService) Recover(ctx context.Context) (domain.State, error) {
	current, err := s.load(ctx)
	if err != nil {
		return domain.State{}, err
	}
	state := domain.NewState(current.session, current.pending, s.clock.Now())
	s.mu.Lock()
	s.last = state
	s.mu.Unlock()

	s.events.SessionChanged.Publish(domain.SessionChanged{State: state})
	if current.pending != nil && current.session == nil {
		s.events.ReviewFinished.Publish(domain.ReviewFinished{Pending: *current.pending})
	}
	return state, nil
}

// Reload re-reads the slots after an outside change and publishes only
// when the state differs from what was last published.
func (s *TimerService) Reload(ctx context.Context) (domain.State, bool, error) {
	s.mu.Lock()
	current, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return domain.State{}, false, err
	}
	state := domain.NewState(current.session, current.pending, s.clock.Now())
	changed := !state.Equal(s.last)
	if changed {
		s.last = state
	}
	s.mu.Unlock()

	if changed {
		s.events.SessionChanged.Publish(domain.SessionChanged{State: state})
	}
	return state, changed, nil
}

// Watch reloads on every slot change reported by watcher until ctx ends.
func (s *TimerService) Watch(ctx context.Context, watcher timerout.ChangeWatcher) error {
	return watcher.Watch(ctx, func(key string) {
		if key != SessionKey && key != PendingKey {
			return
		}
		if _, _, err := s.Reload(ctx); err != nil {
			s.logger.Warn("reload after outside change failed", "key", key, "error", err)
		}
	})
}

func (s *TimerService) SetFinishDialogOpen(open bool) {
	s.mu.Lock()
	changed := s.dialogOpen != open
	s.dialogOpen = open
	s.mu.Unlock()
	if changed {
		s.events.FinishDialogOpen.Publish(domain.FinishDialogOpen{Open: open})
	}
}

func (s *TimerService) FinishDialogOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogOpen
}

func (s *TimerService) SetLayoutOffset(lines int) {
	if lines < 0 {
		lines = 0
	}
	s.mu.Lock()
	changed := s.layout != lines
	s.layout = lines
	s.mu.Unlock()
	if changed {
		s.events.LayoutOffset.Publish(domain.LayoutOffset{Lines: lines})
	}
}

func (s *TimerService) transition(ctx context.Context, step func(domain.Session, time.Time) (domain.Session, bool)) (domain.Result, error) {
	return s.mutate(ctx, func(current slots, result *domain.Result) (slots, error) {
		if current.session == nil {
			return current, nil
		}
		next, ok := step(*current.session, s.clock.Now())
		if ok {
			current.session = &next
			result.Changed = true
		}
		return current, nil
	})
}

// mutate runs fn against freshly loaded slots under the service lock,
// persists what changed and then publishes the new state.
func (s *TimerService) mutate(ctx context.Context, fn func(slots, *domain.Result) (slots, error)) (domain.Result, error) {
	s.mu.Lock()
	current, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return domain.Result{}, err
	}
	result := domain.Result{}
	next, err := fn(current, &result)
	if err != nil {
		s.mu.Unlock()
		return domain.Result{}, err
	}
	if result.Changed {
		if err := s.save(ctx, current, next); err != nil {
			s.mu.Unlock()
			return domain.Result{}, err
		}
	}
	result.State = domain.NewState(next.session, next.pending, s.clock.Now())
	publish := result.Changed || !result.State.Equal(s.last)
	if publish {
		s.last = result.State
	}
	s.mu.Unlock()

	if publish {
		s.events.SessionChanged.Publish(domain.SessionChanged{State: result.State})
	}
	return result, nil
}

func (s *TimerService) load(ctx context.Context) (slots, error) {
	// Validate has a value receiver, so it must run after decoding rather
	// than be bound as a method value up front.
	session := &domain.Session{}
	okSession, err := s.readSlot(ctx, SessionKey, session, func() error { return session.Validate() })
	if err != nil {
		return slots{}, err
	}
	pending := &domain.PendingCompletion{}
	okPending, err := s.readSlot(ctx, PendingKey, pending, func() error { return pending.Validate() })
	if err != nil {
		return slots{}, err
	}
	out := slots{}
	if okSession {
		out.session = session
	}
	if okPending {
		out.pending = pending
	}
	return out, nil
}

// readSlot decodes key into target. Unreadable data counts as absent.
func (s *TimerService) readSlot(ctx context.Context, key string, target any, validate func() error) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		s.logger.Warn("discarding corrupted timer slot", "key", key, "error", err)
		return false, nil
	}
	if err := validate(); err != nil {
		s.logger.Warn("discarding invalid timer slot", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// save writes the pending slot before the session slot so an interrupted
// confirm never loses the snapshot.
func (s *TimerService) save(ctx context.Context, prev, next slots) error {
	if err := writeSlot(ctx, s.store, PendingKey, prev.pending != nil, next.pending); err != nil {
		return err
	}
	return writeSlot(ctx, s.store, SessionKey, prev.session != nil, next.session)
}

func writeSlot[T any](ctx context.Context, store timerout.StateStore, key string, existed bool, value *T) error {
	if value == nil {
		if !existed {
			return nil
		}
		if err := store.Remove(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
