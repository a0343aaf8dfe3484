package domain

import (
	"fmt"
	"strings"
	"time"
)

const SchemaVersion = 1

// Session is the single live timer. It is mutated only through the
// transition methods below, each of which reports whether anything
// changed so callers can treat invalid transitions as no-ops.
type Session struct {
	ReviewID      string     `json:"review_id"`
	StartedAt     time.Time  `json:"started_at"`
	PausedAt      *time.Time `json:"paused_at,omitempty"`
	PausedSeconds int64      `json:"paused_seconds"`
	IsPaused      bool       `json:"is_paused"`
	// FinishRequested freezes the clock while the completion form is open.
	FinishRequested bool `json:"finish_requested"`
	// WasRunning remembers the run state from before RequestFinish so a
	// cancel can resume the clock.
	WasRunning bool `json:"was_running"`
}

func NewSession(reviewID string, now time.Time) Session {
	return Session{ReviewID: reviewID, StartedAt: now}
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.ReviewID) == "" {
		return fmt.Errorf("review id is required")
	}
	if s.StartedAt.IsZero() {
		return fmt.Errorf("started at is required")
	}
	if s.IsPaused && s.PausedAt == nil {
		return fmt.Errorf("paused session has no pause instant")
	}
	if s.PausedSeconds < 0 {
		return fmt.Errorf("paused seconds must not be negative")
	}
	return nil
}

// Elapsed is the net timed duration in whole seconds. While paused the
// clock stops at PausedAt. It never goes below zero.
func (s Session) Elapsed(now time.Time) int64 {
	end := now
	if s.IsPaused && s.PausedAt != nil {
		end = *s.PausedAt
	}
	elapsed := end.Sub(s.StartedAt) - time.Duration(s.PausedSeconds)*time.Second
	if elapsed < 0 {
		return 0
	}
	return int64(elapsed / time.Second)
}

func (s Session) Pause(now time.Time) (Session, bool) {
	if s.IsPaused || s.FinishRequested {
		return s, false
	}
	at := now
	s.IsPaused = true
	s.PausedAt = &at
	return s, true
}

func (s Session) Resume(now time.Time) (Session, bool) {
	if !s.IsPaused || s.FinishRequested {
		return s, false
	}
	s.PausedSeconds += pauseSpan(s.PausedAt, now)
	s.IsPaused = false
	s.PausedAt = nil
	return s, true
}

// RequestFinish freezes the clock, pausing a running session first.
func (s Session) RequestFinish(now time.Time) (Session, bool) {
	if s.FinishRequested {
		return s, false
	}
	s.WasRunning = !s.IsPaused
	if s.WasRunning {
		s, _ = s.Pause(now)
	}
	s.FinishRequested = true
	return s, true
}

// CancelFinish leaves the finish flow and restores the run state from
// before it started.
func (s Session) CancelFinish(now time.Time) (Session, bool) {
	if !s.FinishRequested {
		return s, false
	}
	wasRunning := s.WasRunning
	s.FinishRequested = false
	s.WasRunning = false
	if wasRunning {
		s, _ = s.Resume(now)
	}
	return s, true
}

// Snapshot freezes s into a pending completion ending at now. The pause
// in progress counts towards PausedSeconds so that duration plus paused
// time spans StartedAt to EndedAt.
func (s Session) Snapshot(now time.Time) PendingCompletion {
	paused := s.PausedSeconds
	if s.IsPaused {
		paused += pauseSpan(s.PausedAt, now)
	}
	return PendingCompletion{
		ReviewID:        s.ReviewID,
		StartedAt:       s.StartedAt,
		EndedAt:         now,
		DurationSeconds: s.Elapsed(now),
		PausedSeconds:   paused,
		WasRunning:      s.WasRunning,
	}
}

func (s Session) Equal(other Session) bool {
	if (s.PausedAt == nil) != (other.PausedAt == nil) {
		return false
	}
	if s.PausedAt != nil && !s.PausedAt.Equal(*other.PausedAt) {
		return false
	}
	return s.ReviewID == other.ReviewID &&
		s.StartedAt.Equal(other.StartedAt) &&
		s.PausedSeconds == other.PausedSeconds &&
		s.IsPaused == other.IsPaused &&
		s.FinishRequested == other.FinishRequested &&
		s.WasRunning == other.WasRunning
}

func pauseSpan(pausedAt *time.Time, now time.Time) int64 {
	if pausedAt == nil {
		return 0
	}
	span := now.Sub(*pausedAt)
	if span < 0 {
		return 0
	}
	return int64(span / time.Second)
}
