package domain

import (
	"fmt"
	"strings"
	"time"
)

// PendingCompletion is a finished timing that has not yet been saved to
// the review store.
type PendingCompletion struct {
	ReviewID        string    `json:"review_id"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds int64     `json:"duration_seconds"`
	PausedSeconds   int64     `json:"paused_seconds"`
	WasRunning      bool      `json:"was_running"`
}

func (p PendingCompletion) Validate() error {
	if strings.TrimSpace(p.ReviewID) == "" {
		return fmt.Errorf("review id is required")
	}
	if p.StartedAt.IsZero() || p.EndedAt.IsZero() {
		return fmt.Errorf("start and end instants are required")
	}
	if p.DurationSeconds < 0 || p.PausedSeconds < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// Reopen rebuilds the session p was taken from, paused at EndedAt and
// resumed at now when it had been running.
func (p PendingCompletion) Reopen(now time.Time) Session {
	endedAt := p.EndedAt
	session := Session{
		ReviewID:      p.ReviewID,
		StartedAt:     p.StartedAt,
		PausedAt:      &endedAt,
		PausedSeconds: p.PausedSeconds,
		IsPaused:      true,
	}
	if p.WasRunning {
		session, _ = session.Resume(now)
	}
	return session
}

func (p PendingCompletion) Equal(other PendingCompletion) bool {
	return p.ReviewID == other.ReviewID &&
		p.StartedAt.Equal(other.StartedAt) &&
		p.EndedAt.Equal(other.EndedAt) &&
		p.DurationSeconds == other.DurationSeconds &&
		p.PausedSeconds == other.PausedSeconds &&
		p.WasRunning == other.WasRunning
}

// Quiz is the optional self-assessment entered when confirming a review.
type Quiz struct {
	Correct int
	Total   int
}

func (q Quiz) Validate() error {
	if q.Total < 1 {
		return fmt.Errorf("quiz total must be at least 1")
	}
	if q.Correct < 0 || q.Correct > q.Total {
		return fmt.Errorf("quiz correct must be between 0 and %d", q.Total)
	}
	return nil
}
