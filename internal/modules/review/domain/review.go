package domain

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusDeferred  Status = "deferred"
)

const (
	ManagedScheduleStart = "<!-- cadence:reviews:start -->"
	ManagedScheduleEnd   = "<!-- cadence:reviews:end -->"
	SchemaVersion        = 1
)

func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusCompleted, StatusDeferred:
		return nil
	default:
		return fmt.Errorf("unsupported review status %q", string(s))
	}
}

// Quiz holds optional self-reported accuracy for a study event or review.
type Quiz struct {
	Correct int
	Total   int
}

func (q Quiz) Validate() error {
	if q.Total <= 0 {
		return fmt.Errorf("quiz total must be positive")
	}
	if q.Correct < 0 || q.Correct > q.Total {
		return fmt.Errorf("quiz correct must be between 0 and %d", q.Total)
	}
	return nil
}

func (q Quiz) Accuracy() float64 {
	if q.Total == 0 {
		return 0
	}
	return float64(q.Correct) / float64(q.Total)
}

type StudyEvent struct {
	ID          string
	SubjectID   string
	SubjectName string
	Topic       string
	Notes       string
	StudiedAt   time.Time
	TemplateID  string
	Offsets     []int
	Quiz        *Quiz
	NotePath    string
	CreatedAt   time.Time
}

func (e StudyEvent) Day() DateKey {
	return KeyOf(e.StudiedAt)
}

func (e StudyEvent) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(e.SubjectID) == "" {
		return fmt.Errorf("subject is required")
	}
	if strings.TrimSpace(e.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if e.StudiedAt.IsZero() {
		return fmt.Errorf("studied at is required")
	}
	if e.Quiz != nil {
		return e.Quiz.Validate()
	}
	return nil
}

// Review is one scheduled follow-up of a study event.
type Review struct {
	ID              string
	StudyEventID    string
	SubjectID       string
	SubjectName     string
	Topic           string
	StudiedAt       DateKey
	DueAt           DateKey
	Offset          int
	Status          Status
	CompletedAt     time.Time
	ReviewStartedAt time.Time
	DurationSeconds int64
	PausedSeconds   int64
	Quiz            *Quiz
	UpdatedAt       time.Time
}

func (r Review) Completed() bool {
	return r.Status == StatusCompleted
}

// Completion is the outcome written when a timed review is confirmed.
type Completion struct {
	CompletedAt     time.Time
	ReviewStartedAt time.Time
	DurationSeconds int64
	PausedSeconds   int64
	Quiz            *Quiz
}

func (c Completion) Validate() error {
	if c.CompletedAt.IsZero() {
		return fmt.Errorf("completed at is required")
	}
	if c.DurationSeconds < 0 || c.PausedSeconds < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.Quiz != nil {
		return c.Quiz.Validate()
	}
	return nil
}

// Replays reports whether r was already completed with the timing of c.
// Instants are compared at second precision, the resolution they are
// stored with.
func (c Completion) Replays(r Review) bool {
	if !r.Completed() || c.ReviewStartedAt.IsZero() {
		return false
	}
	return r.ReviewStartedAt.Truncate(time.Second).Equal(c.ReviewStartedAt.Truncate(time.Second)) &&
		r.DurationSeconds == c.DurationSeconds &&
		r.PausedSeconds == c.PausedSeconds
}

// Apply marks r completed with the values of c.
func (c Completion) Apply(r Review) Review {
	r.Status = StatusCompleted
	r.CompletedAt = c.CompletedAt
	r.ReviewStartedAt = c.ReviewStartedAt
	r.DurationSeconds = c.DurationSeconds
	r.PausedSeconds = c.PausedSeconds
	if c.Quiz != nil {
		quiz := *c.Quiz
		r.Quiz = &quiz
	}
	r.UpdatedAt = c.CompletedAt
	return r
}

// JournalNote is the markdown companion of a study event. Body is the
// user-editable part; the review schedule is kept in a managed block.
type JournalNote struct {
	Event   StudyEvent
	Reviews []Review
	Body    string
}
