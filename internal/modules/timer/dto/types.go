package dto

import "time"

type StartInput struct {
	ReviewID string `json:"review_id" validate:"required"`
}

type CommitInput struct {
	// ReviewID, when set, must match the pending completion.
	ReviewID    string `json:"review_id"`
	QuizCorrect *int   `json:"quiz_correct" validate:"omitempty,min=0"`
	QuizTotal   *int   `json:"quiz_total" validate:"omitempty,min=1"`
}

type PendingOutput struct {
	ReviewID        string    `json:"review_id"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds int64     `json:"duration_seconds"`
	PausedSeconds   int64     `json:"paused_seconds"`
}

type StateOutput struct {
	Phase           string         `json:"phase"`
	ReviewID        string         `json:"review_id,omitempty"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	ElapsedSeconds  int64          `json:"elapsed_seconds"`
	PausedSeconds   int64          `json:"paused_seconds"`
	IsPaused        bool           `json:"is_paused"`
	FinishRequested bool           `json:"finish_requested"`
	Pending         *PendingOutput `json:"pending,omitempty"`
}

// CommandOutput is the state after a timer command.
type CommandOutput struct {
	State         StateOutput `json:"state"`
	Changed       bool        `json:"changed"`
	AlreadyActive bool        `json:"already_active,omitempty"`
}

type ConfirmOutput struct {
	CommandOutput
	Pending *PendingOutput `json:"pending,omitempty"`
}
