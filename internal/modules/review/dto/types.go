package dto

import "time"

type LogStudyInput struct {
	// Subject is a subject id or, failing that, a subject name.
	Subject     string    `json:"subject" validate:"required"`
	Topic       string    `json:"topic" validate:"required,max=200"`
	StudiedAt   time.Time `json:"studied_at"`
	TemplateID  string    `json:"template_id"`
	Notes       string    `json:"notes" validate:"max=20000"`
	QuizCorrect *int      `json:"quiz_correct" validate:"omitempty,min=0"`
	QuizTotal   *int      `json:"quiz_total" validate:"omitempty,min=1"`
}

type DashboardInput struct {
	Today string `json:"today" validate:"datekey"`
}

type ListReviewsInput struct {
	From   string `json:"from" validate:"datekey"`
	To     string `json:"to" validate:"datekey"`
	Status string `json:"status" validate:"omitempty,oneof=pending completed deferred"`
}

type DeferInput struct {
	ReviewID string `json:"review_id" validate:"required"`
	Days     int    `json:"days" validate:"min=0,max=365"`
}

type CompleteInput struct {
	ReviewID        string    `json:"review_id" validate:"required"`
	CompletedAt     time.Time `json:"completed_at"`
	ReviewStartedAt time.Time `json:"review_started_at"`
	DurationSeconds int64     `json:"duration_seconds" validate:"min=0"`
	PausedSeconds   int64     `json:"paused_seconds" validate:"min=0"`
	QuizCorrect     *int      `json:"quiz_correct" validate:"omitempty,min=0"`
	QuizTotal       *int      `json:"quiz_total" validate:"omitempty,min=1"`
}

type StatsInput struct {
	Today string `json:"today" validate:"datekey"`
	From  string `json:"from" validate:"datekey"`
	To    string `json:"to" validate:"datekey"`
}

type ReviewOutput struct {
	ID              string     `json:"id"`
	StudyEventID    string     `json:"study_event_id"`
	SubjectID       string     `json:"subject_id"`
	SubjectName     string     `json:"subject_name"`
	Topic           string     `json:"topic"`
	StudiedAt       string     `json:"studied_at"`
	DueAt           string     `json:"due_at"`
	Offset          int        `json:"offset_days"`
	Status          string     `json:"status"`
	DaysLate        int        `json:"days_late,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSeconds int64      `json:"duration_seconds,omitempty"`
	PausedSeconds   int64      `json:"paused_seconds,omitempty"`
	QuizCorrect     *int       `json:"quiz_correct,omitempty"`
	QuizTotal       *int       `json:"quiz_total,omitempty"`
}

type DashboardOutput struct {
	Today     string         `json:"today"`
	Overdue   []ReviewOutput `json:"overdue"`
	DueToday  []ReviewOutput `json:"due_today"`
	Upcoming  []ReviewOutput `json:"upcoming"`
	Completed []ReviewOutput `json:"completed"`
}

type StudyOutput struct {
	ID          string         `json:"id"`
	SubjectID   string         `json:"subject_id"`
	SubjectName string         `json:"subject_name"`
	Topic       string         `json:"topic"`
	StudiedAt   time.Time      `json:"studied_at"`
	Offsets     []int          `json:"offsets"`
	NotePath    string         `json:"note_path"`
	Reviews     []ReviewOutput `json:"reviews"`
}

type ReviewDetailOutput struct {
	Review   ReviewOutput   `json:"review"`
	Notes    string         `json:"notes"`
	NotePath string         `json:"note_path"`
	NoteBody string         `json:"note_body"`
	Schedule []ReviewOutput `json:"schedule"`
}

type SubjectStatsOutput struct {
	SubjectID       string `json:"subject_id"`
	SubjectName     string `json:"subject_name"`
	StudyEvents     int    `json:"study_events"`
	ReviewsDue      int    `json:"reviews_due"`
	ReviewsDone     int    `json:"reviews_done"`
	ReviewedSeconds int64  `json:"reviewed_seconds"`
}

type StatsOutput struct {
	Today           string               `json:"today"`
	Streak          int                  `json:"streak"`
	CompletionRate  float64              `json:"completion_rate"`
	StudyEvents     int                  `json:"study_events"`
	Completed       int                  `json:"completed"`
	Overdue         int                  `json:"overdue"`
	DueToday        int                  `json:"due_today"`
	Upcoming        int                  `json:"upcoming"`
	ReviewedSeconds int64                `json:"reviewed_seconds"`
	QuizAccuracy    float64              `json:"quiz_accuracy"`
	Subjects        []SubjectStatsOutput `json:"subjects"`
}

type ReindexOutput struct {
	StudyEvents  int `json:"study_events"`
	NotesWritten int `json:"notes_written"`
}
