package apperrors

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrNoActiveSession = errors.New("no active timer session")
	ErrTimerConflict   = errors.New("another review is already being timed")
	ErrPersistence     = errors.New("review store rejected the write")
	ErrCommitInFlight  = errors.New("completion already being saved")
	ErrPlanLimit       = errors.New("plan limit reached")
)
