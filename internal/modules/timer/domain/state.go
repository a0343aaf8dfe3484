package domain

import "time"

type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseRunning         Phase = "running"
	PhasePaused          Phase = "paused"
	PhaseFinishRequested Phase = "finish_requested"
	// PhasePending means the finish was confirmed but the completion has
	// not been saved yet.
	PhasePending Phase = "pending"
)

// State is the read model published to every view.
type State struct {
	Phase          Phase
	Session        *Session
	Pending        *PendingCompletion
	ElapsedSeconds int64
}

func NewState(session *Session, pending *PendingCompletion, now time.Time) State {
	state := State{Phase: PhaseIdle}
	if session != nil {
		s := *session
		state.Session = &s
		state.ElapsedSeconds = s.Elapsed(now)
		switch {
		case s.FinishRequested:
			state.Phase = PhaseFinishRequested
		case s.IsPaused:
			state.Phase = PhasePaused
		default:
			state.Phase = PhaseRunning
		}
	}
	if pending != nil {
		p := *pending
		state.Pending = &p
		if session == nil {
			state.Phase = PhasePending
			state.ElapsedSeconds = p.DurationSeconds
		}
	}
	return state
}

// ReviewID is the review currently owning the timer, if any.
func (s State) ReviewID() string {
	switch {
	case s.Session != nil:
		return s.Session.ReviewID
	case s.Pending != nil:
		return s.Pending.ReviewID
	default:
		return ""
	}
}

// Equal compares the persisted parts of two states; elapsed time is
// derived and ignored.
func (s State) Equal(other State) bool {
	if s.Phase != other.Phase {
		return false
	}
	if (s.Session == nil) != (other.Session == nil) || (s.Pending == nil) != (other.Pending == nil) {
		return false
	}
	if s.Session != nil && !s.Session.Equal(*other.Session) {
		return false
	}
	if s.Pending != nil && !s.Pending.Equal(*other.Pending) {
		return false
	}
	return true
}

// Result describes the outcome of a timer command.
type Result struct {
	State         State
	Changed       bool
	AlreadyActive bool
}
