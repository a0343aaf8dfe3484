package domain

import "cadence/internal/platform/bus"

type SessionChanged struct {
	State State
}

// ReviewFinished fires once per confirmed finish, carrying the record
// that still needs quiz results and saving.
type ReviewFinished struct {
	Pending PendingCompletion
}

type FinishDialogOpen struct {
	Open bool
}

// LayoutOffset is the number of terminal lines the compact timer
// indicator occupies.
type LayoutOffset struct {
	Lines int
}

type Events struct {
	SessionChanged   *bus.Topic[SessionChanged]
	ReviewFinished   *bus.Topic[ReviewFinished]
	FinishDialogOpen *bus.Topic[FinishDialogOpen]
	LayoutOffset     *bus.Topic[LayoutOffset]
}

func NewEvents() *Events {
	return &Events{
		SessionChanged:   bus.NewTopic[SessionChanged](),
		ReviewFinished:   bus.NewTopic[ReviewFinished](),
		FinishDialogOpen: bus.NewTopic[FinishDialogOpen](),
		LayoutOffset:     bus.NewTopic[LayoutOffset](),
	}
}
