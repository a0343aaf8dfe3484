package in

import (
	"context"

	"cadence/internal/modules/timer/dto"
)

type Usecase interface {
	State(ctx context.Context) (dto.StateOutput, error)
	Start(ctx context.Context, input dto.StartInput) (dto.CommandOutput, error)
	Pause(ctx context.Context) (dto.CommandOutput, error)
	Resume(ctx context.Context) (dto.CommandOutput, error)
	RequestFinish(ctx context.Context) (dto.CommandOutput, error)
	CancelFinish(ctx context.Context) (dto.CommandOutput, error)
	ConfirmFinish(ctx context.Context) (dto.ConfirmOutput, error)
	Commit(ctx context.Context, input dto.CommitInput) (dto.StateOutput, error)
	Discard(ctx context.Context) (dto.CommandOutput, error)
	Recover(ctx context.Context) (dto.StateOutput, error)
}

// Observer is the view-facing side of the timer: change notifications and
// the shared signals views use to coordinate with each other.
type Observer interface {
	// Subscribe registers handlers for state changes and confirmed
	// finishes. Either may be nil. The returned func unsubscribes both.
	Subscribe(onState func(dto.StateOutput), onFinished func(dto.PendingOutput)) func()
	SubscribeDialog(onDialog func(open bool)) func()
	SubscribeLayout(onLayout func(lines int)) func()
	SetFinishDialogOpen(open bool)
	FinishDialogOpen() bool
	SetLayoutOffset(lines int)
}
