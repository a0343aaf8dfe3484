package usecase

import (
	"context"
	"fmt"

	"cadence/internal/modules/timer/domain"
	"cadence/internal/modules/timer/dto"
	timerin "cadence/internal/modules/timer/port/in"
	"cadence/internal/modules/timer/service"
	apperrors "cadence/internal/platform/errors"
	"cadence/internal/platform/validate"
)

type Interactor struct {
	svc *service.TimerService
}

var (
	_ timerin.Usecase  = (*Interactor)(nil)
	_ timerin.Observer = (*Interactor)(nil)
)

func NewInteractor(svc *service.TimerService) *Interactor {
	return &Interactor{svc: svc}
}

func (i *Interactor) State(ctx context.Context) (dto.StateOutput, error) {
	state, err := i.svc.State(ctx)
	if err != nil {
		return dto.StateOutput{}, err
	}
	return toStateOutput(state), nil
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.CommandOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.CommandOutput{}, err
	}
	return toCommandOutput(i.svc.Start(ctx, input.ReviewID))
}

func (i *Interactor) Pause(ctx context.Context) (dto.CommandOutput, error) {
	return toCommandOutput(i.svc.Pause(ctx))
}

func (i *Interactor) Resume(ctx context.Context) (dto.CommandOutput, error) {
	return toCommandOutput(i.svc.Resume(ctx))
}

func (i *Interactor) RequestFinish(ctx context.Context) (dto.CommandOutput, error) {
	return toCommandOutput(i.svc.RequestFinish(ctx))
}

func (i *Interactor) CancelFinish(ctx context.Context) (dto.CommandOutput, error) {
	return toCommandOutput(i.svc.CancelFinish(ctx))
}

func (i *Interactor) ConfirmFinish(ctx context.Context) (dto.ConfirmOutput, error) {
	result, pending, err := i.svc.ConfirmFinish(ctx)
	if err != nil {
		return dto.ConfirmOutput{}, err
	}
	out := dto.ConfirmOutput{CommandOutput: commandOutput(result)}
	if pending != nil {
		p := toPendingOutput(*pending)
		out.Pending = &p
	}
	return out, nil
}

func (i *Interactor) Commit(ctx context.Context, input dto.CommitInput) (dto.StateOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.StateOutput{}, err
	}
	quiz, err := quizOf(input.QuizCorrect, input.QuizTotal)
	if err != nil {
		return dto.StateOutput{}, err
	}
	state, err := i.svc.Commit(ctx, input.ReviewID, quiz)
	if err != nil {
		return dto.StateOutput{}, err
	}
	return toStateOutput(state), nil
}

func (i *Interactor) Discard(ctx context.Context) (dto.CommandOutput, error) {
	return toCommandOutput(i.svc.Discard(ctx))
}

func (i *Interactor) Recover(ctx context.Context) (dto.StateOutput, error) {
	state, err := i.svc.Recover(ctx)
	if err != nil {
		return dto.StateOutput{}, err
	}
	return toStateOutput(state), nil
}

func (i *Interactor) Subscribe(onState func(dto.StateOutput), onFinished func(dto.PendingOutput)) func() {
	events := i.svc.Events()
	unsubscribeState := func() {}
	if onState != nil {
		unsubscribeState = events.SessionChanged.Subscribe(func(e domain.SessionChanged) {
			onState(toStateOutput(e.State))
		})
	}
	unsubscribeFinished := func() {}
	if onFinished != nil {
		unsubscribeFinished = events.ReviewFinished.Subscribe(func(e domain.ReviewFinished) {
			onFinished(toPendingOutput(e.Pending))
		})
	}
	return func() {
		unsubscribeState()
		unsubscribeFinished()
	}
}

func (i *Interactor) SubscribeDialog(onDialog func(open bool)) func() {
	return i.svc.Events().FinishDialogOpen.Subscribe(func(e domain.FinishDialogOpen) {
		onDialog(e.Open)
	})
}

func (i *Interactor) SubscribeLayout(onLayout func(lines int)) func() {
	return i.svc.Events().LayoutOffset.Subscribe(func(e domain.LayoutOffset) {
		onLayout(e.Lines)
	})
}

func (i *Interactor) SetFinishDialogOpen(open bool) {
	i.svc.SetFinishDialogOpen(open)
}

func (i *Interactor) FinishDialogOpen() bool {
	return i.svc.FinishDialogOpen()
}

func (i *Interactor) SetLayoutOffset(lines int) {
	i.svc.SetLayoutOffset(lines)
}

func quizOf(correct, total *int) (*domain.Quiz, error) {
	if correct == nil && total == nil {
		return nil, nil
	}
	if correct == nil || total == nil {
		return nil, fmt.Errorf("%w: quiz_correct and quiz_total go together", apperrors.ErrInvalidInput)
	}
	quiz := domain.Quiz{Correct: *correct, Total: *total}
	if err := quiz.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return &quiz, nil
}

func toCommandOutput(result domain.Result, err error) (dto.CommandOutput, error) {
	if err != nil {
		return dto.CommandOutput{}, err
	}
	return commandOutput(result), nil
}

func commandOutput(result domain.Result) dto.CommandOutput {
	return dto.CommandOutput{
		State:         toStateOutput(result.State),
		Changed:       result.Changed,
		AlreadyActive: result.AlreadyActive,
	}
}

func toStateOutput(state domain.State) dto.StateOutput {
	out := dto.StateOutput{
		Phase:          string(state.Phase),
		ReviewID:       state.ReviewID(),
		ElapsedSeconds: state.ElapsedSeconds,
	}
	if state.Session != nil {
		startedAt := state.Session.StartedAt
		out.StartedAt = &startedAt
		out.PausedSeconds = state.Session.PausedSeconds
		out.IsPaused = state.Session.IsPaused
		out.FinishRequested = state.Session.FinishRequested
	}
	if state.Pending != nil {
		p := toPendingOutput(*state.Pending)
		out.Pending = &p
		if state.Session == nil {
			startedAt := state.Pending.StartedAt
			out.StartedAt = &startedAt
			out.PausedSeconds = state.Pending.PausedSeconds
		}
	}
	return out
}

func toPendingOutput(p domain.PendingCompletion) dto.PendingOutput {
	return dto.PendingOutput{
		ReviewID:        p.ReviewID,
		StartedAt:       p.StartedAt,
		EndedAt:         p.EndedAt,
		DurationSeconds: p.DurationSeconds,
		PausedSeconds:   p.PausedSeconds,
	}
}
