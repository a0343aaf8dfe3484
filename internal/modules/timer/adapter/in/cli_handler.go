package in

import (
	"context"

	"cadence/internal/modules/timer/dto"
	timerin "cadence/internal/modules/timer/port/in"
)

type CLIHandler struct {
	usecase timerin.Usecase
}

func NewCLIHandler(usecase timerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) State(ctx context.Context) (dto.StateOutput, error) {
	return h.usecase.State(ctx)
}

func (h CLIHandler) Start(ctx context.Context, reviewID string) (dto.CommandOutput, error) {
	return h.usecase.Start(ctx, dto.StartInput{ReviewID: reviewID})
}

func (h CLIHandler) Pause(ctx context.Context) (dto.CommandOutput, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (dto.CommandOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Finish(ctx context.Context) (dto.CommandOutput, error) {
	return h.usecase.RequestFinish(ctx)
}

func (h CLIHandler) Cancel(ctx context.Context) (dto.CommandOutput, error) {
	return h.usecase.CancelFinish(ctx)
}

// Confirm confirms the finish and saves it straight away, the
// non-interactive path where the quiz is given on the command line.
func (h CLIHandler) Confirm(ctx context.Context, quizCorrect, quizTotal *int) (dto.StateOutput, error) {
	confirmed, err := h.usecase.ConfirmFinish(ctx)
	if err != nil {
		return dto.StateOutput{}, err
	}
	if confirmed.Pending == nil {
		return confirmed.State, nil
	}
	return h.usecase.Commit(ctx, dto.CommitInput{
		ReviewID:    confirmed.Pending.ReviewID,
		QuizCorrect: quizCorrect,
		QuizTotal:   quizTotal,
	})
}

func (h CLIHandler) Discard(ctx context.Context) (dto.CommandOutput, error) {
	return h.usecase.Discard(ctx)
}
