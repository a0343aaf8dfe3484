package in

import (
	"context"

	"cadence/internal/modules/notify/dto"
	notifyin "cadence/internal/modules/notify/port/in"
)

type CLIHandler struct {
	usecase notifyin.Usecase
}

func NewCLIHandler(usecase notifyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.NotifierInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Digest(ctx context.Context, today string) (dto.DigestOutput, error) {
	return h.usecase.Digest(ctx, today)
}

func (h CLIHandler) Send(ctx context.Context, today string, force bool) (dto.SendOutput, error) {
	return h.usecase.Send(ctx, dto.SendInput{Today: today, Force: force})
}
