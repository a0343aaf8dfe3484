package in

import (
	"context"

	"cadence/internal/modules/notify/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.NotifierInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Digest(ctx context.Context, today string) (dto.DigestOutput, error)
	Send(ctx context.Context, input dto.SendInput) (dto.SendOutput, error)
}
