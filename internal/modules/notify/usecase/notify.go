package usecase

import (
	"context"

	"cadence/internal/modules/notify/domain"
	"cadence/internal/modules/notify/dto"
	notifyin "cadence/internal/modules/notify/port/in"
	"cadence/internal/modules/notify/service"
	"cadence/internal/platform/validate"
)

type Interactor struct {
	svc *service.NotifyService
}

func NewInteractor(svc *service.NotifyService) notifyin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.NotifierInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Digest(ctx context.Context, today string) (dto.DigestOutput, error) {
	if err := validate.Struct(dto.SendInput{Today: today}); err != nil {
		return dto.DigestOutput{}, err
	}
	digest, err := i.svc.Digest(ctx, today)
	if err != nil {
		return dto.DigestOutput{}, err
	}
	return toDigestOutput(digest), nil
}

func (i *Interactor) Send(ctx context.Context, input dto.SendInput) (dto.SendOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.SendOutput{}, err
	}
	digest, deliveries, skipped, err := i.svc.Send(ctx, input.Today, input.Force)
	if err != nil {
		return dto.SendOutput{}, err
	}
	out := dto.SendOutput{Digest: toDigestOutput(digest), Skipped: skipped, Deliveries: make([]dto.DeliveryResult, 0, len(deliveries))}
	for _, d := range deliveries {
		out.Deliveries = append(out.Deliveries, dto.DeliveryResult{Notifier: d.Notifier, Delivered: d.Delivered, Error: d.Error})
	}
	return out, nil
}

func toDigestOutput(digest domain.Digest) dto.DigestOutput {
	return dto.DigestOutput{
		Date:     digest.Date,
		Title:    digest.Title(),
		Body:     digest.Body(),
		Overdue:  toItems(digest.Overdue),
		DueToday: toItems(digest.DueToday),
	}
}

func toItems(items []domain.DigestItem) []dto.DigestItem {
	out := make([]dto.DigestItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.DigestItem{
			ReviewID: item.ReviewID,
			Subject:  item.Subject,
			Topic:    item.Topic,
			DueAt:    item.DueAt,
			DaysLate: item.DaysLate,
		})
	}
	return out
}
