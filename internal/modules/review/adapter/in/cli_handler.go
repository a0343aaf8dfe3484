package in

import (
	"context"
	"time"

	"cadence/internal/modules/review/dto"
	reviewin "cadence/internal/modules/review/port/in"
)

type CLIHandler struct {
	usecase reviewin.Usecase
}

func NewCLIHandler(usecase reviewin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) LogStudy(ctx context.Context, subject, topic string, studiedAt time.Time, templateID, notes string, quizCorrect, quizTotal *int) (dto.StudyOutput, error) {
	return h.usecase.LogStudy(ctx, dto.LogStudyInput{
		Subject:     subject,
		Topic:       topic,
		StudiedAt:   studiedAt,
		TemplateID:  templateID,
		Notes:       notes,
		QuizCorrect: quizCorrect,
		QuizTotal:   quizTotal,
	})
}

func (h CLIHandler) Dashboard(ctx context.Context, today string) (dto.DashboardOutput, error) {
	return h.usecase.Dashboard(ctx, dto.DashboardInput{Today: today})
}

func (h CLIHandler) ListReviews(ctx context.Context, from, to, status string) ([]dto.ReviewOutput, error) {
	return h.usecase.ListReviews(ctx, dto.ListReviewsInput{From: from, To: to, Status: status})
}

func (h CLIHandler) GetReview(ctx context.Context, id string) (dto.ReviewDetailOutput, error) {
	return h.usecase.GetReview(ctx, id)
}

func (h CLIHandler) Defer(ctx context.Context, id string, days int) (dto.ReviewOutput, error) {
	return h.usecase.Defer(ctx, dto.DeferInput{ReviewID: id, Days: days})
}

func (h CLIHandler) Stats(ctx context.Context, today, from, to string) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx, dto.StatsInput{Today: today, From: from, To: to})
}

func (h CLIHandler) Reindex(ctx context.Context) (dto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx)
}
