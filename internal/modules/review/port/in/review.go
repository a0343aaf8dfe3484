package in

import (
	"context"

	"cadence/internal/modules/review/dto"
)

type Usecase interface {
	LogStudy(ctx context.Context, input dto.LogStudyInput) (dto.StudyOutput, error)
	Dashboard(ctx context.Context, input dto.DashboardInput) (dto.DashboardOutput, error)
	ListReviews(ctx context.Context, input dto.ListReviewsInput) ([]dto.ReviewOutput, error)
	GetReview(ctx context.Context, id string) (dto.ReviewDetailOutput, error)
	Defer(ctx context.Context, input dto.DeferInput) (dto.ReviewOutput, error)
	Complete(ctx context.Context, input dto.CompleteInput) (dto.ReviewOutput, error)
	Stats(ctx context.Context, input dto.StatsInput) (dto.StatsOutput, error)
	Reindex(ctx context.Context) (dto.ReindexOutput, error)
}
