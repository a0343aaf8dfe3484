package out

import (
	"context"

	reviewdto "cadence/internal/modules/review/dto"
	reviewin "cadence/internal/modules/review/port/in"
	"cadence/internal/modules/timer/domain"
	timerout "cadence/internal/modules/timer/port/out"
)

// ReviewCompleter saves confirmed timings through the review usecase.
type ReviewCompleter struct {
	reviews reviewin.Usecase
}

func NewReviewCompleter(reviews reviewin.Usecase) timerout.ReviewCompleter {
	return &ReviewCompleter{reviews: reviews}
}

func (c *ReviewCompleter) CompleteReview(ctx context.Context, pending domain.PendingCompletion, quiz *domain.Quiz) error {
	input := reviewdto.CompleteInput{
		ReviewID:        pending.ReviewID,
		CompletedAt:     pending.EndedAt,
		ReviewStartedAt: pending.StartedAt,
		DurationSeconds: pending.DurationSeconds,
		PausedSeconds:   pending.PausedSeconds,
	}
	if quiz != nil {
		correct, total := quiz.Correct, quiz.Total
		input.QuizCorrect = &correct
		input.QuizTotal = &total
	}
	_, err := c.reviews.Complete(ctx, input)
	return err
}
