package out_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reviewdto "cadence/internal/modules/review/dto"
	reviewin "cadence/internal/modules/review/port/in"
	timerout "cadence/internal/modules/timer/adapter/out"
	"cadence/internal/modules/timer/domain"
)

type recordingReviews struct {
	reviewin.Usecase
	got reviewdto.CompleteInput
}

func (r *recordingReviews) Complete(_ context.Context, input reviewdto.CompleteInput) (reviewdto.ReviewOutput, error) {
	r.got = input
	return reviewdto.ReviewOutput{ID: input.ReviewID}, nil
}

func TestReviewCompleterMapsPendingCompletion(t *testing.T) {
	t.Parallel()
	started := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	reviews := &recordingReviews{}
	completer := timerout.NewReviewCompleter(reviews)

	err := completer.CompleteReview(context.Background(), domain.PendingCompletion{
		ReviewID:        "rev-1",
		StartedAt:       started,
		EndedAt:         started.Add(3 * time.Minute),
		DurationSeconds: 150,
		PausedSeconds:   30,
	}, &domain.Quiz{Correct: 4, Total: 5})
	require.NoError(t, err)

	assert.Equal(t, "rev-1", reviews.got.ReviewID)
	assert.Equal(t, started, reviews.got.ReviewStartedAt)
	assert.Equal(t, started.Add(3*time.Minute), reviews.got.CompletedAt)
	assert.Equal(t, int64(150), reviews.got.DurationSeconds)
	assert.Equal(t, int64(30), reviews.got.PausedSeconds)
	require.NotNil(t, reviews.got.QuizCorrect)
	assert.Equal(t, 4, *reviews.got.QuizCorrect)
	assert.Equal(t, 5, *reviews.got.QuizTotal)
}
