package out

import (
	"context"

	"cadence/internal/modules/notify/domain"
	notifyout "cadence/internal/modules/notify/port/out"
	reviewdto "cadence/internal/modules/review/dto"
	reviewin "cadence/internal/modules/review/port/in"
)

// ReviewDigestSource builds digests from the review dashboard.
type ReviewDigestSource struct {
	reviews reviewin.Usecase
}

func NewReviewDigestSource(reviews reviewin.Usecase) notifyout.DigestSource {
	return &ReviewDigestSource{reviews: reviews}
}

func (s *ReviewDigestSource) Digest(ctx context.Context, today string) (domain.Digest, error) {
	dashboard, err := s.reviews.Dashboard(ctx, reviewdto.DashboardInput{Today: today})
	if err != nil {
		return domain.Digest{}, err
	}
	return domain.Digest{
		Date:     dashboard.Today,
		Overdue:  digestItems(dashboard.Overdue),
		DueToday: digestItems(dashboard.DueToday),
	}, nil
}

func digestItems(reviews []reviewdto.ReviewOutput) []domain.DigestItem {
	items := make([]domain.DigestItem, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, domain.DigestItem{
			ReviewID: r.ID,
			Subject:  r.SubjectName,
			Topic:    r.Topic,
			DueAt:    r.DueAt,
			DaysLate: r.DaysLate,
		})
	}
	return items
}
