package reviewmock

import (
	"context"

	domain "innovation-portal/internal/domain/review"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	CreateFn        func(ctx context.Context, r *domain.Review) error
	ListByIdeaIDFn  func(ctx context.Context, ideaNumericID uint64) ([]domain.Review, error)
	GetByReviewIDFn func(ctx context.Context, reviewID string) (*domain.Review, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Review) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

// ListByIdeaID defaults to an empty log.
func (m *Repo) ListByIdeaID(ctx context.Context, ideaNumericID uint64) ([]domain.Review, error) {
	if m.ListByIdeaIDFn != nil {
		return m.ListByIdeaIDFn(ctx, ideaNumericID)
	}
	return nil, nil
}

func (m *Repo) GetByReviewID(ctx context.Context, reviewID string) (*domain.Review, error) {
	if m.GetByReviewIDFn != nil {
		return m.GetByReviewIDFn(ctx, reviewID)
	}
	return nil, context.Canceled
}
