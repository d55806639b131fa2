package review

import "context"

type Repository interface {
	Create(ctx context.Context, r *Review) error
	// ListByIdeaID returns the log in seq order.
	ListByIdeaID(ctx context.Context, ideaNumericID uint64) ([]Review, error)
	GetByReviewID(ctx context.Context, reviewID string) (*Review, error)
}
