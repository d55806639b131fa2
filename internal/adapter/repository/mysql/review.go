package mysql

import (
	"context"

	reviewDomain "innovation-portal/internal/domain/review"

	"gorm.io/gorm"
)

type ReviewRepository struct{ db *gorm.DB }

func NewReviewRepository(db *gorm.DB) *ReviewRepository { return &ReviewRepository{db: db} }

func (r *ReviewRepository) Create(ctx context.Context, rv *reviewDomain.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *ReviewRepository) ListByIdeaID(ctx context.Context, ideaNumericID uint64) ([]reviewDomain.Review, error) {
	var out []reviewDomain.Review
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaNumericID).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

func (r *ReviewRepository) GetByReviewID(ctx context.Context, reviewID string) (*reviewDomain.Review, error) {
	var out reviewDomain.Review
	res := r.db.WithContext(ctx).Where("review_id = ?", reviewID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, reviewDomain.ErrNotFound)
	}
	return &out, nil
}
