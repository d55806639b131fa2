package mysql

import (
	"context"
	"time"

	ideaDomain "innovation-portal/internal/domain/idea"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdeaRepository struct{ db *gorm.DB }

func NewIdeaRepository(db *gorm.DB) *IdeaRepository { return &IdeaRepository{db: db} }

func (r *IdeaRepository) Create(ctx context.Context, i *ideaDomain.Idea) error {
	// associations are written explicitly through AddCoApplicants/AddAttachments
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(i).Error
}

func (r *IdeaRepository) AddCoApplicants(ctx context.Context, rows []ideaDomain.CoApplicant) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *IdeaRepository) AddAttachments(ctx context.Context, rows []ideaDomain.Attachment) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *IdeaRepository) CountAttachments(ctx context.Context, id uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ideaDomain.Attachment{}).Where("idea_id = ?", id).Count(&n).Error
	return n, err
}

func (r *IdeaRepository) GetByIdeaID(ctx context.Context, ideaID string) (*ideaDomain.Idea, error) {
	var out ideaDomain.Idea
	res := r.db.WithContext(ctx).Where("idea_id = ?", ideaID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, ideaDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *IdeaRepository) GetByIdeaIDForUpdate(ctx context.Context, ideaID string) (*ideaDomain.Idea, error) {
	var out ideaDomain.Idea
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("idea_id = ?", ideaID).
		First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, ideaDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *IdeaRepository) GetDetail(ctx context.Context, ideaID string) (*ideaDomain.Idea, error) {
	var out ideaDomain.Idea
	res := r.db.WithContext(ctx).
		Preload("CoApplicants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("idea_id = ?", ideaID).
		First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, ideaDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *IdeaRepository) List(ctx context.Context, f ideaDomain.ListFilter) ([]ideaDomain.Idea, error) {
	q := r.db.WithContext(ctx).Model(&ideaDomain.Idea{})
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.LineOfBusiness != "" {
		q = q.Where("line_of_business = ?", f.LineOfBusiness)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []ideaDomain.Idea
	err := paginate(q, f.Limit, f.Offset).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *IdeaRepository) UpdateStatus(ctx context.Context, id, expectedVersion uint64, status ideaDomain.Status, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&ideaDomain.Idea{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"status":            status,
			"status_updated_at": at,
			"version":           gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ideaDomain.ErrVersionConflict
	}
	return nil
}
