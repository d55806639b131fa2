package ideamock

import (
	"context"
	"time"

	domain "innovation-portal/internal/domain/idea"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writers succeed; unset readers return context.Canceled.
type Repo struct {
	CreateFn               func(ctx context.Context, i *domain.Idea) error
	AddCoApplicantsFn      func(ctx context.Context, rows []domain.CoApplicant) error
	AddAttachmentsFn       func(ctx context.Context, rows []domain.Attachment) error
	CountAttachmentsFn     func(ctx context.Context, id uint64) (int64, error)
	GetByIdeaIDFn          func(ctx context.Context, ideaID string) (*domain.Idea, error)
	GetByIdeaIDForUpdateFn func(ctx context.Context, ideaID string) (*domain.Idea, error)
	GetDetailFn            func(ctx context.Context, ideaID string) (*domain.Idea, error)
	ListFn                 func(ctx context.Context, f domain.ListFilter) ([]domain.Idea, error)
	UpdateStatusFn         func(ctx context.Context, id, expectedVersion uint64, status domain.Status, at time.Time) error
}

func (m *Repo) Create(ctx context.Context, i *domain.Idea) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, i)
	}
	return nil
}

func (m *Repo) AddCoApplicants(ctx context.Context, rows []domain.CoApplicant) error {
	if m.AddCoApplicantsFn != nil {
		return m.AddCoApplicantsFn(ctx, rows)
	}
	return nil
}

func (m *Repo) AddAttachments(ctx context.Context, rows []domain.Attachment) error {
	if m.AddAttachmentsFn != nil {
		return m.AddAttachmentsFn(ctx, rows)
	}
	return nil
}

func (m *Repo) CountAttachments(ctx context.Context, id uint64) (int64, error) {
	if m.CountAttachmentsFn != nil {
		return m.CountAttachmentsFn(ctx, id)
	}
	return 0, context.Canceled
}

func (m *Repo) GetByIdeaID(ctx context.Context, ideaID string) (*domain.Idea, error) {
	if m.GetByIdeaIDFn != nil {
		return m.GetByIdeaIDFn(ctx, ideaID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIdeaIDForUpdate(ctx context.Context, ideaID string) (*domain.Idea, error) {
	if m.GetByIdeaIDForUpdateFn != nil {
		return m.GetByIdeaIDForUpdateFn(ctx, ideaID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetDetail(ctx context.Context, ideaID string) (*domain.Idea, error) {
	if m.GetDetailFn != nil {
		return m.GetDetailFn(ctx, ideaID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Idea, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, context.Canceled
}

func (m *Repo) UpdateStatus(ctx context.Context, id, expectedVersion uint64, status domain.Status, at time.Time) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, expectedVersion, status, at)
	}
	return nil
}
