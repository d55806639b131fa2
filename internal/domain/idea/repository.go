package idea

import (
	"context"
	"time"
)

type ListFilter struct {
	OwnerID        string
	LineOfBusiness string
	Status         Status
	Limit          int
	Offset         int
}

type Repository interface {
	Create(ctx context.Context, i *Idea) error
	AddCoApplicants(ctx context.Context, rows []CoApplicant) error
	AddAttachments(ctx context.Context, rows []Attachment) error
	CountAttachments(ctx context.Context, id uint64) (int64, error)

	GetByIdeaID(ctx context.Context, ideaID string) (*Idea, error)
	// Locks the row until the surrounding transaction ends.
	GetByIdeaIDForUpdate(ctx context.Context, ideaID string) (*Idea, error)
	// GetDetail preloads co-applicants and attachments.
	GetDetail(ctx context.Context, ideaID string) (*Idea, error)
	List(ctx context.Context, f ListFilter) ([]Idea, error)

	// UpdateStatus is a compare-and-set on version; ErrVersionConflict when no row matched.
	UpdateStatus(ctx context.Context, id, expectedVersion uint64, status Status, at time.Time) error
}
