package uow

import (
	"context"

	"innovation-portal/internal/domain/idea"
	"innovation-portal/internal/domain/review"
	"innovation-portal/internal/domain/user"
)

// Repos are bound to the running transaction; callbacks must not reach for the non-tx repos.
type Repos struct {
	Users   user.Repository
	Ideas   idea.Repository
	Reviews review.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the idea row first, then pass it in
	WithinIdeaTx(ctx context.Context, ideaID string, fn func(r Repos, i *idea.Idea) error) error
}
