package uowmock

import (
	"context"
	"errors"

	"innovation-portal/internal/domain/idea"
	"innovation-portal/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinIdeaTxFn func(ctx context.Context, ideaID string, fn func(r uow.Repos, i *idea.Idea) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinIdeaTx(fn func(context.Context, string, func(uow.Repos, *idea.Idea) error) error) *UoW {
	m.WithinIdeaTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough runs callbacks directly against repos, locking through repos.Ideas.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinIdeaTxFn: func(ctx context.Context, ideaID string, fn func(uow.Repos, *idea.Idea) error) error {
			i, err := repos.Ideas.GetByIdeaIDForUpdate(ctx, ideaID)
			if err != nil {
				return err
			}
			return fn(repos, i)
		},
	}
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinIdeaTx(ctx context.Context, ideaID string, fn func(r uow.Repos, i *idea.Idea) error) error {
	if m.WithinIdeaTxFn != nil {
		return m.WithinIdeaTxFn(ctx, ideaID, fn)
	}
	return errUnimplemented
}
