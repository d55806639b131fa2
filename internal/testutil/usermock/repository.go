package usermock

import (
	"context"

	domain "innovation-portal/internal/domain/user"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	CreateFn      func(ctx context.Context, u *domain.User) error
	GetByUserIDFn func(ctx context.Context, userID string) (*domain.User, error)
	GetByEmailFn  func(ctx context.Context, email string) (*domain.User, error)
	ListFn        func(ctx context.Context, f domain.ListFilter) ([]domain.User, error)
	UpdateRoleFn  func(ctx context.Context, userID string, role domain.Role) error
}

func (m *Repo) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	if m.UpdateRoleFn != nil {
		return m.UpdateRoleFn(ctx, userID, role)
	}
	return nil
}

// Static serves users from a map keyed by user ID.
func Static(users ...*domain.User) *Repo {
	byID := make(map[string]*domain.User, len(users))
	byEmail := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.UserID] = u
		byEmail[u.Email] = u
	}
	return &Repo{
		GetByUserIDFn: func(_ context.Context, id string) (*domain.User, error) {
			if u, ok := byID[id]; ok {
				return u, nil
			}
			return nil, domain.ErrNotFound
		},
		GetByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			if u, ok := byEmail[domain.NormalizeEmail(email)]; ok {
				return u, nil
			}
			return nil, domain.ErrNotFound
		},
	}
}
