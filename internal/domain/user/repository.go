package user

import "context"

type ListFilter struct {
	Role           Role
	LineOfBusiness string
	Limit          int
	Offset         int
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f ListFilter) ([]User, error)
	UpdateRole(ctx context.Context, userID string, role Role) error
}
