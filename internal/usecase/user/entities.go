package user

import (
	"time"

	domainUser "innovation-portal/internal/domain/user"
)

type RegisterInput struct {
	Email          string
	Name           string
	Password       string
	Department     string
	LineOfBusiness string
}

type ListInput struct {
	Role           string
	LineOfBusiness string
	Limit          int
	Offset         int
}

type UserDTO struct {
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	Department     string    `json:"department"`
	LineOfBusiness string    `json:"line_of_business"`
	CreatedAt      time.Time `json:"created_at"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserDTO   `json:"user"`
}

func toDTO(u *domainUser.User) UserDTO {
	return UserDTO{
		UserID:         u.UserID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           string(u.Role),
		Department:     u.Department,
		LineOfBusiness: u.LineOfBusiness,
		CreatedAt:      u.CreatedAt,
	}
}
