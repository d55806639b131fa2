package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrBadRole    = errors.New("role must be one of APPLICANT, REVIEWER, ADMIN")
)

// Role is the only role type in the system; authorization decisions consume it in package authz.
type Role string

const (
	RoleApplicant Role = "APPLICANT"
	RoleReviewer  Role = "REVIEWER"
	RoleAdmin     Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleApplicant, RoleReviewer, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts any casing and surrounding whitespace.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrBadRole
	}
	return r, nil
}

// Table: users
type User struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UserID         string    `gorm:"column:user_id;size:32;not null;uniqueIndex:ux_users_user_id" json:"user_id"`
	Email          string    `gorm:"column:email;size:191;not null;uniqueIndex:ux_users_email" json:"email"`
	Name           string    `gorm:"column:name;size:191" json:"name"`
	PasswordHash   string    `gorm:"column:password_hash;size:100;not null" json:"-"`
	Role           Role      `gorm:"column:role;size:16;not null;default:APPLICANT;index:idx_users_role" json:"role"`
	Department     string    `gorm:"column:department;size:128" json:"department"`
	LineOfBusiness string    `gorm:"column:line_of_business;size:64;index:idx_users_lob" json:"line_of_business"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// NormalizeEmail lower-cases and trims; emails are stored normalized so the unique index holds.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
