package authz

import (
	"innovation-portal/internal/domain/idea"
	"innovation-portal/internal/domain/user"
)

func RequireAdmin(a Actor) error {
	if !a.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}

// CanViewIdea: the owner, any reviewer, any admin.
func CanViewIdea(a Actor, ownerID string) error {
	if a.ID == ownerID || a.canReviewRole() {
		return nil
	}
	return ErrNotVisible
}

func CanModifyIdea(a Actor, ownerID string) error {
	if a.ID == ownerID || a.IsAdmin() {
		return nil
	}
	return ErrNotOwner
}

// CanOverrideStatus allows admins to close an idea; only terminal targets are accepted.
func CanOverrideStatus(a Actor, target idea.Status) error {
	if err := RequireAdmin(a); err != nil {
		return err
	}
	if !target.IsTerminal() {
		return idea.ErrBadStatus
	}
	return nil
}

func CanViewUser(a Actor, userID string) error {
	if a.ID == userID || a.IsAdmin() {
		return nil
	}
	return ErrNotSelf
}

func CanChangeRole(a Actor, targetUserID string) error {
	if err := RequireAdmin(a); err != nil {
		return err
	}
	if a.ID == targetUserID {
		return ErrSelfRoleChange
	}
	return nil
}

type Scope string

const (
	ScopeMine Scope = "mine"
	ScopeLOB  Scope = "lob"
	ScopeAll  Scope = "all"
)

// ResolveScope picks the idea listing scope. Empty means the role default:
// applicants see their own ideas, reviewers their line of business, admins everything.
func ResolveScope(a Actor, requested Scope) (Scope, error) {
	switch requested {
	case "":
		switch a.Role {
		case user.RoleAdmin:
			return ScopeAll, nil
		case user.RoleReviewer:
			return ScopeLOB, nil
		}
		return ScopeMine, nil
	case ScopeMine:
		return ScopeMine, nil
	case ScopeLOB, ScopeAll:
		if a.canReviewRole() {
			return requested, nil
		}
		return "", ErrScope
	}
	return "", ErrScope
}
