// Package authz decides who may do what. It is pure: every function here is a
// deterministic computation over its arguments and never touches the store.
package authz

import (
	"errors"

	"innovation-portal/internal/domain/idea"
	"innovation-portal/internal/domain/review"
	"innovation-portal/internal/domain/user"
)

// Review denial reasons. The messages are shown to callers verbatim.
var (
	ErrSelfReview          = errors.New("owner cannot review own idea")
	ErrInsufficientRole    = errors.New("insufficient role")
	ErrAlreadyRejected     = errors.New("idea already rejected; no further review permitted")
	// ErrPriorPending: after a PENDING review only its own reviewer or an ADMIN may
	// follow up, and only at the same stage. Any other reviewer gets this error.
	ErrPriorPending        = errors.New("prior review still pending")
	ErrTerminalApproval    = errors.New("no further stage; terminal approval reached")
	ErrStageMismatch       = errors.New("stage mismatch")
	ErrNotSubmitted        = errors.New("idea has not been submitted for review")
	ErrInconsistentHistory = errors.New("review history is inconsistent")
)

// Non-review denials.
var (
	ErrAdminOnly      = errors.New("admin role required")
	ErrNotVisible     = errors.New("not permitted to view this idea")
	ErrNotOwner       = errors.New("only the owner or an admin may modify this idea")
	ErrScope          = errors.New("list scope not permitted for role")
	ErrSelfRoleChange = errors.New("admins cannot change their own role")
	ErrNotSelf        = errors.New("not permitted to view this user")
)

// Actor is the authenticated caller as resolved by the access gate.
type Actor struct {
	ID             string
	Email          string
	Role           user.Role
	LineOfBusiness string
}

func (a Actor) IsAdmin() bool { return a.Role == user.RoleAdmin }

func (a Actor) canReviewRole() bool { return a.Role == user.RoleReviewer || a.Role == user.RoleAdmin }

// Subject is the idea state a review decision is taken against.
type Subject struct {
	OwnerID string
	Status  idea.Status
	History []review.Review // chronological
}

type Decision struct {
	Allow  bool
	Stage  review.Stage // permitted stage when Allow; best known stage on a mismatch
	Reason error
}

func allow(s review.Stage) Decision { return Decision{Allow: true, Stage: s} }
func deny(reason error) Decision    { return Decision{Reason: reason} }

// CanReview evaluates, in order: the self-review ban, the role gate, the terminal-status
// guard and stage progression over the last review.
//
// A PENDING review may be followed at the same stage by the reviewer who left it or by
// an admin; anyone else gets ErrPriorPending.
func CanReview(s Subject, a Actor) Decision {
	if a.ID == s.OwnerID {
		return deny(ErrSelfReview)
	}
	if !a.canReviewRole() {
		return deny(ErrInsufficientRole)
	}
	switch s.Status {
	case idea.StatusRejected:
		return deny(ErrAlreadyRejected)
	case idea.StatusPatented:
		return deny(ErrTerminalApproval)
	case idea.StatusDraft:
		return deny(ErrNotSubmitted)
	}

	if len(s.History) == 0 {
		return allow(review.StageFLR)
	}
	last := s.History[len(s.History)-1]
	if !last.Stage.Valid() {
		return deny(ErrInconsistentHistory)
	}
	switch last.Status {
	case review.StatusRejected:
		return deny(ErrAlreadyRejected)
	case review.StatusPending:
		if last.ReviewerID == a.ID || a.IsAdmin() {
			return allow(last.Stage)
		}
		return deny(ErrPriorPending)
	case review.StatusApproved:
		next, ok := last.Stage.Next()
		if !ok {
			return deny(ErrTerminalApproval)
		}
		return allow(next)
	}
	return deny(ErrInconsistentHistory)
}

// Authorize is CanReview plus the check that the caller asked for the permitted stage.
func Authorize(s Subject, a Actor, requested review.Stage) Decision {
	d := CanReview(s, a)
	if !d.Allow {
		return d
	}
	if requested != d.Stage {
		return Decision{Stage: d.Stage, Reason: ErrStageMismatch}
	}
	return d
}

// NextStatus is the only place a review-driven idea status is computed.
func NextStatus(stage review.Stage, status review.Status) idea.Status {
	switch {
	case status == review.StatusRejected:
		return idea.StatusRejected
	case status == review.StatusApproved && stage == review.StagePF:
		return idea.StatusPatented
	}
	return idea.Status(stage)
}
