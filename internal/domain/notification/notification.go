package notification

import (
	"context"
	"time"
)

type Type string

const (
	TypeIdeaSubmitted    Type = "IDEA_SUBMITTED"
	TypeIdeaStatusChange Type = "IDEA_STATUS_CHANGE"
	TypeReviewAdded      Type = "REVIEW_ADDED"
)

// Event is a best-effort signal about a committed state change. Consumers must not treat
// it as authoritative; the entity store is.
type Event struct {
	ID           string    `json:"id"`
	Type         Type      `json:"type"`
	IdeaID       string    `json:"idea_id"`
	IdeaTitle    string    `json:"idea_title,omitempty"`
	OwnerID      string    `json:"owner_id"`
	ActorID      string    `json:"actor_id"`
	OldStatus    string    `json:"old_status,omitempty"`
	NewStatus    string    `json:"new_status,omitempty"`
	Stage        string    `json:"stage,omitempty"`
	ReviewStatus string    `json:"review_status,omitempty"`
	Message      string    `json:"message,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher never returns an error and must not block the caller for long.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
