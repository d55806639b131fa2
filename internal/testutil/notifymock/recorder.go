package notifymock

import (
	"context"
	"sync"

	"innovation-portal/internal/domain/notification"
)

var _ notification.Publisher = (*Recorder)(nil)

// Recorder captures published events in order.
type Recorder struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *Recorder) Publish(_ context.Context, e notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Events() []notification.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Types() []notification.Type {
	var out []notification.Type
	for _, e := range r.Events() {
		out = append(out, e.Type)
	}
	return out
}
