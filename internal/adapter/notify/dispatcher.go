package notify

import (
	"context"
	"sync"
	"time"

	"innovation-portal/internal/domain/notification"
	"innovation-portal/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var _ notification.Publisher = (*Dispatcher)(nil)

// Sink delivers one event to one channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, e notification.Event) error
}

// Dispatcher fans events out to every sink from a bounded queue. Publish never blocks:
// a full or closed queue drops the event.
type Dispatcher struct {
	log     logrus.FieldLogger
	sinks   []Sink
	queue   chan notification.Event
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type Options struct {
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
}

func NewDispatcher(log logrus.FieldLogger, opts Options, sinks ...Sink) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Dispatcher{
		log:     log,
		sinks:   sinks,
		queue:   make(chan notification.Event, opts.QueueSize),
		timeout: opts.SendTimeout,
	}
	for n := 0; n < opts.Workers; n++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) Publish(_ context.Context, e notification.Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(e, "dispatcher closed")
		return
	}
	select {
	case d.queue <- e:
	default:
		d.drop(e, "queue full")
	}
}

func (d *Dispatcher) drop(e notification.Event, why string) {
	metrics.RecordNotificationDropped()
	d.log.WithFields(logrus.Fields{"event_id": e.ID, "type": e.Type, "idea_id": e.IdeaID}).Warn("notification dropped: " + why)
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for e := range d.queue {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e notification.Event) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := s.Send(ctx, e)
		cancel()
		metrics.RecordNotification(s.Name(), err)
		if err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"sink": s.Name(), "event_id": e.ID, "type": e.Type, "idea_id": e.IdeaID,
			}).Warn("notification delivery failed")
		}
	}
}

// Close stops accepting events and waits for queued ones to drain, or for ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
