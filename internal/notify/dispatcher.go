package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Event struct {
	UserID  uint
	Message string
}

// Notifier is what use cases depend on to tell a user something happened.
type Notifier interface {
	Dispatch(ev Event)
}

type Writer interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Dispatcher persists notifications on a background worker so the triggering
// request never waits for, or fails because of, the notification write.
type Dispatcher struct {
	writer Writer
	log    *logrus.Logger
	queue  chan Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(writer Writer, log *logrus.Logger) *Dispatcher {
	d := &Dispatcher{
		writer: writer,
		log:    log,
		queue:  make(chan Event, 100),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := d.writer.Create(ctx, &models.Notification{
			UserID:  ev.UserID,
			Message: ev.Message,
		})
		cancel()

		if err != nil {
			d.log.Warnf("Failed to store notification for user %d: %+v", ev.UserID, err)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warnf("notification dispatcher closed, dropping event for user %d", ev.UserID)
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.log.Warnf("notification queue full, dropping event for user %d", ev.UserID)
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
