package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("event dispatcher closed")
)

const publishTimeout = 5 * time.Second

// Dispatcher queues events and publishes them from a fixed worker pool so
// request handlers never wait on the broker.
type Dispatcher struct {
	next  port.EventPublisher
	queue chan domain.OrderEvent
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(next port.EventPublisher, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		next:  next,
		queue: make(chan domain.OrderEvent, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.workerLoop(id)
		}(i)
	}
	return d
}

// Publish enqueues event without blocking.
func (d *Dispatcher) Publish(ctx context.Context, event domain.OrderEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) workerLoop(id int) {
	for event := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)

		if err := d.next.Publish(ctx, event); err != nil {
			log.Error().Err(err).Int("worker", id).Str("event", string(event.Type)).
				Int64("order_id", event.OrderID).Msg("failed to publish event")
		} else {
			log.Debug().Int("worker", id).Str("event", string(event.Type)).
				Int64("order_id", event.OrderID).Msg("published event")
		}

		cancel()
	}
}

// Close stops accepting events and waits until the queue is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
