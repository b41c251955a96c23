package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"aegis/internal/access/metrics"
	"aegis/internal/access/ports"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/circuit"
)

const (
	DefaultBufferSize  = 256
	DefaultSendTimeout = 2 * time.Second
)

type notification struct {
	ctx       context.Context
	userID    id.UserID
	eventType string
	data      map[string]any
}

// Dispatcher queues notifications and delivers them from a background
// goroutine. A full queue drops the notification rather than blocking the
// caller. A circuit breaker stops delivery while the sender keeps failing.
type Dispatcher struct {
	sender      ports.Notifier
	queue       chan notification
	breaker     *circuit.Breaker
	sendTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithBufferSize sets how many notifications may wait for delivery.
func WithBufferSize(size int) Option {
	return func(d *Dispatcher) {
		if size > 0 {
			d.queue = make(chan notification, size)
		}
	}
}

func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(d *Dispatcher) {
		if b != nil {
			d.breaker = b
		}
	}
}

// NewDispatcher starts the delivery goroutine. Call Close to drain it.
func NewDispatcher(sender ports.Notifier, opts ...Option) (*Dispatcher, error) {
	if sender == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "notification sender is required")
	}
	d := &Dispatcher{
		sender:      sender,
		queue:       make(chan notification, DefaultBufferSize),
		breaker:     circuit.New("notifier"),
		sendTimeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.wg.Add(1)
	go d.run()
	return d, nil
}

// Send enqueues a notification. It never blocks; the returned error reports
// a dropped notification.
func (d *Dispatcher) Send(ctx context.Context, userID id.UserID, eventType string, data map[string]any) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return dErrors.New(dErrors.CodeInternal, "notification dispatcher closed")
	}

	n := notification{
		ctx:       context.WithoutCancel(ctx),
		userID:    userID,
		eventType: eventType,
		data:      data,
	}
	select {
	case d.queue <- n:
		d.observeQueue()
		return nil
	default:
		d.count(eventType, "dropped")
		if d.logger != nil {
			d.logger.WarnContext(ctx, "notification buffer full, notification dropped",
				"event_type", eventType,
				"user_id", userID.String(),
			)
		}
		return dErrors.New(dErrors.CodeInternal, "notification buffer full")
	}
}

// Close stops accepting notifications and waits for queued ones to be delivered.
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

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for n := range d.queue {
		d.observeQueue()
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n notification) {
	if !d.breaker.Allow() {
		d.count(n.eventType, "circuit_open")
		return
	}

	ctx, cancel := context.WithTimeout(n.ctx, d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, n.userID, n.eventType, n.data); err != nil {
		d.count(n.eventType, "failed")
		if opened := d.breaker.RecordFailure(); opened {
			d.setCircuit(true)
			if d.logger != nil {
				d.logger.WarnContext(ctx, "notifier circuit opened", "breaker", d.breaker.Name())
			}
		}
		if d.logger != nil {
			d.logger.ErrorContext(ctx, "failed to deliver notification",
				"event_type", n.eventType,
				"user_id", n.userID.String(),
				"error", err,
			)
		}
		return
	}

	if closed := d.breaker.RecordSuccess(); closed {
		d.setCircuit(false)
	}
	d.count(n.eventType, "sent")
}

func (d *Dispatcher) count(eventType, status string) {
	if d.metrics != nil {
		d.metrics.IncrementNotification(eventType, status)
	}
}

func (d *Dispatcher) setCircuit(open bool) {
	if d.metrics != nil {
		d.metrics.SetNotifierCircuitOpen(open)
	}
}

func (d *Dispatcher) observeQueue() {
	if d.metrics != nil {
		d.metrics.SetNotificationQueueLength(len(d.queue))
	}
}
