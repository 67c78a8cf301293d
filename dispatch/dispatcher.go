package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/dispatchops/observe"
	"github.com/jonwraymond/dispatchops/resilience"
	"github.com/jonwraymond/dispatchops/store"
)

// Dispatcher delivers messages through a primary provider with a secondary
// fallback. See the package documentation for the pipeline.
//
// Contract:
// - Concurrency: safe for concurrent use. Queued tasks are processed one
//   at a time; direct Send calls run on the caller's goroutine.
// - Context: a started pipeline always runs to completion; cancelling the
//   submitting ctx does not abort it.
type Dispatcher struct {
	primary   *RetrySender
	secondary *RetrySender
	limiter   *resilience.RateLimiter
	breaker   *resilience.CircuitBreaker
	sent      store.Store[bool]
	statuses  store.Store[Status]
	logger    observe.Logger
	mw        *observe.Middleware

	// inflight collapses concurrent pipelines for the same key.
	inflight singleflight.Group

	mu       sync.Mutex
	queue    []queuedTask
	draining bool
	idle     chan struct{} // closed while no drain is running
	closed   bool
}

type queuedTask struct {
	ctx  context.Context
	task Task
}

type result struct {
	outcome Outcome
	err     error
}

// New creates a Dispatcher that sends through primary and falls back to
// secondary.
func New(primary, secondary Provider, opts ...Option) (*Dispatcher, error) {
	if primary == nil || secondary == nil {
		return nil, ErrNilProvider
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = observe.NewNopLogger()
	}
	if o.middleware == nil {
		o.middleware = observe.NewMiddleware(nil, nil, o.logger)
	}
	if o.sent == nil {
		o.sent = store.NewMemoryStore[bool](store.UnboundedPolicy())
	}
	if o.statuses == nil {
		o.statuses = store.NewMemoryStore[Status](store.UnboundedPolicy())
	}
	if o.clock != nil {
		if o.rateLimit.Clock == nil {
			o.rateLimit.Clock = o.clock
		}
		if o.breaker.Clock == nil {
			o.breaker.Clock = o.clock
		}
		if o.retry.Clock == nil {
			o.retry.Clock = o.clock
		}
	}

	idle := make(chan struct{})
	close(idle)

	d := &Dispatcher{
		limiter:  resilience.NewRateLimiter(o.rateLimit),
		sent:     o.sent,
		statuses: o.statuses,
		logger:   o.logger.With(observe.Field{Key: "component", Value: "dispatcher"}),
		mw:       o.middleware,
		idle:     idle,
	}

	userHook := o.breaker.OnStateChange
	o.breaker.OnStateChange = func(from, to resilience.State) {
		d.onCircuitChange(from, to)
		if userHook != nil {
			userHook(from, to)
		}
	}
	d.breaker = resilience.NewCircuitBreaker(o.breaker)

	retry := resilience.NewRetry(o.retry)
	d.primary = NewRetrySender(primary, RetrySenderConfig{
		Role:       RolePrimary,
		Retry:      retry,
		Logger:     o.logger,
		Middleware: o.middleware,
	})
	d.secondary = NewRetrySender(secondary, RetrySenderConfig{
		Role:       RoleSecondary,
		Retry:      retry,
		Logger:     o.logger,
		Middleware: o.middleware,
	})

	return d, nil
}

// Enqueue appends task to the queue and starts a drain if none is running.
// It never reports the delivery outcome; use Status for that. It fails only
// for an invalid key or a closed dispatcher.
func (d *Dispatcher) Enqueue(ctx context.Context, task Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}

	d.queue = append(d.queue, queuedTask{ctx: context.WithoutCancel(ctx), task: task})
	d.mw.Metrics().AddQueueDepth(ctx, 1)

	start := !d.draining
	if start {
		d.draining = true
		d.idle = make(chan struct{})
	}
	d.mu.Unlock()

	if start {
		go d.drain()
	}
	return nil
}

// drain processes queued tasks one at a time until the queue is empty.
func (d *Dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			close(d.idle)
			d.mu.Unlock()
			return
		}
		next := d.queue[0]
		d.queue[0] = queuedTask{}
		d.queue = d.queue[1:]
		d.mw.Metrics().AddQueueDepth(next.ctx, -1)
		d.mu.Unlock()

		d.run(next.ctx, next.task, true)
	}
}

// Send runs the pipeline for task on the caller's goroutine and reports
// whether the message counts as sent. It bypasses the queue.
func (d *Dispatcher) Send(ctx context.Context, task Task) bool {
	outcome, _ := d.Dispatch(ctx, task)
	return outcome.Delivered()
}

// Dispatch is Send with the detailed outcome. The error explains a
// non-delivered outcome and is nil otherwise.
func (d *Dispatcher) Dispatch(ctx context.Context, task Task) (Outcome, error) {
	if err := task.Validate(); err != nil {
		return OutcomeFailed, err
	}

	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return OutcomeFailed, ErrClosed
	}

	return d.run(context.WithoutCancel(ctx), task, false)
}

// Status returns the latest status recorded for key.
func (d *Dispatcher) Status(ctx context.Context, key string) (Status, bool) {
	return d.statuses.Get(ctx, key)
}

// Wait blocks until no drain is running or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	for {
		d.mu.Lock()
		if !d.draining {
			d.mu.Unlock()
			return nil
		}
		idle := d.idle
		d.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops accepting messages and waits for the queue to drain.
// It is safe to call more than once.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	return d.Wait(ctx)
}

// QueueDepth returns the number of tasks waiting to be processed.
func (d *Dispatcher) QueueDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// CircuitState returns the circuit breaker state.
func (d *Dispatcher) CircuitState() resilience.State {
	return d.breaker.State()
}

// AvailableTokens returns the rate limiter's current token count.
func (d *Dispatcher) AvailableTokens() int {
	return d.limiter.Tokens()
}

// run executes the pipeline once per key at a time; concurrent callers
// with the same key share the result.
func (d *Dispatcher) run(ctx context.Context, task Task, queued bool) (Outcome, error) {
	v, _, _ := d.inflight.Do(task.IdempotencyKey, func() (any, error) {
		ctx, finish := d.mw.StartTask(ctx, observe.TaskMeta{
			Key:       task.IdempotencyKey,
			Recipient: task.Recipient,
			Queued:    queued,
		})

		outcome, err := d.pipeline(ctx, task)
		finish(outcome.String(), err)
		return result{outcome: outcome, err: err}, nil
	})

	r := v.(result)
	return r.outcome, r.err
}

func (d *Dispatcher) pipeline(ctx context.Context, task Task) (Outcome, error) {
	key := task.IdempotencyKey
	logger := d.logger.With(observe.Field{Key: "key", Value: key})

	if !d.limiter.TryAcquire() {
		logger.Warn(ctx, "rate limit exceeded, please try again later")
		d.setStatus(ctx, key, StatusFailed)
		return OutcomeRateLimited, ErrRateLimited
	}

	if sent, ok := d.sent.Get(ctx, key); ok && sent {
		logger.Info(ctx, "message already sent, skipping")
		d.setStatus(ctx, key, StatusSent)
		return OutcomeDuplicate, nil
	}

	d.setStatus(ctx, key, StatusPending)

	onRetry := func(int, error, time.Duration) {
		d.setStatus(ctx, key, StatusRetrying)
	}
	fallback := func(ctx context.Context) error {
		d.setStatus(ctx, key, StatusFallback)
		if err := d.secondary.Send(ctx, task, onRetry); err != nil {
			return fmt.Errorf("%w: %w", ErrBothProvidersFailed, err)
		}
		return nil
	}

	if err := d.breaker.Execute(ctx, d.primary.Op(task, onRetry), fallback); err != nil {
		d.setStatus(ctx, key, StatusFailed)
		logger.Error(ctx, "message delivery failed", observe.Field{Key: "error", Value: err.Error()})
		return OutcomeFailed, err
	}

	if err := d.sent.Set(ctx, key, true); err != nil {
		logger.Warn(ctx, "failed to record sent key", observe.Field{Key: "error", Value: err.Error()})
	}
	d.setStatus(ctx, key, StatusSent)
	return OutcomeSent, nil
}

func (d *Dispatcher) setStatus(ctx context.Context, key string, s Status) {
	if err := d.statuses.Set(ctx, key, s); err != nil {
		d.logger.Warn(ctx, "failed to record status",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "status", Value: s.String()},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
}

func (d *Dispatcher) onCircuitChange(from, to resilience.State) {
	ctx := context.Background()
	fields := []observe.Field{
		{Key: "from", Value: from.String()},
		{Key: "to", Value: to.String()},
	}
	if to == resilience.StateOpen {
		d.logger.Warn(ctx, "circuit breaker opened", fields...)
	} else {
		d.logger.Info(ctx, "circuit breaker state changed", fields...)
	}
	d.mw.Metrics().RecordCircuitTransition(ctx, from.String(), to.String())
}
