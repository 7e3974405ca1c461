// Package worker runs the single trigger loop that serializes every
// dashboard state change.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/pkg/logger"
	"github.com/Ismail26477/crm-main/pkg/metrics"
)

// Trigger is what the loop reads off the queue.
type Trigger = model.Trigger

// Handler applies one trigger. It is only ever called from the loop
// goroutine, so implementations need no locking of their own state.
type Handler interface {
	Handle(ctx context.Context, t Trigger) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, t Trigger) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, t Trigger) error { return f(ctx, t) }

// Queue defines how the loop receives triggers.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Trigger
}

// Worker consumes triggers.
type Worker interface {
	// Run starts the loop until ctx is canceled, Shutdown is called or the
	// queue is closed.
	Run(ctx context.Context)

	// Shutdown stops the loop after the trigger in progress.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker with one consumer goroutine.
type InMemoryWorker struct {
	queue   Queue
	handler Handler
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, handler Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		handler:  handler,
		name:     "trigger-loop",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	triggers := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-triggers:
			if !ok {
				return
			}
			w.process(ctx, t)
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, t Trigger) { //nolint:gocritic // hugeParam: Trigger is passed by value for channel semantics
	start := time.Now()
	err := w.handler.Handle(ctx, t)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordErrorByComponent("worker", string(t.Kind))
		metrics.RecordErrorLatency("worker", string(t.Kind), float64(elapsed.Milliseconds()))
		w.logger.Warn(ctx, "trigger failed",
			logger.String("trigger", string(t.Kind)),
			logger.String("id", t.ID),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
		return
	}
	w.logger.Debug(ctx, "trigger handled",
		logger.String("trigger", string(t.Kind)),
		logger.String("id", t.ID),
		logger.Duration("elapsed", elapsed),
	)
}
