// Package service provides the dashboard orchestrator: it owns the dashboard
// state, runs every trigger through one loop and publishes immutable
// snapshots for the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	triggerqueue "github.com/Ismail26477/crm-main/internal/adapters/mq/queue"
	"github.com/Ismail26477/crm-main/internal/adapters/mq/worker"
	"github.com/Ismail26477/crm-main/internal/adapters/repository"
	"github.com/Ismail26477/crm-main/internal/domain/aggregate"
	"github.com/Ismail26477/crm-main/internal/domain/dedupe"
	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/scoring"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/pkg/logger"
	"github.com/Ismail26477/crm-main/pkg/metrics"
)

const maxWindowDays = 365

// Collaborator is the CRM backend the dashboard reads from.
type Collaborator interface {
	Leads(ctx context.Context) ([]model.Lead, error)
	UpcomingFollowups(ctx context.Context) ([]model.Lead, error)
	Analytics(ctx context.Context, from, to time.Time) (*model.Analytics, error)
	LeadScores(ctx context.Context) (*model.LeadScores, error)
	TeamPerformance(ctx context.Context) (*model.TeamPerformance, error)
	RealtimeMetrics(ctx context.Context) (*model.RealtimeMetrics, error)
}

// EnqueueStatus tells an accepted trigger from a coalesced one.
type EnqueueStatus int

// Enqueue outcomes.
const (
	// Accepted means the trigger was queued.
	Accepted EnqueueStatus = iota + 1
	// Coalesced means an equivalent trigger was already pending.
	Coalesced
)

// Service implements the API dependencies for the dashboard.
type Service struct {
	// mu guards the lifecycle fields and the published view.
	mu   sync.RWMutex
	view *view

	// run serializes trigger handling. The loop holds it for every trigger;
	// direct callers such as Reload take it too.
	run   sync.Mutex
	state *State

	collab    Collaborator
	store     repository.Store
	estimator aggregate.ResponseEstimator
	deduper   dedupe.Deduper
	queue     *triggerqueue.InMemoryQueue

	// pending pairs the deduper with latest, the newest requested value of
	// each pending setting key. A coalesced setting overwrites latest, and the
	// queued trigger for that key applies it. latest holds a key exactly while
	// the deduper does.
	pending sync.Mutex
	latest  map[string]model.Trigger
	loop      *worker.InMemoryWorker

	generation atomic.Uint64

	// Configuration
	now           func() time.Time
	loc           *time.Location
	matchYear     bool
	analyticsDays int
	queueSize     int
	policy        string
	realtimeEvery time.Duration
	reloadEvery   time.Duration

	// Lifecycle
	started bool
	cancel  context.CancelFunc
	tickers sync.WaitGroup

	logger logger.Logger
}

// New constructs a Service reading from collab.
func New(collab Collaborator, opts ...Option) *Service {
	s := &Service{
		collab:        collab,
		state:         newState(30, types.Daily),
		now:           time.Now,
		loc:           time.Local,
		matchYear:     true,
		analyticsDays: 30,
		queueSize:     64,
		policy:        PolicyIsolate,
		realtimeEvery: 30 * time.Second,
		deduper:       dedupe.NewInMemoryDeduper(),
		latest:        make(map[string]model.Trigger),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("dashboard")
	}
	if s.estimator == nil {
		s.estimator = scoring.NewSyntheticEstimator()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(context.Background())
	}
	s.view = &view{
		snapshot: types.Snapshot{WindowDays: s.state.WindowDays, Period: s.state.Period},
		sizes:    map[string]Size{ChartActivity: s.state.Sizes[ChartActivity], ChartPipeline: s.state.Sizes[ChartPipeline]},
	}
	return s
}

// Start launches the trigger loop and the periodic tickers, then queues the
// initial loads.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting dashboard service...")

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = triggerqueue.NewInMemoryQueue(triggerqueue.WithCapacity(s.queueSize))
	s.loop = worker.NewInMemoryWorker(s.queue, worker.HandlerFunc(s.Handle),
		worker.WithLogger(s.logger.Named("loop")),
	)
	go s.loop.Run(loopCtx)

	s.startTicker(loopCtx, s.realtimeEvery, model.TriggerRealtime)
	s.startTicker(loopCtx, s.reloadEvery, model.TriggerReload)
	s.started = true

	for _, kind := range []model.TriggerKind{model.TriggerReload, model.TriggerScores, model.TriggerTeam, model.TriggerRealtime} {
		if _, err := s.enqueueLocked(ctx, model.Trigger{Kind: kind, Source: "startup"}); err != nil {
			s.logger.Warn(ctx, "initial trigger not queued", logger.String("trigger", string(kind)), logger.Error(err))
		}
	}

	s.logger.Info(ctx, "dashboard service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("windowDays", s.state.WindowDays),
		logger.String("period", string(s.state.Period)),
		logger.String("failurePolicy", s.policy),
		logger.Duration("realtimeInterval", s.realtimeEvery),
		logger.Duration("reloadInterval", s.reloadEvery),
	)
	return nil
}

func (s *Service) startTicker(ctx context.Context, every time.Duration, kind model.TriggerKind) {
	if every <= 0 {
		return
	}
	s.tickers.Add(1)
	go func() {
		defer s.tickers.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Enqueue(ctx, model.Trigger{Kind: kind, Source: "ticker"}); err != nil {
					s.logger.Debug(ctx, "ticker trigger dropped", logger.String("trigger", string(kind)), logger.Error(err))
				}
			}
		}
	}()
}

// Stop gracefully shuts down the loop, the tickers and the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return s.closeStore()
	}
	s.started = false
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping dashboard service...")

	err := s.loop.Shutdown(ctx)
	s.cancel()
	s.tickers.Wait()
	_ = s.queue.Close()
	if cerr := s.closeStore(); err == nil {
		err = cerr
	}

	s.logger.Info(ctx, "dashboard service stopped")
	return err
}

func (s *Service) closeStore() error {
	if closer, ok := s.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Enqueue submits a trigger to the loop. A trigger equivalent to one still
// pending is coalesced into it.
func (s *Service) Enqueue(ctx context.Context, t model.Trigger) (EnqueueStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enqueueLocked(ctx, t)
}

func (s *Service) enqueueLocked(ctx context.Context, t model.Trigger) (EnqueueStatus, error) { //nolint:gocritic // hugeParam
	if !s.started {
		return 0, ErrNotStarted
	}
	if err := validate(t); err != nil {
		return 0, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = s.now()
	}

	key := t.Key()
	s.pending.Lock()
	defer s.pending.Unlock()

	if t.Kind.IsSetting() {
		s.latest[key] = t
	}
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordTriggerCoalesced(string(t.Kind))
		s.logger.Debug(ctx, "trigger coalesced", logger.String("key", key), logger.String("source", t.Source))
		return Coalesced, nil
	}
	if !s.queue.Enqueue(ctx, t) {
		s.deduper.Unrecord(ctx, key)
		delete(s.latest, key)
		return 0, fmt.Errorf("%w: %s", ErrBackpressure, key)
	}
	return Accepted, nil
}

// take clears the pending key of t and, for settings, swaps in the newest
// value requested while t waited in the queue.
func (s *Service) take(ctx context.Context, t model.Trigger) model.Trigger { //nolint:gocritic // hugeParam
	key := t.Key()
	s.pending.Lock()
	defer s.pending.Unlock()

	s.deduper.Unrecord(ctx, key)
	latest, ok := s.latest[key]
	delete(s.latest, key)
	if ok && t.Kind.IsSetting() {
		return latest
	}
	return t
}

func validate(t model.Trigger) error { //nolint:gocritic // hugeParam
	switch t.Kind {
	case model.TriggerReload, model.TriggerRecompute, model.TriggerRealtime, model.TriggerScores, model.TriggerTeam:
		return nil
	case model.TriggerSetWindow:
		if t.Days < 1 || t.Days > maxWindowDays {
			return fmt.Errorf("%w: window of %d days", ErrInvalidTrigger, t.Days)
		}
	case model.TriggerSetPeriod:
		if _, ok := types.ParseGranularity(t.Period); !ok {
			return fmt.Errorf("%w: period %q", ErrInvalidTrigger, t.Period)
		}
	case model.TriggerResize:
		if t.Chart != ChartActivity && t.Chart != ChartPipeline {
			return fmt.Errorf("%w: %q", ErrUnknownChart, t.Chart)
		}
		if !(Size{Width: t.Width, Height: t.Height}).Valid() {
			return fmt.Errorf("%w: size %dx%d", ErrInvalidTrigger, t.Width, t.Height)
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidTrigger, t.Kind)
	}
	return nil
}

// Snapshot returns the last published dashboard.
func (s *Service) Snapshot() types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.snapshot
}

// Live returns the last published live counters.
func (s *Service) Live() types.Live {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.snapshot.Live
}

// Legend returns the pipeline legend of the last render.
func (s *Service) Legend() []types.LegendEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.legend
}

// Chart returns the last rendered PNG of chart, or nil before the first render.
func (s *Service) Chart(chart string) ([]byte, error) {
	if chart != ChartActivity && chart != ChartPipeline {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, chart)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.charts[chart], nil
}

func (s *Service) publish(v *view) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

// patch publishes a copy of the current view with f applied to its snapshot.
func (s *Service) patch(f func(*types.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := *s.view
	f(&next.snapshot)
	s.view = &next
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"queueCapacity":   s.queueSize,
		"failurePolicy":   s.policy,
		"generation":      s.store.Generation(ctx),
		"leadsInStore":    s.store.Count(ctx),
		"pendingTriggers": s.deduper.Size(),
		"windowDays":      s.view.snapshot.WindowDays,
		"period":          s.view.snapshot.Period,
		"undatedLeads":    s.view.snapshot.UndatedLead,
	}
	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}

// Size returns the number of pending, not yet handled triggers.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}
