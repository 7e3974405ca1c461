package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ismail26477/crm-main/pkg/metrics"
)

// MemoryStore is a copy-on-replace Store. Reads are lock free; writers are
// serialized so the generation check and the swap happen together.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[Dataset]

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs an empty store and starts its metrics updater,
// which stops when ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Dataset{})
	s.startMetricsUpdater(ctx)
	return s
}

// Replace implements Store.Replace.
func (s *MemoryStore) Replace(_ context.Context, ds Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.snapshot.Load(); cur.Generation >= ds.Generation && cur.Generation != 0 {
		return ErrStaleGeneration
	}
	next := ds
	s.snapshot.Store(&next)
	metrics.UpdateLeadsInStore(len(next.Leads))
	return nil
}

// Current implements Store.Current.
func (s *MemoryStore) Current(_ context.Context) Dataset {
	return *s.snapshot.Load()
}

// Generation implements Store.Generation.
func (s *MemoryStore) Generation(_ context.Context) uint64 {
	return s.snapshot.Load().Generation
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.snapshot.Load().Leads)
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateLeadsInStore(s.Count(ctx))
			}
		}
	}()
}
