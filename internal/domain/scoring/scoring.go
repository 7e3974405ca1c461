// Package scoring estimates average response times for the priority bands.
//
// The lead records carry no contact history, so the only estimator shipped
// here is synthetic: a seeded draw per band, flagged as such in the output.
package scoring

import (
	"math"
	"math/rand"
	"sync"

	"github.com/Ismail26477/crm-main/internal/domain/model"
)

// Default estimator configuration constants.
const (
	defaultFloorMinutes   = 60
	defaultCeilingMinutes = 300
	defaultRandomSeed     = 42
)

// Option applies a configuration option to the SyntheticEstimator.
type Option func(*SyntheticEstimator)

// WithSeed reseeds the generator. The same seed yields the same sequence.
func WithSeed(seed int64) Option {
	return func(e *SyntheticEstimator) {
		e.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible synthetic values
	}
}

// WithRange sets the floor and the ceiling of the draw in minutes.
func WithRange(floor, ceiling float64) Option {
	return func(e *SyntheticEstimator) {
		if floor >= 0 && ceiling > floor {
			e.floor = floor
			e.ceiling = ceiling
		}
	}
}

// WithPriorityCeilings overrides the ceiling per priority. Non-positive
// entries are ignored.
func WithPriorityCeilings(ceilings map[string]float64) Option {
	return func(e *SyntheticEstimator) {
		e.ceilings = make(map[model.Priority]float64, len(ceilings))
		for p, c := range ceilings {
			if c > 0 {
				e.ceilings[model.Priority(p)] = c
			}
		}
	}
}

// SyntheticEstimator draws max(floor, u*ceiling) for u in [0,1).
type SyntheticEstimator struct {
	mu       sync.Mutex
	floor    float64
	ceiling  float64
	ceilings map[model.Priority]float64
	rng      *rand.Rand
}

// NewSyntheticEstimator creates an estimator with configuration options.
func NewSyntheticEstimator(opts ...Option) *SyntheticEstimator {
	e := &SyntheticEstimator{
		floor:    defaultFloorMinutes,
		ceiling:  defaultCeilingMinutes,
		ceilings: make(map[model.Priority]float64),
		rng:      rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // reproducible synthetic values
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AverageMinutes returns a synthetic average for a non-empty band and 0 for
// an empty one. The second result is always true.
func (e *SyntheticEstimator) AverageMinutes(p model.Priority, leads []model.Lead) (float64, bool) {
	if len(leads) == 0 {
		return 0, true
	}
	ceiling, ok := e.ceilings[p]
	if !ok {
		ceiling = e.ceiling
	}

	e.mu.Lock()
	u := e.rng.Float64()
	e.mu.Unlock()

	return math.Max(e.floor, u*ceiling), true
}
