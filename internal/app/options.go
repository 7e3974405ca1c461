package service

import (
	"time"

	"github.com/Ismail26477/crm-main/internal/adapters/repository"
	"github.com/Ismail26477/crm-main/internal/domain/aggregate"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/pkg/logger"
)

// Failure policies for the joined collaborator fetch.
const (
	// PolicyIsolate gives each endpoint its own empty fallback.
	PolicyIsolate = "isolate"
	// PolicyResetAll clears leads, follow-ups and analytics when any of them fails.
	PolicyResetAll = "reset_all"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the calendar used for same-day and same-month checks.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithMonthlyMatchYear controls whether month matching compares the year too.
func WithMonthlyMatchYear(match bool) Option {
	return func(s *Service) {
		s.matchYear = match
	}
}

// WithWindowDays sets the initial headline window.
func WithWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 && days <= maxWindowDays {
			s.state.WindowDays = days
		}
	}
}

// WithPeriod sets the initial activity chart granularity.
func WithPeriod(g types.Granularity) Option {
	return func(s *Service) {
		if _, ok := types.ParseGranularity(string(g)); ok {
			s.state.Period = g
		}
	}
}

// WithChartSize sets the initial display size of a chart.
func WithChartSize(chart string, width, height int) Option {
	return func(s *Service) {
		size := Size{Width: width, Height: height}
		if _, known := s.state.Sizes[chart]; known && size.Valid() {
			s.state.Sizes[chart] = size
		}
	}
}

// WithAnalyticsRange sets how far back the analytics request reaches.
func WithAnalyticsRange(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.analyticsDays = days
		}
	}
}

// WithQueueSize sets the maximum number of pending triggers.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithFailurePolicy selects PolicyIsolate or PolicyResetAll.
func WithFailurePolicy(policy string) Option {
	return func(s *Service) {
		switch policy {
		case PolicyIsolate, PolicyResetAll:
			s.policy = policy
		}
	}
}

// WithEstimator sets the response-time estimator used by the response bands.
func WithEstimator(est aggregate.ResponseEstimator) Option {
	return func(s *Service) {
		s.estimator = est
	}
}

// WithStore replaces the default in-memory lead store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRealtimeInterval sets the live counter poll interval; zero disables it.
func WithRealtimeInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.realtimeEvery = d
		}
	}
}

// WithReloadInterval enables periodic full reloads when d > 0.
func WithReloadInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.reloadEvery = d
		}
	}
}
