// Package config defines the dashboard service configuration and its loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers defaults, an optional YAML file and environment variables.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"
)

// Failure policies for the joined collaborator fetch.
const (
	FailureIsolate  = "isolate"
	FailureResetAll = "reset_all"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// CollaboratorBaseURL is the CRM backend serving leads and analytics.
	CollaboratorBaseURL string `koanf:"collaborator_base_url"`
	HTTPTimeoutMS       int    `koanf:"http_timeout_ms"`
	RetryAttempts       int    `koanf:"retry_attempts"`
	RetryBaseMS         int    `koanf:"retry_base_ms"`

	// WindowDays is the trailing window used by headline counts.
	WindowDays int `koanf:"window_days"`
	// AnalyticsRangeDays is the range requested from the analytics endpoint.
	AnalyticsRangeDays int `koanf:"analytics_range_days"`
	// ActivityPeriod is daily, weekly or monthly.
	ActivityPeriod string `koanf:"activity_period"`

	ActivityWidth  int `koanf:"activity_width"`
	ActivityHeight int `koanf:"activity_height"`
	PipelineWidth  int `koanf:"pipeline_width"`
	PipelineHeight int `koanf:"pipeline_height"`

	RealtimeIntervalMS int `koanf:"realtime_interval_ms"`
	// ReloadIntervalMS enables periodic full reloads when > 0.
	ReloadIntervalMS int `koanf:"reload_interval_ms"`

	TriggerQueueSize int `koanf:"trigger_queue_size"`

	// FailurePolicy is isolate (per-endpoint fallback) or reset_all.
	FailurePolicy string `koanf:"failure_policy"`

	// Timezone names the IANA location used for calendar-day comparisons.
	Timezone string `koanf:"timezone"`

	// MonthlyMatchYear makes month buckets and this-month counts year aware.
	MonthlyMatchYear bool `koanf:"monthly_match_year"`

	// ResponseTimeSeed seeds the synthetic response-time estimator.
	ResponseTimeSeed int64 `koanf:"response_time_seed"`
	// ResponseTimeFloorMin and ResponseTimeCeilingMin bound the draw in minutes.
	ResponseTimeFloorMin   float64 `koanf:"response_time_floor_min"`
	ResponseTimeCeilingMin float64 `koanf:"response_time_ceiling_min"`
	// Per-priority ceilings; zero falls back to ResponseTimeCeilingMin.
	ResponseTimeHotCeilingMin  float64 `koanf:"response_time_hot_ceiling_min"`
	ResponseTimeWarmCeilingMin float64 `koanf:"response_time_warm_ceiling_min"`
	ResponseTimeColdCeilingMin float64 `koanf:"response_time_cold_ceiling_min"`

	RefreshRatePerMinute float64 `koanf:"refresh_rate_per_minute"`
	RefreshBurst         int     `koanf:"refresh_burst"`

	// MetricsEnabled exposes the collectors on /metrics when true.
	MetricsEnabled bool `koanf:"metrics_enabled"`
	// MetricsRefreshIntervalMS paces the runtime gauge updater.
	MetricsRefreshIntervalMS int `koanf:"metrics_refresh_interval_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Addr:                     ":9080",
		CollaboratorBaseURL:      "http://localhost:5000",
		HTTPTimeoutMS:            10_000,
		RetryAttempts:            3,
		RetryBaseMS:              100,
		WindowDays:               30,
		AnalyticsRangeDays:       30,
		ActivityPeriod:           "daily",
		ActivityWidth:            800,
		ActivityHeight:           300,
		PipelineWidth:            300,
		PipelineHeight:           300,
		RealtimeIntervalMS:       30_000,
		ReloadIntervalMS:         0,
		TriggerQueueSize:         64,
		FailurePolicy:            FailureIsolate,
		Timezone:                 "Local",
		MonthlyMatchYear:         true,
		ResponseTimeSeed:         42,
		ResponseTimeFloorMin:     60,
		ResponseTimeCeilingMin:   300,
		RefreshRatePerMinute:     6,
		RefreshBurst:             2,
		MetricsEnabled:           true,
		MetricsRefreshIntervalMS: 10_000,
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CollaboratorBaseURL == "":
		return fmt.Errorf("%w: collaborator_base_url must not be empty", ErrInvalidConfig)
	case c.WindowDays < 1 || c.WindowDays > 365:
		return fmt.Errorf("%w: window_days must be in 1..365, got %d", ErrInvalidConfig, c.WindowDays)
	case c.AnalyticsRangeDays < 1:
		return fmt.Errorf("%w: analytics_range_days must be positive", ErrInvalidConfig)
	case c.ActivityWidth <= 0 || c.ActivityHeight <= 0 || c.PipelineWidth <= 0 || c.PipelineHeight <= 0:
		return fmt.Errorf("%w: chart sizes must be positive", ErrInvalidConfig)
	case c.TriggerQueueSize < 1:
		return fmt.Errorf("%w: trigger_queue_size must be positive", ErrInvalidConfig)
	case c.RetryAttempts < 1:
		return fmt.Errorf("%w: retry_attempts must be at least 1", ErrInvalidConfig)
	case c.ResponseTimeFloorMin < 0 || c.ResponseTimeCeilingMin <= c.ResponseTimeFloorMin:
		return fmt.Errorf("%w: response time range [%g, %g] is empty", ErrInvalidConfig, c.ResponseTimeFloorMin, c.ResponseTimeCeilingMin)
	case c.ResponseTimeHotCeilingMin < 0 || c.ResponseTimeWarmCeilingMin < 0 || c.ResponseTimeColdCeilingMin < 0:
		return fmt.Errorf("%w: response time ceilings must not be negative", ErrInvalidConfig)
	case c.MetricsRefreshIntervalMS <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval_ms must be positive", ErrInvalidConfig)
	}
	switch c.ActivityPeriod {
	case "daily", "weekly", "monthly":
	default:
		return fmt.Errorf("%w: activity_period %q", ErrInvalidConfig, c.ActivityPeriod)
	}
	switch c.FailurePolicy {
	case FailureIsolate, FailureResetAll:
	default:
		return fmt.Errorf("%w: failure_policy %q", ErrInvalidConfig, c.FailurePolicy)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// HTTPTimeout returns the collaborator request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// RetryBase returns the first retry backoff step.
func (c *Config) RetryBase() time.Duration {
	return time.Duration(c.RetryBaseMS) * time.Millisecond
}

// RealtimeInterval returns the live metric poll interval.
func (c *Config) RealtimeInterval() time.Duration {
	return time.Duration(c.RealtimeIntervalMS) * time.Millisecond
}

// ReloadInterval returns the periodic reload interval; zero disables it.
func (c *Config) ReloadInterval() time.Duration {
	return time.Duration(c.ReloadIntervalMS) * time.Millisecond
}

// PriorityCeilings returns the per-priority response time ceilings that are set.
func (c *Config) PriorityCeilings() map[string]float64 {
	out := make(map[string]float64, 3)
	for p, v := range map[string]float64{
		"Hot":  c.ResponseTimeHotCeilingMin,
		"Warm": c.ResponseTimeWarmCeilingMin,
		"Cold": c.ResponseTimeColdCeilingMin,
	} {
		if v > 0 {
			out[p] = v
		}
	}
	return out
}

// MetricsRefreshInterval returns the runtime gauge update interval.
func (c *Config) MetricsRefreshInterval() time.Duration {
	return time.Duration(c.MetricsRefreshIntervalMS) * time.Millisecond
}
