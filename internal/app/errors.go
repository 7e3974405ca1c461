package service

import "errors"

var (
	// ErrNotStarted is returned when a trigger arrives before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrBackpressure is returned when the trigger queue is full.
	ErrBackpressure = errors.New("trigger queue full")
	// ErrInvalidTrigger is returned for triggers with out-of-range parameters.
	ErrInvalidTrigger = errors.New("invalid trigger")
	// ErrUnknownChart is returned for chart names other than activity and pipeline.
	ErrUnknownChart = errors.New("unknown chart")
	// ErrStale is returned when a reload finished after a newer one was stored.
	ErrStale = errors.New("stale reload discarded")
)
