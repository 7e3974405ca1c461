package api

import (
	"golang.org/x/time/rate"

	"github.com/Ismail26477/crm-main/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRefreshLimit limits manual refreshes to perMinute with the given burst.
// A non-positive rate disables the limit.
func WithRefreshLimit(perMinute float64, burst int) Option {
	return func(s *Server) {
		if perMinute <= 0 {
			s.refreshLimiter = nil
			return
		}
		s.refreshLimiter = rate.NewLimiter(rate.Limit(perMinute/60), max(burst, 1))
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
