// Package demodata generates a synthetic CRM lead book and serves it over
// the same six endpoints the dashboard reads from.
package demodata

import (
	"errors"
	"time"
)

// Default generator settings.
const (
	DefaultLeads    = 500
	DefaultSeedDays = 120
	DefaultSeed     = 42
)

// ErrInvalidConfig is returned for unusable generator settings.
var ErrInvalidConfig = errors.New("invalid demo data config")

// Config holds the generator settings.
type Config struct {
	Leads    int              // Number of leads to generate
	SeedDays int              // createdAt values spread over this many past days
	Seed     uint64           // Same seed, same lead book
	Workers  int              // Concurrent generation chunks
	Now      func() time.Time // Reference time, time.Now when nil
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Leads == 0 {
		out.Leads = DefaultLeads
	}
	if out.SeedDays == 0 {
		out.SeedDays = DefaultSeedDays
	}
	if out.Workers <= 0 {
		out.Workers = 4
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return out
}

// Validate checks the settings after defaults are applied.
func (c *Config) Validate() error {
	d := c.withDefaults()
	switch {
	case d.Leads < 0:
		return errors.Join(ErrInvalidConfig, errors.New("leads must be >= 0"))
	case d.SeedDays < 1:
		return errors.Join(ErrInvalidConfig, errors.New("seed days must be >= 1"))
	}
	return nil
}
