// Package repository holds the in-memory lead working set.
package repository

import (
	"context"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
)

// Dataset is everything one reload produced. It is replaced as a whole so
// readers never observe leads from one reload next to analytics from another.
type Dataset struct {
	Generation uint64
	LoadedAt   time.Time

	Leads     []model.Lead
	Upcoming  []model.Lead
	Analytics *model.Analytics
}

// Store provides access to the current dataset.
type Store interface {
	// Replace swaps in ds. It returns ErrStaleGeneration when a dataset with
	// the same or a newer generation is already stored.
	Replace(ctx context.Context, ds Dataset) error

	// Current returns the stored dataset. Callers must not modify the slices.
	Current(ctx context.Context) Dataset

	// Generation returns the generation of the stored dataset.
	Generation(ctx context.Context) uint64

	// Count returns the number of leads in the stored dataset.
	Count(ctx context.Context) int
}
