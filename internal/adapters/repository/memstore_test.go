package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
)

func leads(n int) []model.Lead {
	out := make([]model.Lead, n)
	for i := range out {
		out[i] = model.Lead{ID: string(rune('a' + i%26))}
	}
	return out
}

func TestMemoryStore_Empty(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(ctx)
	defer s.Close()

	if n := s.Count(ctx); n != 0 {
		t.Errorf("expected count 0, got %d", n)
	}
	if g := s.Generation(ctx); g != 0 {
		t.Errorf("expected generation 0, got %d", g)
	}
	if ds := s.Current(ctx); ds.Analytics != nil || ds.Leads != nil {
		t.Errorf("expected empty dataset, got %+v", ds)
	}
}

func TestMemoryStore_ReplaceWholesale(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(ctx)
	defer s.Close()

	first := Dataset{Generation: 1, Leads: leads(3), Upcoming: leads(1), Analytics: &model.Analytics{Success: true}}
	if err := s.Replace(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := s.Count(ctx); n != 3 {
		t.Errorf("expected count 3, got %d", n)
	}

	// A later reload with no analytics must not keep the old analytics.
	second := Dataset{Generation: 2, Leads: leads(5)}
	if err := s.Replace(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ds := s.Current(ctx)
	if ds.Generation != 2 || len(ds.Leads) != 5 || ds.Upcoming != nil || ds.Analytics != nil {
		t.Errorf("expected dataset of generation 2 only, got %+v", ds)
	}
}

func TestMemoryStore_RejectsStaleGeneration(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(ctx)
	defer s.Close()

	if err := s.Replace(ctx, Dataset{Generation: 5, Leads: leads(2)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, g := range []uint64{5, 4, 1} {
		err := s.Replace(ctx, Dataset{Generation: g, Leads: leads(9)})
		if !errors.Is(err, ErrStaleGeneration) {
			t.Errorf("generation %d: expected ErrStaleGeneration, got %v", g, err)
		}
	}
	if n := s.Count(ctx); n != 2 {
		t.Errorf("stale replace leaked into the store: count %d", n)
	}
}

func TestMemoryStore_ConcurrentReadersSeeWholeDatasets(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(ctx, WithMetricsUpdateInterval(time.Millisecond))
	defer s.Close()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				ds := s.Current(ctx)
				// Each generation g stores g leads and g upcoming entries.
				if uint64(len(ds.Leads)) != ds.Generation || len(ds.Upcoming) != len(ds.Leads) {
					t.Errorf("torn dataset: gen=%d leads=%d upcoming=%d", ds.Generation, len(ds.Leads), len(ds.Upcoming))
					return
				}
			}
		}()
	}

	for g := 1; g <= 200; g++ {
		if err := s.Replace(ctx, Dataset{Generation: uint64(g), Leads: leads(g), Upcoming: leads(g)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	close(stop)
	wg.Wait()
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	s := NewMemoryStore(context.Background())
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
}
