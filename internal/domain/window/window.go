// Package window partitions leads into the current and previous trailing windows.
package window

import (
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
)

const day = 24 * time.Hour

// Windows is the result of one partition. Both halves were computed from
// the same now.
type Windows struct {
	Now      time.Time
	Days     int
	Current  []model.Lead
	Previous []model.Lead
	// Undated counts leads whose createdAt did not parse; they are in neither half.
	Undated int
}

// Split assigns each lead by age = now - createdAt.
//
//	current:  age <= days (future-dated leads have negative age and land here)
//	previous: days < age <= 2*days
func Split(leads []model.Lead, days int, now time.Time, loc *time.Location) Windows {
	w := Windows{Now: now, Days: days}
	span := time.Duration(days) * day
	for _, l := range leads {
		created, ok := l.CreatedAt.Time(loc)
		if !ok {
			w.Undated++
			continue
		}
		age := now.Sub(created)
		switch {
		case age <= span:
			w.Current = append(w.Current, l)
		case age <= 2*span:
			w.Previous = append(w.Previous, l)
		}
	}
	return w
}

// SameDay reports calendar-day equality in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports month equality in loc. When matchYear is false only the
// month index is compared.
func SameMonth(a, b time.Time, loc *time.Location, matchYear bool) bool {
	if loc == nil {
		loc = time.UTC
	}
	a, b = a.In(loc), b.In(loc)
	if a.Month() != b.Month() {
		return false
	}
	return !matchYear || a.Year() == b.Year()
}
