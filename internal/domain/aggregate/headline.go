// Package aggregate derives dashboard metrics and ranked lists from leads.
//
// Every function is pure: it reads leads and a Calendar and returns fresh
// values. A field that fails to parse makes its predicate false; nothing in
// this package returns an error or panics on malformed records.
package aggregate

import (
	"strconv"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/internal/domain/window"
)

// Calendar pins the clock and calendar rules for one pipeline run.
type Calendar struct {
	Now       time.Time
	Location  *time.Location
	MatchYear bool
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Change is the percentage change from previous to current.
// A zero baseline yields 100 when current is positive and 0 otherwise.
func Change(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// FormatChange renders a change with an explicit sign for non-negative
// values and one decimal place, e.g. "+12.5%".
func FormatChange(change float64) string {
	sign := ""
	if change >= 0 {
		sign = "+"
	}
	return sign + strconv.FormatFloat(change, 'f', 1, 64) + "%"
}

// Headline computes the top-of-page counters. all is the full store and w
// its window partition for the same clock.
func Headline(all []model.Lead, w window.Windows, cal Calendar) types.Headline {
	loc := cal.loc()
	h := types.Headline{TotalLeads: len(w.Current)}
	h.LeadsChange = Change(len(w.Current), len(w.Previous))
	h.LeadsChangeLabel = FormatChange(h.LeadsChange)

	for _, l := range w.Current {
		if !l.Stage.IsTerminal() {
			h.ActiveListings++
		}
		if l.Stage.IsConverted() {
			h.ClosedDeals++
		}
		if l.IsAssigned() {
			h.ScheduledViewings++
		}
	}

	for _, l := range all {
		created, ok := l.CreatedAt.Time(loc)
		if !ok {
			continue
		}
		if window.SameDay(created, cal.Now, loc) {
			h.NewLeadsToday++
			if l.IsAssigned() {
				h.TodayViewings++
			}
		}
		if l.Stage.IsConverted() && window.SameMonth(created, cal.Now, loc, cal.MatchYear) {
			h.ThisMonthDeals++
		}
	}
	return h
}
