// Package timeseries buckets leads into the activity chart series.
package timeseries

import (
	"strconv"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/internal/domain/window"
)

// Bucket counts per granularity.
const (
	DailyBuckets   = 7
	WeeklyBuckets  = 6
	MonthlyBuckets = 6
)

// Options tune calendar matching.
type Options struct {
	Location *time.Location
	// MatchYear makes monthly buckets compare year and month. When false only
	// the month index is compared, so a lead from the same month last year
	// lands in this year's bucket.
	MatchYear bool
}

type dated struct {
	at        time.Time
	converted bool
}

// Buckets returns the series for g, oldest bucket first. Unknown
// granularities fall back to daily. Leads without a parseable createdAt are
// skipped.
func Buckets(leads []model.Lead, g types.Granularity, now time.Time, opts Options) []types.TimeBucket {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	points := make([]dated, 0, len(leads))
	for _, l := range leads {
		at, ok := l.CreatedAt.Time(loc)
		if !ok {
			continue
		}
		points = append(points, dated{at: at, converted: l.Stage.IsConverted()})
	}

	switch g {
	case types.Weekly:
		return weekly(points, now)
	case types.Monthly:
		return monthly(points, now, loc, opts.MatchYear)
	default:
		return daily(points, now, loc)
	}
}

func daily(points []dated, now time.Time, loc *time.Location) []types.TimeBucket {
	out := make([]types.TimeBucket, 0, DailyBuckets)
	for i := DailyBuckets - 1; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		y, m, dd := d.Date()
		b := types.TimeBucket{
			Label: d.Weekday().String()[:3],
			Start: time.Date(y, m, dd, 0, 0, 0, 0, loc),
		}
		for _, p := range points {
			if window.SameDay(p.at, d, loc) {
				count(&b, p)
			}
		}
		out = append(out, b)
	}
	return out
}

// weekly buckets are half-open [now-(7i+7)d, now-7i d) so adjacent weeks never
// share a lead.
func weekly(points []dated, now time.Time) []types.TimeBucket {
	out := make([]types.TimeBucket, 0, WeeklyBuckets)
	for i := WeeklyBuckets - 1; i >= 0; i-- {
		start := now.AddDate(0, 0, -(7*i + 7))
		end := now.AddDate(0, 0, -7*i)
		_, week := start.ISOWeek()
		b := types.TimeBucket{Label: "W" + strconv.Itoa(week), Start: start}
		for _, p := range points {
			if !p.at.Before(start) && p.at.Before(end) {
				count(&b, p)
			}
		}
		out = append(out, b)
	}
	return out
}

func monthly(points []dated, now time.Time, loc *time.Location, matchYear bool) []types.TimeBucket {
	out := make([]types.TimeBucket, 0, MonthlyBuckets)
	for i := MonthlyBuckets - 1; i >= 0; i-- {
		// time.Date normalises month underflow into the previous year.
		first := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, loc)
		b := types.TimeBucket{Label: first.Month().String()[:3], Start: first}
		for _, p := range points {
			if window.SameMonth(p.at, first, loc, matchYear) {
				count(&b, p)
			}
		}
		out = append(out, b)
	}
	return out
}

func count(b *types.TimeBucket, p dated) {
	b.New++
	if p.converted {
		b.Converted++
	}
}
