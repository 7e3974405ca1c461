package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
)

// TimelineLength is the number of feed entries.
const TimelineLength = 6

// TimelineActions cycle by feed position.
var TimelineActions = []string{
	"added new lead",
	"contacted",
	"viewed",
	"sent proposal",
	"negotiating",
	"converted",
}

// ActivityTimeline lists the most recently created leads. Leads without a
// valid createdAt sort last.
func ActivityTimeline(leads []model.Lead, cal Calendar) []types.TimelineItem {
	loc := cal.loc()
	type entry struct {
		lead model.Lead
		at   time.Time
		ok   bool
	}
	entries := make([]entry, 0, len(leads))
	for _, l := range leads {
		at, ok := l.CreatedAt.Time(loc)
		entries = append(entries, entry{lead: l, at: at, ok: ok})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.at.After(b.at)
	})
	if len(entries) > TimelineLength {
		entries = entries[:TimelineLength]
	}

	out := make([]types.TimelineItem, 0, len(entries))
	for i, e := range entries {
		actor := e.lead.AssignedCallerName
		if actor == "" {
			actor = "System"
		}
		item := types.TimelineItem{
			LeadID:  e.lead.ID,
			Actor:   actor,
			Action:  TimelineActions[i%len(TimelineActions)],
			Subject: model.NameOf(e.lead),
			Ago:     "Unknown",
		}
		if e.ok {
			item.At = e.at
			item.Ago = TimeAgo(cal.Now.Sub(e.at))
		}
		out = append(out, item)
	}
	return out
}

// TimeAgo renders an elapsed duration for humans. Negative durations read as
// "Just now".
func TimeAgo(d time.Duration) string {
	secs := int64(d / time.Second)
	switch {
	case secs < 60:
		return "Just now"
	case secs < 3600:
		return plural(secs/60, "minute")
	case secs < 86400:
		return plural(secs/3600, "hour")
	case secs < 604800:
		return plural(secs/86400, "day")
	default:
		return plural(secs/604800, "week")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
