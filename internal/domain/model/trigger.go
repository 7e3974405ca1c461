package model

import "time"

// TriggerKind names a unit of work for the dashboard loop.
type TriggerKind string

// Trigger kinds.
const (
	// TriggerReload refetches leads, follow-ups and analytics, then recomputes.
	TriggerReload TriggerKind = "reload"
	// TriggerRecompute reruns aggregation and rendering on the stored leads.
	TriggerRecompute TriggerKind = "recompute"
	// TriggerRealtime refreshes the live counters only.
	TriggerRealtime TriggerKind = "realtime"
	// TriggerScores reloads the lead scoring insight.
	TriggerScores TriggerKind = "scores"
	// TriggerTeam reloads the team leaderboard.
	TriggerTeam TriggerKind = "team"
	// TriggerSetWindow changes the headline window to Days.
	TriggerSetWindow TriggerKind = "set_window"
	// TriggerSetPeriod changes the activity chart granularity to Period.
	TriggerSetPeriod TriggerKind = "set_period"
	// TriggerResize changes the display size of Chart.
	TriggerResize TriggerKind = "resize"
)

// Trigger is one request for the dashboard loop. Only the fields relevant to
// Kind are set.
type Trigger struct {
	ID         string
	Kind       TriggerKind
	Source     string
	EnqueuedAt time.Time

	Days   int
	Period string
	Chart  string
	Width  int
	Height int
}

// IsSetting reports whether the kind carries a dashboard setting. Pending
// settings of one kind share a key, so only the latest value is applied.
func (k TriggerKind) IsSetting() bool {
	return k == TriggerSetWindow || k == TriggerSetPeriod || k == TriggerResize
}

// Key identifies equivalent triggers. Settings are keyed by kind, and resize
// also by chart, never by value.
func (t Trigger) Key() string {
	if t.Kind == TriggerResize {
		return string(t.Kind) + ":" + t.Chart
	}
	return string(t.Kind)
}
