// Package types contains the derived dashboard values shared by the
// aggregation, rendering and HTTP layers. Every value here is rebuilt from
// scratch on each pipeline run.
package types

import "time"

// Granularity selects the activity chart bucketing.
type Granularity string

// Supported granularities.
const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// ParseGranularity returns the granularity and whether s named one.
func ParseGranularity(s string) (Granularity, bool) {
	switch g := Granularity(s); g {
	case Daily, Weekly, Monthly:
		return g, true
	}
	return Daily, false
}

// Headline holds the top-of-page counters.
type Headline struct {
	TotalLeads        int     `json:"totalLeads"`
	LeadsChange       float64 `json:"leadsChange"`
	LeadsChangeLabel  string  `json:"leadsChangeLabel"`
	NewLeadsToday     int     `json:"newLeadsToday"`
	ActiveListings    int     `json:"activeListings"`
	ClosedDeals       int     `json:"closedDeals"`
	ThisMonthDeals    int     `json:"thisMonthDeals"`
	ScheduledViewings int     `json:"scheduledViewings"`
	TodayViewings     int     `json:"todayViewings"`
}

// TimeBucket is one bar group of the activity chart.
type TimeBucket struct {
	Label     string    `json:"label"`
	Start     time.Time `json:"start"`
	New       int       `json:"new"`
	Converted int       `json:"converted"`
}

// StageSlice is one segment of the pipeline donut.
type StageSlice struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// LegendEntry is what a legend target receives per drawn slice.
type LegendEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// RankedEntity is a grouped count with conversions.
type RankedEntity struct {
	Name      string  `json:"name"`
	Total     int     `json:"total"`
	Converted int     `json:"converted"`
	Rate      float64 `json:"rate"`
}

// SourceShare is a row of the property type / source mix list.
type SourceShare struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	BarPercent float64 `json:"barPercent"`
	Color      string  `json:"color"`
}

// RateClass buckets a conversion rate for display.
type RateClass string

// Rate classes.
const (
	RatePoor    RateClass = "poor"
	RateAverage RateClass = "average"
	RateGood    RateClass = "good"
)

// SourcePerformance is a row of the source performance list.
type SourcePerformance struct {
	RankedEntity
	Class RateClass `json:"class"`
	// FromAnalytics is true when the row came precomputed from the analytics collaborator.
	FromAnalytics bool `json:"fromAnalytics"`
}

// Agent is a row of the top agents list.
type Agent struct {
	RankedEntity
	Initials string `json:"initials"`
}

// SpeedClass buckets an average response time.
type SpeedClass string

// Speed classes.
const (
	SpeedFast    SpeedClass = "fast"
	SpeedAverage SpeedClass = "average"
	SpeedSlow    SpeedClass = "slow"
)

// ResponseBand summarises one priority band.
type ResponseBand struct {
	Priority   string     `json:"priority"`
	Count      int        `json:"count"`
	Assigned   int        `json:"assigned"`
	AvgMinutes int        `json:"avgMinutes"`
	Class      SpeedClass `json:"class"`
	// Synthetic marks averages that were estimated rather than measured.
	Synthetic bool `json:"synthetic"`
}

// FollowUp is an upcoming callback.
type FollowUp struct {
	LeadID    string    `json:"leadId,omitempty"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
	Due       time.Time `json:"due"`
	DaysUntil int       `json:"daysUntil"`
	DueLabel  string    `json:"dueLabel"`
}

// TimelineItem is one entry of the recent activity feed.
type TimelineItem struct {
	LeadID  string    `json:"leadId,omitempty"`
	Actor   string    `json:"actor"`
	Action  string    `json:"action"`
	Subject string    `json:"subject"`
	At      time.Time `json:"at"`
	Ago     string    `json:"ago"`
}

// Task is an item of today's task list.
type Task struct {
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	Priority string `json:"priority"`
}

// ScoreInsight summarises the lead scoring collaborator.
type ScoreInsight struct {
	Hot  int          `json:"hot"`
	Warm int          `json:"warm"`
	Cold int          `json:"cold"`
	Top  []ScoredLead `json:"top"`
}

// ScoredLead is a top scoring lead row.
type ScoredLead struct {
	Name  string  `json:"name"`
	Stage string  `json:"stage"`
	Score float64 `json:"score"`
	Level string  `json:"level"`
	Color string  `json:"color"`
}

// TeamEntry is a row of the team leaderboard.
type TeamEntry struct {
	Rank           int     `json:"rank"`
	Medal          string  `json:"medal"`
	Name           string  `json:"name"`
	ClosedDeals    int     `json:"closedDeals"`
	ConversionRate float64 `json:"conversionRate"`
	Stars          int     `json:"stars"`
}

// Live holds the counters patched by the real-time poll.
type Live struct {
	HotLeads  int       `json:"hotLeads"`
	UpdatedAt time.Time `json:"updatedAt"`
	Available bool      `json:"available"`
}

// Snapshot is the published dashboard state.
type Snapshot struct {
	Generation  uint64      `json:"generation"`
	ComputedAt  time.Time   `json:"computedAt"`
	WindowDays  int         `json:"windowDays"`
	Period      Granularity `json:"period"`
	LeadCount   int         `json:"leadCount"`
	UndatedLead int         `json:"undatedLeads"`

	Headline          Headline            `json:"headline"`
	Activity          []TimeBucket        `json:"activity"`
	Pipeline          []StageSlice        `json:"pipeline"`
	PipelineTotal     int                 `json:"pipelineTotal"`
	SourceMix         []SourceShare       `json:"sourceMix"`
	SourcePerformance []SourcePerformance `json:"sourcePerformance"`
	TopAgents         []Agent             `json:"topAgents"`
	ResponseBands     []ResponseBand      `json:"responseBands"`
	Followups         []FollowUp          `json:"followups"`
	Timeline          []TimelineItem      `json:"timeline"`
	Tasks             []Task              `json:"tasks"`
	Scores            *ScoreInsight       `json:"scores,omitempty"`
	Team              []TeamEntry         `json:"team,omitempty"`
	Live              Live                `json:"live"`
}
