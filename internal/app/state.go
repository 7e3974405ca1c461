package service

import (
	"github.com/Ismail26477/crm-main/internal/domain/types"
)

// Chart names.
const (
	ChartActivity = "activity"
	ChartPipeline = "pipeline"
)

var defaultSizes = map[string]Size{
	ChartActivity: {Width: 800, Height: 300},
	ChartPipeline: {Width: 300, Height: 300},
}

// Size is a chart display size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both sides are positive.
func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// State is what the trigger loop mutates. Leads, follow-ups and analytics
// live in the store; everything else the dashboard shows is kept here.
type State struct {
	WindowDays int
	Period     types.Granularity
	Sizes      map[string]Size

	Scores *types.ScoreInsight
	Team   []types.TeamEntry
	Live   types.Live
}

func newState(windowDays int, period types.Granularity) *State {
	return &State{
		WindowDays: windowDays,
		Period:     period,
		Sizes: map[string]Size{
			ChartActivity: defaultSizes[ChartActivity],
			ChartPipeline: defaultSizes[ChartPipeline],
		},
	}
}

// view is one published result. It is never modified after publication;
// updates publish a new view.
type view struct {
	snapshot types.Snapshot
	charts   map[string][]byte
	legend   []types.LegendEntry
	sizes    map[string]Size
}
