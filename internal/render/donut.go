package render

import (
	"math"
	"strconv"

	"github.com/Ismail26477/crm-main/internal/domain/types"
)

// Donut chart layout.
const (
	donutMargin     = 20
	donutInnerRatio = 0.6
	holeColor       = "white"
	placeholderText = "No lead data"
	totalLabel      = "Total Leads"
)

// DonutChart draws the pipeline ring with the grand total in its hole and
// hands one legend entry per drawn slice to legend. With nothing to draw it
// shows a placeholder and leaves the legend untouched. A nil surface is a
// no-op; a nil legend is skipped.
func DonutChart(s Surface, slices []types.StageSlice, legend Legend) {
	if s == nil {
		return
	}
	width, height := fitToDisplay(s)

	drawn := make([]types.StageSlice, 0, len(slices))
	total := 0
	for _, sl := range slices {
		if sl.Count > 0 {
			drawn = append(drawn, sl)
			total += sl.Count
		}
	}

	cx, cy := width/2, height/2
	if total == 0 {
		s.FillText(placeholderText, cx, cy, TextStyle{Size: 14, Color: axisTextColor, Align: AlignCenter})
		return
	}

	radius := math.Max(0, math.Min(cx, cy)-donutMargin)
	inner := radius * donutInnerRatio

	angle := -math.Pi / 2
	for _, sl := range drawn {
		sweep := float64(sl.Count) / float64(total) * 2 * math.Pi
		s.FillAnnularSector(cx, cy, radius, inner, angle, sweep, sl.Color)
		angle += sweep
	}
	s.FillCircle(cx, cy, inner, holeColor)

	s.FillText(strconv.Itoa(total), cx, cy-10,
		TextStyle{Size: 24, Bold: true, Color: legendColor, Align: AlignCenter, Baseline: BaselineMiddle})
	s.FillText(totalLabel, cx, cy+10,
		TextStyle{Size: 12, Color: axisTextColor, Align: AlignCenter, Baseline: BaselineMiddle})

	if legend == nil {
		return
	}
	entries := make([]types.LegendEntry, 0, len(drawn))
	for _, sl := range drawn {
		entries = append(entries, types.LegendEntry{Label: sl.Stage, Count: sl.Count, Color: sl.Color})
	}
	legend.SetEntries(entries)
}
