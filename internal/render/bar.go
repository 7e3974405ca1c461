package render

import (
	"math"
	"strconv"

	"github.com/Ismail26477/crm-main/internal/domain/types"
)

// Bar chart layout and palette.
const (
	chartPadding  = 40
	gridLines     = 5
	gridColor     = "#e2e8f0"
	axisTextColor = "#64748b"
	legendColor   = "#1e293b"
	axisTextSize  = 11
	legendSize    = 12
	legendSwatch  = 12
)

// Series gradients of the activity chart.
var (
	NewLeadsGradient  = Gradient{From: "#667eea", To: "#764ba2"}
	ConvertedGradient = Gradient{From: "#43e97b", To: "#38f9d7"}
)

// BarChart draws new and converted leads per bucket as grouped bars with
// horizontal gridlines and a two entry legend. A nil surface is a no-op.
func BarChart(s Surface, buckets []types.TimeBucket) {
	if s == nil {
		return
	}
	width, height := fitToDisplay(s)

	maxValue := 1
	for _, b := range buckets {
		maxValue = max(maxValue, b.New, b.Converted)
	}
	top := float64(maxValue)

	chartWidth := width - chartPadding*2
	chartHeight := height - chartPadding*2

	axis := TextStyle{Size: axisTextSize, Color: axisTextColor, Align: AlignRight}
	for i := 0; i <= gridLines; i++ {
		y := chartPadding + chartHeight/gridLines*float64(i)
		s.StrokeLine(chartPadding, y, width-chartPadding, y, gridColor, 1)
		label := strconv.FormatFloat(math.Round(top-top/gridLines*float64(i)), 'f', 0, 64)
		s.FillText(label, chartPadding-10, y+4, axis)
	}

	if len(buckets) > 0 {
		barWidth := chartWidth / float64(len(buckets)) / 2.5
		spacing := barWidth * 0.5
		baseline := height - chartPadding
		label := TextStyle{Size: axisTextSize, Color: axisTextColor, Align: AlignCenter}

		for i, b := range buckets {
			x := chartPadding + float64(i)*(barWidth*2+spacing)
			newHeight := float64(b.New) / top * chartHeight
			convHeight := float64(b.Converted) / top * chartHeight

			s.FillGradientRect(x, baseline-newHeight, barWidth, newHeight, NewLeadsGradient)
			s.FillGradientRect(x+barWidth+spacing/2, baseline-convHeight, barWidth, convHeight, ConvertedGradient)
			s.FillText(b.Label, x+barWidth+spacing/4, baseline+20, label)
		}
	}

	legendY := float64(chartPadding - 20)
	text := TextStyle{Size: legendSize, Color: legendColor, Align: AlignLeft}
	s.FillRect(width-200, legendY, legendSwatch, legendSwatch, NewLeadsGradient.From)
	s.FillText("New Leads", width-180, legendY+10, text)
	s.FillRect(width-90, legendY, legendSwatch, legendSwatch, ConvertedGradient.From)
	s.FillText("Converted", width-70, legendY+10, text)
}
