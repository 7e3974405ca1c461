// Package render draws the dashboard charts onto a Surface.
//
// Renderers are pure functions of aggregated data plus a surface: they first
// resize the surface to its display size, which clears it, and then draw.
// Rendering the same data twice yields the same picture.
package render

import "github.com/Ismail26477/crm-main/internal/domain/types"

// Align is the horizontal anchor of a text run.
type Align int

// Text alignments.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Baseline is the vertical anchor of a text run.
type Baseline int

// Text baselines.
const (
	BaselineAlphabetic Baseline = iota
	BaselineMiddle
)

// TextStyle describes how a text run is drawn.
type TextStyle struct {
	Size     float64
	Bold     bool
	Color    string
	Align    Align
	Baseline Baseline
}

// Gradient is a vertical linear gradient, From at the top.
type Gradient struct {
	From string
	To   string
}

// Surface is a 2D drawing target. Colors are CSS hex strings or "white".
type Surface interface {
	// DisplaySize is the size the surface is laid out at.
	DisplaySize() (width, height int)
	// Resize sets the backing size and clears the surface.
	Resize(width, height int)
	// Size is the current backing size.
	Size() (width, height int)

	FillRect(x, y, w, h float64, color string)
	FillGradientRect(x, y, w, h float64, g Gradient)
	StrokeLine(x1, y1, x2, y2 float64, color string, width float64)
	// FillAnnularSector fills the ring segment between inner and outer
	// radius starting at angle start (radians, clockwise from 3 o'clock)
	// and sweeping clockwise by sweep.
	FillAnnularSector(cx, cy, outer, inner, start, sweep float64, color string)
	FillCircle(cx, cy, r float64, color string)
	FillText(text string, x, y float64, style TextStyle)
}

// Legend receives the legend rows of a chart, in draw order.
type Legend interface {
	SetEntries(entries []types.LegendEntry)
}

// LegendFunc adapts a function to Legend.
type LegendFunc func(entries []types.LegendEntry)

// SetEntries calls f.
func (f LegendFunc) SetEntries(entries []types.LegendEntry) { f(entries) }

// fitToDisplay resizes s to its display size and returns the new size.
func fitToDisplay(s Surface) (float64, float64) {
	w, h := s.DisplaySize()
	s.Resize(w, h)
	w, h = s.Size()
	return float64(w), float64(h)
}
