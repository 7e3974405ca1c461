package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Raster is a Surface backed by an RGBA image. Paths are filled with the
// go-chart rasterizer; text uses the 7x13 bitmap face, so TextStyle.Size
// only affects layout on other surfaces.
type Raster struct {
	displayW, displayH int
	img                *image.RGBA
	err                error
}

// NewRaster returns a raster laid out at width x height. The backing image
// is allocated by the first Resize.
func NewRaster(width, height int) *Raster {
	r := &Raster{displayW: width, displayH: height}
	r.Resize(width, height)
	return r
}

// SetDisplaySize changes the layout size picked up by the next render.
func (r *Raster) SetDisplaySize(width, height int) {
	r.displayW, r.displayH = width, height
}

func (r *Raster) DisplaySize() (int, int) { return r.displayW, r.displayH }

func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates a transparent image. Sizes below one pixel are clamped
// so the result can always be encoded.
func (r *Raster) Resize(width, height int) {
	r.img = image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	r.err = nil
}

// Image returns the backing image.
func (r *Raster) Image() image.Image { return r.img }

// Err reports the first drawing failure since the last Resize.
func (r *Raster) Err() error { return r.err }

// EncodePNG writes the current picture as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if r.err != nil {
		return r.err
	}
	if err := png.Encode(w, r.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Raster) gc() *drawing.RasterGraphicContext {
	gc, err := drawing.NewRasterGraphicContext(r.img)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("graphic context: %w", err)
		}
		return nil
	}
	return gc
}

func (r *Raster) FillRect(x, y, w, h float64, c string) {
	if w <= 0 || h <= 0 {
		return
	}
	gc := r.gc()
	if gc == nil {
		return
	}
	gc.SetFillColor(parseColor(c))
	gc.BeginPath()
	gc.MoveTo(x, y)
	gc.LineTo(x+w, y)
	gc.LineTo(x+w, y+h)
	gc.LineTo(x, y+h)
	gc.Close()
	gc.Fill()
}

// FillGradientRect paints one row at a time, interpolating between the
// gradient stops.
func (r *Raster) FillGradientRect(x, y, w, h float64, g Gradient) {
	if w <= 0 || h <= 0 {
		return
	}
	from, to := rgba(parseColor(g.From)), rgba(parseColor(g.To))
	x0, x1 := int(math.Round(x)), int(math.Round(x+w))
	y0, y1 := int(math.Round(y)), int(math.Round(y+h))
	rows := max(y1-y0-1, 1)
	for row := y0; row < y1; row++ {
		t := float64(row-y0) / float64(rows)
		line := image.Rect(x0, row, x1, row+1)
		draw.Draw(r.img, line, image.NewUniform(lerp(from, to, t)), image.Point{}, draw.Over)
	}
}

func (r *Raster) StrokeLine(x1, y1, x2, y2 float64, c string, width float64) {
	gc := r.gc()
	if gc == nil {
		return
	}
	gc.SetStrokeColor(parseColor(c))
	gc.SetLineWidth(width)
	gc.BeginPath()
	gc.MoveTo(x1, y1)
	gc.LineTo(x2, y2)
	gc.Stroke()
}

// FillAnnularSector traces the outer arc forward and the inner arc back.
func (r *Raster) FillAnnularSector(cx, cy, outer, inner, start, sweep float64, c string) {
	if outer <= 0 || sweep == 0 {
		return
	}
	gc := r.gc()
	if gc == nil {
		return
	}
	gc.SetFillColor(parseColor(c))
	gc.BeginPath()
	gc.ArcTo(cx, cy, outer, outer, start, sweep)
	if inner > 0 {
		gc.ArcTo(cx, cy, inner, inner, start+sweep, -sweep)
	} else {
		gc.LineTo(cx, cy)
	}
	gc.Close()
	gc.Fill()
}

func (r *Raster) FillCircle(cx, cy, radius float64, c string) {
	if radius <= 0 {
		return
	}
	gc := r.gc()
	if gc == nil {
		return
	}
	gc.SetFillColor(parseColor(c))
	gc.BeginPath()
	gc.ArcTo(cx, cy, radius, radius, 0, 2*math.Pi)
	gc.Close()
	gc.Fill()
}

func (r *Raster) FillText(text string, x, y float64, style TextStyle) {
	face := basicfont.Face7x13
	src := image.NewUniform(parseColor(style.Color))
	width := font.MeasureString(face, text).Ceil()

	px := int(math.Round(x))
	switch style.Align {
	case AlignCenter:
		px -= width / 2
	case AlignRight:
		px -= width
	}
	py := int(math.Round(y))
	if style.Baseline == BaselineMiddle {
		m := face.Metrics()
		py += (m.Ascent.Ceil() - m.Descent.Ceil()) / 2
	}

	dr := &font.Drawer{Dst: r.img, Src: src, Face: face, Dot: fixed.Point26_6{X: fixed.I(px), Y: fixed.I(py)}}
	dr.DrawString(text)
	if style.Bold {
		dr.Dot = fixed.Point26_6{X: fixed.I(px + 1), Y: fixed.I(py)}
		dr.DrawString(text)
	}
}

func parseColor(s string) color.Color {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "black":
		return color.Black
	case "white":
		return color.White
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 3 && len(hex) != 6 {
		return color.Black
	}
	return drawing.ColorFromHex(hex)
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
