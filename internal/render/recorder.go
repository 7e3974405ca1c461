package render

// OpKind names a recorded drawing call.
type OpKind string

// Recorded drawing calls.
const (
	OpResize   OpKind = "resize"
	OpRect     OpKind = "rect"
	OpGradient OpKind = "gradient"
	OpLine     OpKind = "line"
	OpSector   OpKind = "sector"
	OpCircle   OpKind = "circle"
	OpText     OpKind = "text"
)

// Op is one recorded drawing call. Args holds the numeric arguments in call
// order.
type Op struct {
	Kind     OpKind
	Args     []float64
	Color    string
	Gradient Gradient
	Text     string
	Style    TextStyle
}

// Recorder is a Surface that records drawing calls instead of painting.
// Resize drops everything recorded so far, like clearing a canvas.
type Recorder struct {
	displayW, displayH int
	w, h               int
	ops                []Op
}

// NewRecorder returns a recorder laid out at width x height.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{displayW: width, displayH: height}
}

// SetDisplaySize changes the layout size picked up by the next render.
func (r *Recorder) SetDisplaySize(width, height int) {
	r.displayW, r.displayH = width, height
}

func (r *Recorder) DisplaySize() (int, int) { return r.displayW, r.displayH }

func (r *Recorder) Size() (int, int) { return r.w, r.h }

func (r *Recorder) Resize(width, height int) {
	r.w, r.h = max(width, 0), max(height, 0)
	r.ops = []Op{{Kind: OpResize, Args: []float64{float64(r.w), float64(r.h)}}}
}

func (r *Recorder) FillRect(x, y, w, h float64, color string) {
	r.ops = append(r.ops, Op{Kind: OpRect, Args: []float64{x, y, w, h}, Color: color})
}

func (r *Recorder) FillGradientRect(x, y, w, h float64, g Gradient) {
	r.ops = append(r.ops, Op{Kind: OpGradient, Args: []float64{x, y, w, h}, Gradient: g})
}

func (r *Recorder) StrokeLine(x1, y1, x2, y2 float64, color string, width float64) {
	r.ops = append(r.ops, Op{Kind: OpLine, Args: []float64{x1, y1, x2, y2, width}, Color: color})
}

func (r *Recorder) FillAnnularSector(cx, cy, outer, inner, start, sweep float64, color string) {
	r.ops = append(r.ops, Op{Kind: OpSector, Args: []float64{cx, cy, outer, inner, start, sweep}, Color: color})
}

func (r *Recorder) FillCircle(cx, cy, radius float64, color string) {
	r.ops = append(r.ops, Op{Kind: OpCircle, Args: []float64{cx, cy, radius}, Color: color})
}

func (r *Recorder) FillText(text string, x, y float64, style TextStyle) {
	r.ops = append(r.ops, Op{Kind: OpText, Args: []float64{x, y}, Text: text, Style: style})
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Filter returns the recorded calls of one kind.
func (r *Recorder) Filter(kind OpKind) []Op {
	var out []Op
	for _, op := range r.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns the text runs in draw order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Filter(OpText) {
		out = append(out, op.Text)
	}
	return out
}
