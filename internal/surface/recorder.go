package surface

import "image/color"

// Op is one recorded draw call.
type Op struct {
	Name   string
	Args   []float32
	Color  color.NRGBA
	Color2 color.NRGBA
	Points []Point
}

// Recorder is an in-memory Retained canvas that records what was drawn.
// Tests use it in place of a window.
type Recorder struct {
	W, H     int
	Ops      []Op
	Sprites  []*RecordedSprite
	Resizes  int
	Backdrop color.NRGBA
}

// RecordedSprite remembers its latest translation.
type RecordedSprite struct {
	Diameter float32
	Color    color.NRGBA
	X, Y     float64
	Moves    int
}

func (sp *RecordedSprite) Translate(x, y float64) {
	sp.X, sp.Y = x, y
	sp.Moves++
}

// NewRecorder returns a recorder reporting the given size.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h}
}

func (r *Recorder) Size() (int, int) { return r.W, r.H }

func (r *Recorder) SetSize(w, h int) {
	r.W, r.H = w, h
	r.Resizes++
	r.record(Op{Name: "resize", Args: []float32{float32(w), float32(h)}})
}

func (r *Recorder) Clear() { r.record(Op{Name: "clear"}) }

func (r *Recorder) FillRect(x, y, w, h float32, c color.Color) {
	r.record(Op{Name: "rect", Args: []float32{x, y, w, h}, Color: nrgba(c)})
}

func (r *Recorder) FillCircle(cx, cy, rad float32, c color.Color) {
	r.record(Op{Name: "circle", Args: []float32{cx, cy, rad}, Color: nrgba(c)})
}

func (r *Recorder) FillRoundRect(x, y, w, h, radius float32, c color.Color) {
	r.record(Op{Name: "roundrect", Args: []float32{x, y, w, h, radius}, Color: nrgba(c)})
}

func (r *Recorder) StrokeLine(x0, y0, x1, y1, width float32, c color.Color) {
	r.record(Op{Name: "line", Args: []float32{x0, y0, x1, y1, width}, Color: nrgba(c)})
}

func (r *Recorder) StrokePolyline(pts []Point, width float32, c color.Color) {
	cp := make([]Point, len(pts))
	copy(cp, pts)
	r.record(Op{Name: "polyline", Args: []float32{width}, Points: cp, Color: nrgba(c)})
}

func (r *Recorder) FillGradient(x, y, w, h float32, from, to color.Color, dir Direction) {
	r.record(Op{Name: "gradient", Args: []float32{x, y, w, h, float32(dir)}, Color: nrgba(from), Color2: nrgba(to)})
}

func (r *Recorder) FillGlow(cx, cy, rad float32, c color.Color) {
	r.record(Op{Name: "glow", Args: []float32{cx, cy, rad}, Color: nrgba(c)})
}

func (r *Recorder) NewSprite(diameter float32, c color.Color) Sprite {
	sp := &RecordedSprite{Diameter: diameter, Color: nrgba(c)}
	r.Sprites = append(r.Sprites, sp)
	return sp
}

func (r *Recorder) SetBackdrop(c color.Color) { r.Backdrop = nrgba(c) }

func (r *Recorder) ReleaseSprites() { r.Sprites = nil }

// Count returns how many ops with name were recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// Names lists recorded op names in order.
func (r *Recorder) Names() []string {
	out := make([]string, len(r.Ops))
	for i, op := range r.Ops {
		out[i] = op.Name
	}
	return out
}

// Reset forgets recorded ops.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }

func (r *Recorder) record(op Op) { r.Ops = append(r.Ops, op) }

func nrgba(c color.Color) color.NRGBA {
	if c == nil {
		return color.NRGBA{}
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
