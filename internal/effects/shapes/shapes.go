// Package shapes renders the Floating Shapes background: soft circles and
// rounded squares bobbing on staggered float loops.
package shapes

import (
	"image/color"
	"time"

	"github.com/iburimskiy/backdrop/internal/effects/declarative"
	"github.com/iburimskiy/backdrop/internal/effects/loop"
	"github.com/iburimskiy/backdrop/internal/palette"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

const (
	defaultCount = 5
	opacity      = 0.4
	cornerRadius = loop.RemPx
	stagger      = time.Second
)

var (
	defaultColors = []string{"bg-emerald-400", "bg-teal-500", "bg-cyan-300", "bg-emerald-600", "bg-teal-300"}
	defaultBG     = "bg-slate-50"
	frost         = color.NRGBA{0xff, 0xff, 0xff, 26}

	sizes = [5]float64{96, 128, 64, 160, 80}
	slots = [5]struct{ top, left, right, bottom string }{
		{top: "40px", left: "10%"},
		{bottom: "80px", right: "15%"},
		{top: "40%", left: "60%"},
		{top: "80px", right: "40px"},
		{bottom: "30%", left: "80px"},
	}
)

// Shape is one placed shape. X and Y are the top-left corner at rest.
type Shape struct {
	Circle bool
	X, Y   float64
	Size   float64
	Color  color.NRGBA
	Delay  time.Duration
}

// Engine is the floating shapes lifecycle.
type Engine = declarative.Engine[schema.ShapeConfig]

// New builds a shapes engine. A nil cfg uses the stock defaults.
func New(c surface.Canvas, cfg *schema.ShapeConfig) (*Engine, error) {
	def, _ := schema.Default(schema.FloatingShapes)
	use := def.(schema.ShapeConfig)
	if cfg != nil {
		use = *cfg
	}
	return declarative.New(c, use, Render)
}

// Layout places the shapes for a w×h surface. Shapes alternate circle and
// square, cycle through the colors, take size and anchor from five fixed
// slots, and start one second apart. A zero count means five.
func Layout(cfg schema.ShapeConfig, w, h float64) []Shape {
	n := cfg.ShapeCount
	if n <= 0 {
		n = defaultCount
	}
	colors := cfg.Colors
	if len(colors) == 0 {
		colors = defaultColors
	}
	vp := loop.Viewport{W: w, H: h}
	out := make([]Shape, 0, n)
	for i := 0; i < n; i++ {
		c, err := palette.Parse(colors[i%len(colors)])
		if err != nil {
			continue
		}
		size := sizes[i%len(sizes)]
		slot := slots[i%len(slots)]
		box := loop.Box{Width: loop.PxLen(size), Height: loop.PxLen(size)}
		box.Top, _ = loop.ParseLength(slot.top)
		box.Left, _ = loop.ParseLength(slot.left)
		box.Right, _ = loop.ParseLength(slot.right)
		box.Bottom, _ = loop.ParseLength(slot.bottom)
		x, y, _, _ := box.Resolve(w, h, vp)
		out = append(out, Shape{
			Circle: i%2 == 0,
			X:      x,
			Y:      y,
			Size:   size,
			Color:  c,
			Delay:  time.Duration(i) * stagger,
		})
	}
	return out
}

// Render draws the shapes at the given animation time.
func Render(c surface.Canvas, cfg schema.ShapeConfig, w, h float64, elapsed time.Duration) {
	bg := cfg.BackgroundColor
	if bg == "" {
		bg = defaultBG
	}
	if !palette.IsTransparent(bg) {
		if col, err := palette.Parse(bg); err == nil {
			c.FillRect(0, 0, float32(w), float32(h), col)
		}
	}
	for _, s := range Layout(cfg, w, h) {
		kf := loop.Float.Sample(elapsed, loop.FloatPeriod, s.Delay, loop.EaseInOut)
		x, y := float32(s.X+kf.X), float32(s.Y+kf.Y)
		size := float32(s.Size)
		col := palette.WithAlpha(s.Color, opacity)
		if s.Circle {
			c.FillCircle(x+size/2, y+size/2, size/2, col)
		} else {
			c.FillRoundRect(x, y, size, size, cornerRadius, col)
		}
	}
	c.FillRect(0, 0, float32(w), float32(h), frost)
}
