// Package waves implements the Sine Waves effect: three superimposed sine
// curves over an optional diagonal gradient.
package waves

import (
	"image/color"
	"math"
	"time"

	"github.com/iburimskiy/backdrop/internal/frame"
	"github.com/iburimskiy/backdrop/internal/palette"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

const (
	strokeWidth = 2
	phaseStep   = 0.01
	// Alpha factor of the two secondary harmonics.
	harmonicFade = 0.7
)

var (
	fallbackStart = color.NRGBA{0x1e, 0x1b, 0x4b, 0xff}
	fallbackEnd   = color.NRGBA{0x31, 0x2e, 0x81, 0xff}
	fallbackWave  = color.NRGBA{129, 140, 248, 77}
)

// Placement locates the surface relative to the visible viewport.
type Placement struct {
	// Top is the surface's top edge in viewport coordinates; negative once
	// scrolled past.
	Top float64
	// Viewport is the height of the visible viewport.
	Viewport float64
}

// Option customises an Engine.
type Option func(*Engine)

// WithTracker sets the placement source used for parallax.
func WithTracker(fn func() Placement) Option {
	return func(e *Engine) { e.tracker = fn }
}

type harmonic struct {
	offset    float64
	amplitude float64
	frequency float64
	speed     float64
	faded     bool
}

// Engine draws the wave system into one surface.
type Engine struct {
	canvas  surface.Canvas
	cfg     schema.WaveConfig
	width   int
	height  int
	pending *[2]int
	phase   float64
	pulse   float64
	tracker func() Placement
	pts     []surface.Point
	loop    frame.Loop
}

// New builds an engine drawing into c. A nil cfg uses the stock defaults.
func New(c surface.Canvas, cfg *schema.WaveConfig, opts ...Option) (*Engine, error) {
	if c == nil {
		return nil, surface.ErrNoSurface
	}
	def, _ := schema.Default(schema.SineWaves)
	e := &Engine{canvas: c, cfg: def.(schema.WaveConfig)}
	if cfg != nil {
		e.cfg = *cfg
	}
	for _, opt := range opts {
		opt(e)
	}
	e.width, e.height = c.Size()
	return e, nil
}

// Config returns the configuration currently rendered.
func (e *Engine) Config() schema.WaveConfig { return e.cfg }

// Size reports the applied surface dimensions.
func (e *Engine) Size() (int, int) { return e.width, e.height }

// Phase returns the accumulated phase.
func (e *Engine) Phase() float64 { return e.phase }

// Resize records the target dimensions. They are applied at the start of
// the next frame, just before the surface is cleared, so the surface is
// never left blank between a resize and the redraw. Only the latest call
// before a frame takes effect.
func (e *Engine) Resize(w, h int) {
	e.pending = &[2]int{w, h}
}

// UpdateConfig replaces the configuration; every wave field is cosmetic.
func (e *Engine) UpdateConfig(cfg schema.WaveConfig) { e.cfg = cfg }

// SetTracker replaces the placement source used for parallax.
func (e *Engine) SetTracker(fn func() Placement) { e.tracker = fn }

// Pulse scales the wave amplitude by 1+level.
func (e *Engine) Pulse(level float64) { e.pulse = level }

// Start schedules the frame loop on s.
func (e *Engine) Start(s *frame.Scheduler) {
	e.loop.Start(s, func(time.Duration) { e.Step() })
}

// Stop cancels the frame loop.
func (e *Engine) Stop() { e.loop.Stop() }

// Running reports whether frames are scheduled.
func (e *Engine) Running() bool { return e.loop.Running() }

// Center returns the vertical wave center for a surface of height h.
// A parallax of 0 keeps the center fixed to the surface, 1 pins it to the
// middle of the viewport.
func Center(parallax, h float64, p Placement) float64 {
	parallax = math.Max(0, math.Min(1, parallax))
	local := h / 2
	if parallax == 0 || p.Viewport <= 0 {
		return local
	}
	pinned := p.Viewport/2 - p.Top
	return (1-parallax)*local + parallax*pinned
}

// Step applies any pending resize, then clears and draws one frame.
func (e *Engine) Step() {
	if e.pending != nil {
		e.width, e.height = e.pending[0], e.pending[1]
		e.canvas.SetSize(e.width, e.height)
		e.pending = nil
	}
	e.canvas.Clear()

	w, h := float32(e.width), float32(e.height)
	cfg := &e.cfg
	if !palette.IsTransparent(cfg.ColorStart) {
		from := palette.Resolve(cfg.ColorStart, fallbackStart)
		to := from
		if cfg.ColorEnd != "" {
			to = palette.Resolve(cfg.ColorEnd, fallbackEnd)
		}
		e.canvas.FillGradient(0, 0, w, h, from, to, surface.Diagonal)
	}

	var place Placement
	if e.tracker != nil {
		place = e.tracker()
	}
	center := Center(cfg.Parallax, float64(e.height), place)
	amp := cfg.Amplitude * (1 + e.pulse)
	waveColor := palette.Resolve(cfg.WaveColor, fallbackWave)
	for _, hm := range []harmonic{
		{offset: 0, amplitude: amp, frequency: 0.01, speed: cfg.Speed},
		{offset: 20, amplitude: amp + 20, frequency: 0.005, speed: cfg.Speed * 1.5, faded: true},
		{offset: -20, amplitude: amp - 10, frequency: 0.02, speed: cfg.Speed * 0.5, faded: true},
	} {
		c := waveColor
		if hm.faded {
			c = palette.WithAlpha(c, harmonicFade)
		}
		e.drawWave(center+hm.offset, hm, c)
	}

	e.phase += phaseStep
}

// drawWave strokes one curve sampled once per pixel column.
func (e *Engine) drawWave(y float64, hm harmonic, c color.NRGBA) {
	if e.width <= 0 {
		return
	}
	e.pts = e.pts[:0]
	e.pts = append(e.pts, surface.Point{X: 0, Y: float32(y)})
	for i := 0; i < e.width; i++ {
		v := y + math.Sin(float64(i)*hm.frequency+e.phase*hm.speed)*hm.amplitude
		e.pts = append(e.pts, surface.Point{X: float32(i), Y: float32(v)})
	}
	e.canvas.StrokePolyline(e.pts, strokeWidth, c)
}
