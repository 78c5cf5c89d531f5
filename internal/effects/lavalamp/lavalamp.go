// Package lavalamp implements the Lava Lamp effect in two motion models:
// Engine, a buoyant simulation drawn immediately each frame, and Bounce,
// which moves retained sprites around the container.
package lavalamp

import (
	"image/color"
	"math"
	"math/rand"
	"time"

	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/frame"
	"github.com/iburimskiy/backdrop/internal/palette"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

var fallbackBlob = color.NRGBA{0xff, 0x45, 0x00, 0xff}

// Blob is one rising drop of the buoyant model. VY is the unscaled base
// velocity; the configured speed multiplies it every frame.
type Blob struct {
	X, Y   float64
	VY     float64
	Radius float64
	Phase  float64
}

// Option customises an engine.
type Option func(*options)

type options struct {
	rng *rand.Rand
}

// WithRand sets the random source for placement and respawn.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// Engine is the buoyant lava lamp.
type Engine struct {
	canvas surface.Canvas
	cfg    schema.LavaLampConfig
	blobs  []Blob
	colors []color.NRGBA
	width  float64
	height float64
	rng    *rand.Rand
	loop   frame.Loop
}

// New builds a buoyant engine drawing into c. A nil cfg uses the stock
// defaults.
func New(c surface.Canvas, cfg *schema.LavaLampConfig, opts ...Option) (*Engine, error) {
	if c == nil {
		return nil, surface.ErrNoSurface
	}
	o := buildOptions(opts)
	def, _ := schema.Default(schema.LavaLamp)
	e := &Engine{canvas: c, cfg: def.(schema.LavaLampConfig), rng: o.rng}
	if cfg != nil {
		e.cfg = schema.Clone(*cfg).(schema.LavaLampConfig)
	}
	w, h := c.Size()
	e.width, e.height = float64(w), float64(h)
	e.colors = resolveColors(e.cfg.Colors)
	e.initBlobs()
	return e, nil
}

// Config returns the configuration currently rendered.
func (e *Engine) Config() schema.LavaLampConfig { return e.cfg }

// Blobs returns a copy of the blob state.
func (e *Engine) Blobs() []Blob {
	out := make([]Blob, len(e.blobs))
	copy(out, e.blobs)
	return out
}

// Resize sets the surface dimensions. Blob sizes derive from them, so the
// blobs are re-seeded.
func (e *Engine) Resize(w, h int) {
	e.width, e.height = float64(w), float64(h)
	e.canvas.SetSize(w, h)
	e.initBlobs()
}

// UpdateConfig replaces the configuration. Only a blob count change
// re-seeds; speed and colors apply to the running blobs.
func (e *Engine) UpdateConfig(cfg schema.LavaLampConfig) {
	e.cfg = schema.Clone(cfg).(schema.LavaLampConfig)
	e.colors = resolveColors(e.cfg.Colors)
	if len(e.blobs) != e.count() {
		e.initBlobs()
	}
}

// Start schedules the frame loop on s.
func (e *Engine) Start(s *frame.Scheduler) {
	e.loop.Start(s, func(time.Duration) { e.Step() })
}

// Stop cancels the frame loop.
func (e *Engine) Stop() { e.loop.Stop() }

// Running reports whether frames are scheduled.
func (e *Engine) Running() bool { return e.loop.Running() }

func (e *Engine) count() int {
	if e.cfg.BlobCount < 0 {
		return 0
	}
	return e.cfg.BlobCount
}

func (e *Engine) bounds() (float64, float64) {
	w, h := e.width, e.height
	if w <= 0 {
		w = config.DefaultViewportWidth
	}
	if h <= 0 {
		h = config.DefaultViewportHeight
	}
	return w, h
}

func (e *Engine) initBlobs() {
	w, h := e.bounds()
	base := math.Min(w, h) * 0.15
	e.blobs = make([]Blob, e.count())
	for i := range e.blobs {
		e.blobs[i] = Blob{
			X:      e.rng.Float64() * w,
			Y:      e.rng.Float64()*h + h,
			VY:     -e.rng.Float64() - 0.5,
			Radius: base * (0.8 + e.rng.Float64()*1.2),
			Phase:  e.rng.Float64() * 2 * math.Pi,
		}
	}
}

// Step advances and draws one frame.
func (e *Engine) Step() {
	w, h := e.bounds()
	e.canvas.Clear()
	if !palette.IsTransparent(e.cfg.BackgroundColor) {
		if bg, err := palette.Parse(e.cfg.BackgroundColor); err == nil {
			e.canvas.FillRect(0, 0, float32(e.width), float32(e.height), bg)
		}
	}

	speed := e.cfg.Speed
	for i := range e.blobs {
		b := &e.blobs[i]
		b.Y += b.VY * speed
		b.Phase += 0.01 * speed
		b.X += math.Sin(b.Phase) * 0.5 * speed

		if b.Y < -b.Radius*2 {
			b.Y = h + b.Radius*2
			b.X = e.rng.Float64() * w
			b.Radius *= 0.9 + e.rng.Float64()*0.2
		}

		e.canvas.FillCircle(float32(b.X), float32(b.Y), float32(b.Radius), e.colors[i%len(e.colors)])
	}
}

func resolveColors(in []string) []color.NRGBA {
	out := make([]color.NRGBA, 0, len(in))
	for _, s := range in {
		if c, err := palette.Parse(s); err == nil {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		out = append(out, fallbackBlob)
	}
	return out
}
