package lavalamp

import (
	"image/color"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/frame"
	"github.com/iburimskiy/backdrop/internal/palette"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

var fallbackBackdrop = color.NRGBA{0x32, 0x00, 0x32, 0xff}

// Body is one bouncing blob. Its position is the top-left corner of the
// blob's bounding square.
type Body struct {
	X, Y   float64
	VX, VY float64
	Size   float64
}

// Bounce is the sprite-driven lava lamp. Bodies live in an arena and
// handles[i] is the retained sprite of bodies[i]; a tick only moves the
// sprites.
type Bounce struct {
	canvas  surface.Retained
	cfg     schema.LavaLampConfig
	bodies  []Body
	handles []surface.Sprite
	width   float64
	height  float64
	rng     *rand.Rand
	loop    frame.Loop
}

// NewBounce builds a bouncing engine on a retained canvas. A nil cfg uses
// the stock defaults.
func NewBounce(c surface.Retained, cfg *schema.LavaLampConfig, opts ...Option) (*Bounce, error) {
	if c == nil {
		return nil, surface.ErrNoSurface
	}
	o := buildOptions(opts)
	def, _ := schema.Default(schema.LavaLamp)
	b := &Bounce{canvas: c, cfg: def.(schema.LavaLampConfig), rng: o.rng}
	if cfg != nil {
		b.cfg = schema.Clone(*cfg).(schema.LavaLampConfig)
	}
	w, h := c.Size()
	b.width, b.height = float64(w), float64(h)
	b.applyBackdrop()
	b.rebuild()
	return b, nil
}

// Config returns the configuration currently rendered.
func (b *Bounce) Config() schema.LavaLampConfig { return b.cfg }

// Bodies returns a copy of the arena.
func (b *Bounce) Bodies() []Body {
	out := make([]Body, len(b.bodies))
	copy(out, b.bodies)
	return out
}

// Resize changes the container. Bodies keep their state and are pulled
// back inside on the next tick.
func (b *Bounce) Resize(w, h int) {
	b.width, b.height = float64(w), float64(h)
	b.canvas.SetSize(w, h)
}

// UpdateConfig replaces the configuration. A blob count change rebuilds
// the arena and its sprites, a color change only the sprites; speed and
// background apply without touching either.
func (b *Bounce) UpdateConfig(cfg schema.LavaLampConfig) {
	prev := b.cfg
	b.cfg = schema.Clone(cfg).(schema.LavaLampConfig)
	b.applyBackdrop()
	switch {
	case len(b.bodies) != b.count():
		b.rebuild()
	case !slices.Equal(prev.Colors, b.cfg.Colors):
		b.respawnSprites()
	}
}

// Start schedules the frame loop on s.
func (b *Bounce) Start(s *frame.Scheduler) {
	b.ensureSprites()
	b.loop.Start(s, func(time.Duration) { b.Step() })
}

// Stop cancels the frame loop.
func (b *Bounce) Stop() { b.loop.Stop() }

// Running reports whether frames are scheduled.
func (b *Bounce) Running() bool { return b.loop.Running() }

// Release frees the sprites. Bodies are kept; a later Start or Step
// recreates their sprites.
func (b *Bounce) Release() {
	b.canvas.ReleaseSprites()
	b.handles = nil
}

func (b *Bounce) ensureSprites() {
	if len(b.handles) != len(b.bodies) {
		b.respawnSprites()
	}
}

func (b *Bounce) count() int {
	if b.cfg.BlobCount < 0 {
		return 0
	}
	return b.cfg.BlobCount
}

func (b *Bounce) bounds() (float64, float64) {
	w, h := b.width, b.height
	if w <= 0 {
		w = config.DefaultViewportWidth
	}
	if h <= 0 {
		h = config.DefaultViewportHeight
	}
	return w, h
}

func (b *Bounce) applyBackdrop() {
	if palette.IsTransparent(b.cfg.BackgroundColor) {
		b.canvas.SetBackdrop(color.NRGBA{})
		return
	}
	b.canvas.SetBackdrop(palette.Resolve(b.cfg.BackgroundColor, fallbackBackdrop))
}

func (b *Bounce) rebuild() {
	w, h := b.bounds()
	b.bodies = make([]Body, b.count())
	for i := range b.bodies {
		size := math.Min(w, h) * (0.15 + b.rng.Float64()*0.25)
		b.bodies[i] = Body{
			X:    b.rng.Float64() * (w - size),
			Y:    b.rng.Float64() * (h - size),
			VX:   (b.rng.Float64() - 0.5) * 2,
			VY:   (b.rng.Float64() - 0.5) * 2,
			Size: size,
		}
	}
	b.respawnSprites()
}

func (b *Bounce) respawnSprites() {
	b.canvas.ReleaseSprites()
	colors := resolveColors(b.cfg.Colors)
	b.handles = make([]surface.Sprite, len(b.bodies))
	for i, body := range b.bodies {
		b.handles[i] = b.canvas.NewSprite(float32(body.Size), colors[i%len(colors)])
		b.handles[i].Translate(body.X, body.Y)
	}
}

// Step moves every body and its sprite. It allocates nothing unless the
// sprites were released.
func (b *Bounce) Step() {
	b.ensureSprites()
	w, h := b.bounds()
	speed := b.cfg.Speed
	for i := range b.bodies {
		body := &b.bodies[i]
		body.X += body.VX * speed
		body.Y += body.VY * speed

		if body.X <= 0 {
			body.X = 0
			body.VX = -body.VX
		} else if body.X+body.Size >= w {
			body.X = w - body.Size
			body.VX = -body.VX
		}
		if body.Y <= 0 {
			body.Y = 0
			body.VY = -body.VY
		} else if body.Y+body.Size >= h {
			body.Y = h - body.Size
			body.VY = -body.VY
		}

		b.handles[i].Translate(body.X, body.Y)
	}
}
