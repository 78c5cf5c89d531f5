// Package particles implements the Particle Network effect: drifting points
// that push away from the pointer and link to their neighbours with lines
// that fade with distance.
package particles

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

// Induced velocity components below this magnitude snap to zero.
const inducedEpsilon = 0.01

const lineWidth = 0.5

var (
	fallbackDot  = color.NRGBA{100, 200, 255, 179}
	fallbackLine = color.NRGBA{100, 200, 255, 51}
)

// Particle is one simulated point. Base velocity is the constant ambient
// drift; induced velocity is the decaying response to the pointer.
type Particle struct {
	X, Y                 float64
	BaseVX, BaseVY       float64
	InducedVX, InducedVY float64
	Size                 float64
}

// Option customises an Engine.
type Option func(*Engine)

// WithRand sets the random source used to place particles.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// Engine owns the particle state for one surface.
type Engine struct {
	canvas    surface.Canvas
	cfg       schema.ParticleConfig
	particles []Particle
	width     float64
	height    float64
	mouseX    float64
	mouseY    float64
	pulse     float64
	dot       color.NRGBA
	line      color.NRGBA
	rng       *rand.Rand
	loop      frame.Loop
}

// New builds an engine drawing into c. A nil cfg uses the stock defaults.
func New(c surface.Canvas, cfg *schema.ParticleConfig, opts ...Option) (*Engine, error) {
	if c == nil {
		return nil, surface.ErrNoSurface
	}
	def, _ := schema.Default(schema.ParticleNetwork)
	e := &Engine{
		canvas: c,
		cfg:    def.(schema.ParticleConfig),
		mouseX: -9999,
		mouseY: -9999,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg != nil {
		e.cfg = *cfg
	}
	w, h := c.Size()
	e.width, e.height = float64(w), float64(h)
	e.refreshColors()
	e.initParticles()
	return e, nil
}

// Config returns the configuration currently rendered.
func (e *Engine) Config() schema.ParticleConfig { return e.cfg }

// Resize sets the surface dimensions and re-seeds the particles.
func (e *Engine) Resize(w, h int) {
	e.width, e.height = float64(w), float64(h)
	e.canvas.SetSize(w, h)
	e.initParticles()
}

// UpdateConfig replaces the configuration. Only a change of particle count
// reinitializes the simulation; colors, speeds, distances and flags apply
// from the next frame on the existing particles.
func (e *Engine) UpdateConfig(cfg schema.ParticleConfig) {
	prev := e.cfg
	e.cfg = cfg
	e.refreshColors()
	if cfg.ParticleCount != prev.ParticleCount {
		e.initParticles()
		return
	}
	if cfg.BaseSpeed != prev.BaseSpeed {
		e.rescale(prev.BaseSpeed, cfg.BaseSpeed)
	}
}

// rescale changes ambient drift to a new base speed, keeping positions and
// directions. From a zero speed there is no direction to keep, so drift is
// drawn afresh.
func (e *Engine) rescale(from, to float64) {
	for i := range e.particles {
		p := &e.particles[i]
		if from == 0 {
			p.BaseVX = (e.rng.Float64() - 0.5) * to
			p.BaseVY = (e.rng.Float64() - 0.5) * to
			continue
		}
		p.BaseVX *= to / from
		p.BaseVY *= to / from
	}
}

// UpdateMouse records the pointer position in surface coordinates. Only
// the latest position before a frame is seen by it.
func (e *Engine) UpdateMouse(x, y float64) {
	e.mouseX, e.mouseY = x, y
}

// Pulse scales dot size by 1+level until the next call.
func (e *Engine) Pulse(level float64) {
	e.pulse = level
}

// Start schedules the frame loop on s.
func (e *Engine) Start(s *frame.Scheduler) {
	e.loop.Start(s, func(time.Duration) { e.Step() })
}

// Stop cancels the frame loop.
func (e *Engine) Stop() { e.loop.Stop() }

// Running reports whether frames are scheduled.
func (e *Engine) Running() bool { return e.loop.Running() }

// Particles returns a copy of the current particle state.
func (e *Engine) Particles() []Particle {
	out := make([]Particle, len(e.particles))
	copy(out, e.particles)
	return out
}

func (e *Engine) refreshColors() {
	e.dot = palette.Resolve(e.cfg.ParticleColor, fallbackDot)
	e.line = palette.Resolve(e.cfg.LineColor, fallbackLine)
}

// bounds falls back to a viewport-sized space while the surface has no
// real dimensions yet.
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

func (e *Engine) initParticles() {
	n := e.cfg.ParticleCount
	if n < 0 {
		n = 0
	}
	w, h := e.bounds()
	speed := e.cfg.BaseSpeed
	e.particles = make([]Particle, n)
	for i := range e.particles {
		e.particles[i] = Particle{
			X:      e.rng.Float64() * w,
			Y:      e.rng.Float64() * h,
			BaseVX: (e.rng.Float64() - 0.5) * speed,
			BaseVY: (e.rng.Float64() - 0.5) * speed,
			Size:   e.rng.Float64()*2 + 1,
		}
	}
}

// Step advances and draws one frame.
func (e *Engine) Step() {
	w, h := e.bounds()
	e.canvas.Clear()

	cfg := &e.cfg
	scale := 1 + e.pulse
	for i := range e.particles {
		p := &e.particles[i]

		p.X += p.BaseVX + p.InducedVX
		p.Y += p.BaseVY + p.InducedVY

		p.InducedVX *= cfg.Resistance
		p.InducedVY *= cfg.Resistance
		if math.Abs(p.InducedVX) < inducedEpsilon {
			p.InducedVX = 0
		}
		if math.Abs(p.InducedVY) < inducedEpsilon {
			p.InducedVY = 0
		}

		if cfg.WrapAround {
			wrap(p, w, h)
		} else {
			bounce(p, w, h)
		}

		if cfg.EnableMouseInteraction && cfg.MouseDistance > 0 {
			dx := e.mouseX - p.X
			dy := e.mouseY - p.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist > 0 && dist < cfg.MouseDistance {
				power := (cfg.MouseDistance - dist) / cfg.MouseDistance * cfg.InteractionStrength
				p.InducedVX -= dx / dist * power
				p.InducedVY -= dy / dist * power
			}
		}

		e.canvas.FillCircle(float32(p.X), float32(p.Y), float32(p.Size*scale), e.dot)

		for j := i + 1; j < len(e.particles); j++ {
			q := &e.particles[j]
			dx := p.X - q.X
			dy := p.Y - q.Y
			if math.Abs(dx) > cfg.ConnectionDistance || math.Abs(dy) > cfg.ConnectionDistance {
				continue
			}
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist >= cfg.ConnectionDistance {
				continue
			}
			ratio := dist / cfg.ConnectionDistance
			e.canvas.StrokeLine(float32(p.X), float32(p.Y), float32(q.X), float32(q.Y), lineWidth,
				palette.WithAlpha(e.line, 1-ratio*ratio))
		}
	}
}

func wrap(p *Particle, w, h float64) {
	if p.X < 0 {
		p.X = w
	} else if p.X > w {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = h
	} else if p.Y > h {
		p.Y = 0
	}
}

func bounce(p *Particle, w, h float64) {
	if p.X < 0 || p.X > w {
		p.BaseVX = -p.BaseVX
		p.InducedVX = -p.InducedVX
		p.X = math.Max(0, math.Min(w, p.X))
	}
	if p.Y < 0 || p.Y > h {
		p.BaseVY = -p.BaseVY
		p.InducedVY = -p.InducedVY
		p.Y = math.Max(0, math.Min(h, p.Y))
	}
}
