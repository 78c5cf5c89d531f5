// Package declarative runs backgrounds that keep no simulation state.
// Each frame is a pure function of the configuration, the surface size and
// the time since the engine first drew.
package declarative

import (
	"time"

	"github.com/iburimskiy/backdrop/internal/frame"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

// Render draws cfg into c for a w×h surface at the given animation time.
type Render[C schema.Config] func(c surface.Canvas, cfg C, w, h float64, elapsed time.Duration)

// Engine adapts a Render function to the engine lifecycle. A config
// change simply applies on the next frame.
type Engine[C schema.Config] struct {
	canvas  surface.Canvas
	cfg     C
	render  Render[C]
	width   int
	height  int
	origin  time.Duration
	started bool
	elapsed time.Duration
	loop    frame.Loop
}

// New builds an engine drawing cfg with render.
func New[C schema.Config](c surface.Canvas, cfg C, render Render[C]) (*Engine[C], error) {
	if c == nil {
		return nil, surface.ErrNoSurface
	}
	e := &Engine[C]{canvas: c, cfg: cfg, render: render}
	e.width, e.height = c.Size()
	return e, nil
}

// Config returns the configuration currently rendered.
func (e *Engine[C]) Config() C { return e.cfg }

// Elapsed returns the animation time of the last frame.
func (e *Engine[C]) Elapsed() time.Duration { return e.elapsed }

func (e *Engine[C]) Resize(w, h int) {
	e.width, e.height = w, h
	e.canvas.SetSize(w, h)
}

func (e *Engine[C]) UpdateConfig(cfg C) { e.cfg = cfg }

// Start schedules the frame loop on s. The animation clock keeps running
// across Stop and Start, as a looping CSS animation does.
func (e *Engine[C]) Start(s *frame.Scheduler) {
	e.loop.Start(s, e.Step)
}

func (e *Engine[C]) Stop() { e.loop.Stop() }

func (e *Engine[C]) Running() bool { return e.loop.Running() }

// Step draws the frame for scheduler time now.
func (e *Engine[C]) Step(now time.Duration) {
	if !e.started {
		e.origin = now
		e.started = true
	}
	e.elapsed = now - e.origin
	e.canvas.Clear()
	e.render(e.canvas, e.cfg, float64(e.width), float64(e.height), e.elapsed)
}
