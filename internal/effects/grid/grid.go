// Package grid renders the Retro Grid background: a perspective floor of
// square cells scrolling toward the viewer under a hazy sky.
package grid

import (
	"image/color"
	"math"
	"time"

	"github.com/iburimskiy/backdrop/internal/effects/declarative"
	"github.com/iburimskiy/backdrop/internal/effects/loop"
	"github.com/iburimskiy/backdrop/internal/palette"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

const (
	// Cell is the grid pitch on the floor plane.
	Cell = 40

	perspective = 500
	tilt        = 60 * math.Pi / 180
	// Vertical lines are split so their fade can vary along them.
	segments = 8
)

var (
	fallbackGrid = color.NRGBA{0x44, 0x44, 0x44, 0xff}
	fallbackSky  = color.NRGBA{0x0a, 0x0a, 0x0a, 0xff}
	haze         = color.NRGBA{0x58, 0x1c, 0x87, 77}
	black        = color.NRGBA{0, 0, 0, 0xff}
)

// Engine is the retro grid lifecycle.
type Engine = declarative.Engine[schema.GridConfig]

// New builds a grid engine. A nil cfg uses the stock defaults.
func New(c surface.Canvas, cfg *schema.GridConfig) (*Engine, error) {
	def, _ := schema.Default(schema.RetroGrid)
	use := def.(schema.GridConfig)
	if cfg != nil {
		use = *cfg
	}
	return declarative.New(c, use, Render)
}

// Period is the time the floor takes to scroll by one cell.
func Period(cfg schema.GridConfig) time.Duration {
	if cfg.AnimationSpeed <= 0 {
		return time.Second
	}
	return loop.Seconds(cfg.AnimationSpeed)
}

// Offset is the floor scroll within the current cell, in [0, Cell).
func Offset(cfg schema.GridConfig, elapsed time.Duration) float64 {
	return loop.Progress(elapsed, Period(cfg), 0) * Cell
}

// plane projects floor coordinates to the surface. The floor spans the
// surface area tilted back about its bottom edge, viewed from the center.
type plane struct {
	w, h float64
}

func (p plane) project(x, y float64) (float64, float64) {
	dy := y - p.h
	z := dy * math.Sin(tilt)
	scale := perspective / (perspective - z)
	cx, cy := p.w/2, p.h/2
	yy := p.h + dy*math.Cos(tilt)
	return cx + (x-cx)*scale, cy + (yy-cy)*scale
}

// fade is the mask along the floor: clear at the far edge, solid at the
// near edge.
func (p plane) fade(y float64) float64 {
	return math.Max(0, math.Min(1, (y/p.h-0.1)/0.9))
}

// Render draws the grid at the given animation time.
func Render(c surface.Canvas, cfg schema.GridConfig, w, h float64, elapsed time.Duration) {
	if w <= 0 || h <= 0 {
		return
	}
	opaque := !palette.IsTransparent(cfg.BackgroundColor)
	if opaque {
		c.FillRect(0, 0, float32(w), float32(h), palette.Resolve(cfg.BackgroundColor, fallbackSky))
		c.FillGradient(0, 0, float32(w), float32(h*0.6), haze, palette.WithAlpha(haze, 0), surface.Vertical)
	}

	line := palette.Resolve(cfg.GridColor, fallbackGrid)
	p := plane{w: w, h: h}
	off := Offset(cfg, elapsed)

	for y := off; y <= h; y += Cell {
		col := palette.WithAlpha(line, p.fade(y))
		if col.A == 0 {
			continue
		}
		x0, y0 := p.project(-w/2, y)
		x1, y1 := p.project(w*1.5, y)
		c.StrokeLine(float32(x0), float32(y0), float32(x1), float32(y1), 1, col)
	}
	for x := -w / 2; x <= w*1.5; x += Cell {
		for s := 0; s < segments; s++ {
			ya := h * float64(s) / segments
			yb := h * float64(s+1) / segments
			col := palette.WithAlpha(line, p.fade((ya+yb)/2))
			if col.A == 0 {
				continue
			}
			x0, y0 := p.project(x, ya)
			x1, y1 := p.project(x, yb)
			c.StrokeLine(float32(x0), float32(y0), float32(x1), float32(y1), 1, col)
		}
	}

	if opaque {
		mid := h * 0.75
		c.FillGradient(0, float32(h/2), float32(w), float32(mid-h/2), palette.WithAlpha(black, 0), palette.WithAlpha(black, 0.8), surface.Vertical)
		c.FillGradient(0, float32(mid), float32(w), float32(h-mid), palette.WithAlpha(black, 0.8), black, surface.Vertical)
	}
}
