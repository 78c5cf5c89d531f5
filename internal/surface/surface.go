// Package surface defines the drawing target effect engines render into,
// with an ebiten-backed implementation for the window and an in-memory
// recorder for tests.
package surface

import (
	"errors"
	"image/color"
)

// ErrNoSurface is returned by engine constructors given no canvas.
// Rendering is impossible without one, so there is no fallback.
var ErrNoSurface = errors.New("surface: drawing surface unavailable")

// Point is a vertex in surface pixels.
type Point struct {
	X, Y float32
}

// Direction selects the axis of a two-stop gradient.
type Direction int

const (
	Vertical Direction = iota
	Diagonal
)

// Canvas is an immediate-mode 2D drawing surface with its own pixel size.
type Canvas interface {
	Size() (w, h int)
	// SetSize changes the internal pixel dimensions, discarding content.
	SetSize(w, h int)
	Clear()
	FillRect(x, y, w, h float32, c color.Color)
	FillCircle(cx, cy, r float32, c color.Color)
	FillRoundRect(x, y, w, h, radius float32, c color.Color)
	StrokeLine(x0, y0, x1, y1, width float32, c color.Color)
	StrokePolyline(pts []Point, width float32, c color.Color)
	FillGradient(x, y, w, h float32, from, to color.Color, dir Direction)
	// FillGlow draws a soft radial blob fading out at radius r.
	FillGlow(cx, cy, r float32, c color.Color)
}

// Sprite is a retained drawing resource positioned by translation only.
type Sprite interface {
	Translate(x, y float64)
}

// Retained is a canvas that can also own persistent sprites. While any
// sprite exists, each presented frame is the backdrop color with the
// sprites composited over it at their latest translation.
type Retained interface {
	Canvas
	NewSprite(diameter float32, c color.Color) Sprite
	SetBackdrop(c color.Color)
	ReleaseSprites()
}
