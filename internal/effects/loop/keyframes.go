// Package loop evaluates infinitely repeating keyframe animations and the
// CSS-style lengths and durations the declarative backgrounds are
// configured with.
package loop

import (
	"math"
	"time"
)

// Keyframe is the transform at one point of a cycle. At is the offset in
// the cycle, from 0 to 1.
type Keyframe struct {
	At      float64
	X, Y    float64
	Scale   float64
	Opacity float64
}

// Identity is the untransformed state.
var Identity = Keyframe{Scale: 1, Opacity: 1}

// Track is a keyframe list ordered by At.
type Track []Keyframe

// Easing maps linear progress within a segment to eased progress.
type Easing func(t float64) float64

var (
	Linear    Easing = func(t float64) float64 { return t }
	Ease             = CubicBezier(0.25, 0.1, 0.25, 1)
	EaseInOut        = CubicBezier(0.42, 0, 0.58, 1)
)

// Blob drifts and breathes.
var Blob = Track{
	{At: 0, Scale: 1, Opacity: 1},
	{At: 0.33, X: 30, Y: -50, Scale: 1.1, Opacity: 1},
	{At: 0.66, X: -20, Y: 20, Scale: 0.9, Opacity: 1},
	{At: 1, Scale: 1, Opacity: 1},
}

// Float bobs up and back.
var Float = Track{
	{At: 0, Scale: 1, Opacity: 1},
	{At: 0.5, Y: -20, Scale: 1, Opacity: 1},
	{At: 1, Scale: 1, Opacity: 1},
}

// FloatPeriod is the cycle length of Float.
const FloatPeriod = 8 * time.Second

// Sample evaluates the track at elapsed. Before delay has passed, or with a
// non-positive duration, the first keyframe holds.
func (tr Track) Sample(elapsed, duration, delay time.Duration, ease Easing) Keyframe {
	if len(tr) == 0 {
		return Identity
	}
	if duration <= 0 || elapsed < delay || len(tr) == 1 {
		return tr[0]
	}
	if ease == nil {
		ease = Linear
	}
	p := math.Mod(float64(elapsed-delay)/float64(duration), 1)
	for i := 0; i < len(tr)-1; i++ {
		a, b := tr[i], tr[i+1]
		if p > b.At && i < len(tr)-2 {
			continue
		}
		span := b.At - a.At
		if span <= 0 {
			return b
		}
		t := ease(math.Max(0, math.Min(1, (p-a.At)/span)))
		return Keyframe{
			At:      p,
			X:       lerp(a.X, b.X, t),
			Y:       lerp(a.Y, b.Y, t),
			Scale:   lerp(a.Scale, b.Scale, t),
			Opacity: lerp(a.Opacity, b.Opacity, t),
		}
	}
	return tr[len(tr)-1]
}

// Progress returns the position within the current cycle, in [0, 1).
func Progress(elapsed, duration, delay time.Duration) float64 {
	if duration <= 0 || elapsed < delay {
		return 0
	}
	return math.Mod(float64(elapsed-delay)/float64(duration), 1)
}

// CubicBezier builds a CSS cubic-bezier timing function.
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		lo, hi := 0.0, 1.0
		s := t
		for range 40 {
			x := bezier(s, x1, x2)
			if math.Abs(x-t) < 1e-7 {
				break
			}
			if x < t {
				lo = s
			} else {
				hi = s
			}
			s = (lo + hi) / 2
		}
		return bezier(s, y1, y2)
	}
}

func bezier(s, p1, p2 float64) float64 {
	u := 1 - s
	return 3*u*u*s*p1 + 3*u*s*s*p2 + s*s*s
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
