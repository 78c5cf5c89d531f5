package loop

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrBadLength = errors.New("loop: unsupported length")

// RemPx is the root font size rem lengths are measured in.
const RemPx = 16

// Unit of a Length.
type Unit int

const (
	Px Unit = iota
	Percent
	VW
	VH
	Rem
)

// Length is a parsed CSS length. The zero Length is unset.
type Length struct {
	Value float64
	Unit  Unit
	Set   bool
}

// PxLen returns a pixel length.
func PxLen(v float64) Length { return Length{Value: v, Unit: Px, Set: true} }

// ParseLength accepts px, %, vw, vh and rem suffixes and bare numbers.
// An empty string or "unset" yields an unset length.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "unset" || s == "auto" {
		return Length{}, nil
	}
	unit := Px
	num := s
	for _, suf := range []struct {
		text string
		unit Unit
	}{{"px", Px}, {"%", Percent}, {"vw", VW}, {"vh", VH}, {"rem", Rem}} {
		if strings.HasSuffix(s, suf.text) {
			unit = suf.unit
			num = strings.TrimSuffix(s, suf.text)
			break
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return Length{}, fmt.Errorf("%w: %q", ErrBadLength, s)
	}
	return Length{Value: v, Unit: unit, Set: true}, nil
}

// Resolve converts l to pixels. ref is the containing block dimension
// percentages refer to; vw and vh refer to the viewport.
func (l Length) Resolve(ref float64, vp Viewport) float64 {
	switch l.Unit {
	case Percent:
		return l.Value / 100 * ref
	case VW:
		return l.Value / 100 * vp.W
	case VH:
		return l.Value / 100 * vp.H
	case Rem:
		return l.Value * RemPx
	default:
		return l.Value
	}
}

// Viewport is the reference for vw and vh.
type Viewport struct {
	W, H float64
}

// Box positions an absolutely placed element inside its container.
// Left wins over Right and Top over Bottom when both are set.
type Box struct {
	Top, Left, Right, Bottom Length
	Width, Height            Length
}

// Resolve returns the element rectangle inside a w×h container.
func (b Box) Resolve(w, h float64, vp Viewport) (x, y, bw, bh float64) {
	bw = b.Width.Resolve(w, vp)
	bh = b.Height.Resolve(h, vp)
	switch {
	case b.Left.Set:
		x = b.Left.Resolve(w, vp)
	case b.Right.Set:
		x = w - b.Right.Resolve(w, vp) - bw
	}
	switch {
	case b.Top.Set:
		y = b.Top.Resolve(h, vp)
	case b.Bottom.Set:
		y = h - b.Bottom.Resolve(h, vp) - bh
	}
	return x, y, bw, bh
}

// ParseDuration accepts CSS times such as "4s", "500ms", "1.5s" and "0".
// An empty string is zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("loop: duration %q: %w", s, err)
	}
	return d, nil
}

// Seconds converts a seconds count to a duration.
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
