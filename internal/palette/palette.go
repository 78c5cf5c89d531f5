// Package palette parses and formats the color strings used in effect
// configurations: #rgb, #rrggbb, rgb(), rgba(), the literal "transparent",
// and the handful of Tailwind background classes the stock defaults use.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Transparent is the literal accepted wherever a color is.
const Transparent = "transparent"

var ErrInvalidColor = errors.New("palette: invalid color")

var rgbPattern = regexp.MustCompile(`^rgba?\(\s*([\d.]+)\s*,\s*([\d.]+)\s*,\s*([\d.]+)\s*(?:,\s*([\d.]+)\s*)?\)$`)

// Tailwind classes referenced by the built-in defaults.
var classes = map[string]string{
	"bg-emerald-400": "#34d399",
	"bg-emerald-600": "#059669",
	"bg-teal-300":    "#5eead4",
	"bg-teal-500":    "#14b8a6",
	"bg-cyan-300":    "#67e8f9",
	"bg-slate-50":    "#f8fafc",
	"bg-slate-900":   "#0f172a",
	"bg-slate-950":   "#020617",
	"bg-purple-500":  "#a855f7",
	"bg-black":       "#000000",
	"bg-white":       "#ffffff",
}

// Parse converts a color string into a non-premultiplied color.
func Parse(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == Transparent:
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "#"):
		r, g, b, err := parseHex(s)
		if err != nil {
			return color.NRGBA{}, err
		}
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	case strings.HasPrefix(s, "rgb"):
		r, g, b, a, err := parseRGB(s)
		if err != nil {
			return color.NRGBA{}, err
		}
		return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}, nil
	}
	if hex, ok := classes[s]; ok {
		return Parse(hex)
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// Valid reports whether s parses as a color.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Resolve parses s, returning fallback when it is not a color.
func Resolve(s string, fallback color.NRGBA) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		return fallback
	}
	return c
}

// IsTransparent reports whether s is empty or the transparent literal.
func IsTransparent(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, Transparent)
}

// RGBAFromHex formats hex with the given alpha as an rgba() string.
func RGBAFromHex(hex string, alpha float64) (string, error) {
	r, g, b, err := parseHex(strings.ToLower(strings.TrimSpace(hex)))
	if err != nil {
		return "", err
	}
	return formatRGBA(r, g, b, clamp01(alpha)), nil
}

// HexFromRGBA splits any supported color string into #rrggbb and alpha.
func HexFromRGBA(s string) (string, float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == Transparent:
		return "#000000", 0, nil
	case strings.HasPrefix(s, "#"):
		r, g, b, err := parseHex(s)
		if err != nil {
			return "", 0, err
		}
		return formatHex(r, g, b), 1, nil
	case strings.HasPrefix(s, "rgb"):
		r, g, b, a, err := parseRGB(s)
		if err != nil {
			return "", 0, err
		}
		return formatHex(r, g, b), a, nil
	}
	c, err := Parse(s)
	if err != nil {
		return "", 0, err
	}
	return formatHex(c.R, c.G, c.B), float64(c.A) / 255, nil
}

// ParseHexAlpha is the lenient form used by editors: anything unreadable
// becomes opaque black.
func ParseHexAlpha(s string) (string, float64) {
	if strings.TrimSpace(s) == "" {
		return "#000000", 1
	}
	hex, a, err := HexFromRGBA(s)
	if err != nil {
		return "#000000", 1
	}
	return hex, a
}

// FromColor formats c as an rgba() string, or #rrggbb when opaque.
func FromColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return formatHex(n.R, n.G, n.B)
	}
	a := math.Round(float64(n.A)/255*100) / 100
	return formatRGBA(n.R, n.G, n.B, a)
}

// WithAlpha scales the opacity of c by factor.
func WithAlpha(c color.NRGBA, factor float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * clamp01(factor)))
	return c
}

func parseHex(s string) (uint8, uint8, uint8, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

func parseRGB(s string) (uint8, uint8, uint8, float64, error) {
	m := rgbPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil || v > 255 {
			return 0, 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		ch[i] = uint8(math.Round(v))
	}
	a := 1.0
	if m[4] != "" {
		v, err := strconv.ParseFloat(m[4], 64)
		if err != nil || v > 1 {
			return 0, 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		a = v
	}
	return ch[0], ch[1], ch[2], a, nil
}

func formatHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func formatRGBA(r, g, b uint8, a float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(a, 'f', -1, 64))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
