// Package mesh renders the Gradient Mesh background: a base color under
// large blurred blobs drifting on the blob keyframe loop.
package mesh

import (
	"image/color"
	"time"

	"github.com/iburimskiy/backdrop/internal/effects/declarative"
	"github.com/iburimskiy/backdrop/internal/effects/loop"
	"github.com/iburimskiy/backdrop/internal/palette"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

const (
	defaultDuration = 7 * time.Second
	// blur-3xl spreads a blob this far past its box.
	blurRadius = 64
)

var defaultItem = schema.MeshItem{
	Color: "#a855f7", Top: "0", Left: "0", Width: "20rem", Height: "20rem",
	AnimationDelay: "0s", AnimationDuration: "7s", Opacity: 0.7,
}

// Blob is one placed mesh blob.
type Blob struct {
	X, Y, W, H float64
	Color      color.NRGBA
	Opacity    float64
	Delay      time.Duration
	Duration   time.Duration
}

// Engine is the gradient mesh lifecycle.
type Engine = declarative.Engine[schema.GradientMeshConfig]

// New builds a mesh engine. A nil cfg uses the stock defaults.
func New(c surface.Canvas, cfg *schema.GradientMeshConfig) (*Engine, error) {
	def, _ := schema.Default(schema.GradientMesh)
	use := def.(schema.GradientMeshConfig)
	if cfg != nil {
		use = *cfg
	}
	return declarative.New(c, use, Render)
}

// Items returns the blob descriptors to render: the configured items, else
// a layout built from the legacy blobColors list, else one default blob.
func Items(cfg schema.GradientMeshConfig) []schema.MeshItem {
	if len(cfg.Items) > 0 {
		return cfg.Items
	}
	if bc := cfg.BlobColors; len(bc) > 0 {
		pick := func(i, alt int) string {
			if i < len(bc) {
				return bc[i]
			}
			if alt < len(bc) {
				return bc[alt]
			}
			return bc[0]
		}
		return []schema.MeshItem{
			{Color: pick(0, 0), Top: "0", Left: "-1rem", Width: "18rem", Height: "18rem", AnimationDelay: "0s", AnimationDuration: "7s", Opacity: 0.7},
			{Color: pick(1, 0), Top: "0", Left: "unset", Right: "-1rem", Width: "18rem", Height: "18rem", AnimationDelay: "2s", AnimationDuration: "7s", Opacity: 0.7},
			{Color: pick(2, 0), Top: "100%", Left: "20%", Width: "18rem", Height: "18rem", AnimationDelay: "4s", AnimationDuration: "7s", Opacity: 0.7},
			{Color: pick(3, 1), Top: "60%", Left: "60%", Width: "24rem", Height: "24rem", AnimationDelay: "5s", AnimationDuration: "10s", Opacity: 0.6},
		}
	}
	return []schema.MeshItem{defaultItem}
}

// Layout places every blob in a w×h surface. Items with an unreadable
// color or length are skipped. A positive global animationSpeed overrides
// each item's own duration.
func Layout(cfg schema.GradientMeshConfig, w, h float64) []Blob {
	vp := loop.Viewport{W: w, H: h}
	items := Items(cfg)
	out := make([]Blob, 0, len(items))
	for _, it := range items {
		c, err := palette.Parse(it.Color)
		if err != nil {
			continue
		}
		box, err := boxOf(it)
		if err != nil {
			continue
		}
		x, y, bw, bh := box.Resolve(w, h, vp)
		delay, _ := loop.ParseDuration(it.AnimationDelay)
		dur := defaultDuration
		if cfg.AnimationSpeed > 0 {
			dur = loop.Seconds(cfg.AnimationSpeed)
		} else if d, err := loop.ParseDuration(it.AnimationDuration); err == nil && d > 0 {
			dur = d
		}
		out = append(out, Blob{
			X: x, Y: y, W: bw, H: bh,
			Color:    c,
			Opacity:  it.Opacity,
			Delay:    delay,
			Duration: dur,
		})
	}
	return out
}

func boxOf(it schema.MeshItem) (loop.Box, error) {
	var b loop.Box
	for _, f := range []struct {
		dst *loop.Length
		src string
	}{
		{&b.Top, it.Top}, {&b.Left, it.Left}, {&b.Right, it.Right}, {&b.Bottom, it.Bottom},
		{&b.Width, it.Width}, {&b.Height, it.Height},
	} {
		l, err := loop.ParseLength(f.src)
		if err != nil {
			return loop.Box{}, err
		}
		*f.dst = l
	}
	return b, nil
}

// Render draws the mesh at the given animation time.
func Render(c surface.Canvas, cfg schema.GradientMeshConfig, w, h float64, elapsed time.Duration) {
	if !palette.IsTransparent(cfg.BackgroundColor) {
		if bg, err := palette.Parse(cfg.BackgroundColor); err == nil {
			c.FillRect(0, 0, float32(w), float32(h), bg)
		}
	}
	for _, b := range Layout(cfg, w, h) {
		kf := loop.Blob.Sample(elapsed, b.Duration, b.Delay, loop.Ease)
		cx := b.X + b.W/2 + kf.X
		cy := b.Y + b.H/2 + kf.Y
		r := max(b.W, b.H)/2*kf.Scale + blurRadius/2
		c.FillGlow(float32(cx), float32(cy), float32(r), palette.WithAlpha(b.Color, b.Opacity))
	}
}
