package sandbox

import (
	"github.com/iburimskiy/backdrop/internal/effects/waves"
	"github.com/iburimskiy/backdrop/internal/schema"
)

// Section is one full-width band of the site page with its background.
type Section struct {
	ID     string
	Title  string
	Kind   schema.Kind
	Config schema.Config
	// Height is the band height in viewport heights.
	Height float64
}

// Sections returns the site page, top to bottom, with fixed instance ids
// so live edits survive a remount.
func Sections() []Section {
	return []Section{
		{
			ID: "hero-mesh", Title: "Hero", Kind: schema.GradientMesh, Height: 1,
			Config: schema.GradientMeshConfig{
				BackgroundColor: "transparent",
				AnimationSpeed:  15,
				Items: []schema.MeshItem{
					{Color: "#fbbf24", Top: "20%", Left: "80%", Width: "30vw", Height: "30vw", Opacity: 0.2, AnimationDelay: "0s", AnimationDuration: "15s"},
					{Color: "#d97706", Top: "70%", Left: "10%", Width: "25vw", Height: "25vw", Opacity: 0.15, AnimationDelay: "4s", AnimationDuration: "12s"},
				},
			},
		},
		{
			ID: "features-grid", Title: "Services", Kind: schema.RetroGrid, Height: 1,
			Config: schema.GridConfig{GridColor: "#451a03", BackgroundColor: "#000000", AnimationSpeed: 5},
		},
		{
			ID: "showcase-shapes", Title: "Showcase", Kind: schema.FloatingShapes, Height: 1,
			Config: schema.ShapeConfig{
				BackgroundColor: "#0f172a",
				ShapeCount:      6,
				Colors:          []string{"#38bdf8", "#818cf8", "#c084fc", "#2dd4bf"},
			},
		},
		{
			ID: "divider-waves", Title: "Process", Kind: schema.SineWaves, Height: 0.75,
			Config: schema.WaveConfig{
				ColorStart: "#1e1b4b", ColorEnd: "#312e81", WaveColor: "rgba(129, 140, 248, 0.3)",
				Speed: 1, Amplitude: 50, Parallax: 0.5,
			},
		},
		{
			ID: "network-particles", Title: "Community", Kind: schema.ParticleNetwork, Height: 1,
			Config: func() schema.Config {
				cfg, _ := schema.Default(schema.ParticleNetwork)
				c := cfg.(schema.ParticleConfig)
				c.BackgroundColor = "#020617"
				return c
			}(),
		},
		{
			ID: "footer-lava", Title: "Footer", Kind: schema.LavaLamp, Height: 0.8,
			Config: schema.LavaLampConfig{
				BackgroundColor: "#111",
				Colors:          []string{"#78350f", "#92400e", "#b45309"},
				Speed:           0.3,
				BlobCount:       6,
				Motion:          schema.MotionBounce,
			},
		},
	}
}

// Site lays the sections out vertically and tracks the scroll position.
type Site struct {
	Sections []Section
	tops     []float64
	total    float64
	viewW    float64
	viewH    float64
	scroll   float64
}

func NewSite() *Site {
	s := &Site{Sections: Sections()}
	s.Layout(0, 0)
	return s
}

// Layout recomputes section positions for a vw×vh viewport, keeping the
// scroll position in range.
func (s *Site) Layout(vw, vh float64) {
	s.viewW, s.viewH = vw, vh
	s.tops = s.tops[:0]
	y := 0.0
	for _, sec := range s.Sections {
		s.tops = append(s.tops, y)
		y += sec.Height * vh
	}
	s.total = y
	s.ScrollBy(0)
}

// ScrollBy moves the page by dy pixels, clamped to the page.
func (s *Site) ScrollBy(dy float64) {
	s.scroll = max(0, min(s.scroll+dy, s.total-s.viewH))
}

func (s *Site) Scroll() float64 { return s.scroll }

// Bounds returns section i's rectangle in viewport coordinates.
func (s *Site) Bounds(i int) (x, y, w, h float64) {
	return 0, s.tops[i] - s.scroll, s.viewW, s.Sections[i].Height * s.viewH
}

// Visible reports whether any part of section i is on screen.
func (s *Site) Visible(i int) bool {
	_, y, _, h := s.Bounds(i)
	return y+h > 0 && y < s.viewH
}

// Tracker returns the parallax placement source for section i.
func (s *Site) Tracker(i int) func() waves.Placement {
	return func() waves.Placement {
		_, y, _, _ := s.Bounds(i)
		return waves.Placement{Top: y, Viewport: s.viewH}
	}
}
