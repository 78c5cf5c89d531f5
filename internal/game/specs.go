package game

import (
	"math"

	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/sandbox"
)

// sandboxSpecs stacks the layers inside the viewport frame. Hidden layers
// stay mounted so their live edits survive toggling.
func sandboxSpecs(layers []sandbox.Layer, mode sandbox.Mode, w, h int) []Spec {
	r := sandbox.Frame(mode, w, h)
	specs := make([]Spec, 0, len(layers))
	for _, l := range layers {
		specs = append(specs, Spec{
			ID:     l.ID,
			Kind:   l.Kind,
			Config: l.Config,
			Rect:   r,
			Active: l.Visible,
		})
	}
	return specs
}

// siteSpecs places each page section below the top bar at the current
// scroll. Sections scrolled out of view are paused.
func siteSpecs(site *sandbox.Site, w, h int) []Spec {
	vh := max(0, h-config.TopBarHeight)
	site.Layout(float64(w), float64(vh))
	specs := make([]Spec, 0, len(site.Sections))
	for i, sec := range site.Sections {
		_, y, sw, sh := site.Bounds(i)
		specs = append(specs, Spec{
			ID:     sec.ID,
			Kind:   sec.Kind,
			Config: sec.Config,
			Rect: sandbox.Rect{
				X: 0,
				Y: config.TopBarHeight + int(math.Round(y)),
				W: int(sw),
				H: int(math.Round(sh)),
			},
			Active:  site.Visible(i),
			Tracker: site.Tracker(i),
		})
	}
	return specs
}

const (
	chipWidth = 104
	chipGap   = 6
)

// chips lays out n layer chips in the top bar after the audio button,
// dropping the ones that do not fit in w.
func chips(n, w int) []sandbox.Rect {
	x := config.ButtonX + config.ButtonWidth + 2*chipGap
	out := make([]sandbox.Rect, 0, n)
	for range n {
		if x+chipWidth > w {
			break
		}
		out = append(out, sandbox.Rect{X: x, Y: config.ButtonY, W: chipWidth, H: config.ButtonHeight})
		x += chipWidth + chipGap
	}
	return out
}
