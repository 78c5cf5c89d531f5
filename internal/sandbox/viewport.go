package sandbox

import "github.com/iburimskiy/backdrop/internal/config"

// Mode is the container the layers are previewed in.
type Mode int

const (
	Fullscreen Mode = iota
	Card
	Button
)

var modeNames = [...]string{"Full Screen", "Card", "Button"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "Unknown"
	}
	return modeNames[m]
}

// Next cycles fullscreen → card → button → fullscreen.
func (m Mode) Next() Mode { return (m + 1) % Mode(len(modeNames)) }

// Rect is a screen rectangle in pixels.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// Frame returns the stage rectangle for mode inside a w×h window. The
// stage sits below the viewport bar; card and button stages are centered
// in the remaining area.
func Frame(mode Mode, w, h int) Rect {
	area := Rect{X: 0, Y: config.TopBarHeight, W: w, H: max(0, h-config.TopBarHeight)}
	var sw, sh int
	switch mode {
	case Card:
		sw, sh = config.CardWidth, config.CardHeight
	case Button:
		sw, sh = config.ButtonStageW, config.ButtonStageH
	default:
		return area
	}
	sw, sh = min(sw, area.W), min(sh, area.H)
	return Rect{
		X: area.X + (area.W-sw)/2,
		Y: area.Y + (area.H-sh)/2,
		W: sw,
		H: sh,
	}
}

// Caption is the overlay text shown on the stage in each mode.
func Caption(mode Mode) string {
	switch mode {
	case Card:
		return "Glass Card"
	case Button:
		return "HOVER ME"
	}
	return "Content Overlay"
}
