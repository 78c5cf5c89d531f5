package panel

import (
	"image"

	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/schema"
)

// TargetKind says what a click on a Target does.
type TargetKind int

const (
	TargetTab TargetKind = iota
	TargetPrev
	TargetNext
	TargetSlider
	TargetToggle
	TargetCycle
	TargetSwatch
	TargetAlpha
	TargetArraySwatch
	TargetText
	TargetPaste
	TargetImport
	TargetExport
)

// Target is one clickable area of the panel.
type Target struct {
	Kind  TargetKind
	Key   string
	Index int
	Rect  image.Rectangle
	// Mode is the tab a TargetTab selects.
	Mode Mode
}

const (
	labelWidth = 130
	pad        = 8
	swatch     = 18
)

// Bounds returns the panel rectangle for a screen of w×h.
func Bounds(w, h int) image.Rectangle {
	x := w - config.PanelWidth - config.PanelMargin
	y := config.TopBarHeight + config.PanelMargin
	return image.Rect(x, y, x+config.PanelWidth, max(y+config.PanelHeader*3, h-config.PanelMargin))
}

// Layout places the panel controls inside bounds. scroll is the number of
// rows hidden above the visible area.
func Layout(bounds image.Rectangle, mode Mode, rows []Row, scroll int) []Target {
	x0, y0 := bounds.Min.X, bounds.Min.Y
	half := bounds.Dx() / 2
	ts := []Target{
		{Kind: TargetTab, Mode: Controls, Rect: image.Rect(x0, y0, x0+half, y0+config.PanelHeader)},
		{Kind: TargetTab, Mode: JSON, Rect: image.Rect(x0+half, y0, bounds.Max.X, y0+config.PanelHeader)},
	}
	y := y0 + config.PanelHeader
	ts = append(ts,
		Target{Kind: TargetPrev, Rect: image.Rect(x0, y, x0+config.PanelHeader, y+config.PanelHeader)},
		Target{Kind: TargetNext, Rect: image.Rect(bounds.Max.X-config.PanelHeader, y, bounds.Max.X, y+config.PanelHeader)},
	)
	y += config.PanelHeader

	if mode == JSON {
		w := (bounds.Dx() - 4*pad) / 3
		by := bounds.Max.Y - config.PanelHeader - pad
		for i, k := range []TargetKind{TargetPaste, TargetImport, TargetExport} {
			bx := x0 + pad + i*(w+pad)
			ts = append(ts, Target{Kind: k, Rect: image.Rect(bx, by, bx+w, by+config.PanelHeader)})
		}
		return ts
	}

	scroll = max(0, min(scroll, len(rows)-1))
	cx0 := x0 + labelWidth
	cx1 := bounds.Max.X - pad
	for _, r := range rows[scroll:] {
		if y+config.PanelRowHeight > bounds.Max.Y {
			break
		}
		mid := y + config.PanelRowHeight/2
		box := image.Rect(cx0, mid-swatch/2, cx1, mid+swatch/2)
		key := r.Field.Key
		switch r.Field.Control {
		case schema.ControlNumber:
			ts = append(ts, Target{Kind: TargetSlider, Key: key, Rect: box})
		case schema.ControlBoolean:
			ts = append(ts, Target{Kind: TargetToggle, Key: key, Rect: image.Rect(cx0, box.Min.Y, cx0+2*swatch, box.Max.Y)})
		case schema.ControlSelect:
			ts = append(ts, Target{Kind: TargetCycle, Key: key, Rect: box})
		case schema.ControlColor:
			ts = append(ts,
				Target{Kind: TargetSwatch, Key: key, Rect: image.Rect(cx0, box.Min.Y, cx0+swatch, box.Max.Y)},
				Target{Kind: TargetAlpha, Key: key, Rect: image.Rect(cx0+swatch+pad, box.Min.Y, cx1, box.Max.Y)},
			)
		case schema.ControlColorArray:
			for i := range r.Colors {
				sx := cx0 + i*(swatch+4)
				if sx+swatch > cx1 {
					break
				}
				ts = append(ts, Target{Kind: TargetArraySwatch, Key: key, Index: i, Rect: image.Rect(sx, box.Min.Y, sx+swatch, box.Max.Y)})
			}
		default:
			ts = append(ts, Target{Kind: TargetText, Key: key, Rect: box})
		}
		y += config.PanelRowHeight
	}
	return ts
}

// HitTest returns the target under (x, y).
func HitTest(ts []Target, x, y int) (Target, bool) {
	pt := image.Pt(x, y)
	for _, t := range ts {
		if pt.In(t.Rect) {
			return t, true
		}
	}
	return Target{}, false
}

// Fraction maps x onto r horizontally, clamped to [0,1].
func Fraction(r image.Rectangle, x int) float64 {
	if r.Dx() <= 0 {
		return 0
	}
	f := float64(x-r.Min.X) / float64(r.Dx())
	return max(0, min(1, f))
}

// SliderValue maps a slider fraction onto the field's range.
func SliderValue(f schema.Field, frac float64) float64 {
	return Snap(f, f.Min+frac*(f.Max-f.Min))
}

// Apply performs the action of t. x is the pointer column, used by
// sliders.
func (p *Panel) Apply(t Target, x int) error {
	switch t.Kind {
	case TargetTab:
		p.SetMode(t.Mode)
	case TargetPrev:
		p.step(-1)
	case TargetNext:
		p.step(1)
	case TargetSlider:
		f, _, err := p.field(t.Key)
		if err != nil {
			return err
		}
		return p.SetNumber(t.Key, SliderValue(f, Fraction(t.Rect, x)))
	case TargetToggle:
		return p.Toggle(t.Key)
	case TargetCycle:
		return p.Cycle(t.Key)
	case TargetSwatch:
		return p.EditColor(t.Key)
	case TargetAlpha:
		return p.SetAlpha(t.Key, Fraction(t.Rect, x))
	case TargetArraySwatch:
		return p.EditArrayColor(t.Key, t.Index)
	case TargetText:
		return p.EditText(t.Key)
	case TargetPaste:
		return p.PasteJSON()
	case TargetImport:
		return p.ImportFile()
	case TargetExport:
		return p.ExportFile()
	}
	return nil
}

// step moves the selection through the registered instances, wrapping.
func (p *Panel) step(delta int) {
	list := p.Instances()
	if len(list) == 0 {
		p.selected = ""
		return
	}
	i := -1
	for j, inst := range list {
		if inst.ID == p.selected {
			i = j
			break
		}
	}
	if i < 0 {
		p.selected = list[0].ID
		return
	}
	p.selected = list[(i+delta+len(list))%len(list)].ID
}

// Draggable reports whether holding the button on t keeps applying it.
func (t Target) Draggable() bool {
	return t.Kind == TargetSlider || t.Kind == TargetAlpha
}
