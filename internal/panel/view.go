package panel

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/palette"
)

var (
	panelBg     = color.RGBA{R: 15, G: 23, B: 42, A: 230}
	panelBorder = color.RGBA{R: 60, G: 70, B: 90, A: 255}
	tabActive   = color.RGBA{R: 88, G: 28, B: 135, A: 255}
	trackColor  = color.RGBA{R: 51, G: 65, B: 85, A: 255}
	accent      = color.RGBA{R: 168, G: 85, B: 247, A: 255}
	labelColor  = color.RGBA{R: 203, G: 213, B: 225, A: 255}
	dimColor    = color.RGBA{R: 100, G: 116, B: 139, A: 255}
)

// View draws a Panel and feeds it pointer input.
type View struct {
	p       *Panel
	face    text.Face
	Visible bool

	scroll  int
	targets []Target
	drag    *Target
	lastX   int
}

func NewView(p *Panel) *View {
	return &View{
		p:       p,
		face:    text.NewGoXFace(basicfont.Face7x13),
		Visible: true,
	}
}

func (v *View) Panel() *Panel { return v.p }

// Update handles the pointer for a screen of w×h. It reports whether the
// panel consumed the pointer this frame, in which case the stage must not
// see it.
func (v *View) Update(w, h int) (bool, error) {
	if !v.Visible {
		v.drag = nil
		return false, nil
	}
	if _, ok := v.p.Selected(); !ok {
		v.p.step(0)
	}
	bounds := Bounds(w, h)
	rows := v.p.Rows()
	v.targets = Layout(bounds, v.p.Mode(), rows, v.scroll)

	mx, my := ebiten.CursorPosition()
	inside := image.Pt(mx, my).In(bounds)

	if _, dy := ebiten.Wheel(); inside && dy != 0 {
		if dy < 0 {
			v.scroll++
		} else {
			v.scroll--
		}
		v.scroll = max(0, min(v.scroll, len(rows)-1))
	}

	var err error
	if inside && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if t, ok := HitTest(v.targets, mx, my); ok {
			if t.Draggable() {
				v.drag = &t
				v.lastX = mx
			}
			if t.Kind == TargetTab || t.Kind == TargetPrev || t.Kind == TargetNext {
				v.scroll = 0
			}
			err = v.p.Apply(t, mx)
		}
	} else if v.drag != nil && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && mx != v.lastX {
		v.lastX = mx
		err = v.p.Apply(*v.drag, mx)
	}
	captured := inside || v.drag != nil
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		v.drag = nil
	}
	return captured, err
}

func (v *View) Draw(screen *ebiten.Image) {
	if !v.Visible {
		return
	}
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	b := Bounds(w, h)
	fillRect(screen, b, panelBg)
	vector.StrokeRect(screen, float32(b.Min.X), float32(b.Min.Y), float32(b.Dx()), float32(b.Dy()), 1, panelBorder, false)

	inst, ok := v.p.Selected()
	for _, t := range v.targets {
		switch t.Kind {
		case TargetTab:
			if t.Mode == v.p.Mode() {
				fillRect(screen, t.Rect, tabActive)
			}
			v.label(screen, t.Mode.String(), t.Rect, labelColor, true)
		case TargetPrev:
			v.label(screen, "<", t.Rect, labelColor, true)
		case TargetNext:
			v.label(screen, ">", t.Rect, labelColor, true)
		}
	}
	sel := image.Rect(b.Min.X, b.Min.Y+config.PanelHeader, b.Max.X, b.Min.Y+2*config.PanelHeader)
	if !ok {
		v.label(screen, "no instances", sel, dimColor, true)
		return
	}
	v.label(screen, fmt.Sprintf("%s (%s)", inst.ID, inst.Kind), sel, labelColor, true)

	if v.p.Mode() == JSON {
		v.drawJSON(screen, b)
		return
	}
	v.drawRows(screen, b)
}

func (v *View) drawRows(screen *ebiten.Image, b image.Rectangle) {
	rows := v.p.Rows()
	byKey := make(map[string]Row, len(rows))
	for _, r := range rows {
		byKey[r.Field.Key] = r
	}
	drawn := map[string]bool{}
	for _, t := range v.targets {
		r, ok := byKey[t.Key]
		if !ok {
			continue
		}
		if !drawn[t.Key] {
			drawn[t.Key] = true
			lr := image.Rect(b.Min.X+pad, t.Rect.Min.Y, b.Min.X+labelWidth, t.Rect.Max.Y)
			v.label(screen, r.Field.Label, lr, labelColor, false)
		}
		switch t.Kind {
		case TargetSlider:
			n, _ := r.Value.(float64)
			frac := 0.0
			if r.Field.Max > r.Field.Min {
				frac = (n - r.Field.Min) / (r.Field.Max - r.Field.Min)
			}
			v.slider(screen, t.Rect, frac, accent)
			v.label(screen, r.Text, t.Rect, labelColor, true)
		case TargetToggle:
			c := trackColor
			if r.Text == "ON" {
				c = accent
			}
			fillRect(screen, t.Rect, c)
			v.label(screen, r.Text, t.Rect, labelColor, true)
		case TargetCycle, TargetText:
			vector.StrokeRect(screen, float32(t.Rect.Min.X), float32(t.Rect.Min.Y), float32(t.Rect.Dx()), float32(t.Rect.Dy()), 1, panelBorder, false)
			v.label(screen, clip(r.Text, t.Rect.Dx()/7-1), t.Rect, labelColor, true)
		case TargetSwatch:
			v.swatch(screen, t.Rect, r.Text)
		case TargetAlpha:
			base := palette.Resolve(r.Hex, color.NRGBA{A: 255})
			v.slider(screen, t.Rect, r.Alpha, base)
		case TargetArraySwatch:
			if t.Index < len(r.Colors) {
				v.swatch(screen, t.Rect, r.Colors[t.Index])
			}
		}
	}
}

func (v *View) drawJSON(screen *ebiten.Image, b image.Rectangle) {
	data, err := v.p.ExportJSON()
	if err != nil {
		return
	}
	y := b.Min.Y + 2*config.PanelHeader + pad
	bottom := b.Max.Y - config.PanelHeader - 2*pad
	for _, line := range strings.Split(data, "\n") {
		if y+13 > bottom {
			break
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(b.Min.X+pad), float64(y))
		op.ColorScale.ScaleWithColor(labelColor)
		text.Draw(screen, clip(line, (b.Dx()-2*pad)/7), v.face, op)
		y += 14
	}
	names := map[TargetKind]string{TargetPaste: "PASTE", TargetImport: "IMPORT", TargetExport: "EXPORT"}
	for _, t := range v.targets {
		if name, ok := names[t.Kind]; ok {
			fillRect(screen, t.Rect, trackColor)
			v.label(screen, name, t.Rect, labelColor, true)
		}
	}
}

func (v *View) slider(screen *ebiten.Image, r image.Rectangle, frac float64, c color.Color) {
	frac = max(0, min(1, frac))
	cy := float32(r.Min.Y+r.Max.Y) / 2
	vector.DrawFilledRect(screen, float32(r.Min.X), cy-2, float32(r.Dx()), 4, trackColor, false)
	vector.DrawFilledRect(screen, float32(r.Min.X), cy-2, float32(float64(r.Dx())*frac), 4, c, false)
	vector.DrawFilledCircle(screen, float32(r.Min.X)+float32(float64(r.Dx())*frac), cy, 6, c, true)
}

func (v *View) swatch(screen *ebiten.Image, r image.Rectangle, s string) {
	fillRect(screen, r, palette.Resolve(s, color.NRGBA{}))
	vector.StrokeRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), 1, panelBorder, false)
}

func (v *View) label(screen *ebiten.Image, s string, r image.Rectangle, c color.Color, center bool) {
	op := &text.DrawOptions{}
	x := float64(r.Min.X)
	if center {
		x += (float64(r.Dx()) - text.Advance(s, v.face)) / 2
	}
	op.GeoM.Translate(x, float64(r.Min.Y)+(float64(r.Dy())-13)/2)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, v.face, op)
}

func fillRect(screen *ebiten.Image, r image.Rectangle, c color.Color) {
	vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), c, false)
}

func clip(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
