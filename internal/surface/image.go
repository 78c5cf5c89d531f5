package surface

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const glowSize = 128

var (
	whitePixel *ebiten.Image
	glowImage  *ebiten.Image
)

func white() *ebiten.Image {
	if whitePixel == nil {
		base := ebiten.NewImage(3, 3)
		base.Fill(color.White)
		whitePixel = base.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whitePixel
}

// glow returns a white radial falloff texture shared by every surface.
func glow() *ebiten.Image {
	if glowImage == nil {
		src := image.NewNRGBA(image.Rect(0, 0, glowSize, glowSize))
		c := float64(glowSize) / 2
		for y := 0; y < glowSize; y++ {
			for x := 0; x < glowSize; x++ {
				d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c) / c
				a := 0.0
				if d < 1 {
					// smoothstep falloff approximates a gaussian blur edge
					t := 1 - d
					a = t * t * (3 - 2*t)
				}
				src.SetNRGBA(x, y, color.NRGBA{255, 255, 255, uint8(a * 255)})
			}
		}
		glowImage = ebiten.NewImageFromImage(src)
	}
	return glowImage
}

// Image is a Canvas backed by an offscreen ebiten image.
type Image struct {
	img      *ebiten.Image
	w, h     int
	vs       []ebiten.Vertex
	is       []uint16
	sprites  []*sprite
	backdrop color.NRGBA
}

// NewImage returns a surface of the given size. Zero sizes are allowed;
// drawing is a no-op until SetSize provides real dimensions.
func NewImage(w, h int) *Image {
	s := &Image{}
	s.SetSize(w, h)
	return s
}

func (s *Image) Size() (int, int) { return s.w, s.h }

func (s *Image) SetSize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if w == s.w && h == s.h && s.img != nil {
		return
	}
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	s.w, s.h = w, h
	if w > 0 && h > 0 {
		s.img = ebiten.NewImage(w, h)
	}
}

// Target returns the backing image, nil while the surface has no area.
func (s *Image) Target() *ebiten.Image { return s.img }

// Present composites retained sprites and returns the image to draw.
func (s *Image) Present() *ebiten.Image {
	if s.img == nil {
		return nil
	}
	if len(s.sprites) > 0 {
		if s.backdrop.A == 0 {
			s.img.Clear()
		} else {
			s.img.Fill(s.backdrop)
		}
		for _, sp := range s.sprites {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(sp.x, sp.y)
			s.img.DrawImage(sp.img, op)
		}
	}
	return s.img
}

func (s *Image) Clear() {
	if s.img != nil {
		s.img.Clear()
	}
}

func (s *Image) FillRect(x, y, w, h float32, c color.Color) {
	if s.img == nil {
		return
	}
	vector.DrawFilledRect(s.img, x, y, w, h, c, false)
}

func (s *Image) FillCircle(cx, cy, r float32, c color.Color) {
	if s.img == nil {
		return
	}
	vector.DrawFilledCircle(s.img, cx, cy, r, c, true)
}

func (s *Image) FillRoundRect(x, y, w, h, radius float32, c color.Color) {
	if s.img == nil {
		return
	}
	r := float32(math.Min(float64(radius), math.Min(float64(w), float64(h))/2))
	var p vector.Path
	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.ArcTo(x+w, y, x+w, y+r, r)
	p.LineTo(x+w, y+h-r)
	p.ArcTo(x+w, y+h, x+w-r, y+h, r)
	p.LineTo(x+r, y+h)
	p.ArcTo(x, y+h, x, y+h-r, r)
	p.LineTo(x, y+r)
	p.ArcTo(x, y, x+r, y, r)
	p.Close()
	s.vs, s.is = p.AppendVerticesAndIndicesForFilling(s.vs[:0], s.is[:0])
	s.paint(c)
}

func (s *Image) StrokeLine(x0, y0, x1, y1, width float32, c color.Color) {
	if s.img == nil {
		return
	}
	vector.StrokeLine(s.img, x0, y0, x1, y1, width, c, true)
}

func (s *Image) StrokePolyline(pts []Point, width float32, c color.Color) {
	if s.img == nil || len(pts) < 2 {
		return
	}
	var p vector.Path
	p.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	op := &vector.StrokeOptions{Width: width, LineJoin: vector.LineJoinRound}
	s.vs, s.is = p.AppendVerticesAndIndicesForStroke(s.vs[:0], s.is[:0], op)
	s.paint(c)
}

func (s *Image) FillGradient(x, y, w, h float32, from, to color.Color, dir Direction) {
	if s.img == nil {
		return
	}
	a := color.NRGBAModel.Convert(from).(color.NRGBA)
	b := color.NRGBAModel.Convert(to).(color.NRGBA)
	corners := [4]color.NRGBA{a, a, b, b}
	if dir == Diagonal {
		mid := mix(a, b)
		corners = [4]color.NRGBA{a, mid, mid, b}
	}
	pos := [4][2]float32{{x, y}, {x + w, y}, {x, y + h}, {x + w, y + h}}
	s.vs = s.vs[:0]
	for i, p := range pos {
		s.vs = append(s.vs, vertex(p[0], p[1], corners[i]))
	}
	s.is = append(s.is[:0], 0, 1, 2, 1, 2, 3)
	s.img.DrawTriangles(s.vs, s.is, white(), &ebiten.DrawTrianglesOptions{})
}

func (s *Image) FillGlow(cx, cy, r float32, c color.Color) {
	if s.img == nil || r <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	scale := float64(2*r) / glowSize
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(cx-r), float64(cy-r))
	op.ColorScale.ScaleWithColor(c)
	op.Filter = ebiten.FilterLinear
	s.img.DrawImage(glow(), op)
}

// paint fills the triangles in s.vs/s.is with a flat color.
func (s *Image) paint(c color.Color) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	for i := range s.vs {
		s.vs[i].SrcX, s.vs[i].SrcY = 1, 1
		s.vs[i].ColorR = float32(n.R) / 255
		s.vs[i].ColorG = float32(n.G) / 255
		s.vs[i].ColorB = float32(n.B) / 255
		s.vs[i].ColorA = float32(n.A) / 255
	}
	s.img.DrawTriangles(s.vs, s.is, white(), &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func vertex(x, y float32, c color.NRGBA) ebiten.Vertex {
	return ebiten.Vertex{
		DstX: x, DstY: y, SrcX: 1, SrcY: 1,
		ColorR: float32(c.R) / 255,
		ColorG: float32(c.G) / 255,
		ColorB: float32(c.B) / 255,
		ColorA: float32(c.A) / 255,
	}
}

func mix(a, b color.NRGBA) color.NRGBA {
	return color.NRGBA{
		R: uint8((int(a.R) + int(b.R)) / 2),
		G: uint8((int(a.G) + int(b.G)) / 2),
		B: uint8((int(a.B) + int(b.B)) / 2),
		A: uint8((int(a.A) + int(b.A)) / 2),
	}
}

type sprite struct {
	img  *ebiten.Image
	x, y float64
}

func (sp *sprite) Translate(x, y float64) {
	sp.x, sp.y = x, y
}

// NewSprite pre-renders a soft disc of the given diameter.
func (s *Image) NewSprite(diameter float32, c color.Color) Sprite {
	d := int(math.Ceil(float64(diameter)))
	if d < 1 {
		d = 1
	}
	img := ebiten.NewImage(d, d)
	op := &ebiten.DrawImageOptions{}
	scale := float64(d) / glowSize
	op.GeoM.Scale(scale, scale)
	op.ColorScale.ScaleWithColor(c)
	op.Filter = ebiten.FilterLinear
	img.DrawImage(glow(), op)
	sp := &sprite{img: img}
	s.sprites = append(s.sprites, sp)
	return sp
}

func (s *Image) SetBackdrop(c color.Color) {
	s.backdrop = color.NRGBAModel.Convert(c).(color.NRGBA)
}

// ReleaseSprites drops every retained sprite.
func (s *Image) ReleaseSprites() {
	for _, sp := range s.sprites {
		sp.img.Deallocate()
	}
	s.sprites = nil
}
