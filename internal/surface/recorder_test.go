package surface

import (
	"image/color"
	"testing"
)

var (
	_ Retained = (*Recorder)(nil)
	_ Retained = (*Image)(nil)
)

func TestRecorderRecordsInOrder(t *testing.T) {
	r := NewRecorder(100, 50)
	r.Clear()
	r.FillRect(1, 2, 3, 4, color.White)
	r.StrokeLine(0, 0, 10, 10, 1, color.Black)
	r.FillGlow(5, 5, 2, color.NRGBA{255, 0, 0, 128})

	want := []string{"clear", "rect", "line", "glow"}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if c := r.Ops[3].Color; c != (color.NRGBA{255, 0, 0, 128}) {
		t.Errorf("glow color = %v", c)
	}

	r.Reset()
	if len(r.Ops) != 0 {
		t.Errorf("Reset left %d ops", len(r.Ops))
	}
}

func TestRecorderPolylineCopiesPoints(t *testing.T) {
	r := NewRecorder(10, 10)
	pts := []Point{{0, 0}, {5, 5}}
	r.StrokePolyline(pts, 2, color.White)
	pts[1].X = 99
	if got := r.Ops[0].Points[1].X; got != 5 {
		t.Errorf("recorded point mutated to %v", got)
	}
}

func TestRecorderSizeAndSprites(t *testing.T) {
	r := NewRecorder(0, 0)
	r.SetSize(320, 200)
	if w, h := r.Size(); w != 320 || h != 200 {
		t.Fatalf("Size() = %d,%d", w, h)
	}
	if r.Resizes != 1 || r.Count("resize") != 1 {
		t.Errorf("resizes = %d, ops = %d", r.Resizes, r.Count("resize"))
	}

	sp := r.NewSprite(40, color.White)
	sp.Translate(3, 4)
	rs := r.Sprites[0]
	if rs.X != 3 || rs.Y != 4 || rs.Moves != 1 {
		t.Errorf("sprite = %+v", *rs)
	}
	r.SetBackdrop(color.Black)
	if r.Backdrop != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("backdrop = %v", r.Backdrop)
	}
	r.ReleaseSprites()
	if len(r.Sprites) != 0 {
		t.Errorf("ReleaseSprites left %d", len(r.Sprites))
	}
}

func TestNRGBANil(t *testing.T) {
	if got := nrgba(nil); got != (color.NRGBA{}) {
		t.Errorf("nrgba(nil) = %v", got)
	}
}
