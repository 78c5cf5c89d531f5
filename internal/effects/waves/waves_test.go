package waves

import (
	"errors"
	"math"
	"testing"

	"github.com/iburimskiy/backdrop/internal/frame"
	"github.com/iburimskiy/backdrop/internal/surface"
)

func newEngine(t *testing.T, w, h int, opts ...Option) (*Engine, *surface.Recorder) {
	t.Helper()
	rec := surface.NewRecorder(w, h)
	e, err := New(rec, nil, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return e, rec
}

func TestNewWithoutCanvas(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, surface.ErrNoSurface) {
		t.Errorf("err = %v, want ErrNoSurface", err)
	}
}

func TestResizeIsBufferedUntilNextFrame(t *testing.T) {
	e, rec := newEngine(t, 100, 80)
	e.Resize(300, 200)
	e.Resize(320, 240)
	if rec.W != 100 || rec.Resizes != 0 {
		t.Fatalf("resize applied synchronously: %dx%d (%d)", rec.W, rec.H, rec.Resizes)
	}
	e.Step()
	if rec.W != 320 || rec.H != 240 || rec.Resizes != 1 {
		t.Fatalf("canvas = %dx%d after %d resizes, want 320x240 after 1", rec.W, rec.H, rec.Resizes)
	}
	names := rec.Names()
	if names[0] != "resize" || names[1] != "clear" {
		t.Errorf("frame order = %v, want resize then clear", names[:2])
	}
}

func TestFrameDrawsGradientAndThreeWaves(t *testing.T) {
	e, rec := newEngine(t, 50, 40)
	e.Step()
	if n := rec.Count("gradient"); n != 1 {
		t.Errorf("gradients = %d, want 1", n)
	}
	if n := rec.Count("polyline"); n != 3 {
		t.Fatalf("polylines = %d, want 3", n)
	}
	var main, faded surface.Op
	for _, op := range rec.Ops {
		if op.Name != "polyline" {
			continue
		}
		if main.Name == "" {
			main = op
		} else if faded.Name == "" {
			faded = op
		}
	}
	if len(main.Points) != 51 {
		t.Errorf("samples = %d, want one per column plus the start", len(main.Points))
	}
	if faded.Color.A >= main.Color.A {
		t.Errorf("harmonic alpha %d not faded below %d", faded.Color.A, main.Color.A)
	}
	if got := e.Phase(); math.Abs(got-0.01) > 1e-12 {
		t.Errorf("phase = %v, want 0.01", got)
	}
}

func TestTransparentStartSkipsGradient(t *testing.T) {
	e, rec := newEngine(t, 50, 40)
	cfg := e.Config()
	cfg.ColorStart = "transparent"
	e.UpdateConfig(cfg)
	e.Step()
	if n := rec.Count("gradient"); n != 0 {
		t.Errorf("gradients = %d, want 0", n)
	}
}

func TestCenter(t *testing.T) {
	p := Placement{Top: -300, Viewport: 800}
	tests := []struct {
		name     string
		parallax float64
		want     float64
	}{
		{"fixed to surface", 0, 500},
		{"pinned to viewport", 1, 700},
		{"halfway", 0.5, 600},
		{"clamped", 3, 700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Center(tt.parallax, 1000, p); got != tt.want {
				t.Errorf("Center = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParallaxFollowsTracker(t *testing.T) {
	place := Placement{Top: 0, Viewport: 200}
	e, rec := newEngine(t, 10, 200, WithTracker(func() Placement { return place }))
	cfg := e.Config()
	cfg.Parallax = 1
	cfg.Amplitude = 0
	e.UpdateConfig(cfg)

	e.Step()
	first := rec.Ops[len(rec.Ops)-3].Points[0].Y
	place.Top = -100
	rec.Reset()
	e.Step()
	second := rec.Ops[len(rec.Ops)-3].Points[0].Y
	if first != 100 || second != 200 {
		t.Errorf("centers = %v, %v; want 100, 200", first, second)
	}
}

func TestStopHaltsFrames(t *testing.T) {
	e, rec := newEngine(t, 10, 10)
	s := frame.NewScheduler()
	e.Start(s)
	e.Start(s)
	s.Tick(0)
	s.Tick(0)
	e.Stop()
	s.Tick(0)
	if n := rec.Count("clear"); n != 2 {
		t.Errorf("frames = %d, want 2", n)
	}
}
