package grid

import (
	"math"
	"testing"
	"time"

	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

func TestOffsetScrollsOneCellPerPeriod(t *testing.T) {
	cfg := schema.GridConfig{AnimationSpeed: 5}
	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 0},
		{2500 * time.Millisecond, 20},
		{5 * time.Second, 0},
		{6 * time.Second, 8},
	}
	for _, tt := range tests {
		if got := Offset(cfg, tt.elapsed); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Offset(%v) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
	if got := Period(schema.GridConfig{}); got != time.Second {
		t.Errorf("zero speed period = %v, want 1s", got)
	}
}

func TestProjectionKeepsNearEdge(t *testing.T) {
	p := plane{w: 800, h: 600}
	x, y := p.project(100, 600)
	if x != 100 || y != 600 {
		t.Errorf("near edge moved to %v,%v", x, y)
	}
	_, far := p.project(100, 0)
	if far <= 0 || far >= 600 {
		t.Errorf("far edge y = %v, want inside the surface", far)
	}
	xl, _ := p.project(0, 0)
	xr, _ := p.project(800, 0)
	if xr-xl >= 800 {
		t.Error("far edge should be foreshortened")
	}
}

func TestRenderLayers(t *testing.T) {
	rec := surface.NewRecorder(800, 600)
	e, err := New(rec, nil)
	if err != nil {
		t.Fatal(err)
	}
	e.Step(0)
	if rec.Count("rect") != 1 || rec.Count("gradient") != 3 {
		t.Errorf("ops = %v", rec.Names())
	}
	if rec.Count("line") == 0 {
		t.Fatal("no grid lines drawn")
	}
	for _, op := range rec.Ops {
		if op.Name == "line" && op.Color.A == 0 {
			t.Fatal("fully masked line was drawn")
		}
	}

	cfg := e.Config()
	cfg.BackgroundColor = "transparent"
	e.UpdateConfig(cfg)
	rec.Reset()
	e.Step(time.Second)
	if rec.Count("rect") != 0 || rec.Count("gradient") != 0 {
		t.Errorf("transparent sky still drew %v", rec.Names())
	}
}
