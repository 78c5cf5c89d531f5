package panel

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iburimskiy/backdrop/internal/registry"
	"github.com/iburimskiy/backdrop/internal/schema"
)

type fakeDialogs struct {
	color color.Color
	entry string
	path  string
	err   error
	calls []string
}

func (f *fakeDialogs) PickColor(title string, initial color.Color) (color.Color, error) {
	f.calls = append(f.calls, "color")
	return f.color, f.err
}

func (f *fakeDialogs) Entry(title, text string) (string, error) {
	f.calls = append(f.calls, "entry")
	return f.entry, f.err
}

func (f *fakeDialogs) OpenFile(title string, patterns ...string) (string, error) {
	f.calls = append(f.calls, "open")
	return f.path, f.err
}

func (f *fakeDialogs) SaveFile(title, name string) (string, error) {
	f.calls = append(f.calls, "save")
	return f.path, f.err
}

func newPanel(t *testing.T, kind schema.Kind) (*Panel, *registry.Registry, *fakeDialogs) {
	t.Helper()
	reg := registry.New()
	reg.Register("bg-1", kind, nil)
	dlg := &fakeDialogs{}
	p := New(reg, dlg)
	p.Select("bg-1")
	return p, reg, dlg
}

func particleCfg(t *testing.T, reg *registry.Registry) schema.ParticleConfig {
	t.Helper()
	inst, ok := reg.Lookup("bg-1")
	if !ok {
		t.Fatal("bg-1 missing")
	}
	return inst.Config.(schema.ParticleConfig)
}

func TestSetNumberClampsAndSnaps(t *testing.T) {
	p, reg, _ := newPanel(t, schema.ParticleNetwork)

	tests := []struct {
		key  string
		in   float64
		want float64
		get  func(schema.ParticleConfig) float64
	}{
		{"particleCount", 1000, 300, func(c schema.ParticleConfig) float64 { return float64(c.ParticleCount) }},
		{"particleCount", 133, 130, func(c schema.ParticleConfig) float64 { return float64(c.ParticleCount) }},
		{"particleCount", -5, 10, func(c schema.ParticleConfig) float64 { return float64(c.ParticleCount) }},
		{"resistance", 0.123, 0.5, func(c schema.ParticleConfig) float64 { return c.Resistance }},
		{"resistance", 0.764, 0.76, func(c schema.ParticleConfig) float64 { return c.Resistance }},
		{"connectionDistance", 201.4, 201, func(c schema.ParticleConfig) float64 { return c.ConnectionDistance }},
	}
	for _, tt := range tests {
		if err := p.SetNumber(tt.key, tt.in); err != nil {
			t.Fatalf("SetNumber(%s, %v): %v", tt.key, tt.in, err)
		}
		if got := tt.get(particleCfg(t, reg)); got != tt.want {
			t.Errorf("SetNumber(%s, %v) stored %v, want %v", tt.key, tt.in, got, tt.want)
		}
	}
}

func TestToggleAndCycle(t *testing.T) {
	p, reg, _ := newPanel(t, schema.ParticleNetwork)
	if err := p.Toggle("wrapAround"); err != nil {
		t.Fatal(err)
	}
	if !particleCfg(t, reg).WrapAround {
		t.Error("wrapAround should be on after toggle")
	}

	lp, lreg, _ := newPanel(t, schema.LavaLamp)
	for _, want := range []string{schema.MotionBounce, schema.MotionBuoyant} {
		if err := lp.Cycle("motion"); err != nil {
			t.Fatal(err)
		}
		inst, _ := lreg.Lookup("bg-1")
		if got := inst.Config.(schema.LavaLampConfig).Motion; got != want {
			t.Errorf("motion = %q, want %q", got, want)
		}
	}
}

func TestColorEditsKeepOtherChannel(t *testing.T) {
	p, reg, _ := newPanel(t, schema.ParticleNetwork)

	if err := p.SetColor("lineColor", "#ff0000"); err != nil {
		t.Fatal(err)
	}
	if got := particleCfg(t, reg).LineColor; got != "rgba(255, 0, 0, 0.2)" {
		t.Errorf("lineColor = %q", got)
	}
	if err := p.SetAlpha("particleColor", 0.5); err != nil {
		t.Fatal(err)
	}
	if got := particleCfg(t, reg).ParticleColor; got != "rgba(100, 200, 255, 0.5)" {
		t.Errorf("particleColor = %q", got)
	}
	if err := p.SetColor("lineColor", "nope"); err == nil {
		t.Error("bad hex should be rejected")
	}
	if got := particleCfg(t, reg).LineColor; got != "rgba(255, 0, 0, 0.2)" {
		t.Errorf("rejected edit changed lineColor to %q", got)
	}
}

func TestSetArrayColor(t *testing.T) {
	p, reg, _ := newPanel(t, schema.FloatingShapes)
	if err := p.SetArrayColor("colors", 1, "#ff0000"); err != nil {
		t.Fatal(err)
	}
	inst, _ := reg.Lookup("bg-1")
	colors := inst.Config.(schema.ShapeConfig).Colors
	if colors[1] != "rgba(255, 0, 0, 1)" || colors[0] != "#38bdf8" {
		t.Errorf("colors = %v", colors)
	}
	if err := p.SetArrayColor("colors", 9, "#ff0000"); !errors.Is(err, ErrNoField) {
		t.Errorf("out of range index: err = %v", err)
	}
}

func TestSetTextJSON(t *testing.T) {
	p, reg, _ := newPanel(t, schema.GradientMesh)
	if err := p.SetText("items", `[{"color":"#ff0000","width":"10rem","height":"10rem"}]`); err != nil {
		t.Fatal(err)
	}
	inst, _ := reg.Lookup("bg-1")
	items := inst.Config.(schema.GradientMeshConfig).Items
	if len(items) != 1 || items[0].Color != "#ff0000" {
		t.Fatalf("items = %+v", items)
	}
	rev := reg.Revision("bg-1")
	if err := p.SetText("items", `[{`); !errors.Is(err, registry.ErrInvalidJSON) {
		t.Errorf("err = %v, want ErrInvalidJSON", err)
	}
	if reg.Revision("bg-1") != rev {
		t.Error("rejected JSON should not bump the revision")
	}
}

func TestImportExportJSON(t *testing.T) {
	p, reg, _ := newPanel(t, schema.ParticleNetwork)
	if err := p.ImportJSON(`{"particleCount": 40, "wrapAround": true}`); err != nil {
		t.Fatal(err)
	}
	cfg := particleCfg(t, reg)
	if cfg.ParticleCount != 40 || !cfg.WrapAround || cfg.ParticleColor != "#64c8ff" {
		t.Errorf("after import: %+v", cfg)
	}
	if err := p.ImportJSON(`not json`); !errors.Is(err, registry.ErrInvalidJSON) {
		t.Errorf("err = %v", err)
	}
	out, err := p.ExportJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"particleCount": 40`) {
		t.Errorf("export = %s", out)
	}

	empty := New(registry.New(), nil)
	if _, err := empty.ExportJSON(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("no selection: err = %v", err)
	}
}

func TestDialogEdits(t *testing.T) {
	p, reg, dlg := newPanel(t, schema.ParticleNetwork)

	dlg.color = color.NRGBA{R: 255, A: 255}
	if err := p.EditColor("lineColor"); err != nil {
		t.Fatal(err)
	}
	if got := particleCfg(t, reg).LineColor; got != "rgba(255, 0, 0, 0.2)" {
		t.Errorf("lineColor = %q", got)
	}

	rev := reg.Revision("bg-1")
	dlg.err = ErrCanceled
	if err := p.EditColor("lineColor"); err != nil {
		t.Errorf("cancel should be silent, got %v", err)
	}
	if err := p.PasteJSON(); err != nil {
		t.Errorf("cancel should be silent, got %v", err)
	}
	if reg.Revision("bg-1") != rev {
		t.Error("canceled dialogs should not edit")
	}

	dlg.err = nil
	dlg.entry = `{"baseSpeed": 2}`
	if err := p.PasteJSON(); err != nil {
		t.Fatal(err)
	}
	if particleCfg(t, reg).BaseSpeed != 2 {
		t.Error("pasted JSON not applied")
	}
}

func TestFileImportExport(t *testing.T) {
	p, reg, dlg := newPanel(t, schema.ParticleNetwork)
	dlg.path = filepath.Join(t.TempDir(), "bg.json")

	if err := p.SetNumber("particleCount", 150); err != nil {
		t.Fatal(err)
	}
	if err := p.ExportFile(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dlg.path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"particleCount": 150`) {
		t.Errorf("file = %s", data)
	}

	if err := p.SetNumber("particleCount", 20); err != nil {
		t.Fatal(err)
	}
	if err := p.ImportFile(); err != nil {
		t.Fatal(err)
	}
	if got := particleCfg(t, reg).ParticleCount; got != 150 {
		t.Errorf("particleCount after import = %d, want 150", got)
	}
}

func TestRows(t *testing.T) {
	p, _, _ := newPanel(t, schema.ParticleNetwork)
	rows := p.Rows()
	if len(rows) != len(schema.Fields(schema.ParticleNetwork)) {
		t.Fatalf("rows = %d", len(rows))
	}
	for _, r := range rows {
		switch r.Field.Key {
		case "lineColor":
			if r.Hex != "#64c8ff" || r.Alpha != 0.2 {
				t.Errorf("lineColor row = %q %v", r.Hex, r.Alpha)
			}
		case "enableMouseInteraction":
			if r.Text != "ON" {
				t.Errorf("toggle text = %q", r.Text)
			}
		case "particleCount":
			if r.Text != "80" {
				t.Errorf("count text = %q", r.Text)
			}
		}
	}
	if rows := New(registry.New(), nil).Rows(); rows != nil {
		t.Errorf("rows without selection = %v", rows)
	}
}

func TestLayoutSliderClick(t *testing.T) {
	p, reg, _ := newPanel(t, schema.ParticleNetwork)
	ts := Layout(Bounds(1280, 720), Controls, p.Rows(), 0)

	var slider Target
	for _, tg := range ts {
		if tg.Kind == TargetSlider && tg.Key == "particleCount" {
			slider = tg
		}
	}
	if slider.Key == "" {
		t.Fatal("no particleCount slider laid out")
	}
	cx, cy := slider.Rect.Min.X+1, (slider.Rect.Min.Y+slider.Rect.Max.Y)/2
	hit, ok := HitTest(ts, cx, cy)
	if !ok || hit.Key != "particleCount" {
		t.Fatalf("hit = %+v %v", hit, ok)
	}
	if err := p.Apply(hit, slider.Rect.Max.X+50); err != nil {
		t.Fatal(err)
	}
	if got := particleCfg(t, reg).ParticleCount; got != 300 {
		t.Errorf("slider past the end set %d, want 300", got)
	}
	if _, ok := HitTest(ts, 0, 0); ok {
		t.Error("hit outside the panel")
	}
}

func TestLayoutJSONMode(t *testing.T) {
	ts := Layout(Bounds(1280, 720), JSON, nil, 0)
	var kinds []TargetKind
	for _, tg := range ts {
		kinds = append(kinds, tg.Kind)
	}
	want := []TargetKind{TargetTab, TargetTab, TargetPrev, TargetNext, TargetPaste, TargetImport, TargetExport}
	if len(kinds) != len(want) {
		t.Fatalf("targets = %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("target %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestStepWraps(t *testing.T) {
	reg := registry.New()
	reg.Register("a", schema.SineWaves, nil)
	reg.Register("b", schema.RetroGrid, nil)
	p := New(reg, nil)

	p.step(1)
	if inst, _ := p.Selected(); inst.ID != "a" {
		t.Errorf("first step selected %q", inst.ID)
	}
	p.step(1)
	p.step(1)
	if inst, _ := p.Selected(); inst.ID != "a" {
		t.Errorf("wrap selected %q", inst.ID)
	}
	p.step(-1)
	if inst, _ := p.Selected(); inst.ID != "b" {
		t.Errorf("backwards wrap selected %q", inst.ID)
	}
}

func TestSnap(t *testing.T) {
	f := schema.Field{Min: 0.1, Max: 5, Step: 0.1}
	if got := Snap(f, 0.36); got != 0.4 {
		t.Errorf("Snap = %v", got)
	}
	if got := SliderValue(f, 1); got != 5 {
		t.Errorf("SliderValue(1) = %v", got)
	}
	if got := Fraction(Bounds(1280, 720), -100); got != 0 {
		t.Errorf("Fraction = %v", got)
	}
}
