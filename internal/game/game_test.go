package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/frame"
	"github.com/iburimskiy/backdrop/internal/mount"
	"github.com/iburimskiy/backdrop/internal/registry"
	"github.com/iburimskiy/backdrop/internal/sandbox"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

type harness struct {
	reg   *registry.Registry
	sched *frame.Scheduler
	stage *Stage
	recs  []*surface.Recorder
}

func newHarness(policy mount.Policy) *harness {
	h := &harness{reg: registry.New(), sched: frame.NewScheduler()}
	h.stage = NewStage(h.reg, h.sched, rand.New(rand.NewSource(1)), policy, func(w, hh int) surface.Canvas {
		r := surface.NewRecorder(w, hh)
		h.recs = append(h.recs, r)
		return r
	})
	return h
}

var full = sandbox.Rect{X: 0, Y: config.TopBarHeight, W: 640, H: 360}

func TestApplyMountsAndStarts(t *testing.T) {
	h := newHarness(mount.Preserve)
	err := h.stage.Apply([]Spec{
		{ID: "a", Kind: schema.SineWaves, Rect: full, Active: true},
		{ID: "b", Kind: schema.RetroGrid, Rect: full, Active: false},
	})
	if err != nil {
		t.Fatal(err)
	}
	if h.stage.Len() != 2 || !h.reg.Has("a") || !h.reg.Has("b") {
		t.Fatalf("mounted %d, registry %v", h.stage.Len(), h.reg.Instances())
	}
	a, _ := h.stage.Instance("a")
	b, _ := h.stage.Instance("b")
	if !a.Running() || b.Running() {
		t.Errorf("running a=%v b=%v", a.Running(), b.Running())
	}

	h.sched.Tick(16 * time.Millisecond)
	if h.recs[0].Count("polyline") == 0 {
		t.Error("active layer did not draw")
	}
	if h.recs[1].Count("clear") != 0 {
		t.Errorf("inactive layer drew %v", h.recs[1].Names())
	}
}

func TestApplyTogglesRunState(t *testing.T) {
	h := newHarness(mount.Preserve)
	spec := Spec{ID: "a", Kind: schema.ParticleNetwork, Rect: full, Active: true}
	h.stage.Apply([]Spec{spec})
	spec.Active = false
	h.stage.Apply([]Spec{spec})
	a, _ := h.stage.Instance("a")
	if a.Running() {
		t.Error("deactivated layer still running")
	}
	spec.Active = true
	h.stage.Apply([]Spec{spec})
	if !a.Running() || len(h.recs) != 1 {
		t.Errorf("reactivation should restart the same mount (running=%v, surfaces=%d)", a.Running(), len(h.recs))
	}
}

func TestApplyResizesOnlyOnSizeChange(t *testing.T) {
	h := newHarness(mount.Preserve)
	spec := Spec{ID: "a", Kind: schema.SineWaves, Rect: full, Active: true}
	h.stage.Apply([]Spec{spec})
	h.sched.Tick(16 * time.Millisecond)
	rec := h.recs[0]
	before := rec.Resizes

	spec.Rect.X, spec.Rect.Y = 40, 200
	h.stage.Apply([]Spec{spec})
	h.sched.Tick(32 * time.Millisecond)
	if rec.Resizes != before {
		t.Error("moving a layer should not resize its surface")
	}

	spec.Rect.W = 320
	h.stage.Apply([]Spec{spec})
	if rec.W != 640 || rec.Resizes != before {
		t.Fatalf("wave surface resized before the next frame: width = %d, resizes = %d", rec.W, rec.Resizes)
	}
	h.sched.Tick(48 * time.Millisecond)
	if rec.W != 320 || rec.Resizes != before+1 {
		t.Errorf("after tick: width = %d, resizes = %d", rec.W, rec.Resizes)
	}
}

func TestApplyResizesImmediateEnginesAtOnce(t *testing.T) {
	h := newHarness(mount.Preserve)
	spec := Spec{ID: "g", Kind: schema.RetroGrid, Rect: full, Active: true}
	h.stage.Apply([]Spec{spec})

	spec.Rect.H = 200
	h.stage.Apply([]Spec{spec})
	if h.recs[0].H != 200 {
		t.Errorf("height = %d, want 200", h.recs[0].H)
	}
}

func TestApplyUnmountsRemovedLayers(t *testing.T) {
	for _, tt := range []struct {
		policy mount.Policy
		kept   bool
	}{
		{mount.Preserve, true},
		{mount.Clear, false},
	} {
		t.Run(tt.policy.String(), func(t *testing.T) {
			h := newHarness(tt.policy)
			h.stage.Apply([]Spec{{ID: "a", Kind: schema.LavaLamp, Rect: full, Active: true}})
			h.stage.Apply(nil)
			if h.stage.Len() != 0 {
				t.Errorf("len = %d", h.stage.Len())
			}
			if h.reg.Has("a") != tt.kept {
				t.Errorf("registry has a = %v, want %v", h.reg.Has("a"), tt.kept)
			}
			if h.sched.Pending() != 0 {
				t.Errorf("%d frames still scheduled", h.sched.Pending())
			}
		})
	}
}

func TestApplyRemountsOnKindChange(t *testing.T) {
	h := newHarness(mount.Clear)
	h.stage.Apply([]Spec{{ID: "a", Kind: schema.SineWaves, Rect: full, Active: true}})
	if err := h.stage.Apply([]Spec{{ID: "a", Kind: schema.RetroGrid, Rect: full, Active: true}}); err != nil {
		t.Fatal(err)
	}
	a, _ := h.stage.Instance("a")
	if a.Kind() != schema.RetroGrid {
		t.Errorf("kind = %s", a.Kind())
	}
}

func TestApplySkipsFailedMounts(t *testing.T) {
	h := newHarness(mount.Preserve)
	err := h.stage.Apply([]Spec{
		{ID: "bad", Kind: "Nope", Rect: full, Active: true},
		{ID: "good", Kind: schema.FloatingShapes, Rect: full, Active: true},
	})
	if err == nil {
		t.Error("unknown kind should be reported")
	}
	if _, ok := h.stage.Instance("good"); !ok {
		t.Error("a failing layer must not block the others")
	}
}

func TestSyncPullsRegistryEdits(t *testing.T) {
	h := newHarness(mount.Preserve)
	h.stage.Apply([]Spec{{ID: "a", Kind: schema.SineWaves, Rect: full, Active: true}})
	if err := h.reg.UpdateConfig("a", schema.Patch{"amplitude": 120}); err != nil {
		t.Fatal(err)
	}
	h.stage.Sync()
	a, _ := h.stage.Instance("a")
	if got := a.Config().(schema.WaveConfig).Amplitude; got != 120 {
		t.Errorf("amplitude = %v", got)
	}
}

func TestSandboxSpecs(t *testing.T) {
	stack := sandbox.DefaultStack(rand.New(rand.NewSource(2)))
	layers := stack.Layers()
	stack.SetVisible(layers[1].ID, false)

	specs := sandboxSpecs(stack.Layers(), sandbox.Card, 1280, 720)
	if len(specs) != 2 {
		t.Fatalf("specs = %d", len(specs))
	}
	want := sandbox.Frame(sandbox.Card, 1280, 720)
	for _, sp := range specs {
		if sp.Rect != want {
			t.Errorf("%s rect = %+v, want %+v", sp.ID, sp.Rect, want)
		}
	}
	if !specs[0].Active || specs[1].Active {
		t.Errorf("active = %v %v", specs[0].Active, specs[1].Active)
	}
	if specs[0].Kind != schema.GradientMesh {
		t.Errorf("bottom layer = %s", specs[0].Kind)
	}
}

func TestSiteSpecs(t *testing.T) {
	site := sandbox.NewSite()
	specs := siteSpecs(site, 1000, config.TopBarHeight+500)
	if len(specs) != len(site.Sections) {
		t.Fatalf("specs = %d", len(specs))
	}
	first := specs[0]
	if first.Rect != (sandbox.Rect{X: 0, Y: config.TopBarHeight, W: 1000, H: 500}) || !first.Active {
		t.Errorf("first = %+v active=%v", first.Rect, first.Active)
	}
	if specs[len(specs)-1].Active {
		t.Error("footer should be paused before scrolling")
	}

	site.ScrollBy(10000)
	specs = siteSpecs(site, 1000, config.TopBarHeight+500)
	if specs[0].Active || !specs[len(specs)-1].Active {
		t.Error("scrolling to the end should swap the active sections")
	}
	for _, sp := range specs {
		if sp.Kind == schema.SineWaves && sp.Tracker == nil {
			t.Error("waves need a parallax tracker")
		}
	}
}

func TestChips(t *testing.T) {
	if got := len(chips(3, 2000)); got != 3 {
		t.Errorf("chips = %d", got)
	}
	rs := chips(50, 600)
	if len(rs) == 0 || len(rs) == 50 {
		t.Fatalf("chips = %d", len(rs))
	}
	last := rs[len(rs)-1]
	if last.X+last.W > 600 {
		t.Errorf("chip overflows: %+v", last)
	}
	if rs[0].X <= config.ButtonX+config.ButtonWidth {
		t.Errorf("first chip overlaps the audio button: %+v", rs[0])
	}
}
