package mount

import (
	"errors"
	"math/rand"
	"regexp"
	"testing"

	"github.com/iburimskiy/backdrop/internal/effects/lavalamp"
	"github.com/iburimskiy/backdrop/internal/effects/particles"
	"github.com/iburimskiy/backdrop/internal/frame"
	"github.com/iburimskiy/backdrop/internal/registry"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

func newEnv() (Env, *surface.Recorder) {
	rec := surface.NewRecorder(640, 480)
	return Env{
		Registry:  registry.New(),
		Scheduler: frame.NewScheduler(),
		Canvas:    rec,
		Rand:      rand.New(rand.NewSource(3)),
	}, rec
}

func TestGeneratedID(t *testing.T) {
	env, _ := newEnv()
	inst, err := Mount(env, Options{Kind: schema.RetroGrid})
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^bg-[0-9a-z]{6}$`).MatchString(inst.ID()) {
		t.Errorf("id = %q", inst.ID())
	}
	if !env.Registry.Has(inst.ID()) {
		t.Error("generated id not registered")
	}
}

func TestResolutionOrder(t *testing.T) {
	env, _ := newEnv()
	props := schema.GridConfig{GridColor: "#111111", BackgroundColor: "#000", AnimationSpeed: 2}

	t.Run("default", func(t *testing.T) {
		inst, err := Mount(env, Options{ID: "a", Kind: schema.RetroGrid})
		if err != nil {
			t.Fatal(err)
		}
		def, _ := schema.Default(schema.RetroGrid)
		if inst.Config() != def {
			t.Errorf("config = %+v, want default", inst.Config())
		}
	})
	t.Run("props", func(t *testing.T) {
		inst, err := Mount(env, Options{ID: "b", Kind: schema.RetroGrid, Config: props})
		if err != nil {
			t.Fatal(err)
		}
		if inst.Config() != props {
			t.Errorf("config = %+v, want props", inst.Config())
		}
	})
	t.Run("registry wins", func(t *testing.T) {
		if err := env.Registry.UpdateConfig("b", schema.Patch{"gridColor": "#222222"}); err != nil {
			t.Fatal(err)
		}
		inst, err := Mount(env, Options{ID: "b", Kind: schema.RetroGrid, Config: props})
		if err != nil {
			t.Fatal(err)
		}
		if got := inst.Config().(schema.GridConfig).GridColor; got != "#222222" {
			t.Errorf("gridColor = %s, want the registry's #222222", got)
		}
		if env.Registry.Revision("b") != 2 {
			t.Errorf("remount re-registered: revision %d", env.Registry.Revision("b"))
		}
	})
}

func TestMountErrors(t *testing.T) {
	env, _ := newEnv()
	if _, err := Mount(env, Options{Kind: "Starfield"}); !errors.Is(err, schema.ErrUnknownKind) {
		t.Errorf("unknown kind err = %v", err)
	}
	if _, err := Mount(env, Options{Kind: schema.RetroGrid, Config: schema.WaveConfig{}}); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("mismatch err = %v", err)
	}
	env.Registry.Register("x", schema.SineWaves, nil)
	if _, err := Mount(env, Options{ID: "x", Kind: schema.RetroGrid}); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("registered kind err = %v", err)
	}

	env.Canvas = nil
	if _, err := Mount(env, Options{ID: "y", Kind: schema.ParticleNetwork}); !errors.Is(err, surface.ErrNoSurface) {
		t.Errorf("nil canvas err = %v", err)
	}
	if env.Registry.Has("y") {
		t.Error("failed mount left a registry entry")
	}
}

func TestUpdateGoesThroughRegistry(t *testing.T) {
	env, _ := newEnv()
	inst, err := Mount(env, Options{ID: "p", Kind: schema.ParticleNetwork})
	if err != nil {
		t.Fatal(err)
	}
	if err := inst.UpdateConfig(schema.Patch{"particleCount": 12}); err != nil {
		t.Fatal(err)
	}
	got, _ := env.Registry.Lookup("p")
	if got.Config.(schema.ParticleConfig).ParticleCount != 12 {
		t.Error("registry not updated")
	}
	eng := inst.Engine().(*particles.Engine)
	if n := len(eng.Particles()); n != 12 {
		t.Errorf("engine particles = %d, want 12", n)
	}

	if err := inst.UpdateConfig(schema.Patch{"particleColor": "nope"}); !errors.Is(err, schema.ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
	if inst.Config().(schema.ParticleConfig).ParticleColor != "#64c8ff" {
		t.Error("rejected patch changed the config")
	}
}

func TestSyncPicksUpExternalEdits(t *testing.T) {
	env, _ := newEnv()
	inst, _ := Mount(env, Options{ID: "p", Kind: schema.ParticleNetwork})
	eng := inst.Engine().(*particles.Engine)
	before := eng.Particles()

	_ = env.Registry.UpdateConfig("p", schema.Patch{"lineColor": "#ffffff"})
	if eng.Config().LineColor == "#ffffff" {
		t.Fatal("engine changed before Sync")
	}
	inst.Sync()
	if eng.Config().LineColor != "#ffffff" {
		t.Error("Sync did not push the registry config")
	}
	after := eng.Particles()
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("cosmetic edit moved particles")
		}
	}
}

func TestLocalConfigWithoutRegistry(t *testing.T) {
	env, _ := newEnv()
	env.Registry = nil
	inst, err := Mount(env, Options{Kind: schema.SineWaves})
	if err != nil {
		t.Fatal(err)
	}
	if err := inst.UpdateConfig(schema.Patch{"speed": 3}); err != nil {
		t.Fatal(err)
	}
	if got := inst.Config().(schema.WaveConfig).Speed; got != 3 {
		t.Errorf("speed = %v, want 3", got)
	}
	inst.Sync()
}

func TestLavaMotionSwapsEngine(t *testing.T) {
	env, rec := newEnv()
	inst, err := Mount(env, Options{ID: "lava", Kind: schema.LavaLamp})
	if err != nil {
		t.Fatal(err)
	}
	inst.Resize(300, 200)
	inst.Start()
	if _, ok := inst.Engine().(*lavalamp.Engine); !ok {
		t.Fatalf("engine = %T, want buoyant", inst.Engine())
	}

	if err := inst.UpdateConfig(schema.Patch{"motion": "bounce"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := inst.Engine().(*lavalamp.Bounce); !ok {
		t.Fatalf("engine = %T, want bounce", inst.Engine())
	}
	if len(rec.Sprites) != 7 {
		t.Errorf("sprites = %d, want 7", len(rec.Sprites))
	}
	if !inst.Running() || env.Scheduler.Pending() != 1 {
		t.Errorf("swap lost the loop: running %v pending %d", inst.Running(), env.Scheduler.Pending())
	}

	if err := inst.UpdateConfig(schema.Patch{"motion": "buoyant"}); err != nil {
		t.Fatal(err)
	}
	if len(rec.Sprites) != 0 {
		t.Error("sprites survived the switch back")
	}
	if env.Scheduler.Pending() != 1 {
		t.Errorf("pending = %d, want 1", env.Scheduler.Pending())
	}
}

func TestStartIsIdempotent(t *testing.T) {
	env, rec := newEnv()
	inst, _ := Mount(env, Options{Kind: schema.GradientMesh})
	inst.Start()
	inst.Start()
	env.Scheduler.Tick(0)
	if n := rec.Count("clear"); n != 1 {
		t.Errorf("frames = %d, want 1", n)
	}
}

func TestUnmountPolicy(t *testing.T) {
	env, _ := newEnv()
	keep, _ := Mount(env, Options{ID: "keep", Kind: schema.RetroGrid})
	drop, _ := Mount(env, Options{ID: "drop", Kind: schema.RetroGrid, OnUnmount: Clear})
	keep.Start()
	drop.Start()
	keep.Unmount()
	drop.Unmount()
	if !env.Registry.Has("keep") {
		t.Error("preserve policy removed the entry")
	}
	if env.Registry.Has("drop") {
		t.Error("clear policy kept the entry")
	}
	if env.Scheduler.Pending() != 0 {
		t.Errorf("pending = %d after unmount", env.Scheduler.Pending())
	}
}

func TestParseUnmountPolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": Preserve, "preserve": Preserve, "Clear": Clear} {
		got, err := ParseUnmountPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseUnmountPolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseUnmountPolicy("forget"); !errors.Is(err, ErrBadPolicy) {
		t.Errorf("err = %v", err)
	}
}
