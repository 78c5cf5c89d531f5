// Package mount binds an effect engine to a drawing surface and keeps it
// in step with the instance registry.
package mount

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/iburimskiy/backdrop/internal/effects/grid"
	"github.com/iburimskiy/backdrop/internal/effects/lavalamp"
	"github.com/iburimskiy/backdrop/internal/effects/mesh"
	"github.com/iburimskiy/backdrop/internal/effects/particles"
	"github.com/iburimskiy/backdrop/internal/effects/shapes"
	"github.com/iburimskiy/backdrop/internal/effects/waves"
	"github.com/iburimskiy/backdrop/internal/frame"
	"github.com/iburimskiy/backdrop/internal/registry"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

var ErrKindMismatch = errors.New("mount: config does not match effect kind")

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Env is what a mount draws on and reports to.
type Env struct {
	// Registry may be nil; the instance then keeps its config locally.
	Registry  *registry.Registry
	Scheduler *frame.Scheduler
	Canvas    surface.Canvas
	// Rand seeds entity placement and generated ids. Nil uses the clock.
	Rand *rand.Rand
	// Tracker feeds wave parallax. Nil pins waves to the surface.
	Tracker func() waves.Placement
}

// Options describe one mounted effect.
type Options struct {
	// ID names the instance. Empty generates "bg-" plus six base36 chars.
	ID        string
	Kind      schema.Kind
	Config    schema.Config
	OnUnmount Policy
}

type engine interface {
	Resize(w, h int)
	Start(s *frame.Scheduler)
	Stop()
	Running() bool
}

type pointer interface {
	UpdateMouse(x, y float64)
}

type pulser interface {
	Pulse(level float64)
}

type releaser interface {
	Release()
}

// Instance is a mounted effect.
type Instance struct {
	env    Env
	id     string
	kind   schema.Kind
	policy Policy
	cfg    schema.Config
	rev    uint64
	eng    engine
	apply  func(schema.Config)
	w, h   int
	sized  bool
}

// NewID returns a fresh instance id.
func NewID(r *rand.Rand) string {
	b := []byte("bg-000000")
	for i := 3; i < len(b); i++ {
		var n int
		if r != nil {
			n = r.Intn(len(idAlphabet))
		} else {
			n = rand.Intn(len(idAlphabet))
		}
		b[i] = idAlphabet[n]
	}
	return string(b)
}

// Mount resolves the effective configuration, builds the engine and
// registers the instance. The registry entry wins over opts.Config, which
// wins over the kind's default. Registration happens once; an existing
// entry is left untouched.
func Mount(env Env, opts Options) (*Instance, error) {
	if !schema.Known(opts.Kind) {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownKind, opts.Kind)
	}
	if opts.Config != nil && opts.Config.Kind() != opts.Kind {
		return nil, fmt.Errorf("%w: %s config for %s", ErrKindMismatch, opts.Config.Kind(), opts.Kind)
	}
	id := opts.ID
	if id == "" {
		id = NewID(env.Rand)
	}

	cfg, err := resolve(env.Registry, id, opts)
	if err != nil {
		return nil, err
	}
	i := &Instance{env: env, id: id, kind: opts.Kind, policy: opts.OnUnmount, cfg: cfg}
	if err := i.build(); err != nil {
		return nil, err
	}
	if env.Registry != nil {
		env.Registry.Register(id, opts.Kind, schema.Clone(cfg))
		i.rev = env.Registry.Revision(id)
	}
	return i, nil
}

func resolve(reg *registry.Registry, id string, opts Options) (schema.Config, error) {
	if reg != nil {
		if inst, ok := reg.Lookup(id); ok {
			if inst.Kind != opts.Kind {
				return nil, fmt.Errorf("%w: %s is registered as %s", ErrKindMismatch, id, inst.Kind)
			}
			return inst.Config, nil
		}
	}
	if opts.Config != nil {
		return schema.Clone(opts.Config), nil
	}
	cfg, _ := schema.Default(opts.Kind)
	return cfg, nil
}

func (i *Instance) build() error {
	env := i.env
	switch c := i.cfg.(type) {
	case schema.ParticleConfig:
		e, err := particles.New(env.Canvas, &c, particles.WithRand(env.Rand))
		if err != nil {
			return err
		}
		i.eng, i.apply = e, func(n schema.Config) { e.UpdateConfig(n.(schema.ParticleConfig)) }
	case schema.WaveConfig:
		e, err := waves.New(env.Canvas, &c, waves.WithTracker(env.Tracker))
		if err != nil {
			return err
		}
		i.eng, i.apply = e, func(n schema.Config) { e.UpdateConfig(n.(schema.WaveConfig)) }
	case schema.LavaLampConfig:
		if c.Motion == schema.MotionBounce {
			if rc, ok := env.Canvas.(surface.Retained); ok {
				e, err := lavalamp.NewBounce(rc, &c, lavalamp.WithRand(env.Rand))
				if err != nil {
					return err
				}
				i.eng, i.apply = e, func(n schema.Config) { e.UpdateConfig(n.(schema.LavaLampConfig)) }
				return nil
			}
			if env.Canvas != nil {
				log.Printf("[mount] %s: surface cannot retain sprites, using buoyant motion", i.id)
			}
		}
		e, err := lavalamp.New(env.Canvas, &c, lavalamp.WithRand(env.Rand))
		if err != nil {
			return err
		}
		i.eng, i.apply = e, func(n schema.Config) { e.UpdateConfig(n.(schema.LavaLampConfig)) }
	case schema.GradientMeshConfig:
		e, err := mesh.New(env.Canvas, &c)
		if err != nil {
			return err
		}
		i.eng, i.apply = e, func(n schema.Config) { e.UpdateConfig(n.(schema.GradientMeshConfig)) }
	case schema.GridConfig:
		e, err := grid.New(env.Canvas, &c)
		if err != nil {
			return err
		}
		i.eng, i.apply = e, func(n schema.Config) { e.UpdateConfig(n.(schema.GridConfig)) }
	case schema.ShapeConfig:
		e, err := shapes.New(env.Canvas, &c)
		if err != nil {
			return err
		}
		i.eng, i.apply = e, func(n schema.Config) { e.UpdateConfig(n.(schema.ShapeConfig)) }
	default:
		return fmt.Errorf("%w: %T", schema.ErrUnknownKind, i.cfg)
	}
	return nil
}

func (i *Instance) ID() string { return i.id }

func (i *Instance) Kind() schema.Kind { return i.kind }

// Config returns a copy of the effective configuration.
func (i *Instance) Config() schema.Config { return schema.Clone(i.cfg) }

// Resize forwards new surface dimensions to the engine.
func (i *Instance) Resize(w, h int) {
	i.w, i.h, i.sized = w, h, true
	i.eng.Resize(w, h)
}

// UpdateConfig merges patch into the configuration. With a registry entry
// the change goes through the registry, so every other reader sees it;
// otherwise it is merged locally. A rejected patch leaves the
// configuration as it was.
func (i *Instance) UpdateConfig(patch schema.Patch) error {
	if reg := i.env.Registry; reg != nil && reg.Has(i.id) {
		if err := reg.UpdateConfig(i.id, patch); err != nil {
			return err
		}
		i.Sync()
		return nil
	}
	next, err := schema.Merge(i.cfg, patch)
	if err != nil {
		return fmt.Errorf("mount: update %s: %w", i.id, err)
	}
	i.push(next)
	return nil
}

// UpdateMouse forwards the pointer to engines that react to it.
func (i *Instance) UpdateMouse(x, y float64) {
	if p, ok := i.eng.(pointer); ok {
		p.UpdateMouse(x, y)
	}
}

// Pulse forwards the audio level to engines that react to it.
func (i *Instance) Pulse(level float64) {
	if p, ok := i.eng.(pulser); ok {
		p.Pulse(level)
	}
}

// Start runs the engine on the environment's scheduler. Repeated calls
// keep a single loop.
func (i *Instance) Start() { i.eng.Start(i.env.Scheduler) }

func (i *Instance) Stop() { i.eng.Stop() }

func (i *Instance) Running() bool { return i.eng.Running() }

// Sync pushes the registry's configuration to the engine when it changed
// since the last call. Call it once per frame.
func (i *Instance) Sync() {
	reg := i.env.Registry
	if reg == nil {
		return
	}
	inst, ok := reg.Lookup(i.id)
	if !ok || inst.Revision == i.rev {
		return
	}
	i.rev = inst.Revision
	i.push(inst.Config)
}

// push hands cfg to the engine. Switching the lava lamp motion model
// swaps the engine, keeping its size and run state.
func (i *Instance) push(cfg schema.Config) {
	prev := i.cfg
	i.cfg = cfg
	if motion(prev) == motion(cfg) {
		i.apply(cfg)
		return
	}
	old := i.eng
	running := old.Running()
	old.Stop()
	if r, ok := old.(releaser); ok {
		r.Release()
	}
	if err := i.build(); err != nil {
		log.Printf("[mount] %s: rebuild failed, keeping previous engine: %v", i.id, err)
		i.cfg = prev
		i.eng = old
		if running {
			old.Start(i.env.Scheduler)
		}
		return
	}
	if i.sized {
		i.eng.Resize(i.w, i.h)
	}
	if running {
		i.eng.Start(i.env.Scheduler)
	}
}

func motion(cfg schema.Config) string {
	if c, ok := cfg.(schema.LavaLampConfig); ok && c.Motion == schema.MotionBounce {
		return schema.MotionBounce
	}
	return schema.MotionBuoyant
}

// Unmount stops the engine, frees its retained resources and applies the
// unmount policy to the registry entry.
func (i *Instance) Unmount() {
	i.eng.Stop()
	if r, ok := i.eng.(releaser); ok {
		r.Release()
	}
	if i.policy == Clear && i.env.Registry != nil {
		i.env.Registry.Unregister(i.id)
	}
}
