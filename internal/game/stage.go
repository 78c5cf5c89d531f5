package game

import (
	"log"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/backdrop/internal/effects/waves"
	"github.com/iburimskiy/backdrop/internal/frame"
	"github.com/iburimskiy/backdrop/internal/mount"
	"github.com/iburimskiy/backdrop/internal/registry"
	"github.com/iburimskiy/backdrop/internal/sandbox"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

// offscreen is the pointer position reported while the cursor is outside
// a layer.
const offscreen = -9999

// Spec is one layer the stage should show.
type Spec struct {
	ID     string
	Kind   schema.Kind
	Config schema.Config
	Rect   sandbox.Rect
	// Active layers run and draw; inactive ones stay mounted but idle.
	Active  bool
	Tracker func() waves.Placement
}

type layer struct {
	inst   *mount.Instance
	canvas surface.Canvas
	rect   sandbox.Rect
	active bool
}

// Stage keeps one mounted instance per Spec, each drawing on its own
// offscreen surface.
type Stage struct {
	reg        *registry.Registry
	sched      *frame.Scheduler
	rng        *rand.Rand
	policy     mount.Policy
	newSurface func(w, h int) surface.Canvas

	layers []*layer
	byID   map[string]*layer
}

func NewStage(reg *registry.Registry, sched *frame.Scheduler, rng *rand.Rand, policy mount.Policy, newSurface func(w, h int) surface.Canvas) *Stage {
	return &Stage{
		reg:        reg,
		sched:      sched,
		rng:        rng,
		policy:     policy,
		newSurface: newSurface,
		byID:       make(map[string]*layer),
	}
}

// Apply mounts new specs, unmounts layers no longer wanted and updates the
// geometry and run state of the rest. Draw order follows specs. A spec
// that fails to mount is logged and skipped; the first error is returned.
func (s *Stage) Apply(specs []Spec) error {
	var firstErr error
	keep := make(map[string]bool, len(specs))
	order := make([]*layer, 0, len(specs))
	for _, sp := range specs {
		keep[sp.ID] = true
		l, ok := s.byID[sp.ID]
		if ok && l.inst.Kind() != sp.Kind {
			s.unmount(sp.ID)
			ok = false
		}
		if !ok {
			var err error
			if l, err = s.mount(sp); err != nil {
				log.Printf("[stage] mount %s: %v", sp.ID, err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
		}
		s.place(l, sp.Rect)
		if sp.Active != l.active || sp.Active != l.inst.Running() {
			l.active = sp.Active
			if sp.Active {
				l.inst.Start()
			} else {
				l.inst.Stop()
			}
		}
		order = append(order, l)
	}
	for id := range s.byID {
		if !keep[id] {
			s.unmount(id)
		}
	}
	s.layers = order
	return firstErr
}

func (s *Stage) mount(sp Spec) (*layer, error) {
	c := s.newSurface(sp.Rect.W, sp.Rect.H)
	inst, err := mount.Mount(mount.Env{
		Registry:  s.reg,
		Scheduler: s.sched,
		Canvas:    c,
		Rand:      s.rng,
		Tracker:   sp.Tracker,
	}, mount.Options{ID: sp.ID, Kind: sp.Kind, Config: sp.Config, OnUnmount: s.policy})
	if err != nil {
		return nil, err
	}
	l := &layer{inst: inst, canvas: c}
	inst.Resize(sp.Rect.W, sp.Rect.H)
	l.rect = sp.Rect
	s.byID[sp.ID] = l
	return l, nil
}

// place moves l to r. The canvas is sized by the engine's own Resize, which
// may defer the change to its next frame.
func (s *Stage) place(l *layer, r sandbox.Rect) {
	if r.W != l.rect.W || r.H != l.rect.H {
		l.inst.Resize(r.W, r.H)
	}
	l.rect = r
}

func (s *Stage) unmount(id string) {
	if l, ok := s.byID[id]; ok {
		l.inst.Unmount()
		l.canvas.SetSize(0, 0)
		delete(s.byID, id)
	}
}

// Sync pulls registry edits into every layer.
func (s *Stage) Sync() {
	for _, l := range s.layers {
		l.inst.Sync()
	}
}

// Pointer forwards the cursor in window coordinates to each layer in its
// own coordinates.
func (s *Stage) Pointer(x, y int, inside bool) {
	for _, l := range s.layers {
		if inside && l.rect.Contains(x, y) {
			l.inst.UpdateMouse(float64(x-l.rect.X), float64(y-l.rect.Y))
		} else {
			l.inst.UpdateMouse(offscreen, offscreen)
		}
	}
}

func (s *Stage) Pulse(level float64) {
	for _, l := range s.layers {
		l.inst.Pulse(level)
	}
}

// Instance returns the mounted instance for id.
func (s *Stage) Instance(id string) (*mount.Instance, bool) {
	l, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return l.inst, true
}

// Len returns the number of mounted layers.
func (s *Stage) Len() int { return len(s.byID) }

// Draw composites the active layers onto screen in order.
func (s *Stage) Draw(screen *ebiten.Image) {
	for _, l := range s.layers {
		if !l.active {
			continue
		}
		img, ok := l.canvas.(*surface.Image)
		if !ok {
			continue
		}
		src := img.Present()
		if src == nil {
			continue
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(l.rect.X), float64(l.rect.Y))
		screen.DrawImage(src, op)
	}
}

// Close unmounts every layer.
func (s *Stage) Close() {
	for id := range s.byID {
		s.unmount(id)
	}
	s.layers = nil
}
