// Package sandbox is the layer editor's document: an ordered stack of
// effect layers with persistence, viewport framing and code export, plus
// the fixed multi-section site page.
package sandbox

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"slices"

	"github.com/iburimskiy/backdrop/internal/mount"
	"github.com/iburimskiy/backdrop/internal/registry"
	"github.com/iburimskiy/backdrop/internal/schema"
)

// Layer is one effect in the stack. Later layers draw on top.
type Layer struct {
	ID      string        `json:"id"`
	Kind    schema.Kind   `json:"type"`
	Config  schema.Config `json:"config"`
	Visible bool          `json:"visible"`
}

func (l *Layer) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string          `json:"id"`
		Kind    schema.Kind     `json:"type"`
		Config  json.RawMessage `json:"config"`
		Visible bool            `json:"visible"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var cfg schema.Config
	var err error
	if len(raw.Config) == 0 || string(raw.Config) == "null" {
		var ok bool
		if cfg, ok = schema.Default(raw.Kind); !ok {
			err = fmt.Errorf("%w: %q", schema.ErrUnknownKind, raw.Kind)
		}
	} else {
		cfg, err = schema.Decode(raw.Kind, raw.Config)
	}
	if err != nil {
		return fmt.Errorf("sandbox: layer %s: %w", raw.ID, err)
	}
	*l = Layer{ID: raw.ID, Kind: raw.Kind, Config: cfg, Visible: raw.Visible}
	return nil
}

// Stack is the ordered layer list and the current selection.
type Stack struct {
	layers   []Layer
	selected string
	rng      *rand.Rand
}

// NewStack returns an empty stack. r generates layer ids; nil uses the
// shared source.
func NewStack(r *rand.Rand) *Stack {
	return &Stack{rng: r}
}

// DefaultStack is the starter scene: a gradient mesh under a transparent
// particle network, with the mesh selected.
func DefaultStack(r *rand.Rand) *Stack {
	s := NewStack(r)
	mesh, _ := s.Add(schema.GradientMesh)
	s.Add(schema.ParticleNetwork)
	s.Select(mesh.ID)
	return s
}

// Add appends a layer of kind with its default configuration and selects
// it. Any layer added above another gets a transparent background so the
// layers below stay visible.
func (s *Stack) Add(kind schema.Kind) (Layer, error) {
	cfg, ok := schema.Default(kind)
	if !ok {
		return Layer{}, fmt.Errorf("%w: %q", schema.ErrUnknownKind, kind)
	}
	if len(s.layers) > 0 {
		if _, has := schema.Lookup(kind, "backgroundColor"); has {
			if next, err := schema.Merge(cfg, schema.Patch{"backgroundColor": "transparent"}); err == nil {
				cfg = next
			}
		}
	}
	l := Layer{ID: mount.NewID(s.rng), Kind: kind, Config: cfg, Visible: true}
	s.layers = append(s.layers, l)
	s.selected = l.ID
	return l, nil
}

// Remove drops the layer, clearing the selection if it was selected.
func (s *Stack) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.layers = slices.Delete(s.layers, i, i+1)
	if s.selected == id {
		s.selected = ""
	}
	return true
}

func (s *Stack) SetVisible(id string, visible bool) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.layers[i].Visible = visible
	return true
}

// Select marks id as the edited layer. Unknown ids clear the selection.
func (s *Stack) Select(id string) {
	if s.index(id) < 0 {
		id = ""
	}
	s.selected = id
}

func (s *Stack) Selected() (Layer, bool) {
	i := s.index(s.selected)
	if i < 0 {
		return Layer{}, false
	}
	return s.layers[i], true
}

// Move shifts a layer delta places up (positive) or down the stack,
// stopping at either end.
func (s *Stack) Move(id string, delta int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	j := max(0, min(len(s.layers)-1, i+delta))
	if i == j {
		return false
	}
	l := s.layers[i]
	s.layers = slices.Delete(s.layers, i, i+1)
	s.layers = slices.Insert(s.layers, j, l)
	return true
}

// SetConfig replaces a layer's configuration.
func (s *Stack) SetConfig(id string, cfg schema.Config) bool {
	i := s.index(id)
	if i < 0 || cfg == nil || cfg.Kind() != s.layers[i].Kind {
		return false
	}
	s.layers[i].Config = schema.Clone(cfg)
	return true
}

// Capture copies the live configuration of every layer from reg.
func (s *Stack) Capture(reg *registry.Registry) {
	for i := range s.layers {
		if inst, ok := reg.Lookup(s.layers[i].ID); ok && inst.Kind == s.layers[i].Kind {
			s.layers[i].Config = inst.Config
		}
	}
}

// Layers returns a copy of the stack, bottom first.
func (s *Stack) Layers() []Layer {
	out := make([]Layer, len(s.layers))
	for i, l := range s.layers {
		l.Config = schema.Clone(l.Config)
		out[i] = l
	}
	return out
}

func (s *Stack) Len() int { return len(s.layers) }

func (s *Stack) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.layers, func(l Layer) bool { return l.ID == id })
}
