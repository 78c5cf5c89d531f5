// Package registry is the runtime table of mounted effect instances. It is
// the single source of truth that both the renderers and the editors read
// and write: renderers resolve their configuration from it every frame and
// editors merge-update it.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/iburimskiy/backdrop/internal/schema"
)

var ErrInvalidJSON = errors.New("registry: invalid config JSON")

// Instance is a snapshot of one registered effect.
type Instance struct {
	ID       string        `json:"id"`
	Kind     schema.Kind   `json:"type"`
	Config   schema.Config `json:"config"`
	Revision uint64        `json:"revision"`
}

type entry struct {
	inst  Instance
	order uint64
}

// Registry maps instance ids to their kind and current configuration.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	seq       uint64
	listeners []func()
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds id with its initial configuration. If id is already present
// nothing changes: the first registration wins so a remounting embedder
// cannot clobber live edits with its stale initial props. It reports
// whether a new entry was created. A nil initial configuration falls back
// to the kind's default.
func (r *Registry) Register(id string, kind schema.Kind, initial schema.Config) bool {
	if initial == nil {
		initial, _ = schema.Default(kind)
	}
	r.mu.Lock()
	if _, ok := r.entries[id]; ok {
		r.mu.Unlock()
		return false
	}
	r.seq++
	r.entries[id] = &entry{
		inst:  Instance{ID: id, Kind: kind, Config: schema.Clone(initial), Revision: 1},
		order: r.seq,
	}
	r.mu.Unlock()
	r.notify()
	return true
}

// Unregister removes id. Unknown ids are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if ok {
		r.notify()
	}
}

// UpdateConfig shallow-merges patch into the stored configuration. An
// absent id is not an error: the instance may have been unregistered
// between an editor's snapshot and the user's edit. A malformed patch is
// rejected and the stored configuration is left as it was.
func (r *Registry) UpdateConfig(id string, patch schema.Patch) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	next, err := schema.Merge(e.inst.Config, patch)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("registry: update %s: %w", id, err)
	}
	e.inst.Config = next
	e.inst.Revision++
	r.mu.Unlock()
	r.notify()
	return nil
}

// Lookup returns a copy of the instance registered under id.
func (r *Registry) Lookup(id string) (Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return Instance{}, false
	}
	return e.copy(), true
}

// Revision returns the mutation counter of id, or 0 when absent.
func (r *Registry) Revision(id string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[id]; ok {
		return e.inst.Revision
	}
	return 0
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Instances returns every registered instance in registration order.
func (r *Registry) Instances() []Instance {
	r.mu.RLock()
	list := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		list = append(list, e)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].order < list[j].order })
	out := make([]Instance, len(list))
	for i, e := range list {
		out[i] = e.copy()
	}
	return out
}

// Export renders the configuration of id as indented JSON.
func (r *Registry) Export(id string) ([]byte, error) {
	inst, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("registry: export: unknown instance %q", id)
	}
	return schema.Encode(inst.Config)
}

// Import parses data as a JSON object and merge-updates id with it.
// Malformed JSON is rejected and the prior configuration retained.
func (r *Registry) Import(id string, data []byte) error {
	var patch schema.Patch
	if err := json.Unmarshal(data, &patch); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return r.UpdateConfig(id, patch)
}

// Snapshot renders every instance as a JSON array of {id,type,config}.
func (r *Registry) Snapshot() ([]byte, error) {
	return json.Marshal(r.Instances())
}

// Subscribe registers fn to run after every accepted mutation. Listeners
// run on the mutating goroutine, outside the registry lock.
func (r *Registry) Subscribe(fn func()) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Registry) notify() {
	r.mu.RLock()
	listeners := make([]func(), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

func (e *entry) copy() Instance {
	inst := e.inst
	inst.Config = schema.Clone(inst.Config)
	return inst
}
