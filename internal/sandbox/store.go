package sandbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
)

// Load reads a stack saved by Save. A missing file yields the default
// stack; an unreadable one is an error.
func Load(path string, r *rand.Rand) (*Stack, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultStack(r), nil
	}
	if err != nil {
		return nil, fmt.Errorf("sandbox: read %s: %w", path, err)
	}
	var layers []Layer
	if err := json.Unmarshal(data, &layers); err != nil {
		return nil, fmt.Errorf("sandbox: parse %s: %w", path, err)
	}
	s := NewStack(r)
	s.layers = layers
	if len(layers) > 0 {
		s.selected = layers[0].ID
	}
	return s, nil
}

// Save writes the stack as a JSON array of layers. The file is replaced
// atomically.
func (s *Stack) Save(path string) error {
	data, err := json.MarshalIndent(s.layers, "", "  ")
	if err != nil {
		return fmt.Errorf("sandbox: encode layers: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sandbox: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("sandbox: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("sandbox: replace %s: %w", path, err)
	}
	return nil
}
