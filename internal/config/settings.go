package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// Settings holds the runtime options chosen on the command line.
type Settings struct {
	LayersPath  string
	InspectAddr string
	Profile     bool
	Unmount     string
	Site        bool
}

var errBadUnmount = errors.New("unmount policy must be preserve or clear")

// DefaultLayersPath returns the layer file location under the user config dir.
// It falls back to the working directory when no config dir is available.
func DefaultLayersPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "layers.json"
	}
	return filepath.Join(dir, "backdrop", "layers.json")
}

// Parse reads settings from args (without the program name).
func Parse(args []string) (Settings, error) {
	var s Settings
	fs := flag.NewFlagSet("backdrop", flag.ContinueOnError)
	fs.StringVar(&s.LayersPath, "layers", DefaultLayersPath(), "path of the persisted sandbox layer stack")
	fs.StringVar(&s.InspectAddr, "inspect", "", "listen address for the websocket inspector (empty disables it)")
	fs.BoolVar(&s.Profile, "profile", false, "log frame statistics once per second")
	fs.StringVar(&s.Unmount, "unmount", "preserve", "what happens to live edits when an effect unmounts: preserve or clear")
	fs.BoolVar(&s.Site, "site", false, "start in site mode instead of the layer sandbox")
	if err := fs.Parse(args); err != nil {
		return Settings{}, err
	}
	if s.Unmount != "preserve" && s.Unmount != "clear" {
		return Settings{}, fmt.Errorf("config: %w (got %q)", errBadUnmount, s.Unmount)
	}
	return s, nil
}
