package sandbox

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/iburimskiy/backdrop/internal/schema"
)

var kindIdents = map[schema.Kind]string{
	schema.ParticleNetwork: "ParticleNetwork",
	schema.SineWaves:       "SineWaves",
	schema.LavaLamp:        "LavaLamp",
	schema.GradientMesh:    "GradientMesh",
	schema.RetroGrid:       "RetroGrid",
	schema.FloatingShapes:  "FloatingShapes",
}

// Snippet renders Go source that mounts the layer with its current
// configuration, ready to paste into an embedding program.
func Snippet(l Layer) (string, error) {
	ident, ok := kindIdents[l.Kind]
	if !ok || l.Config == nil {
		return "", fmt.Errorf("%w: %q", schema.ErrUnknownKind, l.Kind)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "inst, err := mount.Mount(env, mount.Options{\n")
	fmt.Fprintf(&b, "ID: %q,\n", l.ID)
	fmt.Fprintf(&b, "Kind: schema.%s,\n", ident)
	fmt.Fprintf(&b, "Config: %#v,\n", l.Config)
	fmt.Fprintf(&b, "})\nif err != nil {\nreturn err\n}\ninst.Start()\n")

	src, err := format.Source([]byte(b.String()))
	if err != nil {
		return "", fmt.Errorf("sandbox: format snippet: %w", err)
	}
	return string(src), nil
}
