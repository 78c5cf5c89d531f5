package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/iburimskiy/backdrop/internal/palette"
)

// Patch is a JSON-shaped partial configuration. Keys that are present
// overwrite, absent keys are preserved.
type Patch map[string]any

var (
	ErrUnknownKind = errors.New("schema: unknown effect kind")
	ErrMalformed   = errors.New("schema: malformed configuration")
)

// Decode parses a JSON object into the config variant for kind. Keys missing
// from data keep the kind's default value; unknown keys are ignored.
func Decode(kind Kind, data []byte) (Config, error) {
	base, ok := Default(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return decodeOnto(base, data)
}

// Encode renders cfg as indented JSON.
func Encode(cfg Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrMalformed)
	}
	return json.MarshalIndent(cfg, "", "  ")
}

// ToPatch flattens cfg into its JSON key/value form.
func ToPatch(cfg Config) (Patch, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("schema: encode %s: %w", cfg.Kind(), err)
	}
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("schema: flatten %s: %w", cfg.Kind(), err)
	}
	return p, nil
}

// Merge applies patch on top of cfg and returns the result. cfg itself is
// never modified. Values that do not fit the field type, colors that do
// not parse, and select values outside the declared options are rejected
// with ErrMalformed.
func Merge(cfg Config, patch Patch) (Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrMalformed)
	}
	if len(patch) == 0 {
		return cfg.clone(), nil
	}
	base, err := ToPatch(cfg)
	if err != nil {
		return nil, err
	}
	prior := make(Patch, len(patch))
	for k, v := range patch {
		prior[k] = base[k]
		base[k] = v
	}
	data, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	zero, err := zeroOf(cfg.Kind())
	if err != nil {
		return nil, err
	}
	out, err := decodeOnto(zero, data)
	if err != nil {
		return nil, err
	}
	if err := validate(out, patch, prior); err != nil {
		return nil, err
	}
	return out, nil
}

func zeroOf(kind Kind) (Config, error) {
	switch kind {
	case ParticleNetwork:
		return ParticleConfig{}, nil
	case SineWaves:
		return WaveConfig{}, nil
	case LavaLamp:
		return LavaLampConfig{}, nil
	case GradientMesh:
		return GradientMeshConfig{}, nil
	case RetroGrid:
		return GridConfig{}, nil
	case FloatingShapes:
		return ShapeConfig{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func decodeOnto(base Config, data []byte) (Config, error) {
	switch c := base.(type) {
	case ParticleConfig:
		return unmarshalInto(c, data)
	case WaveConfig:
		return unmarshalInto(c, data)
	case LavaLampConfig:
		return unmarshalInto(c, data)
	case GradientMeshConfig:
		return unmarshalInto(c, data)
	case GridConfig:
		return unmarshalInto(c, data)
	case ShapeConfig:
		return unmarshalInto(c, data)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownKind, base)
}

func unmarshalInto[T Config](v T, data []byte) (Config, error) {
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, v.Kind(), err)
	}
	return v, nil
}

// validate checks only the keys the patch touched, so a config that came in
// with loose values from its embedder stays editable. A number outside its
// field's range is accepted only when it repeats the stored value.
func validate(cfg Config, patch, prior Patch) error {
	flat, err := ToPatch(cfg)
	if err != nil {
		return err
	}
	for _, f := range fields[cfg.Kind()] {
		if _, touched := patch[f.Key]; !touched {
			continue
		}
		switch f.Control {
		case ControlColor:
			s, _ := flat[f.Key].(string)
			if !palette.Valid(s) {
				return fmt.Errorf("%w: %s: invalid color %q", ErrMalformed, f.Key, s)
			}
		case ControlColorArray:
			list, _ := flat[f.Key].([]any)
			for i, v := range list {
				s, _ := v.(string)
				if !palette.Valid(s) {
					return fmt.Errorf("%w: %s[%d]: invalid color %q", ErrMalformed, f.Key, i, s)
				}
			}
		case ControlNumber:
			v, ok := number(patch[f.Key])
			if !ok {
				return fmt.Errorf("%w: %s: %v is not a number", ErrMalformed, f.Key, patch[f.Key])
			}
			if f.Max > f.Min && (v < f.Min || v > f.Max) {
				if was, ok := number(prior[f.Key]); !ok || was != v {
					return fmt.Errorf("%w: %s: %v outside [%v, %v]", ErrMalformed, f.Key, v, f.Min, f.Max)
				}
			}
		case ControlBoolean:
			if _, ok := patch[f.Key].(bool); !ok {
				return fmt.Errorf("%w: %s: %v is not a boolean", ErrMalformed, f.Key, patch[f.Key])
			}
		case ControlSelect:
			s, _ := flat[f.Key].(string)
			if !slices.Contains(f.Options, s) {
				return fmt.Errorf("%w: %s: %q is not one of %v", ErrMalformed, f.Key, s, f.Options)
			}
		}
	}
	return nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
