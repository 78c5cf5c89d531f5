// Package schema holds the per-effect configuration variants, the editable
// field descriptors an editor renders for each of them, and the stock
// defaults used when an effect is mounted without configuration.
package schema

// Kind names an effect family. The value doubles as the schema lookup key
// and as the "type" reported by the instance registry.
type Kind string

const (
	ParticleNetwork Kind = "Particle Network"
	SineWaves       Kind = "Sine Waves"
	LavaLamp        Kind = "Lava Lamp"
	GradientMesh    Kind = "Gradient Mesh"
	RetroGrid       Kind = "Retro Grid"
	FloatingShapes  Kind = "Floating Shapes"
)

var kinds = []Kind{ParticleNetwork, GradientMesh, RetroGrid, SineWaves, FloatingShapes, LavaLamp}

// Kinds lists every known effect kind in editor order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Known reports whether k is a registered effect kind.
func Known(k Kind) bool {
	for _, kk := range kinds {
		if kk == k {
			return true
		}
	}
	return false
}

// Config is implemented by exactly one struct per Kind.
type Config interface {
	Kind() Kind
	clone() Config
}

// Lava lamp motion models.
const (
	MotionBuoyant = "buoyant"
	MotionBounce  = "bounce"
)

type ParticleConfig struct {
	ParticleCount          int     `json:"particleCount" jsonschema:"title=Particle Count,minimum=0"`
	ConnectionDistance     float64 `json:"connectionDistance" jsonschema:"title=Link Distance,minimum=0"`
	MouseDistance          float64 `json:"mouseDistance" jsonschema:"title=Mouse Radius,minimum=0"`
	ParticleColor          string  `json:"particleColor" jsonschema:"title=Dot Color"`
	LineColor              string  `json:"lineColor" jsonschema:"title=Line Color"`
	BaseSpeed              float64 `json:"baseSpeed" jsonschema:"title=Base Speed,minimum=0"`
	InteractionStrength    float64 `json:"interactionStrength" jsonschema:"title=Push Strength,minimum=0"`
	Resistance             float64 `json:"resistance" jsonschema:"title=Friction,minimum=0,maximum=1"`
	EnableMouseInteraction bool    `json:"enableMouseInteraction" jsonschema:"title=Mouse Interaction"`
	WrapAround             bool    `json:"wrapAround" jsonschema:"title=Wrap Edges"`
	BackgroundColor        string  `json:"backgroundColor" jsonschema:"title=Background Color"`
}

func (ParticleConfig) Kind() Kind { return ParticleNetwork }

func (c ParticleConfig) clone() Config { return c }

type WaveConfig struct {
	ColorStart string  `json:"colorStart" jsonschema:"title=Gradient Top"`
	ColorEnd   string  `json:"colorEnd" jsonschema:"title=Gradient Bottom"`
	WaveColor  string  `json:"waveColor" jsonschema:"title=Wave Color"`
	Speed      float64 `json:"speed" jsonschema:"title=Flow Speed"`
	Amplitude  float64 `json:"amplitude" jsonschema:"title=Height"`
	Parallax   float64 `json:"parallax" jsonschema:"title=Parallax,minimum=0,maximum=1"`
}

func (WaveConfig) Kind() Kind { return SineWaves }

func (c WaveConfig) clone() Config { return c }

type LavaLampConfig struct {
	BackgroundColor string   `json:"backgroundColor" jsonschema:"title=Background"`
	Colors          []string `json:"colors" jsonschema:"title=Lava Colors"`
	Speed           float64  `json:"speed" jsonschema:"title=Flow Speed,minimum=0"`
	BlobCount       int      `json:"blobCount" jsonschema:"title=Blob Count,minimum=0"`
	Motion          string   `json:"motion,omitempty" jsonschema:"title=Motion,enum=buoyant,enum=bounce"`
}

func (LavaLampConfig) Kind() Kind { return LavaLamp }

func (c LavaLampConfig) clone() Config {
	c.Colors = cloneStrings(c.Colors)
	return c
}

// MeshItem is one blurred blob of a gradient mesh. Positions and sizes are
// CSS-style lengths ("20%", "30vw", "-1rem", "unset").
type MeshItem struct {
	Color             string  `json:"color" jsonschema:"title=Color"`
	Top               string  `json:"top,omitempty"`
	Left              string  `json:"left,omitempty"`
	Right             string  `json:"right,omitempty"`
	Bottom            string  `json:"bottom,omitempty"`
	Width             string  `json:"width"`
	Height            string  `json:"height"`
	Opacity           float64 `json:"opacity" jsonschema:"minimum=0,maximum=1"`
	AnimationDelay    string  `json:"animationDelay"`
	AnimationDuration string  `json:"animationDuration"`
}

type GradientMeshConfig struct {
	BackgroundColor string     `json:"backgroundColor" jsonschema:"title=Base Color"`
	AnimationSpeed  float64    `json:"animationSpeed" jsonschema:"title=Global Speed (s),minimum=0"`
	Items           []MeshItem `json:"items,omitempty" jsonschema:"title=Blobs"`
	BlobColors      []string   `json:"blobColors,omitempty" jsonschema:"title=Legacy blob colors"`
}

func (GradientMeshConfig) Kind() Kind { return GradientMesh }

func (c GradientMeshConfig) clone() Config {
	if c.Items != nil {
		items := make([]MeshItem, len(c.Items))
		copy(items, c.Items)
		c.Items = items
	}
	c.BlobColors = cloneStrings(c.BlobColors)
	return c
}

type GridConfig struct {
	GridColor       string  `json:"gridColor" jsonschema:"title=Grid Color"`
	BackgroundColor string  `json:"backgroundColor" jsonschema:"title=Sky Color"`
	AnimationSpeed  float64 `json:"animationSpeed" jsonschema:"title=Grid Speed (s),minimum=0"`
}

func (GridConfig) Kind() Kind { return RetroGrid }

func (c GridConfig) clone() Config { return c }

type ShapeConfig struct {
	BackgroundColor string   `json:"backgroundColor" jsonschema:"title=Background"`
	ShapeCount      int      `json:"shapeCount" jsonschema:"title=Count,minimum=0"`
	Colors          []string `json:"colors" jsonschema:"title=Shape Colors"`
}

func (ShapeConfig) Kind() Kind { return FloatingShapes }

func (c ShapeConfig) clone() Config {
	c.Colors = cloneStrings(c.Colors)
	return c
}

// Clone returns a deep copy of cfg.
func Clone(cfg Config) Config {
	if cfg == nil {
		return nil
	}
	return cfg.clone()
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
