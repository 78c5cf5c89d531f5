package schema

// ControlKind selects the editor control used for a field.
type ControlKind string

const (
	ControlColor      ControlKind = "color"
	ControlNumber     ControlKind = "number"
	ControlBoolean    ControlKind = "boolean"
	ControlSelect     ControlKind = "select"
	ControlColorArray ControlKind = "colorArray"
	ControlText       ControlKind = "text"
	ControlJSON       ControlKind = "json"
)

// Field describes one editable configuration parameter.
type Field struct {
	Key     string      `json:"key"`
	Label   string      `json:"label"`
	Control ControlKind `json:"type"`
	Min     float64     `json:"min,omitempty"`
	Max     float64     `json:"max,omitempty"`
	Step    float64     `json:"step,omitempty"`
	Options []string    `json:"options,omitempty"`
}

var fields = map[Kind][]Field{
	ParticleNetwork: {
		{Key: "backgroundColor", Label: "Background Color", Control: ControlColor},
		{Key: "particleCount", Label: "Particle Count", Control: ControlNumber, Min: 10, Max: 300, Step: 10},
		{Key: "particleColor", Label: "Dot Color", Control: ControlColor},
		{Key: "lineColor", Label: "Line Color", Control: ControlColor},
		{Key: "connectionDistance", Label: "Link Distance", Control: ControlNumber, Min: 50, Max: 400},
		{Key: "mouseDistance", Label: "Mouse Radius", Control: ControlNumber, Min: 50, Max: 500},
		{Key: "baseSpeed", Label: "Base Speed", Control: ControlNumber, Min: 0, Max: 5, Step: 0.1},
		{Key: "interactionStrength", Label: "Push Strength", Control: ControlNumber, Min: 0, Max: 5, Step: 0.1},
		{Key: "resistance", Label: "Friction (1=None)", Control: ControlNumber, Min: 0.5, Max: 0.99, Step: 0.01},
		{Key: "enableMouseInteraction", Label: "Mouse Interaction", Control: ControlBoolean},
		{Key: "wrapAround", Label: "Wrap Edges", Control: ControlBoolean},
	},
	GradientMesh: {
		{Key: "backgroundColor", Label: "Base Color", Control: ControlColor},
		{Key: "animationSpeed", Label: "Global Speed (s)", Control: ControlNumber, Min: 1, Max: 20},
		{Key: "items", Label: "Blobs", Control: ControlJSON},
	},
	RetroGrid: {
		{Key: "backgroundColor", Label: "Sky Color", Control: ControlColor},
		{Key: "gridColor", Label: "Grid Color", Control: ControlColor},
		{Key: "animationSpeed", Label: "Grid Speed (s)", Control: ControlNumber, Min: 0.1, Max: 5, Step: 0.1},
	},
	SineWaves: {
		{Key: "colorStart", Label: "Gradient Top", Control: ControlColor},
		{Key: "colorEnd", Label: "Gradient Bottom", Control: ControlColor},
		{Key: "waveColor", Label: "Wave Color", Control: ControlColor},
		{Key: "speed", Label: "Flow Speed", Control: ControlNumber, Min: 0.1, Max: 10, Step: 0.1},
		{Key: "amplitude", Label: "Height", Control: ControlNumber, Min: 10, Max: 200},
		{Key: "parallax", Label: "Parallax", Control: ControlNumber, Min: 0, Max: 1, Step: 0.05},
	},
	FloatingShapes: {
		{Key: "backgroundColor", Label: "Background", Control: ControlColor},
		{Key: "shapeCount", Label: "Count", Control: ControlNumber, Min: 1, Max: 20},
		{Key: "colors", Label: "Shape Colors", Control: ControlColorArray},
	},
	LavaLamp: {
		{Key: "backgroundColor", Label: "Background", Control: ControlColor},
		{Key: "blobCount", Label: "Blob Count", Control: ControlNumber, Min: 1, Max: 50},
		{Key: "speed", Label: "Flow Speed", Control: ControlNumber, Min: 0.1, Max: 5, Step: 0.1},
		{Key: "colors", Label: "Lava Colors", Control: ControlColorArray},
		{Key: "motion", Label: "Motion", Control: ControlSelect, Options: []string{MotionBuoyant, MotionBounce}},
	},
}

// Fields returns the ordered editable fields for kind. The slice is a copy.
func Fields(kind Kind) []Field {
	src := fields[kind]
	if src == nil {
		return nil
	}
	out := make([]Field, len(src))
	for i, f := range src {
		f.Options = cloneStrings(f.Options)
		out[i] = f
	}
	return out
}

// Lookup finds the field descriptor for key.
func Lookup(kind Kind, key string) (Field, bool) {
	for _, f := range fields[kind] {
		if f.Key == key {
			f.Options = cloneStrings(f.Options)
			return f, true
		}
	}
	return Field{}, false
}
