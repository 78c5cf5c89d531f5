package schema

var defaults = map[Kind]Config{
	ParticleNetwork: ParticleConfig{
		ParticleCount:          80,
		ConnectionDistance:     248,
		MouseDistance:          125,
		ParticleColor:          "#64c8ff",
		LineColor:              "rgba(100, 200, 255, 0.2)",
		BaseSpeed:              0.8,
		InteractionStrength:    0.3,
		Resistance:             0.76,
		EnableMouseInteraction: true,
		WrapAround:             false,
		BackgroundColor:        "transparent",
	},
	GradientMesh: GradientMeshConfig{
		BackgroundColor: "rgba(0, 0, 0, 0.49)",
		AnimationSpeed:  7,
		Items: []MeshItem{
			{Color: "#fbbf24", Top: "20%", Left: "80%", Width: "30vw", Height: "30vw", Opacity: 0.2, AnimationDelay: "0s", AnimationDuration: "15s"},
			{Color: "#d97706", Top: "70%", Left: "10%", Width: "25vw", Height: "25vw", Opacity: 0.15, AnimationDelay: "4s", AnimationDuration: "12s"},
		},
	},
	RetroGrid: GridConfig{
		GridColor:       "rgba(174, 170, 167, 1)",
		BackgroundColor: "rgba(69, 58, 58, 0.2)",
		AnimationSpeed:  5,
	},
	SineWaves: WaveConfig{
		ColorStart: "#1e1b4b",
		ColorEnd:   "#312e81",
		WaveColor:  "rgba(129, 140, 248, 0.3)",
		Speed:      1,
		Amplitude:  50,
		Parallax:   0,
	},
	FloatingShapes: ShapeConfig{
		BackgroundColor: "#0f172a",
		ShapeCount:      6,
		Colors:          []string{"#38bdf8", "#818cf8", "#c084fc", "#2dd4bf"},
	},
	LavaLamp: LavaLampConfig{
		BackgroundColor: "#320032",
		Speed:           1.0,
		BlobCount:       7,
		Colors: []string{
			"rgba(153, 255, 204, 0.4)",
			"rgba(255, 221, 153, 0.4)",
			"rgba(153, 238, 255, 0.4)",
			"rgba(240, 168, 192, 0.4)",
			"rgba(255, 153, 179, 0.4)",
			"rgba(153, 247, 255, 0.4)",
			"rgba(255, 196, 153, 0.4)",
		},
		Motion: MotionBuoyant,
	},
}

// Default returns a fresh copy of the stock configuration for kind.
func Default(kind Kind) (Config, bool) {
	cfg, ok := defaults[kind]
	if !ok {
		return nil, false
	}
	return cfg.clone(), true
}
