package config

import "time"

const (
	WindowWidth  = 1280
	WindowHeight = 720

	// Used for entity placement while a surface still reports zero size.
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	FrameRate = 60

	// Audio drive
	VisualRingSize  = 8192
	SmoothingFactor = 0.6
	LevelWindow     = 2048

	// Settings panel
	PanelWidth     = 340
	PanelMargin    = 16
	PanelRowHeight = 34
	PanelHeader    = 28

	// Toolbar buttons
	ButtonWidth  = 120
	ButtonHeight = 28
	ButtonX      = 16
	ButtonY      = 14

	// Viewport modes
	TopBarHeight = 56
	CardWidth    = 384
	CardHeight   = 256
	ButtonStageW = 192
	ButtonStageH = 56

	// Site mode
	ScrollStep = 48

	ProfileInterval = time.Second
)
