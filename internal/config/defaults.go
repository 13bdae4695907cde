package config

import (
	_ "embed"

	"github.com/vovakirdan/triple-tiles/internal/layout"
)

//go:embed defaults/tilegen.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration. It matches the embedded
// defaults/tilegen.yaml and is used when that file cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Canvas: CanvasConfig{
			CenterX:    375,
			CenterY:    580,
			TileSize:   80,
			Jitter:     12,
			JitterMode: "uniform",
			Safe:       RectConfig{MinX: 90, MinY: 240, MaxX: 660, MaxY: 910},
			Scatter:    RectConfig{MinX: 50, MinY: 200, MaxX: 700, MaxY: 950},
			Grid:       GridConfig{Cols: 8, Rows: 10},
		},
		Engine: EngineConfig{
			SlotCapacity:   7,
			SafetyMargin:   1,
			DigProbability: 0.6,
			DigTopK:        3,
			MaxIterations:  0,
			MaxAttempts:    3,
		},
		Palette: []string{"carrot", "wheat", "wood", "grass", "stone", "coin", "shovel"},
		Difficulty: DifficultyConfig{
			Preset: string(DifficultyNormal),
		},
		Curve: DefaultCurve(),
		Storage: StorageConfig{
			Driver: "sqlite",
		},
		Metrics: MetricsConfig{
			Job: "tilegen",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Source: "builtin",
	}
}

// DefaultCurve returns the 20-level curve of the shipped game.
func DefaultCurve() CurveConfig {
	return CurveConfig{
		Default: LevelSpec{Tiles: 30, Layers: 2, Pattern: string(layout.KindRandom)},
		Levels: []LevelSpec{
			{1, PhaseTutorial, 21, 2, "staggered", layout.Params{Width: 3, Height: 3}, nil},

			{2, PhaseStrategy, 54, 4, "brick", layout.Params{Width: 5, Height: 5}, nil},
			{3, PhaseStrategy, 72, 5, "pyramid", layout.Params{Size: 5}, nil},
			{4, PhaseStrategy, 90, 6, "spiral", layout.Params{Turns: 2.5}, nil},
			{5, PhaseStrategy, 108, 7, "cross", layout.Params{Size: 6}, nil},

			{6, PhaseHell, 135, 8, "staggered", layout.Params{Width: 6, Height: 7}, nil},
			{7, PhaseHell, 162, 9, "pyramid", layout.Params{Size: 7}, nil},
			{8, PhaseHell, 189, 10, "spiral", layout.Params{Turns: 4}, nil},
			{9, PhaseHell, 216, 11, "random", layout.Params{Density: 0.9}, nil},
			{10, PhaseHell, 240, 12, "boss", layout.Params{Size: 8}, nil},

			{11, PhaseNightmare, 261, 13, "brick", layout.Params{Width: 7, Height: 8}, nil},
			{12, PhaseNightmare, 279, 13, "pyramid", layout.Params{Size: 8}, nil},
			{13, PhaseNightmare, 300, 14, "spiral", layout.Params{Turns: 5}, nil},
			{14, PhaseNightmare, 315, 14, "cross", layout.Params{Size: 8}, nil},
			{15, PhaseNightmare, 330, 15, "boss", layout.Params{Size: 9}, nil},

			{16, PhaseAbyss, 345, 15, "random", layout.Params{Density: 1.0}, nil},
			{17, PhaseAbyss, 360, 16, "staggered", layout.Params{Width: 8, Height: 9}, nil},
			{18, PhaseAbyss, 375, 16, "spiral", layout.Params{Turns: 6}, nil},
			{19, PhaseAbyss, 390, 17, "brick", layout.Params{Width: 8, Height: 9}, nil},
			{20, PhaseAbyss, 420, 18, "boss", layout.Params{Size: 10}, nil},
		},
	}
}
