// Package config provides YAML-based generator configuration loading and
// the difficulty curve of the shipped levels.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/triple-tiles/internal/assign"
	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/generator"
	"github.com/vovakirdan/triple-tiles/internal/layout"
)

// Config contains all configuration of the level generator.
type Config struct {
	Canvas     CanvasConfig     `yaml:"canvas"`
	Engine     EngineConfig     `yaml:"engine"`
	Palette    []string         `yaml:"palette"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Curve      CurveConfig      `yaml:"curve"`
	Storage    StorageConfig    `yaml:"storage"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Source is where the configuration was read from.
	Source string `yaml:"-"`
}

// CanvasConfig defines the drawing surface boards are laid out on.
type CanvasConfig struct {
	CenterX    float64    `yaml:"center_x"`
	CenterY    float64    `yaml:"center_y"`
	TileSize   float64    `yaml:"tile_size"`
	Jitter     float64    `yaml:"jitter"`
	JitterMode string     `yaml:"jitter_mode"` // "uniform", "noise" or "none"
	Safe       RectConfig `yaml:"safe"`
	Scatter    RectConfig `yaml:"scatter"`
	Grid       GridConfig `yaml:"grid"`
}

// RectConfig is an axis-aligned region in canvas pixels.
type RectConfig struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// GridConfig is the advisory grid stored with every board.
type GridConfig struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

// EngineConfig defines the assignment engine parameters.
type EngineConfig struct {
	SlotCapacity   int     `yaml:"slot_capacity"`
	SafetyMargin   int     `yaml:"safety_margin"`
	DigProbability float64 `yaml:"dig_probability"` // used by the "fixed" preset
	DigTopK        int     `yaml:"dig_top_k"`
	MaxIterations  int     `yaml:"max_iterations"` // 0 = 4n+16
	MaxAttempts    int     `yaml:"max_attempts"`   // retries with the next seed on deadlock
}

// StorageConfig selects the level store.
type StorageConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

// MetricsConfig defines where generation metrics are pushed.
type MetricsConfig struct {
	Pushgateway string `yaml:"pushgateway"` // empty disables pushing
	Job         string `yaml:"job"`
}

// LoggingConfig defines log level and the optional rotating log file.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Canvas converts the canvas section into generator geometry.
func (c CanvasConfig) Canvas() core.Canvas {
	return core.Canvas{
		CenterX:  c.CenterX,
		CenterY:  c.CenterY,
		TileSize: c.TileSize,
		Jitter:   c.Jitter,
		Mode:     core.JitterMode(strings.ToLower(c.JitterMode)),
		Safe:     c.Safe.Rect(),
		Scatter:  c.Scatter.Rect(),
		Grid:     core.GridSize{Cols: c.Grid.Cols, Rows: c.Grid.Rows},
	}
}

// Rect converts the region into a core.Rect.
func (r RectConfig) Rect() core.Rect {
	return core.NewRect(r.MinX, r.MinY, r.MaxX, r.MaxY)
}

// EngineParams returns the engine parameters for one level: the preset
// picks the dig probability, and a curve entry may override it.
func (c Config) EngineParams(spec LevelSpec) assign.Params {
	p := assign.Params{
		SlotCapacity:   c.Engine.SlotCapacity,
		SafetyMargin:   c.Engine.SafetyMargin,
		DigProbability: DigProbabilityForPreset(DifficultyPreset(c.Difficulty.Preset), c.Engine.DigProbability),
		DigTopK:        c.Engine.DigTopK,
		MaxIterations:  c.Engine.MaxIterations,
	}
	if spec.DigProbability != nil {
		p.DigProbability = *spec.DigProbability
	}
	return p
}

// GeneratorOptions builds generator options for one level.
func (c Config) GeneratorOptions(spec LevelSpec, seed uint64) generator.Options {
	return generator.Options{
		Canvas:      c.Canvas.Canvas(),
		Engine:      c.EngineParams(spec),
		Seed:        seed,
		MaxAttempts: c.Engine.MaxAttempts,
	}
}

// Validate checks the whole configuration and reports every problem found.
func (c Config) Validate() error {
	var errs []error

	if c.Canvas.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("canvas.tile_size must be positive, got %g", c.Canvas.TileSize))
	}
	switch core.JitterMode(strings.ToLower(c.Canvas.JitterMode)) {
	case core.JitterUniform, core.JitterNoise, core.JitterNone:
	default:
		errs = append(errs, fmt.Errorf("canvas.jitter_mode %q is not one of uniform, noise, none", c.Canvas.JitterMode))
	}
	if len(c.Palette) == 0 {
		errs = append(errs, errors.New("palette must not be empty"))
	}
	if _, err := ParsePreset(c.Difficulty.Preset); err != nil {
		errs = append(errs, err)
	}
	if err := c.EngineParams(LevelSpec{}).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("engine: %w", err))
	}

	specs := append([]LevelSpec{c.Curve.Default}, c.Curve.Levels...)
	seen := make(map[int]bool)
	for _, spec := range specs {
		if spec.Level != 0 {
			if seen[spec.Level] {
				errs = append(errs, fmt.Errorf("curve: level %d listed twice", spec.Level))
			}
			seen[spec.Level] = true
		}
		if _, err := spec.LevelConfig(); err != nil {
			errs = append(errs, fmt.Errorf("curve level %d: %w", spec.Level, err))
		}
		if p := spec.DigProbability; p != nil && (*p < 0 || *p > 1) {
			errs = append(errs, fmt.Errorf("curve level %d: dig_probability %g outside [0,1]", spec.Level, *p))
		}
	}

	switch strings.ToLower(c.Storage.Driver) {
	case "", "sqlite", "postgres", "postgresql":
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not sqlite or postgres", c.Storage.Driver))
	}

	return errors.Join(errs...)
}

// LevelConfig converts a curve entry into a generator level config.
func (s LevelSpec) LevelConfig() (generator.LevelConfig, error) {
	return generator.ParseLevelConfig(s.Tiles, s.Layers, s.Pattern, s.Params)
}

// Describe renders the entry's pattern with effective params.
func (s LevelSpec) Describe() string {
	p, err := layout.ParsePattern(s.Pattern, s.Params)
	if err != nil {
		return s.Pattern
	}
	return p.String()
}
