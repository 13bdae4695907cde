package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vovakirdan/triple-tiles/internal/layout"
)

// DifficultyConfig selects how aggressively the engine defers matches.
type DifficultyConfig struct {
	Preset string `yaml:"preset"` // easy, normal, hard or fixed
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. Empty means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown difficulty preset %q (want easy, normal, hard or fixed)", s)
	}
}

// DigProbabilityForPreset returns the engine dig probability for a preset.
// The fixed preset uses the configured value unchanged.
func DigProbabilityForPreset(preset DifficultyPreset, configured float64) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.35
	case DifficultyHard:
		return 0.8
	case DifficultyFixed:
		return configured
	default:
		return 0.6
	}
}

// Phase names a stretch of the difficulty curve.
type Phase string

const (
	PhaseTutorial  Phase = "tutorial"
	PhaseStrategy  Phase = "strategy"
	PhaseHell      Phase = "hell"
	PhaseNightmare Phase = "nightmare"
	PhaseAbyss     Phase = "abyss"
)

// LevelSpec is one curve entry.
type LevelSpec struct {
	Level   int           `yaml:"level,omitempty"`
	Phase   Phase         `yaml:"phase,omitempty"`
	Tiles   int           `yaml:"tiles"`
	Layers  int           `yaml:"layers"`
	Pattern string        `yaml:"pattern"`
	Params  layout.Params `yaml:"params,omitempty"`

	// DigProbability overrides the preset for this level.
	DigProbability *float64 `yaml:"dig_probability,omitempty"`
}

// CurveConfig maps level numbers to board settings.
type CurveConfig struct {
	Default LevelSpec   `yaml:"default"`
	Levels  []LevelSpec `yaml:"levels"`
}

// Resolve returns the settings of a level. Levels outside the curve get the
// default entry.
func (c CurveConfig) Resolve(level int) LevelSpec {
	for _, spec := range c.Levels {
		if spec.Level == level {
			return spec
		}
	}
	spec := c.Default
	spec.Level = level
	return spec
}

// Count returns the highest level number in the curve.
func (c CurveConfig) Count() int {
	top := 0
	for _, spec := range c.Levels {
		top = max(top, spec.Level)
	}
	return top
}

// Sorted returns the curve entries ordered by level.
func (c CurveConfig) Sorted() []LevelSpec {
	out := make([]LevelSpec, len(c.Levels))
	copy(out, c.Levels)
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// LevelID returns the store identity of a level number.
func LevelID(level int) string {
	return fmt.Sprintf("level-%d", level)
}
