// Package generator runs the full level pipeline: layout, normalization,
// occlusion graph and type assignment. Every board it returns has a tile
// count divisible by three, a type on every tile, and a recorded clearing
// order that fits the game's slot bar.
package generator

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/triple-tiles/internal/assign"
	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/layout"
	"github.com/vovakirdan/triple-tiles/internal/occlusion"
)

// DefaultPalette is the tile set of the shipped game.
var DefaultPalette = []string{"carrot", "wheat", "wood", "grass", "stone", "coin", "shovel"}

// Upper bounds of a level. The occlusion graph stores edge offsets as
// int32, and the O(n²) scan is only practical for boards of this size.
const (
	MaxTotalTiles = 5000
	MaxLayers     = 100
)

// LevelConfig describes the board to build.
type LevelConfig struct {
	TotalTiles int
	LayerCount int
	Pattern    layout.Pattern
}

// ParseLevelConfig builds a LevelConfig from a pattern name, as found in
// configuration files and on the command line.
func ParseLevelConfig(tiles, layers int, pattern string, params layout.Params) (LevelConfig, error) {
	p, err := layout.ParsePattern(pattern, params)
	if err != nil {
		return LevelConfig{}, &ConfigError{Field: "pattern", Reason: err.Error()}
	}
	cfg := LevelConfig{TotalTiles: tiles, LayerCount: layers, Pattern: p}
	if err := cfg.Validate(); err != nil {
		return LevelConfig{}, err
	}
	return cfg, nil
}

// Validate checks the level settings.
func (c LevelConfig) Validate() error {
	switch {
	case c.TotalTiles <= 0:
		return configErrorf("tiles", "must be positive, got %d", c.TotalTiles)
	case c.TotalTiles > MaxTotalTiles:
		return configErrorf("tiles", "must be at most %d, got %d", MaxTotalTiles, c.TotalTiles)
	case c.LayerCount <= 0:
		return configErrorf("layers", "must be positive, got %d", c.LayerCount)
	case c.LayerCount > MaxLayers:
		return configErrorf("layers", "must be at most %d, got %d", MaxLayers, c.LayerCount)
	case c.Pattern == nil:
		return configErrorf("pattern", "missing")
	}
	return nil
}

func (c LevelConfig) String() string {
	return fmt.Sprintf("%d tiles, %d layers, %s", c.TotalTiles, c.LayerCount, c.Pattern)
}

// Observer receives the outcome of every Generate call. res is nil when err
// is not.
type Observer interface {
	ObserveGeneration(cfg LevelConfig, res *Result, elapsed time.Duration, err error)
}

// Options configures a Generator.
type Options struct {
	Canvas      core.Canvas
	Engine      assign.Params
	Seed        uint64 // 0 = derive from the clock
	MaxAttempts int    // Deadlocked runs are retried with Seed+1 (default 1)
	Logger      *log.Logger
	Observer    Observer
}

// DefaultOptions returns the settings used for the shipped levels.
func DefaultOptions() Options {
	return Options{
		Canvas:      core.DefaultCanvas(),
		Engine:      assign.DefaultParams(),
		MaxAttempts: 1,
	}
}

// Stats summarizes a generated board.
type Stats struct {
	assign.Stats
	EdgeCount int
}

// Result is a generated board and everything needed to check it.
type Result struct {
	Board    *core.Board
	Stats    Stats
	Moves    []assign.Move
	Graph    *occlusion.Graph
	Seed     uint64 // seed of the successful attempt
	Attempts int
}

// Generator produces boards. It is not safe for concurrent use; create one
// per goroutine.
type Generator struct {
	opts   Options
	logger *log.Logger
}

// New validates the options and creates a generator.
func New(opts Options) (*Generator, error) {
	if err := opts.Engine.Validate(); err != nil {
		return nil, &ConfigError{Field: "engine", Reason: err.Error()}
	}
	if opts.Canvas.TileSize <= 0 {
		return nil, configErrorf("canvas.tile_size", "must be positive, got %g", opts.Canvas.TileSize)
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.Seed == 0 {
		opts.Seed = core.SeedFromTime()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Generator{opts: opts, logger: logger}, nil
}

// Seed returns the seed of the next attempt.
func (g *Generator) Seed() uint64 {
	return g.opts.Seed
}

// Generate builds one board. Successive calls advance the seed so a single
// generator yields different boards while staying reproducible.
func (g *Generator) Generate(cfg LevelConfig, palette []string) (*Result, error) {
	start := time.Now()
	res, err := g.generate(cfg, palette)
	if g.opts.Observer != nil {
		g.opts.Observer.ObserveGeneration(cfg, res, time.Since(start), err)
	}
	return res, err
}

func (g *Generator) generate(cfg LevelConfig, palette []string) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validatePalette(palette); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		seed := g.opts.Seed
		g.opts.Seed++

		res, err := g.attempt(cfg, palette, seed)
		if err == nil {
			res.Attempts = attempt
			return res, nil
		}
		lastErr = fmt.Errorf("generate %s (seed %d): %w", cfg, seed, err)
		if !errors.Is(err, assign.ErrDeadlock) {
			return nil, lastErr
		}
		g.logger.Warn("generation deadlocked, retrying", "seed", seed, "attempt", attempt, "err", err)
	}
	return nil, lastErr
}

func (g *Generator) attempt(cfg LevelConfig, palette []string, seed uint64) (*Result, error) {
	rng := core.NewRNG(seed)
	canvas := g.opts.Canvas

	tiles := layout.Generate(cfg.TotalTiles, cfg.LayerCount, cfg.Pattern, canvas, rng)
	layout.Normalize(tiles, canvas)
	graph := occlusion.Build(tiles, canvas.TileSize)

	engine, err := assign.New(g.opts.Engine, rng, g.logger)
	if err != nil {
		return nil, err
	}
	out, err := engine.Assign(tiles, graph, palette)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Board: &core.Board{Tiles: tiles, GridSize: canvas.Grid},
		Stats: Stats{Stats: out.Stats, EdgeCount: graph.EdgeCount()},
		Moves: out.Moves,
		Graph: graph,
		Seed:  seed,
	}

	g.logger.Debug("board generated",
		"pattern", cfg.Pattern.String(),
		"tiles", len(tiles),
		"edges", res.Stats.EdgeCount,
		"digs", res.Stats.DigCount,
		"matches", res.Stats.MatchCount,
		"seed", seed,
	)
	return res, nil
}

func validatePalette(palette []string) error {
	if len(palette) == 0 {
		return configErrorf("palette", "empty")
	}
	for i, p := range palette {
		if strings.TrimSpace(p) == "" {
			return configErrorf("palette", "entry %d is blank", i)
		}
	}
	return nil
}
