package generator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/triple-tiles/internal/assign"
	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/layout"
	"github.com/vovakirdan/triple-tiles/internal/solver"
)

func newGenerator(t *testing.T, seed uint64) *Generator {
	t.Helper()
	opts := DefaultOptions()
	opts.Seed = seed
	g, err := New(opts)
	require.NoError(t, err)
	return g
}

func mustConfig(t *testing.T, tiles, layers int, pattern string, params layout.Params) LevelConfig {
	t.Helper()
	cfg, err := ParseLevelConfig(tiles, layers, pattern, params)
	require.NoError(t, err)
	return cfg
}

func TestScenarioStaggeredTwoLayers(t *testing.T) {
	cfg := mustConfig(t, 21, 2, "staggered", layout.Params{Width: 3, Height: 4})
	palette := DefaultPalette[:6]

	for seed := uint64(1); seed <= 10; seed++ {
		res, err := newGenerator(t, seed).Generate(cfg, palette)
		require.NoError(t, err)

		assert.Equal(t, 21, res.Board.Len())
		assert.Zero(t, res.Stats.UnassignedCount)
		assert.Zero(t, res.Stats.Underfilled)
		assert.Equal(t, 21, res.Stats.MatchCount*3)
		for _, tile := range res.Board.Tiles {
			assert.Contains(t, palette, tile.Type)
		}
	}
}

func TestScenarioSingleSymbolTriple(t *testing.T) {
	cfg := LevelConfig{TotalTiles: 3, LayerCount: 1, Pattern: layout.Random{Density: 1}}

	res, err := newGenerator(t, 7).Generate(cfg, []string{"coin"})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Board.Len())
	assert.Equal(t, 1, res.Stats.MatchCount)
	assert.Zero(t, res.Stats.DigCount)
	assert.Zero(t, res.Stats.UnassignedCount)
	for _, tile := range res.Board.Tiles {
		assert.Equal(t, "coin", tile.Type)
	}
}

func TestScenarioSingleLayerHasNoDelayedMatches(t *testing.T) {
	for _, info := range layout.Catalog() {
		cfg := mustConfig(t, 60, 1, string(info.Kind), layout.Params{})
		for seed := uint64(1); seed <= 3; seed++ {
			res, err := newGenerator(t, seed).Generate(cfg, DefaultPalette)
			require.NoError(t, err)

			assert.Zero(t, res.Stats.EdgeCount, "%s", cfg)
			assert.Zero(t, res.Stats.DigCount, "%s", cfg)
			assert.Equal(t, 0.0, res.Stats.DelayedMatchRatio(), "%s", cfg)
		}
	}
}

func TestGeneratedBoardsHoldInvariants(t *testing.T) {
	sizes := []struct{ tiles, layers int }{
		{20, 2}, {54, 4}, {100, 7}, {190, 12},
	}

	for _, info := range layout.Catalog() {
		for _, sz := range sizes {
			cfg := mustConfig(t, sz.tiles, sz.layers, string(info.Kind), layout.Params{})
			g := newGenerator(t, 1000+uint64(sz.tiles))

			for run := 0; run < 3; run++ {
				res, err := g.Generate(cfg, DefaultPalette)
				require.NoError(t, err, "%s", cfg)

				n := res.Board.Len()
				assert.Zero(t, n%3, "%s", cfg)
				assert.GreaterOrEqual(t, n, sz.tiles, "%s", cfg)
				assert.Zero(t, res.Stats.Underfilled, "%s", cfg)
				assert.Equal(t, res.Graph.EdgeCount(), res.Stats.EdgeCount)

				require.NoError(t, ValidateResult(res, 7), "%s seed %d", cfg, res.Seed)
			}
		}
	}
}

func TestReplayNeverNeedsTheLastSlot(t *testing.T) {
	cfg := mustConfig(t, 210, 20, "dense_pile", layout.Params{Size: 6})
	opts := DefaultOptions()
	opts.Seed = 3
	opts.Engine.DigProbability = 1
	g, err := New(opts)
	require.NoError(t, err)

	for run := 0; run < 10; run++ {
		res, err := g.Generate(cfg, DefaultPalette)
		require.NoError(t, err)

		report, err := ReplayMoves(res.Board.Tiles, res.Graph, res.Moves, 7)
		require.NoError(t, err)
		assert.Equal(t, 210, report.Clicks)
		assert.LessOrEqual(t, report.PeakSlots, opts.Engine.BufferCapacity())
	}
}

func TestGeneratedBoardsAreSolvable(t *testing.T) {
	configs := []LevelConfig{
		mustConfig(t, 21, 2, "staggered", layout.Params{Width: 3, Height: 3}),
		mustConfig(t, 54, 4, "brick", layout.Params{Width: 5, Height: 5}),
		mustConfig(t, 72, 5, "pyramid", layout.Params{Size: 5}),
	}
	for _, cfg := range configs {
		g := newGenerator(t, 77)
		for run := 0; run < 3; run++ {
			res, err := g.Generate(cfg, DefaultPalette)
			require.NoError(t, err)

			sol, err := ValidateSolvable(res.Board, core.DefaultCanvas().TileSize,
				solver.Options{Slots: 7, MaxNodes: 1_000_000})
			require.NoError(t, err, "%s seed %d", cfg, res.Seed)
			assert.Len(t, sol.Order, res.Board.Len())
		}
	}
}

func TestHardConfigHasDelayedMatches(t *testing.T) {
	cfg := LevelConfig{TotalTiles: 210, LayerCount: 20, Pattern: layout.DensePile{Size: 6}}
	g := newGenerator(t, 2024)

	const runs = 25
	sum := 0.0
	for i := 0; i < runs; i++ {
		res, err := g.Generate(cfg, DefaultPalette)
		require.NoError(t, err)
		sum += res.Stats.DelayedMatchRatio()
	}
	assert.Greater(t, sum/runs, 0.1)
}

func TestGenerateIsReproducible(t *testing.T) {
	cfg := mustConfig(t, 90, 6, "spiral", layout.Params{Turns: 2.5})

	a, err := newGenerator(t, 42).Generate(cfg, DefaultPalette)
	require.NoError(t, err)
	b, err := newGenerator(t, 42).Generate(cfg, DefaultPalette)
	require.NoError(t, err)

	assert.Equal(t, a.Board, b.Board)
	assert.Equal(t, a.Stats, b.Stats)
	assert.Equal(t, uint64(42), a.Seed)
}

func TestGenerateAdvancesSeed(t *testing.T) {
	cfg := mustConfig(t, 30, 3, "random", layout.Params{})
	g := newGenerator(t, 10)

	first, err := g.Generate(cfg, DefaultPalette)
	require.NoError(t, err)
	second, err := g.Generate(cfg, DefaultPalette)
	require.NoError(t, err)

	assert.Equal(t, uint64(10), first.Seed)
	assert.Equal(t, uint64(11), second.Seed)
	assert.Equal(t, uint64(12), g.Seed())
}

func TestDeadlockRetriesWithNextSeed(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 42
	opts.MaxAttempts = 3
	opts.Engine.MaxIterations = 1
	g, err := New(opts)
	require.NoError(t, err)

	_, err = g.Generate(LevelConfig{TotalTiles: 30, LayerCount: 3, Pattern: layout.DensePile{Size: 4}}, DefaultPalette)
	require.Error(t, err)
	assert.ErrorIs(t, err, assign.ErrDeadlock)
	assert.Contains(t, err.Error(), "seed 44")
	assert.Equal(t, uint64(45), g.Seed())
}

func TestConfigErrors(t *testing.T) {
	pattern := layout.Random{Density: 1}
	tests := []struct {
		name    string
		cfg     LevelConfig
		palette []string
		field   string
	}{
		{"zero tiles", LevelConfig{TotalTiles: 0, LayerCount: 2, Pattern: pattern}, DefaultPalette, "tiles"},
		{"negative layers", LevelConfig{TotalTiles: 9, LayerCount: -1, Pattern: pattern}, DefaultPalette, "layers"},
		{"too many tiles", LevelConfig{TotalTiles: math.MaxInt, LayerCount: 2, Pattern: pattern}, DefaultPalette, "tiles"},
		{"too many layers", LevelConfig{TotalTiles: 9, LayerCount: MaxLayers + 1, Pattern: pattern}, DefaultPalette, "layers"},
		{"missing pattern", LevelConfig{TotalTiles: 9, LayerCount: 1}, DefaultPalette, "pattern"},
		{"empty palette", LevelConfig{TotalTiles: 9, LayerCount: 1, Pattern: pattern}, nil, "palette"},
		{"blank palette entry", LevelConfig{TotalTiles: 9, LayerCount: 1, Pattern: pattern}, []string{"coin", " "}, "palette"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newGenerator(t, 1).Generate(tc.cfg, tc.palette)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}

func TestParseLevelConfigBounds(t *testing.T) {
	_, err := ParseLevelConfig(math.MaxInt, 2, "random", layout.Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg, err := ParseLevelConfig(MaxTotalTiles, MaxLayers, "random", layout.Params{})
	require.NoError(t, err)
	assert.Equal(t, MaxTotalTiles, cfg.TotalTiles)
}

func TestParseLevelConfigUnknownPattern(t *testing.T) {
	_, err := ParseLevelConfig(30, 2, "hexagon", layout.Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewRejectsBadEngineParams(t *testing.T) {
	opts := DefaultOptions()
	opts.Engine.SafetyMargin = 0
	_, err := New(opts)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	opts = DefaultOptions()
	opts.Canvas.TileSize = 0
	_, err = New(opts)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

type recordingObserver struct {
	calls int
	errs  int
	last  *Result
}

func (o *recordingObserver) ObserveGeneration(_ LevelConfig, res *Result, _ time.Duration, err error) {
	o.calls++
	if err != nil {
		o.errs++
	}
	o.last = res
}

func TestObserverSeesEveryCall(t *testing.T) {
	obs := &recordingObserver{}
	opts := DefaultOptions()
	opts.Seed = 5
	opts.Observer = obs
	g, err := New(opts)
	require.NoError(t, err)

	res, err := g.Generate(LevelConfig{TotalTiles: 9, LayerCount: 1, Pattern: layout.Random{Density: 1}}, DefaultPalette)
	require.NoError(t, err)
	_, err = g.Generate(LevelConfig{}, DefaultPalette)
	require.Error(t, err)

	assert.Equal(t, 2, obs.calls)
	assert.Equal(t, 1, obs.errs)
	assert.Nil(t, obs.last)
	assert.NotNil(t, res)
}
