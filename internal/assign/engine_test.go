package assign

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/layout"
	"github.com/vovakirdan/triple-tiles/internal/occlusion"
)

var palette = []string{"carrot", "wheat", "wood", "grass", "stone", "coin", "shovel"}

func board(t *testing.T, total, layers int, p layout.Pattern, seed uint64) ([]core.Tile, *occlusion.Graph) {
	t.Helper()
	c := core.DefaultCanvas()
	tiles := layout.Generate(total, layers, p, c, core.NewRNG(seed))
	layout.Normalize(tiles, c)
	return tiles, occlusion.Build(tiles, c.TileSize)
}

func assignWith(t *testing.T, p Params, tiles []core.Tile, g *occlusion.Graph, seed uint64) Result {
	t.Helper()
	e, err := New(p, core.NewRNG(seed), nil)
	require.NoError(t, err)
	res, err := e.Assign(tiles, g, palette)
	require.NoError(t, err)
	return res
}

// replay clicks the recorded moves into a game with the given slot count and
// returns the highest slot occupancy seen.
func replay(t *testing.T, tiles []core.Tile, g *occlusion.Graph, moves []Move, slots int) int {
	t.Helper()
	tr := occlusion.NewTracker(g)
	clicked := make([]bool, len(tiles))
	var slot []string
	peak := 0

	click := func(h int) {
		require.False(t, clicked[h], "tile %d clicked twice", h)
		require.True(t, tr.Free(h), "tile %d clicked while blocked", h)
		clicked[h] = true
		tr.Resolve(h, nil)

		typ := tiles[h].Type
		slot = append(slot, typ)
		peak = max(peak, len(slot))

		same := 0
		for _, s := range slot {
			if s == typ {
				same++
			}
		}
		if same == GroupSize {
			kept := slot[:0]
			for _, s := range slot {
				if s != typ {
					kept = append(kept, s)
				}
			}
			slot = kept
			return
		}
		require.Less(t, len(slot), slots, "slot overflow after clicking tile %d", h)
	}

	for _, m := range moves {
		switch m.Action {
		case ActionDig:
			click(m.Tiles[0])
		case ActionMatch:
			for _, h := range m.Tiles[len(m.Tiles)-m.Pulled:] {
				click(h)
			}
		}
	}

	for h := range clicked {
		assert.True(t, clicked[h], "tile %d never clicked", h)
	}
	assert.Empty(t, slot, "board replay must end with empty slots")
	return peak
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
	assert.Equal(t, 6, DefaultParams().BufferCapacity())

	tests := []struct {
		name string
		mod  func(*Params)
	}{
		{"zero margin", func(p *Params) { p.SafetyMargin = 0 }},
		{"tiny buffer", func(p *Params) { p.SlotCapacity = 2 }},
		{"negative probability", func(p *Params) { p.DigProbability = -0.1 }},
		{"probability above one", func(p *Params) { p.DigProbability = 1.5 }},
		{"zero top-k", func(p *Params) { p.DigTopK = 0 }},
		{"negative iterations", func(p *Params) { p.MaxIterations = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mod(&p)
			assert.Error(t, p.Validate())
			_, err := New(p, core.NewRNG(1), nil)
			assert.Error(t, err)
		})
	}
}

func TestAssignTypesEveryTileInTriples(t *testing.T) {
	patterns := []layout.Pattern{
		layout.DensePile{Size: 6},
		layout.Staggered{Width: 4, Height: 5},
		layout.Pyramid{Size: 5},
		layout.Spiral{Turns: 2.5},
		layout.Boss{Size: 8},
		layout.Random{Density: 0.9},
	}
	for _, p := range patterns {
		for seed := uint64(1); seed <= 5; seed++ {
			tiles, g := board(t, 90, 6, p, seed)
			res := assignWith(t, DefaultParams(), tiles, g, seed)

			assert.Zero(t, res.Stats.UnassignedCount)
			assert.Zero(t, res.Stats.Underfilled)
			assert.Equal(t, 30, res.Stats.MatchCount)

			counts := map[string]int{}
			for _, tile := range tiles {
				require.Contains(t, palette, tile.Type)
				counts[tile.Type]++
			}
			for typ, n := range counts {
				assert.Zero(t, n%GroupSize, "%s: type %s appears %d times", p, typ, n)
			}

			for _, m := range res.Moves {
				if m.Action == ActionMatch {
					require.Len(t, m.Tiles, GroupSize)
					for _, h := range m.Tiles[1:] {
						assert.Equal(t, tiles[m.Tiles[0]].Type, tiles[h].Type)
					}
				}
			}
		}
	}
}

func TestAssignRecordedMovesClearTheBoard(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		tiles, g := board(t, 210, 20, layout.DensePile{Size: 6}, seed)

		p := DefaultParams()
		p.DigProbability = 1
		res := assignWith(t, p, tiles, g, seed)

		peak := replay(t, tiles, g, res.Moves, p.SlotCapacity)
		assert.Less(t, peak, p.SlotCapacity)
	}
}

func TestAssignSingleLayerNeverDigs(t *testing.T) {
	tiles, g := board(t, 30, 1, layout.Random{Density: 1}, 4)
	require.Zero(t, g.EdgeCount())

	p := DefaultParams()
	p.DigProbability = 1
	res := assignWith(t, p, tiles, g, 4)

	assert.Zero(t, res.Stats.DigCount)
	assert.Equal(t, 10, res.Stats.MatchCount)
	assert.Zero(t, res.Stats.DelayedMatchRatio())
}

func TestAssignDensePileHasDelayedMatches(t *testing.T) {
	const runs = 20
	sum := 0.0
	for seed := uint64(1); seed <= runs; seed++ {
		tiles, g := board(t, 210, 20, layout.DensePile{Size: 6}, seed)
		res := assignWith(t, DefaultParams(), tiles, g, seed)
		sum += res.Stats.DelayedMatchRatio()
	}
	assert.Greater(t, sum/runs, 0.1)
}

func TestAssignDigProbabilityRaisesRatio(t *testing.T) {
	ratio := func(prob float64) float64 {
		sum := 0.0
		for seed := uint64(1); seed <= 10; seed++ {
			tiles, g := board(t, 120, 10, layout.DensePile{Size: 6}, seed)
			p := DefaultParams()
			p.DigProbability = prob
			sum += assignWith(t, p, tiles, g, seed).Stats.DelayedMatchRatio()
		}
		return sum / 10
	}
	assert.Greater(t, ratio(1), ratio(0))
}

func TestAssignDeterministic(t *testing.T) {
	a, ga := board(t, 90, 6, layout.Pyramid{Size: 5}, 12)
	b, gb := board(t, 90, 6, layout.Pyramid{Size: 5}, 12)

	ra := assignWith(t, DefaultParams(), a, ga, 5)
	rb := assignWith(t, DefaultParams(), b, gb, 5)

	assert.Equal(t, a, b)
	assert.Equal(t, ra, rb)
}

func TestAssignOverwritesExistingTypes(t *testing.T) {
	tiles, g := board(t, 30, 3, layout.DensePile{Size: 4}, 2)
	for i := range tiles {
		tiles[i].Type = "stale"
	}
	assignWith(t, DefaultParams(), tiles, g, 2)
	for _, tile := range tiles {
		assert.NotEqual(t, "stale", tile.Type)
	}
}

func TestAssignReportsUnderfilledRemainder(t *testing.T) {
	tiles := []core.Tile{
		{X: 0, Y: 0, Layer: 1},
		{X: 100, Y: 0, Layer: 1},
		{X: 200, Y: 0, Layer: 1},
		{X: 300, Y: 0, Layer: 1},
	}
	g := occlusion.Build(tiles, 80)
	res := assignWith(t, DefaultParams(), tiles, g, 1)

	assert.Equal(t, 1, res.Stats.Underfilled)
	assert.Equal(t, 2, res.Stats.MatchCount)
	for _, tile := range tiles {
		assert.NotEmpty(t, tile.Type)
	}
}

func TestAssignIterationCap(t *testing.T) {
	tiles, g := board(t, 30, 3, layout.DensePile{Size: 4}, 9)

	p := DefaultParams()
	p.MaxIterations = 1
	e, err := New(p, core.NewRNG(1), nil)
	require.NoError(t, err)

	_, err = e.Assign(tiles, g, palette)
	assert.ErrorIs(t, err, ErrDeadlock)
}

func TestAssignRejectsBadInput(t *testing.T) {
	tiles, g := board(t, 9, 1, layout.Random{Density: 1}, 1)
	e, err := New(DefaultParams(), core.NewRNG(1), nil)
	require.NoError(t, err)

	_, err = e.Assign(tiles, g, nil)
	assert.Error(t, err)

	_, err = e.Assign(tiles[:3], g, palette)
	assert.Error(t, err)

	_, err = New(DefaultParams(), nil, nil)
	assert.Error(t, err)
}

func TestEmptyBoard(t *testing.T) {
	g := occlusion.Build(nil, 80)
	res := assignWith(t, DefaultParams(), nil, g, 1)
	assert.Zero(t, res.Stats.MatchCount)
	assert.Empty(t, res.Moves)
}

func TestCleanupTypesLeftoverTiles(t *testing.T) {
	tiles, g := board(t, 9, 1, layout.Random{Density: 1}, 3)

	var buf bytes.Buffer
	e, err := New(DefaultParams(), core.NewRNG(3), log.New(&buf))
	require.NoError(t, err)

	r := newRun(e, tiles, g, palette)
	require.NoError(t, r.loop())
	tiles[4].Type = ""

	r.cleanup()

	assert.Equal(t, 1, r.stats.UnassignedCount)
	assert.Contains(t, palette, tiles[4].Type)
	assert.Contains(t, buf.String(), "unassigned")
}
