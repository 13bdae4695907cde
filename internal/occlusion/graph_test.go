package occlusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/triple-tiles/internal/core"
)

const tileSize = 80

func TestBuildEdges(t *testing.T) {
	tiles := []core.Tile{
		{X: 100, Y: 100, Layer: 1}, // 0: bottom
		{X: 140, Y: 140, Layer: 2}, // 1: overlaps 0
		{X: 100, Y: 100, Layer: 3}, // 2: overlaps 0 and 1
		{X: 400, Y: 400, Layer: 3}, // 3: isolated
		{X: 180, Y: 100, Layer: 4}, // 4: exactly one tile right of 0, overlaps 1 only
	}
	g := Build(tiles, tileSize)

	assert.Equal(t, 5, g.Len())
	assert.ElementsMatch(t, []int32{0}, g.Blocks(1))
	assert.ElementsMatch(t, []int32{0, 1}, g.Blocks(2))
	assert.Empty(t, g.Blocks(3))
	assert.ElementsMatch(t, []int32{1}, g.Blocks(4))

	assert.Equal(t, 2, g.InDegree(0))
	assert.Equal(t, 2, g.InDegree(1))
	assert.Equal(t, 0, g.InDegree(2))
	assert.Equal(t, 4, g.EdgeCount())
	assert.Equal(t, []int{1, 2}, g.Blockers(0))
	assert.Equal(t, []int{2, 3, 4}, g.Roots())
}

func TestSameLayerNeverBlocks(t *testing.T) {
	tiles := []core.Tile{
		{X: 100, Y: 100, Layer: 1},
		{X: 100, Y: 100, Layer: 1},
		{X: 120, Y: 90, Layer: 1},
	}
	g := Build(tiles, tileSize)
	assert.Zero(t, g.EdgeCount())
	assert.Len(t, g.Roots(), 3)
}

func TestEdgesPointDownward(t *testing.T) {
	rng := core.NewRNG(17)
	tiles := make([]core.Tile, 120)
	for i := range tiles {
		tiles[i] = core.Tile{
			X:     rng.Float() * 400,
			Y:     rng.Float() * 400,
			Layer: rng.Intn(6) + 1,
		}
	}
	g := Build(tiles, tileSize)

	total := 0
	for a := 0; a < g.Len(); a++ {
		for _, b := range g.Blocks(a) {
			assert.Greater(t, tiles[a].Layer, tiles[b].Layer)
			assert.True(t, core.Overlaps(tiles[a].Center(), tiles[b].Center(), tileSize))
		}
		total += g.OutDegree(a)
	}

	in := 0
	for h := 0; h < g.Len(); h++ {
		in += g.InDegree(h)
	}
	assert.Equal(t, total, g.EdgeCount())
	assert.Equal(t, total, in)
}

func TestTrackerResolve(t *testing.T) {
	tiles := []core.Tile{
		{X: 100, Y: 100, Layer: 1},
		{X: 140, Y: 140, Layer: 2},
		{X: 100, Y: 100, Layer: 3},
	}
	g := Build(tiles, tileSize)
	tr := NewTracker(g)

	require.Equal(t, 2, tr.Remaining(0))
	require.Equal(t, 1, tr.Remaining(1))
	assert.True(t, tr.Free(2))
	assert.Equal(t, 2, tr.LiveOutDegree(2))

	var freed []int
	onFree := func(h int) { freed = append(freed, h) }

	assert.True(t, tr.Resolve(2, onFree))
	assert.Equal(t, []int{1}, freed)
	assert.Equal(t, 1, tr.Remaining(0))

	assert.False(t, tr.Resolve(2, onFree), "second resolve must be a no-op")
	assert.Equal(t, 1, tr.Remaining(0))

	assert.True(t, tr.Resolve(1, onFree))
	assert.Equal(t, []int{1, 0}, freed)
	assert.True(t, tr.Free(0))
	assert.True(t, tr.Resolved(1))
	assert.Equal(t, 0, tr.LiveOutDegree(1))
}
