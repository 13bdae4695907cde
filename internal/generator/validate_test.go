package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/triple-tiles/internal/assign"
	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/occlusion"
	"github.com/vovakirdan/triple-tiles/internal/solver"
)

func flatBoard(types ...string) *core.Board {
	tiles := make([]core.Tile, len(types))
	for i, typ := range types {
		tiles[i] = core.Tile{ID: core.TileID(i), Type: typ, X: float64(i) * 100, Layer: 1}
	}
	return &core.Board{Tiles: tiles}
}

func validationCode(t *testing.T, err error) string {
	t.Helper()
	var ve ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve.Code
}

func TestValidateBoard(t *testing.T) {
	tests := []struct {
		name  string
		board *core.Board
		code  string
	}{
		{"valid", flatBoard("coin", "coin", "coin", "wood", "wood", "wood"), ""},
		{"count not triple", flatBoard("coin", "coin", "coin", "wood"), CodeCountNotTriple},
		{"untyped tile", flatBoard("coin", "", "coin"), CodeUntypedTile},
		{"type not triple", flatBoard("coin", "coin", "wood"), CodeTypeNotTriple},
		{"empty board", &core.Board{}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBoard(tc.board)
			if tc.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.code, validationCode(t, err))
		})
	}
}

func TestReplayMovesDetectsCoveredClick(t *testing.T) {
	tiles := []core.Tile{
		{ID: "tile-0", Type: "coin", X: 100, Y: 100, Layer: 1},
		{ID: "tile-1", Type: "coin", X: 100, Y: 100, Layer: 2},
		{ID: "tile-2", Type: "coin", X: 300, Y: 100, Layer: 1},
	}
	g := occlusion.Build(tiles, 80)

	moves := []assign.Move{{Action: assign.ActionMatch, Tiles: []int{0, 1, 2}, Pulled: 3}}
	_, err := ReplayMoves(tiles, g, moves, 7)
	assert.Equal(t, CodeBlockedResolve, validationCode(t, err))

	moves = []assign.Move{{Action: assign.ActionMatch, Tiles: []int{1, 0, 2}, Pulled: 3}}
	report, err := ReplayMoves(tiles, g, moves, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Clicks)
	assert.Equal(t, 3, report.PeakSlots)
}

func TestReplayMovesDetectsOverflow(t *testing.T) {
	b := flatBoard("coin", "wood", "stone")
	g := occlusion.Build(b.Tiles, 80)

	moves := []assign.Move{
		{Action: assign.ActionDig, Tiles: []int{0}},
		{Action: assign.ActionDig, Tiles: []int{1}},
	}
	_, err := ReplayMoves(b.Tiles, g, moves, 2)
	assert.Equal(t, CodeSlotOverflow, validationCode(t, err))
}

func TestReplayMovesDetectsLeftovers(t *testing.T) {
	b := flatBoard("coin", "coin", "coin")
	g := occlusion.Build(b.Tiles, 80)

	_, err := ReplayMoves(b.Tiles, g, nil, 7)
	assert.Equal(t, CodeNotCleared, validationCode(t, err))

	_, err = ReplayMoves(b.Tiles, g, []assign.Move{{Action: assign.ActionDig, Tiles: []int{9}}}, 7)
	assert.Equal(t, CodeBlockedResolve, validationCode(t, err))
}

func TestReplayMovesRejectsMalformedMoves(t *testing.T) {
	b := flatBoard("coin", "coin", "coin")
	g := occlusion.Build(b.Tiles, 80)

	_, err := ReplayMoves(b.Tiles, g, []assign.Move{{Action: assign.ActionMatch, Tiles: []int{0}, Pulled: 2}}, 7)
	assert.Error(t, err)

	_, err = ReplayMoves(b.Tiles, g, []assign.Move{{Action: assign.Action(9), Tiles: []int{0}}}, 7)
	assert.Error(t, err)
}

func TestValidateSolvableReportsFailure(t *testing.T) {
	b := flatBoard("coin", "coin", "coin")

	_, err := ValidateSolvable(b, 80, solver.Options{Slots: 2})
	assert.Equal(t, CodeNotSolvable, validationCode(t, err))

	sol, err := ValidateSolvable(b, 80, solver.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, sol.Solved)
}
