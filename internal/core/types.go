// Package core provides the fundamental board types, canvas geometry and the
// deterministic random source shared by the layout, occlusion and assignment
// stages. It has no external dependencies to keep generation pure and testable.
package core

import "fmt"

// Tile is a single board unit. Type is empty until the assignment engine
// gives the tile a palette symbol.
type Tile struct {
	ID    string  `json:"id" yaml:"id"`
	Type  string  `json:"type" yaml:"type"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Layer int     `json:"layer" yaml:"layer"` // 1 is the bottom layer
}

// TileID returns the canonical identifier for the tile at arena index i.
func TileID(i int) string {
	return fmt.Sprintf("tile-%d", i)
}

// Assigned reports whether the tile already carries a type.
func (t Tile) Assigned() bool {
	return t.Type != ""
}

// Center returns the tile center as a point.
func (t Tile) Center() Point {
	return Point{X: t.X, Y: t.Y}
}

// GridSize is advisory layout metadata for renderers.
type GridSize struct {
	Cols int `json:"cols" yaml:"cols"`
	Rows int `json:"rows" yaml:"rows"`
}

// Board is a finished level: every tile positioned and typed.
type Board struct {
	Tiles    []Tile   `json:"tiles" yaml:"tiles"`
	GridSize GridSize `json:"gridSize" yaml:"grid_size"`
}

// Len returns the number of tiles on the board.
func (b *Board) Len() int {
	return len(b.Tiles)
}

// MaxLayer returns the highest layer index present, or 0 for an empty board.
func (b *Board) MaxLayer() int {
	top := 0
	for _, t := range b.Tiles {
		if t.Layer > top {
			top = t.Layer
		}
	}
	return top
}

// CountByType returns how many tiles carry each type. Untyped tiles are
// counted under the empty string.
func (b *Board) CountByType() map[string]int {
	counts := make(map[string]int)
	for _, t := range b.Tiles {
		counts[t.Type]++
	}
	return counts
}

// CountByLayer returns how many tiles sit on each layer.
func (b *Board) CountByLayer() map[int]int {
	counts := make(map[int]int)
	for _, t := range b.Tiles {
		counts[t.Layer]++
	}
	return counts
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	tiles := make([]Tile, len(b.Tiles))
	copy(tiles, b.Tiles)
	return &Board{Tiles: tiles, GridSize: b.GridSize}
}
