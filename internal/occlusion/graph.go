// Package occlusion derives the "blocks" relation between stacked tiles and
// tracks how many unresolved blockers each tile still has.
//
// Tile A blocks tile B when A sits on a higher layer and their tile-sized
// footprints overlap on both axes. Tiles are addressed by their index in the
// board's tile slice.
package occlusion

import (
	"sort"

	"github.com/vovakirdan/triple-tiles/internal/core"
)

// Graph is an immutable blocking graph in compressed sparse row form.
type Graph struct {
	offsets  []int32 // edges[offsets[h]:offsets[h+1]] are the tiles h blocks
	edges    []int32
	inDegree []int32
}

// Build scans every ordered pair once and returns the blocking graph.
func Build(tiles []core.Tile, tileSize float64) *Graph {
	n := len(tiles)
	g := &Graph{
		offsets:  make([]int32, n+1),
		inDegree: make([]int32, n),
	}

	for a := 0; a < n; a++ {
		g.offsets[a] = int32(len(g.edges))
		ta := tiles[a]
		for b := 0; b < n; b++ {
			tb := tiles[b]
			if ta.Layer <= tb.Layer {
				continue
			}
			if core.Overlaps(ta.Center(), tb.Center(), tileSize) {
				g.edges = append(g.edges, int32(b))
				g.inDegree[b]++
			}
		}
	}
	g.offsets[n] = int32(len(g.edges))

	return g
}

// Len returns the number of tiles in the graph.
func (g *Graph) Len() int {
	return len(g.inDegree)
}

// EdgeCount returns the total number of blocking edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Blocks returns the tiles directly blocked by h. The slice aliases graph
// storage and must not be modified.
func (g *Graph) Blocks(h int) []int32 {
	return g.edges[g.offsets[h]:g.offsets[h+1]]
}

// OutDegree returns how many tiles h blocks.
func (g *Graph) OutDegree(h int) int {
	return int(g.offsets[h+1] - g.offsets[h])
}

// InDegree returns how many tiles block h.
func (g *Graph) InDegree(h int) int {
	return int(g.inDegree[h])
}

// Blockers returns the tiles that block h, in ascending order. It walks the
// whole edge list and is meant for diagnostics, not the generation loop.
func (g *Graph) Blockers(h int) []int {
	var out []int
	for a := 0; a < g.Len(); a++ {
		for _, b := range g.Blocks(a) {
			if int(b) == h {
				out = append(out, a)
				break
			}
		}
	}
	sort.Ints(out)
	return out
}

// Roots returns every tile with no blockers, in ascending order.
func (g *Graph) Roots() []int {
	var roots []int
	for h, d := range g.inDegree {
		if d == 0 {
			roots = append(roots, h)
		}
	}
	return roots
}
