// Package solver plays a typed board the way a player would: click a
// reachable tile, drop it into the slot bar, clear three of a kind, lose when
// the bar fills up. It is a reference player for validation, not an optimal
// solver.
//
// The search is a depth-first walk that tries tiles completing a triple
// first, then tiles joining a pair or single already in the bar, then the
// tiles uncovering the most of the board. Failed positions are memoized by
// the set of clicked tiles, which fully determines the slot bar.
package solver

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
	"sort"

	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/occlusion"
)

const groupSize = 3

// ErrBudget is returned when the node budget ran out before a verdict.
var ErrBudget = errors.New("solver: node budget exhausted")

// Options configures the search.
type Options struct {
	Slots    int // Slot bar size of the game (e.g., 7)
	MaxNodes int // Search budget in visited positions (0 = unlimited)
}

// DefaultOptions returns the settings of the shipped game.
func DefaultOptions() Options {
	return Options{
		Slots:    7,
		MaxNodes: 250000,
	}
}

// Result is the outcome of a search.
type Result struct {
	Solved bool
	Order  []int // click order when solved
	Nodes  int
	Peak   int // highest slot occupancy along the solution
}

// Solve searches for a clearing order of tiles. g must have been built from
// tiles. An exhausted budget yields ErrBudget together with the partial
// node count.
func Solve(tiles []core.Tile, g *occlusion.Graph, opts Options) (Result, error) {
	if opts.Slots < 1 {
		return Result{}, errors.New("solver: slots must be positive")
	}
	if g.Len() != len(tiles) {
		return Result{}, errors.New("solver: graph does not match tiles")
	}

	s := newSearch(tiles, g, opts)
	solved := s.dfs(0)

	res := Result{Solved: solved, Nodes: s.nodes}
	if solved {
		res.Order = append([]int(nil), s.path...)
		res.Peak = s.bestPeak
	}
	if !solved && s.exhausted {
		return res, ErrBudget
	}
	return res, nil
}

type search struct {
	g     *occlusion.Graph
	opts  Options
	types []int // type index per tile
	n     int

	remaining []int32
	clicked   []uint64 // bitset
	count     int
	slot      []int // tiles of each type currently in the bar
	occupied  int

	path     []int
	bestPeak int

	failed    map[uint64]struct{}
	nodes     int
	exhausted bool
	keyBuf    []byte
}

func newSearch(tiles []core.Tile, g *occlusion.Graph, opts Options) *search {
	index := make(map[string]int)
	types := make([]int, len(tiles))
	for i, t := range tiles {
		id, ok := index[t.Type]
		if !ok {
			id = len(index)
			index[t.Type] = id
		}
		types[i] = id
	}

	remaining := make([]int32, g.Len())
	for h := range remaining {
		remaining[h] = int32(g.InDegree(h))
	}

	words := (len(tiles) + 63) / 64
	return &search{
		g:         g,
		opts:      opts,
		types:     types,
		n:         len(tiles),
		remaining: remaining,
		clicked:   make([]uint64, words),
		slot:      make([]int, len(index)),
		failed:    make(map[uint64]struct{}),
		keyBuf:    make([]byte, 8*words),
	}
}

func (s *search) isClicked(h int) bool {
	return s.clicked[h/64]&(1<<(uint(h)%64)) != 0
}

func (s *search) key() uint64 {
	for i, w := range s.clicked {
		binary.LittleEndian.PutUint64(s.keyBuf[i*8:], w)
	}
	h := fnv.New64a()
	h.Write(s.keyBuf)
	return h.Sum64()
}

func (s *search) dfs(peak int) bool {
	if s.count == s.n {
		s.bestPeak = peak
		return true
	}
	if s.opts.MaxNodes > 0 && s.nodes >= s.opts.MaxNodes {
		s.exhausted = true
		return false
	}
	s.nodes++

	k := s.key()
	if _, seen := s.failed[k]; seen {
		return false
	}

	for _, h := range s.candidates() {
		t := s.types[h]
		prev := s.slot[t]

		occupied := s.occupied + 1
		if prev+1 == groupSize {
			s.slot[t] = 0
			occupied -= groupSize
		} else {
			if occupied >= s.opts.Slots {
				continue // bar full without a match
			}
			s.slot[t] = prev + 1
		}

		before := s.occupied
		s.occupied = occupied
		s.click(h)

		if s.dfs(max(peak, before+1)) {
			return true
		}

		s.unclick(h)
		s.occupied = before
		s.slot[t] = prev

		if s.exhausted {
			return false
		}
	}

	s.failed[k] = struct{}{}
	return false
}

func (s *search) click(h int) {
	s.clicked[h/64] |= 1 << (uint(h) % 64)
	s.count++
	s.path = append(s.path, h)
	for _, b := range s.g.Blocks(h) {
		s.remaining[b]--
	}
}

func (s *search) unclick(h int) {
	for _, b := range s.g.Blocks(h) {
		s.remaining[b]++
	}
	s.path = s.path[:len(s.path)-1]
	s.count--
	s.clicked[h/64] &^= 1 << (uint(h) % 64)
}

// candidates returns the reachable tiles in the order they are tried.
func (s *search) candidates() []int {
	var out []int
	for h := 0; h < s.n; h++ {
		if s.remaining[h] == 0 && !s.isClicked(h) {
			out = append(out, h)
		}
	}

	rank := func(h int) int {
		switch s.slot[s.types[h]] {
		case groupSize - 1:
			return 0
		case 0:
			return 2
		default:
			return 1
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return s.liveOut(out[i]) > s.liveOut(out[j])
	})
	return out
}

func (s *search) liveOut(h int) int {
	n := 0
	for _, b := range s.g.Blocks(h) {
		if !s.isClicked(int(b)) {
			n++
		}
	}
	return n
}
