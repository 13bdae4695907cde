// Package assign gives every tile a type by simulating a play-through of the
// board. Tiles are only ever resolved while reachable, groups of three get a
// shared type, and the simulated buffer never exceeds a capacity strictly
// below the game's slot count, so the recorded order is a valid clearing
// order for the finished board.
package assign

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/occlusion"
)

// GroupSize is the number of identical tiles cleared by one match.
const GroupSize = 3

// ErrDeadlock is returned when the simulation can make no progress or
// exceeds its iteration cap before every tile is typed.
var ErrDeadlock = errors.New("assign: generation deadlock")

// Params configures the engine.
type Params struct {
	SlotCapacity   int     // Slots of the real game (e.g., 7)
	SafetyMargin   int     // Slots kept free in simulation (>= 1)
	DigProbability float64 // Chance to dig instead of match when both are possible (0-1)
	DigTopK        int     // Dig picks uniformly among this many highest out-degree tiles
	MaxIterations  int     // 0 = 4n+16
}

// DefaultParams returns the tuning used for the shipped levels.
func DefaultParams() Params {
	return Params{
		SlotCapacity:   7,
		SafetyMargin:   1,
		DigProbability: 0.6,
		DigTopK:        3,
		MaxIterations:  0,
	}
}

// BufferCapacity returns the number of tiles the simulation may hold.
func (p Params) BufferCapacity() int {
	return p.SlotCapacity - p.SafetyMargin
}

// Validate checks the parameters for values that would make the engine
// unsound.
func (p Params) Validate() error {
	switch {
	case p.SafetyMargin < 1:
		return fmt.Errorf("safety margin must be at least 1, got %d", p.SafetyMargin)
	case p.BufferCapacity() < 2:
		return fmt.Errorf("buffer capacity (slots %d - margin %d) must be at least 2",
			p.SlotCapacity, p.SafetyMargin)
	case p.DigProbability < 0 || p.DigProbability > 1:
		return fmt.Errorf("dig probability must be within [0,1], got %g", p.DigProbability)
	case p.DigTopK < 1:
		return fmt.Errorf("dig top-k must be at least 1, got %d", p.DigTopK)
	case p.MaxIterations < 0:
		return fmt.Errorf("max iterations must not be negative, got %d", p.MaxIterations)
	}
	return nil
}

// Action is one simulated player decision.
type Action uint8

const (
	ActionDig Action = iota
	ActionMatch
)

// String returns the string representation of an action.
func (a Action) String() string {
	switch a {
	case ActionDig:
		return "dig"
	case ActionMatch:
		return "match"
	default:
		return "unknown"
	}
}

// Move records one action and the tiles it touched. For a dig it is the
// single buffered tile; for a match it is the whole group, buffered tiles
// first, followed by the tiles pulled from the board in pull order.
type Move struct {
	Action Action
	Tiles  []int
	// Pulled is the number of tiles at the end of Tiles taken from the board
	// (the rest came out of the buffer).
	Pulled int
}

// Stats summarizes one assignment run.
type Stats struct {
	MatchCount      int
	DigCount        int
	UnassignedCount int // tiles typed by the cleanup pass
	Underfilled     int // match groups with fewer than three tiles
}

// DelayedMatchRatio is the share of digs among all resolving actions.
func (s Stats) DelayedMatchRatio() float64 {
	total := s.DigCount + s.MatchCount
	if total == 0 {
		return 0
	}
	return float64(s.DigCount) / float64(total)
}

// Result is the outcome of Assign.
type Result struct {
	Stats Stats
	Moves []Move
}

// Engine assigns types to tiles. An Engine has no per-run state and may be
// reused; concurrent runs need separate Sources.
type Engine struct {
	params Params
	rng    core.Source
	logger *log.Logger
}

// New creates an engine. A nil logger discards output.
func New(p Params, rng core.Source, logger *log.Logger) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("assign: nil random source")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{params: p, rng: rng, logger: logger}, nil
}

// Assign types every tile in place. g must have been built from tiles.
func (e *Engine) Assign(tiles []core.Tile, g *occlusion.Graph, palette []string) (Result, error) {
	if len(palette) == 0 {
		return Result{}, errors.New("assign: empty palette")
	}
	if g.Len() != len(tiles) {
		return Result{}, fmt.Errorf("assign: graph has %d tiles, board has %d", g.Len(), len(tiles))
	}

	for i := range tiles {
		tiles[i].Type = ""
	}

	r := newRun(e, tiles, g, palette)
	if err := r.loop(); err != nil {
		return Result{Stats: r.stats, Moves: r.moves}, err
	}
	r.cleanup()

	return Result{Stats: r.stats, Moves: r.moves}, nil
}

type tileState uint8

const (
	stateFree tileState = iota
	stateBuffered
	stateAssigned
)

// run is the mutable state of one Assign call.
type run struct {
	e       *Engine
	tiles   []core.Tile
	g       *occlusion.Graph
	palette []string
	tracker *occlusion.Tracker

	state    []tileState
	frontier []int // free, unblocked tiles
	slot     []int // position of each tile in frontier, -1 if absent
	buffer   []int

	assigned int
	stats    Stats
	moves    []Move
}

func newRun(e *Engine, tiles []core.Tile, g *occlusion.Graph, palette []string) *run {
	n := len(tiles)
	r := &run{
		e:       e,
		tiles:   tiles,
		g:       g,
		palette: palette,
		tracker: occlusion.NewTracker(g),
		state:   make([]tileState, n),
		slot:    make([]int, n),
		buffer:  make([]int, 0, e.params.BufferCapacity()),
	}
	for h := range r.slot {
		r.slot[h] = -1
	}
	for _, h := range g.Roots() {
		r.pushFrontier(h)
	}
	return r
}

func (r *run) pushFrontier(h int) {
	if r.state[h] != stateFree || r.slot[h] >= 0 {
		return
	}
	r.slot[h] = len(r.frontier)
	r.frontier = append(r.frontier, h)
}

func (r *run) removeFrontier(h int) {
	i := r.slot[h]
	if i < 0 {
		return
	}
	last := len(r.frontier) - 1
	moved := r.frontier[last]
	r.frontier[i] = moved
	r.slot[moved] = i
	r.frontier = r.frontier[:last]
	r.slot[h] = -1
}

// resolve takes h off the board: it leaves the frontier and stops blocking.
func (r *run) resolve(h int) {
	r.removeFrontier(h)
	r.tracker.Resolve(h, r.pushFrontier)
}

func (r *run) maxIterations() int {
	if r.e.params.MaxIterations > 0 {
		return r.e.params.MaxIterations
	}
	return 4*len(r.tiles) + 16
}

func (r *run) loop() error {
	total := len(r.tiles)
	limit := r.maxIterations()

	for iter := 0; r.assigned < total; iter++ {
		if iter >= limit {
			return fmt.Errorf("%w: iteration cap %d reached with %d/%d tiles typed",
				ErrDeadlock, limit, r.assigned, total)
		}

		if r.chooseDig() {
			r.dig()
			continue
		}
		if err := r.match(); err != nil {
			return err
		}
	}
	return nil
}

// chooseDig decides between DIG and MATCH for the current state.
func (r *run) chooseDig() bool {
	if len(r.buffer) >= r.e.params.BufferCapacity() || len(r.frontier) == 0 {
		return false
	}
	// Digging only adds difficulty when it uncovers something; on a board
	// with nothing left to uncover every action is a plain match.
	if !r.frontierOpens() {
		return false
	}
	// Not enough tiles for a full group: dig to open the board instead of
	// emitting an under-filled one.
	if len(r.buffer)+len(r.frontier) < GroupSize {
		return true
	}
	return r.e.rng.Float() < r.e.params.DigProbability
}

// frontierOpens reports whether some reachable tile still covers an
// unresolved tile.
func (r *run) frontierOpens() bool {
	for _, h := range r.frontier {
		if r.tracker.LiveOutDegree(h) > 0 {
			return true
		}
	}
	return false
}

func (r *run) dig() {
	candidates := make([]int, len(r.frontier))
	copy(candidates, r.frontier)
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := r.g.OutDegree(candidates[i]), r.g.OutDegree(candidates[j])
		if di != dj {
			return di > dj
		}
		return candidates[i] < candidates[j]
	})

	k := min(r.e.params.DigTopK, len(candidates))
	picked := candidates[r.e.rng.Intn(k)]

	r.resolve(picked)
	r.state[picked] = stateBuffered
	r.buffer = append(r.buffer, picked)
	r.stats.DigCount++
	r.moves = append(r.moves, Move{Action: ActionDig, Tiles: []int{picked}})
}

func (r *run) match() error {
	group := make([]int, 0, GroupSize)

	for len(group) < GroupSize && len(r.buffer) > 0 {
		last := len(r.buffer) - 1
		group = append(group, r.buffer[last])
		r.buffer = r.buffer[:last]
	}
	fromBuffer := len(group)

	for len(group) < GroupSize && len(r.frontier) > 0 {
		h := r.frontier[r.e.rng.Intn(len(r.frontier))]
		r.resolve(h)
		group = append(group, h)
	}

	if len(group) == 0 {
		return fmt.Errorf("%w: nothing reachable with %d/%d tiles typed",
			ErrDeadlock, r.assigned, len(r.tiles))
	}
	if len(group) < GroupSize {
		r.stats.Underfilled++
		r.e.logger.Warn("under-filled match group", "size", len(group), "typed", r.assigned)
	}

	typ := r.palette[r.e.rng.Intn(len(r.palette))]
	for _, h := range group {
		r.tiles[h].Type = typ
		r.state[h] = stateAssigned
	}
	r.assigned += len(group)
	r.stats.MatchCount++
	r.moves = append(r.moves, Move{Action: ActionMatch, Tiles: group, Pulled: len(group) - fromBuffer})
	return nil
}

// cleanup types anything the loop left behind. A non-zero count is a quality
// defect to be reviewed, not a failure.
func (r *run) cleanup() {
	missing := 0
	for i := range r.tiles {
		if r.tiles[i].Type == "" {
			r.tiles[i].Type = r.palette[r.e.rng.Intn(len(r.palette))]
			missing++
		}
	}
	if missing > 0 {
		r.e.logger.Warn("cleanup: tiles were unassigned, randomly filled", "count", missing)
	}
	r.stats.UnassignedCount = missing
}
