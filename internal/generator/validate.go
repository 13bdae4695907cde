package generator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vovakirdan/triple-tiles/internal/assign"
	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/occlusion"
	"github.com/vovakirdan/triple-tiles/internal/solver"
)

// Validation failure codes.
const (
	CodeCountNotTriple = "COUNT_NOT_TRIPLE"
	CodeUntypedTile    = "UNTYPED_TILE"
	CodeTypeNotTriple  = "TYPE_NOT_TRIPLE"
	CodeBlockedResolve = "BLOCKED_RESOLVE"
	CodeSlotOverflow   = "SLOT_OVERFLOW"
	CodeNotCleared     = "NOT_CLEARED"
	CodeNotSolvable    = "NOT_SOLVABLE"
)

// ValidationError contains details about validation failure.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ValidateBoard performs the static checks on a finished board:
//   - tile count is a multiple of three
//   - every tile has a type
//   - every type appears a multiple of three times
func ValidateBoard(b *core.Board) error {
	if n := b.Len(); n%assign.GroupSize != 0 {
		return ValidationError{
			Code:    CodeCountNotTriple,
			Message: fmt.Sprintf("board has %d tiles", n),
		}
	}

	for _, t := range b.Tiles {
		if !t.Assigned() {
			return ValidationError{
				Code:    CodeUntypedTile,
				Message: fmt.Sprintf("tile %s has no type", t.ID),
			}
		}
	}

	counts := b.CountByType()
	types := make([]string, 0, len(counts))
	for typ := range counts {
		types = append(types, typ)
	}
	sort.Strings(types)

	for _, typ := range types {
		if counts[typ]%assign.GroupSize != 0 {
			return ValidationError{
				Code:    CodeTypeNotTriple,
				Message: fmt.Sprintf("type %s appears %d times", typ, counts[typ]),
			}
		}
	}

	return nil
}

// ReplayReport summarizes a successful replay.
type ReplayReport struct {
	Clicks    int
	PeakSlots int // most tiles in the bar at once, counted before a triple clears
}

// ReplayMoves clicks the recorded engine trace into a slot bar of the given
// size. It fails when a tile is clicked while covered, when the bar fills up
// without a match, or when the trace leaves tiles on the board.
func ReplayMoves(tiles []core.Tile, g *occlusion.Graph, moves []assign.Move, slots int) (ReplayReport, error) {
	var report ReplayReport
	tr := occlusion.NewTracker(g)
	bar := make([]string, 0, slots)

	click := func(h int) error {
		if h < 0 || h >= len(tiles) {
			return ValidationError{
				Code:    CodeBlockedResolve,
				Message: fmt.Sprintf("move references tile %d outside the board", h),
			}
		}
		if tr.Resolved(h) || !tr.Free(h) {
			return ValidationError{
				Code: CodeBlockedResolve,
				Message: fmt.Sprintf("click %d: tile %s is covered by %d tiles or already taken",
					report.Clicks+1, tiles[h].ID, tr.Remaining(h)),
			}
		}
		tr.Resolve(h, nil)
		report.Clicks++

		typ := tiles[h].Type
		bar = append(bar, typ)
		report.PeakSlots = max(report.PeakSlots, len(bar))

		if countOf(bar, typ) >= assign.GroupSize {
			bar = removeType(bar, typ)
			return nil
		}
		if len(bar) >= slots {
			return ValidationError{
				Code:    CodeSlotOverflow,
				Message: fmt.Sprintf("click %d: bar full with %d tiles", report.Clicks, len(bar)),
			}
		}
		return nil
	}

	for i, m := range moves {
		var picked []int
		switch m.Action {
		case assign.ActionDig:
			picked = m.Tiles
		case assign.ActionMatch:
			if m.Pulled < 0 || m.Pulled > len(m.Tiles) {
				return report, fmt.Errorf("move %d: pulled %d of %d tiles", i, m.Pulled, len(m.Tiles))
			}
			picked = m.Tiles[len(m.Tiles)-m.Pulled:]
		default:
			return report, fmt.Errorf("move %d: unknown action %d", i, m.Action)
		}
		for _, h := range picked {
			if err := click(h); err != nil {
				return report, err
			}
		}
	}

	if report.Clicks != len(tiles) || len(bar) > 0 {
		return report, ValidationError{
			Code: CodeNotCleared,
			Message: fmt.Sprintf("%d of %d tiles clicked, %d left in the bar",
				report.Clicks, len(tiles), len(bar)),
		}
	}
	return report, nil
}

// ValidateResult runs the static board checks and replays the engine trace.
func ValidateResult(res *Result, slots int) error {
	if err := ValidateBoard(res.Board); err != nil {
		return err
	}
	_, err := ReplayMoves(res.Board.Tiles, res.Graph, res.Moves, slots)
	return err
}

// ValidateSolvable asks the reference player to clear the board
// independently of the engine trace.
func ValidateSolvable(b *core.Board, tileSize float64, opts solver.Options) (solver.Result, error) {
	g := occlusion.Build(b.Tiles, tileSize)
	res, err := solver.Solve(b.Tiles, g, opts)
	if err != nil {
		if errors.Is(err, solver.ErrBudget) {
			return res, ValidationError{
				Code:    CodeNotSolvable,
				Message: fmt.Sprintf("no verdict after %d positions", res.Nodes),
			}
		}
		return res, err
	}
	if !res.Solved {
		return res, ValidationError{
			Code:    CodeNotSolvable,
			Message: fmt.Sprintf("no clearing order with %d slots (%d positions searched)", opts.Slots, res.Nodes),
		}
	}
	return res, nil
}

func countOf(bar []string, typ string) int {
	n := 0
	for _, s := range bar {
		if s == typ {
			n++
		}
	}
	return n
}

func removeType(bar []string, typ string) []string {
	kept := bar[:0]
	for _, s := range bar {
		if s != typ {
			kept = append(kept, s)
		}
	}
	return kept
}
