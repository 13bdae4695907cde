package layout

import (
	"math"

	"github.com/vovakirdan/triple-tiles/internal/core"
)

// TargetCount rounds a requested tile count up to the next multiple of 3.
func TargetCount(requested int) int {
	if requested <= 0 || requested > math.MaxInt-2 {
		return 0
	}
	return (requested + 2) / 3 * 3
}

// Generate lays out TargetCount(total) untyped tiles over layers 1..layers
// using the given pattern. The emitted count is exact: placement stops as
// soon as the target is reached, and short layouts are topped up with the
// random fallback rule.
func Generate(total, layers int, p Pattern, canvas core.Canvas, rng core.Source) []core.Tile {
	target := TargetCount(total)
	if target == 0 || layers <= 0 {
		return nil
	}

	e := &emitter{
		canvas: canvas,
		rng:    rng,
		jitter: newJitter(canvas, rng),
		target: target,
		tiles:  make([]core.Tile, 0, target),
	}

	quota := (target + layers - 1) / layers

	for l := 0; l < layers && !e.full(); l++ {
		remaining := target - len(e.tiles)
		lp := &layerPass{
			e:      e,
			layer:  l + 1,
			offset: float64(l%2) * canvas.TileSize / 2,
			budget: p.budget(remaining, quota),
		}
		p.place(lp)
	}

	// Never under-produce.
	for !e.full() {
		col := rng.Intn(8) - 4
		row := rng.Intn(9) - 4
		e.add(canvas.Cell(col, row, 0), rng.Intn(layers)+1)
	}

	return e.tiles
}

// emitter owns the growing tile arena for one layout run.
type emitter struct {
	canvas core.Canvas
	rng    core.Source
	jitter jitterFunc
	target int
	tiles  []core.Tile
}

func (e *emitter) full() bool {
	return len(e.tiles) >= e.target
}

func (e *emitter) add(p core.Point, layer int) bool {
	if e.full() {
		return false
	}
	dx, dy := e.jitter(p, layer)
	e.tiles = append(e.tiles, core.Tile{
		ID:    core.TileID(len(e.tiles)),
		X:     p.X + dx,
		Y:     p.Y + dy,
		Layer: layer,
	})
	return true
}

// layerPass is the budgeted view of the emitter handed to a pattern for one
// layer.
type layerPass struct {
	e      *emitter
	layer  int
	offset float64 // structural half-tile shift on alternating layers
	budget int
	placed int
}

func (lp *layerPass) done() bool {
	return lp.placed >= lp.budget || lp.e.full()
}

func (lp *layerPass) place(p core.Point) bool {
	if lp.done() {
		return false
	}
	if !lp.e.add(p, lp.layer) {
		return false
	}
	lp.placed++
	return true
}

func (lp *layerPass) canvas() core.Canvas { return lp.e.canvas }
func (lp *layerPass) rng() core.Source    { return lp.e.rng }

// cell places grid cell (col,row) relative to the canvas center with the
// layer's structural offset applied.
func (lp *layerPass) cell(col, row int) bool {
	return lp.place(lp.canvas().Cell(col, row, lp.offset))
}
