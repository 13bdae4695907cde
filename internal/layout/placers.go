package layout

import (
	"math"

	"github.com/vovakirdan/triple-tiles/internal/core"
)

// Bounded random-fill loops give up after this many misses per requested tile.
const fillAttemptsPerTile = 50

// Shape patterns stop on their own geometry; the whole remaining budget is
// offered to each layer.
func (DensePile) budget(remaining, _ int) int     { return remaining }
func (ScatteredPile) budget(remaining, _ int) int { return remaining }
func (Staggered) budget(remaining, _ int) int     { return remaining }
func (Brick) budget(remaining, _ int) int         { return remaining }

// Fill patterns keep placing until the budget is spent, so each layer only
// gets its share of the total.
func (Pyramid) budget(remaining, quota int) int { return min(remaining, quota) }
func (Spiral) budget(remaining, quota int) int  { return min(remaining, quota) }
func (Cross) budget(remaining, quota int) int   { return min(remaining, quota) }
func (Boss) budget(remaining, quota int) int    { return min(remaining, quota) }

func (p Random) budget(remaining, _ int) int {
	limit := int(math.Round(15 * p.Density))
	if limit < 1 {
		limit = 1
	}
	return min(remaining, limit)
}

func (p DensePile) place(lp *layerPass) {
	c := lp.canvas()
	size := float64(p.Size)
	startX := c.CenterX - size*c.TileSize/2
	startY := c.CenterY - size*c.TileSize/2

	for r := 0; r < p.Size; r++ {
		for col := 0; col < p.Size; col++ {
			if lp.done() {
				return
			}
			dist := math.Hypot(float64(r)-size/2, float64(col)-size/2)
			prob := 1 - dist/size
			if lp.rng().Float() < prob+0.2 {
				lp.place(core.Point{
					X: startX + float64(col)*c.TileSize + lp.offset,
					Y: startY + float64(r)*c.TileSize + lp.offset,
				})
			}
		}
	}
}

func (p ScatteredPile) place(lp *layerPass) {
	const pileSize = 3
	c := lp.canvas()
	halfPile := pileSize * c.TileSize / 2
	area := c.Scatter.Shrink(halfPile)

	for i := 0; i < p.Piles; i++ {
		px := area.MinX + lp.rng().Float()*area.Width()
		py := area.MinY + lp.rng().Float()*area.Height()
		startX := px - halfPile
		startY := py - halfPile

		for r := 0; r < pileSize; r++ {
			for col := 0; col < pileSize; col++ {
				if lp.done() {
					return
				}
				// ~70% of pile cells are filled
				if lp.rng().Float() > 0.3 {
					lp.place(core.Point{
						X: startX + float64(col)*c.TileSize,
						Y: startY + float64(r)*c.TileSize,
					})
				}
			}
		}
	}
}

func (p Staggered) place(lp *layerPass) { placeGrid(lp, p.Width, p.Height, false) }
func (p Brick) place(lp *layerPass)     { placeGrid(lp, p.Width, p.Height, true) }

func placeGrid(lp *layerPass, w, h int, brick bool) {
	c := lp.canvas()
	startX := c.CenterX - float64(w-1)*c.TileSize/2
	startY := c.CenterY - float64(h-1)*c.TileSize/2

	for r := 0; r < h; r++ {
		rowOffset := 0.0
		if brick && r%2 != 0 {
			rowOffset = c.TileSize / 2
		}
		for col := 0; col < w; col++ {
			if lp.done() {
				return
			}
			lp.place(core.Point{
				X: startX + float64(col)*c.TileSize + rowOffset + lp.offset,
				Y: startY + float64(r)*c.TileSize + lp.offset,
			})
		}
	}
}

func (p Pyramid) place(lp *layerPass) {
	c := lp.canvas()
	size := float64(p.Size)

	for r := 0; r < p.Size; r++ {
		rowWidth := size - math.Abs(float64(r)-size/2)*1.5
		startX := c.CenterX - rowWidth*c.TileSize/2
		rowY := c.CenterY - size*c.TileSize/2 + float64(r)*c.TileSize

		for col := 0; float64(col) < rowWidth; col++ {
			if lp.done() {
				return
			}
			lp.place(core.Point{
				X: startX + float64(col)*c.TileSize + lp.offset,
				Y: rowY + lp.offset,
			})
		}
	}
}

// spiralArea reports whether a spiral cell is inside the visible column/row window.
func spiralArea(x, y int) bool {
	return core.Abs(x) <= 4 && y >= -4 && y <= 6
}

func (p Spiral) place(lp *layerPass) {
	maxTurns := int(math.Ceil(p.Turns * 4))
	x, y := 0, 0
	dx, dy := 1, 0
	segment, passed, turns := 1, 0, 0

	for !lp.done() {
		if spiralArea(x, y) {
			lp.cell(x, y)
		}

		x += dx
		y += dy
		passed++

		if passed >= segment {
			passed = 0
			dx, dy = -dy, dx
			turns++
			if turns%2 == 0 {
				segment++
			}
			if turns > maxTurns {
				return
			}
		}

		if core.Abs(x) > 10 || core.Abs(y) > 10 {
			return
		}
	}
}

func (p Cross) place(lp *layerPass) {
	c := lp.canvas()
	size := float64(p.Size)
	startX := c.CenterX - size*c.TileSize/2
	startY := c.CenterY - size*c.TileSize/2

	var diagonal []core.Point
	for i := 0; i < p.Size; i++ {
		for j := 0; j < p.Size; j++ {
			if i == j || i+j == p.Size-1 {
				pt := core.Point{X: startX + float64(j)*c.TileSize, Y: startY + float64(i)*c.TileSize}
				diagonal = append(diagonal, pt)
				lp.place(pt.Add(lp.offset, lp.offset))
			}
		}
	}

	onDiagonal := func(pt core.Point) bool {
		half := c.TileSize / 2
		for _, d := range diagonal {
			if math.Abs(d.X-pt.X) < half && math.Abs(d.Y-pt.Y) < half {
				return true
			}
		}
		return false
	}

	occupied := make(map[[2]int]bool)
	attempts := fillAttemptsPerTile * (lp.budget + 1)
	for !lp.done() && attempts > 0 {
		attempts--
		col := int(math.Floor((lp.rng().Float() - 0.5) * 8))
		row := int(math.Floor((lp.rng().Float() - 0.5) * 8))
		key := [2]int{col, row}
		if occupied[key] || onDiagonal(c.Cell(col, row, 0)) {
			continue
		}
		occupied[key] = true
		lp.cell(col, row)
	}
}

func (p Boss) place(lp *layerPass) {
	c := lp.canvas()
	coreSize := max(2, p.Size/2)
	startX := c.CenterX - float64(coreSize-1)*c.TileSize/2
	startY := c.CenterY - float64(coreSize-1)*c.TileSize/2

	for r := 0; r < coreSize; r++ {
		for col := 0; col < coreSize; col++ {
			if lp.done() {
				return
			}
			lp.place(core.Point{
				X: startX + float64(col)*c.TileSize + lp.offset,
				Y: startY + float64(r)*c.TileSize + lp.offset,
			})
		}
	}

	occupied := make(map[[2]int]bool)
	attempts := fillAttemptsPerTile * (lp.budget + 1)
	for !lp.done() && attempts > 0 {
		attempts--
		col := lp.rng().Intn(9) - 4
		row := lp.rng().Intn(11) - 4
		inCore := core.Abs(col) <= 1 && core.Abs(row) <= 1
		key := [2]int{col, row}
		if inCore || occupied[key] {
			continue
		}
		occupied[key] = true
		lp.cell(col, row)
	}
}

func (p Random) place(lp *layerPass) {
	for !lp.done() {
		col := lp.rng().Intn(8) - 4
		row := lp.rng().Intn(9) - 4
		lp.cell(col, row)
	}
}
