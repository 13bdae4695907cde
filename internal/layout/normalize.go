package layout

import "github.com/vovakirdan/triple-tiles/internal/core"

// Normalize recenters the layout on the canvas focal point and pins every
// tile into the safe rectangle. Clamping moves tiles to the edge instead of
// rescaling, so heavily clamped layouts gain extra overlap.
func Normalize(tiles []core.Tile, c core.Canvas) {
	box, ok := core.Bounds(tiles)
	if !ok {
		return
	}

	center := box.Center()
	dx := c.CenterX - center.X
	dy := c.CenterY - center.Y

	for i := range tiles {
		p := c.Safe.Clamp(core.Point{X: tiles[i].X + dx, Y: tiles[i].Y + dy})
		tiles[i].X = p.X
		tiles[i].Y = p.Y
	}
}
