package core

// JitterMode selects how per-tile positional noise is produced.
type JitterMode string

const (
	JitterUniform JitterMode = "uniform" // independent uniform offsets per tile
	JitterNoise   JitterMode = "noise"   // coherent Perlin field across the canvas
	JitterNone    JitterMode = "none"
)

// Canvas describes the fixed drawing surface boards are laid out on.
// Units are canvas pixels of the mobile client.
type Canvas struct {
	CenterX  float64    `yaml:"center_x"`
	CenterY  float64    `yaml:"center_y"`
	TileSize float64    `yaml:"tile_size"`
	Jitter   float64    `yaml:"jitter"` // full jitter span; offsets are in [-Jitter/2, Jitter/2)
	Mode     JitterMode `yaml:"jitter_mode"`
	Safe     Rect       `yaml:"-"` // clamp region applied by the normalizer
	Scatter  Rect       `yaml:"-"` // placement region for scattered piles
	Grid     GridSize   `yaml:"grid"`
}

// DefaultCanvas returns the canvas of the mobile client (750px wide safe area).
func DefaultCanvas() Canvas {
	return Canvas{
		CenterX:  375,
		CenterY:  580,
		TileSize: 80,
		Jitter:   12,
		Mode:     JitterUniform,
		Safe:     NewRect(90, 240, 660, 910),
		Scatter:  NewRect(50, 200, 700, 950),
		Grid:     GridSize{Cols: 8, Rows: 10},
	}
}

// Center returns the focal point of the canvas.
func (c Canvas) Center() Point {
	return Point{X: c.CenterX, Y: c.CenterY}
}

// Cell returns the canvas position of grid cell (col, row) relative to the
// center, shifted by the given structural offset.
func (c Canvas) Cell(col, row int, offset float64) Point {
	return Point{
		X: c.CenterX + float64(col)*c.TileSize + offset,
		Y: c.CenterY + float64(row)*c.TileSize + offset,
	}
}
