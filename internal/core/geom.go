package core

import "math"

// Point is a position in canvas coordinates.
// X increases to the right, Y increases downward (screen coordinates).
type Point struct {
	X, Y float64
}

// Add returns the point offset by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Rect represents an axis-aligned box in canvas coordinates.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// NewRect creates a rectangle from its corner bounds.
func NewRect(minX, minY, maxX, maxY float64) Rect {
	return Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// Footprint returns the size×size square centered at p.
func Footprint(p Point, size float64) Rect {
	h := size / 2
	return Rect{MinX: p.X - h, MinY: p.Y - h, MaxX: p.X + h, MaxY: p.Y + h}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 {
	return r.MaxX - r.MinX
}

// Height returns the vertical extent.
func (r Rect) Height() float64 {
	return r.MaxY - r.MinY
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Intersects returns true if the interiors of the two rectangles overlap.
// Touching edges do not count as overlap.
func (r Rect) Intersects(other Rect) bool {
	if r.MinX >= other.MaxX || other.MinX >= r.MaxX {
		return false
	}
	if r.MinY >= other.MaxY || other.MinY >= r.MaxY {
		return false
	}
	return true
}

// Contains returns true if p lies inside the rectangle (bounds inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Clamp pins p to the rectangle edges.
func (r Rect) Clamp(p Point) Point {
	return Point{X: ClampF(p.X, r.MinX, r.MaxX), Y: ClampF(p.Y, r.MinY, r.MaxY)}
}

// Shrink returns the rectangle inset by d on every side.
func (r Rect) Shrink(d float64) Rect {
	return Rect{MinX: r.MinX + d, MinY: r.MinY + d, MaxX: r.MaxX - d, MaxY: r.MaxY - d}
}

// Overlaps reports whether two size×size footprints centered at a and b
// overlap on both axes. This is the occlusion test used by the generator and
// must match the one the game client applies.
func Overlaps(a, b Point, size float64) bool {
	return math.Abs(a.X-b.X) < size && math.Abs(a.Y-b.Y) < size
}

// Bounds returns the bounding box of the tile centers, and false for no tiles.
func Bounds(tiles []Tile) (Rect, bool) {
	if len(tiles) == 0 {
		return Rect{}, false
	}
	r := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, t := range tiles {
		r.MinX = math.Min(r.MinX, t.X)
		r.MaxX = math.Max(r.MaxX, t.X)
		r.MinY = math.Min(r.MinY, t.Y)
		r.MaxY = math.Max(r.MaxY, t.Y)
	}
	return r, true
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
