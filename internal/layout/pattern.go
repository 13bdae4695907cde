// Package layout places board tiles on the canvas. Every named layout is a
// Pattern descriptor carrying its own parameters; the set of descriptors is
// closed (the interface has unexported methods) so adding a layout means
// adding a type here, checked at compile time.
package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Kind names a layout family.
type Kind string

const (
	KindDensePile     Kind = "dense_pile"
	KindScatteredPile Kind = "scattered_pile"
	KindStaggered     Kind = "staggered"
	KindBrick         Kind = "brick"
	KindPyramid       Kind = "pyramid"
	KindSpiral        Kind = "spiral"
	KindCross         Kind = "cross"
	KindBoss          Kind = "boss"
	KindRandom        Kind = "random"
)

// ErrUnknownPattern is returned by ParsePattern for names outside the catalog.
var ErrUnknownPattern = errors.New("unknown pattern")

// Params holds the optional numeric knobs of all patterns as they appear in
// configuration files. Zero means "use the pattern default".
type Params struct {
	Width   int     `yaml:"width,omitempty" json:"width,omitempty"`
	Height  int     `yaml:"height,omitempty" json:"height,omitempty"`
	Size    int     `yaml:"size,omitempty" json:"size,omitempty"`
	Turns   float64 `yaml:"turns,omitempty" json:"turns,omitempty"`
	Piles   int     `yaml:"piles,omitempty" json:"piles,omitempty"`
	Density float64 `yaml:"density,omitempty" json:"density,omitempty"`
}

// Pattern is a layout descriptor. Implementations are the exported structs
// in this package.
type Pattern interface {
	Kind() Kind
	// String renders the pattern with its effective parameters.
	String() string

	budget(remaining, quota int) int
	place(lp *layerPass)
}

// DensePile is a square mound per layer: cells near the grid center are
// kept with higher probability.
type DensePile struct{ Size int }

// ScatteredPile drops several 3×3 clusters at random canvas positions.
type ScatteredPile struct{ Piles int }

// Staggered is a centered Width×Height grid.
type Staggered struct{ Width, Height int }

// Brick is a Staggered grid whose odd rows shift by half a tile.
type Brick struct{ Width, Height int }

// Pyramid tapers row widths away from the middle row.
type Pyramid struct{ Size int }

// Spiral walks a square spiral out of the center for a number of turns.
type Spiral struct{ Turns float64 }

// Cross places both diagonals of a Size×Size square and scatters the rest.
type Cross struct{ Size int }

// Boss is a dense core grid with an outer scatter ring.
type Boss struct{ Size int }

// Random places up to 15×Density tiles per layer at random cells; it is also
// the fallback used to top up short layouts.
type Random struct{ Density float64 }

func (DensePile) Kind() Kind     { return KindDensePile }
func (ScatteredPile) Kind() Kind { return KindScatteredPile }
func (Staggered) Kind() Kind     { return KindStaggered }
func (Brick) Kind() Kind         { return KindBrick }
func (Pyramid) Kind() Kind       { return KindPyramid }
func (Spiral) Kind() Kind        { return KindSpiral }
func (Cross) Kind() Kind         { return KindCross }
func (Boss) Kind() Kind          { return KindBoss }
func (Random) Kind() Kind        { return KindRandom }

func (p DensePile) String() string     { return fmt.Sprintf("%s(size=%d)", p.Kind(), p.Size) }
func (p ScatteredPile) String() string { return fmt.Sprintf("%s(piles=%d)", p.Kind(), p.Piles) }
func (p Staggered) String() string {
	return fmt.Sprintf("%s(width=%d,height=%d)", p.Kind(), p.Width, p.Height)
}
func (p Brick) String() string {
	return fmt.Sprintf("%s(width=%d,height=%d)", p.Kind(), p.Width, p.Height)
}
func (p Pyramid) String() string { return fmt.Sprintf("%s(size=%d)", p.Kind(), p.Size) }
func (p Spiral) String() string  { return fmt.Sprintf("%s(turns=%g)", p.Kind(), p.Turns) }
func (p Cross) String() string   { return fmt.Sprintf("%s(size=%d)", p.Kind(), p.Size) }
func (p Boss) String() string    { return fmt.Sprintf("%s(size=%d)", p.Kind(), p.Size) }
func (p Random) String() string  { return fmt.Sprintf("%s(density=%g)", p.Kind(), p.Density) }

// ParsePattern converts a configured pattern name and its params into a
// descriptor with defaults filled in.
func ParsePattern(name string, p Params) (Pattern, error) {
	if p.Width < 0 || p.Height < 0 || p.Size < 0 || p.Piles < 0 || p.Turns < 0 || p.Density < 0 {
		return nil, fmt.Errorf("pattern %q: params must not be negative", name)
	}

	switch Kind(strings.ToLower(strings.TrimSpace(name))) {
	case KindDensePile:
		return DensePile{Size: orInt(p.Size, 6)}, nil
	case KindScatteredPile:
		return ScatteredPile{Piles: orInt(p.Piles, 3)}, nil
	case KindStaggered:
		return Staggered{Width: orInt(p.Width, 4), Height: orInt(p.Height, 4)}, nil
	case KindBrick:
		return Brick{Width: orInt(p.Width, 4), Height: orInt(p.Height, 4)}, nil
	case KindPyramid:
		return Pyramid{Size: orInt(p.Size, 4)}, nil
	case KindSpiral:
		return Spiral{Turns: orFloat(p.Turns, 2.5)}, nil
	case KindCross:
		return Cross{Size: orInt(p.Size, 5)}, nil
	case KindBoss:
		return Boss{Size: orInt(p.Size, 8)}, nil
	case KindRandom:
		return Random{Density: orFloat(p.Density, 1.0)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
}

// ParamsOf returns the config-file params that reproduce p.
func ParamsOf(p Pattern) Params {
	switch v := p.(type) {
	case DensePile:
		return Params{Size: v.Size}
	case ScatteredPile:
		return Params{Piles: v.Piles}
	case Staggered:
		return Params{Width: v.Width, Height: v.Height}
	case Brick:
		return Params{Width: v.Width, Height: v.Height}
	case Pyramid:
		return Params{Size: v.Size}
	case Spiral:
		return Params{Turns: v.Turns}
	case Cross:
		return Params{Size: v.Size}
	case Boss:
		return Params{Size: v.Size}
	case Random:
		return Params{Density: v.Density}
	}
	return Params{}
}

// Info describes a catalog entry for listings.
type Info struct {
	Kind        Kind
	Title       string
	Params      []string
	Description string
}

// Catalog lists every pattern in presentation order.
func Catalog() []Info {
	return []Info{
		{KindDensePile, "Dense Pile", []string{"size"}, "mound per layer, denser toward the middle"},
		{KindScatteredPile, "Scattered Piles", []string{"piles"}, "random 3x3 clusters across the canvas"},
		{KindStaggered, "Staggered", []string{"width", "height"}, "grid, odd layers shifted half a tile"},
		{KindBrick, "Brick", []string{"width", "height"}, "staggered grid with odd rows shifted"},
		{KindPyramid, "Pyramid", []string{"size"}, "rows taper away from the middle"},
		{KindSpiral, "Spiral", []string{"turns"}, "square spiral walk out of the center"},
		{KindCross, "Cross", []string{"size"}, "both diagonals plus random fill"},
		{KindBoss, "Boss", []string{"size"}, "dense core with an outer scatter ring"},
		{KindRandom, "Random", []string{"density"}, "up to 15*density random cells per layer"},
	}
}

// Kinds returns every pattern kind in catalog order.
func Kinds() []Kind {
	infos := Catalog()
	kinds := make([]Kind, len(infos))
	for i, info := range infos {
		kinds[i] = info.Kind
	}
	return kinds
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return def
	}
	return v
}
