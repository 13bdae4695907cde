package layout

import (
	"github.com/aquilax/go-perlin"

	"github.com/vovakirdan/triple-tiles/internal/core"
)

// jitterFunc returns the positional noise for a tile placed at p.
type jitterFunc func(p core.Point, layer int) (dx, dy float64)

const (
	noiseAlpha   = 2.0 // smoothing
	noiseBeta    = 2.0 // frequency
	noiseOctaves = int32(3)
	// Sampling step per tile; kept off integer lattice points where Perlin
	// noise is always zero.
	noiseScale = 0.37
)

func newJitter(c core.Canvas, rng core.Source) jitterFunc {
	if c.Jitter <= 0 {
		return noJitter
	}

	switch c.Mode {
	case core.JitterNone:
		return noJitter
	case core.JitterNoise:
		seed := int64(rng.Intn(1<<31 - 1))
		field := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)
		half := c.Jitter / 2
		return func(p core.Point, layer int) (float64, float64) {
			u := p.X/c.TileSize*noiseScale + float64(layer)*0.13
			v := p.Y/c.TileSize*noiseScale + float64(layer)*0.29
			dx := core.ClampF(field.Noise2D(u, v), -1, 1) * half
			dy := core.ClampF(field.Noise2D(u+17.5, v+31.25), -1, 1) * half
			return dx, dy
		}
	default:
		return func(core.Point, int) (float64, float64) {
			return core.Centered(rng, c.Jitter), core.Centered(rng, c.Jitter)
		}
	}
}

func noJitter(core.Point, int) (float64, float64) { return 0, 0 }
