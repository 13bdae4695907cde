package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/triple-tiles/internal/config"
	"github.com/vovakirdan/triple-tiles/internal/generator"
	"github.com/vovakirdan/triple-tiles/internal/layout"
	"github.com/vovakirdan/triple-tiles/internal/metrics"
)

// levelFlags override a curve entry from the command line.
type levelFlags struct {
	tiles   int
	layers  int
	pattern string
	width   int
	height  int
	size    int
	piles   int
	turns   float64
	density float64
	digProb float64
}

func (f *levelFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.tiles, "tiles", 0, "Total tiles (rounded up to a multiple of 3 by the layout)")
	fs.IntVar(&f.layers, "layers", 0, "Layer count")
	fs.StringVar(&f.pattern, "pattern", "", "Layout pattern (see 'tilegen patterns')")
	fs.IntVar(&f.width, "width", 0, "Pattern width param")
	fs.IntVar(&f.height, "height", 0, "Pattern height param")
	fs.IntVar(&f.size, "size", 0, "Pattern size param")
	fs.IntVar(&f.piles, "piles", 0, "Pattern piles param")
	fs.Float64Var(&f.turns, "turns", 0, "Pattern turns param")
	fs.Float64Var(&f.density, "density", 0, "Pattern density param")
	fs.Float64Var(&f.digProb, "dig-probability", 0, "Override the preset dig probability")
}

// resolve picks the curve entry for the optional level argument and
// applies the flags that were set. A changed pattern drops the curve params.
func (f *levelFlags) resolve(cmd *cobra.Command, args []string) (config.LevelSpec, error) {
	level := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return config.LevelSpec{}, fmt.Errorf("level must be a positive number, got %q", args[0])
		}
		level = n
	}
	spec := cfg.Curve.Resolve(level)

	fs := cmd.Flags()
	if fs.Changed("tiles") {
		spec.Tiles = f.tiles
	}
	if fs.Changed("layers") {
		spec.Layers = f.layers
	}
	if fs.Changed("pattern") && f.pattern != spec.Pattern {
		spec.Pattern = f.pattern
		spec.Params = layout.Params{}
	}
	if fs.Changed("width") {
		spec.Params.Width = f.width
	}
	if fs.Changed("height") {
		spec.Params.Height = f.height
	}
	if fs.Changed("size") {
		spec.Params.Size = f.size
	}
	if fs.Changed("piles") {
		spec.Params.Piles = f.piles
	}
	if fs.Changed("turns") {
		spec.Params.Turns = f.turns
	}
	if fs.Changed("density") {
		spec.Params.Density = f.density
	}
	if fs.Changed("dig-probability") {
		p := f.digProb
		spec.DigProbability = &p
	}
	return spec, nil
}

// newGenerator builds a generator for one level spec. The global --seed
// wins over the time-derived default.
func newGenerator(spec config.LevelSpec, seed uint64, rec *metrics.Recorder) (*generator.Generator, error) {
	opts := cfg.GeneratorOptions(spec, seed)
	opts.Logger = logger.With("level", spec.Level)
	if rec != nil {
		opts.Observer = rec
	}
	return generator.New(opts)
}

// pushMetrics sends the recorder to the Pushgateway when one is configured.
func pushMetrics(rec *metrics.Recorder, url string) {
	if url == "" {
		url = cfg.Metrics.Pushgateway
	}
	if url == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rec.Push(ctx, url, cfg.Metrics.Job); err != nil {
		logger.Warn("could not push metrics", "error", err)
		return
	}
	logger.Info("metrics pushed", "url", url, "job", cfg.Metrics.Job)
}
