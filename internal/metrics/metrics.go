// Package metrics records generation outcomes as Prometheus metrics.
//
// A Recorder owns its registry so several can coexist in tests and batch
// commands. Batch runs are short lived, so metrics are pushed to a
// Pushgateway at the end of the run instead of being scraped.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/vovakirdan/triple-tiles/internal/assign"
	"github.com/vovakirdan/triple-tiles/internal/generator"
)

const namespace = "tilegen"

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeDeadlock = "deadlock"
	OutcomeInvalid  = "invalid_config"
	OutcomeError    = "error"
)

// Recorder implements generator.Observer.
type Recorder struct {
	registry *prometheus.Registry

	generations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	tiles       prometheus.Counter
	digs        prometheus.Counter
	matches     prometheus.Counter
	unassigned  prometheus.Counter
	retries     prometheus.Counter
	ratio       prometheus.Histogram
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generate calls by pattern and outcome.",
		}, []string{"pattern", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Wall time of successful Generate calls.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"pattern"}),
		tiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tiles_generated_total",
			Help:      "Tiles placed on successfully generated boards.",
		}),
		digs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dig_moves_total",
			Help:      "DIG actions taken by the assignment engine.",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_groups_total",
			Help:      "Match groups typed by the assignment engine.",
		}),
		unassigned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unassigned_tiles_total",
			Help:      "Tiles typed by the cleanup pass instead of the main loop.",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deadlock_retries_total",
			Help:      "Attempts discarded because the engine deadlocked.",
		}),
		ratio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delayed_match_ratio",
			Help:      "Share of DIG actions among resolving actions per generated board.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}

	r.registry.MustRegister(
		r.generations, r.duration, r.tiles, r.digs,
		r.matches, r.unassigned, r.retries, r.ratio,
	)
	return r
}

// Registry exposes the recorder's registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveGeneration records one Generate call.
func (r *Recorder) ObserveGeneration(cfg generator.LevelConfig, res *generator.Result, elapsed time.Duration, err error) {
	pattern := "unknown"
	if cfg.Pattern != nil {
		pattern = string(cfg.Pattern.Kind())
	}

	if err != nil {
		r.generations.WithLabelValues(pattern, outcome(err)).Inc()
		return
	}

	r.generations.WithLabelValues(pattern, OutcomeOK).Inc()
	r.duration.WithLabelValues(pattern).Observe(elapsed.Seconds())
	if res == nil {
		return
	}

	st := res.Stats
	r.tiles.Add(float64(res.Board.Len()))
	r.digs.Add(float64(st.DigCount))
	r.matches.Add(float64(st.MatchCount))
	r.unassigned.Add(float64(st.UnassignedCount))
	if res.Attempts > 1 {
		r.retries.Add(float64(res.Attempts - 1))
	}
	r.ratio.Observe(st.DelayedMatchRatio())
}

func outcome(err error) string {
	switch {
	case errors.Is(err, generator.ErrInvalidConfig):
		return OutcomeInvalid
	case errors.Is(err, assign.ErrDeadlock):
		return OutcomeDeadlock
	default:
		return OutcomeError
	}
}

// Push sends the recorded metrics to a Pushgateway, replacing the previous
// push of the same job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return errors.New("metrics: pushgateway url is empty")
	}
	if job == "" {
		job = namespace
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("metrics: push to %s: %w", url, err)
	}
	return nil
}
