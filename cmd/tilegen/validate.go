package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/triple-tiles/internal/generator"
	"github.com/vovakirdan/triple-tiles/internal/levels"
	"github.com/vovakirdan/triple-tiles/internal/metrics"
	"github.com/vovakirdan/triple-tiles/internal/platform/tui"
	"github.com/vovakirdan/triple-tiles/internal/solver"
)

var (
	valFlags        levelFlags
	flagRuns        int
	flagMinRatio    float64
	flagSolve       bool
	flagMaxNodes    int
	flagValPushURL  string
	flagValFilePath string
)

var validateCmd = &cobra.Command{
	Use:   "validate [level]",
	Short: "Run the statistical generation harness",
	Long: `Generate a curve level (default 1) many times and check every board:
tile counts, the engine's move trace replayed under the slot bar and,
with --solve, an independent clearing search. Reports average digs,
matches and unassigned tiles and the delayed match ratio
dig/(dig+match) over all runs.

Fails when any board is invalid or the ratio is below --min-ratio.
With --file, checks a saved board instead.

Examples:
  tilegen validate 9 --runs 200
  tilegen validate --tiles 210 --layers 20 --pattern dense_pile --size 6 --min-ratio 0.1
  tilegen validate 3 --runs 50 --solve
  tilegen validate --file levels/level-3.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	valFlags.register(validateCmd)
	validateCmd.Flags().IntVar(&flagRuns, "runs", 100, "Number of boards to generate")
	validateCmd.Flags().Float64Var(&flagMinRatio, "min-ratio", 0, "Fail when the delayed match ratio is below this")
	validateCmd.Flags().BoolVar(&flagSolve, "solve", false, "Also search for a clearing order of every board")
	validateCmd.Flags().IntVar(&flagMaxNodes, "max-nodes", solver.DefaultOptions().MaxNodes, "Search budget per board for --solve")
	validateCmd.Flags().StringVar(&flagValPushURL, "pushgateway", "", "Push generation metrics to this Pushgateway")
	validateCmd.Flags().StringVar(&flagValFilePath, "file", "", "Validate a saved board file instead of generating")
}

// harnessReport aggregates one validate run.
type harnessReport struct {
	runs       int
	digs       int
	matches    int
	unassigned int
	failures   map[string]int
	solved     int
	unsolved   int
	worstPeak  int
}

func (r *harnessReport) ratio() float64 {
	if r.digs+r.matches == 0 {
		return 0
	}
	return float64(r.digs) / float64(r.digs+r.matches)
}

func (r *harnessReport) fail(err error) {
	code := "ERROR"
	var verr generator.ValidationError
	if errors.As(err, &verr) {
		code = string(verr.Code)
	}
	r.failures[code]++
}

func (r *harnessReport) failed() int {
	n := 0
	for _, c := range r.failures {
		n += c
	}
	return n
}

func solverOptions() solver.Options {
	return solver.Options{Slots: cfg.Engine.SlotCapacity, MaxNodes: flagMaxNodes}
}

func runValidate(cmd *cobra.Command, args []string) error {
	if flagValFilePath != "" {
		return validateFile(flagValFilePath)
	}
	if flagRuns < 1 {
		return fmt.Errorf("--runs must be positive, got %d", flagRuns)
	}

	spec, err := valFlags.resolve(cmd, args)
	if err != nil {
		return err
	}
	levelCfg, err := spec.LevelConfig()
	if err != nil {
		return err
	}

	rec := metrics.NewRecorder()
	defer pushMetrics(rec, flagValPushURL)

	gen, err := newGenerator(spec, flagSeed, rec)
	if err != nil {
		return err
	}
	logger.Info("starting generation harness", "config", levelCfg.String(), "runs", flagRuns, "seed", gen.Seed())

	report := harnessReport{failures: make(map[string]int)}
	for i := 0; i < flagRuns; i++ {
		report.runs++
		res, err := gen.Generate(levelCfg, cfg.Palette)
		if err != nil {
			logger.Error("generation failed", "run", i, "error", err)
			report.fail(err)
			continue
		}
		report.digs += res.Stats.DigCount
		report.matches += res.Stats.MatchCount
		report.unassigned += res.Stats.UnassignedCount
		if res.Stats.UnassignedCount > 0 {
			logger.Warn("run left unassigned tiles", "run", i, "unassigned", res.Stats.UnassignedCount, "seed", res.Seed)
		}

		if err := generator.ValidateResult(res, cfg.Engine.SlotCapacity); err != nil {
			logger.Error("invalid board", "run", i, "seed", res.Seed, "error", err)
			report.fail(err)
			continue
		}

		if flagSolve {
			sres, err := generator.ValidateSolvable(res.Board, cfg.Canvas.TileSize, solverOptions())
			if err != nil {
				logger.Error("board not cleared by the solver", "run", i, "seed", res.Seed, "error", err)
				report.unsolved++
				report.fail(err)
				continue
			}
			report.solved++
			report.worstPeak = max(report.worstPeak, sres.Peak)
		}
	}

	fmt.Println(renderReport(&report))

	if n := report.failed(); n > 0 {
		return fmt.Errorf("%d of %d boards failed validation", n, report.runs)
	}
	if report.ratio() < flagMinRatio {
		return fmt.Errorf("delayed match ratio %.3f is below %.3f", report.ratio(), flagMinRatio)
	}
	if report.ratio() <= 0.1 {
		logger.Warn("delayed match ratio is low, difficulty might be too low", "ratio", fmt.Sprintf("%.3f", report.ratio()))
	}
	return nil
}

func renderReport(r *harnessReport) string {
	avg := func(total int) string {
		return fmt.Sprintf("%.2f", float64(total)/float64(r.runs))
	}
	rows := [][]string{
		{"Boards", fmt.Sprintf("%d", r.runs)},
		{"Avg digs (delayed matches)", avg(r.digs)},
		{"Avg matches (direct)", avg(r.matches)},
		{"Avg unassigned", avg(r.unassigned)},
		{"Delayed match ratio", fmt.Sprintf("%.2f%%", r.ratio()*100)},
	}
	if flagSolve {
		rows = append(rows,
			[]string{"Solved", fmt.Sprintf("%d", r.solved)},
			[]string{"Worst slot peak", fmt.Sprintf("%d", r.worstPeak)},
		)
	}

	codes := make([]string, 0, len(r.failures))
	for code := range r.failures {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		rows = append(rows, []string{"Failed " + code, fmt.Sprintf("%d", r.failures[code])})
	}
	return tui.Table([]string{"Metric", "Value"}, rows)
}

// validateFile checks a saved board: static invariants and a clearing search.
func validateFile(path string) error {
	lvl, err := levels.LoadFile(path)
	if err != nil {
		return err
	}
	if err := generator.ValidateBoard(lvl.Board); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	res, err := generator.ValidateSolvable(lvl.Board, cfg.Canvas.TileSize, solverOptions())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Println(tui.Table(
		[]string{"Level", "Tiles", "Layers", "Solver nodes", "Slot peak"},
		[][]string{{
			lvl.ID,
			fmt.Sprintf("%d", lvl.Board.Len()),
			fmt.Sprintf("%d", lvl.Board.MaxLayer()),
			fmt.Sprintf("%d", res.Nodes),
			fmt.Sprintf("%d", res.Peak),
		}},
	))
	logger.Info("board is valid", "level", lvl.ID)
	return nil
}
