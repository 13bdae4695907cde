package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/triple-tiles/internal/config"
	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/generator"
	"github.com/vovakirdan/triple-tiles/internal/metrics"
	"github.com/vovakirdan/triple-tiles/internal/platform/tui"
	"github.com/vovakirdan/triple-tiles/internal/storage"
)

var (
	flagSeedLevels   int
	flagSeedFrom     int
	flagSeedPublish  bool
	flagSeedPushURL  string
	flagSeedValidate bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate the difficulty curve into the level store",
	Long: `Generate levels 1..N of the difficulty curve and save them to the level
store under their level ids (level-1, level-2, ...). Existing levels are
replaced in place and keep their publication status unless --publish is
given. Every level of one run shares a run id.

With --seed S, level i is generated with seed S+i so a run can be
reproduced; without it every run uses fresh seeds.

Examples:
  tilegen seed
  tilegen seed --levels 5 --publish
  tilegen seed --from 11 --levels 20 --seed 1000
  tilegen seed --driver postgres --db "postgres://tilegen@localhost/tilegen?sslmode=disable"`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&flagSeedLevels, "levels", 0, "Last level to generate (default: every curve level)")
	seedCmd.Flags().IntVar(&flagSeedFrom, "from", 1, "First level to generate")
	seedCmd.Flags().BoolVar(&flagSeedPublish, "publish", false, "Publish the generated levels")
	seedCmd.Flags().StringVar(&flagSeedPushURL, "pushgateway", "", "Push generation metrics to this Pushgateway")
	seedCmd.Flags().BoolVar(&flagSeedValidate, "validate", true, "Validate every board before saving it")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	last := flagSeedLevels
	if last <= 0 {
		last = cfg.Curve.Count()
	}
	if flagSeedFrom < 1 || last < flagSeedFrom {
		return fmt.Errorf("nothing to seed: levels %d..%d", flagSeedFrom, last)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	status := storage.Status("")
	if flagSeedPublish {
		status = storage.StatusPublished
	}

	runID := storage.NewRunID()
	rec := metrics.NewRecorder()
	defer pushMetrics(rec, flagSeedPushURL)

	logger.Info("seeding levels", "from", flagSeedFrom, "to", last, "run", runID)
	for level := flagSeedFrom; level <= last; level++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("seeding interrupted before level %d: %w", level, err)
		}
		record, err := seedLevel(cfg.Curve.Resolve(level), rec)
		if err != nil {
			return err
		}
		record.RunID = runID
		record.Status = status
		if err := store.SaveLevel(ctx, record); err != nil {
			return err
		}
		logger.Info("level saved", "level", record.LevelID, "seed", record.Seed,
			"tiles", record.TileCount, "digs", record.DigCount)
	}

	stats, err := store.GetRunStats(ctx, runID)
	if err != nil {
		return err
	}
	fmt.Println(tui.Table(
		[]string{"Run", "Levels", "Tiles", "Matches", "Digs", "Unassigned"},
		[][]string{{
			stats.RunID,
			fmt.Sprintf("%d", stats.Levels),
			fmt.Sprintf("%d", stats.Tiles),
			fmt.Sprintf("%d", stats.Matches),
			fmt.Sprintf("%d", stats.Digs),
			fmt.Sprintf("%d", stats.Unassigned),
		}},
	))
	return nil
}

// seedLevel generates and checks one curve level.
func seedLevel(spec config.LevelSpec, rec *metrics.Recorder) (storage.LevelRecord, error) {
	levelCfg, err := spec.LevelConfig()
	if err != nil {
		return storage.LevelRecord{}, fmt.Errorf("level %d: %w", spec.Level, err)
	}

	seed := core.SeedFromTime()
	if flagSeed != 0 {
		seed = flagSeed + uint64(spec.Level)
	}
	gen, err := newGenerator(spec, seed, rec)
	if err != nil {
		return storage.LevelRecord{}, err
	}
	res, err := gen.Generate(levelCfg, cfg.Palette)
	if err != nil {
		return storage.LevelRecord{}, fmt.Errorf("level %d: %w", spec.Level, err)
	}

	if flagSeedValidate {
		if err := generator.ValidateResult(res, cfg.Engine.SlotCapacity); err != nil {
			var verr generator.ValidationError
			if errors.As(err, &verr) {
				logger.Error("generated board failed validation", "level", spec.Level, "code", verr.Code, "seed", res.Seed)
			}
			return storage.LevelRecord{}, fmt.Errorf("level %d (seed %d): %w", spec.Level, res.Seed, err)
		}
	}
	if res.Stats.UnassignedCount > 0 {
		logger.Warn("board finished by the cleanup pass", "level", spec.Level, "unassigned", res.Stats.UnassignedCount)
	}

	return storage.LevelRecord{
		LevelID:         config.LevelID(spec.Level),
		Ordinal:         spec.Level,
		Seed:            res.Seed,
		Pattern:         levelCfg.Pattern.String(),
		TileCount:       res.Board.Len(),
		MatchCount:      res.Stats.MatchCount,
		DigCount:        res.Stats.DigCount,
		UnassignedCount: res.Stats.UnassignedCount,
		Board:           res.Board,
	}, nil
}
