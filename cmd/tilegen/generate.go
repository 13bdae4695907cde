package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/triple-tiles/internal/config"
	"github.com/vovakirdan/triple-tiles/internal/generator"
	"github.com/vovakirdan/triple-tiles/internal/levels"
	"github.com/vovakirdan/triple-tiles/internal/metrics"
	"github.com/vovakirdan/triple-tiles/internal/platform/tui"
)

var (
	genFlags    levelFlags
	flagFormat  string
	flagOut     string
	flagRender  bool
	flagID      string
	flagName    string
	flagPushURL string
)

var generateCmd = &cobra.Command{
	Use:   "generate [level]",
	Short: "Generate one board",
	Long: `Generate a board for a curve level (default 1) and print it as YAML or
JSON, or save it to a file. Flags override the curve entry.

Examples:
  tilegen generate 3
  tilegen generate 12 --seed 42 --render
  tilegen generate --tiles 90 --layers 6 --pattern dense_pile --format json
  tilegen generate 5 --out levels/level-5.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	genFlags.register(generateCmd)
	generateCmd.Flags().StringVar(&flagFormat, "format", "yaml", "Output format when printing: yaml or json")
	generateCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Write the board to this file (.yaml, .yml or .json)")
	generateCmd.Flags().BoolVar(&flagRender, "render", false, "Draw the board and its stats to stderr")
	generateCmd.Flags().StringVar(&flagID, "id", "", "Level id (default level-N)")
	generateCmd.Flags().StringVar(&flagName, "name", "", "Level display name")
	generateCmd.Flags().StringVar(&flagPushURL, "pushgateway", "", "Push generation metrics to this Pushgateway")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	spec, err := genFlags.resolve(cmd, args)
	if err != nil {
		return err
	}
	levelCfg, err := spec.LevelConfig()
	if err != nil {
		return err
	}

	rec := metrics.NewRecorder()
	gen, err := newGenerator(spec, flagSeed, rec)
	if err != nil {
		return err
	}

	res, err := gen.Generate(levelCfg, cfg.Palette)
	pushMetrics(rec, flagPushURL)
	if err != nil {
		return err
	}
	logGenerated(spec, levelCfg, res)

	id := flagID
	if id == "" {
		id = config.LevelID(spec.Level)
	}
	name := flagName
	if name == "" {
		name = fmt.Sprintf("Level %d", spec.Level)
	}
	lvl := levels.FromResult(id, name, levelCfg, res)

	if flagRender {
		renderResult(lvl, res)
	}

	if flagOut != "" {
		if err := levels.SaveFile(flagOut, lvl); err != nil {
			return err
		}
		logger.Info("board saved", "path", flagOut)
		return nil
	}

	data, err := levels.Encode(lvl, flagFormat)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func logGenerated(spec config.LevelSpec, levelCfg generator.LevelConfig, res *generator.Result) {
	st := res.Stats
	logger.Info("board generated",
		"level", spec.Level,
		"config", levelCfg.String(),
		"seed", res.Seed,
		"tiles", res.Board.Len(),
		"matches", st.MatchCount,
		"digs", st.DigCount,
		"delayed_ratio", fmt.Sprintf("%.3f", st.DelayedMatchRatio()),
	)
	if st.UnassignedCount > 0 {
		logger.Warn("board finished by the cleanup pass", "unassigned", st.UnassignedCount, "seed", res.Seed)
	}
}

func renderResult(lvl levels.Level, res *generator.Result) {
	st := res.Stats
	fmt.Fprintln(os.Stderr, tui.RenderBoard(lvl.Board, cfg.Canvas.TileSize, tui.BoardView{}))
	fmt.Fprintln(os.Stderr, tui.RenderLegend(lvl.Board))
	fmt.Fprintln(os.Stderr, tui.Table(
		[]string{"Seed", "Tiles", "Layers", "Matches", "Digs", "Ratio", "Edges", "Attempts"},
		[][]string{{
			fmt.Sprintf("%d", res.Seed),
			fmt.Sprintf("%d", lvl.Board.Len()),
			fmt.Sprintf("%d", lvl.Board.MaxLayer()),
			fmt.Sprintf("%d", st.MatchCount),
			fmt.Sprintf("%d", st.DigCount),
			fmt.Sprintf("%.3f", st.DelayedMatchRatio()),
			fmt.Sprintf("%d", st.EdgeCount),
			fmt.Sprintf("%d", res.Attempts),
		}},
	))
}
