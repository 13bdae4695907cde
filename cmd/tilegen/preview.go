package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/levels"
	"github.com/vovakirdan/triple-tiles/internal/platform/tui"
)

var (
	prevFlags       levelFlags
	flagPreviewFile string
	flagPreviewDB   string
)

var previewCmd = &cobra.Command{
	Use:   "preview [level]",
	Short: "Browse a board layer by layer",
	Long: `Open a board in the terminal: step through its layers, see which tiles
are free, and replay a clearing order through the slot bar.

The board is freshly generated for a curve level (default 1), read from a
board file with --file, or loaded from the level store with --stored.

Controls:
  Left/Right - Layer down/up
  A          - All layers
  S          - Stack lower layers under the current one
  F          - Highlight free tiles
  N/Enter    - Play the next tile of the clearing order
  Space      - Autoplay
  R          - Reset
  Q/Esc      - Quit

Examples:
  tilegen preview 4
  tilegen preview --tiles 60 --layers 5 --pattern spiral --seed 7
  tilegen preview --file levels/level-1.yaml
  tilegen preview --stored level-12`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	prevFlags.register(previewCmd)
	previewCmd.Flags().StringVar(&flagPreviewFile, "file", "", "Preview a saved board file")
	previewCmd.Flags().StringVar(&flagPreviewDB, "stored", "", "Preview a level from the level store by id")
}

func runPreview(cmd *cobra.Command, args []string) error {
	board, title, err := previewBoard(cmd, args)
	if err != nil {
		return err
	}
	return tui.RunPreview(board, cfg.Canvas.TileSize, title, solverOptions())
}

func previewBoard(cmd *cobra.Command, args []string) (*core.Board, string, error) {
	switch {
	case flagPreviewFile != "":
		lvl, err := levels.LoadFile(flagPreviewFile)
		if err != nil {
			return nil, "", err
		}
		return lvl.Board, lvl.ID, nil

	case flagPreviewDB != "":
		store, err := openStore()
		if err != nil {
			return nil, "", err
		}
		defer store.Close()
		rec, err := store.GetLevel(cmd.Context(), flagPreviewDB)
		if err != nil {
			return nil, "", err
		}
		return rec.Board, fmt.Sprintf("%s (%s, seed %d)", rec.LevelID, rec.Status, rec.Seed), nil
	}

	spec, err := prevFlags.resolve(cmd, args)
	if err != nil {
		return nil, "", err
	}
	levelCfg, err := spec.LevelConfig()
	if err != nil {
		return nil, "", err
	}
	gen, err := newGenerator(spec, flagSeed, nil)
	if err != nil {
		return nil, "", err
	}
	res, err := gen.Generate(levelCfg, cfg.Palette)
	if err != nil {
		return nil, "", err
	}
	logGenerated(spec, levelCfg, res)
	return res.Board, fmt.Sprintf("level %d (seed %d)", spec.Level, res.Seed), nil
}
