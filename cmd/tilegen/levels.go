package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/triple-tiles/internal/levels"
	"github.com/vovakirdan/triple-tiles/internal/platform/tui"
	"github.com/vovakirdan/triple-tiles/internal/storage"
)

var (
	flagStatus      string
	flagInteractive bool
	flagExportOut   string
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List stored levels",
	Long: `List the levels in the level store ordered by level number.

Examples:
  tilegen levels
  tilegen levels --status published
  tilegen levels -i`,
	Args: cobra.NoArgs,
	RunE: runLevels,
}

var publishCmd = &cobra.Command{
	Use:   "publish <level-id>...",
	Short: "Publish stored levels",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(args, storage.StatusPublished)
	},
}

var unpublishCmd = &cobra.Command{
	Use:   "unpublish <level-id>...",
	Short: "Return stored levels to draft",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(args, storage.StatusDraft)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <level-id>",
	Short: "Write a stored level to a board file",
	Long: `Write a stored level as YAML or JSON, picked by the --out extension.

Examples:
  tilegen export level-3 --out levels/level-3.yaml
  tilegen export level-3 --out level-3.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	levelsCmd.Flags().StringVar(&flagStatus, "status", "", "Only show levels with this status: draft or published")
	levelsCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse levels and toggle publication")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (.yaml, .yml or .json)")
	_ = exportCmd.MarkFlagRequired("out")
}

func runLevels(cmd *cobra.Command, args []string) error {
	var status storage.Status
	if flagStatus != "" {
		var err error
		if status, err = storage.ParseStatus(flagStatus); err != nil {
			return err
		}
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if flagInteractive {
		width, height := 100, 24 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		return tui.RunLevels(store, width, height)
	}

	list, err := store.ListLevels(cmd.Context(), status)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No levels stored yet.")
		fmt.Println()
		fmt.Println("Run 'tilegen seed' to generate the difficulty curve.")
		return nil
	}
	fmt.Println(tui.LevelsTable(list))
	return nil
}

func setStatus(ids []string, status storage.Status) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, id := range ids {
		if err := store.SetStatus(context.Background(), id, status); err != nil {
			return err
		}
		logger.Info("level status changed", "level", id, "status", status)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.GetLevel(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	lvl := levels.Level{
		ID:    rec.LevelID,
		Name:  fmt.Sprintf("Level %d", rec.Ordinal),
		Board: rec.Board,
		Metadata: map[string]string{
			"pattern":     rec.Pattern,
			"seed":        fmt.Sprintf("%d", rec.Seed),
			"status":      string(rec.Status),
			"run_id":      rec.RunID,
			"match_count": fmt.Sprintf("%d", rec.MatchCount),
			"dig_count":   fmt.Sprintf("%d", rec.DigCount),
		},
	}
	if err := levels.SaveFile(flagExportOut, lvl); err != nil {
		return err
	}
	logger.Info("level exported", "level", rec.LevelID, "path", flagExportOut)
	return nil
}
