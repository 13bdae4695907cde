package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/triple-tiles/internal/platform/tui"
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Show the difficulty curve",
	Long: `Shows every level of the configured difficulty curve with its layout
and the dig probability it is generated with.`,
	Args: cobra.NoArgs,
	Run:  runCurve,
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show the layout patterns",
	Long:  `Shows every layout pattern with the params it reads.`,
	Args:  cobra.NoArgs,
	Run:   runPatterns,
}

func runCurve(cmd *cobra.Command, args []string) {
	fmt.Printf("Difficulty curve (%s, preset %s)\n", cfg.Source, cfg.Difficulty.Preset)
	fmt.Println(tui.CurveTable(cfg))

	def := cfg.Curve.Default
	fmt.Printf("Levels past %d: %d tiles, %d layers, %s\n",
		cfg.Curve.Count(), def.Tiles, def.Layers, def.Describe())
}

func runPatterns(cmd *cobra.Command, args []string) {
	fmt.Println(tui.PatternsTable())
	fmt.Println()
	fmt.Println("Run 'tilegen generate --pattern <name>' to try one.")
}
