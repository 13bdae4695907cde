// tilegen generates, validates and stores boards for the triple-match tile
// puzzle.
//
// Usage:
//
//	tilegen generate [level]          - Generate one board and print or save it
//	tilegen seed --levels N           - Generate the curve into the level store
//	tilegen validate [level]          - Run the statistical generation harness
//	tilegen curve                     - Show the difficulty curve
//	tilegen patterns                  - Show the layout patterns
//	tilegen levels                    - List stored levels
//	tilegen publish <level-id>        - Publish a stored level
//	tilegen unpublish <level-id>      - Return a stored level to draft
//	tilegen export <level-id>         - Write a stored level to a file
//	tilegen preview [level]           - Browse a board in the terminal
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.tilegen/config.yaml, ./configs/tilegen.yaml)
//	--seed <value>      - RNG seed (0 = random based on time)
//	--log-level <level> - debug, info, warn, error
//	--log-file <path>   - Also write logs to a rotating file
//	--db, --driver      - Level store DSN and driver
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/triple-tiles/internal/config"
	"github.com/vovakirdan/triple-tiles/internal/logging"
	"github.com/vovakirdan/triple-tiles/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     uint64
	flagLogLevel string
	flagLogFile  string
	flagDB       string
	flagDriver   string

	// Set up before every command runs.
	cfg       config.Config
	logger    *log.Logger
	logCloser io.Closer
)

func main() {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tilegen",
	Short: "Level generator for the triple-match tile puzzle",
	Long: `tilegen lays out tile boards, assigns tile types so every board can be
cleared with a 7-slot bar, and stores the results for the game backend.

Available commands:
  generate   - Generate one board and print or save it
  seed       - Generate the difficulty curve into the level store
  validate   - Run the statistical generation harness
  curve      - Show the difficulty curve
  patterns   - Show the layout patterns
  levels     - List stored levels
  publish    - Publish a stored level
  unpublish  - Return a stored level to draft
  export     - Write a stored level to a file
  preview    - Browse a board layer by layer

Examples:
  tilegen generate 5 --render
  tilegen generate --tiles 60 --layers 4 --pattern pyramid --out level.yaml
  tilegen seed --levels 20 --publish
  tilegen validate 12 --runs 200 --min-ratio 0.1 --solve
  tilegen preview 8`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to config YAML")
	pf.Uint64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	pf.StringVar(&flagLogFile, "log-file", "", "Also write logs to this rotating file")
	pf.StringVar(&flagDB, "db", "", "Level store DSN (default from config, ~/.tilegen/levels.db for sqlite)")
	pf.StringVar(&flagDriver, "driver", "", "Level store driver: sqlite or postgres (default from config)")

	// Add subcommands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(unpublishCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(previewCmd)
}

// setup loads the configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s:\n%w", cfg.Source, err)
	}

	opts := logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}
	if flagLogLevel != "" {
		opts.Level = flagLogLevel
	}
	if flagLogFile != "" {
		opts.File = flagLogFile
	}
	logger, logCloser, err = logging.New(opts)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", "source", cfg.Source)
	return nil
}

// openStore opens the level store from flags, falling back to the config.
func openStore() (*storage.Store, error) {
	driver, dsn := cfg.Storage.Driver, cfg.Storage.DSN
	if flagDriver != "" {
		driver = flagDriver
	}
	if flagDB != "" {
		dsn = flagDB
	}
	store, err := storage.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	logger.Debug("level store opened", "driver", store.Driver())
	return store, nil
}
