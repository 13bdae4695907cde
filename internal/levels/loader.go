// Package levels provides board file loading and saving.
// This package depends on core and generator but neither depends on levels.
package levels

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/generator"
	"github.com/vovakirdan/triple-tiles/internal/levels/formats"
)

// Level represents a stored board and its descriptive metadata.
type Level struct {
	ID       string
	Name     string
	Board    *core.Board
	Metadata map[string]string
	FilePath string
}

// FromResult wraps a generated board for saving. Metadata records how the
// board was made so it can be regenerated.
func FromResult(id, name string, cfg generator.LevelConfig, res *generator.Result) Level {
	return Level{
		ID:    id,
		Name:  name,
		Board: res.Board,
		Metadata: map[string]string{
			"pattern":       cfg.Pattern.String(),
			"layers":        strconv.Itoa(cfg.LayerCount),
			"seed":          strconv.FormatUint(res.Seed, 10),
			"match_count":   strconv.Itoa(res.Stats.MatchCount),
			"dig_count":     strconv.Itoa(res.Stats.DigCount),
			"edge_count":    strconv.Itoa(res.Stats.EdgeCount),
			"delayed_ratio": strconv.FormatFloat(res.Stats.DelayedMatchRatio(), 'f', 3, 64),
		},
	}
}

// Loader handles loading levels from a directory.
type Loader struct {
	Root string
}

// NewLoader creates a new level loader.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// LoadAll recursively scans and loads all level files.
// Returns levels sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	var levels []Level

	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !isSupportedExtension(ext) {
			return nil
		}

		level, err := LoadFile(path)
		if err != nil {
			// Skip invalid files
			return nil
		}

		levels = append(levels, level)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	// Sort by ID for determinism
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})

	return levels, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}

	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}

	return Level{}, fmt.Errorf("level not found: %s", id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

// LoadFile loads a single level file.
func LoadFile(path string) (Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	parsed, err := parseByExtension(data, ext)
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", path, err)
	}

	return Level{
		ID:       parsed.ID,
		Name:     parsed.Name,
		Board:    parsed.Board(),
		Metadata: parsed.Metadata,
		FilePath: path,
	}, nil
}

// Encode renders a level in the named format ("yaml" or "json").
func Encode(lvl Level, format string) ([]byte, error) {
	f := formats.File{
		ID:       lvl.ID,
		Name:     lvl.Name,
		Metadata: lvl.Metadata,
	}
	if lvl.Board != nil {
		f.GridSize = lvl.Board.GridSize
		f.Tiles = lvl.Board.Tiles
	}

	switch strings.ToLower(format) {
	case "yaml", "yml":
		return formats.EncodeYAML(f)
	case "json":
		return formats.EncodeJSON(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// SaveFile writes a level, picking the format from the file extension.
func SaveFile(path string, lvl Level) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !isSupportedExtension(ext) {
		return fmt.Errorf("unsupported extension: %s", ext)
	}
	data, err := Encode(lvl, strings.TrimPrefix(ext, "."))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parseByExtension routes to the correct parser.
func parseByExtension(data []byte, ext string) (formats.File, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	case ".json":
		return formats.ParseJSON(data)
	default:
		return formats.File{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}
