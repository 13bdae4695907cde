// Package formats provides pluggable board file format parsers.
package formats

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/triple-tiles/internal/core"
)

// File represents the on-disk structure of a board file. The JSON form uses
// the field names the game client reads.
type File struct {
	ID       string            `yaml:"id" json:"id"`
	Name     string            `yaml:"name,omitempty" json:"name,omitempty"`
	GridSize core.GridSize     `yaml:"grid_size" json:"gridSize"`
	Tiles    []core.Tile       `yaml:"tiles" json:"tiles"`
	Metadata map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Board returns the board stored in the file.
func (f *File) Board() *core.Board {
	return &core.Board{Tiles: f.Tiles, GridSize: f.GridSize}
}

// ParseYAML parses a YAML board file.
func ParseYAML(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return f, check(f)
}

// ParseJSON parses a JSON board file. Unknown fields are rejected.
func ParseJSON(data []byte) (File, error) {
	var f File
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("json decode: %w", err)
	}
	return f, check(f)
}

// EncodeYAML renders a board file as YAML.
func EncodeYAML(f File) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("yaml encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("yaml encode: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJSON renders a board file as indented JSON.
func EncodeJSON(f File) ([]byte, error) {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	return append(data, '\n'), nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml", ".json"}
}

func check(f File) error {
	if f.ID == "" {
		return fmt.Errorf("missing id")
	}
	for i, t := range f.Tiles {
		if t.Layer < 1 {
			return fmt.Errorf("tile %d (%s): layer %d, want >= 1", i, t.ID, t.Layer)
		}
	}
	return nil
}
