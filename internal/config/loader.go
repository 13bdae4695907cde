package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfigPath is the project-local config file.
const LocalConfigPath = "configs/tilegen.yaml"

// Load loads the generator configuration.
// Search order: customPath -> ~/.tilegen/config.yaml -> ./configs/tilegen.yaml -> embedded default
//
// Files are read over the defaults, so a file only needs the keys it changes.
// A list such as palette or curve.levels replaces the default list.
func Load(customPath string) (Config, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parse(data, customPath)
		if err != nil {
			return Config{}, err
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := UserConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parse(data, userCfgPath); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(LocalConfigPath); err == nil {
		if cfg, err := parse(data, LocalConfigPath); err == nil {
			return cfg, nil
		}
	}

	return Embedded(), nil
}

// Embedded returns the embedded default configuration.
func Embedded() Config {
	cfg, err := parse(defaultYAML, "embedded")
	if err != nil {
		return DefaultConfig() // Fallback to hardcoded if embed fails
	}
	return cfg
}

func parse(data []byte, source string) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", source, err)
	}
	cfg.Source = source
	return cfg, nil
}

// UserDir returns ~/.tilegen, or empty if home is unavailable.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tilegen")
}

// UserConfigPath returns the path to a file in the user config directory,
// or empty if home is unavailable.
func UserConfigPath(filename string) string {
	dir := UserDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, filename)
}
