// Package config loads the engine's runtime settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"damdara/internal/battle"
)

// Config holds every tunable the CLI and engine read at start-up.
type Config struct {
	Seed    uint64 `yaml:"seed"`     // 0 means seed from the clock
	DataDir string `yaml:"data_dir"` // empty means the built-in tables
	Log     Log    `yaml:"log"`
	Battle  Battle `yaml:"battle"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

type Battle struct {
	MaxRounds int `yaml:"max_rounds"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Log:    Log{Level: "info", Format: "text"},
		Battle: Battle{MaxRounds: battle.DefaultMaxRounds},
	}
}

// Load reads path over the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot honor.
func (c Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Battle.MaxRounds <= 0 {
		return fmt.Errorf("battle.max_rounds must be positive, got %d", c.Battle.MaxRounds)
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return lv, nil
}

// Logger builds the structured logger described by c, writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	lv, err := c.level()
	if err != nil {
		lv = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lv}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
