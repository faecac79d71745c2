// Package config loads the optional user configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings shared by the CLI commands.
type Config struct {
	LogDir       string
	PollInterval time.Duration
	Format       string
	PatternFile  string
	ExportDir    string
}

const (
	defaultConfigPath   = "~/.config/rundownlog/config.toml"
	defaultPollInterval = 2 * time.Second
	defaultFormat       = "pretty"
)

// Load locates and parses the config file, falling back to defaults when
// missing. A missing file is not an error; flags layer on top of the
// returned values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{PollInterval: defaultPollInterval, Format: defaultFormat}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		LogDir         string `toml:"log_dir"`
		PollIntervalMS int    `toml:"poll_interval_ms"`
		Format         string `toml:"format"`
		PatternFile    string `toml:"pattern_file"`
		ExportDir      string `toml:"export_dir"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if dir := strings.TrimSpace(raw.LogDir); dir != "" {
		cfg.LogDir = mustExpand(dir)
	}
	if raw.PollIntervalMS > 0 {
		cfg.PollInterval = time.Duration(raw.PollIntervalMS) * time.Millisecond
	}
	if format := strings.TrimSpace(raw.Format); format != "" {
		cfg.Format = format
	}
	if pf := strings.TrimSpace(raw.PatternFile); pf != "" {
		cfg.PatternFile = mustExpand(pf)
	}
	if ed := strings.TrimSpace(raw.ExportDir); ed != "" {
		cfg.ExportDir = mustExpand(ed)
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
