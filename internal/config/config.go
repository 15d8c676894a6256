package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the only supported config document version.
const CurrentVersion = 1

// Config is the root configuration document.
type Config struct {
	Version int          `yaml:"version"`
	Log     LogConfig    `yaml:"log"`
	Engine  EngineConfig `yaml:"engine"`
	Graph   GraphConfig  `yaml:"graph"`
	Store   StoreConfig  `yaml:"store"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EngineConfig maps to engine options.
type EngineConfig struct {
	// DirtyTracking defaults to true when omitted.
	DirtyTracking *bool `yaml:"dirty_tracking"`
	UpdateReport  bool  `yaml:"update_report"`
}

// GraphConfig points at CUE graph declarations.
type GraphConfig struct {
	Dir string `yaml:"dir"`
}

// StoreConfig configures the snapshot archive.
type StoreConfig struct {
	Path     string `yaml:"path"`
	Snapshot string `yaml:"snapshot"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// DirtyTrackingEnabled reports the effective dirty tracking setting.
func (c *Config) DirtyTrackingEnabled() bool {
	return c.Engine.DirtyTracking == nil || *c.Engine.DirtyTracking
}

// Load reads a config file and resolves relative paths against its
// directory.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes and validates a config document. Omitted log settings
// take their defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	cfg.Version = 0

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks version and enumerated fields.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Store.Snapshot != "" && c.Store.Path == "" {
		return fmt.Errorf("store.snapshot requires store.path")
	}
	return nil
}

func (c *Config) resolvePaths(base string) {
	if c.Graph.Dir != "" && !filepath.IsAbs(c.Graph.Dir) {
		c.Graph.Dir = filepath.Join(base, c.Graph.Dir)
	}
	if c.Store.Path != "" && c.Store.Path != ":memory:" && !filepath.IsAbs(c.Store.Path) {
		c.Store.Path = filepath.Join(base, c.Store.Path)
	}
}
