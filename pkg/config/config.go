// Package config handles loading and saving cn configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/cn/config.yaml
//   - State:   ~/.local/state/cn/ (snapshot output, caches)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultView string  `yaml:"default_view,omitempty"` // connections, email
	MinZoom     float64 `yaml:"min_zoom,omitempty"`     // lower pan/zoom bound (default 0.25)
	MaxZoom     float64 `yaml:"max_zoom,omitempty"`     // upper pan/zoom bound (default 4.0)
}

// PhysicsConfig overrides individual force gains. Zero values keep the
// built-in defaults.
type PhysicsConfig struct {
	RadialGain  float64 `yaml:"radial_gain,omitempty"`
	LinkGain    float64 `yaml:"link_gain,omitempty"`
	RepelRange  float64 `yaml:"repel_range,omitempty"`
	RepelMember float64 `yaml:"repel_member,omitempty"`
	RepelAnchor float64 `yaml:"repel_anchor,omitempty"`
	SettleTicks int     `yaml:"settle_ticks,omitempty"` // pre-settle iterations before first paint
	RingMargin  float64 `yaml:"ring_margin,omitempty"`  // outer ring clearance from the viewport edge
}

// Config is the top-level configuration for cn.
type Config struct {
	// DataDir is the default data directory, overridable by flag
	DataDir string        `yaml:"data_dir,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
	Physics PhysicsConfig `yaml:"physics,omitempty"`
	// Watch enables live reload of the data source
	Watch *bool `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			DefaultView: "connections",
			MinZoom:     0.25,
			MaxZoom:     4.0,
		},
	}
}

// WatchEnabled reports whether live reload is on (default true).
func (c Config) WatchEnabled() bool {
	if c.Watch == nil {
		return true
	}
	return *c.Watch
}

// ConfigDir returns the XDG config directory for cn.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "cn")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cn")
}

// StateDir returns the XDG state directory for cn.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "cn")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "cn")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DataDir = expandHome(cfg.DataDir)

	// Keep the zoom bounds usable whatever the file says
	if cfg.UI.MinZoom <= 0 {
		cfg.UI.MinZoom = 0.25
	}
	if cfg.UI.MaxZoom <= cfg.UI.MinZoom {
		cfg.UI.MaxZoom = 4.0
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
