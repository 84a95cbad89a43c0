// Package config handles loading and saving rv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/rv/config.yaml
//   - State:   ~/.local/state/rv/ (expanded rows)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/rowview/pkg/model"
)

// ExpandIcons are the glyphs drawn in the expand-affordance cell.
type ExpandIcons struct {
	Expanded  string `yaml:"expanded,omitempty"`
	Collapsed string `yaml:"collapsed,omitempty"`
	Leaf      string `yaml:"leaf,omitempty"`
}

// TableConfig holds table layout settings.
type TableConfig struct {
	PrefixCls        string         `yaml:"prefix_cls,omitempty"`
	IndentSize       int            `yaml:"indent_size,omitempty"`
	ExpandIconColumn int            `yaml:"expand_icon_column,omitempty"` // column index holding the toggle
	ExpandIcons      ExpandIcons    `yaml:"expand_icons,omitempty"`
	Columns          []model.Column `yaml:"columns,omitempty"`
	ExpandAll        bool           `yaml:"expand_all,omitempty"`
}

// UIConfig holds terminal behaviour settings.
type UIConfig struct {
	Mouse         bool `yaml:"mouse"`
	AltScreen     bool `yaml:"alt_screen"`
	DoubleClickMs int  `yaml:"double_click_ms,omitempty"`
}

// DataConfig lists the record sources.
type DataConfig struct {
	Paths []string `yaml:"paths,omitempty"`
	Watch bool     `yaml:"watch,omitempty"`
}

// Config is the top-level configuration for rv.
type Config struct {
	Table           TableConfig `yaml:"table,omitempty"`
	UI              UIConfig    `yaml:"ui,omitempty"`
	Data            DataConfig  `yaml:"data,omitempty"`
	PersistExpanded bool        `yaml:"persist_expanded,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Table: TableConfig{
			PrefixCls:  "rv-table-row",
			IndentSize: 2,
			ExpandIcons: ExpandIcons{
				Expanded:  "▾",
				Collapsed: "▸",
				Leaf:      " ",
			},
		},
		UI: UIConfig{
			Mouse:         true,
			AltScreen:     true,
			DoubleClickMs: 400,
		},
	}
}

// DoubleClickWindow returns the double-click interval.
func (c Config) DoubleClickWindow() time.Duration {
	if c.UI.DoubleClickMs <= 0 {
		return 400 * time.Millisecond
	}
	return time.Duration(c.UI.DoubleClickMs) * time.Millisecond
}

// ConfigDir returns the XDG config directory for rv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "rv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rv")
}

// StateDir returns the XDG state directory for rv.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "rv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "rv")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// ExpandedStatePath returns where expanded rows are persisted for a data
// set identified by name (usually the first data path).
func ExpandedStatePath(name string) string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	base := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(name)
	if base == "" {
		base = "default"
	}
	return filepath.Join(dir, "expanded", base+".json")
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
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	for i := range cfg.Data.Paths {
		cfg.Data.Paths[i] = expandHome(cfg.Data.Paths[i])
	}
	return cfg, nil
}

// Validate rejects settings the table cannot honour.
func (c Config) Validate() error {
	if c.Table.IndentSize < 0 {
		return fmt.Errorf("invalid config: indent_size must not be negative")
	}
	if c.Table.ExpandIconColumn < 0 {
		return fmt.Errorf("invalid config: expand_icon_column must not be negative")
	}
	seen := make(map[string]bool, len(c.Table.Columns))
	for i, col := range c.Table.Columns {
		id := col.ID()
		if id == "" {
			return fmt.Errorf("invalid config: column %d needs key or data_index", i)
		}
		if seen[id] {
			return fmt.Errorf("invalid config: duplicate column %q", id)
		}
		seen[id] = true
		switch col.Fixed {
		case model.FixedNone, model.FixedLeft, model.FixedRight:
		default:
			return fmt.Errorf("invalid config: column %q has unknown fixed side %q", id, col.Fixed)
		}
	}
	return nil
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
