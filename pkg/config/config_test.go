package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/rowview/pkg/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Table.PrefixCls != "rv-table-row" {
		t.Errorf("expected prefix rv-table-row, got %q", cfg.Table.PrefixCls)
	}
	if cfg.Table.IndentSize != 2 {
		t.Errorf("expected indent size 2, got %d", cfg.Table.IndentSize)
	}
	if !cfg.UI.Mouse {
		t.Error("expected mouse enabled by default")
	}
	if cfg.DoubleClickWindow() != 400*time.Millisecond {
		t.Errorf("expected 400ms double click, got %v", cfg.DoubleClickWindow())
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Table.IndentSize != 2 {
		t.Errorf("expected default config, got indent %d", cfg.Table.IndentSize)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
table:
  indent_size: 4
  expand_icon_column: 1
  columns:
    - key: name
      data_index: name
      title: Name
      width: 20
      fixed: left
    - data_index: size
      width: 6
      align: right
ui:
  mouse: false
  alt_screen: false
  double_click_ms: 250
data:
  paths:
    - ~/rows.json
  watch: true
persist_expanded: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Table.IndentSize != 4 || cfg.Table.ExpandIconColumn != 1 {
		t.Errorf("unexpected table config %+v", cfg.Table)
	}
	if len(cfg.Table.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(cfg.Table.Columns))
	}
	if c := cfg.Table.Columns[0]; c.Fixed != model.FixedLeft || c.Width != 20 || c.ID() != "name" {
		t.Errorf("unexpected first column %+v", c)
	}
	if c := cfg.Table.Columns[1]; c.Align != model.AlignRight || c.ID() != "size" {
		t.Errorf("unexpected second column %+v", c)
	}
	if cfg.UI.Mouse || cfg.DoubleClickWindow() != 250*time.Millisecond {
		t.Errorf("unexpected ui config %+v", cfg.UI)
	}
	if len(cfg.Data.Paths) != 1 || strings.HasPrefix(cfg.Data.Paths[0], "~") {
		t.Errorf("expected ~ expanded, got %v", cfg.Data.Paths)
	}
	// Unset icons keep their defaults.
	if cfg.Table.ExpandIcons.Collapsed != "▸" {
		t.Errorf("expected default collapsed icon, got %q", cfg.Table.ExpandIcons.Collapsed)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("table: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		columns []model.Column
		wantErr string
	}{
		{"ok", []model.Column{{Key: "a"}, {DataIndex: "b", Fixed: model.FixedRight}}, ""},
		{"missing id", []model.Column{{Title: "x"}}, "needs key"},
		{"duplicate", []model.Column{{Key: "a"}, {DataIndex: "a"}}, "duplicate"},
		{"bad side", []model.Column{{Key: "a", Fixed: "top"}}, "fixed side"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Table.Columns = tt.columns
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Table.Columns = []model.Column{{Key: "name", Width: 12, Fixed: model.FixedLeft}}
	cfg.PersistExpanded = true
	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.PersistExpanded || len(loaded.Table.Columns) != 1 || loaded.Table.Columns[0].Fixed != model.FixedLeft {
		t.Errorf("round trip lost data: %+v", loaded)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	if got := ConfigPath(); got != filepath.Join("/tmp/cfg", "rv", "config.yaml") {
		t.Errorf("unexpected config path %q", got)
	}
	if got := ExpandedStatePath("data/rows.json"); got != filepath.Join("/tmp/state", "rv", "expanded", "data_rows.json.json") {
		t.Errorf("unexpected state path %q", got)
	}
}
