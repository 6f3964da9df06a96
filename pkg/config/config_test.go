package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.DefaultView != "connections" {
		t.Errorf("expected default view 'connections', got %q", cfg.UI.DefaultView)
	}
	if cfg.UI.MinZoom != 0.25 || cfg.UI.MaxZoom != 4.0 {
		t.Errorf("unexpected zoom bounds: %f..%f", cfg.UI.MinZoom, cfg.UI.MaxZoom)
	}
	if !cfg.WatchEnabled() {
		t.Error("expected watch enabled by default")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.DefaultView != "connections" {
		t.Errorf("expected default config, got view %q", cfg.UI.DefaultView)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
data_dir: ~/contacts

ui:
  default_view: email
  min_zoom: 0.5
  max_zoom: 3.0

physics:
  repel_member: 3000
  settle_ticks: 150

watch: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Path should have ~ expanded
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "contacts"); cfg.DataDir != want {
		t.Errorf("expected expanded path %q, got %q", want, cfg.DataDir)
	}

	if cfg.UI.DefaultView != "email" {
		t.Errorf("expected default_view 'email', got %q", cfg.UI.DefaultView)
	}
	if cfg.UI.MinZoom != 0.5 || cfg.UI.MaxZoom != 3.0 {
		t.Errorf("zoom bounds not loaded: %f..%f", cfg.UI.MinZoom, cfg.UI.MaxZoom)
	}
	if cfg.Physics.RepelMember != 3000 {
		t.Errorf("expected repel_member 3000, got %f", cfg.Physics.RepelMember)
	}
	if cfg.Physics.SettleTicks != 150 {
		t.Errorf("expected settle_ticks 150, got %d", cfg.Physics.SettleTicks)
	}
	if cfg.WatchEnabled() {
		t.Error("watch: false not honored")
	}
}

func TestLoadFrom_BadZoomBoundsFallBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
ui:
  min_zoom: -1
  max_zoom: -2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.MinZoom != 0.25 || cfg.UI.MaxZoom != 4.0 {
		t.Errorf("bad bounds not repaired: %f..%f", cfg.UI.MinZoom, cfg.UI.MaxZoom)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.DataDir = "/data/here"
	cfg.Physics.RadialGain = 0.7
	off := false
	cfg.Watch = &off

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.DataDir != "/data/here" {
		t.Errorf("data_dir lost: %q", loaded.DataDir)
	}
	if loaded.Physics.RadialGain != 0.7 {
		t.Errorf("physics override lost: %f", loaded.Physics.RadialGain)
	}
	if loaded.WatchEnabled() {
		t.Error("watch flag lost")
	}
}
