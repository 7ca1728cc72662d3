package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("verbose: true\n"), "liger.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("max_depth = %d, want %d", cfg.MaxDepth, DefaultMaxDepth)
	}
	if !cfg.MainRequired() {
		t.Errorf("require_main should default to true")
	}
	if cfg.Color != ColorAuto {
		t.Errorf("color = %q, want auto", cfg.Color)
	}
	if cfg.Format != FormatText {
		t.Errorf("format = %q, want text", cfg.Format)
	}
	if !cfg.Verbose {
		t.Errorf("verbose should be true")
	}
}

func TestParseConfig_AllKeys(t *testing.T) {
	yaml := `
max_depth: 64
require_main: false
color: never
verbose: false
format: yaml
liger_version: ">= 0.1, < 1.0"
`
	cfg, err := ParseConfig([]byte(yaml), "liger.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxDepth != 64 {
		t.Errorf("max_depth = %d, want 64", cfg.MaxDepth)
	}
	if cfg.MainRequired() {
		t.Errorf("explicit require_main: false was overwritten")
	}
	if cfg.Color != ColorNever || cfg.Format != FormatYAML {
		t.Errorf("color/format = %q/%q", cfg.Color, cfg.Format)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad yaml", "max_depth: [", "parsing"},
		{"negative depth", "max_depth: -1", "max_depth"},
		{"bad color", "color: sometimes", "color"},
		{"bad format", "format: json", "format"},
		{"bad constraint", "liger_version: \"not a version\"", "invalid liger_version"},
		{"unsatisfied constraint", "liger_version: \">= 99.0\"", "does not satisfy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml), "liger.yaml")
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestFindConfig_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, ConfigFileName)
	if err := os.WriteFile(want, []byte("max_depth: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("FindConfig = %q, want %q", got, want)
	}

	cfg, path, err := LoadNearest(nested)
	if err != nil {
		t.Fatalf("LoadNearest: %v", err)
	}
	if path != want || cfg.MaxDepth != 10 {
		t.Errorf("LoadNearest = %q, max_depth %d", path, cfg.MaxDepth)
	}
}

func TestLoadNearest_NoFileUsesDefaults(t *testing.T) {
	cfg, path, err := LoadNearest(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A liger.yaml above the temp dir would be picked up; only check when none was found.
	if path == "" && cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config") {
		t.Errorf("expected a wrapped read error, got %v", err)
	}
}
