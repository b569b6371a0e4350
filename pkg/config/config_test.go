package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.Elide.EmitDecoratorMetadata {
		t.Error("Elide.EmitDecoratorMetadata should be false by default")
	}
	if cfg.Elide.MetadataPolicy != "decorated" {
		t.Errorf("Elide.MetadataPolicy = %q, want decorated", cfg.Elide.MetadataPolicy)
	}

	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}
	if len(cfg.Exclude.Dirs) == 0 {
		t.Error("Exclude.Dirs should have default values")
	}

	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true by default")
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}

	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "elide.toml", `
workers = 4

[elide]
emit_decorator_metadata = true
metadata_policy = "any"
remove_decorators = ["Component", "Input"]

[exclude]
dirs = ["node_modules", "generated"]

[cache]
enabled = false

[output]
format = "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !cfg.Elide.EmitDecoratorMetadata {
		t.Error("Elide.EmitDecoratorMetadata should be true")
	}
	if cfg.Elide.MetadataPolicy != "any" {
		t.Errorf("Elide.MetadataPolicy = %q, want any", cfg.Elide.MetadataPolicy)
	}
	if got := strings.Join(cfg.Elide.RemoveDecorators, ","); got != "Component,Input" {
		t.Errorf("Elide.RemoveDecorators = %q", got)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
	// untouched sections keep their defaults
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "elide.yaml", `
elide:
  emit_decorator_metadata: true
output:
  format: toon
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Elide.EmitDecoratorMetadata {
		t.Error("Elide.EmitDecoratorMetadata should be true")
	}
	if cfg.Output.Format != "toon" {
		t.Errorf("Output.Format = %s, want toon", cfg.Output.Format)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "elide.json", `{"elide": {"metadata_policy": "none"}, "workers": 2}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Elide.MetadataPolicy != "none" {
		t.Errorf("Elide.MetadataPolicy = %q, want none", cfg.Elide.MetadataPolicy)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	path := writeConfig(t, "elide.toml", `
workers = -1

[elide]
metadata_policy = "sometimes"

[output]
format = "xml"
`)

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}
	for _, want := range []string{"metadata_policy", "output.format", "workers"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestLoadNonexistent(t *testing.T) {
	if _, err := Load("/nonexistent/elide.toml"); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestLoadConfigWithPath(t *testing.T) {
	path := writeConfig(t, "custom.toml", "[output]\nformat = \"markdown\"\n")

	result, err := LoadConfig(WithPath(path))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if result.Source != path {
		t.Errorf("Source = %q, want %q", result.Source, path)
	}
	if result.Config.Output.Format != "markdown" {
		t.Errorf("Output.Format = %s, want markdown", result.Config.Output.Format)
	}

	if _, err := LoadConfig(WithPath(filepath.Join(t.TempDir(), "missing.toml"))); err == nil {
		t.Error("LoadConfig() should fail for an explicit missing path")
	}
}

func TestLoadConfigSearch(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	result, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if result.Source != "" {
		t.Errorf("Source = %q, want defaults", result.Source)
	}

	if err := os.MkdirAll(".elide", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(".elide", "elide.toml"), []byte("workers = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if result.Source != filepath.Join(".elide", "elide.toml") {
		t.Errorf("Source = %q", result.Source)
	}
	if result.Config.Workers != 3 {
		t.Errorf("Workers = %d, want 3", result.Config.Workers)
	}
	if cfg := LoadOrDefault(); cfg.Workers != 3 {
		t.Errorf("LoadOrDefault().Workers = %d, want 3", cfg.Workers)
	}
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
	}{
		{"valid toml", "a.toml", "workers = 2\n[elide]\nremove_decorators = [\"Input\"]\n", false},
		{"valid yaml", "a.yaml", "cache:\n  ttl: 12\n", false},
		{"unknown key", "a.toml", "[elide]\nemit_metadata = true\n", true},
		{"wrong type", "a.json", `{"workers": "many"}`, true},
		{"bad enum", "a.yaml", "output:\n  format: html\n", true},
		{"negative ttl", "a.toml", "[cache]\nttl = -5\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			err := ValidateFile(path)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("ValidateFile() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateFile() error = %v", err)
			}
		})
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path    string
		exclude bool
	}{
		{"src/app.ts", false},
		{"node_modules/lib/index.js", true},
		{"packages/a/node_modules/lib/index.js", true},
		{"dist/main.js", true},
		{"src/vendor.min.js", true},
		{"src/app.bundle.js", true},
		{"src/distance.ts", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			path := filepath.FromSlash(tt.path)
			if got := cfg.ShouldExclude(path); got != tt.exclude {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.exclude)
			}
		})
	}
}
