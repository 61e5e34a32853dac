package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "cacheDir: /tmp/cache\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorkerPoolWidth != 16 {
		t.Errorf("WorkerPoolWidth = %d, want 16", cfg.WorkerPoolWidth)
	}
	if cfg.InMemoryCacheSize != 2048 {
		t.Errorf("InMemoryCacheSize = %d, want 2048", cfg.InMemoryCacheSize)
	}
	if cfg.DefaultHostname != "github.com" {
		t.Errorf("DefaultHostname = %q", cfg.DefaultHostname)
	}
}

func TestLoad_MissingCacheDir(t *testing.T) {
	path := writeConfig(t, "workerPoolWidth: 4\n")

	if _, err := Load(path); err == nil {
		t.Error("expected error when cacheDir is missing")
	}
}

func TestLoad_MappingLookup(t *testing.T) {
	path := writeConfig(t, `
cacheDir: /tmp/cache
repositoryMappings:
  - owner: acme
    name: app
    ciConfigName: main
    team: platform
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	m, ok := cfg.MappingForRepository("acme", "app")
	if !ok {
		t.Fatal("expected mapping to be found")
	}
	if m.Team != "platform" {
		t.Errorf("Team = %q", m.Team)
	}

	if _, ok := cfg.MappingForRepository("acme", "other"); ok {
		t.Error("expected no mapping for unknown repository")
	}
}
