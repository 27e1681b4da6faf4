package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Build.StartLabel != "main" {
		t.Errorf("default start label should be 'main', got %q", cfg.Build.StartLabel)
	}
	if !cfg.Build.JumpMain {
		t.Error("jump_main should default to true")
	}
	if cfg.Build.ProgramSizeLimit != 0x400000 {
		t.Errorf("program size limit should default to 4MB, got %#x", cfg.Build.ProgramSizeLimit)
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "nonexistent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Path != "a.out" {
		t.Errorf("missing config file should fall back to defaults, got %q", cfg.Output.Path)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := DefaultConfig()
	cfg.Build.StartLabel = "entry"
	cfg.Output.Format = "indexed"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Build.StartLabel != "entry" || loaded.Output.Format != "indexed" {
		t.Errorf("round-tripped config mismatch: %+v", loaded)
	}
}
