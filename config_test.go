package main

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadConfigWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yml")

	if _, err := loadConfig(path); !errors.Is(err, errConfigCreated) {
		t.Fatalf("err = %v, want errConfigCreated", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !slices.Equal(cfg.Modes, []string{"province", "state", "country", "terrain"}) {
		t.Errorf("Modes = %v", cfg.Modes)
	}
	if cfg.PreviewWidth != 1024 || cfg.PreviewHeight != 512 {
		t.Errorf("preview = %dx%d", cfg.PreviewWidth, cfg.PreviewHeight)
	}
	if len(cfg.Tiles) != 1 || cfg.Tiles[0] != (TileConfig{X: 0, Y: 0, Zoom: 1}) {
		t.Errorf("Tiles = %+v", cfg.Tiles)
	}
	if !cfg.LabelStates || cfg.DumpIDs || cfg.Upscale != 1.0 {
		t.Errorf("flags = %+v", cfg)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
modPath: /mods/x
hoi4Path: /games/hoi4
tiles:
  - x: 2
    y: 3
outlineStates: [1, 64]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.ModPath != "/mods/x" || cfg.HoiPath != "/games/hoi4" {
		t.Errorf("paths = %q, %q", cfg.ModPath, cfg.HoiPath)
	}
	if cfg.OutputDir != "./output" || cfg.Upscale != 1.0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if !slices.Equal(cfg.Modes, []string{"province"}) {
		t.Errorf("Modes = %v", cfg.Modes)
	}
	if cfg.Tiles[0] != (TileConfig{X: 2, Y: 3, Zoom: 1}) {
		t.Errorf("tile = %+v", cfg.Tiles[0])
	}
	if !slices.Equal(cfg.OutlineStates, []uint32{1, 64}) {
		t.Errorf("OutlineStates = %v", cfg.OutlineStates)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("modes: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil || errors.Is(err, errConfigCreated) {
		t.Fatalf("err = %v, want a parse error", err)
	}
}

func TestStringContains(t *testing.T) {
	if !stringContains([]string{"run", "--debug"}, "debug") {
		t.Error("debug flag not found")
	}
	if stringContains(nil, "debug") {
		t.Error("found debug in empty args")
	}
}
