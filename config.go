package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

var configPath = "config.yml"

// TileConfig selects one tile to export.
type TileConfig struct {
	X    int `yaml:"x"`
	Y    int `yaml:"y"`
	Zoom int `yaml:"zoom"`
}

type Config struct {
	ModPath       string       `yaml:"modPath"`
	HoiPath       string       `yaml:"hoi4Path"`
	OutputDir     string       `yaml:"outputDir"`
	Workers       int          `yaml:"workers"`
	PreviewWidth  int          `yaml:"previewWidth"`
	PreviewHeight int          `yaml:"previewHeight"`
	Modes         []string     `yaml:"modes"`
	Tiles         []TileConfig `yaml:"tiles"`
	LabelStates   bool         `yaml:"labelStates"`
	Upscale       float64      `yaml:"upscale"`
	Backdrop      string       `yaml:"backdrop"`
	DumpIDs       bool         `yaml:"dumpIDs"`
	OutlineStates []uint32     `yaml:"outlineStates"`
}

var defaultConfig = `
modPath: "C:/Program Files (x86)/Steam/steamapps/common/Hearts of Iron IV"
hoi4Path: "C:/Program Files (x86)/Steam/steamapps/common/Hearts of Iron IV"
outputDir: "./output"
workers: 0
previewWidth: 1024
previewHeight: 512
modes:
  - province
  - state
  - country
  - terrain
tiles:
  - x: 0
    y: 0
    zoom: 1
labelStates: true
upscale: 1.0
backdrop: ""
dumpIDs: false
outlineStates: []
`

// errConfigCreated is returned when no config existed and a default one was
// written in its place.
var errConfigCreated = errors.New("config file created")

// loadConfig reads path. When the file does not exist, the default config is
// written there and errConfigCreated is returned.
func loadConfig(path string) (Config, error) {
	var c Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return c, err
			}
		}
		if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
			return c, err
		}
		return c, fmt.Errorf("%w: %v, edit it and run again", errConfigCreated, path)
	}
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(yamlFile, &c); err != nil {
		return c, fmt.Errorf("%v: %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "./output"
	}
	if c.PreviewWidth <= 0 {
		c.PreviewWidth = 1024
	}
	if c.PreviewHeight <= 0 {
		c.PreviewHeight = 512
	}
	if len(c.Modes) == 0 {
		c.Modes = []string{"province"}
	}
	if c.Upscale < 0.01 {
		c.Upscale = 1.0
	}
	for i := range c.Tiles {
		c.Tiles[i].Zoom = max(c.Tiles[i].Zoom, 1)
	}
}
