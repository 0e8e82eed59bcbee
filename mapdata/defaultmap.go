package mapdata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadDefaultMap parses map/default.map. Keys that are absent keep the
// vanilla file names.
func LoadDefaultMap(path string) (DefaultMap, error) {
	lines, err := readLines(path)
	if err != nil {
		return DefaultMap{}, err
	}
	return ParseDefaultMap(lines), nil
}

// ParseDefaultMap reads key = value lines.
func ParseDefaultMap(lines []string) DefaultMap {
	dm := DefaultMap{
		Definitions: "definition.csv",
		Provinces:   "provinces.bmp",
		Adjacencies: "adjacencies.csv",
		Continent:   "continent.txt",
		Rivers:      "rivers.bmp",
	}
	for _, line := range lines {
		line = strings.TrimSpace(rComment.ReplaceAllLiteralString(line, ""))
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "definitions":
			dm.Definitions = value
		case "provinces":
			dm.Provinces = value
		case "adjacencies":
			dm.Adjacencies = value
		case "continent":
			dm.Continent = value
		case "rivers":
			dm.Rivers = value
		case "terrain_definition":
			dm.TerrainDefinition = value
		}
	}
	return dm
}

// Paths locates the four inputs of a map context.
type Paths struct {
	Raster        string `yaml:"raster"`
	Definitions   string `yaml:"definitions"`
	StatesDir     string `yaml:"states"`
	CountryColors string `yaml:"countryColors"`
}

// ResolveProjectPaths finds the map inputs of a mod or game directory.
// File names from default.map without a directory live under map/, anything
// else is relative to root. Every path that does not exist under root is
// looked up under fallbackRoot (usually the base game), when given.
func ResolveProjectPaths(root, fallbackRoot string) (Paths, error) {
	dmPath, err := checkPath("map/default.map", root, fallbackRoot)
	if err != nil {
		return Paths{}, err
	}
	dm, err := LoadDefaultMap(dmPath)
	if err != nil {
		return Paths{}, err
	}

	var p Paths
	for _, f := range []struct {
		dst *string
		rel string
	}{
		{&p.Raster, mapRelative(dm.Provinces)},
		{&p.Definitions, mapRelative(dm.Definitions)},
		{&p.StatesDir, "history/states"},
		{&p.CountryColors, "common/countries/colors.txt"},
	} {
		if *f.dst, err = checkPath(f.rel, root, fallbackRoot); err != nil {
			return Paths{}, err
		}
	}
	return p, nil
}

func mapRelative(name string) string {
	name = strings.TrimLeft(filepath.ToSlash(name), "/")
	if !strings.Contains(name, "/") {
		return "map/" + name
	}
	return name
}

func checkPath(rel, root, fallbackRoot string) (string, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))
	if _, err := os.Stat(full); err == nil {
		return full, nil
	}
	if fallbackRoot != "" {
		full = filepath.Join(fallbackRoot, filepath.FromSlash(rel))
		if _, err := os.Stat(full); err == nil {
			return full, nil
		}
	}
	return "", fmt.Errorf("%w: could not find %v", ErrIO, rel)
}
