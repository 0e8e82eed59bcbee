// Package mapdata reads the text side of a map: province definitions
// (definition.csv), state history files, the country color table and
// default.map.
package mapdata

import (
	"errors"
	"fmt"
	"image/color"
)

var (
	// ErrIO is returned when a file is missing or unreadable.
	ErrIO = errors.New("io error")
	// ErrFormat is returned for malformed binary input.
	ErrFormat = errors.New("format error")
	// ErrParse is returned for malformed numeric fields and unparseable blocks.
	ErrParse = errors.New("parse error")
	// ErrNoProvinces marks a state file without a provinces block. It wraps
	// ErrParse.
	ErrNoProvinces = fmt.Errorf("%w: state has no provinces block", ErrParse)
)

// RGBColor is a plain 32-bit color. Colors produced by this package are opaque.
type RGBColor struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
	A uint8 `json:"a" yaml:"a"`
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) RGBColor {
	return RGBColor{r, g, b, 255}
}

// Key packs the color into the 24-bit index used by color lookup tables.
func (c RGBColor) Key() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// RGBA converts to the image/color representation.
func (c RGBColor) RGBA() color.RGBA {
	return color.RGBA{c.R, c.G, c.B, c.A}
}

// ProvinceDefinition is one line of definition.csv.
type ProvinceDefinition struct {
	ID        uint32   `json:"id"`
	Color     RGBColor `json:"color"`
	Type      string   `json:"type"` // "land", "sea" or "lake"
	Coastal   bool     `json:"coastal"`
	Terrain   string   `json:"terrain"`
	Continent uint32   `json:"continent"`
}

// StateDefinition represents a parsed history/states file.
type StateDefinition struct {
	ID        uint32   `json:"id"`
	Name      string   `json:"name"`
	Owner     string   `json:"owner"`
	Provinces []uint32 `json:"provinces"`
	Cores     []string `json:"cores,omitempty"`
	Claims    []string `json:"claims,omitempty"`
}

// DefaultMap holds the file names listed in map/default.map.
type DefaultMap struct {
	Definitions       string `json:"definitions"`
	Provinces         string `json:"provinces"`
	Adjacencies       string `json:"adjacencies"`
	Continent         string `json:"continent"`
	Rivers            string `json:"rivers"`
	TerrainDefinition string `json:"terrain_definition,omitempty"`
}

// DefinitionColors maps every province id to its definition color.
func DefinitionColors(defs []ProvinceDefinition) map[uint32]RGBColor {
	m := make(map[uint32]RGBColor, len(defs))
	for _, d := range defs {
		c := d.Color
		c.A = 255
		m[d.ID] = c
	}
	return m
}

// OwnerColors maps every province of an owned state to the owner's color.
// States whose owner has no registered color are left out.
func OwnerColors(states []StateDefinition, countryColors map[string]RGBColor) map[uint32]RGBColor {
	m := make(map[uint32]RGBColor)
	for _, s := range states {
		c, ok := countryColors[s.Owner]
		if !ok {
			continue
		}
		for _, p := range s.Provinces {
			m[p] = c
		}
	}
	return m
}
