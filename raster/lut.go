// Package raster decodes the province-identity bitmap (provinces.bmp) into a
// row-major slice of province ids.
package raster

import "mapengine/mapdata"

// ColorSpace is the number of distinct 24-bit colors.
const ColorSpace = 1 << 24

// ColorLUT resolves a 24-bit color to a province id in O(1). Unknown colors
// resolve to 0.
type ColorLUT struct {
	ids []uint32

	// Duplicates counts definitions whose color was already taken by an
	// earlier definition. The later definition wins.
	Duplicates int
}

// BuildColorLUT indexes every definition by its color.
func BuildColorLUT(defs []mapdata.ProvinceDefinition) *ColorLUT {
	lut := &ColorLUT{ids: make([]uint32, ColorSpace)}
	for _, d := range defs {
		k := d.Color.Key()
		if prev := lut.ids[k]; prev != 0 && prev != d.ID {
			lut.Duplicates++
		}
		lut.ids[k] = d.ID
	}
	return lut
}

// Lookup returns the province id owning the color.
func (l *ColorLUT) Lookup(r, g, b uint8) uint32 {
	return l.ids[uint32(r)<<16|uint32(g)<<8|uint32(b)]
}
