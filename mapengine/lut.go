package mapengine

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"mapengine/mapdata"
)

var (
	colorBlack        = mapdata.RGB(0, 0, 0)
	colorNoState      = mapdata.RGB(100, 100, 100)
	colorNoOwner      = mapdata.RGB(40, 40, 40)
	colorUnknownOwner = mapdata.RGB(128, 128, 128)
	colorNoTerrain    = mapdata.RGB(100, 100, 100)
	colorTerrainOther = mapdata.RGB(200, 200, 200)
)

var terrainColors = map[string]mapdata.RGBColor{
	"plains":   mapdata.RGB(247, 166, 86),
	"forest":   mapdata.RGB(85, 139, 47),
	"hills":    mapdata.RGB(255, 215, 0),
	"mountain": mapdata.RGB(139, 69, 19),
	"urban":    mapdata.RGB(128, 128, 128),
	"jungle":   mapdata.RGB(34, 139, 34),
	"marsh":    mapdata.RGB(47, 79, 79),
	"desert":   mapdata.RGB(244, 164, 96),
	"water":    mapdata.RGB(65, 105, 225),
	"ocean":    mapdata.RGB(65, 105, 225),
	"lakes":    mapdata.RGB(65, 155, 225),
}

// TerrainColor returns the fixed color of a terrain name.
func TerrainColor(terrain string) mapdata.RGBColor {
	if c, ok := terrainColors[terrain]; ok {
		return c
	}
	return colorTerrainOther
}

// StateColor derives a stable vivid color from a state id.
func StateColor(stateID uint32) mapdata.RGBColor {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], stateID)
	h := xxhash.Sum64(b[:])
	return mapdata.RGB(
		uint8(40+(h&0xff)%180),
		uint8(40+(h>>8&0xff)%180),
		uint8(40+(h>>16&0xff)%180),
	)
}

// LUT maps a province id to a render color. Ids past the end resolve like
// id 0.
type LUT []mapdata.RGBColor

// Color returns the color of id.
func (l LUT) Color(id uint32) mapdata.RGBColor {
	if int(id) < len(l) {
		return l[id]
	}
	if len(l) > 0 {
		return l[0]
	}
	return colorBlack
}

func filledLUT(n int, c mapdata.RGBColor) LUT {
	l := make(LUT, n)
	for i := range l {
		l[i] = c
	}
	return l
}

// buildRenderLUTs builds one table per render mode, each maxID+1 long.
func buildRenderLUTs(
	defs map[uint32]mapdata.ProvinceDefinition,
	maxID uint32,
	provinceState map[uint32]uint32,
	provinceOwner map[uint32]string,
	countryColors map[string]mapdata.RGBColor,
) [numModes]LUT {
	n := int(maxID) + 1
	luts := [numModes]LUT{
		ModeProvince: filledLUT(n, colorBlack),
		ModeState:    filledLUT(n, colorNoState),
		ModeCountry:  filledLUT(n, colorNoOwner),
		ModeTerrain:  filledLUT(n, colorNoTerrain),
	}
	for id, d := range defs {
		c := d.Color
		c.A = 255
		luts[ModeProvince][id] = c
		luts[ModeTerrain][id] = TerrainColor(d.Terrain)

		sid, ok := provinceState[id]
		if !ok {
			continue
		}
		luts[ModeState][id] = StateColor(sid)
		if oc, ok := countryColors[provinceOwner[id]]; ok {
			luts[ModeCountry][id] = oc
		} else {
			luts[ModeCountry][id] = colorUnknownOwner
		}
	}
	return luts
}
