package mapengine

import (
	"slices"
	"sync"

	"mapengine/mapdata"
	"mapengine/raster"
)

// Metadata describes the installed map.
type Metadata struct {
	Width         uint32 `json:"width"`
	Height        uint32 `json:"height"`
	ProvinceCount int    `json:"province_count"`
}

// Context is an immutable snapshot of a loaded map. All methods are safe for
// concurrent use.
type Context struct {
	width, height int
	ids           []uint32

	definitions    map[uint32]mapdata.ProvinceDefinition
	countryColors  map[string]mapdata.RGBColor
	provinceOwner  map[uint32]string
	provinceState  map[uint32]uint32
	stateProvinces map[uint32][]uint32
	states         map[uint32]mapdata.StateDefinition

	luts  [numModes]LUT
	stats map[uint32]ProvinceStats

	workers int

	edgesOnce sync.Once
	edges     []ProvinceEdge
}

// NewContext builds a snapshot from already loaded parts. A province listed
// by several states belongs to the last of them.
func NewContext(
	ras *raster.Raster,
	defs []mapdata.ProvinceDefinition,
	states []mapdata.StateDefinition,
	countryColors map[string]mapdata.RGBColor,
	workers int,
) *Context {
	c := &Context{
		width:          ras.Width,
		height:         ras.Height,
		ids:            ras.IDs,
		definitions:    make(map[uint32]mapdata.ProvinceDefinition, len(defs)),
		countryColors:  countryColors,
		provinceOwner:  make(map[uint32]string),
		provinceState:  make(map[uint32]uint32),
		stateProvinces: make(map[uint32][]uint32),
		states:         make(map[uint32]mapdata.StateDefinition, len(states)),
		workers:        raster.Workers(workers),
	}
	if c.countryColors == nil {
		c.countryColors = map[string]mapdata.RGBColor{}
	}

	var maxID uint32
	for _, d := range defs {
		c.definitions[d.ID] = d
		maxID = max(maxID, d.ID)
	}

	for _, s := range states {
		c.states[s.ID] = s
		for _, p := range s.Provinces {
			c.provinceState[p] = s.ID
			c.provinceOwner[p] = s.Owner
		}
	}
	for p, sid := range c.provinceState {
		c.stateProvinces[sid] = append(c.stateProvinces[sid], p)
	}
	for sid := range c.stateProvinces {
		slices.Sort(c.stateProvinces[sid])
	}

	c.luts = buildRenderLUTs(c.definitions, maxID, c.provinceState, c.provinceOwner, c.countryColors)
	c.stats = BuildSpatialIndex(c.width, c.ids, maxID, c.workers)
	return c
}

// Width returns the raster width in pixels.
func (c *Context) Width() int { return c.width }

// Height returns the raster height in pixels.
func (c *Context) Height() int { return c.height }

// IDs returns the row-major province id grid. Callers must not modify it.
func (c *Context) IDs() []uint32 { return c.ids }

func (c *Context) Metadata() Metadata {
	return Metadata{
		Width:         uint32(c.width),
		Height:        uint32(c.height),
		ProvinceCount: len(c.definitions),
	}
}

// ProvinceAt returns the id under (x, y). ok is false outside the raster.
func (c *Context) ProvinceAt(x, y int) (id uint32, ok bool) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return 0, false
	}
	return c.ids[y*c.width+x], true
}

func (c *Context) Definition(id uint32) (mapdata.ProvinceDefinition, bool) {
	d, ok := c.definitions[id]
	return d, ok
}

func (c *Context) State(id uint32) (mapdata.StateDefinition, bool) {
	s, ok := c.states[id]
	return s, ok
}

// StateIDs returns every loaded state id in ascending order.
func (c *Context) StateIDs() []uint32 {
	ids := make([]uint32, 0, len(c.states))
	for id := range c.states {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// StateOf returns the state a province belongs to.
func (c *Context) StateOf(province uint32) (uint32, bool) {
	s, ok := c.provinceState[province]
	return s, ok
}

// Owner returns the owner tag of a province's state.
func (c *Context) Owner(province uint32) (string, bool) {
	o, ok := c.provinceOwner[province]
	return o, ok
}

// CountryColor returns the registered color of a country tag.
func (c *Context) CountryColor(tag string) (mapdata.RGBColor, bool) {
	col, ok := c.countryColors[tag]
	return col, ok
}

// StateProvinces returns the member provinces of a state in ascending order.
func (c *Context) StateProvinces(stateID uint32) []uint32 {
	return slices.Clone(c.stateProvinces[stateID])
}

// Stats returns the footprint of a province with at least one pixel.
func (c *Context) Stats(id uint32) (ProvinceStats, bool) {
	s, ok := c.stats[id]
	return s, ok
}

// LUT returns the color table of a render mode.
func (c *Context) LUT(mode RenderMode) LUT {
	if mode < 0 || mode >= numModes {
		mode = ModeProvince
	}
	return c.luts[mode]
}

// Edges returns all province edges. They are computed on first use and
// shared by later calls.
func (c *Context) Edges() []ProvinceEdge {
	c.edgesOnce.Do(func() {
		c.edges = DetectEdges(c.width, c.height, c.ids, c.workers)
	})
	return c.edges
}
