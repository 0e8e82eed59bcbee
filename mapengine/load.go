package mapengine

import (
	"context"
	"log/slog"
	"time"

	"mapengine/mapdata"
	"mapengine/raster"
)

// ProvinceInstance is a province definition together with its footprint on
// the raster. Bounds is nil for provinces without pixels.
type ProvinceInstance struct {
	Definition mapdata.ProvinceDefinition `json:"definition"`
	Bounds     *BoundingBox               `json:"bounding_box,omitempty"`
	PixelCount uint64                     `json:"pixel_count"`
}

// ProvinceMapData is a decoded province raster with per-province footprints
// and the global edge list.
type ProvinceMapData struct {
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	IDs       []uint32           `json:"-"`
	Instances []ProvinceInstance `json:"instances"`
	Edges     []ProvinceEdge     `json:"edges"`
}

// LoadProvincesRaster decodes the raster at path against defs without
// touching any engine state.
func LoadProvincesRaster(ctx context.Context, path string, defs []mapdata.ProvinceDefinition, opts Options) (*ProvinceMapData, error) {
	opts = opts.withDefaults()
	start := time.Now()
	if err := checkIDRange(defs); err != nil {
		return nil, err
	}

	ras, err := raster.DecodeFile(path, raster.BuildColorLUT(defs), opts.Workers)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var maxID uint32
	for _, d := range defs {
		maxID = max(maxID, d.ID)
	}
	stats := BuildSpatialIndex(ras.Width, ras.IDs, maxID, opts.Workers)
	instances := make([]ProvinceInstance, 0, len(defs))
	for _, d := range defs {
		inst := ProvinceInstance{Definition: d}
		if st, ok := stats[d.ID]; ok {
			box := st.Box
			inst.Bounds = &box
			inst.PixelCount = st.PixelCount
		}
		instances = append(instances, inst)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edges := DetectEdges(ras.Width, ras.Height, ras.IDs, opts.Workers)
	opts.Logger.Info("province raster loaded",
		slog.String("path", path),
		slog.Int("width", ras.Width),
		slog.Int("height", ras.Height),
		slog.Int("edges", len(edges)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return &ProvinceMapData{
		Width:     ras.Width,
		Height:    ras.Height,
		IDs:       ras.IDs,
		Instances: instances,
		Edges:     edges,
	}, nil
}
