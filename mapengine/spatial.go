package mapengine

import (
	"math"

	"mapengine/raster"
)

// BoundingBox is an inclusive pixel rectangle.
type BoundingBox struct {
	MinX uint32 `json:"min_x"`
	MinY uint32 `json:"min_y"`
	MaxX uint32 `json:"max_x"`
	MaxY uint32 `json:"max_y"`
}

// Contains reports whether (x, y) lies inside the box.
func (b BoundingBox) Contains(x, y uint32) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Union returns the smallest box covering b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		MinX: min(b.MinX, o.MinX),
		MinY: min(b.MinY, o.MinY),
		MaxX: max(b.MaxX, o.MaxX),
		MaxY: max(b.MaxY, o.MaxY),
	}
}

// ProvinceStats is the spatial footprint of one province.
type ProvinceStats struct {
	Box        BoundingBox
	PixelCount uint64
}

type accumulator struct {
	minX, minY, maxX, maxY uint32
	count                  uint64
}

func newAccumulators(n int) []accumulator {
	acc := make([]accumulator, n)
	for i := range acc {
		acc[i].minX = math.MaxUint32
		acc[i].minY = math.MaxUint32
	}
	return acc
}

// BuildSpatialIndex computes the bounding box and pixel count of every
// province id present in ids. Rows are folded in parallel bands, each band
// into its own accumulator table, and the tables are reduced afterwards.
// Id 0 and ids above maxID are ignored.
func BuildSpatialIndex(width int, ids []uint32, maxID uint32, workers int) map[uint32]ProvinceStats {
	if width <= 0 || len(ids) == 0 {
		return map[uint32]ProvinceStats{}
	}
	height := len(ids) / width
	n := int(maxID) + 1

	bands := raster.Bands(height, workers)
	parts := make([][]accumulator, len(bands))
	_ = raster.Parallel(height, workers, func(lo, hi int) error {
		acc := newAccumulators(n)
		for y := lo; y < hi; y++ {
			row := ids[y*width : (y+1)*width]
			for x, id := range row {
				if id == 0 || id > maxID {
					continue
				}
				a := &acc[id]
				a.minX = min(a.minX, uint32(x))
				a.minY = min(a.minY, uint32(y))
				a.maxX = max(a.maxX, uint32(x))
				a.maxY = max(a.maxY, uint32(y))
				a.count++
			}
		}
		for i, b := range bands {
			if b[0] == lo {
				parts[i] = acc
				break
			}
		}
		return nil
	})

	total := newAccumulators(n)
	for _, acc := range parts {
		for id := range acc {
			a := &acc[id]
			if a.count == 0 {
				continue
			}
			t := &total[id]
			t.minX = min(t.minX, a.minX)
			t.minY = min(t.minY, a.minY)
			t.maxX = max(t.maxX, a.maxX)
			t.maxY = max(t.maxY, a.maxY)
			t.count += a.count
		}
	}

	stats := make(map[uint32]ProvinceStats)
	for id := range total {
		t := total[id]
		if t.count == 0 {
			continue
		}
		stats[uint32(id)] = ProvinceStats{
			Box:        BoundingBox{MinX: t.minX, MinY: t.minY, MaxX: t.maxX, MaxY: t.maxY},
			PixelCount: t.count,
		}
	}
	return stats
}
