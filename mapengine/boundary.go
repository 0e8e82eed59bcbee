package mapengine

import (
	"cmp"
	"slices"

	"mapengine/raster"
)

// Point is a pixel coordinate.
type Point struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

func comparePoints(a, b Point) int {
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}

// ProvinceEdge is the shared border of two different ids. FromID is always
// the smaller id, and Points holds both sides of every differing
// neighbor pair, without duplicates, in row-major order.
type ProvinceEdge struct {
	FromID uint32  `json:"from_id"`
	ToID   uint32  `json:"to_id"`
	Points []Point `json:"points"`
}

type pairKey struct{ from, to uint32 }

func makePair(a, b uint32) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

type pointSet map[Point]struct{}

// DetectEdges compares every pixel with its right and bottom neighbors and
// collects the pixels on both sides of each id change, grouped by id pair.
// Background (id 0) takes part like any other id.
func DetectEdges(width, height int, ids []uint32, workers int) []ProvinceEdge {
	if width <= 0 || height <= 0 || len(ids) < width*height {
		return nil
	}
	bands := raster.Bands(height, workers)
	parts := make([]map[pairKey]pointSet, len(bands))

	_ = raster.Parallel(height, workers, func(lo, hi int) error {
		local := make(map[pairKey]pointSet)
		add := func(k pairKey, a, b Point) {
			set, ok := local[k]
			if !ok {
				set = make(pointSet)
				local[k] = set
			}
			set[a] = struct{}{}
			set[b] = struct{}{}
		}
		for y := lo; y < hi; y++ {
			for x := 0; x < width; x++ {
				idx := y*width + x
				cur := ids[idx]
				p := Point{uint32(x), uint32(y)}
				if x+1 < width {
					if right := ids[idx+1]; right != cur {
						add(makePair(cur, right), p, Point{uint32(x + 1), uint32(y)})
					}
				}
				if y+1 < height {
					if down := ids[idx+width]; down != cur {
						add(makePair(cur, down), p, Point{uint32(x), uint32(y + 1)})
					}
				}
			}
		}
		for i, b := range bands {
			if b[0] == lo {
				parts[i] = local
				break
			}
		}
		return nil
	})

	merged := make(map[pairKey]pointSet)
	for _, local := range parts {
		for k, set := range local {
			dst, ok := merged[k]
			if !ok {
				merged[k] = set
				continue
			}
			for p := range set {
				dst[p] = struct{}{}
			}
		}
	}

	edges := make([]ProvinceEdge, 0, len(merged))
	for k, set := range merged {
		pts := make([]Point, 0, len(set))
		for p := range set {
			pts = append(pts, p)
		}
		slices.SortFunc(pts, comparePoints)
		edges = append(edges, ProvinceEdge{FromID: k.from, ToID: k.to, Points: pts})
	}
	slices.SortFunc(edges, func(a, b ProvinceEdge) int {
		if c := cmp.Compare(a.FromID, b.FromID); c != 0 {
			return c
		}
		return cmp.Compare(a.ToID, b.ToID)
	})
	return edges
}

// outline scans box and keeps every pixel accepted by inside that sits on the
// raster border or has a 4-neighbor rejected by inside.
func outline(width, height int, ids []uint32, box BoundingBox, inside func(id uint32) bool) []Point {
	var pts []Point
	for y := int(box.MinY); y <= int(box.MaxY) && y < height; y++ {
		for x := int(box.MinX); x <= int(box.MaxX) && x < width; x++ {
			idx := y*width + x
			if !inside(ids[idx]) {
				continue
			}
			if y == 0 || y == height-1 || x == 0 || x == width-1 ||
				!inside(ids[idx-width]) || !inside(ids[idx+width]) ||
				!inside(ids[idx-1]) || !inside(ids[idx+1]) {
				pts = append(pts, Point{uint32(x), uint32(y)})
			}
		}
	}
	return pts
}

// ProvinceOutline returns the border pixels of a province in row-major
// order.
func (c *Context) ProvinceOutline(id uint32) ([]Point, error) {
	st, ok := c.stats[id]
	if !ok {
		return nil, ErrNotFound
	}
	return outline(c.width, c.height, c.ids, st.Box, func(v uint32) bool { return v == id }), nil
}

// StateOutline returns the pixels of a state's provinces that touch the
// raster border or a pixel outside the state, in row-major order.
func (c *Context) StateOutline(stateID uint32) ([]Point, error) {
	members, ok := c.stateProvinces[stateID]
	if !ok {
		return nil, ErrNotFound
	}
	set := make(map[uint32]struct{}, len(members))
	var box BoundingBox
	found := false
	for _, p := range members {
		set[p] = struct{}{}
		st, ok := c.stats[p]
		if !ok {
			continue
		}
		if !found {
			box, found = st.Box, true
		} else {
			box = box.Union(st.Box)
		}
	}
	if !found {
		return nil, ErrNotFound
	}
	return outline(c.width, c.height, c.ids, box, func(v uint32) bool {
		_, in := set[v]
		return in
	}), nil
}
