package mapengine

import (
	"fmt"
	"image"

	"mapengine/mapdata"
	"mapengine/raster"
)

// TileSize is the edge length of a rendered tile in pixels.
const TileSize = 512

func putColor(dst []byte, c mapdata.RGBColor) {
	dst[0], dst[1], dst[2], dst[3] = c.R, c.G, c.B, 255
}

// Preview renders the whole map scaled to targetW x targetH with nearest
// neighbor sampling. The result is RGBA, row-major.
func (c *Context) Preview(targetW, targetH int, mode RenderMode) ([]byte, error) {
	if targetW <= 0 || targetH <= 0 {
		return nil, fmt.Errorf("%w: preview size %dx%d", ErrInvalidArgument, targetW, targetH)
	}
	lut := c.LUT(mode)
	buf := make([]byte, targetW*targetH*4)
	scaleX := float64(c.width) / float64(targetW)
	scaleY := float64(c.height) / float64(targetH)

	_ = raster.Parallel(targetH, c.workers, func(lo, hi int) error {
		for y := lo; y < hi; y++ {
			sy := min(int(float64(y)*scaleY), c.height-1)
			row := c.ids[sy*c.width : (sy+1)*c.width]
			out := buf[y*targetW*4 : (y+1)*targetW*4]
			for x := 0; x < targetW; x++ {
				sx := min(int(float64(x)*scaleX), c.width-1)
				putColor(out[x*4:], lut.Color(row[sx]))
			}
		}
		return nil
	})
	return buf, nil
}

// Tile renders a TileSize square starting at (tileX*TileSize*zoom,
// tileY*TileSize*zoom) and sampling every zoom-th pixel. Pixels outside the
// raster stay transparent.
func (c *Context) Tile(tileX, tileY, zoom int, mode RenderMode) []byte {
	// A zoom at least as large as the raster samples only the tile origin, so
	// clamping it keeps the offsets below from overflowing.
	zoom = min(max(zoom, 1), max(c.width, c.height))
	lut := c.LUT(mode)
	buf := make([]byte, TileSize*TileSize*4)
	originX, okX := tileOrigin(tileX, zoom, c.width)
	originY, okY := tileOrigin(tileY, zoom, c.height)
	if !okX || !okY {
		return buf
	}

	_ = raster.Parallel(TileSize, c.workers, func(lo, hi int) error {
		for ty := lo; ty < hi; ty++ {
			sy := originY + int64(ty)*int64(zoom)
			if sy < 0 || sy >= int64(c.height) {
				continue
			}
			row := c.ids[int(sy)*c.width : (int(sy)+1)*c.width]
			out := buf[ty*TileSize*4 : (ty+1)*TileSize*4]
			for tx := 0; tx < TileSize; tx++ {
				sx := originX + int64(tx)*int64(zoom)
				if sx < 0 || sx >= int64(c.width) {
					continue
				}
				putColor(out[tx*4:], lut.Color(row[sx]))
			}
		}
		return nil
	})
	return buf
}

// tileOrigin returns the first raster coordinate sampled by tile t. ok is
// false when the tile lies wholly before or past extent.
func tileOrigin(t, zoom, extent int) (origin int64, ok bool) {
	span := int64(TileSize) * int64(zoom)
	if t < 0 || int64(t) > int64(extent)/span {
		return 0, false
	}
	return int64(t) * span, true
}

// Colorize paints ids with an explicit id to color table, keeping every
// downsample-th pixel in both directions. Ids missing from colors get
// fallback. The returned buffer is RGBA with the reduced dimensions.
func Colorize(ids []uint32, colors map[uint32]mapdata.RGBColor, fallback mapdata.RGBColor, width, height, downsample int) (pix []byte, outW, outH int) {
	downsample = max(downsample, 1)
	if width <= 0 || height <= 0 || len(ids) < width*height {
		return nil, 0, 0
	}
	outW = (width + downsample - 1) / downsample
	outH = (height + downsample - 1) / downsample
	pix = make([]byte, outW*outH*4)
	for y := 0; y < outH; y++ {
		row := ids[y*downsample*width:]
		for x := 0; x < outW; x++ {
			col, ok := colors[row[x*downsample]]
			if !ok {
				col = fallback
			}
			o := (y*outW + x) * 4
			pix[o], pix[o+1], pix[o+2], pix[o+3] = col.R, col.G, col.B, col.A
		}
	}
	return pix, outW, outH
}

// RGBAImage wraps an RGBA buffer produced by a render without copying it.
func RGBAImage(pix []byte, width, height int) *image.RGBA {
	return &image.RGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
}
