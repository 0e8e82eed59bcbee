package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mapengine/mapdata"
)

// HeaderSize is the size of the file header plus a BITMAPINFOHEADER.
const HeaderSize = 54

// maxPixels bounds the allocation made for a single raster.
const maxPixels = 1 << 30

// Header holds the fields of a bitmap header the decoder needs.
type Header struct {
	PixelOffset  uint32
	Width        int32
	Height       int32 // positive: rows stored bottom-up
	BitsPerPixel uint16
	Compression  uint32
}

// Raster is a decoded province-identity map.
type Raster struct {
	Width  int
	Height int
	IDs    []uint32 // row-major, top-left origin, 0 = no province
}

// At returns the province id at x, y. The caller checks bounds.
func (r *Raster) At(x, y int) uint32 {
	return r.IDs[y*r.Width+x]
}

// RowSize returns the padded byte length of a 24-bit row.
func RowSize(width int) int {
	return (width*3 + 3) &^ 3
}

// DecodeHeader reads and validates the 54-byte header.
func DecodeHeader(r io.Reader) (Header, error) {
	var b [HeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Header{}, fmt.Errorf("%w: header: %v", mapdata.ErrFormat, err)
	}
	if b[0] != 'B' || b[1] != 'M' {
		return Header{}, fmt.Errorf("%w: not a bitmap (magic %q)", mapdata.ErrFormat, b[:2])
	}
	h := Header{
		PixelOffset:  binary.LittleEndian.Uint32(b[10:14]),
		Width:        int32(binary.LittleEndian.Uint32(b[18:22])),
		Height:       int32(binary.LittleEndian.Uint32(b[22:26])),
		BitsPerPixel: binary.LittleEndian.Uint16(b[28:30]),
		Compression:  binary.LittleEndian.Uint32(b[30:34]),
	}
	switch {
	case h.BitsPerPixel != 24:
		return h, fmt.Errorf("%w: unsupported bit depth %d, need 24", mapdata.ErrFormat, h.BitsPerPixel)
	case h.Compression != 0:
		return h, fmt.Errorf("%w: compressed bitmaps are not supported", mapdata.ErrFormat)
	case h.Width <= 0 || h.Height == 0:
		return h, fmt.Errorf("%w: bad dimensions %dx%d", mapdata.ErrFormat, h.Width, h.Height)
	case h.PixelOffset < HeaderSize:
		return h, fmt.Errorf("%w: pixel offset %d inside header", mapdata.ErrFormat, h.PixelOffset)
	}
	if int64(h.Width)*abs64(int64(h.Height)) > maxPixels {
		return h, fmt.Errorf("%w: %dx%d is too large", mapdata.ErrFormat, h.Width, h.Height)
	}
	return h, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// DecodeFile decodes the bitmap at path.
func DecodeFile(path string, lut *ColorLUT, workers int) (*Raster, error) {
	f, err := os.Open(filepath.FromSlash(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mapdata.ErrIO, err)
	}
	defer f.Close()
	return Decode(f, lut, workers)
}

// Decode reads an uncompressed 24-bit bitmap and resolves every pixel to a
// province id through lut. Rows are resolved in parallel.
func Decode(r io.Reader, lut *ColorLUT, workers int) (*Raster, error) {
	h, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	if skip := int64(h.PixelOffset) - HeaderSize; skip > 0 {
		if _, err := io.CopyN(io.Discard, r, skip); err != nil {
			return nil, truncated(err)
		}
	}

	width := int(h.Width)
	height := int(h.Height)
	bottomUp := height > 0
	if !bottomUp {
		height = -height
	}
	rowSize := RowSize(width)
	data := make([]byte, rowSize*height)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, truncated(err)
	}

	ras := &Raster{Width: width, Height: height, IDs: make([]uint32, width*height)}
	err = Parallel(height, workers, func(lo, hi int) error {
		for y := lo; y < hi; y++ {
			// Row 0 in storage is the bottom row of the image.
			src := y
			if bottomUp {
				src = height - 1 - y
			}
			row := data[src*rowSize : src*rowSize+width*3]
			out := ras.IDs[y*width : (y+1)*width]
			for x := range out {
				p := row[x*3 : x*3+3]
				out[x] = lut.Lookup(p[2], p[1], p[0])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ras, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: pixel data: %w", mapdata.ErrFormat, err)
}
