// Package bmptest builds small 24-bit bitmaps for tests.
package bmptest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"mapengine/mapdata"
)

// Encode lays out a bottom-up bitmap of the given size. pix is addressed in
// top-left origin coordinates. bpp is written to the header as-is, the pixel
// data is always 24-bit.
func Encode(width, height int, bpp uint16, pix func(x, y int) mapdata.RGBColor) []byte {
	rowSize := (width*3 + 3) &^ 3
	b := make([]byte, 54+rowSize*height)
	b[0], b[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(b[2:], uint32(len(b)))
	binary.LittleEndian.PutUint32(b[10:], 54)
	binary.LittleEndian.PutUint32(b[14:], 40)
	binary.LittleEndian.PutUint32(b[18:], uint32(int32(width)))
	binary.LittleEndian.PutUint32(b[22:], uint32(int32(height)))
	binary.LittleEndian.PutUint16(b[26:], 1)
	binary.LittleEndian.PutUint16(b[28:], bpp)
	binary.LittleEndian.PutUint32(b[34:], uint32(rowSize*height))
	for y := 0; y < height; y++ {
		row := b[54+(height-1-y)*rowSize:]
		for x := 0; x < width; x++ {
			c := pix(x, y)
			row[x*3], row[x*3+1], row[x*3+2] = c.B, c.G, c.R
		}
	}
	return b
}

// Grid returns a pixel function reading colors from rows of palette indexes.
func Grid(palette []mapdata.RGBColor, rows [][]int) func(x, y int) mapdata.RGBColor {
	return func(x, y int) mapdata.RGBColor {
		return palette[rows[y][x]]
	}
}

// WriteFile writes data under the test's temp dir and returns the path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
