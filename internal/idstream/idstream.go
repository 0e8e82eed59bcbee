// Package idstream serializes province id grids. The raw form is a flat
// little-endian uint32 stream; the compressed form prefixes the grid size and
// lz4-frames the raw stream.
package idstream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4"
)

// ErrCorrupt is returned for streams that do not hold a whole id grid.
var ErrCorrupt = errors.New("corrupt id stream")

var magic = [4]byte{'P', 'I', 'D', 'S'}

const headerSize = 12

// Encode returns ids as consecutive little-endian uint32 values.
func Encode(ids []uint32) []byte {
	b := make([]byte, len(ids)*4)
	for i, id := range ids {
		binary.LittleEndian.PutUint32(b[i*4:], id)
	}
	return b
}

// Decode is the inverse of Encode.
func Decode(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 4", ErrCorrupt, len(b))
	}
	ids := make([]uint32, len(b)/4)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return ids, nil
}

// WriteCompressed writes a width x height grid to w.
func WriteCompressed(w io.Writer, width, height int, ids []uint32) error {
	if width <= 0 || height <= 0 || len(ids) != width*height {
		return fmt.Errorf("%w: %d ids for a %dx%d grid", ErrCorrupt, len(ids), width, height)
	}
	var hdr [headerSize]byte
	copy(hdr[:], magic[:])
	binary.LittleEndian.PutUint32(hdr[4:], uint32(width))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(height))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	zw := lz4.NewWriter(w)
	if _, err := zw.Write(Encode(ids)); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// ReadCompressed reads a grid written by WriteCompressed.
func ReadCompressed(r io.Reader) (width, height int, ids []uint32, err error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, 0, nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	if !bytes.Equal(hdr[:4], magic[:]) {
		return 0, 0, nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, hdr[:4])
	}
	width = int(binary.LittleEndian.Uint32(hdr[4:]))
	height = int(binary.LittleEndian.Uint32(hdr[8:]))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lz4.NewReader(r)); err != nil {
		return 0, 0, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if buf.Len() != width*height*4 {
		return 0, 0, nil, fmt.Errorf("%w: %d bytes for a %dx%d grid", ErrCorrupt, buf.Len(), width, height)
	}
	ids, err = Decode(buf.Bytes())
	return width, height, ids, err
}
