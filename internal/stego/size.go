package stego

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/pic16f877ccs/subimg/internal/ir"
)

// HeaderSize is the length of the encoded (width, height) prefix.
const HeaderSize = 8

// EncodeSize serializes the payload dimensions in native byte order.
func EncodeSize(width, height uint32) [HeaderSize]byte {
	var b [HeaderSize]byte
	binary.NativeEndian.PutUint32(b[0:4], width)
	binary.NativeEndian.PutUint32(b[4:8], height)
	return b
}

// DecodeSize is the inverse of EncodeSize. Only the first HeaderSize bytes
// of b are read.
func DecodeSize(b []byte) (width, height uint32, err error) {
	if len(b) < HeaderSize {
		return 0, 0, fmt.Errorf("%w: %d of %d bytes", ErrTruncatedHeader, len(b), HeaderSize)
	}
	width = binary.NativeEndian.Uint32(b[0:4])
	height = binary.NativeEndian.Uint32(b[4:8])
	return width, height, nil
}

// PayloadLen returns width*height*bpp for format, failing on overflow and on
// an empty image.
func PayloadLen(width, height uint32, format ir.Format) (int, error) {
	hi, n := bits.Mul64(uint64(width)*uint64(height), uint64(format.BytesPerPixel()))
	if hi != 0 || n > math.MaxInt {
		return 0, fmt.Errorf("%w: %dx%d %s overflows", ErrMalformedHeader, width, height, format)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: empty %dx%d image", ErrMalformedHeader, width, height)
	}
	return int(n), nil
}
