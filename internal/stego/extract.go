package stego

import (
	"fmt"
	"iter"

	"github.com/pic16f877ccs/subimg/internal/ir"
)

// Header describes the payload announced by a carrier's size header.
type Header struct {
	Width  uint32
	Height uint32
	Len    int // payload bytes for the requested format
}

// Probe decodes the size header of img without reading the payload.
func Probe(img *ir.Image, format ir.Format) (Header, error) {
	if err := checkCarrier(img); err != nil {
		return Header{}, err
	}
	next, stop := iter.Pull(Lanes(img, ThreeLane))
	defer stop()
	return readHeader(img, next, format)
}

// Extract recovers the payload stored by Embed. The carrier is not
// modified.
func Extract(img *ir.Image, format ir.Format) (*ir.Payload, error) {
	if err := checkCarrier(img); err != nil {
		return nil, err
	}
	next, stop := iter.Pull(Lanes(img, ThreeLane))
	defer stop()

	h, err := readHeader(img, next, format)
	if err != nil {
		return nil, err
	}
	if have := Capacity(img) - HeaderSize; h.Len > have {
		return nil, fmt.Errorf("%w: %dx%d %s needs %d bytes, %d stored",
			ErrTruncatedPayload, h.Width, h.Height, format, h.Len, have)
	}

	pix := make([]byte, h.Len)
	if n := readLanes(img, next, pix); n != len(pix) {
		return nil, fmt.Errorf("%w: read %d of %d bytes", ErrTruncatedPayload, n, len(pix))
	}

	p := &ir.Payload{Width: h.Width, Height: h.Height, Format: format, Pix: pix}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func readHeader(img *ir.Image, next func() (int, bool), format ir.Format) (Header, error) {
	var buf [HeaderSize]byte
	n := readLanes(img, next, buf[:])
	w, h, err := DecodeSize(buf[:n])
	if err != nil {
		return Header{}, err
	}
	size, err := PayloadLen(w, h, format)
	if err != nil {
		return Header{}, err
	}
	return Header{Width: w, Height: h, Len: size}, nil
}

func readLanes(img *ir.Image, next func() (int, bool), dst []byte) int {
	for i := range dst {
		off, ok := next()
		if !ok {
			return i
		}
		dst[i] = img.Pix[off]
	}
	return len(dst)
}
