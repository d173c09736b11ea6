package ir

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// ErrSizeMismatch reports a pixel buffer whose length disagrees with its
// declared dimensions.
var ErrSizeMismatch = errors.New("pixel buffer size mismatch")

// Image is the carrier representation shared by the codec and the image
// collaborator. Pixels are stored as interleaved R,G,B,A bytes (4 bytes per
// pixel, row-major order, not premultiplied).
type Image struct {
	Width  int
	Height int
	Pix    []byte // len = Width * Height * 4
}

// New wraps pix as an Image after checking the length invariant.
func New(width, height int, pix []byte) (*Image, error) {
	img := &Image{Width: width, Height: height, Pix: pix}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// Validate checks that the buffer length equals Width*Height*4.
func (img *Image) Validate() error {
	if img.Width < 0 || img.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrSizeMismatch, img.Width, img.Height)
	}
	if want := img.Width * img.Height * 4; len(img.Pix) != want {
		return fmt.Errorf("%w: %dx%d RGBA needs %d bytes, got %d",
			ErrSizeMismatch, img.Width, img.Height, want, len(img.Pix))
	}
	return nil
}

// Format is the packed pixel layout of a payload.
type Format int

const (
	RGB  Format = iota // 3 bytes per pixel
	RGBA               // 4 bytes per pixel
)

// BytesPerPixel returns 3 for RGB and 4 for RGBA.
func (f Format) BytesPerPixel() int {
	if f == RGBA {
		return 4
	}
	return 3
}

func (f Format) String() string {
	switch f {
	case RGB:
		return "rgb"
	case RGBA:
		return "rgba"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "rgb", "rgb8":
		return RGB, nil
	case "rgba", "rgba8":
		return RGBA, nil
	default:
		return 0, fmt.Errorf("unknown pixel format: %q", s)
	}
}

// Payload is a sub-image in packed form, as stored inside a carrier.
type Payload struct {
	Width  uint32
	Height uint32
	Format Format
	Pix    []byte // len = Width * Height * Format.BytesPerPixel()
}

// Validate checks that the buffer length matches the dimensions and format.
func (p *Payload) Validate() error {
	hi, want := bits.Mul64(uint64(p.Width)*uint64(p.Height), uint64(p.Format.BytesPerPixel()))
	if hi != 0 || uint64(len(p.Pix)) != want {
		return fmt.Errorf("%w: %dx%d %s needs %d bytes, got %d",
			ErrSizeMismatch, p.Width, p.Height, p.Format, want, len(p.Pix))
	}
	return nil
}
