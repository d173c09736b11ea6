package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/pic16f877ccs/subimg/internal/ir"
)

// ErrUnsupportedFormat is returned for output paths whose extension has no
// encoder that keeps both color and alpha bytes intact. BMP is read but not
// written: its encoder emits a header whose alpha the decoder ignores.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Kind identifies an output encoder.
type Kind int

const (
	PNG Kind = iota
	TIFF
)

func (k Kind) String() string {
	switch k {
	case PNG:
		return "png"
	case TIFF:
		return "tiff"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindFromPath picks the encoder for path by its extension.
func KindFromPath(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".tif", ".tiff":
		return TIFF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// CanDropAlpha reports whether k can be written as RGB8 on request.
func (k Kind) CanDropAlpha() bool {
	return k == PNG || k == TIFF
}

// SaveCarrier writes img to path. With dropAlpha set, PNG and TIFF output is
// written without transparency; other formats always keep the alpha channel.
func SaveCarrier(path string, img *ir.Image, dropAlpha bool) error {
	if err := img.Validate(); err != nil {
		return fmt.Errorf("the image could not be written to the file %s: %w", path, err)
	}
	kind, err := KindFromPath(path)
	if err != nil {
		return err
	}
	m := nrgbaView(img)
	if dropAlpha && kind.CanDropAlpha() {
		m = flatten(m)
	}
	return writeFile(path, kind, m)
}

// SavePayload writes an extracted sub-image to path.
func SavePayload(path string, p *ir.Payload) error {
	kind, err := KindFromPath(path)
	if err != nil {
		return err
	}
	img, err := Unpack(p)
	if err != nil {
		return fmt.Errorf("the sub-image could not be written to the file %s: %w", path, err)
	}
	return writeFile(path, kind, nrgbaView(img))
}

func writeFile(path string, kind Kind, m *image.NRGBA) error {
	var buf bytes.Buffer
	var err error
	switch kind {
	case PNG:
		err = png.Encode(&buf, m)
	case TIFF:
		err = tiff.Encode(&buf, m, nil)
	}
	if err != nil {
		return fmt.Errorf("encoding %s as %s: %w", path, kind, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("the image could not be written to the file %s: %w", path, err)
	}
	return nil
}

// nrgbaView shares img's buffer with an *image.NRGBA.
func nrgbaView(img *ir.Image) *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pix,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// flatten returns a copy of m with every alpha set to 255. The PNG encoder
// writes opaque images as RGB8.
func flatten(m *image.NRGBA) *image.NRGBA {
	out := &image.NRGBA{Pix: bytes.Clone(m.Pix), Stride: m.Stride, Rect: m.Rect}
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}
