// Package imageio reads and writes the image files handled by subimg. It
// hands the codec non-premultiplied RGBA buffers, so the color bytes of
// fully transparent pixels survive a load and save.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pic16f877ccs/subimg/internal/ir"
	"github.com/pic16f877ccs/subimg/internal/stego"
)

// LoadCarrier reads the image at path and returns its pixels. Images
// without an alpha channel are rejected with stego.ErrUnsupportedCarrier.
func LoadCarrier(path string) (*ir.Image, *Info, error) {
	m, info, err := decodeFile(path)
	if err != nil {
		return nil, nil, err
	}
	if !info.HasAlpha {
		return nil, info, fmt.Errorf("%s: %w", path, stego.ErrUnsupportedCarrier)
	}
	return toNRGBA(m), info, nil
}

// LoadPayload reads the image at path and packs its pixels in format.
func LoadPayload(path string, format ir.Format) (*ir.Payload, error) {
	m, _, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return Pack(toNRGBA(m), format), nil
}

// Pack converts an RGBA buffer into a payload of the given format.
func Pack(img *ir.Image, format ir.Format) *ir.Payload {
	p := &ir.Payload{Width: uint32(img.Width), Height: uint32(img.Height), Format: format}
	if format == ir.RGBA {
		p.Pix = bytes.Clone(img.Pix)
		return p
	}
	p.Pix = make([]byte, 0, img.Width*img.Height*3)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		p.Pix = append(p.Pix, img.Pix[i:i+3]...)
	}
	return p
}

// Unpack expands a payload into an RGBA buffer. RGB payloads become opaque.
func Unpack(p *ir.Payload) (*ir.Image, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w, h := int(p.Width), int(p.Height)
	if p.Format == ir.RGBA {
		return ir.New(w, h, bytes.Clone(p.Pix))
	}
	pix := make([]byte, 0, w*h*4)
	for i := 0; i+2 < len(p.Pix); i += 3 {
		pix = append(pix, p.Pix[i], p.Pix[i+1], p.Pix[i+2], 0xff)
	}
	return ir.New(w, h, pix)
}

func decodeFile(path string) (image.Image, *Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image file from %s: %w", path, err)
	}
	m, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	b := m.Bounds()
	info := &Info{
		Width:      b.Dx(),
		Height:     b.Dy(),
		Format:     name,
		ColorModel: ModelName(m.ColorModel()),
		HasAlpha:   hasAlpha(m),
		FileSize:   len(data),
	}
	return m, info, nil
}

// hasAlpha reports whether m carries an alpha channel. Decoders map plain
// RGB files to premultiplied RGBA, so for those models only a non-opaque
// image counts.
func hasAlpha(m image.Image) bool {
	if p, ok := m.ColorModel().(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	}
	switch m.ColorModel() {
	case color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model, color.NYCbCrAModel:
		return true
	case color.RGBAModel, color.RGBA64Model:
		if o, ok := m.(interface{ Opaque() bool }); ok {
			return !o.Opaque()
		}
		return true
	}
	return false
}

// toNRGBA copies m into an interleaved, non-premultiplied buffer. Sources
// that store straight alpha are copied directly, since a round trip through
// color.Color premultiplies and drops the color of transparent pixels.
func toNRGBA(m image.Image) *ir.Image {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*4)

	switch src := m.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(pix[y*w*4:(y+1)*w*4], src.Pix[i:i+w*4])
		}
	case *image.NRGBA64:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				o := (y*w + x) * 4
				pix[o] = src.Pix[i]
				pix[o+1] = src.Pix[i+2]
				pix[o+2] = src.Pix[i+4]
				pix[o+3] = src.Pix[i+6]
			}
		}
	case *image.NYCbCrA:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := src.NYCbCrAAt(b.Min.X+x, b.Min.Y+y)
				o := (y*w + x) * 4
				pix[o], pix[o+1], pix[o+2] = color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
				pix[o+3] = c.A
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				o := (y*w + x) * 4
				pix[o], pix[o+1], pix[o+2], pix[o+3] = c.R, c.G, c.B, c.A
			}
		}
	}
	return &ir.Image{Width: w, Height: h, Pix: pix}
}
