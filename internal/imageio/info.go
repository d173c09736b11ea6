package imageio

import (
	"fmt"
	"image/color"
)

// Info contains metadata about a decoded image file.
type Info struct {
	Width      int
	Height     int
	Format     string // decoder name: "png", "tiff", ...
	ColorModel string
	HasAlpha   bool
	FileSize   int
}

// Inspect decodes the image at path and reports its metadata.
func Inspect(path string) (*Info, error) {
	_, info, err := decodeFile(path)
	return info, err
}

// ModelName returns a human-readable name for a color model.
func ModelName(m color.Model) string {
	if p, ok := m.(color.Palette); ok {
		return fmt.Sprintf("Paletted(%d)", len(p))
	}
	switch m {
	case color.RGBAModel:
		return "RGBA"
	case color.RGBA64Model:
		return "RGBA64"
	case color.NRGBAModel:
		return "NRGBA"
	case color.NRGBA64Model:
		return "NRGBA64"
	case color.AlphaModel:
		return "Alpha"
	case color.Alpha16Model:
		return "Alpha16"
	case color.GrayModel:
		return "Gray"
	case color.Gray16Model:
		return "Gray16"
	case color.YCbCrModel:
		return "YCbCr"
	case color.NYCbCrAModel:
		return "NYCbCrA"
	case color.CMYKModel:
		return "CMYK"
	default:
		return "Unknown"
	}
}
