package stego

import "github.com/pic16f877ccs/subimg/internal/ir"

// ForceOpaque sets the alpha of every pixel to 255. This makes the payload
// visible and removes every available slot, so the result can no longer be
// extracted from.
func ForceOpaque(img *ir.Image) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = opaque
	}
}
