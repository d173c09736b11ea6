package stego

import (
	"fmt"

	"github.com/pic16f877ccs/subimg/internal/ir"
)

// EmbedOptions controls how a payload is written into a carrier.
type EmbedOptions struct {
	// Fill tiles the payload pixels over every available slot instead of
	// storing a recoverable copy. No header is written, capacity is not
	// checked and the filled slots are made opaque.
	Fill bool
}

// Embed writes sub into the available slots of img.
//
// The capacity check runs before the first write, so on
// ErrInsufficientCapacity the carrier is unchanged. Slots left over after
// the payload keep their alpha of 0.
func Embed(img *ir.Image, sub *ir.Payload, opts EmbedOptions) error {
	if err := checkCarrier(img); err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("sub-image: %w: no image", ErrSizeMismatch)
	}
	if err := sub.Validate(); err != nil {
		return fmt.Errorf("sub-image: %w", err)
	}
	if opts.Fill {
		fill(img, sub)
		return nil
	}

	size, err := PayloadLen(sub.Width, sub.Height, sub.Format)
	if err != nil {
		return fmt.Errorf("sub-image: %w", err)
	}
	slots := Slots(img)
	need := HeaderSize + size
	if have := len(slots) * slotBytes; need > have {
		return fmt.Errorf("%w: need %d bytes, %d available in %d pixels",
			ErrInsufficientCapacity, need, have, len(slots))
	}

	header := EncodeSize(sub.Width, sub.Height)
	w := newLaneWriter(img, slots)
	w.write(header[:])
	w.write(sub.Pix)
	return nil
}

func fill(img *ir.Image, sub *ir.Payload) {
	rgb := packedRGB(sub)
	if len(rgb) == 0 {
		return
	}
	i := 0
	for off := range Lanes(img, FourLane) {
		if off%4 == 3 {
			img.Pix[off] = opaque
			continue
		}
		img.Pix[off] = rgb[i]
		i = (i + 1) % len(rgb)
	}
}

// packedRGB returns the payload pixels without their alpha bytes.
func packedRGB(sub *ir.Payload) []byte {
	if sub.Format == ir.RGB {
		return sub.Pix
	}
	bpp := sub.Format.BytesPerPixel()
	rgb := make([]byte, 0, len(sub.Pix)/bpp*3)
	for i := 0; i+bpp <= len(sub.Pix); i += bpp {
		rgb = append(rgb, sub.Pix[i:i+3]...)
	}
	return rgb
}

func checkCarrier(img *ir.Image) error {
	if img == nil {
		return fmt.Errorf("%w: no image", ErrUnsupportedCarrier)
	}
	if err := img.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedCarrier, err)
	}
	return nil
}
