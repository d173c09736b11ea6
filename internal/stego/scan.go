// Package stego hides a sub-image in the fully transparent pixels of a
// carrier image and recovers it.
//
// A pixel with alpha 0 is an available slot. Slots are visited in row-major
// order and their R, G and B bytes form the lane stream. The stream starts
// with an 8 byte size header (width, height as native-endian uint32)
// followed by the packed pixels of the sub-image. The embedder never writes
// alpha, so an extract re-scans the same slots by alpha == 0.
package stego

import (
	"iter"

	"github.com/pic16f877ccs/subimg/internal/ir"
)

// LaneMode selects which bytes of an available slot are addressed.
type LaneMode int

const (
	// ThreeLane addresses R, G and B; alpha stays 0.
	ThreeLane LaneMode = 3
	// FourLane addresses all four bytes. Fill writes color into the first
	// three and marks the slot consumed by setting its alpha to 255.
	FourLane LaneMode = 4
)

const (
	transparent = 0
	opaque      = 255

	// consumable payload bytes per slot, in either mode
	slotBytes = 3
)

// Slots returns the byte offset into img.Pix of every available slot, in
// row-major order.
func Slots(img *ir.Image) []int {
	var slots []int
	for off := 0; off+3 < len(img.Pix); off += 4 {
		if img.Pix[off+3] == transparent {
			slots = append(slots, off)
		}
	}
	return slots
}

// Lanes returns the byte offsets of the lanes of all available slots. The
// slot list is collected when iteration starts, so callers may write through
// the offsets while ranging. The sequence can be iterated more than once.
func Lanes(img *ir.Image, mode LaneMode) iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, off := range Slots(img) {
			for i := 0; i < int(mode); i++ {
				if !yield(off + i) {
					return
				}
			}
		}
	}
}

// Available returns the number of pixels with alpha 0.
func Available(img *ir.Image) int {
	n := 0
	for off := 3; off < len(img.Pix); off += 4 {
		if img.Pix[off] == transparent {
			n++
		}
	}
	return n
}

// Capacity returns the number of payload bytes the available slots hold,
// header included.
func Capacity(img *ir.Image) int {
	return Available(img) * slotBytes
}

// laneWriter streams bytes into the R, G and B lanes of a fixed slot list.
// Alpha is never written.
type laneWriter struct {
	pix   []byte
	slots []int
	slot  int
	lane  int
}

func newLaneWriter(img *ir.Image, slots []int) *laneWriter {
	return &laneWriter{pix: img.Pix, slots: slots}
}

// write copies as much of src as fits and returns the number of bytes
// written.
func (w *laneWriter) write(src []byte) int {
	n := 0
	for n < len(src) && w.slot < len(w.slots) {
		off := w.slots[w.slot]
		w.pix[off+w.lane] = src[n]
		n++
		w.lane++
		if w.lane == slotBytes {
			w.lane = 0
			w.slot++
		}
	}
	return n
}
