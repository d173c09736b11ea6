package stego

import (
	"bytes"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pic16f877ccs/subimg/internal/ir"
)

// newCarrier builds a width x height carrier whose pixels are opaque grey
// except where transparent reports true.
func newCarrier(t *testing.T, width, height int, transparent func(x, y int) bool) *ir.Image {
	t.Helper()
	pix := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 4
			pix[off], pix[off+1], pix[off+2] = 0x80, 0x80, 0x80
			if transparent == nil || !transparent(x, y) {
				pix[off+3] = 0xff
			}
		}
	}
	img, err := ir.New(width, height, pix)
	if err != nil {
		t.Fatalf("ir.New: %v", err)
	}
	return img
}

func allTransparent(x, y int) bool { return true }

func newPayload(width, height uint32, format ir.Format, seed byte) *ir.Payload {
	pix := make([]byte, int(width)*int(height)*format.BytesPerPixel())
	for i := range pix {
		pix[i] = seed + byte(i*7)
	}
	return &ir.Payload{Width: width, Height: height, Format: format, Pix: pix}
}

func TestSizeRoundTrip(t *testing.T) {
	cases := []struct{ w, h uint32 }{
		{0, 0},
		{1, 1},
		{640, 480},
		{1, math.MaxUint32},
		{math.MaxUint32, math.MaxUint32},
	}
	for _, c := range cases {
		b := EncodeSize(c.w, c.h)
		w, h, err := DecodeSize(b[:])
		if err != nil {
			t.Fatalf("DecodeSize(%d, %d): %v", c.w, c.h, err)
		}
		if w != c.w || h != c.h {
			t.Errorf("round trip of (%d, %d) gave (%d, %d)", c.w, c.h, w, h)
		}
	}
}

func TestDecodeSizeTruncated(t *testing.T) {
	for n := 0; n < HeaderSize; n++ {
		if _, _, err := DecodeSize(make([]byte, n)); !errors.Is(err, ErrTruncatedHeader) {
			t.Errorf("DecodeSize with %d bytes: got %v, want ErrTruncatedHeader", n, err)
		}
	}
}

func TestPayloadLen(t *testing.T) {
	n, err := PayloadLen(2, 3, ir.RGBA)
	if err != nil || n != 24 {
		t.Errorf("PayloadLen(2, 3, rgba) = %d, %v; want 24", n, err)
	}
	n, err = PayloadLen(2, 3, ir.RGB)
	if err != nil || n != 18 {
		t.Errorf("PayloadLen(2, 3, rgb) = %d, %v; want 18", n, err)
	}
	if _, err := PayloadLen(0, 10, ir.RGB); !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("zero width: got %v, want ErrMalformedHeader", err)
	}
	if _, err := PayloadLen(math.MaxUint32, math.MaxUint32, ir.RGBA); !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("overflow: got %v, want ErrMalformedHeader", err)
	}
}

func TestLanesOrder(t *testing.T) {
	// 3x2 carrier, transparent at (1,0) and (0,1)
	img := newCarrier(t, 3, 2, func(x, y int) bool {
		return (x == 1 && y == 0) || (x == 0 && y == 1)
	})

	if diff := cmp.Diff([]int{4, 12}, Slots(img)); diff != "" {
		t.Errorf("Slots mismatch (-want +got):\n%s", diff)
	}

	want := []int{4, 5, 6, 12, 13, 14}
	got := slices.Collect(Lanes(img, ThreeLane))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ThreeLane mismatch (-want +got):\n%s", diff)
	}
	// the sequence restarts from the beginning
	if diff := cmp.Diff(want, slices.Collect(Lanes(img, ThreeLane))); diff != "" {
		t.Errorf("second iteration mismatch (-want +got):\n%s", diff)
	}

	got = slices.Collect(Lanes(img, FourLane))
	if diff := cmp.Diff([]int{4, 5, 6, 7, 12, 13, 14, 15}, got); diff != "" {
		t.Errorf("FourLane mismatch (-want +got):\n%s", diff)
	}
}

func TestAvailable(t *testing.T) {
	img := newCarrier(t, 4, 4, func(x, y int) bool { return x == y })
	if got := Available(img); got != 4 {
		t.Errorf("Available = %d, want 4", got)
	}
	if got := Capacity(img); got != 12 {
		t.Errorf("Capacity = %d, want 12", got)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		sub           *ir.Payload
	}{
		{"1x1 rgb", 10, 10, newPayload(1, 1, ir.RGB, 1)},
		{"1x1 rgba", 10, 10, newPayload(1, 1, ir.RGBA, 1)},
		{"5x3 rgb", 8, 8, newPayload(5, 3, ir.RGB, 9)},
		{"4x4 rgba", 8, 9, newPayload(4, 4, ir.RGBA, 200)},
		{"black", 4, 4, &ir.Payload{Width: 2, Height: 1, Format: ir.RGB, Pix: make([]byte, 6)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			img := newCarrier(t, c.width, c.height, allTransparent)
			if err := Embed(img, c.sub, EmbedOptions{}); err != nil {
				t.Fatalf("Embed: %v", err)
			}
			got, err := Extract(img, c.sub.Format)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if diff := cmp.Diff(c.sub, got); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTripExactCapacity(t *testing.T) {
	// 2x2 rgb payload = 8 + 12 bytes = 20, fits exactly into 7 slots (21)
	// with one spare lane.
	img := newCarrier(t, 7, 1, allTransparent)
	sub := newPayload(2, 2, ir.RGB, 3)
	if err := Embed(img, sub, EmbedOptions{}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	got, err := Extract(img, ir.RGB)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !bytes.Equal(got.Pix, sub.Pix) {
		t.Errorf("pixels = %v, want %v", got.Pix, sub.Pix)
	}
}

func TestEmbedPreservesAlpha(t *testing.T) {
	img := newCarrier(t, 6, 6, func(x, y int) bool { return (x+y)%2 == 0 })
	before := Available(img)
	if err := Embed(img, newPayload(2, 2, ir.RGBA, 5), EmbedOptions{}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if after := Available(img); after != before {
		t.Errorf("Available changed from %d to %d", before, after)
	}
}

func TestEmbedLeavesOpaquePixels(t *testing.T) {
	img := newCarrier(t, 5, 5, func(x, y int) bool { return y >= 2 })
	orig := slices.Clone(img.Pix)
	if err := Embed(img, newPayload(2, 2, ir.RGB, 77), EmbedOptions{}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if diff := cmp.Diff(orig[:2*5*4], img.Pix[:2*5*4]); diff != "" {
		t.Errorf("opaque rows modified (-want +got):\n%s", diff)
	}
}

func TestEmbedInsufficientCapacity(t *testing.T) {
	// 4x4 carrier with three transparent pixels holds 9 bytes, a 1x1
	// payload needs 8+3 or 8+4.
	for _, format := range []ir.Format{ir.RGB, ir.RGBA} {
		img := newCarrier(t, 4, 4, func(x, y int) bool { return y == 3 && x < 3 })
		orig := slices.Clone(img.Pix)

		err := Embed(img, newPayload(1, 1, format, 0xff), EmbedOptions{})
		if !errors.Is(err, ErrInsufficientCapacity) {
			t.Fatalf("%s: got %v, want ErrInsufficientCapacity", format, err)
		}
		if diff := cmp.Diff(orig, img.Pix); diff != "" {
			t.Errorf("%s: carrier modified on failure (-want +got):\n%s", format, diff)
		}
	}
}

func TestEmbedWhitePixel(t *testing.T) {
	for _, format := range []ir.Format{ir.RGB, ir.RGBA} {
		img := newCarrier(t, 10, 10, allTransparent)
		white := bytes.Repeat([]byte{255}, format.BytesPerPixel())
		sub := &ir.Payload{Width: 1, Height: 1, Format: format, Pix: white}
		if err := Embed(img, sub, EmbedOptions{}); err != nil {
			t.Fatalf("Embed: %v", err)
		}
		got, err := Extract(img, format)
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if got.Width != 1 || got.Height != 1 {
			t.Errorf("%s: size %dx%d, want 1x1", format, got.Width, got.Height)
		}
		if !bytes.Equal(got.Pix, white) {
			t.Errorf("%s: pixels %v, want %v", format, got.Pix, white)
		}
	}
}

func TestEmbedRejectsInvalidCarrier(t *testing.T) {
	img := &ir.Image{Width: 2, Height: 2, Pix: make([]byte, 15)}
	err := Embed(img, newPayload(1, 1, ir.RGB, 0), EmbedOptions{})
	if !errors.Is(err, ErrUnsupportedCarrier) {
		t.Errorf("got %v, want ErrUnsupportedCarrier", err)
	}
	if _, err := Extract(nil, ir.RGB); !errors.Is(err, ErrUnsupportedCarrier) {
		t.Errorf("Extract(nil): got %v, want ErrUnsupportedCarrier", err)
	}
}

func TestEmbedRejectsInvalidPayload(t *testing.T) {
	img := newCarrier(t, 4, 4, allTransparent)
	sub := &ir.Payload{Width: 2, Height: 2, Format: ir.RGB, Pix: make([]byte, 5)}
	if err := Embed(img, sub, EmbedOptions{}); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("got %v, want ErrSizeMismatch", err)
	}
}

func TestEmbedRejectsEmptyPayload(t *testing.T) {
	img := newCarrier(t, 4, 4, allTransparent)
	orig := slices.Clone(img.Pix)
	for _, sub := range []*ir.Payload{
		{Width: 0, Height: 5, Format: ir.RGB},
		{Width: 3, Height: 0, Format: ir.RGBA},
		{Format: ir.RGB},
	} {
		err := Embed(img, sub, EmbedOptions{})
		if !errors.Is(err, ErrMalformedHeader) {
			t.Errorf("%dx%d: got %v, want ErrMalformedHeader", sub.Width, sub.Height, err)
		}
	}
	if diff := cmp.Diff(orig, img.Pix); diff != "" {
		t.Errorf("carrier modified (-want +got):\n%s", diff)
	}
}

func TestEmbedNilPayload(t *testing.T) {
	img := newCarrier(t, 4, 4, allTransparent)
	for _, opts := range []EmbedOptions{{}, {Fill: true}} {
		if err := Embed(img, nil, opts); !errors.Is(err, ErrSizeMismatch) {
			t.Errorf("fill=%v: got %v, want ErrSizeMismatch", opts.Fill, err)
		}
	}
}

func TestFill(t *testing.T) {
	img := newCarrier(t, 3, 3, func(x, y int) bool { return x != 1 })
	sub := &ir.Payload{Width: 2, Height: 1, Format: ir.RGBA, Pix: []byte{
		10, 20, 30, 0,
		40, 50, 60, 0,
	}}
	if err := Embed(img, sub, EmbedOptions{Fill: true}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got := Available(img); got != 0 {
		t.Errorf("Available after fill = %d, want 0", got)
	}

	want := [][]byte{
		{10, 20, 30, 255}, {0x80, 0x80, 0x80, 255}, {40, 50, 60, 255},
		{10, 20, 30, 255}, {0x80, 0x80, 0x80, 255}, {40, 50, 60, 255},
		{10, 20, 30, 255}, {0x80, 0x80, 0x80, 255}, {40, 50, 60, 255},
	}
	var got [][]byte
	for off := 0; off < len(img.Pix); off += 4 {
		got = append(got, img.Pix[off:off+4])
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("filled pixels mismatch (-want +got):\n%s", diff)
	}
}

func TestFillIgnoresCapacity(t *testing.T) {
	img := newCarrier(t, 2, 1, allTransparent)
	if err := Embed(img, newPayload(10, 10, ir.RGB, 1), EmbedOptions{Fill: true}); err != nil {
		t.Errorf("Embed with fill: %v", err)
	}
}

func TestFillEmptyPayload(t *testing.T) {
	img := newCarrier(t, 2, 2, allTransparent)
	orig := slices.Clone(img.Pix)
	if err := Embed(img, &ir.Payload{Format: ir.RGB}, EmbedOptions{Fill: true}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if diff := cmp.Diff(orig, img.Pix); diff != "" {
		t.Errorf("carrier modified (-want +got):\n%s", diff)
	}
}

func TestExtractErrors(t *testing.T) {
	t.Run("truncated header", func(t *testing.T) {
		img := newCarrier(t, 4, 4, func(x, y int) bool { return y == 0 && x < 2 })
		if _, err := Extract(img, ir.RGB); !errors.Is(err, ErrTruncatedHeader) {
			t.Errorf("got %v, want ErrTruncatedHeader", err)
		}
	})

	t.Run("empty carrier", func(t *testing.T) {
		img := newCarrier(t, 4, 4, allTransparent)
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 0, 0, 0
		}
		if _, err := Extract(img, ir.RGB); !errors.Is(err, ErrMalformedHeader) {
			t.Errorf("got %v, want ErrMalformedHeader", err)
		}
	})

	t.Run("truncated payload", func(t *testing.T) {
		img := newCarrier(t, 4, 4, allTransparent)
		h := EncodeSize(100, 100)
		w := newLaneWriter(img, Slots(img))
		w.write(h[:])
		if _, err := Extract(img, ir.RGB); !errors.Is(err, ErrTruncatedPayload) {
			t.Errorf("got %v, want ErrTruncatedPayload", err)
		}
	})

	t.Run("huge header", func(t *testing.T) {
		img := newCarrier(t, 4, 4, allTransparent)
		h := EncodeSize(math.MaxUint32, math.MaxUint32)
		w := newLaneWriter(img, Slots(img))
		w.write(h[:])
		_, err := Extract(img, ir.RGBA)
		if !errors.Is(err, ErrMalformedHeader) && !errors.Is(err, ErrTruncatedPayload) {
			t.Errorf("got %v, want ErrMalformedHeader or ErrTruncatedPayload", err)
		}
	})

	t.Run("after force opaque", func(t *testing.T) {
		img := newCarrier(t, 10, 10, allTransparent)
		if err := Embed(img, newPayload(1, 1, ir.RGB, 1), EmbedOptions{}); err != nil {
			t.Fatalf("Embed: %v", err)
		}
		ForceOpaque(img)
		if _, err := Extract(img, ir.RGB); !errors.Is(err, ErrTruncatedHeader) {
			t.Errorf("got %v, want ErrTruncatedHeader", err)
		}
	})
}

func TestProbe(t *testing.T) {
	img := newCarrier(t, 10, 10, allTransparent)
	if err := Embed(img, newPayload(3, 2, ir.RGBA, 0), EmbedOptions{}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	h, err := Probe(img, ir.RGBA)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if diff := cmp.Diff(Header{Width: 3, Height: 2, Len: 24}, h); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestForceOpaque(t *testing.T) {
	img := newCarrier(t, 5, 4, func(x, y int) bool { return x%2 == 1 })
	ForceOpaque(img)
	once := slices.Clone(img.Pix)
	ForceOpaque(img)
	if diff := cmp.Diff(once, img.Pix); diff != "" {
		t.Errorf("second ForceOpaque changed buffer (-want +got):\n%s", diff)
	}
	if got := Available(img); got != 0 {
		t.Errorf("Available = %d, want 0", got)
	}
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0x80 {
			t.Fatalf("color byte at %d changed to %d", i, img.Pix[i])
		}
	}
}
