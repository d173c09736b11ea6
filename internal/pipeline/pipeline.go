package pipeline

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/pic16f877ccs/subimg/internal/imageio"
	"github.com/pic16f877ccs/subimg/internal/ir"
	"github.com/pic16f877ccs/subimg/internal/stego"
)

// ErrConflictingOptions is returned by Options.Validate.
var ErrConflictingOptions = errors.New("conflicting options")

// Options controls a single subimg run.
type Options struct {
	CarrierPath        string // required: image with an alpha channel
	SubImagePath       string // optional: image to hide in the carrier
	OutputPath         string // optional: where to write the full image
	SubImageOutputPath string // optional: where to write the extracted sub-image

	Format         ir.Format // payload pixel layout, shared by embed and extract
	Fill           bool      // tile the sub-image over all transparent pixels
	ReportCapacity bool      // count the transparent pixels after embedding
	DropAlpha      bool      // write PNG/TIFF output without alpha
	ForceOpaque    bool      // make every pixel opaque before writing
}

// Validate rejects option combinations that cannot be honored.
func (o Options) Validate() error {
	if o.CarrierPath == "" {
		return fmt.Errorf("%w: no input image", ErrConflictingOptions)
	}
	if o.Format != ir.RGB && o.Format != ir.RGBA {
		return fmt.Errorf("%w: unknown pixel format %v", ErrConflictingOptions, o.Format)
	}
	if o.Fill && o.SubImagePath == "" {
		return fmt.Errorf("%w: fill needs a sub-image", ErrConflictingOptions)
	}
	if o.SubImageOutputPath != "" && (o.SubImagePath != "" || o.OutputPath != "") {
		return fmt.Errorf("%w: extracting a sub-image cannot be combined with embedding or writing the full image",
			ErrConflictingOptions)
	}
	return nil
}

// Capacity describes the free space left in a carrier.
type Capacity struct {
	Pixels int // pixels with alpha 0
	Bytes  int // payload bytes they hold, header included
}

// Result holds the output of a pipeline run.
type Result struct {
	Width     int
	Height    int
	Embedded  *stego.Header // set when a sub-image was embedded
	Capacity  *Capacity     // set when ReportCapacity was requested
	Extracted *stego.Header // set when a sub-image was extracted
	Digest    uint64        // xxhash64 of the extracted pixel bytes
}

// Run executes load → embed → report → extract → opaque → save.
func Run(opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// 1. Load the carrier
	img, _, err := imageio.LoadCarrier(opts.CarrierPath)
	if err != nil {
		return nil, err
	}
	res := &Result{Width: img.Width, Height: img.Height}

	// 2. Embed the sub-image
	if opts.SubImagePath != "" {
		sub, err := imageio.LoadPayload(opts.SubImagePath, opts.Format)
		if err != nil {
			return nil, err
		}
		if err := stego.Embed(img, sub, stego.EmbedOptions{Fill: opts.Fill}); err != nil {
			return nil, fmt.Errorf("embedding %s: %w", opts.SubImagePath, err)
		}
		res.Embedded = &stego.Header{Width: sub.Width, Height: sub.Height, Len: len(sub.Pix)}
	}

	// 3. Report free space
	if opts.ReportCapacity {
		res.Capacity = &Capacity{Pixels: stego.Available(img), Bytes: stego.Capacity(img)}
	}

	// 4. Extract
	if opts.SubImageOutputPath != "" {
		p, err := stego.Extract(img, opts.Format)
		if err != nil {
			return nil, fmt.Errorf("failed to extract integrated image from %s: %w", opts.CarrierPath, err)
		}
		if err := imageio.SavePayload(opts.SubImageOutputPath, p); err != nil {
			return nil, err
		}
		res.Extracted = &stego.Header{Width: p.Width, Height: p.Height, Len: len(p.Pix)}
		res.Digest = xxhash.Sum64(p.Pix)
	}

	// 5. Finalize for display
	if opts.ForceOpaque {
		stego.ForceOpaque(img)
	}

	// 6. Save the full image
	if opts.OutputPath != "" {
		if err := imageio.SaveCarrier(opts.OutputPath, img, opts.DropAlpha); err != nil {
			return nil, err
		}
	}

	return res, nil
}
