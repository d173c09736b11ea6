package pipeline

import (
	"errors"

	"github.com/cespare/xxhash/v2"

	"github.com/pic16f877ccs/subimg/internal/imageio"
	"github.com/pic16f877ccs/subimg/internal/ir"
	"github.com/pic16f877ccs/subimg/internal/stego"
)

// Report describes a carrier and the sub-image it appears to hold.
type Report struct {
	Info     *imageio.Info
	Capacity Capacity

	// Header is nil when no plausible size header is stored. HeaderErr is
	// set when the header or the data behind it is damaged.
	Header    *stego.Header
	HeaderErr error
	Digest    uint64
}

// Identify inspects the carrier at path. A missing or damaged sub-image and
// an image without alpha are reported, not returned as errors.
func Identify(path string, format ir.Format) (*Report, error) {
	img, info, err := imageio.LoadCarrier(path)
	if errors.Is(err, stego.ErrUnsupportedCarrier) && info != nil {
		return &Report{Info: info, HeaderErr: err}, nil
	}
	if err != nil {
		return nil, err
	}
	rep := &Report{
		Info:     info,
		Capacity: Capacity{Pixels: stego.Available(img), Bytes: stego.Capacity(img)},
	}
	h, err := stego.Probe(img, format)
	if err != nil {
		rep.HeaderErr = err
		return rep, nil
	}
	rep.Header = &h
	p, err := stego.Extract(img, format)
	if err != nil {
		rep.HeaderErr = err
		return rep, nil
	}
	rep.Digest = xxhash.Sum64(p.Pix)
	return rep, nil
}
