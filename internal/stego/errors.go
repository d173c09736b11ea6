package stego

import (
	"errors"

	"github.com/pic16f877ccs/subimg/internal/ir"
)

var (
	// ErrUnsupportedCarrier is returned for carriers without an alpha channel
	// or with an inconsistent pixel buffer.
	ErrUnsupportedCarrier = errors.New("an image without an alpha channel is not supported")

	// ErrInsufficientCapacity is returned when the header and payload do not
	// fit into the available slots.
	ErrInsufficientCapacity = errors.New("not enough free space in the image")

	ErrTruncatedHeader  = errors.New("embedded size header is truncated")
	ErrMalformedHeader  = errors.New("embedded size header is malformed")
	ErrTruncatedPayload = errors.New("embedded image data is truncated")

	// ErrSizeMismatch is shared with ir so that errors.Is works across layers.
	ErrSizeMismatch = ir.ErrSizeMismatch
)
