package imgcv

import (
	"errors"

	"github.com/vearutop/imgcv/internal/native"
)

// Errors raised by image operations.
//
// Precondition violations (mismatched operands, out of bounds regions,
// unsupported conversions) panic with an error wrapping one of these values.
// Decoding and I/O paths return them as regular errors.
var (
	ErrSizeMismatch      = native.ErrSizeMismatch
	ErrChannelMismatch   = native.ErrChannelMismatch
	ErrUnsupportedDepth  = native.ErrUnsupportedDepth
	ErrNoConversion      = native.ErrNoConversion
	ErrInvalidDimensions = native.ErrInvalidDimensions

	ErrInvalidROI    = errors.New("imgcv: region of interest outside image")
	ErrReleased      = errors.New("imgcv: image released")
	ErrCorruptRecord = errors.New("imgcv: corrupt image record")
)
