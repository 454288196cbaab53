// Package native implements the pixel primitives the image core dispatches to.
//
// A Mat is a raw, strided pixel buffer header in the spirit of an IplImage:
// it carries the buffer, the element depth, the channel count, an optional
// region of interest and an optional channel of interest. Kernels honor the
// region of interest on every operand; only Copy and MinMaxLoc understand a
// channel of interest, every other kernel rejects a Mat that has one set.
//
// Precondition violations panic with one of the package errors, the same way
// a native library would abort the call.
package native

import "unsafe"

// Depth identifies the storage type of a single channel element.
type Depth uint8

const (
	// DepthInvalid is the zero value and is never a valid buffer depth.
	DepthInvalid Depth = iota
	// Depth8U is an unsigned 8-bit integer element (0..255).
	Depth8U
	// Depth32F is an IEEE-754 single precision element.
	Depth32F
)

// Elem is the set of Go element types a Mat can hold.
type Elem interface {
	~uint8 | ~float32
}

// DepthOf returns the depth descriptor for the element type T.
func DepthOf[T Elem]() Depth {
	var zero T
	switch unsafe.Sizeof(zero) {
	case 1:
		return Depth8U
	case 4:
		return Depth32F
	default:
		return DepthInvalid
	}
}

// Size returns the element width in bytes.
func (d Depth) Size() int {
	switch d {
	case Depth8U:
		return 1
	case Depth32F:
		return 4
	default:
		return 0
	}
}

// IsFloat reports whether elements are floating point.
func (d Depth) IsFloat() bool {
	return d == Depth32F
}

// Valid reports whether d is a known depth.
func (d Depth) Valid() bool {
	return d == Depth8U || d == Depth32F
}

// String returns the conventional short name of the depth.
func (d Depth) String() string {
	switch d {
	case Depth8U:
		return "8U"
	case Depth32F:
		return "32F"
	default:
		return "invalid"
	}
}

func isByte[T Elem]() bool {
	var zero T
	return unsafe.Sizeof(zero) == 1
}

// saturate converts v to T, rounding and clamping to 0..255 for byte depth.
func saturate[T Elem](v float64) T {
	if !isByte[T]() {
		return T(v)
	}
	if v <= 0 || v != v {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return T(v + 0.5)
}

// Saturate is the element conversion used by every kernel.
func Saturate[T Elem](v float64) T {
	return saturate[T](v)
}
