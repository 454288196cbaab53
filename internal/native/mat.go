package native

import (
	"errors"
	"fmt"
	"math"
)

// Common errors for native calls.
var (
	// ErrInvalidDimensions is returned when width, height or channels are out of range.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrUnsupportedDepth is raised for an unknown element depth.
	ErrUnsupportedDepth = errors.New("native: unsupported image depth")

	// ErrSizeMismatch is raised when operands do not share the same visible size.
	ErrSizeMismatch = errors.New("native: size mismatch")

	// ErrChannelMismatch is raised when operands have incompatible channel counts.
	ErrChannelMismatch = errors.New("native: channel count mismatch")

	// ErrDepthMismatch is raised when operands must share a depth and do not.
	ErrDepthMismatch = errors.New("native: depth mismatch")

	// ErrCOI is raised when a kernel that ignores channel of interest gets a Mat with one set.
	ErrCOI = errors.New("native: channel of interest not supported")

	// ErrNoConversion is raised for an unregistered color conversion code.
	ErrNoConversion = errors.New("native: no such color conversion")
)

// MaxChannels is the largest supported channel count.
const MaxChannels = 4

// Rect is a rectangle in pixel coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// In reports whether r lies fully within a width x height raster.
func (r Rect) In(width, height int) bool {
	return !r.Empty() && r.X >= 0 && r.Y >= 0 && r.Right() <= width && r.Bottom() <= height
}

// Point is a pixel location.
type Point struct {
	X, Y int
}

// Scalar holds one value per channel.
type Scalar [MaxChannels]float64

// Mat is a strided pixel buffer header.
type Mat struct {
	Data     []byte
	Width    int
	Height   int
	Channels int
	Depth    Depth
	Stride   int

	// ROI restricts kernels to a sub-rectangle, nil means the whole raster.
	ROI *Rect
	// COI is the 1-based channel of interest, 0 means all channels.
	COI int
}

// Alloc creates a zeroed Mat. Rows are padded to a 4 byte boundary.
func Alloc(width, height, channels int, depth Depth) (*Mat, error) {
	if width <= 0 || height <= 0 || channels < 1 || channels > MaxChannels {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, width, height, channels)
	}
	if !depth.Valid() {
		return nil, ErrUnsupportedDepth
	}
	stride := AlignedStride(width, channels, depth)
	if stride <= 0 || height > math.MaxInt32/stride {
		return nil, fmt.Errorf("%w: %dx%d raster too large", ErrInvalidDimensions, width, height)
	}
	return &Mat{
		Data:     make([]byte, stride*height),
		Width:    width,
		Height:   height,
		Channels: channels,
		Depth:    depth,
		Stride:   stride,
	}, nil
}

// MustAlloc is Alloc that panics on failure.
func MustAlloc(width, height, channels int, depth Depth) *Mat {
	m, err := Alloc(width, height, channels, depth)
	if err != nil {
		panic(err)
	}
	return m
}

// AlignedStride returns the padded row size in bytes.
func AlignedStride(width, channels int, depth Depth) int {
	return (width*channels*depth.Size() + 3) &^ 3
}

// Release drops the buffer. It is safe to call more than once.
func (m *Mat) Release() {
	m.Data = nil
	m.ROI = nil
	m.COI = 0
}

// Released reports whether the buffer has been dropped.
func (m *Mat) Released() bool {
	return m.Data == nil
}

// VisibleSize returns the size of the region kernels operate on.
func (m *Mat) VisibleSize() (int, int) {
	if m.ROI != nil {
		return m.ROI.Width, m.ROI.Height
	}
	return m.Width, m.Height
}

// SetROI sets or clears (nil) the region of interest.
func (m *Mat) SetROI(r *Rect) {
	if r == nil {
		m.ROI = nil
		return
	}
	if !r.In(m.Width, m.Height) {
		panic(fmt.Errorf("%w: roi %+v outside %dx%d", ErrInvalidDimensions, *r, m.Width, m.Height))
	}
	rr := *r
	m.ROI = &rr
}

// Header returns a copy of the header sharing the same buffer.
func (m *Mat) Header() *Mat {
	h := *m
	if m.ROI != nil {
		r := *m.ROI
		h.ROI = &r
	}
	return &h
}

func (m *Mat) mustNoCOI() {
	if m.COI != 0 {
		panic(ErrCOI)
	}
}

func sameSize(mats ...*Mat) {
	w, h := mats[0].VisibleSize()
	for _, m := range mats[1:] {
		if m == nil {
			continue
		}
		mw, mh := m.VisibleSize()
		if mw != w || mh != h {
			panic(fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, w, h, mw, mh))
		}
	}
}

func sameLayout(mats ...*Mat) {
	sameSize(mats...)
	for _, m := range mats {
		m.mustNoCOI()
	}
	for _, m := range mats[1:] {
		if m.Channels != mats[0].Channels {
			panic(fmt.Errorf("%w: %d vs %d", ErrChannelMismatch, mats[0].Channels, m.Channels))
		}
		if m.Depth != mats[0].Depth {
			panic(fmt.Errorf("%w: %s vs %s", ErrDepthMismatch, mats[0].Depth, m.Depth))
		}
	}
}

func checkMask(mask *Mat, ref *Mat) {
	if mask == nil {
		return
	}
	mask.mustNoCOI()
	if mask.Channels != 1 || mask.Depth != Depth8U {
		panic(fmt.Errorf("%w: mask must be single channel 8U", ErrChannelMismatch))
	}
	sameSize(ref, mask)
}
