package imgcv

import (
	"fmt"
	"math"

	"github.com/vearutop/imgcv/internal/native"
)

// Rect is a pixel rectangle, (X, Y) is the top left corner.
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

// In reports whether r is non-empty and lies within a width x height raster.
func (r Rect) In(width, height int) bool {
	return r.toNative().In(width, height)
}

// Scale multiplies the edges of r by sx horizontally and sy vertically.
// Edges are floored, a non-empty rectangle keeps at least one pixel.
func (r Rect) Scale(sx, sy float64) Rect {
	left := int(math.Floor(float64(r.X) * sx))
	top := int(math.Floor(float64(r.Y) * sy))
	right := int(math.Floor(float64(r.Right()) * sx))
	bottom := int(math.Floor(float64(r.Bottom()) * sy))
	if !r.Empty() {
		right = max(right, left+1)
		bottom = max(bottom, top+1)
	}
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// clip limits r to a width x height raster.
func (r Rect) clip(width, height int) Rect {
	left, top := max(r.X, 0), max(r.Y, 0)
	right, bottom := min(r.Right(), width), min(r.Bottom(), height)
	return Rect{X: left, Y: top, Width: max(right-left, 0), Height: max(bottom-top, 0)}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

func (r Rect) toNative() native.Rect {
	return native.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// ROI returns the region of interest and whether one is set.
func (img *Image[C, D]) ROI() (Rect, bool) {
	m := img.hdr()
	if m.ROI == nil {
		return Rect{Width: m.Width, Height: m.Height}, false
	}
	r := m.ROI
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}, true
}

// HasROI reports whether a region of interest is set.
func (img *Image[C, D]) HasROI() bool {
	return img.hdr().ROI != nil
}

// SetROI restricts size reporting and bulk operations to r.
// It panics with ErrInvalidROI if r is empty or not inside the raster.
func (img *Image[C, D]) SetROI(r Rect) {
	m := img.hdr()
	if !r.In(m.Width, m.Height) {
		panic(fmt.Errorf("%w: %s in %dx%d", ErrInvalidROI, r, m.Width, m.Height))
	}
	nr := r.toNative()
	m.ROI = &nr
}

// ResetROI makes the whole raster visible again.
func (img *Image[C, D]) ResetROI() {
	img.hdr().ROI = nil
}
