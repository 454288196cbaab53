package imgcv

import "github.com/vearutop/imgcv/internal/native"

// MinMax returns the extremes of every channel of the visible region.
// Locations are relative to the visible region.
func (img *Image[C, D]) MinMax() []MinMax {
	return forEachChannel(img, func(ch *native.Mat, _ int) MinMax {
		r := native.MinMaxLoc(ch, nil)
		return MinMax{
			Min:    r.Min,
			Max:    r.Max,
			MinLoc: Point{X: r.MinLoc.X, Y: r.MinLoc.Y},
			MaxLoc: Point{X: r.MaxLoc.X, Y: r.MaxLoc.Y},
		}
	})
}

// CountNonZero returns the number of non-zero elements of every channel.
func (img *Image[C, D]) CountNonZero() []int {
	return forEachChannel(img, func(ch *native.Mat, _ int) int {
		return native.CountNonZero(ch)
	})
}

// Average returns the mean color of the visible region.
func (img *Image[C, D]) Average() C {
	var c C
	return c.FromScalar(native.Avg(img.hdr(), nil))
}

// AverageMasked returns the mean color of pixels selected by mask.
func (img *Image[C, D]) AverageMasked(mask *Mask) C {
	var c C
	return c.FromScalar(native.Avg(img.hdr(), maskHdr(mask)))
}

// Sum returns the per channel sum of the visible region.
func (img *Image[C, D]) Sum() C {
	var c C
	return c.FromScalar(native.Sum(img.hdr()))
}
