package imgcv

import (
	"fmt"

	"github.com/vearutop/imgcv/internal/native"
)

// Cmp compares img with b channel by channel. A result element is 255 where
// the comparison holds and 0 elsewhere.
func (img *Image[C, D]) Cmp(b *Image[C, D], op CmpType) *Image[C, uint8] {
	if img.Width() != b.Width() || img.Height() != b.Height() {
		panic(fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, img.Width(), img.Height(), b.Width(), b.Height()))
	}
	res := like[C, uint8](img)

	var scratch *native.Mat
	if b.Channels() > 1 {
		scratch = native.MustAlloc(b.Width(), b.Height(), 1, b.Depth())
		defer scratch.Release()
	}
	forEachChannelTo(img, res, func(s, d *native.Mat, i int) {
		other := b.hdr()
		if scratch != nil {
			release := b.selectChannel(i)
			defer release()
			native.Copy(other, scratch, nil)
			other = scratch
		}
		native.Cmp(s, other, d, op)
	})
	return res
}

// CmpScalar compares every element of img with v.
func (img *Image[C, D]) CmpScalar(v float64, op CmpType) *Image[C, uint8] {
	res := like[C, uint8](img)
	forEachChannelTo(img, res, func(s, d *native.Mat, _ int) {
		native.CmpS(s, v, d, op)
	})
	return res
}

// Equal reports whether img and b have the same visible size and identical pixels.
func (img *Image[C, D]) Equal(b *Image[C, D]) bool {
	if img.Width() != b.Width() || img.Height() != b.Height() {
		return false
	}
	ne := img.Cmp(b, CmpNotEqual)
	defer ne.Release()

	total := 0
	for _, n := range ne.CountNonZero() {
		total += n
	}
	return total == 0
}

// InRange returns a mask selecting pixels where every channel c satisfies
// lo[c] <= v < hi[c].
func (img *Image[C, D]) InRange(lo, hi C) *Mask {
	res := like[Gray, uint8](img)
	native.InRange(img.hdr(), lo.Scalar(), hi.Scalar(), res.mat)
	return res
}

func (img *Image[C, D]) threshold(dst *Image[C, D], thresh, maxValue C, t native.ThresholdType) {
	ts, ms := thresh.Scalar(), maxValue.Scalar()
	forEachChannelTo(img, dst, func(s, d *native.Mat, i int) {
		level := native.Threshold(s, d, ts[i], ms[i], t)
		if t == native.ThreshOtsu {
			Logger().Debug("otsu threshold", "channel", i, "level", level)
		}
	})
}

func (img *Image[C, D]) thresholdNew(thresh, maxValue C, t native.ThresholdType) *Image[C, D] {
	res := img.BlankClone()
	img.threshold(res, thresh, maxValue, t)
	return res
}

// ThresholdBinary sets elements above thresh to maxValue and the rest to zero.
// Thresholds are applied per channel.
func (img *Image[C, D]) ThresholdBinary(thresh, maxValue C) *Image[C, D] {
	return img.thresholdNew(thresh, maxValue, native.ThreshBinary)
}

// ThresholdBinaryInv sets elements above thresh to zero and the rest to maxValue.
func (img *Image[C, D]) ThresholdBinaryInv(thresh, maxValue C) *Image[C, D] {
	return img.thresholdNew(thresh, maxValue, native.ThreshBinaryInv)
}

// ThresholdTrunc caps elements at thresh.
func (img *Image[C, D]) ThresholdTrunc(thresh C) *Image[C, D] {
	return img.thresholdNew(thresh, thresh, native.ThreshTrunc)
}

// ThresholdToZero zeroes elements not above thresh.
func (img *Image[C, D]) ThresholdToZero(thresh C) *Image[C, D] {
	return img.thresholdNew(thresh, thresh, native.ThreshToZero)
}

// ThresholdToZeroInv zeroes elements above thresh.
func (img *Image[C, D]) ThresholdToZeroInv(thresh C) *Image[C, D] {
	return img.thresholdNew(thresh, thresh, native.ThreshToZeroInv)
}

// ThresholdOtsu binarizes every channel with a level picked by Otsu's method.
// It requires an 8-bit image.
func (img *Image[C, D]) ThresholdOtsu(maxValue C) *Image[C, D] {
	var zero C
	return img.thresholdNew(zero, maxValue, native.ThreshOtsu)
}

// ThresholdBinaryInPlace is ThresholdBinary applied to img itself.
func (img *Image[C, D]) ThresholdBinaryInPlace(thresh, maxValue C) {
	img.threshold(img, thresh, maxValue, native.ThreshBinary)
}

// ThresholdBinaryInvInPlace is ThresholdBinaryInv applied to img itself.
func (img *Image[C, D]) ThresholdBinaryInvInPlace(thresh, maxValue C) {
	img.threshold(img, thresh, maxValue, native.ThreshBinaryInv)
}

// ThresholdTruncInPlace is ThresholdTrunc applied to img itself.
func (img *Image[C, D]) ThresholdTruncInPlace(thresh C) {
	img.threshold(img, thresh, thresh, native.ThreshTrunc)
}

// ThresholdToZeroInPlace is ThresholdToZero applied to img itself.
func (img *Image[C, D]) ThresholdToZeroInPlace(thresh C) {
	img.threshold(img, thresh, thresh, native.ThreshToZero)
}

// ThresholdToZeroInvInPlace is ThresholdToZeroInv applied to img itself.
func (img *Image[C, D]) ThresholdToZeroInvInPlace(thresh C) {
	img.threshold(img, thresh, thresh, native.ThreshToZeroInv)
}

// ThresholdOtsuInPlace is ThresholdOtsu applied to img itself.
func (img *Image[C, D]) ThresholdOtsuInPlace(maxValue C) {
	var zero C
	img.threshold(img, zero, maxValue, native.ThreshOtsu)
}
