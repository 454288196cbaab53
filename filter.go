package imgcv

import (
	"fmt"
	"math"

	"github.com/vearutop/imgcv/internal/native"
)

// Resize returns the visible region resampled to width x height.
func (img *Image[C, D]) Resize(width, height int, interp Interpolation) *Image[C, D] {
	res := New[C, D](width, height)
	native.Resize(img.hdr(), res.mat, interp)
	return res
}

// ResizeScale returns the visible region resampled by scale in both directions.
func (img *Image[C, D]) ResizeScale(scale float64, interp Interpolation) *Image[C, D] {
	if scale <= 0 {
		panic(fmt.Errorf("%w: scale %v", ErrInvalidDimensions, scale))
	}
	w := max(int(math.Round(float64(img.Width())*scale)), 1)
	h := max(int(math.Round(float64(img.Height())*scale)), 1)
	return img.Resize(w, h, interp)
}

// ResizeKeepAspect returns the visible region scaled to fit within
// width x height while preserving its aspect ratio.
func (img *Image[C, D]) ResizeKeepAspect(width, height int, interp Interpolation) *Image[C, D] {
	if width <= 0 || height <= 0 {
		panic(fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height))
	}
	w, h := fitSize(img.Width(), img.Height(), width, height)
	return img.Resize(w, h, interp)
}

func fitSize(w, h, maxW, maxH int) (int, int) {
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(int(math.Round(float64(w)*scale)), 1), max(int(math.Round(float64(h)*scale)), 1)
}

// Flip returns a mirrored copy of the visible region.
func (img *Image[C, D]) Flip(t FlipType) *Image[C, D] {
	res := img.BlankClone()
	native.Flip(img.hdr(), res.mat, t)
	return res
}

// FlipInPlace mirrors the visible region of img.
func (img *Image[C, D]) FlipInPlace(t FlipType) {
	native.Flip(img.hdr(), img.hdr(), t)
}

// Erode applies a 3x3 minimum filter iterations times.
func (img *Image[C, D]) Erode(iterations int) *Image[C, D] {
	res := img.BlankClone()
	native.Erode(img.hdr(), res.mat, iterations)
	return res
}

// ErodeInPlace is Erode applied to img itself.
func (img *Image[C, D]) ErodeInPlace(iterations int) {
	native.Erode(img.hdr(), img.hdr(), iterations)
}

// Dilate applies a 3x3 maximum filter iterations times.
func (img *Image[C, D]) Dilate(iterations int) *Image[C, D] {
	res := img.BlankClone()
	native.Dilate(img.hdr(), res.mat, iterations)
	return res
}

// DilateInPlace is Dilate applied to img itself.
func (img *Image[C, D]) DilateInPlace(iterations int) {
	native.Dilate(img.hdr(), img.hdr(), iterations)
}

// GaussianSmooth blurs the visible region with a kernelSize x kernelSize
// Gaussian, kernelSize must be odd.
func (img *Image[C, D]) GaussianSmooth(kernelSize int) *Image[C, D] {
	res := img.BlankClone()
	native.GaussianSmooth(img.hdr(), res.mat, kernelSize, 0)
	return res
}

// GaussianSmoothInPlace is GaussianSmooth applied to img itself.
func (img *Image[C, D]) GaussianSmoothInPlace(kernelSize int) {
	native.GaussianSmooth(img.hdr(), img.hdr(), kernelSize, 0)
}

// Sample returns the elements of every pixel on the line from p1 to p2,
// both inclusive, in visible region coordinates. Channels are interleaved.
func (img *Image[C, D]) Sample(p1, p2 Point) []D {
	raw := native.SampleLine(img.hdr(), native.Point{X: p1.X, Y: p1.Y}, native.Point{X: p2.X, Y: p2.Y})
	out := make([]D, len(raw)/DepthOf[D]().Size())
	copy(native.AsBytes(out), raw)
	return out
}
