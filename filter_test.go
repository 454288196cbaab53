package imgcv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResize(t *testing.T) {
	img := NewFilled[Bgr, uint8](8, 6, Bgr{Blue: 40, Green: 80, Red: 120})
	for _, interp := range []Interpolation{InterpolationNearest, InterpolationLinear, InterpolationCubic, InterpolationLanczos3} {
		t.Run(interp.String(), func(t *testing.T) {
			res := img.Resize(5, 9, interp)
			assert.Equal(t, Size{Width: 5, Height: 9}, res.Size())
			assert.Equal(t, Bgr{Blue: 40, Green: 80, Red: 120}, res.Pixel(4, 2))
		})
	}

	assert.Equal(t, Size{Width: 4, Height: 3}, img.ResizeScale(0.5, InterpolationLinear).Size())
	assert.Equal(t, Size{Width: 4, Height: 3}, img.ResizeKeepAspect(4, 4, InterpolationLinear).Size())
	assert.Equal(t, Size{Width: 16, Height: 12}, img.ResizeKeepAspect(100, 12, InterpolationNearest).Size())
	assertPanicIs(t, ErrInvalidDimensions, func() { img.ResizeScale(0, InterpolationLinear) })
}

func TestResizeNearestPicksSource(t *testing.T) {
	img := ramp(4, 1)
	res := img.Resize(8, 1, InterpolationNearest)
	var got []uint8
	ForEach(res, func(v uint8) { got = append(got, v) })
	assert.Equal(t, []uint8{0, 0, 1, 1, 2, 2, 3, 3}, got)
}

func TestResizeROI(t *testing.T) {
	img := New[Gray, float32](10, 10)
	img.SetROI(Rect{X: 5, Y: 5, Width: 5, Height: 5})
	img.SetValue(Gray{Intensity: 1})

	res := img.Resize(2, 2, InterpolationLinear)
	mm := res.MinMax()
	assert.InDelta(t, 1, mm[0].Min, 1e-6)
}

func TestFlip(t *testing.T) {
	img := ramp(3, 2)
	h := img.Flip(FlipHorizontal)
	assert.Equal(t, Gray{Intensity: 2}, h.Pixel(0, 0))
	assert.Equal(t, Gray{Intensity: 3}, h.Pixel(1, 2))

	v := img.Flip(FlipVertical)
	assert.Equal(t, Gray{Intensity: 3}, v.Pixel(0, 0))

	img.FlipInPlace(FlipHorizontal | FlipVertical)
	assert.Equal(t, Gray{Intensity: 5}, img.Pixel(0, 0))
	assert.Equal(t, Gray{Intensity: 0}, img.Pixel(1, 2))
}

func TestMorphology(t *testing.T) {
	img := New[Gray, uint8](5, 5)
	img.SetPixel(2, 2, Gray{Intensity: 200})

	d := img.Dilate(1)
	assert.Equal(t, []int{9}, d.CountNonZero())
	assert.Equal(t, Gray{Intensity: 200}, d.Pixel(1, 1))

	assert.Equal(t, []int{25}, img.Dilate(2).CountNonZero())
	assert.Equal(t, []int{1}, d.Erode(1).CountNonZero())

	img.DilateInPlace(1)
	img.ErodeInPlace(1)
	assert.Equal(t, []int{1}, img.CountNonZero())
}

func TestGaussianSmooth(t *testing.T) {
	flat := NewFilled[Bgr, float32](6, 6, Bgr{Blue: 0.5, Green: 0.5, Red: 0.5})
	res := flat.GaussianSmooth(5)
	for _, mm := range res.MinMax() {
		assert.InDelta(t, 0.5, mm.Min, 1e-5)
		assert.InDelta(t, 0.5, mm.Max, 1e-5)
	}

	img := New[Gray, uint8](5, 5)
	img.SetPixel(2, 2, Gray{Intensity: 255})
	img.GaussianSmoothInPlace(3)
	center := img.Pixel(2, 2).Intensity
	assert.Less(t, center, 255.0)
	assert.Greater(t, center, img.Pixel(1, 1).Intensity)
	assert.Greater(t, img.Pixel(1, 1).Intensity, 0.0)

	require.Panics(t, func() { img.GaussianSmooth(4) })
}

func TestSample(t *testing.T) {
	img := ramp(4, 4)
	assert.Equal(t, []uint8{0, 5, 10, 15}, img.Sample(Point{X: 0, Y: 0}, Point{X: 3, Y: 3}))
	assert.Equal(t, []uint8{12, 13, 14}, img.Sample(Point{X: 0, Y: 3}, Point{X: 2, Y: 3}))

	bgr := NewFilled[Bgr, float32](3, 3, Bgr{Blue: 1, Green: 2, Red: 3})
	assert.Equal(t, []float32{1, 2, 3, 1, 2, 3}, bgr.Sample(Point{X: 1, Y: 0}, Point{X: 1, Y: 1}))
}
