package imgcv

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(w, h int) *Image[Gray, uint8] {
	img := New[Gray, uint8](w, h)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			img.SetPixel(row, col, Gray{Intensity: float64(row*w + col)})
		}
	}
	return img
}

func TestMap(t *testing.T) {
	img := ramp(8, 6)
	res := Map(img, func(v uint8) float32 { return float32(v) / 2 })
	assert.Equal(t, Depth32F, res.Depth())
	assert.Equal(t, Gray{Intensity: 23.5}, res.Pixel(5, 7))

	img.SetROI(Rect{X: 2, Y: 3, Width: 4, Height: 2})
	sub := Map(img, func(v uint8) uint8 { return v + 1 })
	assert.Equal(t, Size{Width: 4, Height: 2}, sub.Size())
	assert.Equal(t, Gray{Intensity: 27}, sub.Pixel(0, 0))
	assert.Equal(t, Gray{Intensity: 38}, sub.Pixel(1, 3))
}

func TestMapXY(t *testing.T) {
	img := New[Bgr, uint8](5, 4)
	img.SetROI(Rect{X: 1, Y: 1, Width: 3, Height: 2})
	res := MapXY(img, func(_ uint8, row, col int) uint8 { return uint8(row*10 + col) })
	assert.Equal(t, Bgr{Blue: 12, Green: 12, Red: 12}, res.Pixel(1, 2))
	assert.Equal(t, Bgr{}, res.Pixel(0, 0))
}

func TestMapN(t *testing.T) {
	a := NewFilled[Bgr, uint8](3, 3, Bgr{Blue: 1, Green: 2, Red: 3})
	b := NewFilled[Bgr, float32](3, 3, Bgr{Blue: 0.5, Green: 0.5, Red: 0.5})
	c := NewFilled[Bgr, uint8](3, 3, Bgr{Blue: 10, Green: 10, Red: 10})
	d := NewFilled[Bgr, float32](3, 3, Bgr{Blue: 2, Green: 2, Red: 2})

	m2 := Map2(a, b, func(v uint8, w float32) float32 { return float32(v) * w })
	assert.Equal(t, Bgr{Blue: 0.5, Green: 1, Red: 1.5}, m2.Pixel(2, 2))

	m3 := Map3(a, b, c, func(u uint8, v float32, w uint8) uint8 { return u + w })
	assert.Equal(t, Bgr{Blue: 11, Green: 12, Red: 13}, m3.Pixel(0, 0))

	m4 := Map4(a, b, c, d, func(s uint8, u float32, v uint8, w float32) float32 {
		return float32(s) + u + float32(v)*w
	})
	assert.Equal(t, Bgr{Blue: 21.5, Green: 22.5, Red: 23.5}, m4.Pixel(1, 1))

	assertPanicIs(t, ErrSizeMismatch, func() {
		Map2(a, New[Bgr, uint8](2, 3), func(v, w uint8) uint8 { return v })
	})
}

func TestForEach(t *testing.T) {
	img := ramp(4, 4)
	img.SetROI(Rect{X: 1, Y: 1, Width: 2, Height: 2})

	var seen []uint8
	ForEach(img, func(v uint8) { seen = append(seen, v) })
	assert.Equal(t, []uint8{5, 6, 9, 10}, seen)

	other := NewFilled[Gray, float32](2, 2, Gray{Intensity: 1})
	var sum float32
	ForEach2(img, other, func(v uint8, w float32) { sum += float32(v) * w })
	assert.Equal(t, float32(30), sum)
}

func TestSetMaxWorkers(t *testing.T) {
	SetMaxWorkers(1)
	defer SetMaxWorkers(0)

	var calls atomic.Int64
	res := Map(ramp(16, 64), func(v uint8) uint8 {
		calls.Add(1)
		return 255 - v
	})
	require.Equal(t, int64(16*64), calls.Load())
	assert.Equal(t, Gray{Intensity: 255}, res.Pixel(0, 0))
}

func TestMapPanicPropagates(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		Map(ramp(4, 32), func(v uint8) uint8 {
			if v == 77 {
				panic("boom")
			}
			return v
		})
	})
}
