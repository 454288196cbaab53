package imgcv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vearutop/imgcv/internal/native"
)

func TestSplitMerge(t *testing.T) {
	img := New[Bgr, uint8](4, 3)
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			img.SetPixel(row, col, Bgr{Blue: float64(row), Green: float64(col), Red: float64(row + col)})
		}
	}

	planes := img.Split()
	require.Len(t, planes, 3)
	assert.Equal(t, Gray{Intensity: 2}, planes[0].Pixel(2, 1))
	assert.Equal(t, Gray{Intensity: 1}, planes[1].Pixel(2, 1))
	assert.Equal(t, Gray{Intensity: 3}, planes[2].Pixel(2, 1))

	merged := Merge[Bgr, uint8](planes...)
	assert.True(t, img.Equal(merged))

	assertPanicIs(t, ErrChannelMismatch, func() { Merge[Bgr, uint8](planes[:2]...) })
}

func TestSplitROI(t *testing.T) {
	img := NewFilled[Bgra, float32](6, 6, Bgra{Blue: 1, Green: 2, Red: 3, Alpha: 4})
	img.SetROI(Rect{X: 1, Y: 2, Width: 3, Height: 2})

	planes := img.Split()
	require.Len(t, planes, 4)
	for i, p := range planes {
		assert.Equal(t, Size{Width: 3, Height: 2}, p.Size())
		assert.Equal(t, Gray{Intensity: float64(i + 1)}, p.Pixel(1, 2))
	}
}

func TestChannel(t *testing.T) {
	img := NewFilled[Rgb, uint8](2, 2, Rgb{Red: 10, Green: 20, Blue: 30})
	g := img.Channel(1)
	assert.Equal(t, Gray{Intensity: 20}, g.Pixel(1, 1))

	g.SetValue(Gray{Intensity: 99})
	img.SetChannel(2, g)
	assert.Equal(t, Rgb{Red: 10, Green: 20, Blue: 99}, img.Pixel(0, 1))

	assertPanicIs(t, ErrChannelMismatch, func() { img.Channel(3) })
	assert.Zero(t, img.mat.COI)
}

func TestForEachChannelPanicClearsCOI(t *testing.T) {
	errOp := errors.New("op failed")
	img := NewFilled[Bgr, uint8](4, 4, Bgr{Blue: 1, Green: 2, Red: 3})

	var seen []int
	assertPanicIs(t, errOp, func() {
		forEachChannel(img, func(ch *native.Mat, i int) int {
			seen = append(seen, i)
			assert.Equal(t, i+1, img.mat.COI)
			if i == 1 {
				panic(errOp)
			}
			return i
		})
	})
	assert.Equal(t, []int{0, 1}, seen)
	assert.Zero(t, img.mat.COI)

	// The image stays usable by whole-image operations.
	assert.Equal(t, Bgr{Blue: 1, Green: 2, Red: 3}, img.Average())
}

func TestForEachChannelToPanicClearsCOI(t *testing.T) {
	errOp := errors.New("op failed")
	src := NewFilled[Bgr, uint8](3, 2, Bgr{Blue: 1, Green: 2, Red: 3})
	dst := New[Bgr, float32](3, 2)

	assertPanicIs(t, errOp, func() {
		forEachChannelTo(src, dst, func(s, d *native.Mat, i int) {
			assert.Equal(t, i+1, src.mat.COI)
			assert.Equal(t, i+1, dst.mat.COI)
			native.ConvertScale(s, d, 1, 0)
			if i == 2 {
				panic(errOp)
			}
		})
	})
	assert.Zero(t, src.mat.COI)
	assert.Zero(t, dst.mat.COI)

	// Channels finished before the panic were written back.
	assert.Equal(t, Bgr{Blue: 1, Green: 2}, dst.Pixel(1, 2))
}

func TestMinMax(t *testing.T) {
	img := New[Bgr, float32](5, 4)
	img.SetPixel(1, 2, Bgr{Blue: -3, Green: 7, Red: 0.5})
	img.SetPixel(3, 4, Bgr{Blue: 2, Green: -1, Red: 0.25})

	mm := img.MinMax()
	require.Len(t, mm, 3)
	assert.Equal(t, MinMax{Min: -3, Max: 2, MinLoc: Point{X: 2, Y: 1}, MaxLoc: Point{X: 4, Y: 3}}, mm[0])
	assert.Equal(t, MinMax{Min: -1, Max: 7, MinLoc: Point{X: 4, Y: 3}, MaxLoc: Point{X: 2, Y: 1}}, mm[1])
	assert.Equal(t, 0.5, mm[2].Max)

	img.SetROI(Rect{X: 2, Y: 1, Width: 3, Height: 3})
	mm = img.MinMax()
	assert.Equal(t, Point{X: 0, Y: 0}, mm[0].MinLoc)
	assert.Equal(t, Point{X: 2, Y: 2}, mm[0].MaxLoc)
}

func TestStats(t *testing.T) {
	img := NewFilled[Bgr, uint8](2, 2, Bgr{Blue: 10, Green: 20, Red: 30})
	img.SetPixel(0, 0, Bgr{Blue: 50, Green: 20, Red: 0})

	assert.Equal(t, Bgr{Blue: 80, Green: 80, Red: 90}, img.Sum())
	assert.Equal(t, Bgr{Blue: 20, Green: 20, Red: 22.5}, img.Average())
	assert.Equal(t, []int{4, 4, 3}, img.CountNonZero())

	mask := New[Gray, uint8](2, 2)
	mask.SetPixel(0, 0, Gray{Intensity: 255})
	assert.Equal(t, Bgr{Blue: 50, Green: 20, Red: 0}, img.AverageMasked(mask))
}
