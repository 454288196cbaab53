package imgcv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertSameType(t *testing.T) {
	img := NewFilled[Bgr, uint8](3, 2, Bgr{Blue: 1, Green: 2, Red: 3})
	img.SetROI(Rect{X: 1, Y: 0, Width: 2, Height: 2})

	c := Convert[Bgr, uint8](img)
	assert.Equal(t, Size{Width: 2, Height: 2}, c.Size())
	assert.True(t, img.Equal(c))

	c.SetPixel(0, 0, Bgr{})
	assert.Equal(t, Bgr{Blue: 1, Green: 2, Red: 3}, img.Pixel(0, 1))
}

func TestConvertColor(t *testing.T) {
	gray := NewFilled[Gray, uint8](2, 2, Gray{Intensity: 100})
	bgr := Convert[Bgr, uint8](gray)
	assert.Equal(t, Bgr{Blue: 100, Green: 100, Red: 100}, bgr.Pixel(1, 1))
	assert.True(t, gray.Equal(Convert[Gray, uint8](bgr)))

	blue := NewFilled[Bgr, uint8](1, 1, Bgr{Blue: 255})
	assert.Equal(t, Hsv{Hue: 120, Saturation: 255, Value: 255}, Convert[Hsv, uint8](blue).Pixel(0, 0))
	assert.Equal(t, Rgb{Blue: 255}, Convert[Rgb, uint8](blue).Pixel(0, 0))
	assert.Equal(t, Bgra{Blue: 255, Alpha: 255}, Convert[Bgra, uint8](blue).Pixel(0, 0))

	hsv := NewFilled[Hsv, float32](1, 1, Hsv{Hue: 0, Saturation: 1, Value: 1})
	rgb := Convert[Rgb, float32](hsv)
	assert.Equal(t, Rgb{Red: 1}, rgb.Pixel(0, 0))
}

func TestConvertTwoStep(t *testing.T) {
	img := NewFilled[Hsv, uint8](2, 1, Hsv{Hue: 60, Saturation: 255, Value: 255})
	ycc := Convert[Ycc, uint8](img)
	direct := Convert[Ycc, uint8](Convert[Bgr, uint8](img))
	assert.True(t, ycc.Equal(direct))

	gray := NewFilled[Gray, uint8](1, 1, Gray{Intensity: 128})
	assert.Equal(t, Ycc{Y: 128, Cr: 128, Cb: 128}, Convert[Ycc, uint8](gray).Pixel(0, 0))
}

func TestConvertDepthAutoScale(t *testing.T) {
	img := New[Gray, float32](3, 1)
	img.SetPixel(0, 0, Gray{Intensity: -1})
	img.SetPixel(0, 1, Gray{Intensity: 0})
	img.SetPixel(0, 2, Gray{Intensity: 1})

	b := Convert[Gray, uint8](img)
	// scale = 256/(max-min) = 128, shift = -min*scale = 128
	assert.Equal(t, Gray{Intensity: 0}, b.Pixel(0, 0))
	assert.Equal(t, Gray{Intensity: 128}, b.Pixel(0, 1))
	assert.Equal(t, Gray{Intensity: 255}, b.Pixel(0, 2))
}

func TestConvertDepthAutoScaleSkipsNaN(t *testing.T) {
	img := New[Gray, float32](4, 1)
	img.SetPixel(0, 1, Gray{Intensity: 10})
	img.SetPixel(0, 2, Gray{Intensity: 20})
	img.SetPixel(0, 3, Gray{Intensity: math.NaN()})

	b := Convert[Gray, uint8](img)
	// scale = 256/20 = 12.8, the NaN element saturates to 0
	assert.Equal(t, Gray{Intensity: 0}, b.Pixel(0, 0))
	assert.Equal(t, Gray{Intensity: 128}, b.Pixel(0, 1))
	assert.Equal(t, Gray{Intensity: 255}, b.Pixel(0, 2))
	assert.Equal(t, Gray{Intensity: 0}, b.Pixel(0, 3))
}

func TestConvertDepthFlat(t *testing.T) {
	img := NewFilled[Bgr, float32](2, 2, Bgr{Blue: 3, Green: 3, Red: 3})
	b := Convert[Bgr, uint8](img)
	assert.Equal(t, Bgr{Blue: 3, Green: 3, Red: 3}, b.Pixel(1, 0))

	over := NewFilled[Gray, float32](2, 1, Gray{Intensity: 300})
	assert.Equal(t, Gray{Intensity: 255}, Convert[Gray, uint8](over).Pixel(0, 0))
}

func TestConvertDepthWiden(t *testing.T) {
	img := NewFilled[Bgr, uint8](2, 2, Bgr{Blue: 7, Green: 200, Red: 255})
	f := Convert[Bgr, float32](img)
	assert.Equal(t, Bgr{Blue: 7, Green: 200, Red: 255}, f.Pixel(0, 0))

	back := Convert[Bgr, uint8](NewFilled[Bgr, float32](1, 1, Bgr{Blue: 7, Green: 200, Red: 255}))
	// min and max are taken over all channels: 7 and 255.
	assert.Equal(t, Bgr{Blue: 0, Green: 199, Red: 255}, back.Pixel(0, 0))
}

func TestConvertColorAndDepth(t *testing.T) {
	img := New[Bgr, float32](2, 1)
	img.SetPixel(0, 0, Bgr{})
	img.SetPixel(0, 1, Bgr{Blue: 1, Green: 1, Red: 1})

	gray := Convert[Gray, uint8](img)
	assert.Equal(t, Gray{Intensity: 0}, gray.Pixel(0, 0))
	assert.Equal(t, Gray{Intensity: 255}, gray.Pixel(0, 1))
}

func TestConvertScale(t *testing.T) {
	img := NewFilled[Gray, uint8](2, 2, Gray{Intensity: 100})
	f := ConvertScale[float32](img, 1.0/255, 0)
	assert.InDelta(t, 100.0/255, f.Pixel(0, 0).Intensity, 1e-6)

	neg := NewFilled[Gray, float32](1, 1, Gray{Intensity: -20})
	assert.Equal(t, Gray{Intensity: 40}, ConvertScaleAbs(neg, 2, 0).Pixel(0, 0))
	assert.Equal(t, Gray{Intensity: 0}, ConvertScale[uint8](neg, 1, 0).Pixel(0, 0))
}

func TestConversionsRegistered(t *testing.T) {
	for _, code := range []string{"BGR2GRAY", "GRAY2BGR", "BGR2HSV", "HSV2RGB", "RGB2YCrCb", "XYZ2BGR", "BGRA2RGBA", "GRAY2RGBA"} {
		require.Contains(t, Conversions(), code)
	}
	require.NotContains(t, Conversions(), "HSV2YCrCb")
}
