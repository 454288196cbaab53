package imgcv

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsImageSharesGray(t *testing.T) {
	img := ramp(6, 4)
	img.SetROI(Rect{X: 1, Y: 1, Width: 3, Height: 2})

	g, ok := img.AsImage().(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 3, 2), g.Bounds())
	assert.Equal(t, uint8(7), g.GrayAt(0, 0).Y)

	g.SetGray(2, 1, color.Gray{Y: 99})
	assert.Equal(t, Gray{Intensity: 99}, img.Pixel(2, 3))
}

func TestAsImageSharesBGR(t *testing.T) {
	img := NewFilled[Bgr, uint8](3, 2, Bgr{Blue: 1, Green: 2, Red: 3})

	b, ok := img.AsImage().(*BGR)
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 3, G: 2, B: 1, A: 255}, b.At(2, 1))
	assert.Equal(t, color.RGBA{}, b.At(3, 0))

	b.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	assert.Equal(t, Bgr{Blue: 30, Green: 20, Red: 10}, img.Pixel(0, 0))
}

func TestAsImageCopies(t *testing.T) {
	img := NewFilled[Rgb, uint8](2, 2, Rgb{Red: 10, Green: 20, Blue: 30})
	n, ok := img.AsImage().(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, n.NRGBAAt(1, 1))

	n.SetNRGBA(0, 0, color.NRGBA{})
	assert.Equal(t, Rgb{Red: 10, Green: 20, Blue: 30}, img.Pixel(0, 0))
}

func TestToImage(t *testing.T) {
	bgra := NewFilled[Bgra, uint8](2, 1, Bgra{Blue: 1, Green: 2, Red: 3, Alpha: 128})
	n, ok := bgra.ToImage().(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 3, G: 2, B: 1, A: 128}, n.NRGBAAt(0, 0))

	f := New[Gray, float32](2, 1)
	f.SetPixel(0, 1, Gray{Intensity: 0.5})
	g, ok := f.ToImage().(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, []uint8{0, 255}, g.Pix)
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 5, 5))
	src.SetNRGBA(2, 3, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	src.SetNRGBA(4, 4, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	bgr := FromImage[Bgr, uint8](src)
	assert.Equal(t, Size{Width: 3, Height: 2}, bgr.Size())
	assert.Equal(t, Bgr{Blue: 50, Green: 100, Red: 200}, bgr.Pixel(0, 0))
	assert.Equal(t, Bgr{Blue: 3, Green: 2, Red: 1}, bgr.Pixel(1, 2))

	rgba := FromImage[Rgba, uint8](src)
	assert.Equal(t, Rgba{Red: 200, Green: 100, Blue: 50, Alpha: 255}, rgba.Pixel(0, 0))

	gray := image.NewGray(image.Rect(0, 0, 3, 1))
	gray.Pix = []uint8{0, 128, 255}
	g := FromImage[Gray, uint8](gray)
	assert.Equal(t, Gray{Intensity: 128}, g.Pixel(0, 1))

	f := FromImage[Gray, float32](gray)
	assert.Equal(t, Gray{Intensity: 255}, f.Pixel(0, 2))
}

func TestThumbnail(t *testing.T) {
	img := NewFilled[Bgr, uint8](40, 20, Bgr{Red: 255})
	th := img.Thumbnail(10, 10)
	assert.Equal(t, image.Rect(0, 0, 10, 5), th.Bounds())

	sized := img.ToImageSize(8, 8)
	assert.Equal(t, image.Rect(0, 0, 8, 8), sized.Bounds())
	r, _, _, _ := sized.At(4, 4).RGBA()
	assert.InDelta(t, 0xffff, r, 0x200)
}

func TestFromImageDeep(t *testing.T) {
	src := image.NewGray16(image.Rect(0, 0, 2, 1))
	src.SetGray16(1, 0, color.Gray16{Y: 0x8000})

	f := FromImage[Gray, float32](src)
	assert.InDelta(t, float64(0x8000)/257, f.Pixel(0, 1).Intensity, 1e-3)

	rgba := image.NewRGBA64(image.Rect(0, 0, 1, 1))
	rgba.SetRGBA64(0, 0, color.RGBA64{R: 0xffff, G: 0x0101, B: 0, A: 0xffff})
	bgr := FromImage[Bgr, float32](rgba)
	assert.Equal(t, Bgr{Blue: 0, Green: 1, Red: 255}, bgr.Pixel(0, 0))

	b := FromImage[Bgr, uint8](rgba)
	assert.Equal(t, Bgr{Blue: 0, Green: 1, Red: 255}, b.Pixel(0, 0))
}
