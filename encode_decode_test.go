package imgcv

import (
	"bytes"
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeLossless(t *testing.T) {
	img := noisy[Bgr, uint8](12, 7)

	for _, format := range []string{FormatPNG, FormatBMP, FormatTIFF} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, img.Encode(&buf, format))

			res, err := Decode[Bgr, uint8](&buf)
			require.NoError(t, err)
			assert.True(t, img.Equal(res))
		})
	}
}

func TestEncodeJPEG(t *testing.T) {
	img := NewFilled[Gray, uint8](16, 8, Gray{Intensity: 128})

	var buf bytes.Buffer
	require.NoError(t, img.Encode(&buf, FormatJPEG, func(o *EncodeOptions) { o.Quality = 90 }))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)

	res, err := Decode[Gray, uint8](&buf)
	require.NoError(t, err)
	assert.InDelta(t, 128, res.Average().Intensity, 2)
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorIs(t, New[Gray, uint8](1, 1).Encode(&buf, "xcf"), ErrUnknownFormat)
}

func TestDecodeLimits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New[Gray, uint8](20, 20).Encode(&buf, FormatPNG))

	_, err := Decode[Gray, uint8](bytes.NewReader(buf.Bytes()), func(o *LoadOptions) { o.MaxPixels = 100 })
	require.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = Decode[Gray, uint8](bytes.NewReader([]byte("garbage")))
	require.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	img := NewFilled[Bgra, uint8](5, 5, Bgra{Blue: 10, Green: 20, Red: 30, Alpha: 200})
	img.SetROI(Rect{X: 1, Y: 1, Width: 3, Height: 2})

	p := filepath.Join(dir, "out.png")
	require.NoError(t, img.Save(p))

	res, err := Load[Bgra, uint8](p)
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 3, Height: 2}, res.Size())
	assert.Equal(t, Bgra{Blue: 10, Green: 20, Red: 30, Alpha: 200}, res.Pixel(1, 2))

	hsv, err := Load[Hsv, float32](p)
	require.NoError(t, err)
	assert.Equal(t, 3, hsv.Channels())

	require.ErrorIs(t, img.Save(filepath.Join(dir, "out.xyz")), ErrUnknownFormat)
	require.NoError(t, img.Save(filepath.Join(dir, "noext"), func(o *EncodeOptions) { o.Format = FormatBMP }))

	_, err = Load[Gray, uint8](filepath.Join(dir, "missing.png"))
	require.Error(t, err)
}

func TestFormatFromExt(t *testing.T) {
	for path, want := range map[string]string{
		"a.PNG":  FormatPNG,
		"b.jpg":  FormatJPEG,
		"c.jpeg": FormatJPEG,
		"d.bmp":  FormatBMP,
		"e.tif":  FormatTIFF,
		"f.tiff": FormatTIFF,
	} {
		got, err := FormatFromExt(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromExt("g.gif")
	require.ErrorIs(t, err, ErrUnknownFormat)
}
