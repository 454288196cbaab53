package imgcv

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder.
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // Register WebP decoder.
)

// Format names accepted by Encode.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

// ErrUnknownFormat is returned for an unsupported file extension or format name.
var ErrUnknownFormat = errors.New("imgcv: unknown image format")

// LoadOptions controls Load and Decode.
type LoadOptions struct {
	// MaxPixels rejects images with more pixels, 0 disables the check.
	MaxPixels int
}

// EncodeOptions controls Save and Encode.
type EncodeOptions struct {
	// Quality is the JPEG quality (1-100).
	Quality int
	// Format overrides the format derived from the file extension in Save.
	Format string
}

// Load reads an encoded image file (PNG, JPEG, GIF, BMP, TIFF, WebP or OpenEXR) and
// converts it to color model C and depth D.
func Load[C Color[C], D Depth](path string, opts ...func(o *LoadOptions)) (*Image[C, D], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := Decode[C, D](f, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return img, nil
}

// Decode reads an encoded image from r and converts it to color model C and depth D.
func Decode[C Color[C], D Depth](r io.Reader, opts ...func(o *LoadOptions)) (*Image[C, D], error) {
	opt := LoadOptions{}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if isEXR(data) {
		return decodeEXR[C, D](data, opt.MaxPixels)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	if opt.MaxPixels > 0 && cfg.Width*cfg.Height > opt.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidDimensions, cfg.Width, cfg.Height, opt.MaxPixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	Logger().Debug("image decoded", "format", format, "size", Size{Width: cfg.Width, Height: cfg.Height}.String())
	return FromImage[C, D](src), nil
}

// Save encodes the visible region of img to path. The format is taken from
// the file extension unless EncodeOptions.Format is set.
func (img *Image[C, D]) Save(path string, opts ...func(o *EncodeOptions)) error {
	opt := EncodeOptions{}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	format := opt.Format
	if format == "" {
		var err error
		if format, err = FormatFromExt(path); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := img.Encode(f, format, opts...); err != nil {
		_ = f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes the visible region of img to w in the given format.
// Images that are not 8-bit gray or BGR are converted first.
func (img *Image[C, D]) Encode(w io.Writer, format string, opts ...func(o *EncodeOptions)) error {
	opt := EncodeOptions{Quality: 95}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	if format == FormatEXR {
		return img.EncodeEXR(w)
	}

	m := img.ToImage()
	switch format {
	case FormatPNG:
		return png.Encode(w, m)
	case FormatJPEG:
		return jpeg.Encode(w, m, &jpeg.Options{Quality: opt.Quality})
	case FormatBMP:
		return bmp.Encode(w, m)
	case FormatTIFF:
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FormatFromExt maps a file name extension to a format name.
func FormatFromExt(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".exr":
		return FormatEXR, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}
