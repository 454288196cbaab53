package imgcv

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"github.com/vearutop/imgcv/internal/native"
)

// BGR is an in-memory image whose pixels are interleaved blue, green, red bytes.
// It is the zero copy view of an Image[Bgr, uint8].
type BGR struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

var _ draw.Image = (*BGR)(nil)

// ColorModel implements image.Image.
func (p *BGR) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (p *BGR) Bounds() image.Rectangle { return p.Rect }

// PixOffset returns the index of the first element of the pixel at (x, y).
func (p *BGR) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

// At implements image.Image.
func (p *BGR) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	return color.RGBA{R: p.Pix[i+2], G: p.Pix[i+1], B: p.Pix[i], A: 0xff}
}

// Set implements draw.Image.
func (p *BGR) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	p.Pix[i], p.Pix[i+1], p.Pix[i+2] = rgba.B, rgba.G, rgba.R
}

// AsImage returns an image.Image for the visible region.
//
// For Image[Gray, uint8] and Image[Bgr, uint8] the result shares memory with
// img and must not be used after img is released or resized. Every other
// combination falls back to ToImage.
func (img *Image[C, D]) AsImage() image.Image {
	m := img.hdr()
	if m.Depth != Depth8U {
		return img.ToImage()
	}
	l := native.Resolve(m)
	w, h := m.VisibleSize()
	pix := m.Data[l.Offset:]
	switch codeNameOf[C]() {
	case native.ModelGray:
		return &image.Gray{Pix: pix, Stride: l.Stride, Rect: image.Rect(0, 0, w, h)}
	case native.ModelBGR:
		return &BGR{Pix: pix, Stride: l.Stride, Rect: image.Rect(0, 0, w, h)}
	default:
		return img.ToImage()
	}
}

// ToImage returns an independent copy of the visible region: *image.Gray for
// single channel images and *image.NRGBA otherwise. Float images are narrowed
// the same way Convert does.
func (img *Image[C, D]) ToImage() image.Image {
	w, h := img.Width(), img.Height()
	switch {
	case img.Channels() == 1:
		g := Convert[Gray, uint8](img)
		defer g.Release()
		out := image.NewGray(image.Rect(0, 0, w, h))
		v := viewOf(g)
		for y := 0; y < h; y++ {
			copy(out.Pix[y*out.Stride:], v.l.Row(v.m.Data, y))
		}
		return out
	case codeNameOf[C]() == native.ModelBGRA || codeNameOf[C]() == native.ModelRGBA:
		b := Convert[Bgra, uint8](img)
		defer b.Release()
		return toNRGBA(b.mat, 4)
	default:
		b := Convert[Bgr, uint8](img)
		defer b.Release()
		return toNRGBA(b.mat, 3)
	}
}

func toNRGBA(m *native.Mat, ch int) *image.NRGBA {
	w, h := m.VisibleSize()
	l := native.Resolve(m)
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := l.Row(m.Data, y)
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			s, d := src[x*ch:], dst[x*4:]
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 0xff
			if ch == 4 {
				d[3] = s[3]
			}
		}
	}
	return out
}

// ToImageSize returns the visible region scaled to width x height as an image.Image.
func (img *Image[C, D]) ToImageSize(width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img.ToImage(), resize.Bilinear)
}

// Thumbnail returns the visible region scaled down to fit maxWidth x maxHeight,
// keeping the aspect ratio. Smaller images are returned unscaled.
func (img *Image[C, D]) Thumbnail(maxWidth, maxHeight int) image.Image {
	return resize.Thumbnail(uint(maxWidth), uint(maxHeight), img.ToImage(), resize.Bilinear)
}

// FromImage copies src into a new image of color model C and depth D.
func FromImage[C Color[C], D Depth](src image.Image) *Image[C, D] {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if g, ok := src.(*image.Gray); ok {
		gray := New[Gray, uint8](w, h)
		v := viewOf(gray)
		for y := 0; y < h; y++ {
			off := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(v.l.Row(v.m.Data, y), g.Pix[off:off+w])
		}
		if codeNameOf[C]() == native.ModelGray && DepthOf[D]() == Depth8U {
			return any(gray).(*Image[C, D])
		}
		defer gray.Release()
		return Convert[C, D](gray)
	}

	if DepthOf[D]() == Depth32F && isDeep(src) {
		return fromDeep[C, D](src)
	}

	rgba, ok := src.(*image.NRGBA)
	if !ok {
		rgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	}
	origin := rgba.Bounds().Min

	bgra := New[Bgra, uint8](w, h)
	v := viewOf(bgra)
	for y := 0; y < h; y++ {
		s := rgba.Pix[rgba.PixOffset(origin.X, origin.Y+y):]
		d := v.l.Row(v.m.Data, y)
		for x := 0; x < w; x++ {
			d[x*4], d[x*4+1], d[x*4+2], d[x*4+3] = s[x*4+2], s[x*4+1], s[x*4], s[x*4+3]
		}
	}
	if codeNameOf[C]() == native.ModelBGRA && DepthOf[D]() == Depth8U {
		return any(bgra).(*Image[C, D])
	}
	defer bgra.Release()
	return Convert[C, D](bgra)
}

func isDeep(src image.Image) bool {
	switch src.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		return true
	}
	return false
}

// fromDeep keeps the precision of 16-bit sources, values are scaled to 0-255.
func fromDeep[C Color[C], D Depth](src image.Image) *Image[C, D] {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	bgra := New[Bgra, float32](w, h)
	v := viewOf(bgra)
	row := v.scratch()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			row[x*4] = float32(c.B) / 257
			row[x*4+1] = float32(c.G) / 257
			row[x*4+2] = float32(c.R) / 257
			row[x*4+3] = float32(c.A) / 257
		}
		v.store(y, row)
	}
	if codeNameOf[C]() == native.ModelBGRA {
		return any(bgra).(*Image[C, D])
	}
	defer bgra.Release()
	return Convert[C, D](bgra)
}
