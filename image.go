package imgcv

import (
	"fmt"

	"github.com/vearutop/imgcv/internal/native"
)

// Image is a multi channel raster of color model C with elements of type D.
//
// The image exclusively owns its pixel buffer. When a region of interest is
// set, Width, Height and every bulk operation act on that region only, while
// Size, Binary and the Pixel accessors always address the full raster.
//
// Operations without an InPlace suffix never modify the receiver and return a
// new image. An Image is not safe for concurrent mutation.
type Image[C Color[C], D Depth] struct {
	mat *native.Mat
}

// Mask is a single channel 8-bit image, pixels with a non-zero value are selected.
type Mask = Image[Gray, uint8]

// New allocates a zeroed width x height image.
// It panics with ErrInvalidDimensions for non-positive sizes.
func New[C Color[C], D Depth](width, height int) *Image[C, D] {
	img, err := newImage[C, D](width, height)
	if err != nil {
		panic(err)
	}
	return img
}

// newImage is New for decoders, which report bad sizes as errors.
func newImage[C Color[C], D Depth](width, height int) (*Image[C, D], error) {
	m, err := native.Alloc(width, height, channelsOf[C](), DepthOf[D]())
	if err != nil {
		return nil, err
	}
	return &Image[C, D]{mat: m}, nil
}

// NewFilled allocates a width x height image with every pixel set to c.
func NewFilled[C Color[C], D Depth](width, height int, c C) *Image[C, D] {
	img := New[C, D](width, height)
	img.SetValue(c)
	return img
}

// Merge builds an image from single channel planes in channel order.
// The number of planes must match the channel count of C and all planes must
// have the same visible size.
func Merge[C Color[C], D Depth](planes ...*Image[Gray, D]) *Image[C, D] {
	if n := channelsOf[C](); len(planes) != n {
		panic(fmt.Errorf("%w: %d planes for %s with %d channels", ErrChannelMismatch, len(planes), codeNameOf[C](), n))
	}
	w, h := planes[0].Width(), planes[0].Height()
	for _, p := range planes[1:] {
		if p.Width() != w || p.Height() != h {
			panic(fmt.Errorf("%w: plane %dx%d vs %dx%d", ErrSizeMismatch, p.Width(), p.Height(), w, h))
		}
	}
	res := New[C, D](w, h)
	mats := make([]*native.Mat, len(planes))
	for i, p := range planes {
		mats[i] = p.hdr()
	}
	native.Merge(mats, res.mat)
	return res
}

// hdr returns the native header, it panics if the image was released.
func (img *Image[C, D]) hdr() *native.Mat {
	if img.mat == nil || img.mat.Released() {
		panic(ErrReleased)
	}
	return img.mat
}

func maskHdr(mask *Mask) *native.Mat {
	if mask == nil {
		return nil
	}
	return mask.hdr()
}

// like allocates an image of another model and depth with the visible size of img.
func like[C2 Color[C2], D2 Depth, C Color[C], D Depth](img *Image[C, D]) *Image[C2, D2] {
	return New[C2, D2](img.Width(), img.Height())
}

// Width returns the visible width, the width of the region of interest if one is set.
func (img *Image[C, D]) Width() int {
	w, _ := img.hdr().VisibleSize()
	return w
}

// Height returns the visible height, the height of the region of interest if one is set.
func (img *Image[C, D]) Height() int {
	_, h := img.hdr().VisibleSize()
	return h
}

// Size returns the size of the full raster regardless of the region of interest.
func (img *Image[C, D]) Size() Size {
	m := img.hdr()
	return Size{Width: m.Width, Height: m.Height}
}

// Stride returns the row size of the buffer in bytes, including padding.
func (img *Image[C, D]) Stride() int {
	return img.hdr().Stride
}

// Channels returns the number of channels of the color model.
func (img *Image[C, D]) Channels() int {
	return channelsOf[C]()
}

// Depth returns the element storage descriptor.
func (img *Image[C, D]) Depth() DepthKind {
	return DepthOf[D]()
}

// SetSize resamples the raster to s with bilinear interpolation. The previous
// buffer is released. A region of interest is scaled by the same factors as
// the raster.
func (img *Image[C, D]) SetSize(s Size) {
	m := img.hdr()
	dst, err := native.Alloc(s.Width, s.Height, m.Channels, m.Depth)
	if err != nil {
		panic(err)
	}

	src := m.Header()
	src.ROI = nil
	native.Resize(src, dst, native.InterLinear)

	if m.ROI != nil {
		r, _ := img.ROI()
		sx := float64(s.Width) / float64(m.Width)
		sy := float64(s.Height) / float64(m.Height)
		nr := r.Scale(sx, sy).clip(s.Width, s.Height)
		if !nr.Empty() {
			n := nr.toNative()
			dst.ROI = &n
		}
		Logger().Debug("roi rescaled", "from", r.String(), "to", nr.String())
	}

	Logger().Debug("raster reallocated",
		"from", Size{Width: m.Width, Height: m.Height}.String(), "to", s.String())
	img.mat = dst
	m.Release()
}

// Pixel returns the color at (row, col) of the full raster.
// The region of interest is not taken into account.
func (img *Image[C, D]) Pixel(row, col int) C {
	m := img.hdr()
	px := pixelElems[D](m, row, col)
	var s Scalar
	for i, v := range px {
		s[i] = float64(v)
	}
	var c C
	return c.FromScalar(s)
}

// SetPixel sets the color at (row, col) of the full raster.
// The region of interest is not taken into account. Byte values saturate.
func (img *Image[C, D]) SetPixel(row, col int, c C) {
	m := img.hdr()
	px := pixelElems[D](m, row, col)
	s := c.Scalar()
	for i := range px {
		px[i] = native.Saturate[D](s[i])
	}
}

func pixelElems[D Depth](m *native.Mat, row, col int) []D {
	if row < 0 || col < 0 || row >= m.Height || col >= m.Width {
		panic(fmt.Errorf("%w: pixel (%d, %d) outside %dx%d", ErrInvalidDimensions, row, col, m.Width, m.Height))
	}
	es := m.Depth.Size()
	off := row*m.Stride + col*m.Channels*es
	return native.Bytes[D](m.Data[off : off+m.Channels*es])
}

// Clone returns a copy of the visible region. The result has no region of interest.
func (img *Image[C, D]) Clone() *Image[C, D] {
	res := like[C, D](img)
	native.Copy(img.hdr(), res.mat, nil)
	return res
}

// CloneMasked is Clone that copies only pixels selected by mask, others are zero.
func (img *Image[C, D]) CloneMasked(mask *Mask) *Image[C, D] {
	res := like[C, D](img)
	native.Copy(img.hdr(), res.mat, maskHdr(mask))
	return res
}

// CopyTo copies the visible region into the visible region of dst.
func (img *Image[C, D]) CopyTo(dst *Image[C, D]) {
	native.Copy(img.hdr(), dst.hdr(), nil)
}

// CopyToMasked copies pixels selected by mask into dst.
func (img *Image[C, D]) CopyToMasked(dst *Image[C, D], mask *Mask) {
	native.Copy(img.hdr(), dst.hdr(), maskHdr(mask))
}

// BlankClone returns a zeroed image with the visible size of img.
func (img *Image[C, D]) BlankClone() *Image[C, D] {
	return like[C, D](img)
}

// BlankCloneColor returns an image with the visible size of img filled with c.
func (img *Image[C, D]) BlankCloneColor(c C) *Image[C, D] {
	res := like[C, D](img)
	res.SetValue(c)
	return res
}

// SetValue sets every visible pixel to c.
func (img *Image[C, D]) SetValue(c C) {
	native.Set(img.hdr(), c.Scalar(), nil)
}

// SetValueMasked sets visible pixels selected by mask to c.
func (img *Image[C, D]) SetValueMasked(c C, mask *Mask) {
	native.Set(img.hdr(), c.Scalar(), maskHdr(mask))
}

// SetZero clears every visible pixel.
func (img *Image[C, D]) SetZero() {
	native.SetZero(img.hdr())
}

// Release frees the pixel buffer. Further use of the image panics with
// ErrReleased, releasing twice is a no-op.
func (img *Image[C, D]) Release() {
	if img.mat != nil {
		img.mat.Release()
	}
}

// Released reports whether Release was called.
func (img *Image[C, D]) Released() bool {
	return img.mat == nil || img.mat.Released()
}

func (img *Image[C, D]) String() string {
	if img.Released() {
		return fmt.Sprintf("Image[%s,%s](released)", codeNameOf[C](), DepthOf[D]())
	}
	s := fmt.Sprintf("Image[%s,%s](%s", codeNameOf[C](), DepthOf[D](), img.Size())
	if r, ok := img.ROI(); ok {
		s += " roi " + r.String()
	}
	return s + ")"
}
