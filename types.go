package imgcv

import (
	"fmt"

	"github.com/vearutop/imgcv/internal/native"
)

// Scalar holds one value per channel, unused trailing channels are zero.
type Scalar = native.Scalar

// Color describes a color model: its channel count, the name used to build
// conversion codes, and how a color value maps to a per channel Scalar.
//
// Implementations are small value types, the zero value describes the model.
type Color[C any] interface {
	Channels() int
	CodeName() string
	Scalar() Scalar
	FromScalar(s Scalar) C
}

// Depth is the set of supported channel element types.
type Depth interface {
	~uint8 | ~float32
}

// DepthKind describes element storage of an image.
type DepthKind = native.Depth

// Supported depths.
const (
	Depth8U  = native.Depth8U
	Depth32F = native.Depth32F
)

// DepthOf returns the storage descriptor of D.
func DepthOf[D Depth]() DepthKind {
	return native.DepthOf[D]()
}

// Gray is a single channel intensity.
type Gray struct {
	Intensity float64
}

// Channels returns the number of channels of Gray.
func (Gray) Channels() int { return 1 }

// CodeName returns the color model name used in conversion codes.
func (Gray) CodeName() string { return native.ModelGray }

// Scalar returns the channel values in storage order.
func (c Gray) Scalar() Scalar { return Scalar{c.Intensity} }

// FromScalar builds a Gray from channel values in storage order.
func (Gray) FromScalar(s Scalar) Gray {
	return Gray{Intensity: s[0]}
}

// Bgr is a three channel color stored blue first.
type Bgr struct {
	Blue, Green, Red float64
}

// Channels returns the number of channels of Bgr.
func (Bgr) Channels() int { return 3 }

// CodeName returns the color model name used in conversion codes.
func (Bgr) CodeName() string { return native.ModelBGR }

// Scalar returns the channel values in storage order.
func (c Bgr) Scalar() Scalar { return Scalar{c.Blue, c.Green, c.Red} }

// FromScalar builds a Bgr from channel values in storage order.
func (Bgr) FromScalar(s Scalar) Bgr {
	return Bgr{Blue: s[0], Green: s[1], Red: s[2]}
}

// Bgra is Bgr with an alpha channel.
type Bgra struct {
	Blue, Green, Red, Alpha float64
}

// Channels returns the number of channels of Bgra.
func (Bgra) Channels() int { return 4 }

// CodeName returns the color model name used in conversion codes.
func (Bgra) CodeName() string { return native.ModelBGRA }

// Scalar returns the channel values in storage order.
func (c Bgra) Scalar() Scalar { return Scalar{c.Blue, c.Green, c.Red, c.Alpha} }

// FromScalar builds a Bgra from channel values in storage order.
func (Bgra) FromScalar(s Scalar) Bgra {
	return Bgra{Blue: s[0], Green: s[1], Red: s[2], Alpha: s[3]}
}

// Rgb is a three channel color stored red first.
type Rgb struct {
	Red, Green, Blue float64
}

// Channels returns the number of channels of Rgb.
func (Rgb) Channels() int { return 3 }

// CodeName returns the color model name used in conversion codes.
func (Rgb) CodeName() string { return native.ModelRGB }

// Scalar returns the channel values in storage order.
func (c Rgb) Scalar() Scalar { return Scalar{c.Red, c.Green, c.Blue} }

// FromScalar builds a Rgb from channel values in storage order.
func (Rgb) FromScalar(s Scalar) Rgb {
	return Rgb{Red: s[0], Green: s[1], Blue: s[2]}
}

// Rgba is Rgb with an alpha channel.
type Rgba struct {
	Red, Green, Blue, Alpha float64
}

// Channels returns the number of channels of Rgba.
func (Rgba) Channels() int { return 4 }

// CodeName returns the color model name used in conversion codes.
func (Rgba) CodeName() string { return native.ModelRGBA }

// Scalar returns the channel values in storage order.
func (c Rgba) Scalar() Scalar { return Scalar{c.Red, c.Green, c.Blue, c.Alpha} }

// FromScalar builds a Rgba from channel values in storage order.
func (Rgba) FromScalar(s Scalar) Rgba {
	return Rgba{Red: s[0], Green: s[1], Blue: s[2], Alpha: s[3]}
}

// Hsv is hue, saturation and value.
// For 8-bit images hue is stored halved (0..180) and saturation/value span 0..255,
// for float images hue is in degrees and saturation/value span 0..1.
type Hsv struct {
	Hue, Saturation, Value float64
}

// Channels returns the number of channels of Hsv.
func (Hsv) Channels() int { return 3 }

// CodeName returns the color model name used in conversion codes.
func (Hsv) CodeName() string { return native.ModelHSV }

// Scalar returns the channel values in storage order.
func (c Hsv) Scalar() Scalar { return Scalar{c.Hue, c.Saturation, c.Value} }

// FromScalar builds a Hsv from channel values in storage order.
func (Hsv) FromScalar(s Scalar) Hsv {
	return Hsv{Hue: s[0], Saturation: s[1], Value: s[2]}
}

// Ycc is luma with red and blue difference chroma (YCrCb).
type Ycc struct {
	Y, Cr, Cb float64
}

// Channels returns the number of channels of Ycc.
func (Ycc) Channels() int { return 3 }

// CodeName returns the color model name used in conversion codes.
func (Ycc) CodeName() string { return native.ModelYCrCb }

// Scalar returns the channel values in storage order.
func (c Ycc) Scalar() Scalar { return Scalar{c.Y, c.Cr, c.Cb} }

// FromScalar builds a Ycc from channel values in storage order.
func (Ycc) FromScalar(s Scalar) Ycc {
	return Ycc{Y: s[0], Cr: s[1], Cb: s[2]}
}

// Xyz is a CIE 1931 XYZ color (D65, linear).
type Xyz struct {
	X, Y, Z float64
}

// Channels returns the number of channels of Xyz.
func (Xyz) Channels() int { return 3 }

// CodeName returns the color model name used in conversion codes.
func (Xyz) CodeName() string { return native.ModelXYZ }

// Scalar returns the channel values in storage order.
func (c Xyz) Scalar() Scalar { return Scalar{c.X, c.Y, c.Z} }

// FromScalar builds a Xyz from channel values in storage order.
func (Xyz) FromScalar(s Scalar) Xyz {
	return Xyz{X: s[0], Y: s[1], Z: s[2]}
}

// Size is a raster size in pixels.
type Size struct {
	Width, Height int
}

// String formats s as WIDTHxHEIGHT.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Point is a pixel location, X is the column and Y the row.
type Point struct {
	X, Y int
}

// MinMax holds the extremes of one channel and their locations.
type MinMax struct {
	Min, Max       float64
	MinLoc, MaxLoc Point
}

// Interpolation selects a resampling kernel.
type Interpolation = native.Interpolation

// Resampling kernels.
const (
	InterpolationNearest  = native.InterNearest
	InterpolationLinear   = native.InterLinear
	InterpolationCubic    = native.InterCubic
	InterpolationLanczos3 = native.InterLanczos3
)

// CmpType selects a comparison operator.
type CmpType = native.CmpOp

// Comparison operators.
const (
	CmpEqual        = native.CmpEQ
	CmpGreater      = native.CmpGT
	CmpGreaterEqual = native.CmpGE
	CmpLess         = native.CmpLT
	CmpLessEqual    = native.CmpLE
	CmpNotEqual     = native.CmpNE
)

// FlipType selects the flip axis, values may be combined.
type FlipType = native.FlipMode

// Flip axes.
const (
	FlipVertical   = native.FlipVertical
	FlipHorizontal = native.FlipHorizontal
)

func channelsOf[C Color[C]]() int {
	var c C
	return c.Channels()
}

func codeNameOf[C Color[C]]() string {
	var c C
	return c.CodeName()
}
