package imgcv

import (
	"fmt"

	"github.com/vearutop/imgcv/internal/native"
)

// intermediateModel is the color model used when no direct conversion exists.
const intermediateModel = native.ModelBGR

// Convert returns src converted to color model C2 and depth D2.
//
// Depth is converted first. Narrowing float to 8-bit stretches the observed
// range of the visible region to 0..255, widening keeps values unchanged.
// Color conversion uses a direct conversion when registered and otherwise goes
// through BGR. It panics with ErrNoConversion when neither path exists.
func Convert[C2 Color[C2], D2 Depth, C Color[C], D Depth](src *Image[C, D]) *Image[C2, D2] {
	from, to := codeNameOf[C](), codeNameOf[C2]()
	sameDepth := DepthOf[D]() == DepthOf[D2]()
	res := like[C2, D2](src)

	switch {
	case from == to && sameDepth:
		native.Copy(src.hdr(), res.mat, nil)
	case from == to:
		convertDepth(src.hdr(), res.mat)
	case sameDepth:
		cvtColor(src.hdr(), res.mat, from, to)
	default:
		tmp := like[C, D2](src)
		defer tmp.Release()
		convertDepth(src.hdr(), tmp.mat)
		cvtColor(tmp.mat, res.mat, from, to)
	}
	return res
}

// ConvertScale returns src*scale + shift converted to depth D2, saturating for 8-bit.
func ConvertScale[D2 Depth, C Color[C], D Depth](src *Image[C, D], scale, shift float64) *Image[C, D2] {
	res := like[C, D2](src)
	native.ConvertScale(src.hdr(), res.mat, scale, shift)
	return res
}

// ConvertScaleAbs returns |src*scale + shift| as an 8-bit image.
func ConvertScaleAbs[C Color[C], D Depth](src *Image[C, D], scale, shift float64) *Image[C, uint8] {
	res := like[C, uint8](src)
	native.ConvertScaleAbs(src.hdr(), res.mat, scale, shift)
	return res
}

// Conversions lists the color conversion codes, such as "BGR2HSV", that
// Convert performs in a single step.
func Conversions() []string {
	return native.Conversions()
}

func convertDepth(src, dst *native.Mat) {
	if src.Depth != Depth32F || dst.Depth != Depth8U {
		native.ConvertScale(src, dst, 1, 0)
		return
	}

	lo, hi := native.Range(src)
	scale, shift := 0.0, lo
	if hi > lo {
		scale = 256 / (hi - lo)
		shift = -lo * scale
	}
	Logger().Debug("auto scaled depth conversion",
		"min", lo, "max", hi, "scale", scale, "shift", shift)
	native.ConvertScale(src, dst, scale, shift)
}

func cvtColor(src, dst *native.Mat, from, to string) {
	code := native.Code(from, to)
	if native.HasConversion(code) {
		native.CvtColor(src, dst, code)
		return
	}

	first, second := native.Code(from, intermediateModel), native.Code(intermediateModel, to)
	if !native.HasConversion(first) || !native.HasConversion(second) {
		panic(fmt.Errorf("%w: %s", ErrNoConversion, code))
	}
	w, h := src.VisibleSize()
	mid := native.MustAlloc(w, h, 3, src.Depth)
	defer mid.Release()

	Logger().Debug("two step color conversion", "code", code, "via", intermediateModel)
	native.CvtColor(src, mid, first)
	native.CvtColor(mid, dst, second)
}
