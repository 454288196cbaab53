package imgcv

import (
	"fmt"

	"github.com/vearutop/imgcv/internal/native"
)

func (img *Image[C, D]) binary(b *Image[C, D], mask *Mask, fn func(a, b, dst, mask *native.Mat)) *Image[C, D] {
	res := img.BlankClone()
	fn(img.hdr(), b.hdr(), res.mat, maskHdr(mask))
	return res
}

func (img *Image[C, D]) scalar(c C, mask *Mask, fn func(a *native.Mat, s Scalar, dst, mask *native.Mat)) *Image[C, D] {
	res := img.BlankClone()
	fn(img.hdr(), c.Scalar(), res.mat, maskHdr(mask))
	return res
}

func bitwise(op native.BitOp) func(a, b, dst, mask *native.Mat) {
	return func(a, b, dst, mask *native.Mat) { native.Bitwise(a, b, dst, mask, op) }
}

func bitwiseS(op native.BitOp) func(a *native.Mat, s Scalar, dst, mask *native.Mat) {
	return func(a *native.Mat, s Scalar, dst, mask *native.Mat) { native.BitwiseS(a, s, dst, mask, op) }
}

// And returns the bitwise conjunction of img and b.
func (img *Image[C, D]) And(b *Image[C, D]) *Image[C, D] {
	return img.binary(b, nil, bitwise(native.BitAnd))
}

// AndMasked is And restricted to pixels selected by mask, others are zero.
func (img *Image[C, D]) AndMasked(b *Image[C, D], mask *Mask) *Image[C, D] {
	return img.binary(b, mask, bitwise(native.BitAnd))
}

// AndColor returns the bitwise conjunction of img and a constant color.
func (img *Image[C, D]) AndColor(c C) *Image[C, D] {
	return img.scalar(c, nil, bitwiseS(native.BitAnd))
}

// AndColorMasked is AndColor restricted to pixels selected by mask.
func (img *Image[C, D]) AndColorMasked(c C, mask *Mask) *Image[C, D] {
	return img.scalar(c, mask, bitwiseS(native.BitAnd))
}

// Or returns the bitwise disjunction of img and b.
func (img *Image[C, D]) Or(b *Image[C, D]) *Image[C, D] {
	return img.binary(b, nil, bitwise(native.BitOr))
}

// OrMasked is Or restricted to pixels selected by mask.
func (img *Image[C, D]) OrMasked(b *Image[C, D], mask *Mask) *Image[C, D] {
	return img.binary(b, mask, bitwise(native.BitOr))
}

// OrColor returns the bitwise disjunction of img and a constant color.
func (img *Image[C, D]) OrColor(c C) *Image[C, D] {
	return img.scalar(c, nil, bitwiseS(native.BitOr))
}

// OrColorMasked is OrColor restricted to pixels selected by mask.
func (img *Image[C, D]) OrColorMasked(c C, mask *Mask) *Image[C, D] {
	return img.scalar(c, mask, bitwiseS(native.BitOr))
}

// Xor returns the bitwise exclusive disjunction of img and b.
func (img *Image[C, D]) Xor(b *Image[C, D]) *Image[C, D] {
	return img.binary(b, nil, bitwise(native.BitXor))
}

// XorMasked is Xor restricted to pixels selected by mask.
func (img *Image[C, D]) XorMasked(b *Image[C, D], mask *Mask) *Image[C, D] {
	return img.binary(b, mask, bitwise(native.BitXor))
}

// XorColor returns the bitwise exclusive disjunction of img and a constant color.
func (img *Image[C, D]) XorColor(c C) *Image[C, D] {
	return img.scalar(c, nil, bitwiseS(native.BitXor))
}

// XorColorMasked is XorColor restricted to pixels selected by mask.
func (img *Image[C, D]) XorColorMasked(c C, mask *Mask) *Image[C, D] {
	return img.scalar(c, mask, bitwiseS(native.BitXor))
}

// Not returns the bitwise inversion of img. Float elements have their bits inverted.
func (img *Image[C, D]) Not() *Image[C, D] {
	res := img.BlankClone()
	native.Not(img.hdr(), res.mat)
	return res
}

// Add returns img + b, saturating for 8-bit images.
func (img *Image[C, D]) Add(b *Image[C, D]) *Image[C, D] {
	return img.binary(b, nil, native.Add)
}

// AddMasked is Add restricted to pixels selected by mask, others are zero.
func (img *Image[C, D]) AddMasked(b *Image[C, D], mask *Mask) *Image[C, D] {
	return img.binary(b, mask, native.Add)
}

// AddColor returns img + c.
func (img *Image[C, D]) AddColor(c C) *Image[C, D] {
	return img.scalar(c, nil, native.AddS)
}

// AddColorMasked is AddColor restricted to pixels selected by mask.
func (img *Image[C, D]) AddColorMasked(c C, mask *Mask) *Image[C, D] {
	return img.scalar(c, mask, native.AddS)
}

// Sub returns img - b. For 8-bit images negative results saturate to zero.
func (img *Image[C, D]) Sub(b *Image[C, D]) *Image[C, D] {
	return img.binary(b, nil, native.Sub)
}

// SubMasked is Sub restricted to pixels selected by mask.
func (img *Image[C, D]) SubMasked(b *Image[C, D], mask *Mask) *Image[C, D] {
	return img.binary(b, mask, native.Sub)
}

// SubColor returns img - c.
func (img *Image[C, D]) SubColor(c C) *Image[C, D] {
	return img.scalar(c, nil, native.SubS)
}

// SubColorMasked is SubColor restricted to pixels selected by mask.
func (img *Image[C, D]) SubColorMasked(c C, mask *Mask) *Image[C, D] {
	return img.scalar(c, mask, native.SubS)
}

// SubR returns c - img. For 8-bit images negative results saturate to zero.
func (img *Image[C, D]) SubR(c C) *Image[C, D] {
	return img.scalar(c, nil, native.SubRS)
}

// SubRMasked is SubR restricted to pixels selected by mask.
func (img *Image[C, D]) SubRMasked(c C, mask *Mask) *Image[C, D] {
	return img.scalar(c, mask, native.SubRS)
}

// Mul returns img * b * scale element wise.
func (img *Image[C, D]) Mul(b *Image[C, D], scale float64) *Image[C, D] {
	res := img.BlankClone()
	native.Mul(img.hdr(), b.hdr(), res.mat, scale)
	return res
}

// MulScalar returns img * s.
func (img *Image[C, D]) MulScalar(s float64) *Image[C, D] {
	res := img.BlankClone()
	native.ConvertScale(img.hdr(), res.mat, s, 0)
	return res
}

// Div returns img * scale / b element wise. Division by zero yields zero.
func (img *Image[C, D]) Div(b *Image[C, D], scale float64) *Image[C, D] {
	res := img.BlankClone()
	native.Div(img.hdr(), b.hdr(), res.mat, scale)
	return res
}

// DivScalar returns img / s. It panics if s is zero.
func (img *Image[C, D]) DivScalar(s float64) *Image[C, D] {
	if s == 0 {
		panic(fmt.Errorf("%w: division by zero", ErrInvalidDimensions))
	}
	return img.MulScalar(1 / s)
}

// AbsDiff returns |img - b|.
func (img *Image[C, D]) AbsDiff(b *Image[C, D]) *Image[C, D] {
	res := img.BlankClone()
	native.AbsDiff(img.hdr(), b.hdr(), res.mat)
	return res
}

// AbsDiffColor returns |img - c|.
func (img *Image[C, D]) AbsDiffColor(c C) *Image[C, D] {
	return img.scalar(c, nil, func(a *native.Mat, s Scalar, dst, _ *native.Mat) {
		native.ApplyScalar(a, s, dst, nil, func(x, y float64) float64 {
			if x > y {
				return x - y
			}
			return y - x
		})
	})
}

// Max returns the element wise maximum of img and b.
func (img *Image[C, D]) Max(b *Image[C, D]) *Image[C, D] {
	res := img.BlankClone()
	native.Max(img.hdr(), b.hdr(), res.mat)
	return res
}

// MaxValue returns the element wise maximum of img and v.
func (img *Image[C, D]) MaxValue(v float64) *Image[C, D] {
	res := img.BlankClone()
	native.MaxS(img.hdr(), Scalar{v, v, v, v}, res.mat)
	return res
}

// Min returns the element wise minimum of img and b.
func (img *Image[C, D]) Min(b *Image[C, D]) *Image[C, D] {
	res := img.BlankClone()
	native.Min(img.hdr(), b.hdr(), res.mat)
	return res
}

// MinValue returns the element wise minimum of img and v.
func (img *Image[C, D]) MinValue(v float64) *Image[C, D] {
	res := img.BlankClone()
	native.MinS(img.hdr(), Scalar{v, v, v, v}, res.mat)
	return res
}

// AddWeighted returns img*alpha + b*beta + gamma.
func (img *Image[C, D]) AddWeighted(b *Image[C, D], alpha, beta, gamma float64) *Image[C, D] {
	res := img.BlankClone()
	native.AddWeighted(img.hdr(), alpha, b.hdr(), beta, gamma, res.mat)
	return res
}

// Pow raises every element to power p.
func (img *Image[C, D]) Pow(p float64) *Image[C, D] {
	res := img.BlankClone()
	native.Pow(img.hdr(), res.mat, p)
	return res
}

// Exp returns e raised to every element.
func (img *Image[C, D]) Exp() *Image[C, D] {
	res := img.BlankClone()
	native.Exp(img.hdr(), res.mat)
	return res
}

// Log returns the natural logarithm of the absolute value of every element.
// Zero elements stay zero.
func (img *Image[C, D]) Log() *Image[C, D] {
	res := img.BlankClone()
	native.Log(img.hdr(), res.mat)
	return res
}

// RunningAvg updates img, which must have float depth, with
// img = img*(1-alpha) + src*alpha for pixels selected by mask (nil selects all).
func (img *Image[C, D]) RunningAvg(src *Image[C, D], alpha float64, mask *Mask) {
	native.RunningAvg(src.hdr(), img.hdr(), alpha, maskHdr(mask))
}
