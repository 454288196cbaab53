package native

import (
	"fmt"
	"math"
)

// BinaryFunc combines two elements promoted to float64.
type BinaryFunc func(a, b float64) float64

// UnaryFunc transforms one element promoted to float64.
type UnaryFunc func(v float64) float64

func maskRow(mask *Mat, l Layout, y int) []byte {
	if mask == nil {
		return nil
	}
	return l.Row(mask.Data, y)
}

func resolveMask(mask *Mat) Layout {
	if mask == nil {
		return Layout{}
	}
	return Resolve(mask)
}

func zip2[T Elem](a, b, dst, mask *Mat, op BinaryFunc) {
	la, lb, ld, lm := Resolve(a), Resolve(b), Resolve(dst), resolveMask(mask)
	ch := dst.Channels
	ParallelFor(ld.Rows, func(start, end int) {
		for y := start; y < end; y++ {
			ra, rb, rd := Row[T](a, la, y), Row[T](b, lb, y), Row[T](dst, ld, y)
			rm := maskRow(mask, lm, y)
			for i := range rd {
				if rm != nil && rm[i/ch] == 0 {
					continue
				}
				rd[i] = saturate[T](op(float64(ra[i]), float64(rb[i])))
			}
		}
	})
}

func zipScalar[T Elem](a *Mat, s Scalar, dst, mask *Mat, op BinaryFunc) {
	la, ld, lm := Resolve(a), Resolve(dst), resolveMask(mask)
	ch := dst.Channels
	ParallelFor(ld.Rows, func(start, end int) {
		for y := start; y < end; y++ {
			ra, rd := Row[T](a, la, y), Row[T](dst, ld, y)
			rm := maskRow(mask, lm, y)
			for i := range rd {
				if rm != nil && rm[i/ch] == 0 {
					continue
				}
				rd[i] = saturate[T](op(float64(ra[i]), s[i%ch]))
			}
		}
	})
}

func unary[T Elem](a, dst *Mat, op UnaryFunc) {
	la, ld := Resolve(a), Resolve(dst)
	ParallelFor(ld.Rows, func(start, end int) {
		for y := start; y < end; y++ {
			ra, rd := Row[T](a, la, y), Row[T](dst, ld, y)
			for i := range rd {
				rd[i] = saturate[T](op(float64(ra[i])))
			}
		}
	})
}

// Apply2 computes dst = op(a, b) per element, saturating for byte depth.
// Elements where the optional mask is zero are left untouched.
func Apply2(a, b, dst, mask *Mat, op BinaryFunc) {
	sameLayout(a, b, dst)
	checkMask(mask, dst)
	switch dst.Depth {
	case Depth8U:
		zip2[uint8](a, b, dst, mask, op)
	case Depth32F:
		zip2[float32](a, b, dst, mask, op)
	default:
		panic(ErrUnsupportedDepth)
	}
}

// ApplyScalar computes dst = op(a, s[c]) per element of channel c.
func ApplyScalar(a *Mat, s Scalar, dst, mask *Mat, op BinaryFunc) {
	sameLayout(a, dst)
	checkMask(mask, dst)
	switch dst.Depth {
	case Depth8U:
		zipScalar[uint8](a, s, dst, mask, op)
	case Depth32F:
		zipScalar[float32](a, s, dst, mask, op)
	default:
		panic(ErrUnsupportedDepth)
	}
}

// Apply computes dst = op(a) per element.
func Apply(a, dst *Mat, op UnaryFunc) {
	sameLayout(a, dst)
	switch dst.Depth {
	case Depth8U:
		unary[uint8](a, dst, op)
	case Depth32F:
		unary[float32](a, dst, op)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func add(a, b float64) float64 { return a + b }

func sub(a, b float64) float64 { return a - b }

func subR(a, b float64) float64 { return b - a }

// Add computes dst = a + b.
func Add(a, b, dst, mask *Mat) { Apply2(a, b, dst, mask, add) }

// Sub computes dst = a - b.
func Sub(a, b, dst, mask *Mat) { Apply2(a, b, dst, mask, sub) }

// AddS computes dst = a + s.
func AddS(a *Mat, s Scalar, dst, mask *Mat) { ApplyScalar(a, s, dst, mask, add) }

// SubS computes dst = a - s.
func SubS(a *Mat, s Scalar, dst, mask *Mat) { ApplyScalar(a, s, dst, mask, sub) }

// SubRS computes dst = s - a.
func SubRS(a *Mat, s Scalar, dst, mask *Mat) { ApplyScalar(a, s, dst, mask, subR) }

// Mul computes dst = a * b * scale.
func Mul(a, b, dst *Mat, scale float64) {
	Apply2(a, b, dst, nil, func(x, y float64) float64 { return x * y * scale })
}

// Div computes dst = a * scale / b, with zero where b is zero.
func Div(a, b, dst *Mat, scale float64) {
	Apply2(a, b, dst, nil, func(x, y float64) float64 {
		if y == 0 {
			return 0
		}
		return x * scale / y
	})
}

// AbsDiff computes dst = |a - b|.
func AbsDiff(a, b, dst *Mat) {
	Apply2(a, b, dst, nil, func(x, y float64) float64 { return math.Abs(x - y) })
}

// Max computes the per element maximum.
func Max(a, b, dst *Mat) { Apply2(a, b, dst, nil, math.Max) }

// Min computes the per element minimum.
func Min(a, b, dst *Mat) { Apply2(a, b, dst, nil, math.Min) }

// MaxS computes the per element maximum with a scalar.
func MaxS(a *Mat, s Scalar, dst *Mat) { ApplyScalar(a, s, dst, nil, math.Max) }

// MinS computes the per element minimum with a scalar.
func MinS(a *Mat, s Scalar, dst *Mat) { ApplyScalar(a, s, dst, nil, math.Min) }

// AddWeighted computes dst = a*alpha + b*beta + gamma.
func AddWeighted(a *Mat, alpha float64, b *Mat, beta, gamma float64, dst *Mat) {
	Apply2(a, b, dst, nil, func(x, y float64) float64 { return x*alpha + y*beta + gamma })
}

// Pow raises every element to power p.
func Pow(a, dst *Mat, p float64) {
	Apply(a, dst, func(v float64) float64 { return math.Pow(v, p) })
}

// Exp computes e raised to every element.
func Exp(a, dst *Mat) { Apply(a, dst, math.Exp) }

// Log computes the natural logarithm of |v| for every element, zero maps to zero.
func Log(a, dst *Mat) {
	Apply(a, dst, func(v float64) float64 {
		if v == 0 {
			return 0
		}
		return math.Log(math.Abs(v))
	})
}

// RunningAvg updates acc = acc*(1-alpha) + src*alpha where mask is set.
// acc must be of float depth.
func RunningAvg(src, acc *Mat, alpha float64, mask *Mat) {
	sameSize(src, acc)
	src.mustNoCOI()
	acc.mustNoCOI()
	checkMask(mask, acc)
	if src.Channels != acc.Channels {
		panic(fmt.Errorf("%w: %d vs %d", ErrChannelMismatch, src.Channels, acc.Channels))
	}
	if acc.Depth != Depth32F {
		panic(fmt.Errorf("%w: accumulator must be 32F", ErrUnsupportedDepth))
	}
	switch src.Depth {
	case Depth8U:
		runningAvg[uint8](src, acc, alpha, mask)
	case Depth32F:
		runningAvg[float32](src, acc, alpha, mask)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func runningAvg[T Elem](src, acc *Mat, alpha float64, mask *Mat) {
	ls, la, lm := Resolve(src), Resolve(acc), resolveMask(mask)
	ch := acc.Channels
	for y := 0; y < la.Rows; y++ {
		rs, ra := Row[T](src, ls, y), Row[float32](acc, la, y)
		rm := maskRow(mask, lm, y)
		for i := range ra {
			if rm != nil && rm[i/ch] == 0 {
				continue
			}
			ra[i] = float32(float64(ra[i])*(1-alpha) + float64(rs[i])*alpha)
		}
	}
}

// ConvertScale computes dst = src*scale + shift, converting between depths.
func ConvertScale(src, dst *Mat, scale, shift float64) {
	convertScale(src, dst, func(v float64) float64 { return v*scale + shift })
}

// ConvertScaleAbs computes dst = |src*scale + shift|.
func ConvertScaleAbs(src, dst *Mat, scale, shift float64) {
	convertScale(src, dst, func(v float64) float64 { return math.Abs(v*scale + shift) })
}

func convertScale(src, dst *Mat, op UnaryFunc) {
	sameSize(src, dst)
	src.mustNoCOI()
	dst.mustNoCOI()
	if src.Channels != dst.Channels {
		panic(fmt.Errorf("%w: %d vs %d", ErrChannelMismatch, src.Channels, dst.Channels))
	}
	switch {
	case src.Depth == Depth8U && dst.Depth == Depth8U:
		convertRows[uint8, uint8](src, dst, op)
	case src.Depth == Depth8U && dst.Depth == Depth32F:
		convertRows[uint8, float32](src, dst, op)
	case src.Depth == Depth32F && dst.Depth == Depth8U:
		convertRows[float32, uint8](src, dst, op)
	case src.Depth == Depth32F && dst.Depth == Depth32F:
		convertRows[float32, float32](src, dst, op)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func convertRows[S, D Elem](src, dst *Mat, op UnaryFunc) {
	ls, ld := Resolve(src), Resolve(dst)
	ParallelFor(ld.Rows, func(start, end int) {
		for y := start; y < end; y++ {
			rs, rd := Row[S](src, ls, y), Row[D](dst, ld, y)
			for i := range rd {
				rd[i] = saturate[D](op(float64(rs[i])))
			}
		}
	})
}
