package native

import (
	"encoding/binary"
	"math"
)

// BitOp selects a bitwise operation.
type BitOp uint8

// Bitwise operations.
const (
	BitAnd BitOp = iota
	BitOr
	BitXor
)

func (op BitOp) apply(a, b byte) byte {
	switch op {
	case BitAnd:
		return a & b
	case BitOr:
		return a | b
	default:
		return a ^ b
	}
}

// Bitwise combines the raw element bits of a and b into dst.
func Bitwise(a, b, dst, mask *Mat, op BitOp) {
	sameLayout(a, b, dst)
	checkMask(mask, dst)
	la, lb, ld, lm := Resolve(a), Resolve(b), Resolve(dst), resolveMask(mask)
	pixel := dst.Channels * dst.Depth.Size()
	ParallelFor(ld.Rows, func(start, end int) {
		for y := start; y < end; y++ {
			ra, rb, rd := la.Row(a.Data, y), lb.Row(b.Data, y), ld.Row(dst.Data, y)
			rm := maskRow(mask, lm, y)
			for i := range rd {
				if rm != nil && rm[i/pixel] == 0 {
					continue
				}
				rd[i] = op.apply(ra[i], rb[i])
			}
		}
	})
}

// BitwiseS combines the raw element bits of a with the scalar converted to the element type.
func BitwiseS(a *Mat, s Scalar, dst, mask *Mat, op BitOp) {
	sameLayout(a, dst)
	checkMask(mask, dst)
	pattern := scalarBytes(s, dst.Channels, dst.Depth)
	la, ld, lm := Resolve(a), Resolve(dst), resolveMask(mask)
	pixel := len(pattern)
	ParallelFor(ld.Rows, func(start, end int) {
		for y := start; y < end; y++ {
			ra, rd := la.Row(a.Data, y), ld.Row(dst.Data, y)
			rm := maskRow(mask, lm, y)
			for i := range rd {
				if rm != nil && rm[i/pixel] == 0 {
					continue
				}
				rd[i] = op.apply(ra[i], pattern[i%pixel])
			}
		}
	})
}

// Not inverts every bit of a into dst.
func Not(a, dst *Mat) {
	sameLayout(a, dst)
	la, ld := Resolve(a), Resolve(dst)
	ParallelFor(ld.Rows, func(start, end int) {
		for y := start; y < end; y++ {
			ra, rd := la.Row(a.Data, y), ld.Row(dst.Data, y)
			for i := range rd {
				rd[i] = ^ra[i]
			}
		}
	})
}

// scalarBytes encodes one pixel worth of s in native element layout.
func scalarBytes(s Scalar, channels int, depth Depth) []byte {
	out := make([]byte, channels*depth.Size())
	for c := 0; c < channels; c++ {
		switch depth {
		case Depth8U:
			out[c] = saturate[uint8](s[c])
		case Depth32F:
			binary.NativeEndian.PutUint32(out[c*4:], math.Float32bits(float32(s[c])))
		default:
			panic(ErrUnsupportedDepth)
		}
	}
	return out
}
