package native

import "fmt"

// CmpOp selects a comparison.
type CmpOp uint8

// Comparison operations.
const (
	CmpEQ CmpOp = iota
	CmpGT
	CmpGE
	CmpLT
	CmpLE
	CmpNE
)

func (op CmpOp) test(a, b float64) bool {
	switch op {
	case CmpEQ:
		return a == b
	case CmpGT:
		return a > b
	case CmpGE:
		return a >= b
	case CmpLT:
		return a < b
	case CmpLE:
		return a <= b
	case CmpNE:
		return a != b
	default:
		panic(fmt.Sprintf("native: unknown comparison %d", op))
	}
}

func singleChannel(mats ...*Mat) {
	for _, m := range mats {
		m.mustNoCOI()
		if m.Channels != 1 {
			panic(fmt.Errorf("%w: single channel input required, got %d", ErrChannelMismatch, m.Channels))
		}
	}
}

func checkCmpDst(dst *Mat) {
	if dst.Depth != Depth8U {
		panic(fmt.Errorf("%w: comparison result must be 8U", ErrUnsupportedDepth))
	}
}

// Cmp sets dst to 255 where op(a, b) holds and 0 elsewhere. Single channel only.
func Cmp(a, b, dst *Mat, op CmpOp) {
	singleChannel(a, b, dst)
	sameSize(a, b, dst)
	checkCmpDst(dst)
	if a.Depth != b.Depth {
		panic(fmt.Errorf("%w: %s vs %s", ErrDepthMismatch, a.Depth, b.Depth))
	}
	switch a.Depth {
	case Depth8U:
		cmpRows[uint8](a, b, dst, op)
	case Depth32F:
		cmpRows[float32](a, b, dst, op)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func cmpRows[T Elem](a, b, dst *Mat, op CmpOp) {
	la, lb, ld := Resolve(a), Resolve(b), Resolve(dst)
	for y := 0; y < ld.Rows; y++ {
		ra, rb, rd := Row[T](a, la, y), Row[T](b, lb, y), ld.Row(dst.Data, y)
		for i := range rd {
			rd[i] = boolByte(op.test(float64(ra[i]), float64(rb[i])))
		}
	}
}

// CmpS compares every element of a with v. Single channel only.
func CmpS(a *Mat, v float64, dst *Mat, op CmpOp) {
	singleChannel(a, dst)
	sameSize(a, dst)
	checkCmpDst(dst)
	switch a.Depth {
	case Depth8U:
		cmpScalarRows[uint8](a, v, dst, op)
	case Depth32F:
		cmpScalarRows[float32](a, v, dst, op)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func cmpScalarRows[T Elem](a *Mat, v float64, dst *Mat, op CmpOp) {
	la, ld := Resolve(a), Resolve(dst)
	for y := 0; y < ld.Rows; y++ {
		ra, rd := Row[T](a, la, y), ld.Row(dst.Data, y)
		for i := range rd {
			rd[i] = boolByte(op.test(float64(ra[i]), v))
		}
	}
}

// InRange sets the single channel dst to 255 where every channel c of src
// satisfies lo[c] <= v < hi[c].
func InRange(src *Mat, lo, hi Scalar, dst *Mat) {
	src.mustNoCOI()
	singleChannel(dst)
	sameSize(src, dst)
	checkCmpDst(dst)
	switch src.Depth {
	case Depth8U:
		inRangeRows[uint8](src, lo, hi, dst)
	case Depth32F:
		inRangeRows[float32](src, lo, hi, dst)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func inRangeRows[T Elem](src *Mat, lo, hi Scalar, dst *Mat) {
	ls, ld := Resolve(src), Resolve(dst)
	ch := src.Channels
	for y := 0; y < ld.Rows; y++ {
		rs, rd := Row[T](src, ls, y), ld.Row(dst.Data, y)
		for x := range rd {
			in := true
			for c := 0; c < ch; c++ {
				v := float64(rs[x*ch+c])
				if v < lo[c] || v >= hi[c] {
					in = false
					break
				}
			}
			rd[x] = boolByte(in)
		}
	}
}

// CountNonZero counts non-zero elements of a single channel Mat.
func CountNonZero(m *Mat) int {
	singleChannel(m)
	switch m.Depth {
	case Depth8U:
		return countNonZero[uint8](m)
	case Depth32F:
		return countNonZero[float32](m)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func countNonZero[T Elem](m *Mat) int {
	l := Resolve(m)
	n := 0
	for y := 0; y < l.Rows; y++ {
		for _, v := range Row[T](m, l, y) {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

func boolByte(b bool) byte {
	if b {
		return 255
	}
	return 0
}
