package native

import (
	"fmt"
	"math"
)

// MinMaxResult holds extreme values and their locations relative to the visible region.
type MinMaxResult struct {
	Min, Max       float64
	MinLoc, MaxLoc Point
}

// MinMaxLoc finds the extremes of a single channel Mat, or of the channel of
// interest of a multi channel one.
func MinMaxLoc(m *Mat, mask *Mat) MinMaxResult {
	checkMask(mask, m)
	ch, off := channelSpan(m)
	if ch != 1 {
		panic(fmt.Errorf("%w: min/max needs one channel or a channel of interest", ErrChannelMismatch))
	}
	switch m.Depth {
	case Depth8U:
		return minMaxLoc[uint8](m, off, mask)
	case Depth32F:
		return minMaxLoc[float32](m, off, mask)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func minMaxLoc[T Elem](m *Mat, off int, mask *Mat) MinMaxResult {
	l, lm := Resolve(m), resolveMask(mask)
	res := MinMaxResult{Min: math.Inf(1), Max: math.Inf(-1)}
	found := false
	for y := 0; y < l.Rows; y++ {
		row := Row[T](m, l, y)
		rm := maskRow(mask, lm, y)
		for x := 0; x*m.Channels < len(row); x++ {
			if rm != nil && rm[x] == 0 {
				continue
			}
			found = true
			v := float64(row[x*m.Channels+off])
			if v < res.Min {
				res.Min, res.MinLoc = v, Point{X: x, Y: y}
			}
			if v > res.Max {
				res.Max, res.MaxLoc = v, Point{X: x, Y: y}
			}
		}
	}
	if !found {
		return MinMaxResult{}
	}
	return res
}

// Sum returns the per channel sum of the visible region.
func Sum(m *Mat) Scalar {
	s, _ := accumulate(m, nil)
	return s
}

// Avg returns the per channel mean of the visible region where mask is set.
func Avg(m *Mat, mask *Mat) Scalar {
	s, n := accumulate(m, mask)
	if n == 0 {
		return Scalar{}
	}
	for c := range s {
		s[c] /= float64(n)
	}
	return s
}

func accumulate(m *Mat, mask *Mat) (Scalar, int) {
	m.mustNoCOI()
	checkMask(mask, m)
	switch m.Depth {
	case Depth8U:
		return accumulateRows[uint8](m, mask)
	case Depth32F:
		return accumulateRows[float32](m, mask)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func accumulateRows[T Elem](m *Mat, mask *Mat) (Scalar, int) {
	var s Scalar
	l, lm := Resolve(m), resolveMask(mask)
	ch := m.Channels
	n := 0
	for y := 0; y < l.Rows; y++ {
		row := Row[T](m, l, y)
		rm := maskRow(mask, lm, y)
		for x := 0; x*ch < len(row); x++ {
			if rm != nil && rm[x] == 0 {
				continue
			}
			n++
			for c := 0; c < ch; c++ {
				s[c] += float64(row[x*ch+c])
			}
		}
	}
	return s, n
}

// Range returns the minimum and maximum over all channels of the visible region.
// NaN elements are skipped.
func Range(m *Mat) (float64, float64) {
	m.mustNoCOI()
	switch m.Depth {
	case Depth8U:
		return rangeRows[uint8](m)
	case Depth32F:
		return rangeRows[float32](m)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func rangeRows[T Elem](m *Mat) (float64, float64) {
	l := Resolve(m)
	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < l.Rows; y++ {
		for _, v := range Row[T](m, l, y) {
			f := float64(v)
			if f != f {
				continue
			}
			if f < lo {
				lo = f
			}
			if f > hi {
				hi = f
			}
		}
	}
	return lo, hi
}
