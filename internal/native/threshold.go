package native

import "fmt"

// ThresholdType selects the thresholding rule.
type ThresholdType uint8

// Threshold types.
const (
	ThreshBinary ThresholdType = iota
	ThreshBinaryInv
	ThreshTrunc
	ThreshToZero
	ThreshToZeroInv
	// ThreshOtsu picks the threshold by Otsu's method and then applies ThreshBinary.
	ThreshOtsu
)

func (t ThresholdType) rule(thresh, maxValue float64) UnaryFunc {
	switch t {
	case ThreshBinary, ThreshOtsu:
		return func(v float64) float64 {
			if v > thresh {
				return maxValue
			}
			return 0
		}
	case ThreshBinaryInv:
		return func(v float64) float64 {
			if v > thresh {
				return 0
			}
			return maxValue
		}
	case ThreshTrunc:
		return func(v float64) float64 {
			if v > thresh {
				return thresh
			}
			return v
		}
	case ThreshToZero:
		return func(v float64) float64 {
			if v > thresh {
				return v
			}
			return 0
		}
	case ThreshToZeroInv:
		return func(v float64) float64 {
			if v > thresh {
				return 0
			}
			return v
		}
	default:
		panic(fmt.Sprintf("native: unknown threshold type %d", t))
	}
}

// Threshold applies a fixed level threshold to a single channel src and
// returns the threshold that was used. Otsu requires 8U input.
func Threshold(src, dst *Mat, thresh, maxValue float64, t ThresholdType) float64 {
	singleChannel(src, dst)
	sameLayout(src, dst)
	if t == ThreshOtsu {
		if src.Depth != Depth8U {
			panic(fmt.Errorf("%w: otsu threshold requires 8U", ErrUnsupportedDepth))
		}
		thresh = otsu(src)
	}
	Apply(src, dst, t.rule(thresh, maxValue))
	return thresh
}

func otsu(m *Mat) float64 {
	var hist [256]int
	l := Resolve(m)
	total := 0
	for y := 0; y < l.Rows; y++ {
		for _, v := range l.Row(m.Data, y) {
			hist[v]++
			total++
		}
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var (
		sumB, best float64
		wB         int
		level      int
	)
	for i, n := range hist {
		wB += n
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(i * n)
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = i
		}
	}
	return float64(level)
}
