package native

import (
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(t *testing.T, w, h, ch int, d Depth, v float64) *Mat {
	t.Helper()
	m, err := Alloc(w, h, ch, d)
	require.NoError(t, err)
	Set(m, Scalar{v, v, v, v}, nil)
	return m
}

func at8(m *Mat, x, y, c int) uint8 {
	return m.Data[y*m.Stride+x*m.Channels+c]
}

func TestDepthOf(t *testing.T) {
	type myByte uint8
	require.Equal(t, Depth8U, DepthOf[uint8]())
	require.Equal(t, Depth8U, DepthOf[myByte]())
	require.Equal(t, Depth32F, DepthOf[float32]())
	require.Equal(t, 4, Depth32F.Size())
	require.True(t, Depth32F.IsFloat())
	require.Equal(t, "8U", Depth8U.String())
}

func TestAlloc(t *testing.T) {
	m, err := Alloc(3, 2, 3, Depth8U)
	require.NoError(t, err)
	require.Equal(t, 12, m.Stride)
	require.Len(t, m.Data, 24)

	_, err = Alloc(0, 2, 1, Depth8U)
	require.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = Alloc(1, 1, 5, Depth8U)
	require.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = Alloc(1, 1, 1, DepthInvalid)
	require.ErrorIs(t, err, ErrUnsupportedDepth)
}

func TestResolve(t *testing.T) {
	m := MustAlloc(10, 8, 3, Depth32F)
	l := Resolve(m)
	require.Equal(t, Layout{Offset: 0, Stride: 120, RowBytes: 120, Rows: 8, Elems: 30}, l)

	m.SetROI(&Rect{X: 2, Y: 3, Width: 4, Height: 5})
	l = Resolve(m)
	require.Equal(t, Layout{Offset: 3*120 + 2*12, Stride: 120, RowBytes: 48, Rows: 5, Elems: 12}, l)

	w, h := m.VisibleSize()
	require.Equal(t, 4, w)
	require.Equal(t, 5, h)

	require.Panics(t, func() { m.SetROI(&Rect{X: 8, Y: 0, Width: 4, Height: 1}) })
}

func TestCopyChannelOfInterest(t *testing.T) {
	src := MustAlloc(2, 2, 3, Depth8U)
	ApplyScalar(src, Scalar{1, 2, 3}, src, nil, func(_, s float64) float64 { return s })

	plane := MustAlloc(2, 2, 1, Depth8U)
	src.COI = 2
	Copy(src, plane, nil)
	src.COI = 0
	require.Equal(t, uint8(2), at8(plane, 1, 1, 0))

	Set(plane, Scalar{9}, nil)
	src.COI = 3
	Copy(plane, src, nil)
	src.COI = 0
	require.Equal(t, uint8(1), at8(src, 0, 0, 0))
	require.Equal(t, uint8(2), at8(src, 0, 0, 1))
	require.Equal(t, uint8(9), at8(src, 0, 0, 2))
}

func TestKernelsRejectCOI(t *testing.T) {
	a := filled(t, 2, 2, 3, Depth8U, 1)
	a.COI = 1
	require.PanicsWithError(t, ErrCOI.Error(), func() { Add(a, a, a, nil) })
}

func TestCopyMasked(t *testing.T) {
	src := filled(t, 2, 1, 1, Depth8U, 7)
	dst := filled(t, 2, 1, 1, Depth8U, 0)
	mask := filled(t, 2, 1, 1, Depth8U, 0)
	mask.Data[1] = 1

	Copy(src, dst, mask)
	require.Equal(t, uint8(0), dst.Data[0])
	require.Equal(t, uint8(7), dst.Data[1])
}

func TestArithmeticSaturation(t *testing.T) {
	a := filled(t, 2, 2, 1, Depth8U, 100)
	b := filled(t, 2, 2, 1, Depth8U, 30)
	dst := MustAlloc(2, 2, 1, Depth8U)

	Sub(a, b, dst, nil)
	require.Equal(t, uint8(70), at8(dst, 1, 1, 0))

	Sub(b, a, dst, nil)
	require.Equal(t, uint8(0), at8(dst, 1, 1, 0))

	Add(a, a, dst, nil)
	Add(dst, a, dst, nil)
	require.Equal(t, uint8(255), at8(dst, 0, 0, 0))

	Div(a, filled(t, 2, 2, 1, Depth8U, 0), dst, 1)
	require.Equal(t, uint8(0), at8(dst, 0, 0, 0))

	SubRS(b, Scalar{50}, dst, nil)
	require.Equal(t, uint8(20), at8(dst, 0, 0, 0))
}

func TestArithmeticFloat(t *testing.T) {
	a := filled(t, 3, 1, 1, Depth32F, 1.5)
	b := filled(t, 3, 1, 1, Depth32F, 4)
	dst := MustAlloc(3, 1, 1, Depth32F)

	Sub(a, b, dst, nil)
	require.Equal(t, float32(-2.5), Bytes[float32](dst.Data)[2])

	AddWeighted(a, 2, b, 0.5, 1, dst)
	require.Equal(t, float32(6), Bytes[float32](dst.Data)[0])
}

func TestBitwise(t *testing.T) {
	a := filled(t, 2, 2, 3, Depth8U, 0x5a)
	dst := MustAlloc(2, 2, 3, Depth8U)

	BitwiseS(a, Scalar{255, 255, 255}, dst, nil, BitAnd)
	require.Equal(t, a.Data, dst.Data)

	Not(a, dst)
	Not(dst, dst)
	require.Equal(t, a.Data, dst.Data)

	Bitwise(a, a, dst, nil, BitXor)
	require.Equal(t, uint8(0), at8(dst, 1, 1, 2))
}

func TestCmpAndCount(t *testing.T) {
	a := filled(t, 3, 3, 1, Depth32F, 2)
	b := filled(t, 3, 3, 1, Depth32F, 2)
	Bytes[float32](b.Data)[4] = 3

	dst := MustAlloc(3, 3, 1, Depth8U)
	Cmp(a, b, dst, CmpNE)
	require.Equal(t, 1, CountNonZero(dst))

	CmpS(a, 1, dst, CmpGT)
	require.Equal(t, 9, CountNonZero(dst))

	require.Panics(t, func() { Cmp(filled(t, 1, 1, 3, Depth8U, 0), filled(t, 1, 1, 3, Depth8U, 0), MustAlloc(1, 1, 3, Depth8U), CmpEQ) })
}

func TestInRange(t *testing.T) {
	src := MustAlloc(2, 1, 3, Depth8U)
	copy(src.Data, []byte{10, 20, 30, 10, 99, 30})
	dst := MustAlloc(2, 1, 1, Depth8U)

	InRange(src, Scalar{0, 0, 0}, Scalar{50, 50, 50}, dst)
	require.Equal(t, uint8(255), dst.Data[0])
	require.Equal(t, uint8(0), dst.Data[1])
}

func TestThreshold(t *testing.T) {
	for _, tc := range []struct {
		name string
		typ  ThresholdType
		in   float64
		want uint8
	}{
		{"binary above", ThreshBinary, 10, 255},
		{"binary below", ThreshBinary, 5, 0},
		{"binary inv", ThreshBinaryInv, 10, 0},
		{"trunc", ThreshTrunc, 10, 5},
		{"to zero", ThreshToZero, 10, 10},
		{"to zero inv", ThreshToZeroInv, 10, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := filled(t, 4, 4, 1, Depth8U, tc.in)
			dst := MustAlloc(4, 4, 1, Depth8U)
			Threshold(src, dst, 5, 255, tc.typ)
			require.Equal(t, tc.want, at8(dst, 3, 3, 0))
		})
	}

	t.Run("multi channel", func(t *testing.T) {
		src := filled(t, 1, 1, 3, Depth8U, 1)
		require.Panics(t, func() { Threshold(src, src, 0, 255, ThreshBinary) })
	})

	t.Run("otsu", func(t *testing.T) {
		src := MustAlloc(4, 1, 1, Depth8U)
		copy(src.Data, []byte{10, 12, 200, 210})
		dst := MustAlloc(4, 1, 1, Depth8U)
		level := Threshold(src, dst, 0, 255, ThreshOtsu)
		require.GreaterOrEqual(t, level, 12.0)
		require.Less(t, level, 200.0)
		require.Equal(t, []byte{0, 0, 255, 255}, dst.Data)
	})
}

func TestMinMaxLocAndStats(t *testing.T) {
	m := MustAlloc(3, 2, 2, Depth8U)
	l := Resolve(m)
	for y := 0; y < l.Rows; y++ {
		row := l.Row(m.Data, y)
		for i := range row {
			row[i] = byte(y*len(row) + i)
		}
	}
	m.COI = 2
	res := MinMaxLoc(m, nil)
	m.COI = 0
	require.Equal(t, 1.0, res.Min)
	require.Equal(t, 11.0, res.Max)
	require.Equal(t, Point{X: 2, Y: 1}, res.MaxLoc)

	require.Panics(t, func() { MinMaxLoc(m, nil) })

	sum := Sum(m)
	require.Equal(t, 0.0+2+4+6+8+10, sum[0])
	avg := Avg(m, nil)
	require.InDelta(t, 6.0, avg[1], 1e-9)

	lo, hi := Range(m)
	require.Equal(t, 0.0, lo)
	require.Equal(t, 11.0, hi)
}

func TestConvertScale(t *testing.T) {
	src := filled(t, 2, 2, 1, Depth32F, -3)
	dst := MustAlloc(2, 2, 1, Depth8U)

	ConvertScale(src, dst, 1, 0)
	require.Equal(t, uint8(0), dst.Data[0])

	ConvertScaleAbs(src, dst, 10, 0)
	require.Equal(t, uint8(30), dst.Data[0])
}

func TestCvtColor(t *testing.T) {
	src := MustAlloc(1, 1, 3, Depth8U)
	copy(src.Data, []byte{255, 0, 0}) // blue in BGR

	rgb := MustAlloc(1, 1, 3, Depth8U)
	CvtColor(src, rgb, Code(ModelBGR, ModelRGB))
	require.Equal(t, []byte{0, 0, 255}, rgb.Data[:3])

	hsv := MustAlloc(1, 1, 3, Depth8U)
	CvtColor(src, hsv, "BGR2HSV")
	require.Equal(t, []byte{120, 255, 255}, hsv.Data[:3])

	back := MustAlloc(1, 1, 3, Depth8U)
	CvtColor(hsv, back, "HSV2BGR")
	require.Equal(t, src.Data[:3], back.Data[:3])

	gray := MustAlloc(1, 1, 1, Depth8U)
	CvtColor(src, gray, "BGR2GRAY")
	require.Equal(t, uint8(29), gray.Data[0])

	require.True(t, HasConversion("GRAY2BGRA"))
	require.False(t, HasConversion("GRAY2HSV"))
	require.Panics(t, func() { CvtColor(gray, hsv, "GRAY2HSV") })
}

func TestCvtColorFloatHSV(t *testing.T) {
	src := MustAlloc(1, 1, 3, Depth32F)
	copy(Bytes[float32](src.Data), []float32{0, 0.5, 1}) // BGR

	hsv := MustAlloc(1, 1, 3, Depth32F)
	CvtColor(src, hsv, "BGR2HSV")
	px := Bytes[float32](hsv.Data)
	assert.InDelta(t, 30, px[0], 1e-4)
	assert.InDelta(t, 1, px[1], 1e-6)
	assert.InDelta(t, 1, px[2], 1e-6)
}

func TestResize(t *testing.T) {
	src := filled(t, 4, 4, 3, Depth8U, 77)
	dst := MustAlloc(9, 5, 3, Depth8U)
	Resize(src, dst, InterLinear)
	require.Equal(t, uint8(77), at8(dst, 8, 4, 2))

	same := MustAlloc(4, 4, 3, Depth8U)
	src.Data[5] = 3
	Resize(src, same, InterLinear)
	require.Equal(t, src.Data, same.Data)
}

func TestFlip(t *testing.T) {
	m := MustAlloc(3, 2, 1, Depth8U)
	copy(m.Data[0:3], []byte{1, 2, 3})
	copy(m.Data[4:7], []byte{4, 5, 6})

	dst := MustAlloc(3, 2, 1, Depth8U)
	Flip(m, dst, FlipHorizontal)
	require.Equal(t, []byte{3, 2, 1}, dst.Data[0:3])

	Flip(m, dst, FlipVertical|FlipHorizontal)
	require.Equal(t, []byte{6, 5, 4}, dst.Data[0:3])
}

func TestMorphology(t *testing.T) {
	m := filled(t, 5, 5, 1, Depth8U, 0)
	m.Data[2*m.Stride+2] = 200

	dst := MustAlloc(5, 5, 1, Depth8U)
	Dilate(m, dst, 1)
	require.Equal(t, 9, CountNonZero(dst))

	Erode(dst, dst, 1)
	require.Equal(t, 1, CountNonZero(dst))
}

func TestGaussianSmooth(t *testing.T) {
	k := GaussianKernel(5, 0)
	var sum float64
	for _, v := range k {
		sum += v
	}
	require.InDelta(t, 1, sum, 1e-12)
	require.Panics(t, func() { GaussianKernel(4, 0) })

	m := filled(t, 6, 6, 3, Depth32F, 0.25)
	dst := MustAlloc(6, 6, 3, Depth32F)
	GaussianSmooth(m, dst, 3, 0)
	require.InDelta(t, 0.25, Bytes[float32](dst.Data)[7], 1e-6)
}

func TestSampleLine(t *testing.T) {
	m := MustAlloc(4, 4, 1, Depth8U)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			m.Data[y*m.Stride+x] = byte(y*4 + x)
		}
	}
	require.Equal(t, []byte{0, 5, 10, 15}, SampleLine(m, Point{X: 0, Y: 0}, Point{X: 3, Y: 3}))
	require.Equal(t, []byte{4, 5, 6}, SampleLine(m, Point{X: 0, Y: 1}, Point{X: 2, Y: 1}))
}

func TestRunningAvg(t *testing.T) {
	src := filled(t, 2, 2, 1, Depth8U, 100)
	acc := filled(t, 2, 2, 1, Depth32F, 0)
	RunningAvg(src, acc, 0.5, nil)
	require.Equal(t, float32(50), Bytes[float32](acc.Data)[3])
}

func TestParallelFor(t *testing.T) {
	SetMaxWorkers(3)
	defer SetMaxWorkers(0)

	seen := make([]int, 100)
	ParallelFor(len(seen), func(start, end int) {
		for i := start; i < end; i++ {
			seen[i]++
		}
	})
	for i, n := range seen {
		require.Equal(t, 1, n, i)
	}

	require.Panics(t, func() {
		ParallelFor(10, func(start, _ int) {
			if start == 0 {
				panic("boom")
			}
		})
	})
}

func TestParallelForNested(t *testing.T) {
	var count atomic.Int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		ParallelFor(64, func(start, end int) {
			for i := start; i < end; i++ {
				ParallelFor(64, func(s, e int) { count.Add(int64(e - s)) })
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("nested ParallelFor did not finish")
	}
	assert.Equal(t, int64(64*64), count.Load())
}

func TestSaturate(t *testing.T) {
	require.Equal(t, uint8(0), saturate[uint8](-1))
	require.Equal(t, uint8(255), saturate[uint8](1e9))
	require.Equal(t, uint8(3), saturate[uint8](2.5))
	require.Equal(t, uint8(0), saturate[uint8](math.NaN()))
	require.Equal(t, float32(-1.25), saturate[float32](-1.25))
}
