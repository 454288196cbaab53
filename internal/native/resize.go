package native

import (
	"fmt"
	"math"
	"sync"
)

// Interpolation selects the resampling kernel.
type Interpolation uint8

// Interpolation kernels.
const (
	InterNearest Interpolation = iota
	InterLinear
	InterCubic
	InterLanczos3
)

func (i Interpolation) String() string {
	switch i {
	case InterNearest:
		return "nearest"
	case InterLinear:
		return "linear"
	case InterCubic:
		return "cubic"
	case InterLanczos3:
		return "lanczos3"
	default:
		return fmt.Sprintf("interpolation(%d)", uint8(i))
	}
}

type resampleWeights struct {
	coeffs       []float32
	start        []int
	filterLength int
}

type kernelDef struct {
	interp Interpolation
	taps   int
	kernel func(float64) float64
}

type weightsKey struct {
	src    int
	dst    int
	interp Interpolation
}

var weightsCache sync.Map

var float32Pool = sync.Pool{
	New: func() any {
		buf := make([]float32, 0)
		return &buf
	},
}

func kernelFor(interp Interpolation) kernelDef {
	switch interp {
	case InterLinear:
		return kernelDef{interp: interp, taps: 2, kernel: linearKernel}
	case InterCubic:
		return kernelDef{interp: interp, taps: 4, kernel: cubicKernel}
	case InterLanczos3:
		return kernelDef{interp: interp, taps: 6, kernel: lanczos3Kernel}
	default:
		return kernelDef{interp: InterNearest, taps: 2, kernel: nearestKernel}
	}
}

// Resize resamples the visible region of src into the visible region of dst.
func Resize(src, dst *Mat, interp Interpolation) {
	src.mustNoCOI()
	dst.mustNoCOI()
	if src.Channels != dst.Channels {
		panic(fmt.Errorf("%w: %d vs %d", ErrChannelMismatch, src.Channels, dst.Channels))
	}
	if src.Depth != dst.Depth {
		panic(fmt.Errorf("%w: %s vs %s", ErrDepthMismatch, src.Depth, dst.Depth))
	}
	switch src.Depth {
	case Depth8U:
		resample[uint8](src, dst, kernelFor(interp))
	case Depth32F:
		resample[float32](src, dst, kernelFor(interp))
	default:
		panic(ErrUnsupportedDepth)
	}
}

func resample[T Elem](src, dst *Mat, def kernelDef) {
	srcW, srcH := src.VisibleSize()
	dstW, dstH := dst.VisibleSize()
	ls, ld := Resolve(src), Resolve(dst)
	ch := src.Channels

	wx := getWeights(srcW, dstW, def, float64(srcW)/float64(dstW))
	wy := getWeights(srcH, dstH, def, float64(srcH)/float64(dstH))

	rowLen := dstW * ch
	temp := getFloat32(rowLen * srcH)
	defer putFloat32(temp)

	ParallelFor(srcH, func(start, end int) {
		for y := start; y < end; y++ {
			row := Row[T](src, ls, y)
			out := temp[y*rowLen : (y+1)*rowLen]
			for x := 0; x < dstW; x++ {
				s := wx.start[x]
				base := x * wx.filterLength
				for c := 0; c < ch; c++ {
					var sum float32
					for i := 0; i < wx.filterLength; i++ {
						xi := clampIndex(s+i, srcW)
						sum += float32(row[xi*ch+c]) * wx.coeffs[base+i]
					}
					out[x*ch+c] = sum
				}
			}
		}
	})

	ParallelFor(dstH, func(start, end int) {
		for y := start; y < end; y++ {
			s := wy.start[y]
			base := y * wy.filterLength
			row := Row[T](dst, ld, y)
			for x := 0; x < rowLen; x++ {
				var sum float32
				for i := 0; i < wy.filterLength; i++ {
					yi := clampIndex(s+i, srcH)
					sum += temp[yi*rowLen+x] * wy.coeffs[base+i]
				}
				row[x] = saturate[T](float64(sum))
			}
		}
	})
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func getWeights(src, dst int, def kernelDef, scale float64) resampleWeights {
	if src <= 0 || dst <= 0 {
		return resampleWeights{}
	}
	key := weightsKey{src: src, dst: dst, interp: def.interp}
	if cached, ok := weightsCache.Load(key); ok {
		return cached.(resampleWeights)
	}
	filterLength := def.taps * int(math.Max(math.Ceil(scale), 1))
	filterFactor := math.Min(1.0/scale, 1.0)
	coeffs := make([]float32, dst*filterLength)
	start := make([]int, dst)
	for y := 0; y < dst; y++ {
		interpX := scale*(float64(y)+0.5) - 0.5
		start[y] = int(math.Floor(interpX)) - filterLength/2 + 1
		interpX -= float64(start[y])
		base := y * filterLength
		var sum float64
		for i := 0; i < filterLength; i++ {
			w := def.kernel((interpX - float64(i)) * filterFactor)
			coeffs[base+i] = float32(w)
			sum += w
		}
		if sum != 0 {
			inv := float32(1.0 / sum)
			for i := 0; i < filterLength; i++ {
				coeffs[base+i] *= inv
			}
		}
	}
	weights := resampleWeights{coeffs: coeffs, start: start, filterLength: filterLength}
	weightsCache.Store(key, weights)
	return weights
}

func getFloat32(n int) []float32 {
	bufPtr := float32Pool.Get().(*[]float32)
	buf := *bufPtr
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}

func putFloat32(buf []float32) {
	if buf == nil {
		return
	}
	clear(buf)
	buf = buf[:0]
	float32Pool.Put(&buf)
}

func nearestKernel(in float64) float64 {
	if in >= -0.5 && in < 0.5 {
		return 1
	}
	return 0
}

func linearKernel(in float64) float64 {
	in = math.Abs(in)
	if in <= 1 {
		return 1 - in
	}
	return 0
}

func cubicKernel(in float64) float64 {
	in = math.Abs(in)
	if in <= 1 {
		return in*in*(1.5*in-2.5) + 1.0
	}
	if in <= 2 {
		return in*(in*(2.5-0.5*in)-4.0) + 2.0
	}
	return 0
}

func sinc(x float64) float64 {
	x = math.Abs(x) * math.Pi
	if x >= 1.220703e-4 {
		return math.Sin(x) / x
	}
	return 1
}

func lanczos3Kernel(in float64) float64 {
	if in > -3 && in < 3 {
		return sinc(in) * sinc(in*0.3333333333333333)
	}
	return 0
}
