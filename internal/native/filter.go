package native

import (
	"fmt"
	"math"
)

// FlipMode selects the flip axis.
type FlipMode uint8

// Flip modes.
const (
	FlipVertical FlipMode = 1 << iota
	FlipHorizontal
)

// Flip mirrors src into dst. dst may alias src when both are the same Mat.
func Flip(src, dst *Mat, mode FlipMode) {
	sameLayout(src, dst)
	ls, ld := Resolve(src), Resolve(dst)
	pixel := src.Channels * src.Depth.Size()
	tmp := make([]byte, ls.RowBytes*ls.Rows)
	for y := 0; y < ls.Rows; y++ {
		copy(tmp[y*ls.RowBytes:], ls.Row(src.Data, y))
	}
	for y := 0; y < ld.Rows; y++ {
		sy := y
		if mode&FlipVertical != 0 {
			sy = ld.Rows - 1 - y
		}
		rs := tmp[sy*ls.RowBytes : (sy+1)*ls.RowBytes]
		rd := ld.Row(dst.Data, y)
		if mode&FlipHorizontal == 0 {
			copy(rd, rs)
			continue
		}
		n := len(rd) / pixel
		for x := 0; x < n; x++ {
			copy(rd[x*pixel:(x+1)*pixel], rs[(n-1-x)*pixel:(n-x)*pixel])
		}
	}
}

// Erode applies a 3x3 minimum filter iterations times.
func Erode(src, dst *Mat, iterations int) {
	morph(src, dst, iterations, math.Min)
}

// Dilate applies a 3x3 maximum filter iterations times.
func Dilate(src, dst *Mat, iterations int) {
	morph(src, dst, iterations, math.Max)
}

func morph(src, dst *Mat, iterations int, pick func(a, b float64) float64) {
	sameLayout(src, dst)
	if iterations < 0 {
		panic(fmt.Errorf("%w: iterations %d", ErrInvalidDimensions, iterations))
	}
	Copy(src, dst, nil)
	for i := 0; i < iterations; i++ {
		switch dst.Depth {
		case Depth8U:
			morphPass[uint8](dst, pick)
		case Depth32F:
			morphPass[float32](dst, pick)
		default:
			panic(ErrUnsupportedDepth)
		}
	}
}

// morphPass filters m in place, borders replicate the edge pixels.
func morphPass[T Elem](m *Mat, pick func(a, b float64) float64) {
	w, h := m.VisibleSize()
	ch := m.Channels
	plane := snapshot[T](m)
	l := Resolve(m)
	ParallelFor(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := Row[T](m, l, y)
			for x := 0; x < w; x++ {
				for c := 0; c < ch; c++ {
					v := float64(plane[(y*w+x)*ch+c])
					for dy := -1; dy <= 1; dy++ {
						yy := clampIndex(y+dy, h)
						for dx := -1; dx <= 1; dx++ {
							xx := clampIndex(x+dx, w)
							v = pick(v, float64(plane[(yy*w+xx)*ch+c]))
						}
					}
					row[x*ch+c] = T(v)
				}
			}
		}
	})
}

// snapshot copies the visible region of m into a tightly packed slice.
func snapshot[T Elem](m *Mat) []T {
	l := Resolve(m)
	out := make([]T, 0, l.Elems*l.Rows)
	for y := 0; y < l.Rows; y++ {
		out = append(out, Row[T](m, l, y)...)
	}
	return out
}

// GaussianKernel returns a normalized 1D kernel of odd size. A non-positive
// sigma is derived from the size.
func GaussianKernel(size int, sigma float64) []float64 {
	if size < 1 || size%2 == 0 {
		panic(fmt.Errorf("%w: gaussian kernel size %d must be odd", ErrInvalidDimensions, size))
	}
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}
	k := make([]float64, size)
	half := size / 2
	var sum float64
	for i := range k {
		d := float64(i - half)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// GaussianSmooth blurs src into dst with a separable size x size kernel.
func GaussianSmooth(src, dst *Mat, size int, sigma float64) {
	sameLayout(src, dst)
	k := GaussianKernel(size, sigma)
	switch src.Depth {
	case Depth8U:
		separable[uint8](src, dst, k)
	case Depth32F:
		separable[float32](src, dst, k)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func separable[T Elem](src, dst *Mat, k []float64) {
	w, h := src.VisibleSize()
	ch := src.Channels
	half := len(k) / 2
	plane := snapshot[T](src)
	tmp := make([]float64, len(plane))

	ParallelFor(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				for c := 0; c < ch; c++ {
					var sum float64
					for i, kv := range k {
						xx := clampIndex(x+i-half, w)
						sum += float64(plane[(y*w+xx)*ch+c]) * kv
					}
					tmp[(y*w+x)*ch+c] = sum
				}
			}
		}
	})

	ld := Resolve(dst)
	ParallelFor(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := Row[T](dst, ld, y)
			for x := 0; x < w; x++ {
				for c := 0; c < ch; c++ {
					var sum float64
					for i, kv := range k {
						yy := clampIndex(y+i-half, h)
						sum += tmp[(yy*w+x)*ch+c] * kv
					}
					row[x*ch+c] = saturate[T](sum)
				}
			}
		}
	})
}

// SampleLine returns the raw bytes of every pixel on the 8-connected line
// from p1 to p2, both inclusive, in visible region coordinates.
func SampleLine(m *Mat, p1, p2 Point) []byte {
	m.mustNoCOI()
	w, h := m.VisibleSize()
	for _, p := range []Point{p1, p2} {
		if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
			panic(fmt.Errorf("%w: point %+v outside %dx%d", ErrInvalidDimensions, p, w, h))
		}
	}
	l := Resolve(m)
	pixel := m.Channels * m.Depth.Size()

	dx, dy := abs(p2.X-p1.X), abs(p2.Y-p1.Y)
	n := max(dx, dy) + 1
	out := make([]byte, 0, n*pixel)
	sx, sy := sign(p2.X-p1.X), sign(p2.Y-p1.Y)
	x, y := p1.X, p1.Y
	e := dx - dy
	for {
		row := l.Row(m.Data, y)
		out = append(out, row[x*pixel:(x+1)*pixel]...)
		if x == p2.X && y == p2.Y {
			break
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x += sx
		}
		if e2 < dx {
			e += dx
			y += sy
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
