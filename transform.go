package imgcv

import (
	"fmt"

	"github.com/vearutop/imgcv/internal/native"
)

// rowView marshals visible rows of an image to and from typed scratch rows.
type rowView[T Depth] struct {
	m *native.Mat
	l native.Layout
}

func viewOf[C Color[C], T Depth](img *Image[C, T]) rowView[T] {
	m := img.hdr()
	return rowView[T]{m: m, l: native.Resolve(m)}
}

func (v rowView[T]) scratch() []T {
	return make([]T, v.l.Elems)
}

func (v rowView[T]) load(y int, buf []T) {
	copy(native.AsBytes(buf), v.l.Row(v.m.Data, y))
}

func (v rowView[T]) store(y int, buf []T) {
	copy(v.l.Row(v.m.Data, y), native.AsBytes(buf))
}

func mustMatchRows(ls ...native.Layout) {
	for _, l := range ls[1:] {
		if l.Rows != ls[0].Rows || l.Elems != ls[0].Elems {
			panic(fmt.Errorf("%w: %d rows of %d elements vs %d rows of %d elements",
				ErrSizeMismatch, ls[0].Rows, ls[0].Elems, l.Rows, l.Elems))
		}
	}
}

// ForEach calls fn for every element of the visible region in row major order.
func ForEach[C Color[C], D Depth](img *Image[C, D], fn func(v D)) {
	src := viewOf(img)
	in := src.scratch()
	for y := 0; y < src.l.Rows; y++ {
		src.load(y, in)
		for _, v := range in {
			fn(v)
		}
	}
}

// ForEach2 calls fn for every pair of aligned elements of a and b.
func ForEach2[C Color[C], D, D2 Depth](a *Image[C, D], b *Image[C, D2], fn func(v D, w D2)) {
	va, vb := viewOf(a), viewOf(b)
	mustMatchRows(va.l, vb.l)
	ia, ib := va.scratch(), vb.scratch()
	for y := 0; y < va.l.Rows; y++ {
		va.load(y, ia)
		vb.load(y, ib)
		for i := range ia {
			fn(ia[i], ib[i])
		}
	}
}

// Map returns a new image of the visible size with fn applied to every element.
// Rows are processed concurrently, fn must be safe to call from several goroutines.
// fn may run other image operations, nested row loops use any idle workers.
func Map[C Color[C], D, D2 Depth](img *Image[C, D], fn func(v D) D2) *Image[C, D2] {
	src := viewOf(img)
	res := like[C, D2](img)
	dst := viewOf(res)
	mustMatchRows(src.l, dst.l)

	native.ParallelFor(dst.l.Rows, func(start, end int) {
		in, out := src.scratch(), dst.scratch()
		for y := start; y < end; y++ {
			src.load(y, in)
			for i, v := range in {
				out[i] = fn(v)
			}
			dst.store(y, out)
		}
	})
	return res
}

// MapXY is Map with the row and column of the pixel, relative to the visible region.
func MapXY[C Color[C], D, D2 Depth](img *Image[C, D], fn func(v D, row, col int) D2) *Image[C, D2] {
	src := viewOf(img)
	res := like[C, D2](img)
	dst := viewOf(res)
	mustMatchRows(src.l, dst.l)
	ch := channelsOf[C]()

	native.ParallelFor(dst.l.Rows, func(start, end int) {
		in, out := src.scratch(), dst.scratch()
		for y := start; y < end; y++ {
			src.load(y, in)
			for i, v := range in {
				out[i] = fn(v, y, i/ch)
			}
			dst.store(y, out)
		}
	})
	return res
}

// Map2 combines aligned elements of two images of equal visible size.
func Map2[C Color[C], D, D2, D3 Depth](a *Image[C, D], b *Image[C, D2], fn func(v D, w D2) D3) *Image[C, D3] {
	va, vb := viewOf(a), viewOf(b)
	res := like[C, D3](a)
	dst := viewOf(res)
	mustMatchRows(va.l, vb.l, dst.l)

	native.ParallelFor(dst.l.Rows, func(start, end int) {
		ia, ib, out := va.scratch(), vb.scratch(), dst.scratch()
		for y := start; y < end; y++ {
			va.load(y, ia)
			vb.load(y, ib)
			for i := range out {
				out[i] = fn(ia[i], ib[i])
			}
			dst.store(y, out)
		}
	})
	return res
}

// Map3 combines aligned elements of three images of equal visible size.
func Map3[C Color[C], D, D2, D3, D4 Depth](a *Image[C, D], b *Image[C, D2], c *Image[C, D3], fn func(u D, v D2, w D3) D4) *Image[C, D4] {
	va, vb, vc := viewOf(a), viewOf(b), viewOf(c)
	res := like[C, D4](a)
	dst := viewOf(res)
	mustMatchRows(va.l, vb.l, vc.l, dst.l)

	native.ParallelFor(dst.l.Rows, func(start, end int) {
		ia, ib, ic, out := va.scratch(), vb.scratch(), vc.scratch(), dst.scratch()
		for y := start; y < end; y++ {
			va.load(y, ia)
			vb.load(y, ib)
			vc.load(y, ic)
			for i := range out {
				out[i] = fn(ia[i], ib[i], ic[i])
			}
			dst.store(y, out)
		}
	})
	return res
}

// Map4 combines aligned elements of four images of equal visible size.
func Map4[C Color[C], D, D2, D3, D4, D5 Depth](a *Image[C, D], b *Image[C, D2], c *Image[C, D3], d *Image[C, D4], fn func(t D, u D2, v D3, w D4) D5) *Image[C, D5] {
	va, vb, vc, vd := viewOf(a), viewOf(b), viewOf(c), viewOf(d)
	res := like[C, D5](a)
	dst := viewOf(res)
	mustMatchRows(va.l, vb.l, vc.l, vd.l, dst.l)

	native.ParallelFor(dst.l.Rows, func(start, end int) {
		ia, ib, ic, id, out := va.scratch(), vb.scratch(), vc.scratch(), vd.scratch(), dst.scratch()
		for y := start; y < end; y++ {
			va.load(y, ia)
			vb.load(y, ib)
			vc.load(y, ic)
			vd.load(y, id)
			for i := range out {
				out[i] = fn(ia[i], ib[i], ic[i], id[i])
			}
			dst.store(y, out)
		}
	})
	return res
}

// SetMaxWorkers bounds the goroutines used by row parallel operations such as
// Map and the resampling filters. Zero restores the default of GOMAXPROCS.
func SetMaxWorkers(n int) {
	native.SetMaxWorkers(n)
}
