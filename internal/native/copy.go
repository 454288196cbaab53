package native

import "fmt"

// Copy copies the visible region of src into dst where mask is non-zero.
//
// A channel of interest on either side selects a single channel: src with a COI
// may be copied into a single channel dst (extract), a single channel src into
// dst with a COI (insert), or channel to channel when both have one.
func Copy(src, dst, mask *Mat) {
	sameSize(src, dst)
	checkMask(mask, dst)
	if src.Depth != dst.Depth {
		panic(fmt.Errorf("%w: %s vs %s", ErrDepthMismatch, src.Depth, dst.Depth))
	}

	srcCh, srcOff := channelSpan(src)
	dstCh, dstOff := channelSpan(dst)
	if srcCh != dstCh {
		panic(fmt.Errorf("%w: %d vs %d", ErrChannelMismatch, srcCh, dstCh))
	}

	ls, ld, lm := Resolve(src), Resolve(dst), resolveMask(mask)
	es := src.Depth.Size()
	if srcCh == src.Channels && srcCh == dst.Channels && mask == nil {
		for y := 0; y < ld.Rows; y++ {
			copy(ld.Row(dst.Data, y), ls.Row(src.Data, y))
		}
		return
	}

	srcPixel, dstPixel := src.Channels*es, dst.Channels*es
	span := srcCh * es
	width := ld.RowBytes / dstPixel
	for y := 0; y < ld.Rows; y++ {
		rs, rd := ls.Row(src.Data, y), ld.Row(dst.Data, y)
		rm := maskRow(mask, lm, y)
		for x := 0; x < width; x++ {
			if rm != nil && rm[x] == 0 {
				continue
			}
			so := x*srcPixel + srcOff*es
			do := x*dstPixel + dstOff*es
			copy(rd[do:do+span], rs[so:so+span])
		}
	}
}

// channelSpan returns the number of channels addressed and the first channel index.
func channelSpan(m *Mat) (int, int) {
	if m.COI == 0 {
		return m.Channels, 0
	}
	if m.COI < 0 || m.COI > m.Channels {
		panic(fmt.Errorf("%w: coi %d of %d", ErrChannelMismatch, m.COI, m.Channels))
	}
	return 1, m.COI - 1
}

// Set fills the visible region of dst with s where mask is non-zero.
func Set(dst *Mat, s Scalar, mask *Mat) {
	dst.mustNoCOI()
	checkMask(mask, dst)
	pattern := scalarBytes(s, dst.Channels, dst.Depth)
	pixel := len(pattern)
	ld, lm := Resolve(dst), resolveMask(mask)
	for y := 0; y < ld.Rows; y++ {
		rd := ld.Row(dst.Data, y)
		rm := maskRow(mask, lm, y)
		for x := 0; x*pixel < len(rd); x++ {
			if rm != nil && rm[x] == 0 {
				continue
			}
			copy(rd[x*pixel:], pattern)
		}
	}
}

// SetZero clears the visible region of dst.
func SetZero(dst *Mat) {
	dst.mustNoCOI()
	ld := Resolve(dst)
	for y := 0; y < ld.Rows; y++ {
		clear(ld.Row(dst.Data, y))
	}
}

// Merge interleaves single channel planes into dst. Planes may carry their own ROI.
func Merge(planes []*Mat, dst *Mat) {
	dst.mustNoCOI()
	if len(planes) != dst.Channels {
		panic(fmt.Errorf("%w: %d planes for %d channels", ErrChannelMismatch, len(planes), dst.Channels))
	}
	defer func() { dst.COI = 0 }()
	for i, p := range planes {
		if p.Channels != 1 {
			panic(fmt.Errorf("%w: plane %d has %d channels", ErrChannelMismatch, i, p.Channels))
		}
		dst.COI = i + 1
		Copy(p, dst, nil)
	}
}

// Split extracts every channel of src into the single channel planes.
func Split(src *Mat, planes []*Mat) {
	src.mustNoCOI()
	if len(planes) != src.Channels {
		panic(fmt.Errorf("%w: %d planes for %d channels", ErrChannelMismatch, len(planes), src.Channels))
	}
	defer func() { src.COI = 0 }()
	for i, p := range planes {
		src.COI = i + 1
		Copy(src, p, nil)
	}
}
