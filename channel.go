package imgcv

import (
	"fmt"

	"github.com/vearutop/imgcv/internal/native"
)

// selectChannel marks channel i (zero based) as the channel of interest on the
// image header. The returned func restores the previous state and must be
// deferred by the caller.
func (img *Image[C, D]) selectChannel(i int) (release func()) {
	m := img.hdr()
	if i < 0 || i >= m.Channels {
		panic(fmt.Errorf("%w: channel %d of %d", ErrChannelMismatch, i, m.Channels))
	}
	prev := m.COI
	m.COI = i + 1
	return func() { m.COI = prev }
}

// forEachChannel runs op on every channel of img as a single channel Mat and
// collects the results in channel order.
//
// A single channel image is passed as is. Otherwise each channel is copied into
// a scratch buffer that is reused for all channels, so op must not retain it.
func forEachChannel[R any, C Color[C], D Depth](img *Image[C, D], op func(ch *native.Mat, i int) R) []R {
	m := img.hdr()
	if m.Channels == 1 {
		return []R{op(m, 0)}
	}

	w, h := m.VisibleSize()
	scratch := native.MustAlloc(w, h, 1, m.Depth)
	defer scratch.Release()
	Logger().Debug("channel scratch allocated", "channels", m.Channels, "size", Size{Width: w, Height: h}.String())

	res := make([]R, m.Channels)
	for i := range res {
		res[i] = readChannel(img, scratch, i, op)
	}
	return res
}

func readChannel[R any, C Color[C], D Depth](img *Image[C, D], scratch *native.Mat, i int, op func(ch *native.Mat, i int) R) R {
	release := img.selectChannel(i)
	defer release()

	native.Copy(img.mat, scratch, nil)
	return op(scratch, i)
}

// forEachChannelTo runs op for every channel pair of src and dst. The images
// must have the same channel count, depths may differ. Results written by op
// into its destination Mat land in the matching channel of dst.
func forEachChannelTo[C Color[C], D Depth, C2 Color[C2], D2 Depth](src *Image[C, D], dst *Image[C2, D2], op func(s, d *native.Mat, i int)) {
	sm, dm := src.hdr(), dst.hdr()
	if sm.Channels != dm.Channels {
		panic(fmt.Errorf("%w: %d vs %d", ErrChannelMismatch, sm.Channels, dm.Channels))
	}
	if sm.Channels == 1 {
		op(sm, dm, 0)
		return
	}

	w, h := sm.VisibleSize()
	dw, dh := dm.VisibleSize()
	if w != dw || h != dh {
		panic(fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, w, h, dw, dh))
	}
	ss := native.MustAlloc(w, h, 1, sm.Depth)
	ds := native.MustAlloc(w, h, 1, dm.Depth)
	defer ss.Release()
	defer ds.Release()
	Logger().Debug("channel scratch allocated", "channels", sm.Channels, "size", Size{Width: w, Height: h}.String())

	for i := 0; i < sm.Channels; i++ {
		writeChannel(src, dst, ss, ds, i, op)
	}
}

func writeChannel[C Color[C], D Depth, C2 Color[C2], D2 Depth](src *Image[C, D], dst *Image[C2, D2], ss, ds *native.Mat, i int, op func(s, d *native.Mat, i int)) {
	releaseSrc := src.selectChannel(i)
	defer releaseSrc()
	releaseDst := dst.selectChannel(i)
	defer releaseDst()

	native.Copy(src.mat, ss, nil)
	op(ss, ds, i)
	native.Copy(ds, dst.mat, nil)
}

// Split returns one single channel image per channel, in channel order.
func (img *Image[C, D]) Split() []*Image[Gray, D] {
	return forEachChannel(img, func(ch *native.Mat, _ int) *Image[Gray, D] {
		w, h := ch.VisibleSize()
		plane := New[Gray, D](w, h)
		native.Copy(ch, plane.mat, nil)
		return plane
	})
}

// Channel returns a copy of channel i (zero based) as a single channel image.
func (img *Image[C, D]) Channel(i int) *Image[Gray, D] {
	release := img.selectChannel(i)
	defer release()

	plane := New[Gray, D](img.Width(), img.Height())
	native.Copy(img.mat, plane.mat, nil)
	return plane
}

// SetChannel overwrites channel i (zero based) with the visible region of plane.
func (img *Image[C, D]) SetChannel(i int, plane *Image[Gray, D]) {
	release := img.selectChannel(i)
	defer release()

	native.Copy(plane.hdr(), img.mat, nil)
}
