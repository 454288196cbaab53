package imgcv

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vearutop/imgcv/internal/native"
)

const (
	recordMagic   = "IMGC"
	recordVersion = 1

	recordHasROI = 1

	// maxInflateRatio bounds how many bytes one byte of a zlib stream expands to.
	maxInflateRatio = 1032
)

// MarshalBinary encodes the raster size, the region of interest and the
// compressed pixel buffer into a self describing record.
//
// Layout, little endian: "IMGC", version u8, channels u8, depth u8,
// width i32, height i32, roi flag u8, when the flag is set four f64 values
// (left, right, top, bottom), payload length u32, zlib payload.
func (img *Image[C, D]) MarshalBinary() ([]byte, error) {
	m := img.hdr()
	payload, err := img.CompressedBinary()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 64+len(payload))
	writeU8 := func(v uint8) { out = append(out, v) }
	writeU32 := func(v uint32) { out = binary.LittleEndian.AppendUint32(out, v) }
	writeF64 := func(v float64) { out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v)) }

	out = append(out, recordMagic...)
	writeU8(recordVersion)
	writeU8(uint8(m.Channels))
	writeU8(uint8(m.Depth))
	writeU32(uint32(int32(m.Width)))
	writeU32(uint32(int32(m.Height)))
	if r, ok := img.ROI(); ok {
		writeU8(recordHasROI)
		writeF64(float64(r.X))
		writeF64(float64(r.Right()))
		writeF64(float64(r.Y))
		writeF64(float64(r.Bottom()))
	} else {
		writeU8(0)
	}
	writeU32(uint32(len(payload)))
	out = append(out, payload...)
	return out, nil
}

// UnmarshalBinary replaces img with the raster decoded from a MarshalBinary record.
// The record must have been produced by an image of the same color model and depth.
func (img *Image[C, D]) UnmarshalBinary(data []byte) error {
	pos := 0
	need := func(n int) error {
		if pos+n > len(data) {
			return fmt.Errorf("%w: truncated at %d", ErrCorruptRecord, pos)
		}
		return nil
	}
	readU8 := func() (uint8, error) {
		if err := need(1); err != nil {
			return 0, err
		}
		v := data[pos]
		pos++
		return v, nil
	}
	readU32 := func() (uint32, error) {
		if err := need(4); err != nil {
			return 0, err
		}
		v := binary.LittleEndian.Uint32(data[pos:])
		pos += 4
		return v, nil
	}
	readF64 := func() (float64, error) {
		if err := need(8); err != nil {
			return 0, err
		}
		v := math.Float64frombits(binary.LittleEndian.Uint64(data[pos:]))
		pos += 8
		return v, nil
	}

	if err := need(len(recordMagic)); err != nil {
		return err
	}
	if string(data[:len(recordMagic)]) != recordMagic {
		return fmt.Errorf("%w: bad magic", ErrCorruptRecord)
	}
	pos += len(recordMagic)

	var hdr [3]uint8
	for i := range hdr {
		v, err := readU8()
		if err != nil {
			return err
		}
		hdr[i] = v
	}
	if hdr[0] != recordVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptRecord, hdr[0])
	}
	if int(hdr[1]) != channelsOf[C]() {
		return fmt.Errorf("%w: record has %d channels, %s has %d", ErrChannelMismatch, hdr[1], codeNameOf[C](), channelsOf[C]())
	}
	if native.Depth(hdr[2]) != DepthOf[D]() {
		return fmt.Errorf("%w: record depth %s, want %s", ErrUnsupportedDepth, native.Depth(hdr[2]), DepthOf[D]())
	}

	w, err := readU32()
	if err != nil {
		return err
	}
	h, err := readU32()
	if err != nil {
		return err
	}
	width, height := int(int32(w)), int(int32(h))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %w: %dx%d", ErrCorruptRecord, ErrInvalidDimensions, width, height)
	}

	flag, err := readU8()
	if err != nil {
		return err
	}
	var roi *native.Rect
	if flag&recordHasROI != 0 {
		var edges [4]float64 // left, right, top, bottom
		for i := range edges {
			if edges[i], err = readF64(); err != nil {
				return err
			}
		}
		r := native.Rect{
			X:      int(edges[0]),
			Y:      int(edges[2]),
			Width:  int(edges[1]) - int(edges[0]),
			Height: int(edges[3]) - int(edges[2]),
		}
		if !r.In(width, height) {
			return fmt.Errorf("%w: %w: %+v", ErrCorruptRecord, ErrInvalidROI, r)
		}
		roi = &r
	}

	n, err := readU32()
	if err != nil {
		return err
	}
	if err := need(int(n)); err != nil {
		return err
	}
	stride := native.AlignedStride(width, channelsOf[C](), DepthOf[D]())
	if n == 0 || int64(stride) > int64(n)*maxInflateRatio/int64(height) {
		return fmt.Errorf("%w: %d payload bytes for a %dx%d raster", ErrCorruptRecord, n, width, height)
	}

	m, err := native.Alloc(width, height, channelsOf[C](), DepthOf[D]())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	res := &Image[C, D]{mat: m}
	if err := res.SetCompressedBinary(data[pos : pos+int(n)]); err != nil {
		return err
	}
	m.ROI = roi

	if img.mat != nil {
		img.mat.Release()
	}
	img.mat = m
	return nil
}
