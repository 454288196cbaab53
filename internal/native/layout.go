package native

import "unsafe"

// Layout describes where the visible rows of a Mat live in its buffer.
type Layout struct {
	// Offset is the byte offset of the first visible element.
	Offset int
	// Stride is the distance in bytes between rows of the underlying buffer.
	Stride int
	// RowBytes is the byte width of one visible row.
	RowBytes int
	// Rows is the number of visible rows.
	Rows int
	// Elems is the number of elements (not pixels) in one visible row.
	Elems int
}

// Resolve computes the visible layout of m. The region of interest must be in bounds.
func Resolve(m *Mat) Layout {
	pixel := m.Channels * m.Depth.Size()
	if m.ROI == nil {
		return Layout{
			Stride:   m.Stride,
			RowBytes: m.Width * pixel,
			Rows:     m.Height,
			Elems:    m.Width * m.Channels,
		}
	}
	r := m.ROI
	return Layout{
		Offset:   r.Y*m.Stride + r.X*pixel,
		Stride:   m.Stride,
		RowBytes: r.Width * pixel,
		Rows:     r.Height,
		Elems:    r.Width * m.Channels,
	}
}

// Row returns visible row y as a byte slice.
func (l Layout) Row(data []byte, y int) []byte {
	off := l.Offset + y*l.Stride
	return data[off : off+l.RowBytes : off+l.RowBytes]
}

// Bytes reinterprets a byte slice as a slice of T. The length of b must be a
// multiple of the element size and b must be suitably aligned for T.
func Bytes[T Elem](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var zero T
	n := len(b) / int(unsafe.Sizeof(zero))
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

// AsBytes is the inverse of Bytes.
func AsBytes[T Elem](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

// Row returns visible row y of m as typed elements.
func Row[T Elem](m *Mat, l Layout, y int) []T {
	return Bytes[T](l.Row(m.Data, y))
}
