package imgcv

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// CompressOptions controls CompressedBinary.
type CompressOptions struct {
	// Level is a zlib compression level, zlib.BestCompression by default.
	Level int
}

// Binary returns a copy of the whole pixel buffer, row padding included,
// regardless of the region of interest.
func (img *Image[C, D]) Binary() []byte {
	return append([]byte(nil), img.hdr().Data...)
}

// SetBinary overwrites the pixel buffer with data, regardless of the region of
// interest. At most len(Binary()) bytes are copied.
func (img *Image[C, D]) SetBinary(data []byte) {
	copy(img.hdr().Data, data)
}

// CompressedBinary returns the zlib compressed pixel buffer.
func (img *Image[C, D]) CompressedBinary(opts ...func(o *CompressOptions)) ([]byte, error) {
	opt := CompressOptions{Level: zlib.BestCompression}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, opt.Level)
	if err != nil {
		return nil, fmt.Errorf("zlib writer: %w", err)
	}
	if _, err := zw.Write(img.hdr().Data); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	return buf.Bytes(), nil
}

// SetCompressedBinary decompresses data produced by CompressedBinary into the
// pixel buffer.
func (img *Image[C, D]) SetCompressedBinary(data []byte) error {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("zlib reader: %w", err)
	}
	defer zr.Close()

	buf := img.hdr().Data
	n, err := io.ReadFull(zr, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("decompress: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: %d of %d pixel bytes", ErrCorruptRecord, n, len(buf))
	}
	return nil
}
