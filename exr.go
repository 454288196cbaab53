package imgcv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/vearutop/imgcv/internal/native"
)

// FormatEXR is a single part scanline OpenEXR file with 32-bit float channels.
const FormatEXR = "exr"

const exrMagic = 20000630

const (
	exrFlagTiled = 0x200
	exrFlagDeep  = 0x800
	exrFlagMulti = 0x1000
)

const (
	exrCompressionNone = 0
	exrCompressionZips = 2
	exrCompressionZip  = 3
)

const (
	exrPixelUint  = 0
	exrPixelHalf  = 1
	exrPixelFloat = 2
)

// ErrEXR is wrapped by OpenEXR decoding errors.
var ErrEXR = errors.New("imgcv: invalid OpenEXR data")

type exrChannel struct {
	name      string
	pixelType int32
	// plane is the BGR element index, -1 for luminance, -2 when unused.
	plane int
}

func (c exrChannel) size() int {
	if c.pixelType == exrPixelHalf {
		return 2
	}
	return 4
}

type exrHeader struct {
	channels    []exrChannel
	compression byte
	window      [4]int32
}

func (h exrHeader) width() int  { return int(h.window[2]) - int(h.window[0]) + 1 }
func (h exrHeader) height() int { return int(h.window[3]) - int(h.window[1]) + 1 }

func (h exrHeader) blockLines() int {
	if h.compression == exrCompressionZip {
		return 16
	}
	return 1
}

func (h exrHeader) lineBytes() int {
	n := 0
	for _, c := range h.channels {
		n += h.width() * c.size()
	}
	return n
}

func isEXR(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == exrMagic
}

// LoadEXR reads an OpenEXR file, see DecodeEXR.
func LoadEXR[C Color[C], D Depth](path string) (*Image[C, D], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := DecodeEXR[C, D](data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return img, nil
}

// DecodeEXR decodes a scanline OpenEXR image with uncompressed, ZIPS or ZIP
// blocks. R, G and B channels (or a single Y channel) are read as linear
// values, other channels are ignored. Conversion to 8-bit depth rescales the
// value range to 0-255.
func DecodeEXR[C Color[C], D Depth](data []byte) (*Image[C, D], error) {
	return decodeEXR[C, D](data, 0)
}

func decodeEXR[C Color[C], D Depth](data []byte, maxPixels int) (*Image[C, D], error) {
	r := bytes.NewReader(data)
	h, err := readEXRHeader(r)
	if err != nil {
		return nil, err
	}
	avail := int64(r.Len())
	if h.compression != exrCompressionNone {
		avail *= maxInflateRatio
	}
	if int64(h.lineBytes()) > avail/int64(h.height()) {
		return nil, fmt.Errorf("%w: %dx%d data window exceeds %d bytes of scanline data", ErrEXR, h.width(), h.height(), r.Len())
	}
	if maxPixels > 0 && h.width()*h.height() > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidDimensions, h.width(), h.height(), maxPixels)
	}

	bgr, err := newImage[Bgr, float32](h.width(), h.height())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEXR, err)
	}
	if err := readEXRBlocks(r, h, bgr); err != nil {
		bgr.Release()
		return nil, err
	}
	Logger().Debug("exr decoded", "size", bgr.Size().String(), "compression", h.compression, "channels", len(h.channels))

	if codeNameOf[C]() == native.ModelBGR && DepthOf[D]() == Depth32F {
		return any(bgr).(*Image[C, D]), nil
	}
	defer bgr.Release()
	return Convert[C, D](bgr), nil
}

func readEXRHeader(r *bytes.Reader) (exrHeader, error) {
	var h exrHeader

	magic, err := readU32(r)
	if err != nil || magic != exrMagic {
		return h, fmt.Errorf("%w: bad magic", ErrEXR)
	}
	version, err := readU32(r)
	if err != nil {
		return h, err
	}
	if version&(exrFlagTiled|exrFlagDeep|exrFlagMulti) != 0 {
		return h, fmt.Errorf("%w: only single part scanline files are supported", ErrEXR)
	}

	hasWindow := false
	for {
		name, err := readCString(r)
		if err != nil {
			return h, err
		}
		if name == "" {
			break
		}
		typ, err := readCString(r)
		if err != nil {
			return h, err
		}
		size, err := readU32(r)
		if err != nil {
			return h, err
		}
		if int64(size) > int64(r.Len()) {
			return h, fmt.Errorf("%w: attribute %s overflows header", ErrEXR, name)
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return h, err
		}

		switch name {
		case "channels":
			if typ != "chlist" {
				return h, fmt.Errorf("%w: channels of type %s", ErrEXR, typ)
			}
			if h.channels, err = parseEXRChannels(payload); err != nil {
				return h, err
			}
		case "dataWindow":
			if typ != "box2i" || len(payload) != 16 {
				return h, fmt.Errorf("%w: dataWindow", ErrEXR)
			}
			for i := range h.window {
				h.window[i] = int32(binary.LittleEndian.Uint32(payload[i*4:]))
			}
			hasWindow = true
		case "compression":
			if len(payload) < 1 {
				return h, fmt.Errorf("%w: compression", ErrEXR)
			}
			h.compression = payload[0]
		}
	}

	switch {
	case len(h.channels) == 0:
		return h, fmt.Errorf("%w: no channels", ErrEXR)
	case !hasWindow:
		return h, fmt.Errorf("%w: no dataWindow", ErrEXR)
	case h.width() <= 0 || h.height() <= 0:
		return h, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, h.width(), h.height())
	}
	switch h.compression {
	case exrCompressionNone, exrCompressionZips, exrCompressionZip:
	default:
		return h, fmt.Errorf("%w: compression %d is not supported", ErrEXR, h.compression)
	}

	used := false
	for _, c := range h.channels {
		used = used || c.plane != -2
	}
	if !used {
		return h, fmt.Errorf("%w: no R, G, B or Y channel", ErrEXR)
	}
	return h, nil
}

func parseEXRChannels(data []byte) ([]exrChannel, error) {
	r := bytes.NewReader(data)
	var channels []exrChannel
	for {
		name, err := readCString(r)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return channels, nil
		}
		// pixel type, pLinear with 3 reserved bytes, x and y sampling
		var rec [16]byte
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, err
		}
		c := exrChannel{name: name, pixelType: int32(binary.LittleEndian.Uint32(rec[0:]))}
		if c.pixelType < exrPixelUint || c.pixelType > exrPixelFloat {
			return nil, fmt.Errorf("%w: channel %s has pixel type %d", ErrEXR, name, c.pixelType)
		}
		if binary.LittleEndian.Uint32(rec[8:]) != 1 || binary.LittleEndian.Uint32(rec[12:]) != 1 {
			return nil, fmt.Errorf("%w: channel %s is subsampled", ErrEXR, name)
		}

		switch strings.ToUpper(name) {
		case "B":
			c.plane = 0
		case "G":
			c.plane = 1
		case "R":
			c.plane = 2
		case "Y":
			c.plane = -1
		default:
			c.plane = -2
		}
		channels = append(channels, c)
	}
}

func readEXRBlocks(r *bytes.Reader, h exrHeader, dst *Image[Bgr, float32]) error {
	height, lines := h.height(), h.blockLines()
	offsets := make([]uint64, (height+lines-1)/lines)
	for i := range offsets {
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		offsets[i] = binary.LittleEndian.Uint64(buf[:])
	}

	v := viewOf(dst)
	row := v.scratch()
	for _, off := range offsets {
		if off == 0 {
			continue
		}
		if _, err := r.Seek(int64(off), io.SeekStart); err != nil {
			return err
		}
		y, err := readU32(r)
		if err != nil {
			return err
		}
		size, err := readU32(r)
		if err != nil {
			return err
		}
		if int64(size) > int64(r.Len()) {
			return fmt.Errorf("%w: block at %d truncated", ErrEXR, off)
		}
		raw := make([]byte, size)
		if _, err := io.ReadFull(r, raw); err != nil {
			return err
		}

		start := int(int32(y) - h.window[1])
		if start < 0 || start >= height {
			return fmt.Errorf("%w: scanline %d out of bounds", ErrEXR, int32(y))
		}
		n := min(lines, height-start)
		data, err := exrDecompress(h.compression, raw, n*h.lineBytes())
		if err != nil {
			return err
		}

		for i := 0; i < n; i++ {
			exrDecodeLine(h, data[i*h.lineBytes():(i+1)*h.lineBytes()], row)
			v.store(start+i, row)
		}
	}
	return nil
}

// exrDecodeLine spreads one scanline, stored channel after channel, into
// interleaved BGR elements.
func exrDecodeLine(h exrHeader, line []byte, row []float32) {
	w := h.width()
	clear(row)
	for _, c := range h.channels {
		n := w * c.size()
		src := line[:n]
		line = line[n:]
		if c.plane == -2 {
			continue
		}
		for x := 0; x < w; x++ {
			var f float32
			switch c.pixelType {
			case exrPixelHalf:
				f = halfToFloat32(binary.LittleEndian.Uint16(src[x*2:]))
			case exrPixelFloat:
				f = math.Float32frombits(binary.LittleEndian.Uint32(src[x*4:]))
			default:
				f = float32(binary.LittleEndian.Uint32(src[x*4:]))
			}
			if c.plane == -1 {
				row[x*3], row[x*3+1], row[x*3+2] = f, f, f
			} else {
				row[x*3+c.plane] = f
			}
		}
	}
}

func exrDecompress(compression byte, data []byte, expected int) ([]byte, error) {
	// Blocks that did not shrink are stored raw regardless of compression.
	if compression == exrCompressionNone || len(data) == expected {
		if len(data) != expected {
			return nil, fmt.Errorf("%w: block has %d bytes, want %d", ErrEXR, len(data), expected)
		}
		return data, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEXR, err)
	}
	defer zr.Close()

	out := make([]byte, expected)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEXR, err)
	}
	for i := 1; i < len(out); i++ {
		out[i] = out[i-1] + out[i] - 128
	}
	return exrInterleave(out), nil
}

// exrInterleave undoes exrSplit.
func exrInterleave(data []byte) []byte {
	half := (len(data) + 1) / 2
	out := make([]byte, len(data))
	for i := range out {
		if i%2 == 0 {
			out[i] = data[i/2]
		} else {
			out[i] = data[half+i/2]
		}
	}
	return out
}

// exrSplit moves even bytes to the first half and odd bytes to the second.
func exrSplit(data []byte) []byte {
	half := (len(data) + 1) / 2
	out := make([]byte, len(data))
	for i, b := range data {
		if i%2 == 0 {
			out[i/2] = b
		} else {
			out[half+i/2] = b
		}
	}
	return out
}

// EncodeEXR writes the visible region as a ZIP compressed OpenEXR file with
// 32-bit float B, G and R channels. Values are written as they are, without
// rescaling 8-bit data.
func (img *Image[C, D]) EncodeEXR(w io.Writer) error {
	var bgr *Image[Bgr, float32]
	if codeNameOf[C]() == native.ModelBGR && DepthOf[D]() == Depth32F {
		bgr = any(img).(*Image[Bgr, float32])
	} else {
		bgr = convertNoScale(img)
		defer bgr.Release()
	}

	v := viewOf(bgr)
	width, height := v.l.Elems/3, v.l.Rows
	h := exrHeader{
		channels: []exrChannel{
			{name: "B", pixelType: exrPixelFloat, plane: 0},
			{name: "G", pixelType: exrPixelFloat, plane: 1},
			{name: "R", pixelType: exrPixelFloat, plane: 2},
		},
		compression: exrCompressionZip,
		window:      [4]int32{0, 0, int32(width - 1), int32(height - 1)},
	}

	var hdr bytes.Buffer
	writeEXRHeader(&hdr, h)

	lines := h.blockLines()
	blocks := make([][]byte, 0, (height+lines-1)/lines)
	row := v.scratch()
	for y := 0; y < height; y += lines {
		n := min(lines, height-y)
		raw := make([]byte, 0, n*h.lineBytes())
		for i := 0; i < n; i++ {
			v.load(y+i, row)
			for plane := 0; plane < 3; plane++ {
				for x := 0; x < width; x++ {
					raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(row[x*3+plane]))
				}
			}
		}
		packed, err := exrCompress(raw)
		if err != nil {
			return err
		}
		block := binary.LittleEndian.AppendUint32(nil, uint32(int32(y)))
		block = binary.LittleEndian.AppendUint32(block, uint32(len(packed)))
		blocks = append(blocks, append(block, packed...))
	}

	offset := uint64(hdr.Len() + 8*len(blocks))
	for _, b := range blocks {
		hdr.Write(binary.LittleEndian.AppendUint64(nil, offset))
		offset += uint64(len(b))
	}
	for _, b := range blocks {
		hdr.Write(b)
	}
	_, err := w.Write(hdr.Bytes())
	return err
}

func convertNoScale[C Color[C], D Depth](img *Image[C, D]) *Image[Bgr, float32] {
	f := ConvertScale[float32](img, 1, 0)
	defer f.Release()
	return Convert[Bgr, float32](f)
}

func exrCompress(raw []byte) ([]byte, error) {
	data := exrSplit(raw)
	for i := len(data) - 1; i > 0; i-- {
		data[i] = data[i] - data[i-1] + 128
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if buf.Len() >= len(raw) {
		return raw, nil
	}
	return buf.Bytes(), nil
}

func writeEXRHeader(buf *bytes.Buffer, h exrHeader) {
	u32 := func(v uint32) { buf.Write(binary.LittleEndian.AppendUint32(nil, v)) }
	attr := func(name, typ string, payload []byte) {
		buf.WriteString(name)
		buf.WriteByte(0)
		buf.WriteString(typ)
		buf.WriteByte(0)
		u32(uint32(len(payload)))
		buf.Write(payload)
	}
	f32 := func(p []byte, v float32) []byte { return binary.LittleEndian.AppendUint32(p, math.Float32bits(v)) }

	u32(exrMagic)
	u32(2)

	var chlist []byte
	for _, c := range h.channels {
		chlist = append(chlist, c.name...)
		chlist = append(chlist, 0)
		chlist = binary.LittleEndian.AppendUint32(chlist, uint32(c.pixelType))
		chlist = append(chlist, 0, 0, 0, 0)
		chlist = binary.LittleEndian.AppendUint32(chlist, 1)
		chlist = binary.LittleEndian.AppendUint32(chlist, 1)
	}
	chlist = append(chlist, 0)

	var box []byte
	for _, v := range h.window {
		box = binary.LittleEndian.AppendUint32(box, uint32(v))
	}

	attr("channels", "chlist", chlist)
	attr("compression", "compression", []byte{h.compression})
	attr("dataWindow", "box2i", box)
	attr("displayWindow", "box2i", box)
	attr("lineOrder", "lineOrder", []byte{0})
	attr("pixelAspectRatio", "float", f32(nil, 1))
	attr("screenWindowCenter", "v2f", f32(f32(nil, 0), 0))
	attr("screenWindowWidth", "float", f32(nil, 1))
	buf.WriteByte(0)
}

func readCString(r *bytes.Reader) (string, error) {
	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEXR, err)
		}
		if b == 0 {
			return sb.String(), nil
		}
		if sb.Len() > 255 {
			return "", fmt.Errorf("%w: name too long", ErrEXR)
		}
		sb.WriteByte(b)
	}
}

func readU32(r *bytes.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEXR, err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := int32(h>>10) & 0x1f
	mant := uint32(h & 0x3ff)

	switch {
	case exp == 0 && mant == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// subnormal, normalize
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x3ff
	case exp == 31:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	}
	return math.Float32frombits(sign | uint32(exp+127-15)<<23 | mant<<13)
}
