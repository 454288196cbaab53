package native

import (
	"fmt"
	"math"
	"sort"
)

// Color model names used to build conversion codes such as "BGR2HSV".
const (
	ModelBGR   = "BGR"
	ModelRGB   = "RGB"
	ModelBGRA  = "BGRA"
	ModelRGBA  = "RGBA"
	ModelGray  = "GRAY"
	ModelHSV   = "HSV"
	ModelYCrCb = "YCrCb"
	ModelXYZ   = "XYZ"
)

// colorModel maps pixels to and from normalized RGB with alpha.
// unit is 255 for 8U and 1 for 32F.
type colorModel struct {
	channels int
	toRGB    func(px []float64, unit float64) (r, g, b, a float64)
	fromRGB  func(r, g, b, a, unit float64, px []float64)
}

var models = map[string]colorModel{
	ModelBGR: {
		channels: 3,
		toRGB: func(px []float64, unit float64) (float64, float64, float64, float64) {
			return px[2] / unit, px[1] / unit, px[0] / unit, 1
		},
		fromRGB: func(r, g, b, _, unit float64, px []float64) {
			px[0], px[1], px[2] = b*unit, g*unit, r*unit
		},
	},
	ModelRGB: {
		channels: 3,
		toRGB: func(px []float64, unit float64) (float64, float64, float64, float64) {
			return px[0] / unit, px[1] / unit, px[2] / unit, 1
		},
		fromRGB: func(r, g, b, _, unit float64, px []float64) {
			px[0], px[1], px[2] = r*unit, g*unit, b*unit
		},
	},
	ModelBGRA: {
		channels: 4,
		toRGB: func(px []float64, unit float64) (float64, float64, float64, float64) {
			return px[2] / unit, px[1] / unit, px[0] / unit, px[3] / unit
		},
		fromRGB: func(r, g, b, a, unit float64, px []float64) {
			px[0], px[1], px[2], px[3] = b*unit, g*unit, r*unit, a*unit
		},
	},
	ModelRGBA: {
		channels: 4,
		toRGB: func(px []float64, unit float64) (float64, float64, float64, float64) {
			return px[0] / unit, px[1] / unit, px[2] / unit, px[3] / unit
		},
		fromRGB: func(r, g, b, a, unit float64, px []float64) {
			px[0], px[1], px[2], px[3] = r*unit, g*unit, b*unit, a*unit
		},
	},
	ModelGray: {
		channels: 1,
		toRGB: func(px []float64, unit float64) (float64, float64, float64, float64) {
			v := px[0] / unit
			return v, v, v, 1
		},
		fromRGB: func(r, g, b, _, unit float64, px []float64) {
			px[0] = luma(r, g, b) * unit
		},
	},
	ModelHSV: {
		channels: 3,
		toRGB:    hsvToRGB,
		fromRGB:  rgbToHSV,
	},
	ModelYCrCb: {
		channels: 3,
		toRGB:    yccToRGB,
		fromRGB:  rgbToYCC,
	},
	ModelXYZ: {
		channels: 3,
		toRGB: func(px []float64, unit float64) (float64, float64, float64, float64) {
			r, g, b := xyzToRGB(px[0]/unit, px[1]/unit, px[2]/unit)
			return r, g, b, 1
		},
		fromRGB: func(r, g, b, _, unit float64, px []float64) {
			x, y, z := rgbToXYZ(r, g, b)
			px[0], px[1], px[2] = x*unit, y*unit, z*unit
		},
	},
}

type conversion struct {
	src, dst colorModel
}

var registry = map[string]conversion{}

func init() {
	direct := func(src, dst string) {
		registry[Code(src, dst)] = conversion{src: models[src], dst: models[dst]}
	}
	for name := range models {
		for _, hub := range []string{ModelBGR, ModelRGB} {
			if name == hub {
				continue
			}
			direct(name, hub)
			direct(hub, name)
		}
	}
	for _, pair := range [][2]string{
		{ModelBGRA, ModelRGBA},
		{ModelGray, ModelBGRA},
		{ModelGray, ModelRGBA},
	} {
		direct(pair[0], pair[1])
		direct(pair[1], pair[0])
	}
}

// Code builds the conversion code for a pair of color models.
func Code(src, dst string) string {
	return src + "2" + dst
}

// HasConversion reports whether code is a registered direct conversion.
func HasConversion(code string) bool {
	_, ok := registry[code]
	return ok
}

// Conversions lists registered conversion codes in lexical order.
func Conversions() []string {
	codes := make([]string, 0, len(registry))
	for c := range registry {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// CvtColor converts src into dst using a registered conversion code.
// Both Mats must share depth and visible size.
func CvtColor(src, dst *Mat, code string) {
	conv, ok := registry[code]
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrNoConversion, code))
	}
	sameSize(src, dst)
	src.mustNoCOI()
	dst.mustNoCOI()
	if src.Channels != conv.src.channels || dst.Channels != conv.dst.channels {
		panic(fmt.Errorf("%w: %s needs %d->%d channels, got %d->%d", ErrChannelMismatch,
			code, conv.src.channels, conv.dst.channels, src.Channels, dst.Channels))
	}
	if src.Depth != dst.Depth {
		panic(fmt.Errorf("%w: %s vs %s", ErrDepthMismatch, src.Depth, dst.Depth))
	}
	switch src.Depth {
	case Depth8U:
		cvtRows[uint8](src, dst, conv, 255)
	case Depth32F:
		cvtRows[float32](src, dst, conv, 1)
	default:
		panic(ErrUnsupportedDepth)
	}
}

func cvtRows[T Elem](src, dst *Mat, conv conversion, unit float64) {
	ls, ld := Resolve(src), Resolve(dst)
	sc, dc := conv.src.channels, conv.dst.channels
	ParallelFor(ld.Rows, func(start, end int) {
		var in, out [MaxChannels]float64
		for y := start; y < end; y++ {
			rs, rd := Row[T](src, ls, y), Row[T](dst, ld, y)
			for x := 0; x*dc < len(rd); x++ {
				for c := 0; c < sc; c++ {
					in[c] = float64(rs[x*sc+c])
				}
				r, g, b, a := conv.src.toRGB(in[:sc], unit)
				conv.dst.fromRGB(r, g, b, a, unit, out[:dc])
				for c := 0; c < dc; c++ {
					rd[x*dc+c] = saturate[T](out[c])
				}
			}
		}
	})
}

func luma(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// hsvToRGB decodes H/2, S*255, V*255 for 8U and H in degrees, S and V in 0..1 for 32F.
func hsvToRGB(px []float64, unit float64) (float64, float64, float64, float64) {
	h, s, v := px[0], px[1]/unit, px[2]/unit
	if unit > 1 {
		h *= 2
	}
	if s <= 0 {
		return v, v, v, 1
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch int(i) {
	case 0:
		return v, t, p, 1
	case 1:
		return q, v, p, 1
	case 2:
		return p, v, t, 1
	case 3:
		return p, q, v, 1
	case 4:
		return t, p, v, 1
	default:
		return v, p, q, 1
	}
}

func rgbToHSV(r, g, b, _, unit float64, px []float64) {
	v := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	d := v - lo
	var h, s float64
	if v > 0 {
		s = d / v
	}
	if d > 0 {
		switch v {
		case r:
			h = 60 * (g - b) / d
		case g:
			h = 120 + 60*(b-r)/d
		default:
			h = 240 + 60*(r-g)/d
		}
		if h < 0 {
			h += 360
		}
	}
	if unit > 1 {
		h /= 2
	}
	px[0], px[1], px[2] = h, s*unit, v*unit
}

func yccDelta(unit float64) float64 {
	if unit > 1 {
		return 128.0 / 255
	}
	return 0.5
}

func yccToRGB(px []float64, unit float64) (float64, float64, float64, float64) {
	d := yccDelta(unit)
	y, cr, cb := px[0]/unit, px[1]/unit-d, px[2]/unit-d
	return y + 1.403*cr, y - 0.714*cr - 0.344*cb, y + 1.773*cb, 1
}

func rgbToYCC(r, g, b, _, unit float64, px []float64) {
	d := yccDelta(unit)
	y := luma(r, g, b)
	px[0] = y * unit
	px[1] = ((r-y)*0.713 + d) * unit
	px[2] = ((b-y)*0.564 + d) * unit
}

// Matrices are D65 linear sRGB <-> XYZ.
func rgbToXYZ(r, g, b float64) (float64, float64, float64) {
	return 0.4123908*r + 0.35758433*g + 0.1804808*b,
		0.212639*r + 0.71516865*g + 0.07219232*b,
		0.019330818*r + 0.11919478*g + 0.95053214*b
}

func xyzToRGB(x, y, z float64) (float64, float64, float64) {
	return 3.24097*x - 1.5373832*y - 0.49861076*z,
		-0.96924365*x + 1.8759675*y + 0.041555058*z,
		0.05563008*x - 0.20397696*y + 1.0569715*z
}
