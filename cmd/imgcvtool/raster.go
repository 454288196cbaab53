package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vearutop/imgcv"
)

// raster is the non generic part of an imgcv.Image used by subcommands that
// pick the color model at run time.
type raster interface {
	String() string
	MinMax() []imgcv.MinMax
	CountNonZero() []int
	Save(path string, opts ...func(o *imgcv.EncodeOptions)) error
	MarshalBinary() ([]byte, error)
	Release()
}

type loader func(path string) (raster, error)

func loaderOf[C imgcv.Color[C], D imgcv.Depth]() loader {
	return func(path string) (raster, error) {
		img, err := imgcv.Load[C, D](path)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
}

func unmarshalerOf[C imgcv.Color[C], D imgcv.Depth]() func(data []byte) (raster, error) {
	return func(data []byte) (raster, error) {
		img := new(imgcv.Image[C, D])
		if err := img.UnmarshalBinary(data); err != nil {
			return nil, err
		}
		return img, nil
	}
}

type model struct {
	load      loader
	unmarshal func(data []byte) (raster, error)
}

func modelOf[C imgcv.Color[C], D imgcv.Depth]() model {
	return model{load: loaderOf[C, D](), unmarshal: unmarshalerOf[C, D]()}
}

var models = map[string]model{
	"gray/8u":  modelOf[imgcv.Gray, uint8](),
	"gray/32f": modelOf[imgcv.Gray, float32](),
	"bgr/8u":   modelOf[imgcv.Bgr, uint8](),
	"bgr/32f":  modelOf[imgcv.Bgr, float32](),
	"bgra/8u":  modelOf[imgcv.Bgra, uint8](),
	"bgra/32f": modelOf[imgcv.Bgra, float32](),
	"rgb/8u":   modelOf[imgcv.Rgb, uint8](),
	"rgb/32f":  modelOf[imgcv.Rgb, float32](),
	"rgba/8u":  modelOf[imgcv.Rgba, uint8](),
	"rgba/32f": modelOf[imgcv.Rgba, float32](),
	"hsv/8u":   modelOf[imgcv.Hsv, uint8](),
	"hsv/32f":  modelOf[imgcv.Hsv, float32](),
	"ycc/8u":   modelOf[imgcv.Ycc, uint8](),
	"ycc/32f":  modelOf[imgcv.Ycc, float32](),
	"xyz/8u":   modelOf[imgcv.Xyz, uint8](),
	"xyz/32f":  modelOf[imgcv.Xyz, float32](),
}

func lookupModel(color, depth string) (model, error) {
	key := strings.ToLower(color) + "/" + strings.ToLower(depth)
	m, ok := models[key]
	if !ok {
		return model{}, fmt.Errorf("unsupported color/depth %q", key)
	}
	return m, nil
}

func loadRaster(path, color, depth string) (raster, error) {
	m, err := lookupModel(color, depth)
	if err != nil {
		return nil, err
	}
	return m.load(path)
}

const recordExt = ".imgc"

// saveRaster writes a binary record for the .imgc extension and an encoded
// image otherwise.
func saveRaster(img raster, path string, quality int) error {
	if strings.EqualFold(filepath.Ext(path), recordExt) {
		data, err := img.MarshalBinary()
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
	return img.Save(path, withQuality(quality))
}
