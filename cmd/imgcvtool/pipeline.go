package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vearutop/imgcv"
)

const (
	colorGray = "gray"
	colorBGR  = "bgr"
)

const (
	opResize    = "resize"
	opThreshold = "threshold"
	opGaussian  = "gaussian"
	opErode     = "erode"
	opDilate    = "dilate"
	opFlip      = "flip"
	opROI       = "roi"
	opResetROI  = "reset_roi"
	opAdd       = "add"
	opSub       = "sub"
	opMul       = "mul"
	opNot       = "not"
)

// Pipeline is a sequence of 8-bit image operations read from YAML.
//
//	color: gray
//	steps:
//	  - op: resize
//	    width: 320
//	    height: 240
//	  - op: gaussian
//	    kernel: 5
//	  - op: threshold
//	    type: otsu
//	    max: 255
//	output:
//	  format: png
type Pipeline struct {
	// Color is the working color model, gray (default) or bgr.
	Color  string `yaml:"color"`
	Steps  []Step `yaml:"steps"`
	Output Output `yaml:"output"`
}

// Output controls how the result is written.
type Output struct {
	// Format overrides the format derived from the output extension.
	Format  string `yaml:"format"`
	Quality int    `yaml:"quality"`
}

// Step is a single operation, fields are interpreted per Op.
type Step struct {
	Op string `yaml:"op"`

	// Type is the threshold type, flip axis or resize interpolation.
	Type  string  `yaml:"type,omitempty"`
	Value float64 `yaml:"value,omitempty"`
	Max   float64 `yaml:"max,omitempty"`

	X      int     `yaml:"x,omitempty"`
	Y      int     `yaml:"y,omitempty"`
	Width  int     `yaml:"width,omitempty"`
	Height int     `yaml:"height,omitempty"`
	Scale  float64 `yaml:"scale,omitempty"`

	Kernel     int `yaml:"kernel,omitempty"`
	Iterations int `yaml:"iterations,omitempty"`
}

// LoadPipeline reads and validates a pipeline file.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParsePipeline(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePipeline decodes and validates YAML pipeline data.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

var thresholdTypes = map[string]bool{
	"binary": true, "binary-inv": true, "trunc": true, "tozero": true, "tozero-inv": true, "otsu": true,
}

// Validate checks step parameters that do not depend on the image.
func (p *Pipeline) Validate() error {
	switch p.Color {
	case "", colorGray, colorBGR:
	default:
		return fmt.Errorf("unsupported pipeline color %q", p.Color)
	}
	if p.Output.Format != "" {
		if _, err := imgcv.FormatFromExt("." + p.Output.Format); err != nil {
			return err
		}
	}

	for i, s := range p.Steps {
		if err := s.validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, s.Op, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	switch s.Op {
	case opResize:
		if s.Scale <= 0 && (s.Width <= 0 || s.Height <= 0) {
			return errors.New("width and height or scale required")
		}
		if _, err := parseInterpolation(s.Type); err != nil {
			return err
		}
	case opThreshold:
		t := s.Type
		if t == "" {
			t = "binary"
		}
		if !thresholdTypes[t] {
			return fmt.Errorf("unknown threshold type %q", s.Type)
		}
	case opGaussian:
		if s.Kernel != 0 && (s.Kernel < 3 || s.Kernel%2 == 0) {
			return fmt.Errorf("kernel must be odd and at least 3, got %d", s.Kernel)
		}
	case opErode, opDilate:
		if s.Iterations < 0 {
			return fmt.Errorf("negative iterations %d", s.Iterations)
		}
	case opFlip:
		if _, err := parseFlip(s.Type); err != nil {
			return err
		}
	case opROI:
		if s.Width <= 0 || s.Height <= 0 || s.X < 0 || s.Y < 0 {
			return fmt.Errorf("invalid roi %d,%d %dx%d", s.X, s.Y, s.Width, s.Height)
		}
	case opResetROI, opAdd, opSub, opMul, opNot:
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	return nil
}

func parseFlip(s string) (imgcv.FlipType, error) {
	switch s {
	case "", "vertical":
		return imgcv.FlipVertical, nil
	case "horizontal":
		return imgcv.FlipHorizontal, nil
	case "both":
		return imgcv.FlipVertical | imgcv.FlipHorizontal, nil
	default:
		return 0, fmt.Errorf("unknown flip axis %q", s)
	}
}

// RunFile loads in, applies the steps and writes the result to out.
func (p *Pipeline) RunFile(in, out string) error {
	if p.Color == colorBGR {
		return runFile[imgcv.Bgr](p, in, out)
	}
	return runFile[imgcv.Gray](p, in, out)
}

func runFile[C imgcv.Color[C]](p *Pipeline, in, out string) error {
	img, err := imgcv.Load[C, uint8](in)
	if err != nil {
		return err
	}

	res, err := apply(img, p.Steps)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	defer res.Release()

	if strings.EqualFold(filepath.Ext(out), recordExt) {
		return saveRaster(res, out, 0)
	}

	return res.Save(out, func(o *imgcv.EncodeOptions) {
		o.Format = p.Output.Format
		if p.Output.Quality > 0 {
			o.Quality = p.Output.Quality
		}
	})
}

// apply runs steps over img, consuming it. The returned image replaces img.
func apply[C imgcv.Color[C]](img *imgcv.Image[C, uint8], steps []Step) (*imgcv.Image[C, uint8], error) {
	log := imgcv.Logger()
	for i, s := range steps {
		next, err := applyStep(img, s)
		if err != nil {
			img.Release()
			return nil, fmt.Errorf("step %d (%s): %w", i+1, s.Op, err)
		}
		if next != img {
			img.Release()
			img = next
		}
		log.Debug("pipeline step", "step", i+1, "op", s.Op, "size", img.Size().String())
	}
	return img, nil
}

func uniform[C imgcv.Color[C]](v float64) C {
	var c C
	return c.FromScalar(imgcv.Scalar{v, v, v, v})
}

func applyStep[C imgcv.Color[C]](img *imgcv.Image[C, uint8], s Step) (*imgcv.Image[C, uint8], error) {
	switch s.Op {
	case opResize:
		it, err := parseInterpolation(s.Type)
		if err != nil {
			return nil, err
		}
		if s.Scale > 0 {
			return img.ResizeScale(s.Scale, it), nil
		}
		return img.Resize(s.Width, s.Height, it), nil
	case opThreshold:
		return threshold(img, s), nil
	case opGaussian:
		k := s.Kernel
		if k == 0 {
			k = 3
		}
		img.GaussianSmoothInPlace(k)
	case opErode:
		img.ErodeInPlace(max(s.Iterations, 1))
	case opDilate:
		img.DilateInPlace(max(s.Iterations, 1))
	case opFlip:
		t, err := parseFlip(s.Type)
		if err != nil {
			return nil, err
		}
		img.FlipInPlace(t)
	case opROI:
		r := imgcv.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
		if !r.In(img.Width(), img.Height()) {
			return nil, fmt.Errorf("%w: roi %v outside %v", imgcv.ErrInvalidROI, r, img.Size())
		}
		img.SetROI(r)
	case opResetROI:
		img.ResetROI()
	case opAdd:
		return img.AddColor(uniform[C](s.Value)), nil
	case opSub:
		return img.SubColor(uniform[C](s.Value)), nil
	case opMul:
		return img.MulScalar(s.Value), nil
	case opNot:
		return img.Not(), nil
	default:
		return nil, fmt.Errorf("unknown op %q", s.Op)
	}
	return img, nil
}

func threshold[C imgcv.Color[C]](img *imgcv.Image[C, uint8], s Step) *imgcv.Image[C, uint8] {
	maxValue := s.Max
	if maxValue == 0 {
		maxValue = 255
	}
	t, m := uniform[C](s.Value), uniform[C](maxValue)

	switch s.Type {
	case "binary-inv":
		return img.ThresholdBinaryInv(t, m)
	case "trunc":
		return img.ThresholdTrunc(t)
	case "tozero":
		return img.ThresholdToZero(t)
	case "tozero-inv":
		return img.ThresholdToZeroInv(t)
	case "otsu":
		return img.ThresholdOtsu(m)
	default:
		return img.ThresholdBinary(t, m)
	}
}

func runPipeline(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	pipelinePath := fs.String("pipeline", "", "pipeline YAML file")
	inPath := fs.String("in", "", "input image")
	outPath := fs.String("out", "", "output image")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pipelinePath == "" || *inPath == "" || *outPath == "" {
		return errors.New("missing required arguments")
	}

	p, err := LoadPipeline(filepath.Clean(*pipelinePath))
	if err != nil {
		return err
	}
	return p.RunFile(filepath.Clean(*inPath), filepath.Clean(*outPath))
}
