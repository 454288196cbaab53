package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vearutop/imgcv"
)

func main() {
	verbose := flag.Bool("v", false, "debug logging to stderr")
	workers := flag.Int("workers", 0, "max goroutines per operation, 0 for GOMAXPROCS")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	imgcv.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	imgcv.SetMaxWorkers(*workers)

	var err error
	switch args[0] {
	case "info":
		err = runInfo(args[1:])
	case "convert":
		err = runConvert(args[1:])
	case "resize":
		err = runResize(args[1:])
	case "threshold":
		err = runThreshold(args[1:])
	case "run":
		err = runPipeline(args[1:])
	case "batch":
		err = runBatch(args[1:])
	case "store":
		err = runStore(args[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: imgcvtool [-v] [-workers n] <command> [args]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  info      -in input.png [-color bgr] [-depth 8u]")
	fmt.Fprintln(os.Stderr, "  convert   -in input.png -out output.imgc -color hsv [-depth 32f]")
	fmt.Fprintln(os.Stderr, "  resize    -in input.jpg -out output.jpg -w 640 -h 480 [-interp linear] [-keep-aspect] [-q 90]")
	fmt.Fprintln(os.Stderr, "  threshold -in input.png -out mask.png [-t 128] [-max 255] [-type binary|binary-inv|trunc|tozero|tozero-inv|otsu]")
	fmt.Fprintln(os.Stderr, "  run       -pipeline p.yaml -in input.png -out output.png")
	fmt.Fprintln(os.Stderr, "  batch     -pipeline p.yaml -out-dir dir [-jobs 4] files...")
	fmt.Fprintln(os.Stderr, "  store     -db images.db put|get|list|rm [args]")
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image")
	color := fs.String("color", "bgr", "color model to load as")
	depth := fs.String("depth", "8u", "element depth to load as, 8u or 32f")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return errors.New("missing required arguments")
	}

	img, err := loadRaster(filepath.Clean(*inPath), *color, *depth)
	if err != nil {
		return err
	}
	defer img.Release()

	fmt.Fprintln(os.Stdout, img.String())
	nz := img.CountNonZero()
	for i, mm := range img.MinMax() {
		fmt.Fprintf(os.Stdout, "channel %d: min %g at %v, max %g at %v, non-zero %d\n",
			i, mm.Min, mm.MinLoc, mm.Max, mm.MaxLoc, nz[i])
	}
	return nil
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image")
	outPath := fs.String("out", "", "output image, .imgc writes a binary record")
	color := fs.String("color", "bgr", "target color model")
	depth := fs.String("depth", "8u", "target depth, 8u or 32f")
	q := fs.Int("q", 90, "JPEG quality")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return errors.New("missing required arguments")
	}

	img, err := loadRaster(filepath.Clean(*inPath), *color, *depth)
	if err != nil {
		return err
	}
	defer img.Release()

	return saveRaster(img, filepath.Clean(*outPath), *q)
}

func runResize(args []string) error {
	fs := flag.NewFlagSet("resize", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image")
	outPath := fs.String("out", "", "output image")
	width := fs.Int("w", 0, "target width")
	height := fs.Int("h", 0, "target height")
	interp := fs.String("interp", "linear", "nearest, linear, cubic or lanczos3")
	keepAspect := fs.Bool("keep-aspect", false, "fit within w x h preserving aspect ratio")
	q := fs.Int("q", 90, "JPEG quality")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" || *width <= 0 || *height <= 0 {
		return errors.New("missing required arguments")
	}
	it, err := parseInterpolation(*interp)
	if err != nil {
		return err
	}

	img, err := imgcv.Load[imgcv.Bgra, uint8](filepath.Clean(*inPath))
	if err != nil {
		return err
	}
	defer img.Release()

	var res *imgcv.Image[imgcv.Bgra, uint8]
	if *keepAspect {
		res = img.ResizeKeepAspect(*width, *height, it)
	} else {
		res = img.Resize(*width, *height, it)
	}
	defer res.Release()

	return res.Save(filepath.Clean(*outPath), withQuality(*q))
}

func runThreshold(args []string) error {
	fs := flag.NewFlagSet("threshold", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image")
	outPath := fs.String("out", "", "output image")
	level := fs.Float64("t", 128, "threshold level")
	maxValue := fs.Float64("max", 255, "value for pixels passing the threshold")
	typ := fs.String("type", "binary", "binary, binary-inv, trunc, tozero, tozero-inv or otsu")
	color := fs.Bool("color", false, "threshold every channel instead of gray")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return errors.New("missing required arguments")
	}
	step := Step{Op: opThreshold, Type: *typ, Value: *level, Max: *maxValue}
	p := &Pipeline{Steps: []Step{step}}
	if err := p.Validate(); err != nil {
		return err
	}
	if *color {
		p.Color = colorBGR
	}
	return p.RunFile(filepath.Clean(*inPath), filepath.Clean(*outPath))
}

func parseInterpolation(s string) (imgcv.Interpolation, error) {
	switch strings.ToLower(s) {
	case "", "linear", "bilinear":
		return imgcv.InterpolationLinear, nil
	case "nearest":
		return imgcv.InterpolationNearest, nil
	case "cubic", "bicubic":
		return imgcv.InterpolationCubic, nil
	case "lanczos3", "lanczos":
		return imgcv.InterpolationLanczos3, nil
	default:
		return 0, fmt.Errorf("unknown interpolation %q", s)
	}
}

func withQuality(q int) func(o *imgcv.EncodeOptions) {
	return func(o *imgcv.EncodeOptions) { o.Quality = q }
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
