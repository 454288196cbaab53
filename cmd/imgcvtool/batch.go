package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/vearutop/imgcv"
)

// BatchResult summarizes a batch run.
type BatchResult struct {
	Processed int
	Failed    int
}

// RunBatch applies p to every file in inputs and writes results to outDir
// keeping the base name. The extension follows p.Output.Format when set.
// At most jobs files are processed at once. With keepGoing, per-file errors
// are logged and counted instead of stopping the batch.
func RunBatch(ctx context.Context, p *Pipeline, inputs []string, outDir string, jobs int, keepGoing bool) (BatchResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchResult{}, err
	}

	var processed, failed atomic.Int64
	log := imgcv.Logger()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := filepath.Join(outDir, outputName(in, p.Output.Format))
			if err := p.RunFile(in, out); err != nil {
				if !keepGoing {
					return err
				}
				failed.Add(1)
				log.Warn("batch file failed", "file", in, "error", err)
				return nil
			}
			processed.Add(1)
			log.Debug("batch file done", "file", in, "out", out)
			return nil
		})
	}

	err := g.Wait()
	return BatchResult{Processed: int(processed.Load()), Failed: int(failed.Load())}, err
}

func outputName(in, format string) string {
	base := filepath.Base(in)
	if format == "" {
		return base
	}
	ext := "." + format
	if format == imgcv.FormatJPEG {
		ext = ".jpg"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func runBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	pipelinePath := fs.String("pipeline", "", "pipeline YAML file")
	outDir := fs.String("out-dir", "", "output directory")
	jobs := fs.Int("jobs", 0, "files processed concurrently, 0 for GOMAXPROCS")
	keepGoing := fs.Bool("keep-going", false, "continue after a failed file")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pipelinePath == "" || *outDir == "" || fs.NArg() == 0 {
		return errors.New("missing required arguments")
	}

	p, err := LoadPipeline(filepath.Clean(*pipelinePath))
	if err != nil {
		return err
	}

	res, err := RunBatch(context.Background(), p, fs.Args(), filepath.Clean(*outDir), *jobs, *keepGoing)
	fmt.Fprintf(os.Stdout, "processed %d, failed %d\n", res.Processed, res.Failed)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", res.Failed, len(fs.Args()))
	}
	return nil
}
