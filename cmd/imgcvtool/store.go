package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vearutop/imgcv/imgstore"
)

func runStore(args []string) error {
	fs := flag.NewFlagSet("store", flag.ContinueOnError)
	dbPath := fs.String("db", "images.db", "image database file")
	color := fs.String("color", "bgr", "color model for put and get")
	depth := fs.String("depth", "8u", "depth for put and get, 8u or 32f")
	q := fs.Int("q", 90, "JPEG quality for get")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("missing store command: put, get, list or rm")
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	readOnly := cmd == "list" || cmd == "get"

	s, err := imgstore.Open(filepath.Clean(*dbPath), func(o *imgstore.Options) { o.ReadOnly = readOnly })
	if err != nil {
		return err
	}
	defer s.Close()

	switch cmd {
	case "put":
		// put name image
		if len(rest) != 2 {
			return errors.New("usage: store put <name> <image>")
		}
		img, err := loadRaster(filepath.Clean(rest[1]), *color, *depth)
		if err != nil {
			return err
		}
		defer img.Release()
		return s.Put(rest[0], img)
	case "get":
		// get name output
		if len(rest) != 2 {
			return errors.New("usage: store get <name> <output>")
		}
		return storeGet(s, rest[0], filepath.Clean(rest[1]), *color, *depth, *q)
	case "list":
		entries, err := s.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(os.Stdout, "%s\t%d\t%s\n", e.Name, e.Size, e.Modified.Format(time.RFC3339))
		}
		return nil
	case "rm":
		if len(rest) == 0 {
			return errors.New("usage: store rm <name>...")
		}
		for _, name := range rest {
			if err := s.Delete(name); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown store command %q", cmd)
	}
}

type rawRecord struct {
	data []byte
}

func (r *rawRecord) UnmarshalBinary(data []byte) error {
	r.data = append(r.data[:0], data...)
	return nil
}

func storeGet(s *imgstore.Store, name, out, color, depth string, quality int) error {
	m, err := lookupModel(color, depth)
	if err != nil {
		return err
	}

	var rec rawRecord
	if err := s.Get(name, &rec); err != nil {
		return err
	}

	img, err := m.unmarshal(rec.data)
	if err != nil {
		return fmt.Errorf("%s as %s/%s: %w", name, color, depth, err)
	}
	defer img.Release()

	return saveRaster(img, out, quality)
}
