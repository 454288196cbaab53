// Package imgstore keeps serialized images in a single file bbolt database.
//
// Values are the records produced by imgcv.Image.MarshalBinary prefixed with
// the time they were stored. Records live in a bucket named after the record
// version so that a future layout can coexist with old data.
package imgstore

import (
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/vearutop/imgcv"
)

const bucketVersion = "images/1"

const stampSize = 8

// ErrNotFound is returned for an unknown image name.
var ErrNotFound = errors.New("imgstore: image not found")

// Options configures Open.
type Options struct {
	// Timeout bounds waiting for the file lock, 1s by default.
	Timeout time.Duration
	// ReadOnly opens the database with a shared lock, Put and Delete fail.
	ReadOnly bool
	// Logger receives debug events, imgcv.Logger() by default.
	Logger *slog.Logger
}

// Store is an image database.
type Store struct {
	db  *bolt.DB
	log *slog.Logger
}

// Entry describes a stored image.
type Entry struct {
	Name     string
	Size     int
	Modified time.Time
}

// Open opens or creates the database at path.
func Open(path string, opts ...func(o *Options)) (*Store, error) {
	opt := Options{Timeout: time.Second}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if opt.Logger == nil {
		opt.Logger = imgcv.Logger()
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: opt.Timeout, ReadOnly: opt.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w: %v", err, path)
	}

	if !opt.ReadOnly {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists([]byte(bucketVersion))
			return err
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("could not create bucket: %v, %w", bucketVersion, err)
		}
	}

	opt.Logger.Debug("image store opened", "path", path, "readOnly", opt.ReadOnly)
	return &Store{db: db, log: opt.Logger}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores img under name, replacing a previous image with that name.
func (s *Store) Put(name string, img encoding.BinaryMarshaler) error {
	record, err := img.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal %q: %w", name, err)
	}

	value := make([]byte, stampSize, stampSize+len(record))
	binary.BigEndian.PutUint64(value, uint64(time.Now().UnixMilli()))
	value = append(value, record...)

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVersion)).Put([]byte(name), value)
	})
	if err != nil {
		return fmt.Errorf("put %q: %w", name, err)
	}
	s.log.Debug("image stored", "name", name, "bytes", len(record))
	return nil
}

// Get decodes the image stored under name into img.
func (s *Store) Get(name string, img encoding.BinaryUnmarshaler) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketVersion))
		if b == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		value := b.Get([]byte(name))
		if len(value) < stampSize {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		// The value is only valid inside the transaction, UnmarshalBinary copies it.
		if err := img.UnmarshalBinary(value[stampSize:]); err != nil {
			return fmt.Errorf("unmarshal %q: %w", name, err)
		}
		return nil
	})
}

// Load reads the image stored under name.
func Load[C imgcv.Color[C], D imgcv.Depth](s *Store, name string) (*imgcv.Image[C, D], error) {
	var img imgcv.Image[C, D]
	if err := s.Get(name, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

// Delete removes the image stored under name.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketVersion))
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return b.Delete([]byte(name))
	})
}

// List returns stored images ordered by name.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketVersion))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if len(v) < stampSize {
				return fmt.Errorf("corrupt entry %q", k)
			}
			entries = append(entries, Entry{
				Name:     string(k),
				Size:     len(v) - stampSize,
				Modified: time.UnixMilli(int64(binary.BigEndian.Uint64(v))),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
