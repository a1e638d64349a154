// Package store implements keepsake's named-record store: a flat directory
// of whole-file records, one file per name, each encoded by a pluggable codec.
//
// The directory is the only source of truth. A Store keeps no index and no
// cache; every call goes back to the filesystem and holds no file handle
// once it returns. Saves are atomic from a reader's point of view: the
// payload is written to a temp file in the same directory, synced, then
// renamed over the target.
//
// A Store assumes a single writer. It does no locking and gives no ordering
// guarantee between concurrent callers touching the same name.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ssargent/keepsake/pkg/codec"
)

// Store persists named records under a single root directory.
type Store struct {
	codec   codec.Codec
	root    string
	ext     string
	mode    os.FileMode
	logger  *zap.Logger
	metrics *Metrics
}

// New creates a Store that writes records to root using c. The root is not
// touched until the first save creates it.
func New(c codec.Codec, root string, opts ...Option) (*Store, error) {
	if c == nil {
		return nil, ErrNilCodec
	}
	if root == "" {
		return nil, errors.New("keepsake: storage root is required")
	}

	s := &Store{
		codec:  c,
		root:   filepath.Clean(root),
		ext:    DefaultExtension,
		mode:   DefaultFileMode,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ext = strings.TrimPrefix(s.ext, ".")
	if s.ext == "" || s.ext == strings.TrimPrefix(tmpSuffix, ".") || strings.ContainsAny(s.ext, `/\`) {
		return nil, fmt.Errorf("keepsake: invalid file extension %q", s.ext)
	}
	return s, nil
}

// Root returns the storage directory.
func (s *Store) Root() string { return s.root }

// Extension returns the record file extension without the leading dot.
func (s *Store) Extension() string { return s.ext }

// Codec returns the codec records are encoded with.
func (s *Store) Codec() codec.Codec { return s.codec }

// Path returns the file path for name after validating it.
func (s *Store) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return s.path(name), nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, name+"."+s.ext)
}

// Save encodes v and writes it as record name. When the record exists and
// overwrite is false, Save fails with ErrAlreadyExists and leaves the
// existing file untouched.
func (s *Store) Save(name string, v any, overwrite bool) (err error) {
	start := time.Now()
	defer func() { s.observe(OpSave, name, start, err) }()

	path, err := s.Path(name)
	if err != nil {
		return fmt.Errorf("%s: %w", OpSave, err)
	}

	if !overwrite {
		exists, err := fileExists(path)
		if err != nil {
			return recordErr(OpSave, name, ErrIO, err)
		}
		if exists {
			return recordErr(OpSave, name, ErrAlreadyExists, nil)
		}
	}

	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s %q: encode with %s: %w", OpSave, name, s.codec.Name(), err)
	}

	if err := os.MkdirAll(s.root, dirMode); err != nil {
		return recordErr(OpSave, name, ErrIO, err)
	}
	if err := writeFileAtomic(path, data, s.mode); err != nil {
		return recordErr(OpSave, name, ErrIO, err)
	}
	if s.metrics != nil {
		s.metrics.bytesWritten.Add(float64(len(data)))
	}
	return nil
}

// Load reads record name and decodes it into out, which must be a pointer.
func (s *Store) Load(name string, out any) (err error) {
	start := time.Now()
	defer func() { s.observe(OpLoad, name, start, err) }()

	path, err := s.Path(name)
	if err != nil {
		return fmt.Errorf("%s: %w", OpLoad, err)
	}

	// Same rule as Exists: only a regular file counts as a record.
	ok, err := fileExists(path)
	if err != nil {
		return recordErr(OpLoad, name, ErrIO, err)
	}
	if !ok {
		return recordErr(OpLoad, name, ErrNotFound, nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return recordErr(OpLoad, name, ErrNotFound, nil)
		}
		return recordErr(OpLoad, name, ErrIO, err)
	}
	if s.metrics != nil {
		s.metrics.bytesRead.Add(float64(len(data)))
	}

	if err := s.codec.Unmarshal(data, out); err != nil {
		return recordErr(OpLoad, name, ErrCorruptRecord, err)
	}
	return nil
}

// LoadAs loads record name into a new value of type T.
func LoadAs[T any](s *Store, name string) (T, error) {
	var v T
	err := s.Load(name, &v)
	return v, err
}

// Exists reports whether record name is present.
func (s *Store) Exists(name string) (bool, error) {
	path, err := s.Path(name)
	if err != nil {
		return false, fmt.Errorf("%s: %w", OpExists, err)
	}
	ok, err := fileExists(path)
	if err != nil {
		return false, recordErr(OpExists, name, ErrIO, err)
	}
	return ok, nil
}

// Delete removes record name. Deleting a missing record is not an error.
func (s *Store) Delete(name string) (err error) {
	start := time.Now()
	defer func() { s.observe(OpDelete, name, start, err) }()

	path, err := s.Path(name)
	if err != nil {
		return fmt.Errorf("%s: %w", OpDelete, err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return recordErr(OpDelete, name, ErrIO, err)
	}
	return nil
}

// DeleteAll removes every file directly inside the storage root, whatever
// its extension. Subdirectories and the root itself are left in place.
func (s *Store) DeleteAll() (err error) {
	start := time.Now()
	defer func() { s.observe(OpDeleteAll, "", start, err) }()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return recordErr(OpDeleteAll, "", ErrIO, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		err := os.Remove(filepath.Join(s.root, entry.Name()))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return recordErr(OpDeleteAll, entry.Name(), ErrIO, err)
		}
		removed++
	}
	s.logger.Info("deleted all records", zap.String("root", s.root), zap.Int("files", removed))
	return nil
}

func (s *Store) observe(op, name string, start time.Time, err error) {
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordOperation(op, err == nil, elapsed)
	}
	if err != nil {
		s.logger.Debug("record operation failed",
			zap.String("op", op),
			zap.String("name", name),
			zap.Error(err))
		return
	}
	s.logger.Debug("record operation",
		zap.String("op", op),
		zap.String("name", name),
		zap.Duration("elapsed", elapsed))
}
