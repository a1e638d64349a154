package store

import (
	"errors"
	"io"
	"io/fs"
	"iter"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// listBatch bounds how many directory entries are read per syscall.
const listBatch = 64

// List returns the names of all records in the storage root, in directory
// order. The sequence is lazy and restartable: each range re-reads the
// directory. Entries added or removed while ranging may or may not appear.
// A missing root yields nothing; any other read error ends the sequence
// and is logged.
func (s *Store) List() iter.Seq[string] {
	return func(yield func(string) bool) {
		for name, err := range s.scan() {
			if err != nil {
				s.logger.Warn("listing records stopped", zap.String("root", s.root), zap.Error(err))
				return
			}
			if !yield(name) {
				return
			}
		}
	}
}

// Names returns the sorted names of all records in the storage root.
func (s *Store) Names() ([]string, error) {
	var names []string
	for name, err := range s.scan() {
		if err != nil {
			return nil, recordErr(OpList, "", ErrIO, err)
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) scan() iter.Seq2[string, error] {
	suffix := "." + s.ext
	return func(yield func(string, error) bool) {
		dir, err := os.Open(s.root)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				yield("", err)
			}
			return
		}
		defer dir.Close()

		for {
			entries, err := dir.ReadDir(listBatch)
			for _, entry := range entries {
				name, ok := s.recordName(entry, suffix)
				if ok && !yield(name, nil) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield("", err)
				}
				return
			}
		}
	}
}

func (s *Store) recordName(entry fs.DirEntry, suffix string) (string, bool) {
	if entry.IsDir() {
		return "", false
	}
	file := entry.Name()
	name, ok := strings.CutSuffix(file, suffix)
	if !ok {
		return "", false
	}
	if ValidateName(name) != nil {
		return "", false
	}
	return name, true
}
