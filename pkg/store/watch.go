package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// EventOp describes what happened to a record file.
type EventOp string

const (
	OpSaved   EventOp = "saved"
	OpDeleted EventOp = "deleted"
)

// Event reports a change to a record in the storage root.
type Event struct {
	Name string
	Op   EventOp
}

// Watch reports record changes in the storage root until ctx is done, at
// which point the returned channel is closed. Only files carrying the
// store's extension are reported; temp files from in-flight saves are not.
// The root is created if it does not exist yet.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(s.root, dirMode); err != nil {
		return nil, recordErr("watch", "", ErrIO, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := watcher.Add(s.root); err != nil {
		_ = watcher.Close()
		return nil, recordErr("watch", "", ErrIO, err)
	}

	events := make(chan Event)
	go s.runWatch(ctx, watcher, events)
	return events, nil
}

func (s *Store) runWatch(ctx context.Context, watcher *fsnotify.Watcher, out chan<- Event) {
	defer close(out)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			e, ok := s.translate(ev)
			if !ok {
				continue
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("record watcher error", zap.String("root", s.root), zap.Error(err))
		}
	}
}

// translate maps a raw filesystem event onto a record event. A save shows
// up as a Create (rename of the temp file onto the target) or a Write.
func (s *Store) translate(ev fsnotify.Event) (Event, bool) {
	if filepath.Dir(ev.Name) != s.root {
		return Event{}, false
	}
	name, ok := strings.CutSuffix(filepath.Base(ev.Name), "."+s.ext)
	if !ok || ValidateName(name) != nil {
		return Event{}, false
	}

	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		return Event{Name: name, Op: OpSaved}, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Event{Name: name, Op: OpDeleted}, true
	default:
		return Event{}, false
	}
}
