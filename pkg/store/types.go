package store

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

const (
	// DefaultExtension is the record file extension used when none is given.
	DefaultExtension = "json"

	// DefaultFileMode is the permission set applied to record files.
	DefaultFileMode os.FileMode = 0o600

	dirMode   os.FileMode = 0o750
	tmpSuffix             = ".tmp"
)

// Op names used in errors, logs and metrics.
const (
	OpSave      = "save"
	OpLoad      = "load"
	OpExists    = "exists"
	OpDelete    = "delete"
	OpDeleteAll = "delete_all"
	OpList      = "list"
)

// Errors
var (
	ErrNilCodec      = errors.New("keepsake: codec is required")
	ErrInvalidName   = errors.New("keepsake: invalid record name")
	ErrAlreadyExists = errors.New("keepsake: record already exists")
	ErrNotFound      = errors.New("keepsake: record not found")
	ErrCorruptRecord = errors.New("keepsake: record does not decode")
	ErrIO            = errors.New("keepsake: filesystem error")
)

// RecordError describes a failed operation on a named record. Kind is one
// of the package sentinels and Err, when set, is the underlying cause.
// errors.Is matches either of them.
type RecordError struct {
	Op   string
	Name string
	Kind error
	Err  error
}

func (e *RecordError) Error() string {
	msg := e.Kind.Error()
	if e.Name != "" {
		msg = fmt.Sprintf("%s %q: %s", e.Op, e.Name, msg)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RecordError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func recordErr(op, name string, kind, err error) error {
	return &RecordError{Op: op, Name: name, Kind: kind, Err: err}
}

// Option configures a Store.
type Option func(*Store)

// WithExtension sets the record file extension. A leading dot is ignored.
func WithExtension(ext string) Option {
	return func(s *Store) { s.ext = ext }
}

// WithLogger routes store logs to l.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records operation counts and latencies on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithFileMode sets the permissions of newly written record files.
func WithFileMode(mode os.FileMode) Option {
	return func(s *Store) { s.mode = mode }
}
