package store

import (
	"fmt"
	"strings"
)

// ValidateName reports whether name can be used as a record name. A valid
// name is non-empty and resolves to a file directly inside the storage
// root: no path separators, no ".." segments, no NUL bytes.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is a directory reference", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q contains a parent reference", ErrInvalidName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	case strings.HasSuffix(name, tmpSuffix):
		return fmt.Errorf("%w: %q uses the reserved %s suffix", ErrInvalidName, name, tmpSuffix)
	}
	return nil
}
