package content

import (
	"errors"
	"fmt"
)

// ErrNotFound means no definition file exists at any searched location.
// It is an expected outcome, not a failure.
var ErrNotFound = errors.New("not found")

// notFound wraps ErrNotFound with the kind and identifier that was looked up.
func notFound(kind Kind, name string) error {
	return fmt.Errorf("%s %q %w", kind, name, ErrNotFound)
}

// ParseError means a definition file exists but could not be decoded into
// the expected shape (malformed YAML, no structured block, missing a
// mandatory field).
type ParseError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s file %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FileReadError is an I/O failure reading an existing path.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read file %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
