package track

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies why a single source file could not become a Track. A Kind
// is itself an error so callers can write errors.Is(err, track.ZeroLength).
type Kind int

const (
	EmptyFile Kind = iota + 1
	Malformed
	PermissionDenied
	MissingTimes
	ZeroLength
	ChecksumFailed
	Unsupported
)

var kindNames = map[Kind]string{
	EmptyFile:        "empty file",
	Malformed:        "malformed content",
	PermissionDenied: "permission denied",
	MissingTimes:     "missing time bounds",
	ZeroLength:       "zero length",
	ChecksumFailed:   "checksum failed",
	Unsupported:      "unsupported format",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) Error() string { return k.String() }

// LoadError reports a failure scoped to one source file.
type LoadError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Kind)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is matches a bare Kind.
func (e *LoadError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func newLoadError(kind Kind, path string, err error) *LoadError {
	return &LoadError{Kind: kind, Path: path, Err: err}
}

// ReadError classifies a failure to read path for checksumming. Permission
// problems get their own kind; anything else is ChecksumFailed.
func ReadError(path string, err error) *LoadError {
	if errors.Is(err, fs.ErrPermission) {
		return newLoadError(PermissionDenied, path, err)
	}
	return newLoadError(ChecksumFailed, path, err)
}

// KindOf returns the Kind carried by err, or 0.
func KindOf(err error) Kind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}
