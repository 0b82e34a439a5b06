// Package catalogerr defines the error taxonomy shared by every catalog
// component (path resolution, directory operations, the schema codec, the
// consolidation filelock, the open-object registry, and the lifecycle and
// consolidation operations built on top of them).
package catalogerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why a catalog operation failed. The set is closed and
// matches the error table in the catalog specification.
type Kind int

const (
	// KindNone is the zero value; Error never uses it.
	KindNone Kind = iota
	// KindInvalidContainment means a parent directory's kind violates the
	// containment rules for the child being created or moved.
	KindInvalidContainment
	// KindAlreadyExists means the target of a create or move already
	// exists on disk.
	KindAlreadyExists
	// KindNotFound means a probed directory's kind did not match what the
	// caller expected.
	KindNotFound
	// KindSchemaCorrupt means a schema file was empty, truncated, or
	// otherwise failed to deserialize.
	KindSchemaCorrupt
	// KindBufferOverflow means a caller-supplied listing buffer was too
	// small for the result.
	KindBufferOverflow
	// KindInvalidName means a path was null, empty, or over the maximum
	// length.
	KindInvalidName
	// KindLockError means fcntl returned an error other than a signal
	// interrupt while acquiring or releasing the consolidation filelock.
	KindLockError
	// KindIOError is any other filesystem syscall failure.
	KindIOError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidContainment:
		return "InvalidContainment"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindNotFound:
		return "NotFound"
	case KindSchemaCorrupt:
		return "SchemaCorrupt"
	case KindBufferOverflow:
		return "BufferOverflow"
	case KindInvalidName:
		return "InvalidName"
	case KindLockError:
		return "LockError"
	case KindIOError:
		return "IoError"
	default:
		return "None"
	}
}

// Error is the concrete error type returned by catalog operations. It
// always carries a Kind and the path the operation was acting on; Cause is
// nil for errors with no underlying syscall/library failure.
type Error struct {
	Kind  Kind
	Op    string
	Path  string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Path, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Path, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a *Error with no wrapped cause.
func New(kind Kind, op, path string) *Error {
	return &Error{Kind: kind, Op: op, Path: path}
}

// Wrap builds a *Error wrapping cause. The result always carries kind,
// even when cause is itself a *Error, whose own Kind then stays only in
// the wrapped chain (Is checks the outermost *Error); we always wrap
// rather than unwrap, since call-site context (op/path) is more specific
// than whatever produced cause.
func Wrap(kind Kind, op, path string, cause error) *Error {
	if cause == nil {
		return New(kind, op, path)
	}
	return &Error{Kind: kind, Op: op, Path: path, Cause: errors.WithStack(cause)}
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Kind == kind
}
