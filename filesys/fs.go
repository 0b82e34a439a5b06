// Package filesys provides the narrow filesystem abstraction the catalog
// builds on: stat, create/rename/remove a directory, list a directory's
// immediate children, and create or read a small file with durable
// semantics. It exists, the way the teacher's own filesys package does,
// so the catalog's directory-operations and schema-codec logic can run
// unmodified against either the real OS (LocalFS) or an in-memory
// filesystem (InMemFS) in tests.
package filesys

import (
	"io"
	"os"
	"time"
)

// Info describes one filesystem entry, enough for the catalog's type
// probe and directory listing to do their work without a second stat.
type Info struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Filesys is the full read/write/list surface the catalog needs.
type Filesys interface {
	// Stat returns Info for path, or an error satisfying os.IsNotExist.
	Stat(path string) (Info, error)

	// Exists is a convenience wrapper over Stat that never returns an
	// error: a missing path just reports exists=false.
	Exists(path string) (exists bool, isDir bool)

	// Mkdir creates path as a new directory with owner rwx permissions.
	// It fails if path already exists (it does not create parents).
	Mkdir(path string) error

	// Rename performs a single rename of oldPath to newPath.
	Rename(oldPath, newPath string) error

	// RemoveAll recursively removes path and everything under it. It is
	// not an error if path does not exist.
	RemoveAll(path string) error

	// ReadDir lists the immediate children of path.
	ReadDir(path string) ([]Info, error)

	// CreateSentinel creates a file at path if it is missing; an existing
	// file at path is not an error. It is used to tag directories with the
	// kind sentinels and to make fragment visibility markers.
	CreateSentinel(path string) error

	// RemoveFile removes a single file (not a directory) at path.
	RemoveFile(path string) error

	// ReadFile reads the entire contents of the file at path.
	ReadFile(path string) ([]byte, error)

	// WriteFile truncates (or creates) the file at path and writes data
	// to it in full before returning.
	WriteFile(path string, data []byte) error

	// OpenReadWrite opens path for O_RDWR without creating it; used by
	// the filelock package to obtain a descriptor to take an advisory
	// lock on. Implementations that cannot hand back a real *os.File
	// (e.g. an in-memory filesystem) return ErrNoFileDescriptor.
	OpenReadWrite(path string) (*os.File, error)
}

// ErrNoFileDescriptor is returned by OpenReadWrite on filesystems, such as
// InMemFS, that have no underlying OS file descriptor to hand back.
var ErrNoFileDescriptor = errNoFileDescriptor{}

type errNoFileDescriptor struct{}

func (errNoFileDescriptor) Error() string {
	return "filesys: no underlying file descriptor on this backend"
}

// closeQuietly closes c, discarding the error; used at call sites that
// already have a more specific error to report and are only cleaning up.
func closeQuietly(c io.Closer) {
	_ = c.Close()
}
