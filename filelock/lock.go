// Package filelock implements the per-array consolidation filelock: a
// POSIX advisory whole-file lock on __consolidation_lock.tdb that readers
// take shared and consolidators take exclusive, blocking out each other's
// cross-process access the way no in-process mutex can.
package filelock

import (
	"github.com/matthewaerose/TileDB/filesys"
)

// Lockfile is the consolidation filelock's interface: acquire blocks
// (there is no timeout, per spec §5) until the requested mode is granted,
// and Release always succeeds from the caller's point of view even if the
// underlying close fails: that failure is discarded, neither returned nor
// logged.
type Lockfile interface {
	AcquireShared() error
	AcquireExclusive() error
	// Release drops whatever lock is held. It is a no-op if nothing is
	// held.
	Release()
}

// Create creates dir's consolidation lockfile as an empty sentinel file,
// alongside the schema, when the object is first created (spec §4.5).
func Create(fs filesys.Filesys, consolidationLockPath string) error {
	return fs.CreateSentinel(consolidationLockPath)
}

// Open returns a Lockfile for path, backed by a real OS file descriptor on
// fs == filesys.LocalFS and by an in-process reader/writer gate otherwise
// (tests run against filesys.InMemFS, which has no real file descriptor to
// lock).
func Open(fs filesys.Filesys, path string) (Lockfile, error) {
	if fs == filesys.LocalFS {
		f, err := fs.OpenReadWrite(path)
		if err != nil {
			return nil, err
		}
		return &posixLockfile{file: f}, nil
	}
	return newMemLockfile(path), nil
}
