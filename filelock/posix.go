package filelock

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/matthewaerose/TileDB/catalogerr"
)

// posixLockfile takes a whole-file fcntl(F_SETLKW) advisory lock on an
// open *os.File, the same primitive TileDB's own
// consolidation_filelock_lock uses via fcntl(fd, F_SETLKW, &fl), with
// F_RDLCK for shared and F_WRLCK for exclusive.
type posixLockfile struct {
	file *os.File
}

func (l *posixLockfile) lock(lockType int16) error {
	fl := unix.Flock_t{
		Type:   lockType,
		Whence: int16(unix.SEEK_SET),
		Start:  0,
		Len:    0,
	}
	for {
		err := unix.FcntlFlock(l.file.Fd(), unix.F_SETLKW, &fl)
		if err == nil {
			return nil
		}
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return catalogerr.Wrap(catalogerr.KindLockError, "acquireFilelock", l.file.Name(), err)
	}
}

func (l *posixLockfile) AcquireShared() error {
	return l.lock(unix.F_RDLCK)
}

func (l *posixLockfile) AcquireExclusive() error {
	return l.lock(unix.F_WRLCK)
}

func (l *posixLockfile) Release() {
	_ = l.file.Close()
}
