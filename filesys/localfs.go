package filesys

import (
	"os"
	"sort"
)

// LocalFS is the machine's real filesystem, the only backend that can ever
// host a live consolidation filelock.
var LocalFS Filesys = &localFS{}

type localFS struct{}

func (fs *localFS) Stat(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: st.Name(), IsDir: st.IsDir(), Size: st.Size(), ModTime: st.ModTime()}, nil
}

func (fs *localFS) Exists(path string) (exists bool, isDir bool) {
	st, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return true, st.IsDir()
}

func (fs *localFS) Mkdir(path string) error {
	return os.Mkdir(path, 0o700)
}

func (fs *localFS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (fs *localFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (fs *localFS) ReadDir(path string) ([]Info, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(entries))
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		infos = append(infos, Info{Name: fi.Name(), IsDir: fi.IsDir(), Size: fi.Size(), ModTime: fi.ModTime()})
	}
	// os.ReadDir already sorts by name; kept explicit since callers (the
	// fragment lister in particular) depend on a deterministic starting
	// order before they apply their own timestamp sort.
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (fs *localFS) CreateSentinel(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_SYNC, 0o600)
	if err != nil {
		return err
	}
	return f.Close()
}

func (fs *localFS) RemoveFile(path string) error {
	return os.Remove(path)
}

func (fs *localFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (fs *localFS) WriteFile(path string, data []byte) error {
	// touch_sentinel-style truncate-before-write: unlink any prior file
	// so a shorter new write can't leave stale trailing bytes, matching
	// array_store_schema's remove()-then-O_CREAT in the original source.
	_ = os.Remove(path)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_SYNC, 0o600)
	if err != nil {
		return err
	}
	defer closeQuietly(f)
	if _, err := f.Write(data); err != nil {
		return err
	}
	return nil
}

func (fs *localFS) OpenReadWrite(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR, 0o600)
}
