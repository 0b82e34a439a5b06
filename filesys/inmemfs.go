package filesys

import (
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemFS is a map-backed Filesys used by catalog tests so the containment,
// probing, and registry logic can be exercised without touching disk. It
// cannot back a real consolidation filelock (OpenReadWrite always fails
// with ErrNoFileDescriptor); for any backend other than LocalFS,
// filelock.Open hands back an in-process lock instead.
type InMemFS struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
}

// NewInMemFS returns an empty in-memory filesystem rooted at "/".
func NewInMemFS() *InMemFS {
	return &InMemFS{
		files: map[string][]byte{},
		dirs:  map[string]bool{"/": true},
	}
}

func clean(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean(p)
}

func (fs *InMemFS) Stat(p string) (Info, error) {
	p = clean(p)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.dirs[p] {
		return Info{Name: path.Base(p), IsDir: true, ModTime: time.Now()}, nil
	}
	if data, ok := fs.files[p]; ok {
		return Info{Name: path.Base(p), IsDir: false, Size: int64(len(data)), ModTime: time.Now()}, nil
	}
	return Info{}, os.ErrNotExist
}

func (fs *InMemFS) Exists(p string) (bool, bool) {
	info, err := fs.Stat(p)
	if err != nil {
		return false, false
	}
	return true, info.IsDir
}

func (fs *InMemFS) Mkdir(p string) error {
	p = clean(p)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.dirs[p] || fs.files[p] != nil {
		return os.ErrExist
	}
	parent := path.Dir(p)
	if !fs.dirs[parent] {
		return os.ErrNotExist
	}
	fs.dirs[p] = true
	return nil
}

func (fs *InMemFS) Rename(oldPath, newPath string) error {
	oldPath, newPath = clean(oldPath), clean(newPath)
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.files[newPath] != nil || fs.dirs[newPath] {
		return os.ErrExist
	}

	if fs.dirs[oldPath] {
		prefix := oldPath + "/"
		for p, v := range fs.dirs {
			if p == oldPath || strings.HasPrefix(p, prefix) {
				delete(fs.dirs, p)
				fs.dirs[newPath+strings.TrimPrefix(p, oldPath)] = v
			}
		}
		for p, v := range fs.files {
			if strings.HasPrefix(p, prefix) {
				delete(fs.files, p)
				fs.files[newPath+strings.TrimPrefix(p, oldPath)] = v
			}
		}
		return nil
	}

	if data, ok := fs.files[oldPath]; ok {
		delete(fs.files, oldPath)
		fs.files[newPath] = data
		return nil
	}

	return os.ErrNotExist
}

func (fs *InMemFS) RemoveAll(p string) error {
	p = clean(p)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	prefix := p + "/"
	for d := range fs.dirs {
		if d == p || strings.HasPrefix(d, prefix) {
			delete(fs.dirs, d)
		}
	}
	for f := range fs.files {
		if f == p || strings.HasPrefix(f, prefix) {
			delete(fs.files, f)
		}
	}
	return nil
}

func (fs *InMemFS) ReadDir(p string) ([]Info, error) {
	p = clean(p)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.dirs[p] {
		return nil, os.ErrNotExist
	}
	prefix := p + "/"
	seen := map[string]Info{}
	for d := range fs.dirs {
		if d == p || !strings.HasPrefix(d, prefix) {
			continue
		}
		rest := strings.TrimPrefix(d, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		seen[rest] = Info{Name: rest, IsDir: true}
	}
	for f, data := range fs.files {
		if !strings.HasPrefix(f, prefix) {
			continue
		}
		rest := strings.TrimPrefix(f, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		seen[rest] = Info{Name: rest, IsDir: false, Size: int64(len(data))}
	}
	infos := make([]Info, 0, len(seen))
	for _, v := range seen {
		infos = append(infos, v)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (fs *InMemFS) CreateSentinel(p string) error {
	return fs.WriteFile(p, nil)
}

func (fs *InMemFS) RemoveFile(p string) error {
	p = clean(p)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[p]; !ok {
		return os.ErrNotExist
	}
	delete(fs.files, p)
	return nil
}

func (fs *InMemFS) ReadFile(p string) ([]byte, error) {
	p = clean(p)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	data, ok := fs.files[p]
	if !ok {
		return nil, os.ErrNotExist
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (fs *InMemFS) WriteFile(p string, data []byte) error {
	p = clean(p)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	parent := path.Dir(p)
	if !fs.dirs[parent] {
		return os.ErrNotExist
	}
	out := make([]byte, len(data))
	copy(out, data)
	fs.files[p] = out
	return nil
}

func (fs *InMemFS) OpenReadWrite(p string) (*os.File, error) {
	return nil, ErrNoFileDescriptor
}
