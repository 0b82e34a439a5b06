package objpath

import (
	"os"
	"path"
	"strings"

	"github.com/matthewaerose/TileDB/catalogerr"
)

// MaxPathLength is the maximum path length the catalog accepts, per
// spec §6.
const MaxPathLength = 4096

// Canonicalise produces an object's canonical path: it expands a leading
// "~" to $HOME, makes relative paths absolute against the current working
// directory, collapses repeated "/" separators, and resolves "." and ".."
// segments lexically (it never consults the filesystem or follows
// symlinks). A ".." that would escape the root yields "" with a nil error;
// the catalog's entry points reject that result with
// catalogerr.KindInvalidName.
func Canonicalise(p string) (string, error) {
	if len(p) > MaxPathLength {
		return "", catalogerr.New(catalogerr.KindInvalidName, "canonicalise", p)
	}

	switch p {
	case "", ".", "./":
		wd, err := os.Getwd()
		if err != nil {
			return "", catalogerr.Wrap(catalogerr.KindIOError, "canonicalise", p, err)
		}
		return wd, nil
	case "~":
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		return home, nil
	case "/":
		return "/", nil
	}

	var raw string
	switch {
	case strings.HasPrefix(p, "/"):
		raw = p
	case strings.HasPrefix(p, "~/"):
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		raw = home + p[1:]
	case strings.HasPrefix(p, "./"):
		wd, err := os.Getwd()
		if err != nil {
			return "", catalogerr.Wrap(catalogerr.KindIOError, "canonicalise", p, err)
		}
		raw = wd + p[1:]
	default:
		wd, err := os.Getwd()
		if err != nil {
			return "", catalogerr.Wrap(catalogerr.KindIOError, "canonicalise", p, err)
		}
		raw = wd + "/" + p
	}

	// purgeDots returns "" for a path whose ".." segments climb past root;
	// per spec §4.1 that is not itself an error here — it "yields the
	// empty string, which the caller must treat as an invalid path".
	return purgeDots(raw), nil
}

func homeDir() (string, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return "", catalogerr.New(catalogerr.KindInvalidName, "canonicalise", "~")
	}
	return home, nil
}

// purgeDots collapses repeated slashes and resolves "." / ".." segments of
// an absolute path lexically, matching TileDB's purge_dots_from_path: a
// leading ".." returns "" (invalid) rather than climbing past root.
func purgeDots(absPath string) string {
	if absPath == "" || absPath == "/" {
		return absPath
	}

	segments := strings.Split(absPath, "/")
	final := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(final) == 0 {
				return ""
			}
			final = final[:len(final)-1]
		default:
			final = append(final, seg)
		}
	}
	return "/" + strings.Join(final, "/")
}

// Parent returns the longest prefix of Canonicalise(p) that ends before
// the final "/", or "" if p canonicalises to the root or to "".
func Parent(p string) string {
	canon, err := Canonicalise(p)
	if err != nil || canon == "" || canon == "/" {
		return ""
	}
	dir := path.Dir(canon)
	if dir == "/" {
		return ""
	}
	return dir
}
