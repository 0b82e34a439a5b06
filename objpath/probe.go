package objpath

import "github.com/matthewaerose/TileDB/filesys"

// Probe classifies path by its sentinel file. It performs a stat on the
// directory itself and then a stat on each candidate sentinel in turn,
// mirroring utils::is_workspace/is_group/is_array/is_fragment in the
// original source, which each pay for a directory stat plus a file stat.
// A non-directory path always probes as KindInvalid.
func Probe(fs filesys.Filesys, path string) Kind {
	exists, isDir := fs.Exists(path)
	if !exists || !isDir {
		return KindInvalid
	}

	for _, kind := range []Kind{KindWorkspace, KindGroup, KindArray, KindMetadata, KindFragment} {
		sentinel := SentinelFor(kind)
		if exists, isDir := fs.Exists(path + "/" + sentinel); exists && !isDir {
			return kind
		}
	}
	return KindOther
}

// Is reports whether path probes as exactly kind.
func Is(fs filesys.Filesys, path string, kind Kind) bool {
	return Probe(fs, path) == kind
}
