// Package fragment parses and orders the timestamp embedded in a fragment
// directory's name, the way StorageManager::sort_fragment_names does in the
// original source.
package fragment

import (
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/matthewaerose/TileDB/catalogerr"
)

// Named pairs a fragment's canonical directory path with the timestamp
// parsed out of its name.
type Named struct {
	Path      string
	Timestamp int64
}

// ParseTimestamp extracts the timestamp from a fragment directory name of
// the form "<parent>/__<unique>_<timestamp>". The timestamp is always the
// substring after the first "_" that follows the leading "__", so a unique
// component that itself contains "_" leaves a non-numeric remainder and the
// name is rejected.
func ParseTimestamp(fragmentPath string) (int64, error) {
	name := path.Base(fragmentPath)
	if !strings.HasPrefix(name, "__") {
		return 0, catalogerr.New(catalogerr.KindIOError, "parseFragmentTimestamp", fragmentPath)
	}

	rest := name[2:]
	idx := strings.IndexByte(rest, '_')
	if idx < 0 {
		return 0, catalogerr.New(catalogerr.KindIOError, "parseFragmentTimestamp", fragmentPath)
	}

	tsStr := rest[idx+1:]
	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return 0, catalogerr.Wrap(catalogerr.KindIOError, "parseFragmentTimestamp", fragmentPath, err)
	}
	return ts, nil
}

// IsFragmentName reports whether name (a bare directory entry name, not a
// full path) carries the fragment prefix "__". It checks only that prefix,
// not the rest of the grammar "__<unique>_<timestamp>". Names that don't
// start with "__" must never appear in a fragment listing (spec §3).
func IsFragmentName(name string) bool {
	return strings.HasPrefix(name, "__")
}

// Sort orders fragment paths ascending by embedded timestamp, breaking
// ties by each path's position in the input slice (a stable sort), giving
// the total order spec §3 invariant 4 requires.
func Sort(paths []string) ([]Named, error) {
	named := make([]Named, len(paths))
	for i, p := range paths {
		ts, err := ParseTimestamp(p)
		if err != nil {
			return nil, err
		}
		named[i] = Named{Path: p, Timestamp: ts}
	}

	sort.SliceStable(named, func(i, j int) bool {
		return named[i].Timestamp < named[j].Timestamp
	})
	return named, nil
}
