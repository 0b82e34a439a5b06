package catalog

import (
	"github.com/matthewaerose/TileDB/catalogerr"
	"github.com/matthewaerose/TileDB/objpath"
)

// Entry is one child returned by Ls: its bare name and catalog kind.
type Entry struct {
	Name string
	Kind objpath.Kind
}

// Ls enumerates parent's immediate children, skipping anything that does
// not probe as a recognised catalog object (sentinel files themselves,
// fragments' data files, and any stray non-TileDB entry).
func (c *Catalog) Ls(parent string) ([]Entry, error) {
	canon, err := objpath.Canonicalise(parent)
	if err != nil {
		return nil, err
	}
	if canon == "" {
		return nil, catalogerr.New(catalogerr.KindInvalidName, "ls", parent)
	}

	children, err := c.fs.ReadDir(canon)
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.KindIOError, "ls", canon, err)
	}

	var entries []Entry
	for _, child := range children {
		if child.Name == "." || child.Name == ".." {
			continue
		}
		kind := objpath.Probe(c.fs, canon+"/"+child.Name)
		switch kind {
		case objpath.KindInvalid, objpath.KindOther:
			continue
		}
		entries = append(entries, Entry{Name: child.Name, Kind: kind})
	}
	return entries, nil
}
