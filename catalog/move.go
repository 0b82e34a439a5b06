package catalog

import (
	"github.com/matthewaerose/TileDB/catalogerr"
	"github.com/matthewaerose/TileDB/objpath"
	"github.com/matthewaerose/TileDB/schemacodec"
)

// Move renames old to new in a single rename syscall, after checking
// old actually probes as kind, that new's parent satisfies kind's
// containment rule, and that new does not already exist. For array and
// metadata objects it then reloads the schema at its new location,
// rewrites its embedded name, and stores it back (spec §4.7).
func (c *Catalog) Move(kind objpath.Kind, old, new string) (string, error) {
	oldCanon, err := objpath.Canonicalise(old)
	if err != nil {
		return "", err
	}
	if oldCanon == "" {
		return "", catalogerr.New(catalogerr.KindInvalidName, "move", old)
	}
	newCanon, err := objpath.Canonicalise(new)
	if err != nil {
		return "", err
	}
	if newCanon == "" {
		return "", catalogerr.New(catalogerr.KindInvalidName, "move", new)
	}

	if c.kindAt(oldCanon) != kind {
		return "", catalogerr.New(catalogerr.KindNotFound, "move", oldCanon)
	}

	if kind == objpath.KindGroup {
		// A group that is also a workspace may not be moved as a group.
		isAlsoWorkspace, _ := c.fs.Exists(oldCanon + "/" + objpath.WorkspaceSentinel)
		if isAlsoWorkspace {
			return "", catalogerr.New(catalogerr.KindInvalidContainment, "move", oldCanon)
		}
	}

	if err := c.checkMoveContainment(kind, newCanon); err != nil {
		return "", err
	}

	exists, _ := c.fs.Exists(newCanon)
	if exists {
		return "", catalogerr.New(catalogerr.KindAlreadyExists, "move", newCanon)
	}

	if err := c.fs.Rename(oldCanon, newCanon); err != nil {
		return "", catalogerr.Wrap(catalogerr.KindIOError, "move", oldCanon, err)
	}

	if kind == objpath.KindArray || kind == objpath.KindMetadata {
		if err := c.rewriteSchemaName(newCanon, kind); err != nil {
			return "", err
		}
	}

	return newCanon, nil
}

func (c *Catalog) checkMoveContainment(kind objpath.Kind, newPath string) error {
	switch kind {
	case objpath.KindWorkspace:
		return c.forbidParentKinds("move", newPath,
			objpath.KindWorkspace, objpath.KindGroup, objpath.KindArray, objpath.KindMetadata)
	case objpath.KindGroup, objpath.KindArray:
		return c.requireParentKind("move", newPath, objpath.KindWorkspace, objpath.KindGroup)
	case objpath.KindMetadata:
		return c.requireParentKind("move", newPath, objpath.KindWorkspace, objpath.KindGroup, objpath.KindArray)
	default:
		return catalogerr.New(catalogerr.KindInvalidContainment, "move", newPath)
	}
}

func (c *Catalog) rewriteSchemaName(newPath string, kind objpath.Kind) error {
	blob, err := schemacodec.Load(c.fs, newPath, kind)
	if err != nil {
		return err
	}
	schema, err := c.codec.Deserialize(blob)
	if err != nil {
		return catalogerr.Wrap(catalogerr.KindSchemaCorrupt, "move", newPath, err)
	}
	renamed := schema.WithName(newPath)
	newBlob, err := renamed.Serialize()
	if err != nil {
		return catalogerr.Wrap(catalogerr.KindSchemaCorrupt, "move", newPath, err)
	}
	return schemacodec.Store(c.fs, newPath, kind, newBlob)
}
