package catalog

import (
	"go.uber.org/zap"

	"github.com/matthewaerose/TileDB/catalogerr"
	"github.com/matthewaerose/TileDB/engine"
	"github.com/matthewaerose/TileDB/filelock"
	"github.com/matthewaerose/TileDB/objpath"
	"github.com/matthewaerose/TileDB/schemacodec"
)

// kindAt probes path, treating "" (objpath.Parent's report for a
// root-level path) as a neutral, non-catalog container rather than an
// error — a workspace is allowed to be the first object at the root of a
// filesystem.
func (c *Catalog) kindAt(path string) objpath.Kind {
	if path == "" {
		return objpath.KindOther
	}
	return objpath.Probe(c.fs, path)
}

func (c *Catalog) requireParentKind(op, path string, allowed ...objpath.Kind) error {
	parent := objpath.Parent(path)
	got := c.kindAt(parent)
	for _, k := range allowed {
		if got == k {
			return nil
		}
	}
	return catalogerr.New(catalogerr.KindInvalidContainment, op, path)
}

func (c *Catalog) forbidParentKinds(op, path string, forbidden ...objpath.Kind) error {
	parent := objpath.Parent(path)
	got := c.kindAt(parent)
	for _, k := range forbidden {
		if got == k {
			return catalogerr.New(catalogerr.KindInvalidContainment, op, path)
		}
	}
	return nil
}

func (c *Catalog) createSentinelDir(op, path, sentinel string) (string, error) {
	canon, err := objpath.Canonicalise(path)
	if err != nil {
		return "", err
	}
	exists, _ := c.fs.Exists(canon)
	if exists {
		return "", catalogerr.New(catalogerr.KindAlreadyExists, op, canon)
	}
	if err := c.fs.Mkdir(canon); err != nil {
		return "", catalogerr.Wrap(catalogerr.KindIOError, op, canon, err)
	}
	if err := c.fs.CreateSentinel(canon + "/" + sentinel); err != nil {
		return "", catalogerr.Wrap(catalogerr.KindIOError, op, canon, err)
	}
	return canon, nil
}

// WorkspaceCreate creates a new workspace at p. A workspace's parent must
// not itself be a workspace, group, array, or metadata object (spec §3).
func (c *Catalog) WorkspaceCreate(p string) (string, error) {
	canon, err := objpath.Canonicalise(p)
	if err != nil {
		return "", err
	}
	if canon == "" {
		return "", catalogerr.New(catalogerr.KindInvalidName, "workspaceCreate", p)
	}
	if err := c.forbidParentKinds("workspaceCreate", canon,
		objpath.KindWorkspace, objpath.KindGroup, objpath.KindArray, objpath.KindMetadata); err != nil {
		return "", err
	}
	dir, err := c.createSentinelDir("workspaceCreate", canon, objpath.WorkspaceSentinel)
	if err != nil {
		return "", err
	}
	c.log.Debug("workspace created", zap.String("path", dir))
	return dir, nil
}

// GroupCreate creates a new group at p. A group's parent must be a
// workspace or another group.
func (c *Catalog) GroupCreate(p string) (string, error) {
	canon, err := objpath.Canonicalise(p)
	if err != nil {
		return "", err
	}
	if canon == "" {
		return "", catalogerr.New(catalogerr.KindInvalidName, "groupCreate", p)
	}
	if err := c.requireParentKind("groupCreate", canon, objpath.KindWorkspace, objpath.KindGroup); err != nil {
		return "", err
	}
	dir, err := c.createSentinelDir("groupCreate", canon, objpath.GroupSentinel)
	if err != nil {
		return "", err
	}
	c.log.Debug("group created", zap.String("path", dir))
	return dir, nil
}

func (c *Catalog) createSchemaObject(op string, schema engine.Schema, kind objpath.Kind, allowedParents ...objpath.Kind) (string, error) {
	canon, err := objpath.Canonicalise(schema.Name())
	if err != nil {
		return "", err
	}
	if canon == "" {
		return "", catalogerr.New(catalogerr.KindInvalidName, op, schema.Name())
	}
	if err := c.requireParentKind(op, canon, allowedParents...); err != nil {
		return "", err
	}
	exists, _ := c.fs.Exists(canon)
	if exists {
		return "", catalogerr.New(catalogerr.KindAlreadyExists, op, canon)
	}
	if err := c.fs.Mkdir(canon); err != nil {
		return "", catalogerr.Wrap(catalogerr.KindIOError, op, canon, err)
	}

	blob, err := schema.Serialize()
	if err != nil {
		return "", catalogerr.Wrap(catalogerr.KindSchemaCorrupt, op, canon, err)
	}
	if err := schemacodec.Store(c.fs, canon, kind, blob); err != nil {
		return "", err
	}
	if err := filelock.Create(c.fs, canon+"/"+objpath.ConsolidationLockName); err != nil {
		return "", catalogerr.Wrap(catalogerr.KindIOError, op, canon, err)
	}
	return canon, nil
}

// ArrayCreate creates a new array directory named schema.Name(), storing
// schema and creating its consolidation lockfile. An array's parent must
// be a workspace or group.
func (c *Catalog) ArrayCreate(schema engine.Schema) (string, error) {
	dir, err := c.createSchemaObject("arrayCreate", schema, objpath.KindArray, objpath.KindWorkspace, objpath.KindGroup)
	if err != nil {
		return "", err
	}
	c.log.Debug("array created", zap.String("path", dir))
	return dir, nil
}

// MetadataCreate creates a new metadata (key-value array) directory named
// schema.Name(). A metadata object's parent must be a workspace, group,
// or array.
func (c *Catalog) MetadataCreate(schema engine.Schema) (string, error) {
	dir, err := c.createSchemaObject("metadataCreate", schema, objpath.KindMetadata,
		objpath.KindWorkspace, objpath.KindGroup, objpath.KindArray)
	if err != nil {
		return "", err
	}
	c.log.Debug("metadata created", zap.String("path", dir))
	return dir, nil
}
