// Package catalog implements the object lifecycle (C7) and consolidation
// orchestrator (C8): the top-level operations that compose the path
// resolver, directory operations, schema codec, fragment ordering,
// filelock, and open-object registry into workspace/group/array/metadata
// create/open/close/move/delete/clear/list and into the old-to-new
// fragment swap. Grounded end-to-end on
// _examples/original_source/core/src/storage_manager/storage_manager.cc.
package catalog

import (
	"go.uber.org/zap"

	"github.com/matthewaerose/TileDB/catalogmetrics"
	"github.com/matthewaerose/TileDB/engine"
	"github.com/matthewaerose/TileDB/filesys"
	"github.com/matthewaerose/TileDB/registry"
)

// Catalog is the composition root: every C7/C8 operation is a method on
// it, closing over the filesystem backend, the open-object registry, and
// the engine collaborators that are out of this repository's scope.
type Catalog struct {
	fs filesys.Filesys
	reg *registry.Registry

	codec   engine.SchemaCodec
	loader  engine.BookKeepingLoader
	factory engine.Factory
	clones  engine.SchemaLoader
	iters   engine.IteratorFactory

	metrics *catalogmetrics.Metrics
	log     *zap.Logger
}

// Collaborators bundles the engine-side dependencies the catalog is
// handed at construction time; every one of these lives outside this
// repository's scope (spec §1) and is supplied by the array data engine.
type Collaborators struct {
	Codec   engine.SchemaCodec
	Loader  engine.BookKeepingLoader
	Factory engine.Factory
	Clones  engine.SchemaLoader
	Iters   engine.IteratorFactory
}

// New constructs a Catalog. metrics or log may be nil; nil metrics
// disables counters, nil log uses zap.NewNop().
func New(fs filesys.Filesys, collab Collaborators, metrics *catalogmetrics.Metrics, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = catalogmetrics.Noop()
	}
	return &Catalog{
		fs:      fs,
		reg:     registry.New(metrics, log),
		codec:   collab.Codec,
		loader:  collab.Loader,
		factory: collab.Factory,
		clones:  collab.Clones,
		iters:   collab.Iters,
		metrics: metrics,
		log:     log,
	}
}

// Registry exposes the underlying open-object registry, for tests that
// need to assert on refcounts directly.
func (c *Catalog) Registry() *registry.Registry {
	return c.reg
}
