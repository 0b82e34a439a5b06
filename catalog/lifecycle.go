package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/matthewaerose/TileDB/catalogerr"
	"github.com/matthewaerose/TileDB/engine"
	"github.com/matthewaerose/TileDB/objpath"
	"github.com/matthewaerose/TileDB/schemacodec"
)

// Handle is a live array or metadata open, returned by ArrayInit/
// MetadataInit and consumed by Finalize, Sync, and the consolidation
// orchestrator.
type Handle struct {
	Path     string
	Kind     objpath.Kind
	Mode     engine.Mode
	readMode bool

	Engine engine.ArrayEngine
	// ReadClone is the second, double-buffered-read schema clone the
	// original source constructs alongside a read-mode open (Design
	// Notes §9 / storage_manager.cc's array_init). Nil for write opens.
	ReadClone engine.Schema
}

// objectInit implements array_init/metadata_init (spec §4.7): they are
// identical except for which sentinel the probe and schema codec expect.
func (c *Catalog) objectInit(ctx context.Context, kind objpath.Kind, op, path string, mode engine.Mode) (*Handle, error) {
	canon, err := objpath.Canonicalise(path)
	if err != nil {
		return nil, err
	}
	if canon == "" {
		return nil, catalogerr.New(catalogerr.KindInvalidName, op, path)
	}
	if got := c.kindAt(canon); got != kind {
		return nil, catalogerr.New(catalogerr.KindNotFound, op, canon)
	}

	readMode := mode == engine.ModeRead

	var schema engine.Schema
	var fragPaths []string
	var bookKeeping []engine.BookKeeping

	if readMode {
		entry := c.reg.GetOrCreate(canon, kind)
		if err := c.reg.FirstOpenInit(ctx, c.fs, entry, c.codec, c.loader); err != nil {
			_ = c.reg.Release(canon)
			return nil, err
		}
		schema = entry.Schema
		fragPaths = make([]string, len(entry.Fragments))
		for i, f := range entry.Fragments {
			fragPaths[i] = f.Path
		}
		bookKeeping = entry.BookKeeping
	} else {
		blob, err := schemacodec.Load(c.fs, canon, kind)
		if err != nil {
			return nil, err
		}
		schema, err = c.codec.Deserialize(blob)
		if err != nil {
			return nil, catalogerr.Wrap(catalogerr.KindSchemaCorrupt, op, canon, err)
		}
	}

	eng := c.factory.NewArrayEngine(schema)
	if err := eng.Init(ctx, schema, fragPaths, bookKeeping, mode); err != nil {
		if readMode {
			_ = c.reg.Release(canon)
		}
		return nil, catalogerr.Wrap(catalogerr.KindIOError, op, canon, err)
	}

	handle := &Handle{Path: canon, Kind: kind, Mode: mode, readMode: readMode, Engine: eng}

	if readMode && c.clones != nil {
		clone, err := c.clones.CloneForRead(schema)
		if err != nil {
			c.log.Warn("double-buffered read clone failed", zap.String("path", canon), zap.Error(err))
		} else {
			handle.ReadClone = clone
		}
	}

	return handle, nil
}

// ArrayInit opens the array at path. Read modes go through the open-object
// registry, deduplicating schema and fragment/bookkeeping loads across
// concurrent openers; write modes never enter the registry.
func (c *Catalog) ArrayInit(ctx context.Context, path string, mode engine.Mode) (*Handle, error) {
	h, err := c.objectInit(ctx, objpath.KindArray, "arrayInit", path, mode)
	if err == nil {
		c.log.Debug("array opened", zap.String("path", h.Path), zap.Int("mode", int(mode)))
	}
	return h, err
}

// MetadataInit opens the metadata object at path, mirroring ArrayInit
// against the metadata schema sentinel.
func (c *Catalog) MetadataInit(ctx context.Context, path string, mode engine.Mode) (*Handle, error) {
	h, err := c.objectInit(ctx, objpath.KindMetadata, "metadataInit", path, mode)
	if err == nil {
		c.log.Debug("metadata opened", zap.String("path", h.Path), zap.Int("mode", int(mode)))
	}
	return h, err
}

// Finalize finalises h's engine object and, for a read-mode handle,
// releases its registry entry. It backs both ArrayFinalize and
// MetadataFinalize, which are identical once a Handle exists.
func (c *Catalog) Finalize(ctx context.Context, h *Handle) error {
	err := h.Engine.Finalize(ctx)
	if h.readMode {
		if relErr := c.reg.Release(h.Path); relErr != nil && err == nil {
			err = relErr
		}
	}
	return err
}

// ArrayFinalize finalises an array handle opened by ArrayInit.
func (c *Catalog) ArrayFinalize(ctx context.Context, h *Handle) error {
	return c.Finalize(ctx, h)
}

// MetadataFinalize finalises a metadata handle opened by MetadataInit.
func (c *Catalog) MetadataFinalize(ctx context.Context, h *Handle) error {
	return c.Finalize(ctx, h)
}

// ArraySync flushes every attribute's buffered writes without finalizing.
// No catalog state is touched; this forwards directly to the engine.
func (c *Catalog) ArraySync(ctx context.Context, h *Handle) error {
	return h.Engine.Sync(ctx, "")
}

// ArraySyncAttribute flushes attr's buffered writes without finalizing.
func (c *Catalog) ArraySyncAttribute(ctx context.Context, h *Handle, attr string) error {
	return h.Engine.Sync(ctx, attr)
}

// IteratorHandle composes an engine cell iterator with the array/metadata
// Handle it was constructed over; IteratorFinalize tears down both halves.
type IteratorHandle struct {
	handle *Handle
	Iter   engine.Iterator
}

// IteratorInit opens path for read and constructs an engine iterator over
// it, composing objectInit with the engine's iterator factory.
func (c *Catalog) IteratorInit(ctx context.Context, kind objpath.Kind, path string) (*IteratorHandle, error) {
	op := "arrayInit"
	if kind == objpath.KindMetadata {
		op = "metadataInit"
	}
	h, err := c.objectInit(ctx, kind, op, path, engine.ModeRead)
	if err != nil {
		return nil, err
	}
	iter, err := c.iters.NewIterator(ctx, h.Engine)
	if err != nil {
		_ = c.Finalize(ctx, h)
		return nil, catalogerr.Wrap(catalogerr.KindIOError, "iteratorInit", h.Path, err)
	}
	return &IteratorHandle{handle: h, Iter: iter}, nil
}

// IteratorFinalize finalises ih's engine iterator, then its underlying
// array/metadata handle, releasing the registry entry. Composing the two
// finalize calls is this repository's own responsibility — the engine
// only owns the iterator half (spec §5's supplemented feature list).
func (c *Catalog) IteratorFinalize(ctx context.Context, ih *IteratorHandle) error {
	err := ih.Iter.Finalize(ctx)
	if ferr := c.Finalize(ctx, ih.handle); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
