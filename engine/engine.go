// Package engine defines the interfaces the catalog uses to talk to the
// array data engine: tile I/O, cell iteration, attribute synchronisation,
// and schema (de)serialisation. The engine itself is out of scope for this
// repository (spec §1) — only the boundary the catalog drives is ours to
// define.
package engine

import "context"

// Mode is the open mode a client requests for an array or metadata object.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
	ModeWriteUnsorted
)

// Schema is the opaque, engine-owned schema blob the catalog stores and
// loads on the engine's behalf, and whose bound object name the catalog
// must be able to read and rewrite across a move.
type Schema interface {
	// Name is the canonical path of the object this schema is bound to.
	Name() string
	// WithName returns a copy of the schema with its bound name rewritten,
	// used by catalog.Move to keep the stored schema in sync with the
	// object's new path.
	WithName(name string) Schema
	// Serialize produces the opaque bytes the schema codec stores.
	Serialize() ([]byte, error)
}

// SchemaCodec deserializes the bytes schemacodec.Load hands back into a
// Schema the engine understands. The catalog uses the same codec for array
// and metadata schemas; Deserialize is not told which kind it is reading.
type SchemaCodec interface {
	Deserialize(blob []byte) (Schema, error)
}

// BookKeeping is the opaque per-fragment index the engine produces: tile
// extents, MBRs, offsets. The catalog owns the handle's lifetime but never
// looks inside it.
type BookKeeping interface {
	// Close releases any resources the bookkeeping handle holds (e.g. a
	// memory-mapped index).
	Close() error
}

// BookKeepingLoader loads one fragment's bookkeeping given its directory
// and the schema it belongs to.
type BookKeepingLoader interface {
	LoadBookKeeping(ctx context.Context, schema Schema, fragmentPath string) (BookKeeping, error)
}

// ArrayEngine is the per-open-handle object the catalog constructs from a
// cached schema, fragment list, and bookkeeping, and subsequently drives
// through init/finalize/sync/consolidate. The catalog never interprets
// cell data; it only sequences these calls under the right locks.
type ArrayEngine interface {
	// SchemaName reports the schema name this engine instance is bound
	// to, used by the catalog to look up or refresh its registry entry.
	SchemaName() string

	// Init constructs the engine's live state (tile buffers, read
	// iterators, subarray clipping) from the schema, fragment list, and
	// bookkeeping the registry already loaded (both empty for write
	// modes). The double-buffered read clone is not passed here; the
	// catalog obtains it separately through SchemaLoader.
	Init(ctx context.Context, schema Schema, fragments []string, bookKeeping []BookKeeping, mode Mode) error

	// Finalize flushes and releases the engine's live state.
	Finalize(ctx context.Context) error

	// Sync flushes any buffered writes for the whole object (or, if attr
	// is non-empty, just that attribute) without finalizing.
	Sync(ctx context.Context, attr string) error

	// Consolidate asks the engine to produce one new fragment from the
	// object's current fragments, writing it to a scratch directory under
	// the array, and to report which fragments it intends to replace. The
	// new fragment's own visibility sentinel is not created yet; that
	// happens in Finalize's counterpart, FinalizeNewFragment.
	Consolidate(ctx context.Context, scratchDir string) (newFragment string, oldFragments []string, err error)

	// FinalizeNewFragment writes the new fragment's visibility sentinel,
	// making it visible to new openers. Called only after the catalog has
	// taken the exclusive consolidation filelock.
	FinalizeNewFragment(ctx context.Context, newFragment string) error
}

// Iterator is the engine's cell iterator, constructed over an already
//-open ArrayEngine.
type Iterator interface {
	Next(ctx context.Context) (more bool, err error)
	Finalize(ctx context.Context) error
}

// Factory constructs the per-open-handle ArrayEngine bound to schema. The
// catalog calls this once per array_init/metadata_init and then drives the
// returned engine through Init.
type Factory interface {
	NewArrayEngine(schema Schema) ArrayEngine
}

// SchemaLoader produces the second, double-buffered-read clone of a schema
// that array_init constructs alongside the primary engine instance when
// opening for read (original source: "a clone for double-buffered reads").
type SchemaLoader interface {
	CloneForRead(schema Schema) (Schema, error)
}

// IteratorFactory constructs a cell iterator bound to an already-Init'd
// ArrayEngine, for catalog.IteratorInit.
type IteratorFactory interface {
	NewIterator(ctx context.Context, eng ArrayEngine) (Iterator, error)
}
