// Package registry implements the process-wide open-object registry (spec
// §4.6): a table of OpenEntry records keyed by canonical path, deduplicating
// schema and bookkeeping loads across concurrent openers and coordinating
// the per-array consolidation filelock. Structurally grounded on
// dolt/go/store/nbs/store.go's manifestLocks pattern — one mutex guarding a
// map of per-path state, with a second, entry-scoped mutex as the leaf lock.
package registry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matthewaerose/TileDB/catalogerr"
	"github.com/matthewaerose/TileDB/catalogmetrics"
	"github.com/matthewaerose/TileDB/engine"
	"github.com/matthewaerose/TileDB/filelock"
	"github.com/matthewaerose/TileDB/filesys"
	"github.com/matthewaerose/TileDB/fragment"
	"github.com/matthewaerose/TileDB/objpath"
	"github.com/matthewaerose/TileDB/schemacodec"
)

// State is the lifecycle state of an OpenEntry (spec §4.7's state machine).
type State int

const (
	StateNascent State = iota
	StateReady
	StateRetiring
)

// OpenEntry is one record per opened object (spec §3's OpenEntry). Every
// field except refcount and state is immutable once FirstOpenInit
// succeeds; refcount and state are protected by mu, the entry's leaf lock.
type OpenEntry struct {
	Path string
	Kind objpath.Kind

	mu       sync.Mutex
	state    State
	refcount int

	Schema      engine.Schema
	Fragments   []fragment.Named
	BookKeeping []engine.BookKeeping
	lock        filelock.Lockfile
}

// Refcount returns the entry's current refcount, for tests and
// diagnostics.
func (e *OpenEntry) Refcount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refcount
}

// State returns the entry's current lifecycle state.
func (e *OpenEntry) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Registry is the registry mutex's owner and the single in-memory shared
// mutable collection in the catalog (spec §5). The registry mutex is a
// top-level lock; an entry's own mu is always the leaf — never acquire the
// registry mutex while holding an entry mutex.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*OpenEntry

	metrics *catalogmetrics.Metrics
	log     *zap.Logger
}

// New constructs an empty Registry. metrics or log may be nil; nil metrics
// disables counter/gauge updates, nil log uses zap.NewNop().
func New(metrics *catalogmetrics.Metrics, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		entries: make(map[string]*OpenEntry),
		metrics: metrics,
		log:     log,
	}
}

// GetOrCreate looks up path under the registry mutex, inserting a fresh
// NASCENT entry with refcount 0 if absent, then increments the refcount
// and returns the entry. The lookup-insert-increment sequence is atomic
// with respect to every other registry operation.
func (r *Registry) GetOrCreate(path string, kind objpath.Kind) *OpenEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[path]
	if !ok {
		entry = &OpenEntry{Path: path, Kind: kind, state: StateNascent}
		r.entries[path] = entry
		if r.metrics != nil {
			r.metrics.EntriesLive.Inc()
		}
	}

	entry.mu.Lock()
	entry.refcount++
	entry.mu.Unlock()

	if r.metrics != nil {
		r.metrics.Opens.WithLabelValues(kind.String()).Inc()
	}
	return entry
}

// Release decrements path's entry's refcount. On reaching zero it tears
// the entry down — releasing its filelock, dropping its bookkeeping and
// schema, and removing it from the map — all while still holding the
// registry mutex, matching the ordering spec §4.6 mandates.
func (r *Registry) Release(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[path]
	if !ok {
		return catalogerr.New(catalogerr.KindNotFound, "release", path)
	}

	entry.mu.Lock()
	entry.refcount--
	remaining := entry.refcount
	if remaining <= 0 {
		entry.state = StateRetiring
	}
	entry.mu.Unlock()

	if r.metrics != nil {
		r.metrics.Closes.WithLabelValues(entry.Kind.String()).Inc()
	}

	if remaining > 0 {
		return nil
	}

	r.teardown(entry)
	delete(r.entries, path)
	if r.metrics != nil {
		r.metrics.EntriesLive.Dec()
	}
	return nil
}

func (r *Registry) teardown(entry *OpenEntry) {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.lock != nil {
		entry.lock.Release()
		entry.lock = nil
	}
	for _, bk := range entry.BookKeeping {
		if bk == nil {
			continue
		}
		if err := bk.Close(); err != nil {
			r.log.Warn("bookkeeping close failed during teardown",
				zap.String("path", entry.Path), zap.Error(err))
		}
	}
	entry.BookKeeping = nil
	entry.Fragments = nil
	entry.Schema = nil
}

// FirstOpenInit loads a freshly created entry's shared filelock, fragment
// list, schema, and bookkeeping, advancing it from NASCENT to READY. It is
// a no-op returning nil if the entry is already READY. It runs under the
// entry's own mutex, not the registry mutex, so the registry stays
// available to other openers while slow I/O proceeds (spec §4.6).
//
// On any failure the filelock (if acquired) is released and no partial
// fragment/bookkeeping state is retained; the entry is left NASCENT with
// its incremented refcount intact — the caller must still call Release.
func (r *Registry) FirstOpenInit(
	ctx context.Context,
	fs filesys.Filesys,
	entry *OpenEntry,
	codec engine.SchemaCodec,
	loader engine.BookKeepingLoader,
) error {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.state == StateReady {
		return nil
	}

	lockPath := entry.Path + "/" + objpath.ConsolidationLockName
	lock, err := filelock.Open(fs, lockPath)
	if err != nil {
		return r.failFirstOpen(entry, catalogerr.Wrap(catalogerr.KindLockError, "firstOpenInit", lockPath, err))
	}
	waitStart := time.Now()
	err = lock.AcquireShared()
	if r.metrics != nil {
		r.metrics.FilelockWait.WithLabelValues("shared").Observe(time.Since(waitStart).Seconds())
	}
	if err != nil {
		return r.failFirstOpen(entry, catalogerr.Wrap(catalogerr.KindLockError, "firstOpenInit", lockPath, err))
	}

	fragments, err := r.discoverFragments(fs, entry.Path)
	if err != nil {
		lock.Release()
		return r.failFirstOpen(entry, err)
	}

	schemaBlob, err := schemacodec.Load(fs, entry.Path, entry.Kind)
	if err != nil {
		lock.Release()
		return r.failFirstOpen(entry, err)
	}
	schema, err := codec.Deserialize(schemaBlob)
	if err != nil {
		lock.Release()
		return r.failFirstOpen(entry, catalogerr.Wrap(catalogerr.KindSchemaCorrupt, "firstOpenInit", entry.Path, err))
	}

	bookKeeping, err := r.loadBookKeeping(ctx, schema, fragments, loader)
	if err != nil {
		lock.Release()
		return r.failFirstOpen(entry, err)
	}

	entry.lock = lock
	entry.Fragments = fragments
	entry.BookKeeping = bookKeeping
	entry.Schema = schema
	entry.state = StateReady
	return nil
}

// failFirstOpen bumps FirstOpenFailures for entry.Kind before returning err,
// the single point every FirstOpenInit failure path funnels through.
func (r *Registry) failFirstOpen(entry *OpenEntry, err error) error {
	if r.metrics != nil {
		r.metrics.FirstOpenFailures.WithLabelValues(entry.Kind.String()).Inc()
	}
	return err
}

// discoverFragments lists dir's children, sweeps fragment directories
// missing their visibility sentinel (a best-effort, idempotent cleanup of
// the crash window between consolidation steps 5 and 7 — spec §9's
// "implementers SHOULD add an idempotent sweep at open time"), and sorts
// what remains by embedded timestamp.
func (r *Registry) discoverFragments(fs filesys.Filesys, dir string) ([]fragment.Named, error) {
	children, err := fs.ReadDir(dir)
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.KindIOError, "discoverFragments", dir, err)
	}

	var candidates []string
	for _, c := range children {
		if !c.IsDir || !fragment.IsFragmentName(c.Name) {
			continue
		}
		fragPath := dir + "/" + c.Name
		visible, _ := fs.Exists(fragPath + "/" + objpath.FragmentSentinel)
		if !visible {
			if err := fs.RemoveAll(fragPath); err != nil {
				r.log.Warn("garbage fragment sweep failed",
					zap.String("path", fragPath), zap.Error(err))
			}
			continue
		}
		candidates = append(candidates, fragPath)
	}

	named, err := fragment.Sort(candidates)
	if err != nil {
		return nil, err
	}
	return named, nil
}

// loadBookKeeping loads one bookkeeping handle per fragment concurrently,
// the way nbs/table_set.go fans persistence work out across an errgroup,
// returning an empty (never nil) slice for zero fragments per spec §9's
// resolved open question.
func (r *Registry) loadBookKeeping(ctx context.Context, schema engine.Schema, fragments []fragment.Named, loader engine.BookKeepingLoader) ([]engine.BookKeeping, error) {
	bookKeeping := make([]engine.BookKeeping, len(fragments))
	if len(fragments) == 0 {
		return bookKeeping, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, frag := range fragments {
		i, frag := i, frag
		g.Go(func() error {
			bk, err := loader.LoadBookKeeping(gctx, schema, frag.Path)
			if err != nil {
				return catalogerr.Wrap(catalogerr.KindIOError, "loadBookKeeping", frag.Path, err)
			}
			bookKeeping[i] = bk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, bk := range bookKeeping {
			if bk != nil {
				_ = bk.Close()
			}
		}
		return nil, err
	}
	return bookKeeping, nil
}
