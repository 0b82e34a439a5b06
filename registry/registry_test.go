package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewaerose/TileDB/catalogerr"
	"github.com/matthewaerose/TileDB/catalogmetrics"
	"github.com/matthewaerose/TileDB/engine"
	"github.com/matthewaerose/TileDB/filesys"
	"github.com/matthewaerose/TileDB/objpath"
)

type fakeSchema struct{ name string }

func (s *fakeSchema) Name() string                    { return s.name }
func (s *fakeSchema) WithName(name string) engine.Schema { return &fakeSchema{name: name} }
func (s *fakeSchema) Serialize() ([]byte, error)      { return []byte(s.name), nil }

type fakeCodec struct{ fail bool }

func (c *fakeCodec) Deserialize(blob []byte) (engine.Schema, error) {
	if c.fail {
		return nil, catalogerr.New(catalogerr.KindSchemaCorrupt, "deserialize", "")
	}
	return &fakeSchema{name: string(blob)}, nil
}

type fakeBookKeeping struct{ closed bool }

func (b *fakeBookKeeping) Close() error { b.closed = true; return nil }

type fakeLoader struct{ fail bool }

func (l *fakeLoader) LoadBookKeeping(_ context.Context, _ engine.Schema, _ string) (engine.BookKeeping, error) {
	if l.fail {
		return nil, catalogerr.New(catalogerr.KindIOError, "loadBookKeeping", "")
	}
	return &fakeBookKeeping{}, nil
}

func newArrayDir(t *testing.T, fs *filesys.InMemFS, dir string) {
	t.Helper()
	require.NoError(t, fs.Mkdir(dir))
	require.NoError(t, fs.WriteFile(dir+"/"+objpath.ArraySchemaSentinel, []byte("schema-v1")))
	require.NoError(t, fs.CreateSentinel(dir+"/"+objpath.ConsolidationLockName))
}

func TestGetOrCreateIncrementsRefcountForSamePath(t *testing.T) {
	r := New(catalogmetrics.Noop(), nil)
	e1 := r.GetOrCreate("/ws/g/a", objpath.KindArray)
	e2 := r.GetOrCreate("/ws/g/a", objpath.KindArray)

	require.Same(t, e1, e2)
	require.Equal(t, 2, e1.Refcount())
}

func TestReleaseBalancesRefcountAndEmptiesRegistry(t *testing.T) {
	r := New(catalogmetrics.Noop(), nil)
	e := r.GetOrCreate("/ws/g/a", objpath.KindArray)
	r.GetOrCreate("/ws/g/a", objpath.KindArray)
	require.Equal(t, 2, e.Refcount())

	require.NoError(t, r.Release("/ws/g/a"))
	require.Equal(t, 1, e.Refcount())

	require.NoError(t, r.Release("/ws/g/a"))
	require.Len(t, r.entries, 0)
}

func TestReleaseUnknownPathIsNotFound(t *testing.T) {
	r := New(catalogmetrics.Noop(), nil)
	err := r.Release("/never/opened")
	require.True(t, catalogerr.Is(err, catalogerr.KindNotFound))
}

func TestFirstOpenInitLoadsEmptyFragmentsSuccessfully(t *testing.T) {
	fs := filesys.NewInMemFS()
	require.NoError(t, fs.Mkdir("/ws"))
	newArrayDir(t, fs, "/ws/a")

	r := New(catalogmetrics.Noop(), nil)
	entry := r.GetOrCreate("/ws/a", objpath.KindArray)

	err := r.FirstOpenInit(context.Background(), fs, entry, &fakeCodec{}, &fakeLoader{})
	require.NoError(t, err)
	require.Equal(t, StateReady, entry.State())
	require.Len(t, entry.Fragments, 0)
	require.NotNil(t, entry.BookKeeping)
	require.Len(t, entry.BookKeeping, 0)
}

func TestFirstOpenInitSweepsGarbageFragmentsAndOrdersTheRest(t *testing.T) {
	fs := filesys.NewInMemFS()
	require.NoError(t, fs.Mkdir("/ws"))
	newArrayDir(t, fs, "/ws/a")

	require.NoError(t, fs.Mkdir("/ws/a/__x_3"))
	require.NoError(t, fs.CreateSentinel("/ws/a/__x_3/"+objpath.FragmentSentinel))
	require.NoError(t, fs.Mkdir("/ws/a/__y_1"))
	require.NoError(t, fs.CreateSentinel("/ws/a/__y_1/"+objpath.FragmentSentinel))
	// a headless fragment directory missing its sentinel, e.g. left over
	// from a crash between consolidation steps 5 and 7.
	require.NoError(t, fs.Mkdir("/ws/a/__z_2"))

	r := New(catalogmetrics.Noop(), nil)
	entry := r.GetOrCreate("/ws/a", objpath.KindArray)

	require.NoError(t, r.FirstOpenInit(context.Background(), fs, entry, &fakeCodec{}, &fakeLoader{}))
	require.Len(t, entry.Fragments, 2)
	require.Equal(t, "/ws/a/__y_1", entry.Fragments[0].Path)
	require.Equal(t, "/ws/a/__x_3", entry.Fragments[1].Path)

	exists, _ := fs.Exists("/ws/a/__z_2")
	require.False(t, exists, "headless fragment directory should have been swept")
}

func TestFirstOpenInitFailureLeavesEntryNascentWithRefcountIntact(t *testing.T) {
	fs := filesys.NewInMemFS()
	require.NoError(t, fs.Mkdir("/ws"))
	newArrayDir(t, fs, "/ws/a")

	r := New(catalogmetrics.Noop(), nil)
	entry := r.GetOrCreate("/ws/a", objpath.KindArray)

	err := r.FirstOpenInit(context.Background(), fs, entry, &fakeCodec{fail: true}, &fakeLoader{})
	require.Error(t, err)
	require.Equal(t, StateNascent, entry.State())
	require.Equal(t, 1, entry.Refcount())

	require.NoError(t, r.Release("/ws/a"))
	require.Len(t, r.entries, 0)
}

func TestFirstOpenInitIsIdempotentOnceReady(t *testing.T) {
	fs := filesys.NewInMemFS()
	require.NoError(t, fs.Mkdir("/ws"))
	newArrayDir(t, fs, "/ws/a")

	r := New(catalogmetrics.Noop(), nil)
	entry := r.GetOrCreate("/ws/a", objpath.KindArray)
	require.NoError(t, r.FirstOpenInit(context.Background(), fs, entry, &fakeCodec{}, &fakeLoader{}))

	require.NoError(t, r.FirstOpenInit(context.Background(), fs, entry, &fakeCodec{fail: true}, &fakeLoader{}))
	require.Equal(t, StateReady, entry.State())
}
