package schemacodec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewaerose/TileDB/catalogerr"
	"github.com/matthewaerose/TileDB/filesys"
	"github.com/matthewaerose/TileDB/objpath"
)

func TestStoreLoadRoundTrip(t *testing.T) {
	fs := filesys.NewInMemFS()
	require.NoError(t, fs.Mkdir("/ws"))
	require.NoError(t, fs.Mkdir("/ws/a"))

	require.NoError(t, Store(fs, "/ws/a", objpath.KindArray, []byte("schema-bytes")))
	got, err := Load(fs, "/ws/a", objpath.KindArray)
	require.NoError(t, err)
	require.Equal(t, []byte("schema-bytes"), got)
}

func TestStoreTruncatesPriorSchema(t *testing.T) {
	fs := filesys.NewInMemFS()
	require.NoError(t, fs.Mkdir("/ws"))
	require.NoError(t, fs.Mkdir("/ws/a"))

	require.NoError(t, Store(fs, "/ws/a", objpath.KindArray, []byte("a long first schema")))
	require.NoError(t, Store(fs, "/ws/a", objpath.KindArray, []byte("short")))

	got, err := Load(fs, "/ws/a", objpath.KindArray)
	require.NoError(t, err)
	require.Equal(t, []byte("short"), got)
}

func TestLoadEmptyIsSchemaCorrupt(t *testing.T) {
	fs := filesys.NewInMemFS()
	require.NoError(t, fs.Mkdir("/ws"))
	require.NoError(t, fs.Mkdir("/ws/a"))
	require.NoError(t, fs.CreateSentinel("/ws/a/"+objpath.ArraySchemaSentinel))

	_, err := Load(fs, "/ws/a", objpath.KindArray)
	require.True(t, catalogerr.Is(err, catalogerr.KindSchemaCorrupt))
}
