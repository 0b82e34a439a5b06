package objpath

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewaerose/TileDB/filesys"
)

func TestProbeClassifiesBySentinel(t *testing.T) {
	fs := filesys.NewInMemFS()
	require.NoError(t, fs.Mkdir("/ws"))
	require.NoError(t, fs.CreateSentinel("/ws/"+WorkspaceSentinel))
	require.NoError(t, fs.Mkdir("/ws/g"))
	require.NoError(t, fs.CreateSentinel("/ws/g/"+GroupSentinel))
	require.NoError(t, fs.Mkdir("/ws/g/a"))
	require.NoError(t, fs.CreateSentinel("/ws/g/a/"+ArraySchemaSentinel))
	require.NoError(t, fs.Mkdir("/ws/g/a/m"))
	require.NoError(t, fs.CreateSentinel("/ws/g/a/m/"+MetadataSchemaSentinel))
	require.NoError(t, fs.Mkdir("/ws/other"))

	require.Equal(t, KindWorkspace, Probe(fs, "/ws"))
	require.Equal(t, KindGroup, Probe(fs, "/ws/g"))
	require.Equal(t, KindArray, Probe(fs, "/ws/g/a"))
	require.Equal(t, KindMetadata, Probe(fs, "/ws/g/a/m"))
	require.Equal(t, KindOther, Probe(fs, "/ws/other"))
	require.Equal(t, KindInvalid, Probe(fs, "/does-not-exist"))
}

func TestProbeNonDirectoryIsInvalid(t *testing.T) {
	fs := filesys.NewInMemFS()
	require.NoError(t, fs.Mkdir("/ws"))
	require.NoError(t, fs.WriteFile("/ws/file.txt", []byte("x")))
	require.Equal(t, KindInvalid, Probe(fs, "/ws/file.txt"))
}
