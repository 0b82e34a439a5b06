package filesys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newLocalFSForTest(t *testing.T) Filesys {
	t.Helper()
	return LocalFS
}

func filesystemsToTest(t *testing.T) map[string]Filesys {
	return map[string]Filesys{
		"inmem": NewInMemFS(),
		"local": newLocalFSForTest(t),
	}
}

func tempRoot(t *testing.T, fs Filesys, name string) string {
	t.Helper()
	if _, ok := fs.(*InMemFS); ok {
		require.NoError(t, fs.Mkdir("/"+name))
		return "/" + name
	}
	dir := t.TempDir()
	return dir
}

func TestMkdirAndExists(t *testing.T) {
	for name, fs := range filesystemsToTest(t) {
		t.Run(name, func(t *testing.T) {
			root := tempRoot(t, fs, "mkdir")
			child := root + "/child"
			require.NoError(t, fs.Mkdir(child))

			exists, isDir := fs.Exists(child)
			require.True(t, exists)
			require.True(t, isDir)

			err := fs.Mkdir(child)
			require.Error(t, err)
		})
	}
}

func TestWriteReadRemoveFile(t *testing.T) {
	for name, fs := range filesystemsToTest(t) {
		t.Run(name, func(t *testing.T) {
			root := tempRoot(t, fs, "file")
			fp := root + "/schema.tdb"
			require.NoError(t, fs.WriteFile(fp, []byte("blob")))

			data, err := fs.ReadFile(fp)
			require.NoError(t, err)
			require.Equal(t, []byte("blob"), data)

			require.NoError(t, fs.RemoveFile(fp))
			exists, _ := fs.Exists(fp)
			require.False(t, exists)
		})
	}
}

func TestReadDirLists(t *testing.T) {
	for name, fs := range filesystemsToTest(t) {
		t.Run(name, func(t *testing.T) {
			root := tempRoot(t, fs, "ls")
			require.NoError(t, fs.Mkdir(root+"/a"))
			require.NoError(t, fs.Mkdir(root+"/b"))
			require.NoError(t, fs.WriteFile(root+"/c.tdb", []byte{}))

			infos, err := fs.ReadDir(root)
			require.NoError(t, err)
			names := make([]string, 0, len(infos))
			for _, i := range infos {
				names = append(names, i.Name)
			}
			require.ElementsMatch(t, []string{"a", "b", "c.tdb"}, names)
		})
	}
}

func TestRenameDirectory(t *testing.T) {
	for name, fs := range filesystemsToTest(t) {
		t.Run(name, func(t *testing.T) {
			root := tempRoot(t, fs, "mv")
			require.NoError(t, fs.Mkdir(root+"/old"))
			require.NoError(t, fs.WriteFile(root+"/old/f.tdb", []byte("x")))

			require.NoError(t, fs.Rename(root+"/old", root+"/new"))

			exists, isDir := fs.Exists(root + "/new")
			require.True(t, exists)
			require.True(t, isDir)
			data, err := fs.ReadFile(root + "/new/f.tdb")
			require.NoError(t, err)
			require.Equal(t, []byte("x"), data)

			exists, _ = fs.Exists(root + "/old")
			require.False(t, exists)
		})
	}
}

func TestRemoveAllRecursive(t *testing.T) {
	for name, fs := range filesystemsToTest(t) {
		t.Run(name, func(t *testing.T) {
			root := tempRoot(t, fs, "rmdir")
			require.NoError(t, fs.Mkdir(root+"/d"))
			require.NoError(t, fs.WriteFile(root+"/d/f.tdb", []byte("x")))

			require.NoError(t, fs.RemoveAll(root+"/d"))

			exists, _ := fs.Exists(root + "/d")
			require.False(t, exists)
		})
	}
}
