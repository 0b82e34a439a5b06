package objpath

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicaliseAbsolute(t *testing.T) {
	p, err := Canonicalise("/a//b/./c/../d")
	require.NoError(t, err)
	require.Equal(t, "/a/b/d", p)
}

func TestCanonicaliseEscapingRootIsInvalid(t *testing.T) {
	p, err := Canonicalise("/../a")
	require.NoError(t, err)
	require.Equal(t, "", p)
}

func TestCanonicaliseHome(t *testing.T) {
	old := os.Getenv("HOME")
	defer os.Setenv("HOME", old)
	require.NoError(t, os.Setenv("HOME", "/home/tester"))

	p, err := Canonicalise("~/ws")
	require.NoError(t, err)
	require.Equal(t, "/home/tester/ws", p)
}

func TestCanonicaliseTooLong(t *testing.T) {
	long := make([]byte, MaxPathLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := Canonicalise("/" + string(long))
	require.Error(t, err)
}

func TestParent(t *testing.T) {
	require.Equal(t, "/a/b", Parent("/a/b/c"))
	require.Equal(t, "", Parent("/a"))
	require.Equal(t, "", Parent("/"))
}
