package fragment

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("/ws/g/a/__abc_def_100")
	require.NoError(t, err)
	require.Equal(t, int64(100), ts)
}

func TestParseTimestampRejectsNonFragment(t *testing.T) {
	_, err := ParseTimestamp("/ws/g/a/notafragment")
	require.Error(t, err)
}

func TestSortTotalOrder(t *testing.T) {
	paths := []string{
		"/a/__x_3",
		"/a/__y_1",
		"/a/__z_2",
	}
	named, err := Sort(paths)
	require.NoError(t, err)

	got := make([]string, len(named))
	for i, n := range named {
		got[i] = n.Path
	}
	require.Equal(t, []string{"/a/__y_1", "/a/__z_2", "/a/__x_3"}, got)
}

func TestSortRandomPermutationIsDeterministic(t *testing.T) {
	base := []string{"/a/__f1_100", "/a/__f2_200", "/a/__f3_300", "/a/__f4_400", "/a/__f5_500"}

	want, err := Sort(base)
	require.NoError(t, err)
	wantPaths := make([]string, len(want))
	for i, n := range want {
		wantPaths[i] = n.Path
	}

	for trial := 0; trial < 20; trial++ {
		perm := append([]string{}, base...)
		rand.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

		got, err := Sort(perm)
		require.NoError(t, err)
		gotPaths := make([]string, len(got))
		for i, n := range got {
			gotPaths[i] = n.Path
		}
		require.Equal(t, wantPaths, gotPaths)
	}
}

func TestSortTieBreakPreservesOriginalOrder(t *testing.T) {
	paths := []string{"/a/__u1_5", "/a/__u2_5", "/a/__u3_5"}
	named, err := Sort(paths)
	require.NoError(t, err)
	require.Equal(t, paths, []string{named[0].Path, named[1].Path, named[2].Path})
}
