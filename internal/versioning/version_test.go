package versioning

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsVersion(t *testing.T) {
	valid := []string{"1.0.0", "10.20.30", "0.0.1"}
	invalid := []string{"", "1.0", "v1.0.0", "1.0.0-beta", "abc", "1.0.0.0", "static", " 1.0.0"}
	for _, v := range valid {
		require.True(t, IsVersion(v), v)
	}
	for _, v := range invalid {
		require.False(t, IsVersion(v), v)
	}
}

func TestParseAndCompare(t *testing.T) {
	a, err := Parse("2.0.0")
	require.NoError(t, err)
	b, err := Parse("10.0.0")
	require.NoError(t, err)

	require.Equal(t, Number{Major: 2}, a)
	require.Equal(t, "10.0.0", b.String())
	require.Equal(t, -1, a.Compare(b))
	require.Equal(t, 1, b.Compare(a))
	require.Equal(t, 0, a.Compare(a))

	_, err = Parse("v2")
	require.ErrorIs(t, err, ErrInvalidVersion)
}

func TestSortDescendingLexical(t *testing.T) {
	in := []string{"1.0.0", "2.0.0", "10.0.0", "abc"}
	got := SortDescending(in, SortLexical)
	require.Equal(t, []string{"2.0.0", "10.0.0", "1.0.0"}, got)
	require.Equal(t, []string{"1.0.0", "2.0.0", "10.0.0", "abc"}, in, "input must not be modified")
}

func TestSortDescendingSemantic(t *testing.T) {
	got := SortDescending([]string{"1.0.0", "2.0.0", "10.0.0", "static", "1.10.0", "1.9.0"}, SortSemantic)
	require.Equal(t, []string{"10.0.0", "2.0.0", "1.10.0", "1.9.0", "1.0.0"}, got)
}

func TestParseSortOrder(t *testing.T) {
	for in, want := range map[string]SortOrder{"": SortLexical, "Lexical": SortLexical, " semantic ": SortSemantic} {
		got, err := ParseSortOrder(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseSortOrder("numeric")
	require.Error(t, err)
}
