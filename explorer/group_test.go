package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noh-rs/nohrs/search"
)

func TestGroupFoldsMatchesPerFile(t *testing.T) {
	results := []search.Result{
		{Path: "/home/u/b.txt", LineNumber: 3, LineContent: "needle here"},
		{Path: "/home/u/a.txt", LineNumber: 1, LineContent: "first needle"},
		{Path: "/home/u/b.txt", LineNumber: 7, LineContent: "another needle"},
	}

	grouped := Group(results)
	require.Len(t, grouped, 2)

	// Sorted by path.
	assert.Equal(t, "/home/u/a.txt", grouped[0].Path)
	assert.Equal(t, "a.txt", grouped[0].Filename)
	assert.Equal(t, "/home/u", grouped[0].Folder)
	require.Len(t, grouped[0].Matches, 1)

	assert.Equal(t, "/home/u/b.txt", grouped[1].Path)
	require.Len(t, grouped[1].Matches, 2)
	assert.Equal(t, 3, grouped[1].Matches[0].LineNumber)
	assert.Equal(t, "needle here", grouped[1].Matches[0].LineContent)
}

func TestGroupKeepsFilenameOnlyMatches(t *testing.T) {
	results := []search.Result{
		{Path: "/home/u/needle.txt", LineNumber: 0},
	}

	grouped := Group(results)
	require.Len(t, grouped, 1)
	assert.Equal(t, "needle.txt", grouped[0].Filename)
	assert.Empty(t, grouped[0].Matches)
	assert.NotNil(t, grouped[0].Matches)
}

func TestGroupEmpty(t *testing.T) {
	assert.Empty(t, Group(nil))
}
