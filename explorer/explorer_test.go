package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noh-rs/nohrs/vfs"
	"github.com/noh-rs/nohrs/vfs/billy"
)

func newTestExplorer(t *testing.T) (*Explorer, vfs.FS) {
	t.Helper()

	fsys := billy.NewMemory()
	require.NoError(t, fsys.MkdirAll("docs", 0755))
	require.NoError(t, fsys.WriteFile("Zebra.txt", []byte("zzz"), 0644))
	require.NoError(t, fsys.WriteFile("apple.txt", []byte("aaaaa"), 0644))
	require.NoError(t, fsys.WriteFile("Mango.txt", []byte("mm"), 0644))

	mounts := vfs.NewMounts()
	mounts.Mount("mem://work", fsys)
	return New(mounts), fsys
}

func TestListSortsCaseInsensitively(t *testing.T) {
	e, _ := newTestExplorer(t)

	result, err := e.List(ListParams{Addr: "mem://work"})
	require.NoError(t, err)
	require.Len(t, result.Entries, 4)

	names := make([]string, len(result.Entries))
	for i, entry := range result.Entries {
		names[i] = entry.Name
	}
	assert.Equal(t, []string{"apple.txt", "docs", "Mango.txt", "Zebra.txt"}, names)
	assert.Empty(t, result.NextCursor)
}

func TestListEntryMetadata(t *testing.T) {
	e, _ := newTestExplorer(t)

	result, err := e.List(ListParams{Addr: "mem://work"})
	require.NoError(t, err)

	byName := make(map[string]Entry)
	for _, entry := range result.Entries {
		byName[entry.Name] = entry
	}

	assert.Equal(t, KindDir, byName["docs"].Kind)
	assert.Equal(t, int64(0), byName["docs"].Size)

	assert.Equal(t, KindFile, byName["apple.txt"].Kind)
	assert.Equal(t, int64(5), byName["apple.txt"].Size)
	assert.Equal(t, "mem://work/apple.txt", byName["apple.txt"].Path)
}

func TestListPaging(t *testing.T) {
	e, _ := newTestExplorer(t)

	page1, err := e.List(ListParams{Addr: "mem://work", Limit: 3})
	require.NoError(t, err)
	require.Len(t, page1.Entries, 3)
	require.Equal(t, "3", page1.NextCursor)

	page2, err := e.List(ListParams{Addr: "mem://work", Limit: 3, Cursor: page1.NextCursor})
	require.NoError(t, err)
	require.Len(t, page2.Entries, 1)
	assert.Empty(t, page2.NextCursor)
	assert.Equal(t, "Zebra.txt", page2.Entries[0].Name)
}

func TestListInvalidCursorRestarts(t *testing.T) {
	e, _ := newTestExplorer(t)

	result, err := e.List(ListParams{Addr: "mem://work", Limit: 2, Cursor: "not-a-number"})
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "apple.txt", result.Entries[0].Name)
}

func TestListCursorPastEnd(t *testing.T) {
	e, _ := newTestExplorer(t)

	result, err := e.List(ListParams{Addr: "mem://work", Limit: 2, Cursor: "99"})
	require.NoError(t, err)
	assert.Empty(t, result.Entries)
	assert.Empty(t, result.NextCursor)
}

func TestListUnmountedAddress(t *testing.T) {
	e, _ := newTestExplorer(t)

	_, err := e.List(ListParams{Addr: "s3://nowhere/docs"})
	require.Error(t, err)
	assert.ErrorIs(t, err, vfs.ErrNotMounted)
}

func TestStat(t *testing.T) {
	e, _ := newTestExplorer(t)

	entry, err := e.Stat("mem://work/apple.txt")
	require.NoError(t, err)
	assert.Equal(t, "apple.txt", entry.Name)
	assert.Equal(t, KindFile, entry.Kind)
	assert.Equal(t, int64(5), entry.Size)

	entry, err = e.Stat("mem://work/docs")
	require.NoError(t, err)
	assert.Equal(t, KindDir, entry.Kind)

	_, err = e.Stat("mem://work/missing.txt")
	require.Error(t, err)
}
