package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestSortDirectoriesFirst(t *testing.T) {
	entries := []Entry{
		{Name: "b.txt", Kind: KindFile},
		{Name: "alpha", Kind: KindDir},
		{Name: "a.txt", Kind: KindFile},
		{Name: "zeta", Kind: KindDir},
	}

	Sort(entries, SortByName, true)
	assert.Equal(t, []string{"alpha", "zeta", "a.txt", "b.txt"}, names(entries))

	// Descending still keeps directories first.
	Sort(entries, SortByName, false)
	assert.Equal(t, []string{"zeta", "alpha", "b.txt", "a.txt"}, names(entries))
}

func TestSortByNameCaseInsensitive(t *testing.T) {
	entries := []Entry{
		{Name: "Zebra.txt", Kind: KindFile},
		{Name: "apple.txt", Kind: KindFile},
		{Name: "Mango.txt", Kind: KindFile},
	}

	Sort(entries, SortByName, true)
	assert.Equal(t, []string{"apple.txt", "Mango.txt", "Zebra.txt"}, names(entries))
}

func TestSortBySize(t *testing.T) {
	entries := []Entry{
		{Name: "big.bin", Kind: KindFile, Size: 300},
		{Name: "small.bin", Kind: KindFile, Size: 10},
		{Name: "mid.bin", Kind: KindFile, Size: 50},
	}

	Sort(entries, SortBySize, true)
	assert.Equal(t, []string{"small.bin", "mid.bin", "big.bin"}, names(entries))

	Sort(entries, SortBySize, false)
	assert.Equal(t, []string{"big.bin", "mid.bin", "small.bin"}, names(entries))
}

func TestSortByModified(t *testing.T) {
	entries := []Entry{
		{Name: "new.txt", Kind: KindFile, Modified: 300},
		{Name: "old.txt", Kind: KindFile, Modified: 100},
	}

	Sort(entries, SortByModified, true)
	assert.Equal(t, []string{"old.txt", "new.txt"}, names(entries))
}

func TestSortByType(t *testing.T) {
	entries := []Entry{
		{Name: "noext", Kind: KindFile},
		{Name: "b.TXT", Kind: KindFile},
		{Name: "a.go", Kind: KindFile},
		{Name: "stuff", Kind: KindDir},
	}

	Sort(entries, SortByType, true)
	assert.Equal(t, []string{"stuff", "a.go", "b.TXT", "noext"}, names(entries))
}

func TestExtensionKey(t *testing.T) {
	assert.Equal(t, "0_dir", extensionKey("anything", KindDir))
	assert.Equal(t, "zzz_noext", extensionKey("Makefile", KindFile))
	assert.Equal(t, "txt", extensionKey("NOTES.TXT", KindFile))
	assert.Equal(t, KindSymlink, extensionKey("link", KindSymlink))
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortBySize, ParseSortKey("size"))
	assert.Equal(t, SortByModified, ParseSortKey("Modified"))
	assert.Equal(t, SortByType, ParseSortKey("type"))
	assert.Equal(t, SortByName, ParseSortKey(""))
	assert.Equal(t, SortByName, ParseSortKey("bogus"))
}
