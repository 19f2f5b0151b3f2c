package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func newTestIndex(t *testing.T, root string) *Index {
	t.Helper()
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"), root)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ix.Close()
	})
	return ix
}

func TestIndexTreeAndSearch(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"notes.txt":        "first line\nthe needle is here\nlast line",
		"docs/plan.md":     "nothing to see",
		"docs/needle.go":   "package main",
		".hidden/spot.txt": "a hidden needle",
	})

	ix := newTestIndex(t, root)
	require.NoError(t, ix.IndexTree(context.Background(), nil))

	results, err := ix.Search(context.Background(), "needle")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	byPath := make(map[string][]Result)
	for _, r := range results {
		byPath[r.Path] = append(byPath[r.Path], r)
	}

	// Content match carries the 1-based line number and line text.
	contentHits := byPath[filepath.Join(root, "notes.txt")]
	require.Len(t, contentHits, 1)
	assert.Equal(t, 2, contentHits[0].LineNumber)
	assert.Equal(t, "the needle is here", contentHits[0].LineContent)

	// Filename-only match keeps the file with line number zero.
	nameHits := byPath[filepath.Join(root, "docs/needle.go")]
	require.Len(t, nameHits, 1)
	assert.Equal(t, 0, nameHits[0].LineNumber)

	// Hidden files are indexed.
	assert.NotEmpty(t, byPath[filepath.Join(root, ".hidden/spot.txt")])

	// Unrelated files stay out.
	assert.Empty(t, byPath[filepath.Join(root, "docs/plan.md")])
}

func TestIndexHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":       "build/\n*.log\n",
		"keep.txt":         "needle",
		"trace.log":        "needle",
		"build/out.txt":    "needle",
		".git/config.file": "needle",
	})

	ix := newTestIndex(t, root)
	require.NoError(t, ix.IndexTree(context.Background(), nil))

	results, err := ix.Search(context.Background(), "needle")
	require.NoError(t, err)

	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	assert.Contains(t, paths, filepath.Join(root, "keep.txt"))
	assert.NotContains(t, paths, filepath.Join(root, "trace.log"))
	assert.NotContains(t, paths, filepath.Join(root, "build/out.txt"))
	assert.NotContains(t, paths, filepath.Join(root, ".git/config.file"))
}

func TestIndexSkipsBinaryAndLargeFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "blob.bin"), []byte("nee\x00dle"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"),
		[]byte("needle "+strings.Repeat("x", 64)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ok.txt"), []byte("needle"), 0644))

	ix, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"), root, WithMaxFileSize(32))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })
	require.NoError(t, ix.IndexTree(context.Background(), nil))

	results, err := ix.Search(context.Background(), "needle")
	require.NoError(t, err)

	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	assert.Contains(t, paths, filepath.Join(root, "ok.txt"))
	assert.NotContains(t, paths, filepath.Join(root, "blob.bin"))
	assert.NotContains(t, paths, filepath.Join(root, "big.txt"))
}

func TestMaxFileSizeDefaultAndOption(t *testing.T) {
	root := t.TempDir()

	ix := newTestIndex(t, root)
	assert.Equal(t, int64(DefaultMaxFileSize), ix.maxFileSize)

	capped, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"), root, WithMaxFileSize(128))
	require.NoError(t, err)
	t.Cleanup(func() { _ = capped.Close() })
	assert.Equal(t, int64(128), capped.maxFileSize)

	// Non-positive values keep the default.
	ignored, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"), root, WithMaxFileSize(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ignored.Close() })
	assert.Equal(t, int64(DefaultMaxFileSize), ignored.maxFileSize)
}

func TestIndexDirectoriesSearchableByName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "projects/needlework"), 0755))

	ix := newTestIndex(t, root)
	require.NoError(t, ix.IndexTree(context.Background(), nil))

	results, err := ix.Search(context.Background(), "needlework")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, filepath.Join(root, "projects/needlework"), results[0].Path)
	assert.Equal(t, 0, results[0].LineNumber)
}

func TestIndexProgressReporting(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 250; i++ {
		files[filepath.Join("many", "file"+strings.Repeat("x", i%7)+string(rune('a'+i%26))+".txt")] = "content"
	}
	writeTree(t, root, files)

	ix := newTestIndex(t, root)

	var seen []float64
	require.NoError(t, ix.IndexTree(context.Background(), func(p float64) {
		seen = append(seen, p)
	}))

	require.NotEmpty(t, seen)
	assert.Equal(t, 0.0, seen[0])
	assert.Equal(t, 1.0, seen[len(seen)-1])
	for _, p := range seen {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestProcessChanges(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "original needle"})

	ix := newTestIndex(t, root)
	require.NoError(t, ix.IndexTree(context.Background(), nil))

	// Modify and add.
	writeTree(t, root, map[string]string{
		"a.txt": "nothing here now",
		"b.txt": "fresh needle",
	})
	require.NoError(t, ix.ProcessChanges([]string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.txt"),
	}))

	results, err := ix.Search(context.Background(), "needle")
	require.NoError(t, err)

	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	assert.Contains(t, paths, filepath.Join(root, "b.txt"))
	assert.NotContains(t, paths, filepath.Join(root, "a.txt"))

	// Delete.
	require.NoError(t, os.Remove(filepath.Join(root, "b.txt")))
	require.NoError(t, ix.ProcessChanges([]string{filepath.Join(root, "b.txt")}))

	results, err = ix.Search(context.Background(), "needle")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "needle"})

	ix := newTestIndex(t, root)
	require.NoError(t, ix.IndexTree(context.Background(), nil))

	require.NoError(t, ix.Remove(filepath.Join(root, "a.txt")))

	results, err := ix.Search(context.Background(), "needle")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSchemaMismatchRecreates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "needle"})
	dbPath := filepath.Join(t.TempDir(), "index.db")

	ix, err := OpenIndex(dbPath, root)
	require.NoError(t, err)
	require.NoError(t, ix.IndexTree(context.Background(), nil))

	n, err := ix.DocCount()
	require.NoError(t, err)
	require.Positive(t, n)

	// Mark the schema as older than current.
	_, err = ix.db.Exec("UPDATE schema_meta SET version = ?", indexSchemaVersion-1)
	require.NoError(t, err)
	require.NoError(t, ix.Close())

	// Reopen drops and recreates; the index starts empty.
	ix2, err := OpenIndex(dbPath, root)
	require.NoError(t, err)
	defer ix2.Close()

	n, err = ix2.DocCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuildMatchQuery(t *testing.T) {
	assert.Equal(t, "", buildMatchQuery("   "))
	assert.Equal(t, `"needle"`, buildMatchQuery("needle"))
	assert.Equal(t, `"two" "words"`, buildMatchQuery("two words"))
	assert.Equal(t, `"say""hi"""`, buildMatchQuery(`say"hi"`))
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := newTestIndex(t, t.TempDir())

	results, err := ix.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, results)
}
