package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noh-rs/nohrs/errors"
)

func newTestEngine(t *testing.T, root string) *Engine {
	t.Helper()

	e, err := NewEngine(EngineConfig{
		IndexPath:   filepath.Join(t.TempDir(), "index.db"),
		ContentRoot: root,
		Debounce:    100 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = e.Close()
	})
	return e
}

func waitIndexed(t *testing.T, e *Engine) {
	t.Helper()
	require.Eventually(t, func() bool {
		return e.Progress() >= 1
	}, 10*time.Second, 50*time.Millisecond, "initial indexing did not complete")
}

func TestEngineIndexesInBackground(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":     "contains the needle",
		"sub/b.txt": "nothing",
	})

	e := newTestEngine(t, root)
	waitIndexed(t, e)

	results, err := e.Search(context.Background(), "needle", ScopeHome)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, filepath.Join(root, "a.txt"), results[0].Path)
}

func TestEngineWatcherKeepsIndexFresh(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "original"})

	e := newTestEngine(t, root)
	waitIndexed(t, e)

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("late needle"), 0644))

	require.Eventually(t, func() bool {
		results, err := e.Search(context.Background(), "needle", ScopeHome)
		return err == nil && len(results) > 0
	}, 10*time.Second, 100*time.Millisecond)
}

func TestEngineInvalidScope(t *testing.T) {
	e := newTestEngine(t, t.TempDir())

	_, err := e.Search(context.Background(), "x", Scope(42))
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidScope, errors.GetCode(err))
}

func TestEngineCloseIdempotent(t *testing.T) {
	e := newTestEngine(t, t.TempDir())
	require.NoError(t, e.Close())
	assert.NoError(t, e.Close())
}

func TestScopeString(t *testing.T) {
	assert.Equal(t, "home", ScopeHome.String())
	assert.Equal(t, "root", ScopeRoot.String())
	assert.Equal(t, "unknown", Scope(9).String())
}
