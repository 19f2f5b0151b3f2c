package explorer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noh-rs/nohrs/vfs"
	"github.com/noh-rs/nohrs/vfs/billy"
)

func newPreviewExplorer(t *testing.T) (*Explorer, vfs.FS) {
	t.Helper()
	fsys := billy.NewMemory()
	mounts := vfs.NewMounts()
	mounts.Mount("mem://work", fsys)
	return New(mounts), fsys
}

func TestPreviewPlainText(t *testing.T) {
	e, fsys := newPreviewExplorer(t)
	require.NoError(t, fsys.WriteFile("notes.txt", []byte("plain content"), 0644))

	p, err := e.Preview("mem://work/notes.txt", 0)
	require.NoError(t, err)
	assert.Equal(t, PreviewText, p.Type)
	assert.Equal(t, "plain content", p.Content)
	assert.False(t, p.Truncated)
}

func TestPreviewMarkdownRendersHTML(t *testing.T) {
	e, fsys := newPreviewExplorer(t)
	require.NoError(t, fsys.WriteFile("readme.md", []byte("# Title\n\nsome *emphasis*"), 0644))

	p, err := e.Preview("mem://work/readme.md", 0)
	require.NoError(t, err)
	assert.Equal(t, PreviewMarkdown, p.Type)
	assert.Contains(t, p.Content, "<h1")
	assert.Contains(t, p.Content, "<em>emphasis</em>")
}

func TestPreviewBinary(t *testing.T) {
	e, fsys := newPreviewExplorer(t)
	require.NoError(t, fsys.WriteFile("blob.bin", []byte{0x89, 0x50, 0x00, 0x47}, 0644))

	p, err := e.Preview("mem://work/blob.bin", 0)
	require.NoError(t, err)
	assert.Equal(t, PreviewBinary, p.Type)
	assert.Empty(t, p.Content)
}

func TestPreviewTruncates(t *testing.T) {
	e, fsys := newPreviewExplorer(t)
	require.NoError(t, fsys.WriteFile("big.txt", []byte(strings.Repeat("x", 100)), 0644))

	p, err := e.Preview("mem://work/big.txt", 10)
	require.NoError(t, err)
	assert.True(t, p.Truncated)
	assert.Equal(t, strings.Repeat("x", 10), p.Content)
}

func TestPreviewMissingFile(t *testing.T) {
	e, _ := newPreviewExplorer(t)

	_, err := e.Preview("mem://work/absent.txt", 0)
	require.Error(t, err)
}
