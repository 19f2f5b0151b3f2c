package objkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "."},
		{"dot", ".", "."},
		{"root slash", "/", "."},
		{"simple", "foo", "foo"},
		{"leading slash", "/foo/bar", "foo/bar"},
		{"trailing slash", "foo/bar/", "foo/bar"},
		{"backslashes", `foo\bar`, "foo/bar"},
		{"dot segments", "foo/./bar/../baz", "foo/baz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanPrefix(t *testing.T) {
	assert.Equal(t, "", CleanPrefix(""))
	assert.Equal(t, "", CleanPrefix("."))
	assert.Equal(t, "", CleanPrefix("/"))
	assert.Equal(t, "data", CleanPrefix("/data/"))
	assert.Equal(t, "a/b", CleanPrefix("a/b/"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "", Join("", ""))
	assert.Equal(t, "pre", Join("pre", "."))
	assert.Equal(t, "foo", Join("", "foo"))
	assert.Equal(t, "pre/foo/bar", Join("pre", "/foo/bar/"))
}

func TestChild(t *testing.T) {
	assert.Equal(t, "foo", Child("", "foo"))
	assert.Equal(t, "a/b/foo", Child("a/b", "foo"))
}

func TestAsDir(t *testing.T) {
	assert.Equal(t, "", AsDir(""))
	assert.Equal(t, "a/", AsDir("a"))
	assert.Equal(t, "a/b/", AsDir("a/b/"))
}
