// Package objkey normalizes filesystem paths into S3 object keys.
// Keys always use forward slashes and never carry leading or trailing
// slashes; the empty key addresses the bucket (or prefix) root.
package objkey

import (
	"path/filepath"
	"strings"
)

// Clean normalizes a path into key form. Returns "." for empty input so the
// result composes with Join.
func Clean(path string) string {
	if path == "" {
		return "."
	}

	path = strings.ReplaceAll(path, "\\", "/")
	path = filepath.ToSlash(filepath.Clean(path))
	path = strings.Trim(path, "/")

	if path == "" {
		return "."
	}
	return path
}

// CleanPrefix normalizes a mount prefix. "." and "" both mean no prefix.
func CleanPrefix(prefix string) string {
	if prefix == "" || prefix == "." {
		return ""
	}
	prefix = strings.ReplaceAll(prefix, "\\", "/")
	prefix = filepath.ToSlash(filepath.Clean(prefix))
	return strings.Trim(prefix, "/")
}

// Join composes the full object key for a name under a prefix.
func Join(prefix, name string) string {
	name = Clean(name)
	if name == "." {
		return prefix
	}
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Child composes the key of an entry under its parent key.
func Child(parentKey, entryName string) string {
	if parentKey == "" {
		return entryName
	}
	return parentKey + "/" + entryName
}

// AsDir ensures a key carries the trailing slash used for delimiter
// listings. The root key stays empty.
func AsDir(key string) string {
	if key == "" || strings.HasSuffix(key, "/") {
		return key
	}
	return key + "/"
}
