// Package explorer provides the browsing operations of the unified
// filesystem layer: paged directory listings, result sorting, search result
// grouping, and file previews. All operations work against vfs mounts, so
// local, in-memory, and remote trees behave identically.
package explorer

// Entry kinds as reported in listings.
const (
	KindDir     = "dir"
	KindFile    = "file"
	KindSymlink = "symlink"
	KindOther   = "other"
	KindUnknown = "unknown"
)

// Entry is one row of a directory listing.
type Entry struct {
	// Name is the base name of the entry.
	Name string `json:"name"`

	// Path is the full address of the entry, e.g. "file:///home/u/doc.txt"
	// or "s3://bucket/key".
	Path string `json:"path"`

	// Kind is one of the Kind constants.
	Kind string `json:"kind"`

	// Size in bytes. Zero for directories and symlinks.
	Size int64 `json:"size"`

	// Modified is the mtime in Unix seconds. Zero when unknown.
	Modified int64 `json:"modified"`
}
