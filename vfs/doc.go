// Package vfs defines the unified filesystem abstraction at the center of
// nohrs. Every storage backend (local disk, in-memory, S3-compatible remote)
// implements the same FS contract, so the explorer, search indexer, and
// transfer queue operate on any of them without knowing which one they hold.
//
// The main FS interface is composed of five sub-interfaces:
//
//   - ReadFS: read-only operations (Open, Stat, ReadDir, ReadFile, Exists)
//   - WriteFS: write operations (Create, OpenFile, WriteFile, Mkdir)
//   - ManageFS: structural operations (Remove, RemoveAll, Rename)
//   - WalkFS: directory traversal (Walk)
//   - ChrootFS: scoped filesystem views (Chroot)
//
// Backend-specific capabilities are discovered with type assertions:
//
//   - MetadataFS: Lstat, Chmod, Chtimes (local and memory backends)
//   - SymlinkFS: Symlink, Readlink (local backend)
//   - TempFS: TempFile, TempDir (local and memory backends)
//
// Addresses give the backends one naming scheme. An Addr like
// "s3://bucket/notes/todo.md" or "file:///home/user" resolves through a
// Mounts registry to a mounted FS and a path relative to it.
package vfs
