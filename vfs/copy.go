package vfs

import (
	"io/fs"
	"path"
	"strings"
)

// CopyAll copies the tree rooted at srcRoot in src into dst, preserving the
// directory structure and file permissions. Paths in dst are relative to the
// destination root. Use "." as srcRoot to copy the entire source.
//
// The source only needs to be a read-only fs.FS, so embedded filesystems and
// chrooted backends both work. Directories are not created explicitly;
// MkdirAll runs for each file's parent, which also suits object-store
// destinations where directories are virtual.
func CopyAll(dst FS, src fs.FS, srcRoot string) error {
	return fs.WalkDir(src, srcRoot, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		data, err := fs.ReadFile(src, filePath)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		dstPath := filePath
		if srcRoot != "." && srcRoot != "" {
			dstPath = strings.TrimPrefix(filePath, srcRoot)
			dstPath = strings.TrimPrefix(dstPath, "/")
		}

		if dir := path.Dir(dstPath); dir != "." && dir != "" {
			if err := dst.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}

		return dst.WriteFile(dstPath, data, info.Mode().Perm())
	})
}
