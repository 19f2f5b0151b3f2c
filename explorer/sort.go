package explorer

import (
	"path"
	"sort"
	"strings"
)

// SortKey selects the field a listing is ordered by.
type SortKey int

const (
	// SortByName orders case-insensitively by name.
	SortByName SortKey = iota
	// SortBySize orders by byte size.
	SortBySize
	// SortByModified orders by modification time.
	SortByModified
	// SortByType orders by file extension.
	SortByType
)

// ParseSortKey maps a query-string value to a SortKey. Unknown values fall
// back to name ordering.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(s) {
	case "size":
		return SortBySize
	case "modified":
		return SortByModified
	case "type":
		return SortByType
	default:
		return SortByName
	}
}

// Sort orders entries in place. Directories always sort before files
// regardless of key or direction; the key then orders within each group.
func Sort(entries []Entry, key SortKey, asc bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		aDir := a.Kind == KindDir
		bDir := b.Kind == KindDir
		if aDir != bDir {
			return aDir
		}

		var less, equal bool
		switch key {
		case SortBySize:
			less, equal = a.Size < b.Size, a.Size == b.Size
		case SortByModified:
			less, equal = a.Modified < b.Modified, a.Modified == b.Modified
		case SortByType:
			ea, eb := extensionKey(a.Name, a.Kind), extensionKey(b.Name, b.Kind)
			less, equal = ea < eb, ea == eb
		default:
			na, nb := strings.ToLower(a.Name), strings.ToLower(b.Name)
			less, equal = na < nb, na == nb
		}
		if equal {
			return false
		}
		if asc {
			return less
		}
		return !less
	})
}

// extensionKey derives the type-ordering key for an entry. Directories get
// a key that sorts first and extensionless files one that sorts last, so a
// type sort still reads naturally.
func extensionKey(name, kind string) string {
	switch kind {
	case KindDir:
		return "0_dir"
	case KindFile:
		ext := strings.TrimPrefix(path.Ext(name), ".")
		if ext == "" {
			return "zzz_noext"
		}
		return strings.ToLower(ext)
	default:
		return kind
	}
}
