package explorer

import (
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/noh-rs/nohrs/errors"
	"github.com/noh-rs/nohrs/vfs"
)

// Explorer serves listings and previews over a shared mount registry.
type Explorer struct {
	mounts *vfs.Mounts
	logger *slog.Logger
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Explorer) {
		e.logger = logger
	}
}

// New creates an Explorer over the given mounts.
func New(mounts *vfs.Mounts, opts ...Option) *Explorer {
	e := &Explorer{
		mounts: mounts,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListParams selects a directory page.
type ListParams struct {
	// Addr is the directory address, e.g. "file:///home/u" or "s3://bucket/docs".
	Addr string

	// Limit caps the page size. Zero or negative means no limit.
	Limit int

	// Cursor resumes a listing from a previous page's NextCursor.
	// An unparsable cursor restarts from the beginning.
	Cursor string
}

// ListResult is one page of a listing.
type ListResult struct {
	Entries    []Entry `json:"entries"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// List returns one page of directory entries sorted case-insensitively by
// name. Names are collected for the whole directory to keep paging stable,
// but metadata is fetched only for the returned page, so large directories
// stay cheap on high-latency backends.
func (e *Explorer) List(params ListParams) (*ListResult, error) {
	addr, err := vfs.ParseAddr(params.Addr)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "parse address")
	}

	fsys, relPath, err := e.mounts.Resolve(params.Addr)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "resolve address")
	}

	dirents, err := fsys.ReadDir(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(err, errors.CodeNotFound, "read directory")
		}
		return nil, errors.Wrap(err, errors.CodeIO, "read directory")
	}

	sort.Slice(dirents, func(i, j int) bool {
		return strings.ToLower(dirents[i].Name()) < strings.ToLower(dirents[j].Name())
	})

	total := len(dirents)
	offset := 0
	if params.Cursor != "" {
		if n, err := strconv.Atoi(params.Cursor); err == nil && n > 0 {
			offset = n
		}
	}
	if offset > total {
		offset = total
	}

	end := total
	if params.Limit > 0 && offset+params.Limit < total {
		end = offset + params.Limit
	}

	entries := make([]Entry, 0, end-offset)
	for _, d := range dirents[offset:end] {
		child := addr
		child.Path = path.Join(addr.Path, d.Name())
		entries = append(entries, e.buildEntry(d, child))
	}

	result := &ListResult{Entries: entries}
	if end < total {
		result.NextCursor = strconv.Itoa(end)
	}
	return result, nil
}

// buildEntry fills metadata for one page row. Entries whose metadata cannot
// be read still appear, with kind "unknown".
func (e *Explorer) buildEntry(d fs.DirEntry, addr vfs.Addr) Entry {
	entry := Entry{
		Name: d.Name(),
		Path: addr.String(),
	}

	info, err := d.Info()
	if err != nil {
		e.logger.Warn("stat listing entry", "path", addr.String(), "error", err)
		entry.Kind = KindUnknown
		return entry
	}

	entry.Modified = info.ModTime().Unix()
	if entry.Modified < 0 {
		entry.Modified = 0
	}

	mode := info.Mode()
	switch {
	case mode.IsDir():
		entry.Kind = KindDir
	case mode&fs.ModeSymlink != 0:
		entry.Kind = KindSymlink
	case mode.IsRegular():
		entry.Kind = KindFile
		entry.Size = info.Size()
	default:
		entry.Kind = KindOther
	}
	return entry
}

// Stat returns a single entry for the named address.
func (e *Explorer) Stat(addrStr string) (*Entry, error) {
	addr, err := vfs.ParseAddr(addrStr)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "parse address")
	}

	fsys, relPath, err := e.mounts.Resolve(addrStr)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "resolve address")
	}

	info, err := fsys.Stat(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(err, errors.CodeNotFound, "stat")
		}
		return nil, errors.Wrap(err, errors.CodeIO, "stat")
	}

	entry := Entry{
		Name:     path.Base(addr.Path),
		Path:     addr.String(),
		Modified: info.ModTime().Unix(),
	}
	if entry.Modified < 0 {
		entry.Modified = 0
	}

	mode := info.Mode()
	switch {
	case mode.IsDir():
		entry.Kind = KindDir
	case mode&fs.ModeSymlink != 0:
		entry.Kind = KindSymlink
	case mode.IsRegular():
		entry.Kind = KindFile
		entry.Size = info.Size()
	default:
		entry.Kind = KindOther
	}
	return &entry, nil
}
