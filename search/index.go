package search

import (
	"bytes"
	"context"
	"database/sql"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	_ "modernc.org/sqlite"

	"github.com/noh-rs/nohrs/errors"
)

const indexSchemaVersion = 1

// DefaultMaxFileSize is the indexing size cap when none is configured.
const DefaultMaxFileSize = 10 * 1024 * 1024

// searchLimit caps how many candidate documents a query considers.
const searchLimit = 50

const indexSchema = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	path          TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	last_modified INTEGER NOT NULL,
	is_directory  INTEGER NOT NULL DEFAULT 0
);

CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
	path UNINDEXED,
	filename,
	content
);
`

// Index is the persistent full-text index over a local content root.
// One writer at a time; reads go through SQLite's own concurrency control.
type Index struct {
	db          *sql.DB
	root        string
	maxFileSize int64
	logger      *slog.Logger

	mu sync.Mutex
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithIndexLogger sets the logger. The default discards everything.
func WithIndexLogger(logger *slog.Logger) IndexOption {
	return func(ix *Index) {
		ix.logger = logger
	}
}

// WithMaxFileSize caps the size of files whose content is indexed.
// Non-positive values keep DefaultMaxFileSize.
func WithMaxFileSize(n int64) IndexOption {
	return func(ix *Index) {
		if n > 0 {
			ix.maxFileSize = n
		}
	}
}

// OpenIndex opens (or creates) the index database at dbPath for content
// under root. An index written by an older schema is dropped and recreated;
// it will be rebuilt by the next full indexing pass.
func OpenIndex(dbPath, root string, opts ...IndexOption) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.Wrap(err, errors.CodeIndexFailed, "create index directory")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIndexFailed, "open index database")
	}

	if err := migrateIndex(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	ix := &Index{
		db:          db,
		root:        filepath.Clean(root),
		maxFileSize: DefaultMaxFileSize,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// migrateIndex ensures the schema is current. Outdated schemas are dropped
// wholesale; index content is derivable from disk, so nothing is lost.
func migrateIndex(db *sql.DB) error {
	ver, err := currentIndexVersion(db)
	if err != nil {
		return errors.Wrap(err, errors.CodeIndexFailed, "check schema version")
	}

	if ver == indexSchemaVersion {
		return nil
	}

	drops := []string{
		"DROP TABLE IF EXISTS files_fts",
		"DROP TABLE IF EXISTS files",
		"DROP TABLE IF EXISTS schema_meta",
	}
	for _, stmt := range drops {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, errors.CodeIndexFailed, "drop outdated schema")
		}
	}

	if _, err := db.Exec(indexSchema); err != nil {
		return errors.Wrap(err, errors.CodeIndexFailed, "create schema")
	}
	if _, err := db.Exec("INSERT INTO schema_meta (version) VALUES (?)", indexSchemaVersion); err != nil {
		return errors.Wrap(err, errors.CodeIndexFailed, "record schema version")
	}
	return nil
}

func currentIndexVersion(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_meta'
	`).Scan(&count)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	var ver int
	err = db.QueryRow("SELECT version FROM schema_meta LIMIT 1").Scan(&ver)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return ver, err
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Root returns the content root this index covers.
func (ix *Index) Root() string {
	return ix.root
}

// IndexTree walks the content root and indexes every file and directory,
// honoring .gitignore files. Hidden files are included. progress, when
// non-nil, receives values in [0,1]; it is called at most every hundred
// entries plus once at completion.
func (ix *Index) IndexTree(ctx context.Context, progress func(float64)) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if progress != nil {
		progress(0)
	}

	total := 0
	if progress != nil {
		if err := ix.walkRoot(func(string, fs.DirEntry) error {
			total++
			return nil
		}); err != nil {
			return err
		}
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeIndexFailed, "begin index transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	processed := 0
	err = ix.walkRoot(func(path string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if err := upsertDirectory(tx, path); err != nil {
				ix.logger.Warn("index directory", "path", path, "error", err)
			}
		} else if d.Type().IsRegular() {
			if err := ix.upsertFile(tx, path); err != nil {
				ix.logger.Warn("index file", "path", path, "error", err)
			}
		}

		processed++
		if progress != nil && total > 0 && processed%100 == 0 {
			progress(float64(processed) / float64(total))
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeIndexFailed, "walk content root")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeIndexFailed, "commit index")
	}

	if progress != nil {
		progress(1)
	}
	return nil
}

// walkRoot walks the content root, applying .gitignore rules and always
// skipping .git directories. Unreadable entries are skipped, not fatal.
func (ix *Index) walkRoot(fn func(path string, d fs.DirEntry) error) error {
	patterns, err := gitignore.ReadPatterns(osfs.New(ix.root), nil)
	if err != nil {
		ix.logger.Warn("read gitignore patterns", "root", ix.root, "error", err)
		patterns = nil
	}
	matcher := gitignore.NewMatcher(patterns)

	return filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			ix.logger.Warn("walk entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}

		if path != ix.root {
			rel, relErr := filepath.Rel(ix.root, path)
			if relErr == nil {
				parts := strings.Split(filepath.ToSlash(rel), "/")
				if matcher.Match(parts, d.IsDir()) {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}
		}

		return fn(path, d)
	})
}

// ProcessChanges applies a batch of watcher paths: paths that still exist
// are reindexed, vanished paths are removed from the index.
func (ix *Index) ProcessChanges(paths []string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tx, err := ix.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.CodeIndexFailed, "begin changes transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, path := range paths {
		info, err := os.Stat(path)
		switch {
		case err == nil && info.IsDir():
			if err := upsertDirectory(tx, path); err != nil {
				ix.logger.Warn("update directory", "path", path, "error", err)
			}
		case err == nil && info.Mode().IsRegular():
			if err := ix.upsertFile(tx, path); err != nil {
				ix.logger.Warn("update file", "path", path, "error", err)
			}
		case err != nil:
			if err := deleteDocument(tx, path); err != nil {
				ix.logger.Warn("remove from index", "path", path, "error", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeIndexFailed, "commit changes")
	}
	return nil
}

// Remove deletes the named path from the index.
func (ix *Index) Remove(path string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tx, err := ix.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.CodeIndexFailed, "begin remove transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := deleteDocument(tx, path); err != nil {
		return errors.Wrap(err, errors.CodeIndexFailed, "remove document")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeIndexFailed, "commit remove")
	}
	return nil
}

func deleteDocument(tx *sql.Tx, path string) error {
	if _, err := tx.Exec("DELETE FROM files WHERE path = ?", path); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM files_fts WHERE path = ?", path)
	return err
}

// upsertFile indexes one regular file. Files over the size cap and files
// containing NUL bytes are skipped.
func (ix *Index) upsertFile(tx *sql.Tx, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > ix.maxFileSize {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return nil
	}

	filename := filepath.Base(path)
	// Prepending the path makes files findable by path fragments too.
	searchable := path + "\n" + string(content)

	if err := deleteDocument(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO files (path, filename, last_modified, is_directory) VALUES (?, ?, ?, 0)",
		path, filename, info.ModTime().Unix(),
	); err != nil {
		return err
	}
	_, err = tx.Exec(
		"INSERT INTO files_fts (path, filename, content) VALUES (?, ?, ?)",
		path, filename, searchable,
	)
	return err
}

// upsertDirectory indexes a directory by name so folders surface in
// filename searches.
func upsertDirectory(tx *sql.Tx, path string) error {
	filename := filepath.Base(path)

	if err := deleteDocument(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO files (path, filename, last_modified, is_directory) VALUES (?, ?, 0, 1)",
		path, filename,
	); err != nil {
		return err
	}
	_, err := tx.Exec(
		"INSERT INTO files_fts (path, filename, content) VALUES (?, ?, ?)",
		path, filename, filename,
	)
	return err
}

// Search runs an FTS query over filenames and content. Candidate files are
// ranked by edit distance between file name and query, then expanded into
// per-line matches; a candidate whose content no longer matches keeps a
// single result with line number zero (filename hit).
func (ix *Index) Search(ctx context.Context, query string) ([]Result, error) {
	match := buildMatchQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := ix.db.QueryContext(ctx, `
		SELECT f.path, f.filename, f.is_directory
		FROM files_fts
		JOIN files f ON f.path = files_fts.path
		WHERE files_fts MATCH ?
		LIMIT ?
	`, match, searchLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSearchFailed, "query index")
	}
	defer rows.Close()

	type candidate struct {
		path     string
		filename string
		isDir    bool
		dist     int
	}

	var candidates []candidate
	for rows.Next() {
		var c candidate
		var isDir int
		if err := rows.Scan(&c.path, &c.filename, &isDir); err != nil {
			return nil, errors.Wrap(err, errors.CodeSearchFailed, "scan index row")
		}
		c.isDir = isDir != 0
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeSearchFailed, "read index rows")
	}

	// Closest file names first.
	queryLower := strings.ToLower(query)
	for i := range candidates {
		candidates[i].dist = levenshtein.ComputeDistance(queryLower, strings.ToLower(candidates[i].filename))
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	var results []Result
	for _, c := range candidates {
		if c.isDir {
			results = append(results, Result{Path: c.path})
			continue
		}

		lines := findMatchLines(c.path, query)
		if len(lines) == 0 {
			results = append(results, Result{Path: c.path})
			continue
		}
		results = append(results, lines...)
	}
	return results, nil
}

// buildMatchQuery quotes each whitespace-separated term so user input can
// never break FTS5 query syntax. Terms are implicitly ANDed.
func buildMatchQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

// findMatchLines returns every line of the file containing the query,
// case-insensitively, with 1-based line numbers.
func findMatchLines(path, query string) []Result {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	queryLower := strings.ToLower(query)
	var matches []Result
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.Contains(strings.ToLower(line), queryLower) {
			matches = append(matches, Result{
				Path:        path,
				LineNumber:  i + 1,
				LineContent: line,
			})
		}
	}
	return matches
}

// Compile-time interface check.
var _ Backend = (*Index)(nil)

// DocCount returns the number of indexed documents.
func (ix *Index) DocCount() (int, error) {
	var n int
	if err := ix.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.CodeIndexFailed, "count documents")
	}
	return n, nil
}
