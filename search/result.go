// Package search provides the indexed and on-demand content search behind
// the explorer. A SQLite FTS5 index covers the user's content root and is
// kept fresh by a debounced filesystem watcher; searches outside the
// indexed tree fall through to ripgrep.
package search

import "context"

// Scope selects which backend answers a query.
type Scope int

const (
	// ScopeHome searches the indexed content root.
	ScopeHome Scope = iota
	// ScopeRoot searches the whole filesystem with ripgrep.
	ScopeRoot
)

// String returns the lowercase scope name.
func (s Scope) String() string {
	switch s {
	case ScopeHome:
		return "home"
	case ScopeRoot:
		return "root"
	default:
		return "unknown"
	}
}

// ParseScope maps a scope name to its value. Unknown names fall back to
// the indexed home scope.
func ParseScope(s string) Scope {
	if s == "root" {
		return ScopeRoot
	}
	return ScopeHome
}

// Result is one search hit. LineNumber is 1-based; zero marks a hit on the
// file or directory name alone, with no matching line.
type Result struct {
	Path        string `json:"path"`
	LineNumber  int    `json:"line_number"`
	LineContent string `json:"line_content"`
}

// Backend answers content queries.
type Backend interface {
	Search(ctx context.Context, query string) ([]Result, error)
}
