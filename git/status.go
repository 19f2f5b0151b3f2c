package git

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/noh-rs/nohrs/errors"
)

// FileStatus is a path's worktree state relative to HEAD.
type FileStatus string

const (
	StatusClean     FileStatus = "clean"
	StatusModified  FileStatus = "modified"
	StatusAdded     FileStatus = "added"
	StatusDeleted   FileStatus = "deleted"
	StatusUntracked FileStatus = "untracked"
	StatusIgnored   FileStatus = "ignored"
)

// Status returns per-path worktree status for every changed or untracked
// file, keyed by slash-separated path relative to the repository root.
// Clean and ignored paths are absent; resolve those with StatusFor.
func (r *Repository) Status() (map[string]FileStatus, error) {
	if r.repo != nil {
		return r.nativeStatus()
	}
	return r.cliStatus()
}

// StatusFor resolves the status of a single path relative to the root.
// Paths absent from the change set are either ignored or clean.
func (r *Repository) StatusFor(rel string) (FileStatus, error) {
	statuses, err := r.Status()
	if err != nil {
		return "", err
	}

	rel = filepath.ToSlash(rel)
	if st, ok := statuses[rel]; ok {
		return st, nil
	}
	ignored, err := r.isIgnored(rel)
	if err != nil {
		return "", err
	}
	if ignored {
		return StatusIgnored, nil
	}
	return StatusClean, nil
}

func (r *Repository) nativeStatus() (map[string]FileStatus, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "open worktree")
	}
	status, err := wt.Status()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "compute status")
	}

	out := make(map[string]FileStatus, len(status))
	for path, st := range status {
		mapped := mapStatusCodes(st.Staging, st.Worktree)
		if mapped == StatusClean {
			continue
		}
		out[path] = mapped
	}
	return out, nil
}

// mapStatusCodes folds the staged and worktree codes into one status. The
// worktree side wins for untracked; otherwise the stronger change wins.
func mapStatusCodes(staging, worktree gogit.StatusCode) FileStatus {
	if staging == gogit.Untracked || worktree == gogit.Untracked {
		return StatusUntracked
	}
	for _, code := range []gogit.StatusCode{worktree, staging} {
		switch code {
		case gogit.Added:
			return StatusAdded
		case gogit.Deleted:
			return StatusDeleted
		case gogit.Modified, gogit.Renamed, gogit.Copied, gogit.UpdatedButUnmerged:
			return StatusModified
		}
	}
	return StatusClean
}

// isIgnored applies the repository's gitignore patterns to rel.
func (r *Repository) isIgnored(rel string) (bool, error) {
	patterns, err := gitignore.ReadPatterns(osfs.New(r.root), nil)
	if err != nil {
		return false, errors.Wrap(err, errors.CodeInternal, "read gitignore")
	}
	if len(patterns) == 0 {
		return false, nil
	}
	matcher := gitignore.NewMatcher(patterns)
	return matcher.Match(strings.Split(rel, "/"), false), nil
}

// cliStatus parses `git status --porcelain --ignored -z` output.
func (r *Repository) cliStatus() (map[string]FileStatus, error) {
	res, err := r.git.Clone().Run("-C", r.root, "status", "--porcelain", "--ignored", "-z")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "git status")
	}
	return parsePorcelain(res.Stdout), nil
}

// parsePorcelain reads NUL-separated porcelain v1 records. Rename records
// carry the origin path in a second field, which is consumed and dropped.
func parsePorcelain(out string) map[string]FileStatus {
	statuses := make(map[string]FileStatus)
	fields := strings.Split(out, "\x00")

	for i := 0; i < len(fields); i++ {
		entry := fields[i]
		if len(entry) < 4 {
			continue
		}
		code := entry[:2]
		path := entry[3:]

		if code[0] == 'R' || code[0] == 'C' {
			i++ // origin path of the rename
		}

		statuses[path] = mapPorcelainCode(code)
	}
	return statuses
}

func mapPorcelainCode(code string) FileStatus {
	switch {
	case code == "??":
		return StatusUntracked
	case code == "!!":
		return StatusIgnored
	case strings.ContainsAny(code, "A"):
		return StatusAdded
	case strings.ContainsAny(code, "D"):
		return StatusDeleted
	default:
		return StatusModified
	}
}
