// Package git annotates explorer listings with repository state. It detects
// the repository enclosing a path, reports the current branch and HEAD, and
// resolves per-path worktree status. go-git does the work when it can open
// the repository; otherwise the git CLI is driven through the exec package,
// the same way the search package drives ripgrep.
package git

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/noh-rs/nohrs/errors"
	"github.com/noh-rs/nohrs/exec"
)

// Repository is an open repository. All operations are read-only.
type Repository struct {
	root   string
	repo   *gogit.Repository // nil when only the CLI fallback is usable
	git    exec.Executor
	logger *slog.Logger
}

// Option configures repository detection.
type Option func(*Repository)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// WithExecutor substitutes the executor behind the git CLI fallback.
func WithExecutor(executor exec.Executor) Option {
	return func(r *Repository) {
		r.git = exec.NewWrapper(executor, "git")
	}
}

// Detect finds the repository enclosing path by walking toward the
// filesystem root, then opens it with go-git. When go-git cannot open the
// repository its structure is still honored through the CLI fallback.
// Returns CodeNotFound when no repository encloses path.
func Detect(path string, opts ...Option) (*Repository, error) {
	r := &Repository{
		git:    exec.NewWrapper(exec.New(exec.WithInheritEnv()), "git"),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "resolve path")
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	root, ok := findRoot(abs)
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "no repository encloses %s", path)
	}
	r.root = root

	repo, err := gogit.PlainOpen(root)
	if err != nil {
		r.logger.Warn("go-git open failed, using git CLI", "root", root, "error", err)
		return r, nil
	}
	r.repo = repo
	return r, nil
}

// findRoot walks up from dir looking for a .git entry.
func findRoot(dir string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Root returns the repository's top-level directory.
func (r *Repository) Root() string {
	return r.root
}

// Branch returns the current branch name, or the short commit hash when
// HEAD is detached.
func (r *Repository) Branch() (string, error) {
	if r.repo != nil {
		head, err := r.repo.Head()
		if err != nil {
			return "", errors.Wrap(err, errors.CodeInternal, "read HEAD")
		}
		if head.Name().IsBranch() {
			return head.Name().Short(), nil
		}
		return head.Hash().String()[:7], nil
	}

	name, err := r.revParse("--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if name != "HEAD" {
		return name, nil
	}
	// Detached HEAD.
	return r.revParse("--short", "HEAD")
}

// Head returns the full hash of the current HEAD commit.
func (r *Repository) Head() (string, error) {
	if r.repo != nil {
		head, err := r.repo.Head()
		if err != nil {
			return "", errors.Wrap(err, errors.CodeInternal, "read HEAD")
		}
		return head.Hash().String(), nil
	}
	return r.revParse("HEAD")
}

func (r *Repository) revParse(args ...string) (string, error) {
	res, err := r.git.Clone().Run(append([]string{"-C", r.root, "rev-parse"}, args...)...)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "git rev-parse")
	}
	return strings.TrimSpace(res.Stdout), nil
}
