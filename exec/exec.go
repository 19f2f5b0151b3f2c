// Package exec runs external tools with captured output. The explorer
// shells out for the few jobs an external binary does better: ripgrep for
// unindexed content search and git for worktree status.
package exec

import (
	"context"
	"time"
)

// Executor configures and runs commands through a fluent API. With*
// methods return the receiver, so calls chain; use Clone when a shared
// executor must not be mutated.
type Executor interface {
	// WithEnv adds environment variables for the command.
	WithEnv(env map[string]string) Executor

	// WithDir sets the working directory.
	WithDir(dir string) Executor

	// WithContext cancels the command when ctx is canceled.
	WithContext(ctx context.Context) Executor

	// WithTimeout bounds the command's run time.
	WithTimeout(d time.Duration) Executor

	// WithInheritEnv passes the parent process environment through.
	WithInheritEnv() Executor

	// Run executes args[0] with the remaining arguments and captures its
	// output. A non-zero exit returns the Result alongside an *ExecError.
	Run(args ...string) (*Result, error)

	// Clone returns an independent copy with the same configuration.
	Clone() Executor
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Option applies a default setting at construction time.
type Option func(*Command)

// WithEnv returns an Option presetting environment variables.
func WithEnv(env map[string]string) Option {
	return func(c *Command) {
		c.WithEnv(env)
	}
}

// WithDir returns an Option presetting the working directory.
func WithDir(dir string) Option {
	return func(c *Command) {
		c.WithDir(dir)
	}
}

// WithInheritEnv returns an Option enabling environment inheritance.
func WithInheritEnv() Option {
	return func(c *Command) {
		c.WithInheritEnv()
	}
}

// WithTimeout returns an Option presetting a run timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Command) {
		c.WithTimeout(d)
	}
}
