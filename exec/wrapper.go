package exec

import (
	"context"
	"time"
)

// CommandWrapper binds an Executor to one program, prepending its name to
// every Run call. Handy for tools invoked repeatedly with different
// arguments, like git or rg.
type CommandWrapper struct {
	executor Executor
	cmd      string
}

// NewWrapper wraps executor so Run("status") becomes Run(cmd, "status").
func NewWrapper(executor Executor, cmd string) *CommandWrapper {
	return &CommandWrapper{executor: executor, cmd: cmd}
}

// WithEnv adds environment variables for the command.
func (w *CommandWrapper) WithEnv(env map[string]string) Executor {
	w.executor = w.executor.WithEnv(env)
	return w
}

// WithDir sets the working directory.
func (w *CommandWrapper) WithDir(dir string) Executor {
	w.executor = w.executor.WithDir(dir)
	return w
}

// WithContext cancels the command when ctx is canceled.
func (w *CommandWrapper) WithContext(ctx context.Context) Executor {
	w.executor = w.executor.WithContext(ctx)
	return w
}

// WithTimeout bounds the command's run time.
func (w *CommandWrapper) WithTimeout(d time.Duration) Executor {
	w.executor = w.executor.WithTimeout(d)
	return w
}

// WithInheritEnv passes the parent process environment through.
func (w *CommandWrapper) WithInheritEnv() Executor {
	w.executor = w.executor.WithInheritEnv()
	return w
}

// Run executes the wrapped program with the given arguments.
func (w *CommandWrapper) Run(args ...string) (*Result, error) {
	return w.executor.Run(append([]string{w.cmd}, args...)...)
}

// Clone returns an independent copy of the wrapper.
func (w *CommandWrapper) Clone() Executor {
	return &CommandWrapper{executor: w.executor.Clone(), cmd: w.cmd}
}

// Compile-time interface check.
var _ Executor = (*CommandWrapper)(nil)
