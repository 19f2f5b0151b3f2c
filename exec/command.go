package exec

import (
	"bytes"
	"context"
	"os"
	osexec "os/exec"
	"time"
)

// Command is the process-spawning Executor.
type Command struct {
	env        map[string]string
	dir        string
	ctx        context.Context
	timeout    time.Duration
	inheritEnv bool
}

// New creates a Command with the given defaults.
func New(opts ...Option) *Command {
	c := &Command{
		env: make(map[string]string),
		ctx: context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithEnv adds environment variables for the command.
func (c *Command) WithEnv(env map[string]string) Executor {
	for k, v := range env {
		c.env[k] = v
	}
	return c
}

// WithDir sets the working directory.
func (c *Command) WithDir(dir string) Executor {
	c.dir = dir
	return c
}

// WithContext cancels the command when ctx is canceled.
func (c *Command) WithContext(ctx context.Context) Executor {
	c.ctx = ctx
	return c
}

// WithTimeout bounds the command's run time.
func (c *Command) WithTimeout(d time.Duration) Executor {
	c.timeout = d
	return c
}

// WithInheritEnv passes the parent process environment through.
func (c *Command) WithInheritEnv() Executor {
	c.inheritEnv = true
	return c
}

// Run executes the command and captures stdout and stderr.
func (c *Command) Run(args ...string) (*Result, error) {
	if len(args) == 0 {
		return nil, &ExecError{Command: args, ExitCode: -1, Err: osexec.ErrNotFound}
	}

	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := osexec.CommandContext(ctx, args[0], args[1:]...)
	if c.dir != "" {
		cmd.Dir = c.dir
	}
	if c.inheritEnv {
		cmd.Env = os.Environ()
	}
	for k, v := range c.env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}

	if err != nil {
		return result, &ExecError{
			Command:  args,
			ExitCode: exitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			Err:      err,
		}
	}
	return result, nil
}

// Clone returns an independent copy with the same configuration.
func (c *Command) Clone() Executor {
	env := make(map[string]string, len(c.env))
	for k, v := range c.env {
		env[k] = v
	}
	return &Command{
		env:        env,
		dir:        c.dir,
		ctx:        c.ctx,
		timeout:    c.timeout,
		inheritEnv: c.inheritEnv,
	}
}

// Compile-time interface check.
var _ Executor = (*Command)(nil)
