package exec

import "fmt"

// ExecError reports a failed command together with its captured output.
type ExecError struct {
	// Command is the full argument vector that was executed.
	Command []string

	// ExitCode is the command's exit code, or -1 if it never started.
	ExitCode int

	// Stdout and Stderr hold the output captured before the failure.
	Stdout string
	Stderr string

	// Err is the underlying execution error.
	Err error
}

func (e *ExecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %v failed with exit code %d: %v", e.Command, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("command %v failed with exit code %d", e.Command, e.ExitCode)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
