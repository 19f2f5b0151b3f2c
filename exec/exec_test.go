package exec

import (
	"context"
	"errors"
	osexec "os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	res, err := New().Run("echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunCapturesStderr(t *testing.T) {
	res, err := New().Run("sh", "-c", "echo oops >&2")
	require.NoError(t, err)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Empty(t, res.Stdout)
}

func TestRunNonZeroExit(t *testing.T) {
	res, err := New().Run("sh", "-c", "echo partial; exit 3")
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 3, execErr.ExitCode)
	assert.Equal(t, "partial\n", execErr.Stdout)

	// The result is still returned alongside the error.
	require.NotNil(t, res)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunMissingBinary(t *testing.T) {
	_, err := New().Run("definitely-not-a-real-binary-xyz")
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.ErrorIs(t, err, osexec.ErrNotFound)
}

func TestRunNoArgs(t *testing.T) {
	_, err := New().Run()
	require.Error(t, err)
}

func TestWithDir(t *testing.T) {
	dir := t.TempDir()
	res, err := New().WithDir(dir).Run("pwd")
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, dir)
}

func TestWithEnv(t *testing.T) {
	res, err := New().WithEnv(map[string]string{"GREETING": "hi"}).Run("sh", "-c", "echo $GREETING")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", res.Stdout)
}

func TestWithTimeout(t *testing.T) {
	start := time.Now()
	_, err := New().WithTimeout(50 * time.Millisecond).Run("sleep", "5")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().WithContext(ctx).Run("sleep", "5")
	require.Error(t, err)
}

func TestClone(t *testing.T) {
	base := New(WithEnv(map[string]string{"A": "1"}))
	clone := base.Clone()
	clone.WithEnv(map[string]string{"A": "2"})

	res, err := base.Run("sh", "-c", "echo $A")
	require.NoError(t, err)
	assert.Equal(t, "1\n", res.Stdout)
}

func TestWrapperPrependsCommand(t *testing.T) {
	echo := NewWrapper(New(), "echo")

	res, err := echo.Run("wrapped")
	require.NoError(t, err)
	assert.Equal(t, "wrapped\n", res.Stdout)
}

func TestWrapperClone(t *testing.T) {
	echo := NewWrapper(New(), "echo")
	clone := echo.Clone()

	res, err := clone.Run("from", "clone")
	require.NoError(t, err)
	assert.Equal(t, "from clone\n", res.Stdout)
}

func TestExecErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ExecError{Command: []string{"x"}, ExitCode: 1, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "exit code 1")
}
