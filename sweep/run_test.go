package sweep

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript installs an executable shell script standing in for the
// simulator binary.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestRunner_Execute_CapturesStdout(t *testing.T) {
	dir := t.TempDir()
	sim := writeScript(t, dir, "sim", `cat > /dev/null
echo "Cycles: 1000"
echo "IPC: 0.85"
`)
	r := &Runner{Executable: sim, WorkDir: dir, Timeout: 10 * time.Second}

	output, err := r.Execute(context.Background(), "inputs/fib.x")

	require.NoError(t, err)
	assert.Contains(t, output, "IPC: 0.85")
}

func TestRunner_Execute_NonZeroExitIsRunError(t *testing.T) {
	dir := t.TempDir()
	sim := writeScript(t, dir, "sim", `echo "boom" >&2
exit 3
`)
	r := &Runner{Executable: sim, WorkDir: dir, Timeout: 10 * time.Second}

	_, err := r.Execute(context.Background(), "inputs/fib.x")

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Contains(t, runErr.Cause, "exited with error")
	assert.Contains(t, runErr.Cause, "boom")
}

func TestRunner_Execute_EmptyOutputIsRunError(t *testing.T) {
	dir := t.TempDir()
	sim := writeScript(t, dir, "sim", `cat > /dev/null
exit 0
`)
	r := &Runner{Executable: sim, WorkDir: dir, Timeout: 10 * time.Second}

	_, err := r.Execute(context.Background(), "inputs/fib.x")

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Contains(t, runErr.Cause, "no output")
}

func TestRunner_Execute_TimeoutIsRunError(t *testing.T) {
	dir := t.TempDir()
	sim := writeScript(t, dir, "sim", `sleep 5
echo "IPC: 1.0"
`)
	r := &Runner{Executable: sim, WorkDir: dir, Timeout: 200 * time.Millisecond}

	start := time.Now()
	_, err := r.Execute(context.Background(), "inputs/fib.x")

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Contains(t, runErr.Cause, "timed out")
	assert.Less(t, time.Since(start), 3*time.Second, "timeout must bound wall-clock time")
}

func TestRunner_Execute_MissingExecutableIsRunError(t *testing.T) {
	r := &Runner{Executable: filepath.Join(t.TempDir(), "sim"), Timeout: time.Second}
	_, err := r.Execute(context.Background(), "inputs/fib.x")
	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Contains(t, runErr.Cause, "not found")
}
