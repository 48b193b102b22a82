package sweep

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// interactionScript is the fixed command sequence fed to the simulator
// on stdin: run to completion, dump statistics, quit.
const interactionScript = "go\nrdump\nquit\n"

// RunError describes why a single benchmark execution produced no
// usable output. It drops that one (configuration, benchmark)
// measurement; the sweep continues with the remaining benchmarks.
type RunError struct {
	Benchmark string
	Cause     string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("benchmark %s: %s", e.Benchmark, e.Cause)
}

// Runner executes the rebuilt simulator against benchmark inputs. The
// binary and its working directory are shared global state, so
// executions are strictly sequential.
type Runner struct {
	Executable string
	WorkDir    string
	Timeout    time.Duration // mandatory bound on wall-clock time per run
}

const defaultRunTimeout = 60 * time.Second

func (r *Runner) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return defaultRunTimeout
}

// Execute runs one benchmark and returns captured standard output.
// Non-zero exit, timeout, and empty output are each a *RunError with
// the specific cause; none of them aborts the sweep.
func (r *Runner) Execute(ctx context.Context, benchmarkPath string) (string, error) {
	if _, err := os.Stat(r.Executable); err != nil {
		return "", &RunError{Benchmark: benchmarkPath, Cause: fmt.Sprintf("executable %s not found", r.Executable)}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Executable, benchmarkPath)
	cmd.Dir = r.WorkDir
	cmd.Stdin = strings.NewReader(interactionScript)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr // diagnostics only

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", &RunError{Benchmark: benchmarkPath, Cause: fmt.Sprintf("timed out after %s", r.timeout())}
	}
	if err != nil {
		return "", &RunError{
			Benchmark: benchmarkPath,
			Cause:     fmt.Sprintf("exited with error: %v: %s", err, truncate(stderr.String(), 200)),
		}
	}
	if stdout.Len() == 0 {
		return "", &RunError{Benchmark: benchmarkPath, Cause: "no output from simulator"}
	}
	return stdout.String(), nil
}
