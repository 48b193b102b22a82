package sweep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrBuildFailed reports a non-zero build exit or a missing executable
// afterwards. It is fatal for the current configuration only; the
// sweep advances to the next one.
var ErrBuildFailed = errors.New("build failed")

// Builder owns the single external build slot: the simulator source
// tree and the binary it produces. The sweep schedules builds strictly
// sequentially, so no locking is needed beyond not overlapping
// build/run cycles.
type Builder struct {
	SourceDir  string   // directory holding cache.h / cache.cpp
	WorkDir    string   // directory the build commands run in
	CleanCmd   []string // e.g. {"make", "clean"}
	BuildCmd   []string // e.g. {"make"}
	Executable string   // path to the produced simulator binary

	CleanTimeout time.Duration
	BuildTimeout time.Duration
}

const (
	defaultCleanTimeout = 30 * time.Second
	defaultBuildTimeout = 60 * time.Second
)

// HeaderPath is the build input holding the geometry #defines.
func (b *Builder) HeaderPath() string {
	return filepath.Join(b.SourceDir, "cache.h")
}

// PolicySourcePath is the build input holding the d_cache constructor.
func (b *Builder) PolicySourcePath() string {
	return filepath.Join(b.SourceDir, "cache.cpp")
}

func (b *Builder) cleanTimeout() time.Duration {
	if b.CleanTimeout > 0 {
		return b.CleanTimeout
	}
	return defaultCleanTimeout
}

func (b *Builder) buildTimeout() time.Duration {
	if b.BuildTimeout > 0 {
		return b.BuildTimeout
	}
	return defaultBuildTimeout
}

// runCommand executes one bounded external process in the work
// directory, returning combined stderr for diagnostics on failure.
func (b *Builder) runCommand(ctx context.Context, argv []string, timeout time.Duration) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = b.WorkDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%v timed out after %s", argv, timeout)
	}
	if err != nil {
		return fmt.Errorf("%v: %w: %s", argv, err, truncate(stderr.String(), 300))
	}
	return nil
}

// Rebuild performs the clean-then-build cycle for the configuration
// most recently applied to the source tree. A failed clean is a
// warning (best effort); a failed build or a missing executable is
// ErrBuildFailed. A rebuild whose binary timestamp did not advance
// means the previous binary was reused, which invalidates measurement;
// that condition is surfaced as a prominent warning, not an error.
func (b *Builder) Rebuild(ctx context.Context) error {
	if err := b.runCommand(ctx, b.CleanCmd, b.cleanTimeout()); err != nil {
		logrus.Warnf("Clean failed (continuing): %v", err)
	}

	before, haveBefore := executableMTime(b.Executable)

	if err := b.runCommand(ctx, b.BuildCmd, b.buildTimeout()); err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	after, haveAfter := executableMTime(b.Executable)
	if !haveAfter {
		return fmt.Errorf("%w: executable %s not found after build", ErrBuildFailed, b.Executable)
	}
	if haveBefore && !after.After(before) {
		logrus.Warnf("STALE BINARY: %s timestamp did not advance (%s -> %s); the previous binary may have been reused, audit results for this configuration",
			b.Executable, before.Format(time.RFC3339Nano), after.Format(time.RFC3339Nano))
	}
	return nil
}

func executableMTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
