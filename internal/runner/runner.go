// Package runner executes the binary under test against fixtures and
// classifies the outcome.
package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/ppiankov/langbench/internal/fixture"
)

// DefaultTimeout is the wall-clock limit for a single fixture.
const DefaultTimeout = 2 * time.Second

// pipeDrainDelay bounds how long Wait keeps reading stdout after the child
// exits or is killed while a grandchild still holds the pipe.
const pipeDrainDelay = 500 * time.Millisecond

// Config holds runner settings.
type Config struct {
	Command []string      // binary and leading arguments; the source path is appended
	Timeout time.Duration // per-fixture limit, DefaultTimeout when zero
}

// Runner runs one fixture at a time.
type Runner struct {
	command []string
	timeout time.Duration
}

// New creates a runner. Command must name at least the binary.
func New(cfg Config) (*Runner, error) {
	if len(cfg.Command) == 0 || cfg.Command[0] == "" {
		return nil, pkgerrors.New("binary under test is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Runner{command: cfg.Command, timeout: cfg.Timeout}, nil
}

// Timeout returns the per-fixture limit.
func (r *Runner) Timeout() time.Duration { return r.timeout }

// Run executes the binary with the fixture's source as its last argument and
// its input on stdin. A missing fixture file or a binary that cannot be
// started is returned as an error; every other outcome is a Result.
func (r *Runner) Run(ctx context.Context, fx fixture.Fixture) (*Result, error) {
	if err := fx.Check(); err != nil {
		return nil, err
	}
	expected, err := fx.Expected()
	if err != nil {
		return nil, err
	}

	in, err := os.Open(fx.InputPath())
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open input")
	}
	defer func() { _ = in.Close() }()

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := append(append([]string{}, r.command[1:]...), fx.SourcePath())
	cmd := exec.CommandContext(runCtx, r.command[0], args...)
	setupProcessGroup(cmd)
	cmd.WaitDelay = pipeDrainDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdin = in
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("spawning binary", "fixture", fx.Name, "cmd", r.command[0], "args", args)

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &Result{
		Name:     fx.Name,
		Source:   fx.SourcePath(),
		Expected: expected,
		Duration: duration,
	}

	if runErr != nil {
		if ctx.Err() != nil {
			return nil, pkgerrors.Wrapf(ctx.Err(), "fixture %q interrupted", fx.Name)
		}
		// Wait can return after the deadline even though the child exited in
		// time, when a leftover grandchild holds stdout until WaitDelay.
		exited := cmd.ProcessState != nil && cmd.ProcessState.Exited()
		if !exited && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			slog.Debug("fixture timed out", "fixture", fx.Name, "limit", r.timeout)
			result.Verdict = VerdictTimeLimitExceeded
			result.ExitCode = -1
			return result, nil
		}
		var exitErr *exec.ExitError
		switch {
		case errors.As(runErr, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		case errors.Is(runErr, exec.ErrWaitDelay):
			// exited, but a leftover child kept stdout open
			result.ExitCode = cmd.ProcessState.ExitCode()
		default:
			return nil, pkgerrors.Wrapf(runErr, "start %s", r.command[0])
		}
	}

	result.Output = stdout.Bytes()
	result.Stderr = stderr.String()
	result.Verdict = classify(result.Output, expected, result.ExitCode)

	slog.Debug("fixture finished", "fixture", fx.Name, "verdict", result.Verdict, "exit", result.ExitCode, "duration", duration)
	return result, nil
}

// classify applies the verdict order of a completed run: output first, then
// exit code.
func classify(output, expected []byte, exitCode int) Verdict {
	if !bytes.Equal(output, expected) {
		return VerdictWrongAnswer
	}
	if exitCode != 0 {
		return VerdictNonZeroExit
	}
	return VerdictPassed
}
