// Package proc runs the external tools the renderer shells out to
// (gtts-cli, ffmpeg) with a bounded runtime and captured stderr.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a process outlives its deadline.
var ErrTimeout = errors.New("process timed out")

// ErrNotFound is returned when a binary is not on PATH.
var ErrNotFound = errors.New("executable not found")

// Runner executes commands with a default timeout.
type Runner struct {
	Timeout time.Duration
	// Grace is how long an interrupted process gets before it is killed.
	Grace time.Duration
}

// NewRunner returns a Runner. A non-positive timeout defaults to 30s.
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{Timeout: timeout, Grace: 100 * time.Millisecond}
}

// Run starts name with args, feeds stdin (which may be nil) and returns
// stdout. Stdin is attached before the process starts.
func (r *Runner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	if err := r.Stream(ctx, stdin, &stdout, name, args...); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Stream is Run with stdout written to w.
func (r *Runner) Stream(ctx context.Context, stdin io.Reader, w io.Writer, name string, args ...string) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.Command(name, args...) //nolint:gosec
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd.Stdin = stdin
	cmd.Stdout = w
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s failed: %w, stderr: %s", name, err, strings.TrimSpace(stderr.String()))
		}
		return nil

	case <-ctx.Done():
		// Interrupt first, then kill if it does not exit in time.
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(r.Grace):
			_ = cmd.Process.Kill()
			<-done
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s after %v", ErrTimeout, name, r.Timeout)
		}
		return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
	}
}

// LookPath resolves name on PATH.
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return path, nil
}
