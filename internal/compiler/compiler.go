// Package compiler adapts the external stylesheet compiler.
//
// Compile failures are surfaced as warning-severity external tool errors: the
// build logs them and keeps rendering the remaining commands.
package compiler

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
	"github.com/whatisjasongoldstein/beagle/internal/logfields"
)

// DefaultBinary is the stylesheet compiler looked up on PATH.
const DefaultBinary = "sassc"

// DefaultTimeout bounds a single compiler invocation.
const DefaultTimeout = 60 * time.Second

// ErrBinaryNotFound indicates the compiler is not installed.
var ErrBinaryNotFound = stderrors.New("stylesheet compiler not found on PATH")

// Binary invokes `<Path> --sourcemap <input> <output>`.
type Binary struct {
	Path    string
	Timeout time.Duration
}

// NewBinary returns a Binary with defaults applied to empty values.
func NewBinary(path string, timeout time.Duration) *Binary {
	if path == "" {
		path = DefaultBinary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Binary{Path: path, Timeout: timeout}
}

func (b *Binary) Compile(ctx context.Context, input, output string) error {
	bin, err := exec.LookPath(b.Path)
	if err != nil {
		return errors.ExternalToolFailure(b.Path, fmt.Errorf("%w: %w", ErrBinaryNotFound, err)).Build()
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// #nosec G204 -- binary comes from configuration, arguments are build paths
	cmd := exec.CommandContext(ctx, bin, "--sourcemap", input, output)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	slog.Debug("Invoking stylesheet compiler", slog.String("binary", bin), logfields.Path(input), logfields.Output(output))

	err = cmd.Run()
	if out := strings.TrimSpace(stdout.String()); out != "" {
		slog.Debug("stylesheet compiler stdout", slog.String("output", out))
	}
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("timed out after %s: %w", timeout, ctx.Err())
	} else if msg := strings.TrimSpace(stderr.String()); msg != "" {
		err = fmt.Errorf("%w: %s", err, msg)
	}
	return errors.ExternalToolFailure(b.Path, err).
		WithContext("path", input).
		WithContext("output", output).
		Build()
}

// Noop skips compilation; useful in tests or when no compiler is installed.
type Noop struct{}

func (Noop) Compile(_ context.Context, input, output string) error {
	slog.Debug("Noop compiler skipping stylesheet", logfields.Path(input), logfields.Output(output))
	return nil
}
