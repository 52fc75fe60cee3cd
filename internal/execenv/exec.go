// Package execenv runs external tooling, the az CLI mostly, with captured
// output and typed errors.
package execenv

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	hterrors "github.com/mhallin2/ansible-dev-tools/internal/errors"
	"github.com/mhallin2/ansible-dev-tools/internal/logging"
)

// Runner abstracts subprocess invocation so tests can fake the az CLI
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Executor runs commands via os/exec
type Executor struct {
	logger *logging.Logger
}

var _ Runner = (*Executor)(nil)

// New creates a new executor
func New(logger *logging.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Run executes a command and returns its stdout. Deadlines come from the
// caller's context. Failures carry the command line and captured stderr so
// the operator can re-run the probe by hand.
func (e *Executor) Run(ctx context.Context, name string, args ...string) (string, error) {
	// Validate command exists
	if _, err := exec.LookPath(name); err != nil {
		return "", hterrors.WrapCommandNotFound(name, err)
	}

	display := name
	if len(args) > 0 {
		display = name + " " + strings.Join(args, " ")
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("Executing command: %s", display)

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", hterrors.CommandError{
				Command:    display,
				Message:    "timed out",
				Suggestion: "Check network connectivity and re-run",
			}
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", hterrors.CommandError{
				Command:  display,
				ExitCode: exitErr.ExitCode(),
				Message:  strings.TrimSpace(stderr.String()),
			}
		}

		return "", hterrors.CommandError{
			Command: display,
			Message: err.Error(),
		}
	}

	return stdout.String(), nil
}
