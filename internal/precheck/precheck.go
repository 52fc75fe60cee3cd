// Package precheck validates the environment before any mutation happens:
// the az CLI must be installed, an Azure session must exist, and the target
// file must be present. The update pipeline stops on the first unmet
// prerequisite, so a missing login never costs a Key Vault round trip.
package precheck

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
	hterrors "github.com/mhallin2/ansible-dev-tools/internal/errors"
	"github.com/mhallin2/ansible-dev-tools/internal/execenv"
	"github.com/mhallin2/ansible-dev-tools/internal/logging"
)

// probeTimeout bounds each az invocation. The CLI can hang for minutes on
// broken network paths, which is far worse than a clear timeout error.
const probeTimeout = 10 * time.Second

// Probe status values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Result is the outcome of one prerequisite probe
type Result struct {
	Name    string
	Status  string
	Message string
	Err     error
}

// Checker runs the prerequisite probes
type Checker struct {
	cfg    *config.Config
	logger *logging.Logger
	runner execenv.Runner
}

// Option is a functional option for configuring the Checker
type Option func(*Checker)

// WithRunner sets a custom command runner (for testing)
func WithRunner(runner execenv.Runner) Option {
	return func(c *Checker) {
		c.runner = runner
	}
}

// New creates a Checker from the resolved configuration
func New(cfg *config.Config, opts ...Option) *Checker {
	c := &Checker{
		cfg:    cfg,
		logger: cfg.Logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.runner == nil {
		c.runner = execenv.New(cfg.Logger)
	}

	return c
}

// probes returns the checks in the order they must pass
func (c *Checker) probes() []func(context.Context) Result {
	return []func(context.Context) Result{
		c.checkCLIInstalled,
		c.checkLoggedIn,
		c.checkTargetFile,
	}
}

// Run performs the probes sequentially and returns the first failure.
// Probes after a failed one are not attempted: without the az CLI there is
// no point asking it about the login session.
func (c *Checker) Run(ctx context.Context) error {
	for _, probe := range c.probes() {
		result := probe(ctx)
		if result.Err != nil {
			return result.Err
		}
		c.logger.Debug("Prerequisite ok: %s (%s)", result.Name, result.Message)
	}

	return nil
}

// All performs every probe regardless of failures and returns all results.
// The check command uses this to show the full table in one pass.
func (c *Checker) All(ctx context.Context) []Result {
	results := make([]Result, 0, 3)
	for _, probe := range c.probes() {
		results = append(results, probe(ctx))
	}

	return results
}

func (c *Checker) checkCLIInstalled(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := c.runner.Run(ctx, "az", "--version")
	if err != nil {
		return Result{
			Name:    "az CLI",
			Status:  StatusError,
			Message: "not installed or not on PATH",
			Err:     err,
		}
	}

	return Result{
		Name:    "az CLI",
		Status:  StatusOK,
		Message: firstLine(out),
	}
}

func (c *Checker) checkLoggedIn(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if _, err := c.runner.Run(ctx, "az", "account", "show"); err != nil {
		return Result{
			Name:    "Azure login",
			Status:  StatusError,
			Message: "no active session",
			Err: hterrors.UserError{
				Message:    "Not logged in to Azure",
				Suggestion: "Run 'az login' to authenticate with Azure",
				Err:        err,
			},
		}
	}

	return Result{
		Name:    "Azure login",
		Status:  StatusOK,
		Message: "authenticated",
	}
}

func (c *Checker) checkTargetFile(_ context.Context) Result {
	path := c.cfg.Definition.TargetFile

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return Result{
			Name:    "target file",
			Status:  StatusError,
			Message: "not found",
			Err: hterrors.UserError{
				Message:    fmt.Sprintf("Target file not found: %s", path),
				Suggestion: "Check the target_file path in hubtoken.yaml or HUBTOKEN_TARGET_FILE",
			},
		}
	case err != nil:
		return Result{
			Name:    "target file",
			Status:  StatusError,
			Message: "not readable",
			Err: hterrors.UserError{
				Message: fmt.Sprintf("Cannot access target file: %s", path),
				Details: err.Error(),
				Err:     err,
			},
		}
	case info.IsDir():
		return Result{
			Name:    "target file",
			Status:  StatusError,
			Message: "is a directory",
			Err: hterrors.UserError{
				Message:    fmt.Sprintf("Target path is a directory, not a file: %s", path),
				Suggestion: "Point target_file at the ansible.cfg file itself",
			},
		}
	}

	return Result{
		Name:    "target file",
		Status:  StatusOK,
		Message: path,
	}
}

// firstLine extracts a compact version string from az --version output,
// whose first line looks like "azure-cli    2.64.0".
func firstLine(out string) string {
	line, _, _ := strings.Cut(out, "\n")
	return strings.Join(strings.Fields(line), " ")
}
