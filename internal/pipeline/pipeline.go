// Package pipeline runs the four update steps in their fixed order:
// validate, fetch, patch, verify. A step starts only after the previous one
// succeeded, and the first failure ends the run with the step's name on it.
// There are no retries and no backward transitions.
package pipeline

import (
	"context"
	"fmt"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
	"github.com/mhallin2/ansible-dev-tools/internal/keyvault"
	"github.com/mhallin2/ansible-dev-tools/internal/logging"
	"github.com/mhallin2/ansible-dev-tools/internal/patch"
	"github.com/mhallin2/ansible-dev-tools/internal/precheck"
	"github.com/mhallin2/ansible-dev-tools/internal/verify"
)

// Step names one stage of the update run
type Step string

// Pipeline steps in execution order
const (
	StepValidate Step = "validate"
	StepFetch    Step = "fetch"
	StepPatch    Step = "patch"
	StepVerify   Step = "verify"
)

// StepError names the pipeline step a failure happened in
type StepError struct {
	Step Step
	Err  error
}

func (e StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e StepError) Unwrap() error {
	return e.Err
}

// Summary reports what a completed run did
type Summary struct {
	// BackupPath is the restore point created before patching
	BackupPath string
	// Replaced is the number of placeholder occurrences substituted
	Replaced int
	// TokenLines is the count of token= lines the verifier found
	TokenLines int
}

// Updater wires the four steps together
type Updater struct {
	cfg      *config.Config
	logger   *logging.Logger
	checker  *precheck.Checker
	fetcher  *keyvault.Fetcher
	patcher  *patch.Patcher
	verifier *verify.Verifier
}

// Option is a functional option for configuring the Updater
type Option func(*Updater)

// WithChecker sets a custom prerequisite checker (for testing)
func WithChecker(checker *precheck.Checker) Option {
	return func(u *Updater) {
		u.checker = checker
	}
}

// WithFetcher sets a custom token fetcher (for testing)
func WithFetcher(fetcher *keyvault.Fetcher) Option {
	return func(u *Updater) {
		u.fetcher = fetcher
	}
}

// WithPatcher sets a custom patcher (for testing)
func WithPatcher(patcher *patch.Patcher) Option {
	return func(u *Updater) {
		u.patcher = patcher
	}
}

// WithVerifier sets a custom verifier (for testing)
func WithVerifier(verifier *verify.Verifier) Option {
	return func(u *Updater) {
		u.verifier = verifier
	}
}

// New creates an Updater from the resolved configuration. The Key Vault
// client is not built here: prerequisites must pass first, so the fetcher
// is constructed lazily inside Run unless one is injected.
func New(cfg *config.Config, opts ...Option) *Updater {
	u := &Updater{
		cfg:    cfg,
		logger: cfg.Logger,
	}

	for _, opt := range opts {
		opt(u)
	}

	if u.checker == nil {
		u.checker = precheck.New(cfg)
	}
	if u.patcher == nil {
		u.patcher = patch.New(cfg)
	}
	if u.verifier == nil {
		u.verifier = verify.New(cfg)
	}

	return u
}

// Run executes the full update and returns a summary of what happened.
// The returned error, if any, is a StepError naming the failed step.
func (u *Updater) Run(ctx context.Context) (*Summary, error) {
	def := u.cfg.Definition

	u.logger.Step("Validating prerequisites")
	if err := u.checker.Run(ctx); err != nil {
		return nil, StepError{Step: StepValidate, Err: err}
	}
	u.logger.Info("Prerequisites OK")

	u.logger.Step("Fetching token from Key Vault '%s'", def.KeyVault.Name)
	fetcher := u.fetcher
	if fetcher == nil {
		var err error
		fetcher, err = keyvault.NewFetcher(u.cfg)
		if err != nil {
			return nil, StepError{Step: StepFetch, Err: err}
		}
	}

	token, err := fetcher.Fetch(ctx)
	if err != nil {
		return nil, StepError{Step: StepFetch, Err: err}
	}
	defer token.Destroy()
	u.logger.Info("Token retrieved: %s", def.KeyVault.SecretName)

	u.logger.Step("Patching %s", def.TargetFile)
	result, err := u.patcher.Apply(token)
	if err != nil {
		return nil, StepError{Step: StepPatch, Err: err}
	}
	u.logger.Info("Replaced %d occurrence(s) of %s", result.Replaced, def.Placeholder)
	u.logger.Info("Backup created: %s", result.BackupPath)

	u.logger.Step("Verifying %s", def.TargetFile)
	report, err := u.verifier.Run()
	if err != nil {
		return nil, StepError{Step: StepVerify, Err: err}
	}
	u.logger.Info("Verified: %d token line(s) configured", report.TokenLines)

	return &Summary{
		BackupPath: result.BackupPath,
		Replaced:   result.Replaced,
		TokenLines: report.TokenLines,
	}, nil
}
