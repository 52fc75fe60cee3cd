// Package patch applies the fetched token to the target configuration file.
// Every run copies the file to a timestamped backup before touching it, then
// replaces the placeholder text everywhere it appears. A failed write is
// compensated by restoring the backup, so the target is never left half
// patched.
package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
	hterrors "github.com/mhallin2/ansible-dev-tools/internal/errors"
	"github.com/mhallin2/ansible-dev-tools/internal/logging"
	"github.com/mhallin2/ansible-dev-tools/internal/secure"
)

// timestampLayout names backup files, e.g. ansible.cfg.backup.20250314_092653
const timestampLayout = "20060102_150405"

// Result reports what a patch run did
type Result struct {
	// BackupPath is the timestamped copy created before mutation
	BackupPath string
	// Replaced is the number of placeholder occurrences substituted
	Replaced int
}

// writeFileFunc matches os.WriteFile, injectable for failure tests
type writeFileFunc func(name string, data []byte, perm os.FileMode) error

// Patcher substitutes the placeholder in the target file
type Patcher struct {
	path        string
	placeholder string
	logger      *logging.Logger
	now         func() time.Time
	writeFile   writeFileFunc
}

// Option is a functional option for configuring the Patcher
type Option func(*Patcher)

// WithClock sets the time source for backup names (for testing)
func WithClock(now func() time.Time) Option {
	return func(p *Patcher) {
		p.now = now
	}
}

// WithWriteFile sets the file writer (for failure injection in tests)
func WithWriteFile(fn writeFileFunc) Option {
	return func(p *Patcher) {
		p.writeFile = fn
	}
}

// New creates a Patcher from the resolved configuration
func New(cfg *config.Config, opts ...Option) *Patcher {
	p := &Patcher{
		path:        cfg.Definition.TargetFile,
		placeholder: cfg.Definition.Placeholder,
		logger:      cfg.Logger,
		now:         time.Now,
		writeFile:   os.WriteFile,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Apply backs up the target file and substitutes every occurrence of the
// placeholder with the token value. The backup is created even when the
// placeholder is absent, so each run leaves a restore point.
func (p *Patcher) Apply(token *secure.Token) (*Result, error) {
	value, err := token.Reveal()
	if err != nil {
		return nil, hterrors.UserError{
			Message: "Failed to access token value",
			Err:     err,
		}
	}
	if value == "" {
		return nil, hterrors.UserError{
			Message:    "Refusing to patch with an empty token value",
			Suggestion: "Check the secret value in the Azure portal",
		}
	}

	info, err := os.Stat(p.path)
	if err != nil {
		return nil, hterrors.UserError{
			Message: fmt.Sprintf("Cannot access target file: %s", p.path),
			Details: err.Error(),
			Err:     err,
		}
	}
	mode := info.Mode().Perm()

	content, err := os.ReadFile(p.path)
	if err != nil {
		return nil, hterrors.UserError{
			Message: fmt.Sprintf("Cannot read target file: %s", p.path),
			Details: err.Error(),
			Err:     err,
		}
	}

	backupPath := fmt.Sprintf("%s.backup.%s", p.path, p.now().Format(timestampLayout))
	if err := p.writeFile(backupPath, content, mode); err != nil {
		return nil, hterrors.UserError{
			Message:    fmt.Sprintf("Failed to create backup: %s", backupPath),
			Details:    err.Error(),
			Suggestion: fmt.Sprintf("Check write permissions in %s", filepath.Dir(p.path)),
			Err:        err,
		}
	}
	// os.WriteFile applies the umask on create; force the original mode so
	// the backup is exactly as private as the file it copies.
	if err := os.Chmod(backupPath, mode); err != nil {
		return nil, hterrors.UserError{
			Message: fmt.Sprintf("Failed to set backup file mode: %s", backupPath),
			Details: err.Error(),
			Err:     err,
		}
	}
	p.logger.Debug("Backup created: %s", backupPath)

	text := string(content)
	replaced := strings.Count(text, p.placeholder)
	if replaced == 0 {
		p.logger.Warn("Placeholder %q not found in %s, nothing to replace", p.placeholder, p.path)
	}
	updated := strings.ReplaceAll(text, p.placeholder, value)

	if err := p.writeFile(p.path, []byte(updated), mode); err != nil {
		if restoreErr := os.WriteFile(p.path, content, mode); restoreErr != nil {
			return nil, hterrors.UserError{
				Message:    "Failed to write patched file and backup restore failed",
				Details:    fmt.Sprintf("write: %v; restore: %v", err, restoreErr),
				Suggestion: fmt.Sprintf("Restore manually: cp %s %s", backupPath, p.path),
				Err:        err,
			}
		}

		return nil, hterrors.UserError{
			Message:    "Failed to write patched file, original content restored",
			Details:    err.Error(),
			Suggestion: fmt.Sprintf("Check write permissions on %s", p.path),
			Err:        err,
		}
	}

	return &Result{
		BackupPath: backupPath,
		Replaced:   replaced,
	}, nil
}
