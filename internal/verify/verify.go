// Package verify re-reads the patched file and confirms the substitution
// took: the placeholder must be gone and at least one token= line must
// remain. Read-only, it never mutates the target.
package verify

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
	hterrors "github.com/mhallin2/ansible-dev-tools/internal/errors"
	"github.com/mhallin2/ansible-dev-tools/internal/logging"
)

// tokenLine matches lines carrying a hub token assignment
var tokenLine = regexp.MustCompile(`(?m)^token=`)

// Report is the outcome of a verification pass
type Report struct {
	// TokenLines counts lines starting with token=
	TokenLines int
}

// Verifier checks the target file after patching
type Verifier struct {
	path        string
	placeholder string
	logger      *logging.Logger
}

// New creates a Verifier from the resolved configuration
func New(cfg *config.Config) *Verifier {
	return &Verifier{
		path:        cfg.Definition.TargetFile,
		placeholder: cfg.Definition.Placeholder,
		logger:      cfg.Logger,
	}
}

// Run validates the patched file and reports how many token lines it holds
func (v *Verifier) Run() (*Report, error) {
	content, err := os.ReadFile(v.path)
	if err != nil {
		return nil, hterrors.UserError{
			Message: fmt.Sprintf("Cannot read target file for verification: %s", v.path),
			Details: err.Error(),
			Err:     err,
		}
	}

	if n := strings.Count(string(content), v.placeholder); n > 0 {
		return nil, hterrors.UserError{
			Message:    "Token placeholder still found",
			Details:    fmt.Sprintf("%d occurrence(s) of %q in %s", n, v.placeholder, v.path),
			Suggestion: "Re-run the update; if it persists, check the placeholder setting",
		}
	}

	count := len(tokenLine.FindAllIndex(content, -1))
	if count == 0 {
		return nil, hterrors.UserError{
			Message:    "no token configurations found",
			Details:    fmt.Sprintf("expected at least one line starting with token= in %s", v.path),
			Suggestion: "Check that the target file is the right ansible.cfg",
		}
	}

	v.logger.Debug("Verification found %d token line(s) in %s", count, v.path)

	return &Report{TokenLines: count}, nil
}
