package keyvault

import (
	"context"
	"strings"

	hterrors "github.com/mhallin2/ansible-dev-tools/internal/errors"
	"github.com/mhallin2/ansible-dev-tools/internal/logging"
)

// fetchCLI retrieves the secret with one az invocation, the same command an
// operator would run by hand:
//
//	az keyvault secret show --vault-name <vault> --name <secret> \
//	    --version <version> --query value --output tsv
//
// The --version flag is omitted when no version is pinned, which makes az
// return the latest enabled version.
func (f *Fetcher) fetchCLI(ctx context.Context) (string, error) {
	args := []string{
		"keyvault", "secret", "show",
		"--vault-name", f.kv.Name,
		"--name", f.kv.SecretName,
	}
	if f.kv.SecretVersion != "" {
		args = append(args, "--version", f.kv.SecretVersion)
	}
	args = append(args, "--query", "value", "--output", "tsv")

	out, err := f.runner.Run(ctx, "az", args...)
	if err != nil {
		return "", hterrors.AzCLIError("secret fetch", err)
	}

	// tsv output carries a trailing newline
	value := strings.TrimSpace(out)

	f.logger.Debug("az keyvault secret show output: %s", logging.Redact(out, []string{value}))

	return value, nil
}
