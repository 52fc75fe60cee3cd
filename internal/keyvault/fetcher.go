package keyvault

import (
	"context"
	"fmt"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
	hterrors "github.com/mhallin2/ansible-dev-tools/internal/errors"
	"github.com/mhallin2/ansible-dev-tools/internal/execenv"
	"github.com/mhallin2/ansible-dev-tools/internal/logging"
	"github.com/mhallin2/ansible-dev-tools/internal/secure"
)

// Fetcher retrieves the hub token from Azure Key Vault. Each Fetch performs
// exactly one lookup, with whichever strategy the configuration selects.
// A failed lookup is reported, never silently retried with the other strategy.
type Fetcher struct {
	kv     config.KeyVaultConfig
	fetch  config.FetchConfig
	logger *logging.Logger
	client SecretClientAPI
	runner execenv.Runner
}

// Option is a functional option for configuring the Fetcher
type Option func(*Fetcher)

// WithSecretClient sets a custom Key Vault client (for testing)
func WithSecretClient(client SecretClientAPI) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithRunner sets a custom command runner for the CLI strategy (for testing)
func WithRunner(runner execenv.Runner) Option {
	return func(f *Fetcher) {
		f.runner = runner
	}
}

// NewFetcher builds a Fetcher from the resolved configuration. The SDK
// strategy constructs a real Key Vault client unless one is injected, so
// credential problems surface here rather than mid-pipeline.
func NewFetcher(cfg *config.Config, opts ...Option) (*Fetcher, error) {
	def := cfg.Definition
	f := &Fetcher{
		kv:     def.KeyVault,
		fetch:  def.Fetch,
		logger: cfg.Logger,
	}

	for _, opt := range opts {
		opt(f)
	}

	switch f.fetch.GetStrategy() {
	case config.StrategyCLI:
		if f.runner == nil {
			f.runner = execenv.New(cfg.Logger)
		}
	default:
		if f.client == nil {
			client, err := newSecretClient(f.kv)
			if err != nil {
				return nil, fmt.Errorf("failed to create Azure Key Vault client: %w", err)
			}
			f.client = client
		}
	}

	return f, nil
}

// Fetch retrieves the token value and seals it in locked memory. An empty
// value is an error: patching the target file with nothing would produce a
// config that looks updated but cannot authenticate.
func (f *Fetcher) Fetch(ctx context.Context) (*secure.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, f.fetch.GetTimeout())
	defer cancel()

	var value string
	var err error

	switch f.fetch.GetStrategy() {
	case config.StrategyCLI:
		value, err = f.fetchCLI(ctx)
	default:
		value, err = f.fetchSDK(ctx)
	}
	if err != nil {
		return nil, err
	}

	if value == "" {
		return nil, hterrors.UserError{
			Message:    "Empty token received from Key Vault",
			Details:    f.describeRef(),
			Suggestion: "Check the secret value in the Azure portal",
		}
	}

	f.logger.Debug("Fetched token: %s", logging.Secret(value))

	return secure.NewToken(value), nil
}

// describeRef names the secret coordinates for error details. Values only,
// never the secret itself.
func (f *Fetcher) describeRef() string {
	return fmt.Sprintf("vault=%s secret=%s version=%s", f.kv.Name, f.kv.SecretName, f.kv.SecretVersion)
}

func (f *Fetcher) fetchSDK(ctx context.Context) (string, error) {
	f.logger.Debug("Requesting secret via SDK: %s", f.kv.SecretName)

	resp, err := f.client.GetSecret(ctx, f.kv.SecretName, f.kv.SecretVersion, nil)
	if err != nil {
		return "", hterrors.UserError{
			Message:    fmt.Sprintf("Failed to retrieve secret '%s' from vault '%s'", f.kv.SecretName, f.kv.Name),
			Details:    fmt.Sprintf("%v (%s)", err, f.describeRef()),
			Suggestion: getAzureErrorSuggestion(err),
			Err:        err,
		}
	}

	if resp.Value == nil {
		return "", nil
	}

	return *resp.Value, nil
}
