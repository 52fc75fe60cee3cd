package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
	"github.com/mhallin2/ansible-dev-tools/internal/logging"
)

// fullAzScript serves the prerequisite probes and the secret fetch, standing
// in for a logged-in az CLI with vault access
const fullAzScript = `#!/bin/sh
case "$1" in
  --version)
    echo "azure-cli                         2.64.0"
    ;;
  account)
    echo '{"user": {"name": "dev@example.com"}}'
    ;;
  keyvault)
    echo "glsa_e2e_token"
    ;;
  *)
    echo "ERROR: unexpected az invocation: $*" >&2
    exit 1
    ;;
esac
`

// notLoggedInAz fails the login probe the way a stale session does
const notLoggedInAz = `#!/bin/sh
case "$1" in
  --version)
    echo "azure-cli                         2.64.0"
    ;;
  account)
    echo "ERROR: Please run 'az login' to setup account." >&2
    exit 1
    ;;
  *)
    exit 1
    ;;
esac
`

// newTestRoot mirrors the root command wiring in main
func newTestRoot(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use: "hubtoken",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunUpdate(cmd, cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", config.DefaultConfigPath, "Config file path")

	return root
}

func cliStrategyDefinition(target string) *config.Definition {
	return &config.Definition{
		TargetFile: target,
		Fetch:      config.FetchConfig{Strategy: config.StrategyCLI},
	}
}

func TestRunUpdate_FullPipeline(t *testing.T) {
	installFakeAz(t, fullAzScript)

	original := "[galaxy_server.rh_automation_hub]\ntoken={{Hub_token}}\n"
	target := writeTargetFile(t, original)
	cfg := &config.Config{
		Path:   writeConfigFile(t, cliStrategyDefinition(target)),
		Logger: logging.New(false, true),
	}

	root := newTestRoot(cfg)
	root.SetArgs([]string{})
	require.NoError(t, root.Execute())

	patched, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(patched), "token=glsa_e2e_token")
	assert.NotContains(t, string(patched), "{{Hub_token}}")

	backups, err := filepath.Glob(target + ".backup.*")
	require.NoError(t, err)
	require.Len(t, backups, 1)

	backup, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, original, string(backup))
}

func TestRunUpdate_NotLoggedIn(t *testing.T) {
	installFakeAz(t, notLoggedInAz)

	original := "token={{Hub_token}}\n"
	target := writeTargetFile(t, original)
	cfg := &config.Config{
		Path:   writeConfigFile(t, cliStrategyDefinition(target)),
		Logger: logging.New(false, true),
	}

	root := newTestRoot(cfg)
	root.SetArgs([]string{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate step failed")
	assert.Contains(t, err.Error(), "Not logged in to Azure")

	// Nothing was fetched and nothing was written
	content, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	assert.Equal(t, original, string(content))

	backups, globErr := filepath.Glob(target + ".backup.*")
	require.NoError(t, globErr)
	assert.Empty(t, backups)
}

func TestRunUpdate_VerifyFailureSurfacesStep(t *testing.T) {
	installFakeAz(t, fullAzScript)

	// The placeholder is replaced but the file never had a token= line
	target := writeTargetFile(t, "password={{Hub_token}}\n")
	cfg := &config.Config{
		Path:   writeConfigFile(t, cliStrategyDefinition(target)),
		Logger: logging.New(false, true),
	}

	root := newTestRoot(cfg)
	root.SetArgs([]string{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verify step failed")
	assert.Contains(t, err.Error(), "no token configurations found")
}

func TestRunUpdate_MissingExplicitConfigFails(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Path:   filepath.Join(t.TempDir(), "missing.yaml"),
		Logger: logging.New(false, true),
	}

	root := newTestRoot(cfg)
	root.SetArgs([]string{"--config", cfg.Path})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}
