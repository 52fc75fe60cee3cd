package precheck_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
	hterrors "github.com/mhallin2/ansible-dev-tools/internal/errors"
	"github.com/mhallin2/ansible-dev-tools/internal/logging"
	"github.com/mhallin2/ansible-dev-tools/internal/precheck"
	"github.com/mhallin2/ansible-dev-tools/tests/fakes"
)

const azVersionOutput = "azure-cli                         2.64.0\n\ncore                              2.64.0\ntelemetry                          1.1.0\n"

func testConfig(t *testing.T, targetFile string) *config.Config {
	t.Helper()

	def := config.Defaults()
	def.TargetFile = targetFile

	return &config.Config{
		Logger:     logging.New(false, true),
		Definition: def,
	}
}

// writeTargetFile creates a plausible ansible.cfg in a temp dir
func writeTargetFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ansible.cfg")
	content := "[galaxy_server.rh_automation_hub]\ntoken={{Hub_token}}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func healthyRunner() *fakes.FakeRunner {
	runner := fakes.NewFakeRunner()
	runner.On("az --version", azVersionOutput, nil)
	runner.On("az account show", `{"user": {"name": "dev@example.com"}}`, nil)

	return runner
}

func TestRun_AllPrerequisitesMet(t *testing.T) {
	t.Parallel()

	runner := healthyRunner()
	cfg := testConfig(t, writeTargetFile(t))

	checker := precheck.New(cfg, precheck.WithRunner(runner))
	require.NoError(t, checker.Run(context.Background()))

	assert.Equal(t, []string{"az --version", "az account show"}, runner.Calls)
}

func TestRun_CLIMissing(t *testing.T) {
	t.Parallel()

	runner := fakes.NewFakeRunner()
	runner.On("az --version", "", hterrors.WrapCommandNotFound("az", stderrors.New(`exec: "az": executable file not found in $PATH`)))

	cfg := testConfig(t, writeTargetFile(t))

	checker := precheck.New(cfg, precheck.WithRunner(runner))
	err := checker.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Install the Azure CLI")

	// Later probes are skipped once one fails
	assert.Equal(t, []string{"az --version"}, runner.Calls)
}

func TestRun_NotLoggedIn(t *testing.T) {
	t.Parallel()

	runner := fakes.NewFakeRunner()
	runner.On("az --version", azVersionOutput, nil)
	runner.On("az account show", "", hterrors.CommandError{
		Command:  "az account show",
		ExitCode: 1,
		Message:  "ERROR: Please run 'az login' to setup account.",
	})

	cfg := testConfig(t, writeTargetFile(t))

	checker := precheck.New(cfg, precheck.WithRunner(runner))
	err := checker.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not logged in to Azure")
	assert.Contains(t, err.Error(), "Run 'az login'")
}

func TestRun_TargetFileMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "ansible.cfg")
	cfg := testConfig(t, missing)

	checker := precheck.New(cfg, precheck.WithRunner(healthyRunner()))
	err := checker.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Target file not found")
	assert.Contains(t, err.Error(), missing)
	assert.Contains(t, err.Error(), "HUBTOKEN_TARGET_FILE")
}

func TestRun_TargetIsDirectory(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, t.TempDir())

	checker := precheck.New(cfg, precheck.WithRunner(healthyRunner()))
	err := checker.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory, not a file")
}

func TestAll_CollectsEveryResult(t *testing.T) {
	t.Parallel()

	// Nothing scripted: every az probe fails. The target file is missing too.
	runner := fakes.NewFakeRunner()
	cfg := testConfig(t, filepath.Join(t.TempDir(), "ansible.cfg"))

	checker := precheck.New(cfg, precheck.WithRunner(runner))
	results := checker.All(context.Background())

	require.Len(t, results, 3)
	assert.Equal(t, "az CLI", results[0].Name)
	assert.Equal(t, "Azure login", results[1].Name)
	assert.Equal(t, "target file", results[2].Name)

	for _, result := range results {
		assert.Equal(t, precheck.StatusError, result.Status)
		assert.Error(t, result.Err)
	}
}

func TestAll_HealthyEnvironment(t *testing.T) {
	t.Parallel()

	target := writeTargetFile(t)
	cfg := testConfig(t, target)

	checker := precheck.New(cfg, precheck.WithRunner(healthyRunner()))
	results := checker.All(context.Background())

	require.Len(t, results, 3)
	for _, result := range results {
		assert.Equal(t, precheck.StatusOK, result.Status, "probe %s", result.Name)
		assert.NoError(t, result.Err)
	}

	// The version line is compacted for display
	assert.Equal(t, "azure-cli 2.64.0", results[0].Message)
	assert.Equal(t, "authenticated", results[1].Message)
	assert.Equal(t, target, results[2].Message)
}
