package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhallin2/ansible-dev-tools/internal/logging"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	def := Defaults()

	assert.Equal(t, 0, def.Version)
	assert.Equal(t, DefaultTargetFile, def.TargetFile)
	assert.Equal(t, DefaultPlaceholder, def.Placeholder)
	assert.Equal(t, DefaultVaultName, def.KeyVault.Name)
	assert.Equal(t, DefaultSecretName, def.KeyVault.SecretName)
	assert.Equal(t, DefaultSecretVersion, def.KeyVault.SecretVersion)
	assert.Equal(t, StrategySDK, def.Fetch.GetStrategy())
}

func TestVaultURL(t *testing.T) {
	t.Parallel()

	kv := KeyVaultConfig{Name: "kv-weu-wintel-prod"}
	assert.Equal(t, "https://kv-weu-wintel-prod.vault.azure.net/", kv.VaultURL())
}

func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30*time.Second, FetchConfig{}.GetTimeout())
	assert.Equal(t, 30*time.Second, FetchConfig{TimeoutMs: -5}.GetTimeout())
	assert.Equal(t, 1500*time.Millisecond, FetchConfig{TimeoutMs: 1500}.GetTimeout())
}

func TestConfig_Load_MissingFile(t *testing.T) {
	t.Parallel()

	logger := logging.New(false, false)
	config := &Config{
		Path:   "/nonexistent/path/to/hubtoken.yaml",
		Logger: logger,
	}

	err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestConfig_Load_InvalidYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hubtoken.yaml")

	// Invalid YAML with syntax error
	invalidYAML := `version: 0
keyVault:
  name: kv-test
  bad syntax here [[[
`

	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	logger := logging.New(false, false)
	config := &Config{
		Path:   configPath,
		Logger: logger,
	}

	err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML syntax")
}

func TestConfig_Load_UnsupportedVersion(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hubtoken.yaml")

	configContent := `version: 999
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	logger := logging.New(false, false)
	config := &Config{
		Path:   configPath,
		Logger: logger,
	}

	err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported configuration version")
}

func TestConfig_Load_FileOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hubtoken.yaml")

	configContent := `version: 0
target_file: /etc/ansible/ansible.cfg
keyVault:
  name: kv-neu-wintel-test
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	config := &Config{
		Path:   configPath,
		Logger: logging.New(false, false),
	}

	require.NoError(t, config.Load())

	// Explicit values win
	assert.Equal(t, "/etc/ansible/ansible.cfg", config.Definition.TargetFile)
	assert.Equal(t, "kv-neu-wintel-test", config.Definition.KeyVault.Name)

	// Absent keys keep their built-in defaults
	assert.Equal(t, DefaultPlaceholder, config.Definition.Placeholder)
	assert.Equal(t, DefaultSecretName, config.Definition.KeyVault.SecretName)
	assert.Equal(t, DefaultSecretVersion, config.Definition.KeyVault.SecretVersion)
}

func TestConfig_Load_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hubtoken.yaml")

	configContent := `version: 0
keyVault:
  name: kv-from-file
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("HUBTOKEN_VAULT_NAME", "kv-from-env")
	t.Setenv("HUBTOKEN_FETCH_STRATEGY", "cli")
	t.Setenv("HUBTOKEN_FETCH_TIMEOUT_MS", "5000")

	config := &Config{
		Path:   configPath,
		Logger: logging.New(false, false),
	}

	require.NoError(t, config.Load())

	assert.Equal(t, "kv-from-env", config.Definition.KeyVault.Name)
	assert.Equal(t, StrategyCLI, config.Definition.Fetch.GetStrategy())
	assert.Equal(t, 5*time.Second, config.Definition.Fetch.GetTimeout())
}

func TestConfig_Load_InvalidStrategy(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hubtoken.yaml")

	configContent := `version: 0
fetch:
  strategy: carrier-pigeon
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	config := &Config{
		Path:   configPath,
		Logger: logging.New(false, false),
	}

	err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Valid strategies: sdk, cli")
}

func TestConfig_LoadOrDefaults_MissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	config := &Config{
		Path:   filepath.Join(tmpDir, "hubtoken.yaml"),
		Logger: logging.New(false, false),
	}

	require.NoError(t, config.LoadOrDefaults())
	require.NotNil(t, config.Definition)

	assert.Equal(t, DefaultVaultName, config.Definition.KeyVault.Name)
	assert.Equal(t, DefaultTargetFile, config.Definition.TargetFile)
}

func TestConfig_LoadOrDefaults_EnvOnly(t *testing.T) {
	tmpDir := t.TempDir()

	t.Setenv("HUBTOKEN_TARGET_FILE", "/tmp/ansible.cfg")
	t.Setenv("HUBTOKEN_PLACEHOLDER", "__HUB_TOKEN__")
	t.Setenv("HUBTOKEN_SECRET_NAME", "APIkey-Private-AAP-HUB")

	config := &Config{
		Path:   filepath.Join(tmpDir, "hubtoken.yaml"),
		Logger: logging.New(false, false),
	}

	require.NoError(t, config.LoadOrDefaults())

	assert.Equal(t, "/tmp/ansible.cfg", config.Definition.TargetFile)
	assert.Equal(t, "__HUB_TOKEN__", config.Definition.Placeholder)
}

func TestConfig_LoadOrDefaults_ExistingFileStillStrict(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hubtoken.yaml")

	err := os.WriteFile(configPath, []byte("version: 7\n"), 0644)
	require.NoError(t, err)

	config := &Config{
		Path:   configPath,
		Logger: logging.New(false, false),
	}

	err = config.LoadOrDefaults()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported configuration version")
}

func TestConfig_Load_EmptyVaultNameRejected(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hubtoken.yaml")

	configContent := `version: 0
keyVault:
  name: ""
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	config := &Config{
		Path:   configPath,
		Logger: logging.New(false, false),
	}

	err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault name is required")
}
