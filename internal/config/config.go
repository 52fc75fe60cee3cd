package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	hterrors "github.com/mhallin2/ansible-dev-tools/internal/errors"
	"github.com/mhallin2/ansible-dev-tools/internal/logging"
)

// Built-in defaults matching the wintel production deployment. Every value
// can be overridden by hubtoken.yaml or a HUBTOKEN_* environment variable.
const (
	DefaultConfigPath    = "hubtoken.yaml"
	DefaultTargetFile    = "/workspaces/ansible-dev-tools/scripts/ansible.cfg"
	DefaultPlaceholder   = "{{Hub_token}}"
	DefaultVaultName     = "kv-weu-wintel-prod"
	DefaultSecretName    = "APIkey-Private-AAP-HUB"
	DefaultSecretVersion = "6024959f4bec42c4a2500bc31317116d"
)

// Fetch strategies. Both perform exactly one lookup per run.
const (
	StrategySDK = "sdk"
	StrategyCLI = "cli"
)

// Config holds the runtime configuration
type Config struct {
	Path       string
	Logger     *logging.Logger
	Debug      bool
	NoColor    bool
	Definition *Definition
}

// Definition represents the hubtoken.yaml structure
type Definition struct {
	Version     int            `yaml:"version" json:"version"`
	TargetFile  string         `yaml:"target_file,omitempty" json:"target_file,omitempty"`
	Placeholder string         `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	KeyVault    KeyVaultConfig `yaml:"keyVault,omitempty" json:"keyVault,omitempty"`
	Fetch       FetchConfig    `yaml:"fetch,omitempty" json:"fetch,omitempty"`
}

// KeyVaultConfig identifies the secret to fetch and how to authenticate.
// With no credential fields set the SDK falls back to the default Azure
// credential chain, which picks up the az CLI session.
type KeyVaultConfig struct {
	Name               string `yaml:"name,omitempty" json:"name,omitempty"`
	SecretName         string `yaml:"secret_name,omitempty" json:"secret_name,omitempty"`
	SecretVersion      string `yaml:"secret_version,omitempty" json:"secret_version,omitempty"`
	TenantID           string `yaml:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	ClientID           string `yaml:"client_id,omitempty" json:"client_id,omitempty"`
	ClientSecret       string `yaml:"client_secret,omitempty" json:"client_secret,omitempty"`
	UseManagedIdentity bool   `yaml:"use_managed_identity,omitempty" json:"use_managed_identity,omitempty"`
	UserAssignedID     string `yaml:"user_assigned_identity_id,omitempty" json:"user_assigned_identity_id,omitempty"`
}

// FetchConfig selects the lookup strategy and its timeout
type FetchConfig struct {
	Strategy  string `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	TimeoutMs int    `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty"`
}

// Defaults returns a Definition populated with the built-in defaults
func Defaults() *Definition {
	return &Definition{
		Version:     0,
		TargetFile:  DefaultTargetFile,
		Placeholder: DefaultPlaceholder,
		KeyVault: KeyVaultConfig{
			Name:          DefaultVaultName,
			SecretName:    DefaultSecretName,
			SecretVersion: DefaultSecretVersion,
		},
		Fetch: FetchConfig{
			Strategy: StrategySDK,
		},
	}
}

// VaultURL returns the HTTPS endpoint for the configured vault
func (k KeyVaultConfig) VaultURL() string {
	return fmt.Sprintf("https://%s.vault.azure.net/", k.Name)
}

// GetStrategy returns the fetch strategy, defaulting to the SDK
func (f FetchConfig) GetStrategy() string {
	if f.Strategy == "" {
		return StrategySDK
	}
	return f.Strategy
}

// GetTimeout returns the fetch timeout
func (f FetchConfig) GetTimeout() time.Duration {
	if f.TimeoutMs <= 0 {
		return 30 * time.Second // Default 30 seconds
	}
	return time.Duration(f.TimeoutMs) * time.Millisecond
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Devcontainers usually provide real environment variables, so a missing
// file is not an error.
func LoadDotEnv(logger *logging.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded: %v", err)
		return
	}
	logger.Debug("Loaded environment overrides from .env")
}

// Load reads and parses the hubtoken.yaml file. Values not present in the
// file keep their built-in defaults; HUBTOKEN_* environment variables are
// applied on top.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return hterrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create a hubtoken.yaml or run without --config to use the built-in defaults",
			}
		}
		return hterrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	// Unmarshal over the defaults so absent keys keep their built-in values
	def := Defaults()
	if err := yaml.Unmarshal(data, def); err != nil {
		return hterrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	// Schema check runs on the raw document so typoed keys fail loudly
	// instead of being silently dropped by the typed unmarshal
	if err := validateSchemaDocument(data); err != nil {
		return err
	}

	applyEnvOverrides(def)

	if err := validateDefinition(def); err != nil {
		return err
	}

	c.Definition = def
	return nil
}

// LoadOrDefaults behaves like Load but treats a missing file as "use the
// defaults". The bare invocation must work without any configuration file.
func (c *Config) LoadOrDefaults() error {
	if _, err := os.Stat(c.Path); os.IsNotExist(err) {
		if c.Logger != nil {
			c.Logger.Debug("No %s found, using built-in defaults", c.Path)
		}
		def := Defaults()
		applyEnvOverrides(def)
		if err := validateDefinition(def); err != nil {
			return err
		}
		c.Definition = def
		return nil
	}
	return c.Load()
}

// applyEnvOverrides layers HUBTOKEN_* environment variables over the definition
func applyEnvOverrides(def *Definition) {
	if v := os.Getenv("HUBTOKEN_TARGET_FILE"); v != "" {
		def.TargetFile = v
	}
	if v := os.Getenv("HUBTOKEN_PLACEHOLDER"); v != "" {
		def.Placeholder = v
	}
	if v := os.Getenv("HUBTOKEN_VAULT_NAME"); v != "" {
		def.KeyVault.Name = v
	}
	if v := os.Getenv("HUBTOKEN_SECRET_NAME"); v != "" {
		def.KeyVault.SecretName = v
	}
	if v := os.Getenv("HUBTOKEN_SECRET_VERSION"); v != "" {
		def.KeyVault.SecretVersion = v
	}
	if v := os.Getenv("HUBTOKEN_FETCH_STRATEGY"); v != "" {
		def.Fetch.Strategy = v
	}
	if v := os.Getenv("HUBTOKEN_FETCH_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			def.Fetch.TimeoutMs = ms
		}
	}
}

// validateDefinition checks the merged definition. Unlike the schema check
// this sees values from every source, including environment overrides.
func validateDefinition(def *Definition) error {
	if def.Version != 0 {
		return hterrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your hubtoken.yaml file",
		}
	}

	if strategy := def.Fetch.GetStrategy(); strategy != StrategySDK && strategy != StrategyCLI {
		return hterrors.ConfigError{
			Field:      "fetch.strategy",
			Value:      strategy,
			Message:    "unknown fetch strategy",
			Suggestion: fmt.Sprintf("Valid strategies: %s", strings.Join([]string{StrategySDK, StrategyCLI}, ", ")),
		}
	}

	if def.KeyVault.Name == "" {
		return hterrors.ConfigError{
			Field:      "keyVault.name",
			Message:    "vault name is required",
			Suggestion: "Set keyVault.name in hubtoken.yaml or the HUBTOKEN_VAULT_NAME environment variable",
		}
	}
	if def.KeyVault.SecretName == "" {
		return hterrors.ConfigError{
			Field:      "keyVault.secret_name",
			Message:    "secret name is required",
			Suggestion: "Set keyVault.secret_name in hubtoken.yaml or the HUBTOKEN_SECRET_NAME environment variable",
		}
	}

	return nil
}
