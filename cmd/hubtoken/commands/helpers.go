package commands

import (
	"github.com/spf13/cobra"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
)

// loadConfig resolves the runtime configuration for a command. An explicitly
// passed --config must exist; the default path is optional and falls back to
// built-in defaults plus environment overrides.
func loadConfig(cmd *cobra.Command, cfg *config.Config) error {
	config.LoadDotEnv(cfg.Logger)

	if cmd.Flags().Changed("config") {
		return cfg.Load()
	}

	return cfg.LoadOrDefaults()
}
