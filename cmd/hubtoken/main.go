package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/mhallin2/ansible-dev-tools/cmd/hubtoken/commands"
	"github.com/mhallin2/ansible-dev-tools/internal/config"
	hterrors "github.com/mhallin2/ansible-dev-tools/internal/errors"
	"github.com/mhallin2/ansible-dev-tools/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	code := 0
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", hterrors.SimplifyError(err))
		if hterrors.IsRetryable(err) {
			fmt.Fprintln(os.Stderr, "This may be transient. Re-running the command may succeed.")
		}
		code = 1
	}

	// Wipe any token material still sitting in locked buffers before the
	// process goes away. os.Exit skips defers, so this runs explicitly.
	memguard.Purge()
	os.Exit(code)
}

func run() error {
	// Global flags
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "hubtoken",
		Short: "Update the Automation Hub token in ansible.cfg from Azure Key Vault",
		Long: `hubtoken fetches the Red Hat Automation Hub API token from Azure Key Vault
and substitutes it for the placeholder in the ansible.cfg galaxy server
section.

Run with no arguments it validates the environment (az CLI installed, Azure
session active, target file present), fetches the token, patches the file
while keeping a timestamped backup, and verifies the result. Exit code 0
means the file now carries a real token.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)

			// Update config with parsed values
			cfg.Path = configFile
			cfg.Logger = logger
			cfg.Debug = debug
			cfg.NoColor = noColor
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunUpdate(cmd, cfg)
		},
		// main prints the error once, with suggestions
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultConfigPath, "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Add commands
	rootCmd.AddCommand(
		commands.NewCheckCommand(cfg),
		commands.NewVerifyCommand(cfg),
	)

	return rootCmd.Execute()
}
