package commands

import (
	"github.com/spf13/cobra"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
	"github.com/mhallin2/ansible-dev-tools/internal/pipeline"
)

// RunUpdate executes the full update: validate, fetch, patch, verify.
// It backs the bare root command; hubtoken with no subcommand does exactly
// this and nothing else.
func RunUpdate(cmd *cobra.Command, cfg *config.Config) error {
	if err := loadConfig(cmd, cfg); err != nil {
		return err
	}

	summary, err := pipeline.New(cfg).Run(cmd.Context())
	if err != nil {
		return err
	}

	cfg.Logger.Info("Hub token updated in %s (%d token line(s), backup: %s)",
		cfg.Definition.TargetFile, summary.TokenLines, summary.BackupPath)

	return nil
}
