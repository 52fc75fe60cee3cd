package commands

import (
	"github.com/spf13/cobra"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
	"github.com/mhallin2/ansible-dev-tools/internal/verify"
)

func NewVerifyCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the target file is fully patched",
		Long: `Re-run the post-patch verification against the target file.

Fails if the placeholder is still present or if no token= lines exist.
Read-only; nothing is fetched and nothing is written.

Examples:
  # Verify the default target
  hubtoken verify

  # Verify a different file
  HUBTOKEN_TARGET_FILE=/etc/ansible/ansible.cfg hubtoken verify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg); err != nil {
				return err
			}

			report, err := verify.New(cfg).Run()
			if err != nil {
				return err
			}

			cfg.Logger.Info("%s is fully patched (%d token line(s))",
				cfg.Definition.TargetFile, report.TokenLines)

			return nil
		},
	}

	return cmd
}
