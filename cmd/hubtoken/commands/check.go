package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
	"github.com/mhallin2/ansible-dev-tools/internal/precheck"
)

func NewCheckCommand(cfg *config.Config) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check prerequisites without changing anything",
		Long: `Verify the environment is ready for a token update.

This command checks:
- The az CLI is installed and on PATH
- An Azure session is active (az account show)
- The target configuration file exists

Nothing is fetched and nothing is written. Exit code 0 means a bare
hubtoken run would get past validation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg); err != nil {
				return err
			}

			results := precheck.New(cfg).All(cmd.Context())
			displayCheckResults(results, verbose)

			passed := 0
			for _, result := range results {
				if result.Status == precheck.StatusOK {
					passed++
				}
			}

			fmt.Printf("\nSummary: %d/%d checks passed\n", passed, len(results))
			if passed < len(results) {
				return fmt.Errorf("some prerequisites are not met")
			}

			cfg.Logger.Info("Ready to update the hub token")
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show failure details")

	return cmd
}

// displayCheckResults shows probe outcomes in a formatted table
func displayCheckResults(results []precheck.Result, verbose bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "CHECK\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t-------\n")

	for _, result := range results {
		status := result.Status
		switch result.Status {
		case precheck.StatusOK:
			status = "✓ " + status
		case precheck.StatusError:
			status = "✗ " + status
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", result.Name, status, result.Message)
	}

	_ = w.Flush()

	// Failure details below the table so it stays aligned
	if verbose {
		for _, result := range results {
			if result.Err != nil {
				fmt.Printf("\n%s:\n  %v\n", result.Name, result.Err)
			}
		}
	}
}
