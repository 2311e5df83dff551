package harness

import "github.com/spf13/cobra"

// NewRootCmd builds the root datahub-harness command. It carries no state
// of its own; each subcommand builds its own Hub instance so runs never
// leak state between invocations (mirrors spec.md §6 "CLI surface (test
// harness only, informative)").
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "datahub-harness",
		Short:         "Exercise the DataHub config-load and destination-handler paths",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(newParserCmd())
	root.AddCommand(newDestinationCmd())
	root.AddCommand(newTreeCmd())
	return root
}
