package commands

import (
	"github.com/spf13/cobra"

	"github.com/money-manager/txnparse/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "txnparse",
		Short:   "Turn payment SMS and notification text into transactions",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newInitCommand(),
		newParseCommand(),
		newImportCommand(),
		newServeCommand(),
		newValidateCommand(),
	)

	return rootCmd
}
