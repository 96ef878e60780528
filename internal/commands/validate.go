package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/money-manager/txnparse/internal/ledger"
)

func newValidateCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every ledger month against the ledger rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd.Context(), repoDir)
			if err != nil {
				return err
			}

			verrs, err := ledger.NewService(r.root, r.cfg.Thresholds.AutoConfirm).Validate()
			if err != nil {
				return err
			}
			for _, ve := range verrs {
				fmt.Fprintln(cmd.OutOrStdout(), ve.Error())
			}
			if len(verrs) > 0 {
				return fmt.Errorf("%d validation errors", len(verrs))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Ledger OK")
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")

	return cmd
}
