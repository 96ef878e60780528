package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/money-manager/txnparse/internal/model"
	"github.com/money-manager/txnparse/internal/normalize"
)

func newParseCommand() *cobra.Command {
	var repoDir, sourceApp string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Parse one message given as arguments or on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}
			return runParse(cmd, repoDir, model.RawText{Text: text, SourceApp: sourceApp, ReceivedAt: time.Now()}, asJSON)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", "", "repository directory for config and merchant catalog")
	cmd.Flags().StringVar(&sourceApp, "source-app", "", "package name of the app that produced the text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

func runParse(cmd *cobra.Command, repoDir string, raw model.RawText, asJSON bool) error {
	r, err := openRepo(cmd.Context(), repoDir)
	if err != nil {
		return err
	}

	txn, err := r.parser.Parse(cmd.Context(), raw)
	out := cmd.OutOrStdout()
	if err != nil {
		if asJSON {
			body := map[string]any{"error": err.Error()}
			if reason, ok := normalize.ReasonOf(err); ok {
				body["reason"] = reason
			}
			_ = json.NewEncoder(out).Encode(body)
		}
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(txn)
	}

	fmt.Fprintf(out, "%s %s %s (confidence %d, %s)\n",
		txn.Direction, txn.Amount.StringFixed(2), txn.Merchant, txn.Confidence, txn.Method)
	if txn.Category != "" {
		fmt.Fprintf(out, "category: %s\n", txn.Category)
	}
	if txn.Source != "" {
		fmt.Fprintf(out, "source: %s\n", txn.Source)
	}
	return nil
}

