package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/money-manager/txnparse/internal/gitops"
	"github.com/money-manager/txnparse/internal/id"
	"github.com/money-manager/txnparse/internal/importer"
	"github.com/money-manager/txnparse/internal/ledger"
	"github.com/money-manager/txnparse/internal/parselog"
	"github.com/money-manager/txnparse/internal/pipeline"
)

func newImportCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Parse SMS exports and notification dumps in import/ into the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, repoDir)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")

	return cmd
}

func runImport(cmd *cobra.Command, repoDir string) error {
	ctx := cmd.Context()
	r, err := openRepo(ctx, repoDir)
	if err != nil {
		return err
	}

	files, err := importer.Scan(r.root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No files to import")
		return nil
	}

	registry := importer.DefaultRegistry()
	book := ledger.NewService(r.root, r.cfg.Thresholds.AutoConfirm)
	audit := parselog.New(r.root)
	runID := id.NewRequestID()
	var imported []string

	for _, fi := range files {
		raws, err := registry.ReadFile(fi)
		if err != nil {
			return err
		}

		batch, err := r.parser.ParseBatch(ctx, raws)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", fi.Name, err)
		}

		var recorded, duplicates int
		entries := make([]parselog.Entry, 0, len(batch.Items))
		for _, it := range batch.Items {
			e := parselog.NewEntry(runID, fi.Name, it.Txn, it.Err)
			if it.Outcome == pipeline.OutcomeAccepted {
				exp, err := book.Record(it.Txn, it.Raw)
				switch {
				case err == nil:
					recorded++
					e.EntryID = exp.EntryID
				case errors.Is(err, ledger.ErrDuplicate):
					duplicates++
				default:
					return fmt.Errorf("recording %s: %w", fi.Name, err)
				}
			}
			entries = append(entries, e)
		}
		if err := audit.Append(entries...); err != nil {
			r.log.Warn().Err(err).Msg("writing parse log")
		}

		if err := importer.MarkProcessed(r.root, fi.Name); err != nil {
			return err
		}

		imported = append(imported, fi.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d recorded, %d duplicate, %d failed, %d low confidence\n",
			fi.Name, recorded,
			duplicates+batch.Count(pipeline.OutcomeDuplicate),
			batch.Count(pipeline.OutcomeFailed),
			batch.Count(pipeline.OutcomeLowConfidence))
	}

	return commitImport(r, imported)
}

// commitImport commits the ledger changes of an import when the repo is
// under git.
func commitImport(r *repo, files []string) error {
	if !r.cfg.Git.Enabled {
		return nil
	}
	gr, ok := gitops.Open(r.root, gitAuthor(r.cfg))
	if !ok {
		return nil
	}
	hash, err := gr.Commit("import: " + strings.Join(files, ", "))
	switch {
	case errors.Is(err, gitops.ErrNothingToCommit):
		return nil
	case err != nil:
		return fmt.Errorf("committing import: %w", err)
	}
	r.log.Info().Str("commit", hash).Strs("files", files).Msg("import committed")
	return nil
}
