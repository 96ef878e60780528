package commands

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/money-manager/txnparse/internal/api"
	"github.com/money-manager/txnparse/internal/ledger"
	"github.com/money-manager/txnparse/internal/parselog"
)

func newServeCommand() *cobra.Command {
	var repoDir, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse and sync HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, repoDir, addr)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from txnparse.yaml)")

	return cmd
}

func runServe(cmd *cobra.Command, repoDir, addr string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := openRepo(ctx, repoDir)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = r.cfg.Server.Addr
	}

	h := api.NewHandler(r.parser,
		ledger.NewService(r.root, r.cfg.Thresholds.AutoConfirm),
		parselog.New(r.root))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	r.log.Info().
		Str("repo", r.root).
		Bool("llm_fallback", r.usesModel).
		Int("merchants", len(r.catalog.All())).
		Msg("txnparse API ready")

	return api.Serve(ctx, ln, api.NewRouter(h, r.log), r.log)
}
