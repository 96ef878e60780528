package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/money-manager/txnparse/internal/config"
	"github.com/money-manager/txnparse/internal/gitops"
	"github.com/money-manager/txnparse/internal/merchants"
)

func newInitCommand() *cobra.Command {
	var enableLLM, noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new txnparse repo",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, enableLLM, noGit)
		},
	}

	cmd.Flags().BoolVar(&enableLLM, "llm", false, "enable the Gemini fallback in the generated config")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(dir string, enableLLM, noGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	// Create directory structure.
	dirs := []string{
		merchants.Dir,
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.LLM.Enabled = enableLLM
	cfg.Git.Enabled = !noGit
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := merchants.NewService(merchants.DefaultCatalog()).Save(dir); err != nil {
		return fmt.Errorf("writing merchant catalog: %w", err)
	}

	gitignore := "logs/\nimport/processed/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !cfg.Git.Enabled {
		fmt.Printf("Initialized txnparse repo at %s\n", dir)
		return nil
	}

	gr, err := gitops.Init(dir, gitAuthor(cfg))
	if err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	hash, err := gr.Commit("init: Initialize txnparse repo")
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Printf("Initialized txnparse repo at %s (%s)\n", dir, hash)
	return nil
}

func gitAuthor(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}
