package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/money-manager/txnparse/internal/config"
	"github.com/money-manager/txnparse/internal/llm"
	"github.com/money-manager/txnparse/internal/logger"
	"github.com/money-manager/txnparse/internal/merchants"
	"github.com/money-manager/txnparse/internal/normalize"
	"github.com/money-manager/txnparse/internal/pipeline"
)

// repo bundles the services every command builds from a repo directory.
type repo struct {
	root      string
	cfg       *config.Config
	log       zerolog.Logger
	catalog   *merchants.Service
	parser    *pipeline.Service
	usesModel bool
}

// openRepo loads txnparse.yaml and the merchant catalog from root. A missing
// config or catalog falls back to the defaults, so commands also work
// outside an initialized repo. An empty root means "defaults only".
func openRepo(ctx context.Context, root string) (*repo, error) {
	r := &repo{root: root, cfg: config.Default()}

	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolving path: %w", err)
		}
		r.root = abs

		cfg, err := config.Load(filepath.Join(abs, config.FileName))
		switch {
		case err == nil:
			r.cfg = cfg
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}
	r.log = logger.New(logger.ParseLevel(r.cfg.Log.Level))

	r.catalog = merchants.NewService(merchants.DefaultCatalog())
	if r.root != "" {
		cat, err := merchants.Load(r.root)
		switch {
		case err == nil:
			r.catalog = cat
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	opts := pipeline.Options{
		Catalog:       r.catalog,
		MinConfidence: r.cfg.Thresholds.MinConfidence,
		Log:           r.log,
	}
	if r.cfg.LLM.Enabled {
		key := r.cfg.LLM.APIKey()
		if key == "" {
			r.log.Warn().Str("env", r.cfg.LLM.APIKeyEnv).Msg("LLM fallback enabled but API key is not set, disabling")
		} else {
			gen, err := llm.NewGemini(ctx, key, r.cfg.LLM.Model)
			if err != nil {
				return nil, fmt.Errorf("creating LLM client: %w", err)
			}
			opts.Fallback = llm.NewExtractor(gen)
			opts.Attempts = r.cfg.LLM.Attempts
			opts.Timeout = r.cfg.LLM.Timeout()
			r.usesModel = true
		}
	}

	r.parser = pipeline.NewService(normalize.New(r.cfg.Normalizer()), opts)
	return r, nil
}
