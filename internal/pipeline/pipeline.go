// Package pipeline runs the pattern normalizer with an optional fallback
// strategy, merchant enrichment and batch de-duplication.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/money-manager/txnparse/internal/llm"
	"github.com/money-manager/txnparse/internal/model"
	"github.com/money-manager/txnparse/internal/normalize"
)

// ErrFallbackFailed wraps errors from the fallback strategy.
var ErrFallbackFailed = errors.New("fallback failed")

// Fallback extracts a transaction when the pattern normalizer cannot.
type Fallback interface {
	Extract(ctx context.Context, text string) (model.ParsedTransaction, error)
}

// Catalog canonicalizes merchant names and suggests categories.
type Catalog interface {
	Canonical(name string) string
	SuggestCategory(text, merchant string) string
}

// Options configures a Service. Zero values disable the feature.
type Options struct {
	Fallback      Fallback
	Attempts      int           // fallback attempts, at least 1
	Timeout       time.Duration // per attempt
	Catalog       Catalog
	MinConfidence int // batch results below this are dropped
	Workers       int // batch concurrency, default 4
	Log           zerolog.Logger
}

// Service parses RawTexts.
type Service struct {
	norm *normalize.Normalizer
	opts Options
}

// NewService creates a Service around norm.
func NewService(norm *normalize.Normalizer, opts Options) *Service {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	return &Service{norm: norm, opts: opts}
}

// Parse parses one message. Pattern failures other than EmptyInput go to
// the fallback when one is configured; if the fallback also finds nothing,
// the pattern failure is returned.
func (s *Service) Parse(ctx context.Context, raw model.RawText) (model.ParsedTransaction, error) {
	log := s.opts.Log
	txn, err := s.norm.Parse(raw)
	if err == nil {
		return s.enrich(raw, txn), nil
	}

	reason, _ := normalize.ReasonOf(err)
	log.Debug().Str("reason", string(reason)).Msg("pattern parse failed")
	if s.opts.Fallback == nil || reason == normalize.ReasonEmptyInput {
		return model.ParsedTransaction{}, err
	}

	ftxn, ferr := s.fallback(ctx, raw.Text)
	if ferr != nil {
		if errors.Is(ferr, llm.ErrNoTransaction) {
			return model.ParsedTransaction{}, err
		}
		log.Warn().Err(ferr).Msg("fallback failed")
		return model.ParsedTransaction{}, fmt.Errorf("%w: %w", ErrFallbackFailed, ferr)
	}
	ftxn.Source = normalize.AppLabel(raw.SourceApp)
	log.Debug().Str("merchant", ftxn.Merchant).Int("confidence", ftxn.Confidence).Msg("fallback parsed")
	return s.enrich(raw, ftxn), nil
}

func (s *Service) fallback(ctx context.Context, text string) (model.ParsedTransaction, error) {
	var lastErr error
	for attempt := 1; attempt <= s.opts.Attempts; attempt++ {
		txn, err := s.attempt(ctx, text)
		if err == nil {
			return txn, nil
		}
		lastErr = err
		if errors.Is(err, llm.ErrNoTransaction) || ctx.Err() != nil {
			break
		}
		s.opts.Log.Debug().Err(err).Int("attempt", attempt).Msg("fallback attempt failed")
	}
	return model.ParsedTransaction{}, lastErr
}

func (s *Service) attempt(ctx context.Context, text string) (model.ParsedTransaction, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	txn, err := s.opts.Fallback.Extract(ctx, text)
	if err != nil {
		return model.ParsedTransaction{}, err
	}
	if !txn.Amount.IsPositive() {
		return model.ParsedTransaction{}, llm.ErrNoTransaction
	}
	return txn, nil
}

func (s *Service) enrich(raw model.RawText, txn model.ParsedTransaction) model.ParsedTransaction {
	if s.opts.Catalog == nil {
		return txn
	}
	if txn.Merchant != model.UnknownMerchant {
		txn.Merchant = s.opts.Catalog.Canonical(txn.Merchant)
	}
	txn.Category = s.opts.Catalog.SuggestCategory(raw.Text, txn.Merchant)
	return txn
}
