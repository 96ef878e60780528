package pipeline

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/money-manager/txnparse/internal/model"
)

// Outcome is what happened to one message of a batch.
type Outcome string

const (
	OutcomeAccepted      Outcome = "accepted"
	OutcomeFailed        Outcome = "failed"
	OutcomeLowConfidence Outcome = "low-confidence"
	OutcomeDuplicate     Outcome = "duplicate"
)

// Item is the result for one message, in input order.
type Item struct {
	Raw     model.RawText
	Txn     model.ParsedTransaction
	Err     error
	Outcome Outcome
}

// Batch holds the results of ParseBatch.
type Batch struct {
	Items []Item
}

// Accepted returns the items that passed every filter.
func (b Batch) Accepted() []Item {
	var out []Item
	for _, it := range b.Items {
		if it.Outcome == OutcomeAccepted {
			out = append(out, it)
		}
	}
	return out
}

// Count returns the number of items with outcome o.
func (b Batch) Count(o Outcome) int {
	n := 0
	for _, it := range b.Items {
		if it.Outcome == o {
			n++
		}
	}
	return n
}

// ParseBatch parses raws concurrently, then drops failures, results below
// the minimum confidence, and repeats of an earlier amount, date and
// merchant. It returns an error only if ctx is done.
func (s *Service) ParseBatch(ctx context.Context, raws []model.RawText) (Batch, error) {
	items := make([]Item, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, raw := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			txn, err := s.Parse(gctx, raw)
			items[i] = Item{Raw: raw, Txn: txn, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}

	seen := make(map[string]bool)
	for i := range items {
		it := &items[i]
		switch {
		case it.Err != nil:
			it.Outcome = OutcomeFailed
		case it.Txn.Confidence < s.opts.MinConfidence:
			it.Outcome = OutcomeLowConfidence
		default:
			key := DedupeKey(it.Raw, it.Txn)
			if seen[key] {
				it.Outcome = OutcomeDuplicate
				continue
			}
			seen[key] = true
			it.Outcome = OutcomeAccepted
		}
	}

	s.opts.Log.Info().
		Int("total", len(items)).
		Int("accepted", Batch{items}.Count(OutcomeAccepted)).
		Msg("batch parsed")
	return Batch{Items: items}, nil
}

// DedupeKey identifies a transaction by amount, day received and merchant.
func DedupeKey(raw model.RawText, txn model.ParsedTransaction) string {
	day := ""
	if !raw.ReceivedAt.IsZero() {
		day = raw.ReceivedAt.Format("2006-01-02")
	}
	return txn.Amount.StringFixed(2) + "|" + day + "|" + strings.ToLower(txn.Merchant)
}
