// Package normalize turns free-text payment messages (bank SMS, UPI app
// notifications, OCR'd screenshots) into structured transactions.
//
// Parsing runs three pure stages: Extract finds tagged candidate spans,
// Disambiguate picks one amount and at most one counterparty, and Classify
// assigns a direction and confidence. A Normalizer holds only immutable
// keyword tables and is safe for concurrent use.
package normalize

import (
	"strings"

	"github.com/money-manager/txnparse/internal/model"
)

// DefaultAmbiguityMargin is the score gap under which two different amounts
// are considered ambiguous.
const DefaultAmbiguityMargin = 1.0

// Config tunes the keyword tables and ambiguity margin.
type Config struct {
	DebitKeywords   []string
	CreditKeywords  []string
	AmbiguityMargin float64
}

// DefaultConfig returns the built-in keyword tables.
func DefaultConfig() Config {
	return Config{
		DebitKeywords:   []string{"paid", "sent", "debited", "spent", "withdrawn", "purchase"},
		CreditKeywords:  []string{"received", "credited", "refund", "refunded", "cashback", "deposited"},
		AmbiguityMargin: DefaultAmbiguityMargin,
	}
}

// Words that mark an amount as the transaction amount rather than metadata.
var contextKeywords = []string{"amount", "amt", "payment", "txn", "transaction", "debit", "credit"}

// Words that precede balances and limits, not transaction amounts.
var balanceKeywords = []string{"bal", "balance", "available", "avl", "avbl", "limit"}

// Normalizer parses RawText into ParsedTransactions.
type Normalizer struct {
	debit   keywordSet
	credit  keywordSet
	context keywordSet
	balance keywordSet
	margin  float64
}

// New builds a Normalizer. Empty keyword lists fall back to the defaults.
func New(cfg Config) *Normalizer {
	def := DefaultConfig()
	if len(cfg.DebitKeywords) == 0 {
		cfg.DebitKeywords = def.DebitKeywords
	}
	if len(cfg.CreditKeywords) == 0 {
		cfg.CreditKeywords = def.CreditKeywords
	}
	if cfg.AmbiguityMargin <= 0 {
		cfg.AmbiguityMargin = def.AmbiguityMargin
	}
	return &Normalizer{
		debit:   newKeywordSet(cfg.DebitKeywords),
		credit:  newKeywordSet(cfg.CreditKeywords),
		context: newKeywordSet(cfg.DebitKeywords, cfg.CreditKeywords, contextKeywords),
		balance: newKeywordSet(balanceKeywords),
		margin:  cfg.AmbiguityMargin,
	}
}

var defaultNormalizer = New(DefaultConfig())

// Options carries optional metadata for Parse.
type Options struct {
	SourceApp string
}

// Parse parses text with the default keyword tables.
func Parse(text string, opts Options) (model.ParsedTransaction, error) {
	return defaultNormalizer.Parse(model.RawText{Text: text, SourceApp: opts.SourceApp})
}

// Parse extracts, disambiguates and classifies raw.Text. Failures are always
// a *ParseError.
func (n *Normalizer) Parse(raw model.RawText) (model.ParsedTransaction, error) {
	text := raw.Text
	if strings.TrimSpace(text) == "" {
		return model.ParsedTransaction{}, &ParseError{Reason: ReasonEmptyInput, Text: text}
	}

	cands := Extract(text)
	words := scanWords(text)

	sel, err := n.disambiguate(text, words, cands)
	if err != nil {
		return model.ParsedTransaction{}, err
	}
	cls := n.classify(words, sel)

	merchant := model.UnknownMerchant
	if sel.Counterparty != nil {
		merchant = sel.Counterparty.Value
	}

	return model.ParsedTransaction{
		Amount:     sel.Amount.Amount,
		Merchant:   merchant,
		Direction:  cls.Direction,
		Confidence: cls.Confidence,
		Source:     AppLabel(raw.SourceApp),
		Method:     model.MethodPattern,
	}, nil
}
