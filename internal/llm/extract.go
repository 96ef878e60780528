package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/money-manager/txnparse/internal/model"
)

// ErrNoTransaction is returned when the model finds no transaction amount.
var ErrNoTransaction = errors.New("model found no transaction")

// Replies without a clear direction are capped like pattern parses without
// polarity keywords.
const noDirectionCap = 50

const maxMerchantLen = 40

const prompt = `Extract the payment from this message. Reply with one JSON object:
{"amount": number or null, "merchant": string, "type": "debit" or "credit", "confidence": integer 0-100}
amount is the money moved, never a balance, reference number, phone number or date.
Use null for amount if the message is not a payment.

Message:
`

// Extractor turns free text into a ParsedTransaction using a Generator.
type Extractor struct {
	gen Generator
}

// NewExtractor wraps gen.
func NewExtractor(gen Generator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract asks the model for the transaction in text.
func (e *Extractor) Extract(ctx context.Context, text string) (model.ParsedTransaction, error) {
	out, err := e.gen.Generate(ctx, prompt+text)
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("llm extract: %w", err)
	}
	txn, err := decodeReply(out)
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("llm extract: %w", err)
	}
	return txn, nil
}

type reply struct {
	Amount     *json.Number `json:"amount"`
	Merchant   string       `json:"merchant"`
	Type       string       `json:"type"`
	Confidence int          `json:"confidence"`
}

func decodeReply(raw string) (model.ParsedTransaction, error) {
	var r reply
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &r); err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("unmarshal reply: %w", err)
	}
	if r.Amount == nil {
		return model.ParsedTransaction{}, ErrNoTransaction
	}
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("parsing amount %q: %w", r.Amount.String(), err)
	}
	if !amount.IsPositive() {
		return model.ParsedTransaction{}, ErrNoTransaction
	}

	conf := min(max(r.Confidence, 0), 100)
	var dir model.Direction
	switch strings.ToLower(strings.TrimSpace(r.Type)) {
	case "debit", "expense":
		dir = model.DirectionDebit
	case "credit", "income":
		dir = model.DirectionCredit
	default:
		dir = model.DirectionDebit
		conf = min(conf, noDirectionCap)
	}

	merchant := strings.Join(strings.Fields(r.Merchant), " ")
	if merchant == "" || strings.EqualFold(merchant, "unknown") || strings.EqualFold(merchant, "null") {
		merchant = model.UnknownMerchant
	}
	if utf8.RuneCountInString(merchant) > maxMerchantLen {
		merchant = strings.TrimSpace(string([]rune(merchant)[:maxMerchantLen]))
	}

	return model.ParsedTransaction{
		Amount:     amount.Round(2),
		Merchant:   merchant,
		Direction:  dir,
		Confidence: conf,
		Method:     model.MethodLLM,
	}, nil
}

// cleanModelJSON strips Markdown fences and any text around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
