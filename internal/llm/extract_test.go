package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/money-manager/txnparse/internal/model"
)

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestExtract(t *testing.T) {
	gen := &fakeGenerator{reply: `{"amount": 34039, "merchant": "Nisha Sharma", "type": "debit", "confidence": 70}`}
	txn, err := NewExtractor(gen).Extract(context.Background(), "To Nisha Sharma\nCompleted")
	require.NoError(t, err)

	assert.Equal(t, "34039.00", txn.Amount.StringFixed(2))
	assert.Equal(t, "Nisha Sharma", txn.Merchant)
	assert.Equal(t, model.DirectionDebit, txn.Direction)
	assert.Equal(t, 70, txn.Confidence)
	assert.Equal(t, model.MethodLLM, txn.Method)
	assert.True(t, strings.HasSuffix(gen.prompt, "To Nisha Sharma\nCompleted"))
}

func TestExtract_GeneratorError(t *testing.T) {
	boom := errors.New("deadline exceeded")
	_, err := NewExtractor(&fakeGenerator{err: boom}).Extract(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestDecodeReply(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		amount    string
		merchant  string
		direction model.Direction
		conf      int
	}{
		{"plain", `{"amount": 1250, "merchant": "Zomato", "type": "debit", "confidence": 90}`, "1250.00", "Zomato", model.DirectionDebit, 90},
		{"fenced", "```json\n{\"amount\": 99.5, \"merchant\": \"Swiggy\", \"type\": \"credit\", \"confidence\": 80}\n```", "99.50", "Swiggy", model.DirectionCredit, 80},
		{"chatter", `Sure! {"amount": "450", "merchant": "", "type": "income", "confidence": 60} hope that helps`, "450.00", model.UnknownMerchant, model.DirectionCredit, 60},
		{"no type", `{"amount": 10, "merchant": "X Y", "type": "", "confidence": 95}`, "10.00", "X Y", model.DirectionDebit, 50},
		{"clamped", `{"amount": 10, "merchant": "unknown", "type": "expense", "confidence": 250}`, "10.00", model.UnknownMerchant, model.DirectionDebit, 100},
		{"rounded", `{"amount": 10.005, "merchant": "A", "type": "debit", "confidence": 10}`, "10.01", "A", model.DirectionDebit, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := decodeReply(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.amount, txn.Amount.StringFixed(2))
			assert.Equal(t, tt.merchant, txn.Merchant)
			assert.Equal(t, tt.direction, txn.Direction)
			assert.Equal(t, tt.conf, txn.Confidence)
		})
	}
}

func TestDecodeReply_NoTransaction(t *testing.T) {
	for _, raw := range []string{
		`{"amount": null, "merchant": "", "type": "", "confidence": 0}`,
		`{"merchant": "Zomato"}`,
		`{"amount": 0, "merchant": "Zomato", "type": "debit", "confidence": 90}`,
		`{"amount": -5, "merchant": "Zomato", "type": "debit", "confidence": 90}`,
	} {
		_, err := decodeReply(raw)
		assert.ErrorIs(t, err, ErrNoTransaction, "raw: %s", raw)
	}
}

func TestDecodeReply_Malformed(t *testing.T) {
	_, err := decodeReply("I could not find a payment.")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTransaction)
}

func TestCleanModelJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanModelJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanModelJSON("  {\"a\":1}  "))
	assert.Equal(t, `{"a":{"b":2}}`, cleanModelJSON(`result: {"a":{"b":2}} done`))
}
