package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/money-manager/txnparse/internal/llm"
	"github.com/money-manager/txnparse/internal/merchants"
	"github.com/money-manager/txnparse/internal/model"
	"github.com/money-manager/txnparse/internal/normalize"
)

type fakeFallback struct {
	txn   model.ParsedTransaction
	errs  []error // returned in order, then nil
	calls atomic.Int32
	block bool
}

func (f *fakeFallback) Extract(ctx context.Context, _ string) (model.ParsedTransaction, error) {
	n := int(f.calls.Add(1))
	if f.block {
		<-ctx.Done()
		return model.ParsedTransaction{}, ctx.Err()
	}
	if n <= len(f.errs) {
		return model.ParsedTransaction{}, f.errs[n-1]
	}
	return f.txn, nil
}

func llmTxn(amount string) model.ParsedTransaction {
	return model.ParsedTransaction{
		Amount:     decimal.RequireFromString(amount),
		Merchant:   "Nisha Sharma",
		Direction:  model.DirectionDebit,
		Confidence: 70,
		Method:     model.MethodLLM,
	}
}

func newTestService(opts Options) *Service {
	return NewService(normalize.New(normalize.DefaultConfig()), opts)
}

func TestParse_PatternSuccess(t *testing.T) {
	fb := &fakeFallback{txn: llmTxn("1")}
	svc := newTestService(Options{Fallback: fb, Catalog: merchants.NewService(merchants.DefaultCatalog())})

	txn, err := svc.Parse(context.Background(), model.RawText{Text: "Paid ₹1,250 to ZOMATO", SourceApp: "com.phonepe.app"})
	require.NoError(t, err)
	assert.Equal(t, "Zomato", txn.Merchant)
	assert.Equal(t, "Food & Dining", txn.Category)
	assert.Equal(t, "PhonePe", txn.Source)
	assert.Equal(t, model.MethodPattern, txn.Method)
	assert.Zero(t, fb.calls.Load())
}

func TestParse_CatalogKeepsPayeeNames(t *testing.T) {
	svc := newTestService(Options{Catalog: merchants.NewService(merchants.DefaultCatalog())})

	tests := []struct {
		text     string
		merchant string
		category string
	}{
		{"Paid ₹200 to Vi Nguyen", "Vi Nguyen", ""},
		{"Paid ₹200 to Ola Electric", "Ola Electric", ""},
		{"Paid ₹200 to Mantra", "Mantra", ""},
		{"Refund received ₹350\nFrom: Amazon Pay", "Amazon Pay", "Shopping"},
		{"Paid ₹200 to SWIGGY", "Swiggy", "Food & Dining"},
	}
	for _, tt := range tests {
		txn, err := svc.Parse(context.Background(), model.RawText{Text: tt.text})
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.merchant, txn.Merchant, tt.text)
		if tt.category != "" {
			assert.Equal(t, tt.category, txn.Category, tt.text)
		}
	}
}

func TestParse_UnknownMerchantKeepsName(t *testing.T) {
	svc := newTestService(Options{Catalog: merchants.NewService(merchants.DefaultCatalog())})

	txn, err := svc.Parse(context.Background(), model.RawText{Text: "₹499 debited, Avl Bal ₹9,000"})
	require.NoError(t, err)
	assert.Equal(t, model.UnknownMerchant, txn.Merchant)
	assert.Equal(t, merchants.OtherCategory, txn.Category)
}

func TestParse_NoFallback(t *testing.T) {
	svc := newTestService(Options{})
	_, err := svc.Parse(context.Background(), model.RawText{Text: "To Nisha Sharma\nCompleted"})
	assert.ErrorIs(t, err, normalize.ErrNoAmountFound)
}

func TestParse_FallbackOnNoAmount(t *testing.T) {
	fb := &fakeFallback{txn: llmTxn("34039")}
	svc := newTestService(Options{Fallback: fb})

	txn, err := svc.Parse(context.Background(), model.RawText{Text: "To Nisha Sharma\nCompleted", SourceApp: "com.google.android.apps.nbu.paisa.user"})
	require.NoError(t, err)
	assert.Equal(t, "34039.00", txn.Amount.StringFixed(2))
	assert.Equal(t, model.MethodLLM, txn.Method)
	assert.Equal(t, "Google Pay", txn.Source)
	assert.EqualValues(t, 1, fb.calls.Load())
}

func TestParse_FallbackOnAmbiguous(t *testing.T) {
	fb := &fakeFallback{txn: llmTxn("100")}
	svc := newTestService(Options{Fallback: fb})

	txn, err := svc.Parse(context.Background(), model.RawText{Text: "Paid ₹100 and ₹200 to Rahul"})
	require.NoError(t, err)
	assert.Equal(t, model.MethodLLM, txn.Method)
}

func TestParse_NoFallbackOnEmptyInput(t *testing.T) {
	fb := &fakeFallback{txn: llmTxn("1")}
	svc := newTestService(Options{Fallback: fb})

	_, err := svc.Parse(context.Background(), model.RawText{Text: "  "})
	assert.ErrorIs(t, err, normalize.ErrEmptyInput)
	assert.Zero(t, fb.calls.Load())
}

func TestParse_FallbackRetries(t *testing.T) {
	fb := &fakeFallback{txn: llmTxn("10"), errs: []error{errors.New("503")}}
	svc := newTestService(Options{Fallback: fb, Attempts: 2})

	txn, err := svc.Parse(context.Background(), model.RawText{Text: "Completed"})
	require.NoError(t, err)
	assert.Equal(t, "10.00", txn.Amount.StringFixed(2))
	assert.EqualValues(t, 2, fb.calls.Load())
}

func TestParse_FallbackExhausted(t *testing.T) {
	boom := errors.New("503")
	fb := &fakeFallback{errs: []error{boom, boom, boom}}
	svc := newTestService(Options{Fallback: fb, Attempts: 2})

	_, err := svc.Parse(context.Background(), model.RawText{Text: "Completed"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFallbackFailed)
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 2, fb.calls.Load())
}

func TestParse_FallbackFindsNothing(t *testing.T) {
	fb := &fakeFallback{errs: []error{llm.ErrNoTransaction}}
	svc := newTestService(Options{Fallback: fb, Attempts: 3})

	_, err := svc.Parse(context.Background(), model.RawText{Text: "Completed"})
	assert.ErrorIs(t, err, normalize.ErrNoAmountFound)
	assert.NotErrorIs(t, err, ErrFallbackFailed)
	assert.EqualValues(t, 1, fb.calls.Load())
}

func TestParse_FallbackZeroAmount(t *testing.T) {
	fb := &fakeFallback{txn: llmTxn("0")}
	svc := newTestService(Options{Fallback: fb, Attempts: 2})

	_, err := svc.Parse(context.Background(), model.RawText{Text: "Completed"})
	assert.ErrorIs(t, err, normalize.ErrNoAmountFound)
	assert.EqualValues(t, 1, fb.calls.Load())
}

func TestParse_FallbackTimeout(t *testing.T) {
	fb := &fakeFallback{block: true}
	svc := newTestService(Options{Fallback: fb, Attempts: 2, Timeout: 10 * time.Millisecond})

	_, err := svc.Parse(context.Background(), model.RawText{Text: "Completed"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFallbackFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.EqualValues(t, 2, fb.calls.Load())
}
