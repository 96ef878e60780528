package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/money-manager/txnparse/internal/model"
)

func TestParseBatch(t *testing.T) {
	day := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	raws := []model.RawText{
		{Text: "Rs.2500 debited from A/c XX1234 at SWIGGY on 13-01-25", ReceivedAt: day},
		{Text: "Payment Successful"},
		{Text: "₹499 Netflix subscription", ReceivedAt: day},
		{Text: "Rs 2,500 paid at Swiggy", ReceivedAt: day.Add(2 * time.Hour)},
		{Text: "Rs.2500 debited from A/c XX1234 at SWIGGY on 14-01-25", ReceivedAt: day.AddDate(0, 0, 1)},
	}

	svc := newTestService(Options{MinConfidence: 51, Workers: 2})
	batch, err := svc.ParseBatch(context.Background(), raws)
	require.NoError(t, err)
	require.Len(t, batch.Items, len(raws))

	assert.Equal(t, OutcomeAccepted, batch.Items[0].Outcome)
	assert.Equal(t, OutcomeFailed, batch.Items[1].Outcome)
	assert.Error(t, batch.Items[1].Err)
	assert.Equal(t, OutcomeLowConfidence, batch.Items[2].Outcome)
	assert.Equal(t, OutcomeDuplicate, batch.Items[3].Outcome)
	assert.Equal(t, OutcomeAccepted, batch.Items[4].Outcome)

	assert.Len(t, batch.Accepted(), 2)
	assert.Equal(t, 1, batch.Count(OutcomeDuplicate))
	for i, it := range batch.Items {
		assert.Equal(t, raws[i].Text, it.Raw.Text, "order preserved")
	}
}

func TestParseBatch_Empty(t *testing.T) {
	batch, err := newTestService(Options{}).ParseBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, batch.Items)
	assert.Empty(t, batch.Accepted())
}

func TestParseBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(Options{}).ParseBatch(ctx, []model.RawText{{Text: "Paid ₹10 to Zomato"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDedupeKey(t *testing.T) {
	txn := llmTxn("2500")
	assert.Equal(t, "2500.00||nisha sharma", DedupeKey(model.RawText{}, txn))
	assert.Equal(t, "2500.00|2025-01-13|nisha sharma",
		DedupeKey(model.RawText{ReceivedAt: time.Date(2025, 1, 13, 23, 0, 0, 0, time.UTC)}, txn))
}
