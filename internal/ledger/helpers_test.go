package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/money-manager/txnparse/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func txn(amount, merchant string, conf int) model.ParsedTransaction {
	return model.ParsedTransaction{
		Amount:     dec(amount),
		Merchant:   merchant,
		Direction:  model.DirectionDebit,
		Confidence: conf,
		Category:   "Food & Dining",
		Source:     "PhonePe",
		Method:     model.MethodPattern,
	}
}

func expense(entryID string, d time.Time, amount string) model.Expense {
	return model.Expense{
		EntryID:    entryID,
		Date:       d,
		Amount:     dec(amount),
		Direction:  model.DirectionDebit,
		Merchant:   "Zomato",
		Confidence: 90,
		Status:     model.StatusAutoConfirmed,
		Method:     model.MethodPattern,
	}
}
