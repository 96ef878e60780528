package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus represents the review state of a ledger entry.
type EntryStatus string

const (
	StatusAutoConfirmed EntryStatus = "auto-confirmed"
	StatusPendingReview EntryStatus = "pending-review"
)

// Valid reports whether s is a known status.
func (s EntryStatus) Valid() bool {
	return s == StatusAutoConfirmed || s == StatusPendingReview
}

// Expense is a single row in a month's expenses.csv.
type Expense struct {
	EntryID    string // "YYYY-MM-NNN"
	Date       time.Time
	Amount     decimal.Decimal
	Direction  Direction
	Merchant   string
	Category   string
	Confidence int
	Status     EntryStatus
	Source     string
	Method     Method
	RawText    string
}

// Signed returns the amount as negative for debits and positive for credits.
func (e Expense) Signed() decimal.Decimal {
	if e.Direction == DirectionDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
