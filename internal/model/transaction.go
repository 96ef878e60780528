package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the money flow of a transaction relative to the account holder.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// UnknownMerchant is the merchant name used when no counterparty was found.
const UnknownMerchant = "Unknown"

// Method records which strategy produced a ParsedTransaction.
type Method string

const (
	MethodPattern Method = "pattern"
	MethodLLM     Method = "llm"
)

// RawText is a single message to parse: an SMS body, notification text, or
// OCR output, with whatever metadata the source supplied.
type RawText struct {
	Text       string
	SourceApp  string    // android package name, e.g. "com.phonepe.app"
	Sender     string    // SMS address, if any
	ReceivedAt time.Time // zero when unknown
}

// ParsedTransaction is the structured result of parsing a RawText.
type ParsedTransaction struct {
	Amount     decimal.Decimal `json:"amount"`
	Merchant   string          `json:"merchant"`
	Direction  Direction       `json:"type"`
	Confidence int             `json:"confidence"` // 0..100
	Category   string          `json:"category,omitempty"`
	Source     string          `json:"source,omitempty"`
	Method     Method          `json:"method,omitempty"`
}
