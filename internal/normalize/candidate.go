package normalize

import (
	"github.com/shopspring/decimal"
)

// Kind tags what a Candidate was recognized as.
type Kind string

const (
	KindAmount        Kind = "amount"
	KindDate          Kind = "date"
	KindCounterparty  Kind = "counterparty"
	KindTransactionID Kind = "transactionId"
)

// Adjacency describes where the currency marker sits relative to an amount.
type Adjacency string

const (
	AdjacencyNone   Adjacency = ""
	AdjacencyPrefix Adjacency = "prefix" // ₹1,250  Rs. 500  INR 1,999
	AdjacencySuffix Adjacency = "suffix" // 500 rupees  1,00,000/-
)

// Candidate is a span of the input provisionally identified during extraction.
// Start and End are byte offsets into the input; for amounts they cover the
// number only, not the currency marker.
type Candidate struct {
	Kind      Kind            `json:"kind"`
	Start     int             `json:"start"`
	End       int             `json:"end"`
	Raw       string          `json:"raw"`
	Value     string          `json:"value"`
	Amount    decimal.Decimal `json:"-"`
	Adjacency Adjacency       `json:"adjacency,omitempty"`

	// matchStart/matchEnd cover the whole amount match including the marker.
	matchStart int
	matchEnd   int
}

// within reports whether c lies entirely inside other.
func (c Candidate) within(other Candidate) bool {
	return other.Start <= c.Start && c.End <= other.End
}
