package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/money-manager/txnparse/internal/id"
	"github.com/money-manager/txnparse/internal/model"
)

// Rules checked by ValidateExpenses.
const (
	RuleAmount     = 1 // positive, at most 2 decimal places
	RuleDirection  = 2
	RuleConfidence = 3 // 0..100
	RuleMonth      = 4 // date inside the file's month
	RuleSequence   = 5 // unique, contiguous 1..N
	RuleStatus     = 6
	RuleMerchant   = 7 // non-empty
)

// ValidationError describes a single rule violation.
type ValidationError struct {
	Rule        int
	EntryID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rule %d [%s]: %s", e.Rule, e.EntryID, e.Description)
}

// ValidateExpenses checks every row of one month's ledger.
func ValidateExpenses(expenses []model.Expense, year, month int) []ValidationError {
	var errs []ValidationError
	add := func(rule int, entryID, format string, args ...any) {
		errs = append(errs, ValidationError{Rule: rule, EntryID: entryID, Description: fmt.Sprintf(format, args...)})
	}

	hundred := decimal.NewFromInt(100)
	for _, e := range expenses {
		if !e.Amount.IsPositive() {
			add(RuleAmount, e.EntryID, "amount %s must be positive", e.Amount)
		} else if scaled := e.Amount.Mul(hundred); !scaled.Equal(scaled.Floor()) {
			add(RuleAmount, e.EntryID, "amount %s has more than 2 decimal places", e.Amount)
		}

		if !e.Direction.Valid() {
			add(RuleDirection, e.EntryID, "unknown type %q", e.Direction)
		}

		if e.Confidence < 0 || e.Confidence > 100 {
			add(RuleConfidence, e.EntryID, "confidence %d outside 0..100", e.Confidence)
		}

		if e.Date.Year() != year || int(e.Date.Month()) != month {
			add(RuleMonth, e.EntryID, "date %s not in %04d-%02d", e.Date.Format(dateFormat), year, month)
		}

		if !e.Status.Valid() {
			add(RuleStatus, e.EntryID, "unknown status %q", e.Status)
		}

		if e.Merchant == "" {
			add(RuleMerchant, e.EntryID, "empty merchant")
		}
	}

	seqSeen := make(map[int]bool)
	for _, e := range expenses {
		y, m, seq, err := id.ParseEntryID(e.EntryID)
		if err != nil {
			add(RuleSequence, e.EntryID, "invalid entry ID: %v", err)
			continue
		}
		if y != year || m != month {
			add(RuleSequence, e.EntryID, "entry ID not in %04d-%02d", year, month)
		}
		if seqSeen[seq] {
			add(RuleSequence, e.EntryID, "duplicate sequence %d", seq)
		}
		seqSeen[seq] = true
	}
	for i := 1; i <= len(seqSeen); i++ {
		if !seqSeen[i] {
			add(RuleSequence, fmt.Sprintf("seq %d", i), "missing sequence %d in 1..%d", i, len(seqSeen))
		}
	}

	return errs
}
