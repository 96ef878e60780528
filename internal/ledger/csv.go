package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/money-manager/txnparse/internal/model"
)

// Header is the CSV header for expenses.csv.
const Header = "entry_id,date,type,amount,merchant,category,confidence,status,source,method,raw_text"

const (
	numFields     = 11
	dateFormat    = "2006-01-02"
	colEntryID    = 0
	colDate       = 1
	colType       = 2
	colAmount     = 3
	colMerchant   = 4
	colCategory   = 5
	colConfidence = 6
	colStatus     = 7
	colSource     = 8
	colMethod     = 9
	colRawText    = 10
)

// ReadExpenses reads all rows from an expenses.csv reader.
func ReadExpenses(r io.Reader) ([]model.Expense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var expenses []model.Expense
	for i, rec := range records[1:] {
		e, err := UnmarshalExpense(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// WriteExpenses writes expenses to an expenses.csv writer (including header).
func WriteExpenses(w io.Writer, expenses []model.Expense) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range expenses {
		if err := cw.Write(MarshalExpense(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendExpenses appends rows to an existing expenses.csv writer (no header).
func AppendExpenses(w io.Writer, expenses []model.Expense) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, e := range expenses {
		if err := cw.Write(MarshalExpense(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalExpense converts an Expense to a CSV row.
func MarshalExpense(e model.Expense) []string {
	row := make([]string, numFields)
	row[colEntryID] = e.EntryID
	row[colDate] = e.Date.Format(dateFormat)
	row[colType] = string(e.Direction)
	row[colAmount] = e.Amount.StringFixed(2)
	row[colMerchant] = e.Merchant
	row[colCategory] = e.Category
	row[colConfidence] = strconv.Itoa(e.Confidence)
	row[colStatus] = string(e.Status)
	row[colSource] = e.Source
	row[colMethod] = string(e.Method)
	row[colRawText] = e.RawText
	return row
}

// UnmarshalExpense converts a CSV row to an Expense.
func UnmarshalExpense(record []string) (model.Expense, error) {
	if len(record) != numFields {
		return model.Expense{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	confidence, err := strconv.Atoi(record[colConfidence])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing confidence %q: %w", record[colConfidence], err)
	}

	return model.Expense{
		EntryID:    record[colEntryID],
		Date:       date,
		Amount:     amount,
		Direction:  model.Direction(record[colType]),
		Merchant:   record[colMerchant],
		Category:   record[colCategory],
		Confidence: confidence,
		Status:     model.EntryStatus(record[colStatus]),
		Source:     record[colSource],
		Method:     model.Method(record[colMethod]),
		RawText:    record[colRawText],
	}, nil
}
