// Package parselog keeps an append-only CSV audit of parse attempts in
// logs/parse-log.csv.
package parselog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/money-manager/txnparse/internal/model"
	"github.com/money-manager/txnparse/internal/normalize"
)

// OutcomeParsed marks a successful parse. Failures record the failure
// reason, or OutcomeError for anything that is not a parse failure.
const (
	OutcomeParsed = "parsed"
	OutcomeError  = "error"
)

// Entry is one row in the parse log.
type Entry struct {
	Timestamp  time.Time
	RequestID  string
	Source     string
	Outcome    string
	Amount     string
	Merchant   string
	Confidence int
	Method     model.Method
	EntryID    string
}

// Header is the CSV header for parse-log.csv.
const Header = "timestamp,request_id,source,outcome,amount,merchant,confidence,method,entry_id"

const (
	numFields     = 9
	logDir        = "logs"
	logFile       = "logs/parse-log.csv"
	colTimestamp  = 0
	colRequestID  = 1
	colSource     = 2
	colOutcome    = 3
	colAmount     = 4
	colMerchant   = 5
	colConfidence = 6
	colMethod     = 7
	colEntryID    = 8
)

// NewEntry builds an Entry from the result of one parse.
func NewEntry(requestID, source string, txn model.ParsedTransaction, err error) Entry {
	e := Entry{
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
		Source:    source,
	}
	if err != nil {
		e.Outcome = OutcomeError
		if reason, ok := normalize.ReasonOf(err); ok {
			e.Outcome = string(reason)
		}
		return e
	}
	e.Outcome = OutcomeParsed
	e.Amount = txn.Amount.StringFixed(2)
	e.Merchant = txn.Merchant
	e.Confidence = txn.Confidence
	e.Method = txn.Method
	return e
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRequestID] = e.RequestID
	row[colSource] = e.Source
	row[colOutcome] = e.Outcome
	row[colAmount] = e.Amount
	row[colMerchant] = e.Merchant
	if e.Outcome == OutcomeParsed {
		row[colConfidence] = strconv.Itoa(e.Confidence)
	}
	row[colMethod] = string(e.Method)
	row[colEntryID] = e.EntryID
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var conf int
	if record[colConfidence] != "" {
		conf, err = strconv.Atoi(record[colConfidence])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing confidence %q: %w", record[colConfidence], err)
		}
	}

	return Entry{
		Timestamp:  ts,
		RequestID:  record[colRequestID],
		Source:     record[colSource],
		Outcome:    record[colOutcome],
		Amount:     record[colAmount],
		Merchant:   record[colMerchant],
		Confidence: conf,
		Method:     model.Method(record[colMethod]),
		EntryID:    record[colEntryID],
	}, nil
}

// Log appends to a repo's parse log. It is safe for concurrent use.
type Log struct {
	repoRoot string
	mu       sync.Mutex
}

// New returns the parse log under repoRoot.
func New(repoRoot string) *Log {
	return &Log{repoRoot: repoRoot}
}

// Append writes entries, creating the file and header if needed.
func (l *Log) Append(entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Join(l.repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(l.repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening parse log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries. A missing file yields no entries.
func (l *Log) Read() ([]Entry, error) {
	path := filepath.Join(l.repoRoot, logFile)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening parse log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading parse log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
