// Package ledger stores parsed transactions as month-partitioned CSV files
// (YYYY/MM/expenses.csv) under a repo root.
package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/money-manager/txnparse/internal/id"
	"github.com/money-manager/txnparse/internal/model"
)

// FileName is the per-month ledger file.
const FileName = "expenses.csv"

// ErrDuplicate is returned by Record when the month already holds an entry
// with the same day, type, amount and merchant.
var ErrDuplicate = errors.New("duplicate expense")

// Service appends to and reads the ledger. Writes are serialized.
type Service struct {
	repoRoot    string
	autoConfirm int
	now         func() time.Time

	mu sync.Mutex
}

// NewService creates a ledger Service. Entries with confidence at or above
// autoConfirm are recorded as auto-confirmed, the rest as pending-review.
func NewService(repoRoot string, autoConfirm int) *Service {
	return &Service{repoRoot: repoRoot, autoConfirm: autoConfirm, now: time.Now}
}

// Record appends a parsed transaction to the month it happened in. The date
// is raw.ReceivedAt, or today when unknown.
func (s *Service) Record(txn model.ParsedTransaction, raw model.RawText) (model.Expense, error) {
	date := raw.ReceivedAt
	if date.IsZero() {
		date = s.now()
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	status := model.StatusPendingReview
	if txn.Confidence >= s.autoConfirm {
		status = model.StatusAutoConfirmed
	}

	e := model.Expense{
		Date:       date,
		Amount:     txn.Amount,
		Direction:  txn.Direction,
		Merchant:   txn.Merchant,
		Category:   txn.Category,
		Confidence: txn.Confidence,
		Status:     status,
		Source:     txn.Source,
		Method:     txn.Method,
		RawText:    raw.Text,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	year, month := date.Year(), int(date.Month())
	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return model.Expense{}, err
	}
	for _, prev := range existing {
		if sameExpense(prev, e) {
			return prev, fmt.Errorf("%w: %s", ErrDuplicate, prev.EntryID)
		}
	}

	ids := make([]string, len(existing))
	for i, prev := range existing {
		ids[i] = prev.EntryID
	}
	e.EntryID = id.FormatEntryID(year, month, id.NextSeq(ids))

	all := append(existing, e)
	if verrs := ValidateExpenses(all, year, month); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return model.Expense{}, fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	if err := s.appendMonth(year, month, e); err != nil {
		return model.Expense{}, err
	}
	return e, nil
}

func (s *Service) appendMonth(year, month int, e model.Expense) error {
	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendExpenses(f, []model.Expense{e}); err != nil {
		return fmt.Errorf("appending expense: %w", err)
	}
	return nil
}

// ReadMonth reads all entries for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.Expense, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	expenses, err := ReadExpenses(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return expenses, nil
}

// Month identifies one ledger file.
type Month struct {
	Year, Month int
}

// Months lists the months that have a ledger file, oldest first.
func (s *Service) Months() ([]Month, error) {
	matches, err := filepath.Glob(filepath.Join(s.repoRoot, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", FileName))
	if err != nil {
		return nil, fmt.Errorf("listing ledger months: %w", err)
	}
	var months []Month
	for _, m := range matches {
		rel, err := filepath.Rel(s.repoRoot, m)
		if err != nil {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		y, errY := strconv.Atoi(parts[0])
		mo, errM := strconv.Atoi(parts[1])
		if errY != nil || errM != nil || mo < 1 || mo > 12 {
			continue
		}
		months = append(months, Month{Year: y, Month: mo})
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})
	return months, nil
}

// Validate checks every month in the ledger.
func (s *Service) Validate() ([]ValidationError, error) {
	months, err := s.Months()
	if err != nil {
		return nil, err
	}
	var all []ValidationError
	for _, m := range months {
		expenses, err := s.ReadMonth(m.Year, m.Month)
		if err != nil {
			return nil, err
		}
		all = append(all, ValidateExpenses(expenses, m.Year, m.Month)...)
	}
	return all, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.repoRoot, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), FileName)
}

func sameExpense(a, b model.Expense) bool {
	return a.Date.Equal(b.Date) &&
		a.Direction == b.Direction &&
		a.Amount.Equal(b.Amount) &&
		strings.EqualFold(a.Merchant, b.Merchant)
}
