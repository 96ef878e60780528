package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/money-manager/txnparse/internal/model"
)

// FormatSMS is an SMS backup exported as CSV.
const FormatSMS = "sms"

// SMSParser parses SMS exports with a header naming at least a "body"
// column; "address", "date" and "source_app" are optional. Dates may be
// RFC 3339, YYYY-MM-DD, or Unix milliseconds as Android stores them.
type SMSParser struct{}

// Format returns the parser name.
func (p *SMSParser) Format() string { return FormatSMS }

// Parse reads an SMS CSV and returns one RawText per non-empty body.
func (p *SMSParser) Parse(r io.Reader) ([]model.RawText, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading SMS CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	bodyCol, ok := cols["body"]
	if !ok {
		return nil, fmt.Errorf("SMS CSV has no body column")
	}
	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var raws []model.RawText
	for i, rec := range records[1:] {
		if bodyCol >= len(rec) || strings.TrimSpace(rec[bodyCol]) == "" {
			continue
		}
		var received time.Time
		if d := field(rec, "date"); d != "" {
			received, err = ParseDate(d)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
		}
		raws = append(raws, model.RawText{
			Text:       rec[bodyCol],
			Sender:     field(rec, "address"),
			SourceApp:  field(rec, "source_app"),
			ReceivedAt: received,
		})
	}
	return raws, nil
}

// ParseDate accepts Unix milliseconds, RFC 3339, or YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: unsupported format", s)
	}
	return t, nil
}
