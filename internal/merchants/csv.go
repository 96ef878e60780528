package merchants

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/money-manager/txnparse/internal/model"
)

const (
	numFields   = 3
	colName     = 0
	colCategory = 1
	colAliases  = 2
)

// aliasSep separates aliases within the aliases column.
const aliasSep = ";"

// ReadCatalog reads catalog.csv.
func ReadCatalog(r io.Reader) ([]model.Merchant, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading catalog CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var merchants []model.Merchant
	for i, rec := range records[1:] {
		m, err := UnmarshalMerchant(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		merchants = append(merchants, m)
	}
	return merchants, nil
}

// WriteCatalog writes catalog.csv.
func WriteCatalog(w io.Writer, merchants []model.Merchant) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"name", "category", "aliases"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, m := range merchants {
		if err := cw.Write(MarshalMerchant(m)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalMerchant converts a Merchant to a CSV row.
func MarshalMerchant(m model.Merchant) []string {
	row := make([]string, numFields)
	row[colName] = m.Name
	row[colCategory] = m.Category
	row[colAliases] = strings.Join(m.Aliases, aliasSep)
	return row
}

// UnmarshalMerchant converts a CSV row to a Merchant.
func UnmarshalMerchant(record []string) (model.Merchant, error) {
	if len(record) != numFields {
		return model.Merchant{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	name := strings.TrimSpace(record[colName])
	if name == "" {
		return model.Merchant{}, fmt.Errorf("empty merchant name")
	}

	var aliases []string
	for _, a := range strings.Split(record[colAliases], aliasSep) {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}

	return model.Merchant{
		Name:     name,
		Category: strings.TrimSpace(record[colCategory]),
		Aliases:  aliases,
	}, nil
}
