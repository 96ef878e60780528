package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/money-manager/txnparse/internal/model"
)

// FormatText is plain text with one message per blank-line separated block,
// e.g. pasted notifications or OCR dumps.
const FormatText = "text"

// TextParser parses FormatText files.
type TextParser struct{}

// Format returns the parser name.
func (p *TextParser) Format() string { return FormatText }

// Parse splits r into messages on blank lines.
func (p *TextParser) Parse(r io.Reader) ([]model.RawText, error) {
	var (
		raws  []model.RawText
		block []string
	)
	flush := func() {
		if len(block) > 0 {
			raws = append(raws, model.RawText{Text: strings.Join(block, "\n")})
			block = nil
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading text import: %w", err)
	}
	flush()
	return raws, nil
}
