package normalize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const maxCounterpartyLen = 40

// Number body shared by the amount patterns: Western (1,250) or lakh
// (1,00,000) grouping, or a plain digit run, then up to two decimals.
const numberPattern = `(\d{1,3}(?:,\d{2,3})+|\d+)(\.\d{1,2})?`

var (
	prefixAmountRe = regexp.MustCompile(`(?i)(₹|\bRs\.?|\bINR)[ \t]*` + numberPattern)
	suffixAmountRe = regexp.MustCompile(`(?i)\b` + numberPattern + `[ \t]*(?:rupees?\b|inr\b|rs\b\.?|/-)`)

	monthDateRe = regexp.MustCompile(`(?i)\b\d{1,2}[- ](?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[-, ]+\d{2,4}\b`)
	dateRes     = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`),
		monthDateRe,
	}

	counterpartyRe = regexp.MustCompile(`(?i)\b(?:paid\s+to|sent\s+to|to|from|at)\b[ \t]*:?[ \t]*`)
	// Trailing annotations after a name: "SWIGGY on 13-01-25", "Zomato via UPI".
	annotationRe  = regexp.MustCompile(`(?i)\s+(?:on|via|using|through|ref|txn|upi|for|with|avl|bal|is|was|dated)\b.*$`)
	legalSuffixRe = regexp.MustCompile(`(?i)(?:\s+(?:pvt|ltd|inc|llc|private|limited))+$`)
	trailingNumRe = regexp.MustCompile(`(?:\s+\S*\d\S*)+$`)
	accountRefRe  = regexp.MustCompile(`(?i)^(?:a/?c\b|acct\b|account\b|card\b|your\b|xx|x+\d|self\b|bank\s+account)`)

	upiHandleRe  = regexp.MustCompile(`[A-Za-z0-9._-]+@[A-Za-z][A-Za-z0-9]*`)
	phoneRe      = regexp.MustCompile(`\+\d{2}[ -]?\d{5}[ -]?\d{5}`)
	digitRunRe   = regexp.MustCompile(`\d{6,}`)
	alnumTokenRe = regexp.MustCompile(`\b[A-Za-z0-9]{6,}\b`)
)

// counterpartyStop ends a counterparty name.
const counterpartyStop = "\n\r.,;:!?()[]{}|\"<>"

// Extract scans text for amount, date, counterparty and transaction ID
// candidates, ordered by position. Overlapping candidates of different kinds
// are all kept. Empty or whitespace-only input yields nil.
func Extract(text string) []Candidate {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	amounts := extractAmounts(text)
	var cands []Candidate
	cands = append(cands, amounts...)
	cands = append(cands, extractDates(text, amounts)...)
	cands = append(cands, extractCounterparties(text)...)
	cands = append(cands, extractIDs(text, amounts)...)

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Start < cands[j].Start
	})
	return cands
}

func extractAmounts(text string) []Candidate {
	var out []Candidate
	seen := make(map[int]bool)

	for _, m := range prefixAmountRe.FindAllStringSubmatchIndex(text, -1) {
		c, ok := amountCandidate(text, m, 4, 6, AdjacencyPrefix)
		if !ok {
			continue
		}
		seen[c.Start] = true
		out = append(out, c)
	}
	for _, m := range suffixAmountRe.FindAllStringSubmatchIndex(text, -1) {
		c, ok := amountCandidate(text, m, 2, 4, AdjacencySuffix)
		if !ok || seen[c.Start] {
			continue
		}
		seen[c.Start] = true
		out = append(out, c)
	}
	return out
}

// amountCandidate builds a candidate from a regexp match; intGroup and
// fracGroup are submatch index offsets for the integer and decimal parts.
func amountCandidate(text string, m []int, intGroup, fracGroup int, adj Adjacency) (Candidate, bool) {
	start, end := m[intGroup], m[intGroup+1]
	digits := strings.ReplaceAll(text[start:end], ",", "")
	if m[fracGroup] >= 0 {
		end = m[fracGroup+1]
		digits += text[m[fracGroup]:end]
	}
	amount, err := decimal.NewFromString(digits)
	if err != nil {
		return Candidate{}, false
	}
	return Candidate{
		Kind:       KindAmount,
		Start:      start,
		End:        end,
		Raw:        text[m[0]:m[1]],
		Value:      amount.String(),
		Amount:     amount,
		Adjacency:  adj,
		matchStart: m[0],
		matchEnd:   m[1],
	}, true
}

// extractDates tags date spans. A month-name match starting at a
// currency-prefixed amount ("₹12 Jan 2025") is an amount followed by a date
// word, not a date. Numeric forms ("Rs 12/05/2024") stay dates.
func extractDates(text string, amounts []Candidate) []Candidate {
	prefixed := make(map[int]bool)
	for _, a := range amounts {
		if a.Adjacency == AdjacencyPrefix {
			prefixed[a.Start] = true
		}
	}

	var out []Candidate
	for _, re := range dateRes {
		for _, m := range re.FindAllStringIndex(text, -1) {
			if re == monthDateRe && prefixed[m[0]] {
				continue
			}
			raw := text[m[0]:m[1]]
			out = append(out, Candidate{
				Kind:  KindDate,
				Start: m[0],
				End:   m[1],
				Raw:   raw,
				Value: raw,
			})
		}
	}
	return out
}

func extractCounterparties(text string) []Candidate {
	var out []Candidate
	for _, m := range counterpartyRe.FindAllStringIndex(text, -1) {
		start := m[1]
		end := len(text)
		if i := strings.IndexAny(text[start:], counterpartyStop); i >= 0 {
			end = start + i
		}
		raw := text[start:end]
		name := cleanCounterparty(raw)
		if name == "" {
			continue
		}
		out = append(out, Candidate{
			Kind:  KindCounterparty,
			Start: start,
			End:   start + len(strings.TrimRightFunc(raw, unicode.IsSpace)),
			Raw:   raw,
			Value: name,
		})
	}
	return out
}

// cleanCounterparty trims annotations from a raw name span and returns ""
// when what is left is not a plausible payee.
func cleanCounterparty(raw string) string {
	name := strings.Join(strings.Fields(raw), " ")
	name = annotationRe.ReplaceAllString(name, "")
	name = trailingNumRe.ReplaceAllString(name, "")
	name = legalSuffixRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < 2 {
		return ""
	}
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(first) {
		return ""
	}
	if accountRefRe.MatchString(name) || hasLetterAndDigit(strings.Fields(name)[0]) {
		return ""
	}
	if utf8.RuneCountInString(name) > maxCounterpartyLen {
		name = strings.TrimSpace(string([]rune(name)[:maxCounterpartyLen]))
	}
	return name
}

// extractIDs tags reference-like tokens. Digit runs and tokens that are
// exactly a currency-prefixed amount ("Rs2500", "₹500000") are left alone.
func extractIDs(text string, amounts []Candidate) []Candidate {
	prefixed := make(map[int]bool)
	whole := make(map[[2]int]bool)
	for _, a := range amounts {
		if a.Adjacency == AdjacencyPrefix {
			prefixed[a.Start] = true
		}
		whole[[2]int{a.matchStart, a.matchEnd}] = true
	}

	var out []Candidate
	add := func(s, e int) {
		out = append(out, Candidate{
			Kind:  KindTransactionID,
			Start: s,
			End:   e,
			Raw:   text[s:e],
			Value: text[s:e],
		})
	}

	for _, m := range upiHandleRe.FindAllStringIndex(text, -1) {
		add(m[0], m[1])
	}
	for _, m := range phoneRe.FindAllStringIndex(text, -1) {
		add(m[0], m[1])
	}
	for _, m := range digitRunRe.FindAllStringIndex(text, -1) {
		if prefixed[m[0]] {
			continue
		}
		add(m[0], m[1])
	}
	for _, m := range alnumTokenRe.FindAllStringIndex(text, -1) {
		tok := text[m[0]:m[1]]
		if !hasLetterAndDigit(tok) || whole[[2]int{m[0], m[1]}] {
			continue
		}
		add(m[0], m[1])
	}
	return out
}

func hasLetterAndDigit(s string) bool {
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
