package normalize

import (
	"sort"
)

// Amount scoring weights.
const (
	weightPrefix   = 10.0
	weightSuffix   = 8.0
	weightKeyword  = 4.0
	penaltyBalance = 6.0
	weightPosition = 2.0

	keywordWindow = 30 // bytes either side of the amount
	balanceWindow = 20 // bytes before the amount
)

// Selection is the outcome of disambiguation: one amount and, when a
// plausible payee was found, one counterparty.
type Selection struct {
	Amount       Candidate
	Counterparty *Candidate
}

type scoredAmount struct {
	Candidate
	score float64
}

// Disambiguate picks the amount and counterparty from extracted candidates.
func (n *Normalizer) Disambiguate(text string, cands []Candidate) (Selection, error) {
	return n.disambiguate(text, scanWords(text), cands)
}

func (n *Normalizer) disambiguate(text string, words []word, cands []Candidate) (Selection, error) {
	var excluders []Candidate
	for _, c := range cands {
		if c.Kind == KindTransactionID || c.Kind == KindDate {
			excluders = append(excluders, c)
		}
	}

	var survivors []scoredAmount
	for _, c := range cands {
		if c.Kind != KindAmount || !c.Amount.IsPositive() || excluded(c, excluders) {
			continue
		}
		survivors = append(survivors, scoredAmount{Candidate: c, score: n.scoreAmount(text, words, c)})
	}
	if len(survivors) == 0 {
		return Selection{}, &ParseError{Reason: ReasonNoAmountFound, Text: text}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		if survivors[i].score != survivors[j].score {
			return survivors[i].score > survivors[j].score
		}
		return survivors[i].Start < survivors[j].Start
	})

	best := survivors[0]
	competing := []Candidate{best.Candidate}
	for _, s := range survivors[1:] {
		if !s.Amount.Equal(best.Amount) && best.score-s.score < n.margin {
			competing = append(competing, s.Candidate)
		}
	}
	if len(competing) > 1 {
		return Selection{}, &ParseError{Reason: ReasonAmbiguousAmount, Text: text, Candidates: competing}
	}

	sel := Selection{Amount: best.Candidate}
	for _, c := range cands {
		if c.Kind == KindCounterparty {
			cp := c
			sel.Counterparty = &cp
			break
		}
	}
	return sel, nil
}

func excluded(c Candidate, excluders []Candidate) bool {
	for _, x := range excluders {
		if c.within(x) {
			return true
		}
	}
	return false
}

func (n *Normalizer) scoreAmount(text string, words []word, c Candidate) float64 {
	var score float64
	switch c.Adjacency {
	case AdjacencyPrefix:
		score += weightPrefix
	case AdjacencySuffix:
		score += weightSuffix
	}

	nearKeyword, afterBalance := false, false
	for _, w := range words {
		if w.end <= c.matchStart {
			gap := c.matchStart - w.end
			if gap <= keywordWindow && n.context.has(w) {
				nearKeyword = true
			}
			if gap <= balanceWindow && n.balance.has(w) {
				afterBalance = true
			}
		} else if w.start >= c.matchEnd && w.start-c.matchEnd <= keywordWindow && n.context.has(w) {
			nearKeyword = true
		}
	}
	if nearKeyword {
		score += weightKeyword
	}
	if afterBalance {
		score -= penaltyBalance
	}

	if len(text) > 0 {
		score += weightPosition * (1 - float64(c.Start)/float64(len(text)))
	}
	return score
}
