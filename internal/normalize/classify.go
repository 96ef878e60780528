package normalize

import (
	"github.com/money-manager/txnparse/internal/model"
)

// Confidence scoring.
const (
	confidenceBase         = 60
	confidenceAdjacent     = 15
	confidenceCounterparty = 15
	confidenceUnambiguous  = 10
	confidenceNoPolarity   = 50 // cap when no direction keyword was seen
)

// Classification is the direction and confidence assigned to a selection.
type Classification struct {
	Direction  model.Direction
	Confidence int
}

// Classify determines direction from keyword polarity and scores confidence.
// It is a single pass over the words of text; there is no state carried
// between calls.
func (n *Normalizer) Classify(text string, sel Selection) Classification {
	return n.classify(scanWords(text), sel)
}

func (n *Normalizer) classify(words []word, sel Selection) Classification {
	firstDebit, firstCredit := -1, -1
	for _, w := range words {
		if firstDebit < 0 && n.debit.has(w) {
			firstDebit = w.start
		}
		if firstCredit < 0 && n.credit.has(w) {
			firstCredit = w.start
		}
	}

	dir := model.DirectionDebit
	switch {
	case firstDebit >= 0 && firstCredit >= 0:
		if firstCredit < firstDebit {
			dir = model.DirectionCredit
		}
	case firstCredit >= 0:
		dir = model.DirectionCredit
	}

	conf := confidenceBase
	if sel.Amount.Adjacency != AdjacencyNone {
		conf += confidenceAdjacent
	}
	if sel.Counterparty != nil {
		conf += confidenceCounterparty
	}
	if (firstDebit >= 0) != (firstCredit >= 0) {
		conf += confidenceUnambiguous
	}
	if firstDebit < 0 && firstCredit < 0 {
		conf = min(conf, confidenceNoPolarity)
	}
	return Classification{Direction: dir, Confidence: max(0, min(conf, 100))}
}
