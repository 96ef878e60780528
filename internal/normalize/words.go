package normalize

import (
	"regexp"

	"golang.org/x/text/cases"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// word is a case-folded token with its byte span in the original text.
type word struct {
	folded     string
	start, end int
}

func scanWords(text string) []word {
	fold := cases.Fold()
	locs := wordRe.FindAllStringIndex(text, -1)
	words := make([]word, len(locs))
	for i, loc := range locs {
		words[i] = word{folded: fold.String(text[loc[0]:loc[1]]), start: loc[0], end: loc[1]}
	}
	return words
}

// keywordSet holds case-folded whole-word keywords.
type keywordSet map[string]struct{}

func newKeywordSet(lists ...[]string) keywordSet {
	fold := cases.Fold()
	set := make(keywordSet)
	for _, list := range lists {
		for _, k := range list {
			set[fold.String(k)] = struct{}{}
		}
	}
	return set
}

func (s keywordSet) has(w word) bool {
	_, ok := s[w.folded]
	return ok
}
