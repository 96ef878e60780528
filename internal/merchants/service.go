// Package merchants maintains the merchant catalog: canonical names,
// aliases, and the category each merchant's spending falls under.
package merchants

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/money-manager/txnparse/internal/model"
)

// Dir and FileName locate the catalog inside a repo.
const (
	Dir      = "merchants"
	FileName = "catalog.csv"
)

const (
	// Catalog keys shorter than this ("vi", "ola") only match exactly.
	minContainedLen = 4
	// Names shorter than this are never matched by spelling.
	minFuzzyLen = 4
	// Maximum edit distance as a fraction of the longer key.
	maxFuzzyRatio = 0.25
)

type matchKey struct {
	key string
	idx int
}

// Service provides lookup over the merchant catalog.
type Service struct {
	merchants []model.Merchant
	byKey     map[string]int
	keys      []matchKey
}

// NewService creates a Service from a slice of merchants.
func NewService(merchants []model.Merchant) *Service {
	s := &Service{merchants: merchants, byKey: make(map[string]int)}
	for i, m := range merchants {
		for _, k := range append([]string{m.Name}, m.Aliases...) {
			key := foldKey(k)
			if key == "" {
				continue
			}
			if _, dup := s.byKey[key]; dup {
				continue
			}
			s.byKey[key] = i
			s.keys = append(s.keys, matchKey{key: key, idx: i})
		}
	}
	return s
}

// Load reads merchants/catalog.csv from a repo root and returns a Service.
func Load(repoRoot string) (*Service, error) {
	path := filepath.Join(repoRoot, Dir, FileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening merchant catalog: %w", err)
	}
	defer f.Close()

	ms, err := ReadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("reading merchant catalog: %w", err)
	}
	return NewService(ms), nil
}

// Save writes the catalog to merchants/catalog.csv.
func (s *Service) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating merchants dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, FileName))
	if err != nil {
		return fmt.Errorf("creating merchant catalog file: %w", err)
	}
	defer f.Close()

	if err := WriteCatalog(f, s.merchants); err != nil {
		return fmt.Errorf("writing merchant catalog: %w", err)
	}
	return nil
}

// All returns all merchants.
func (s *Service) All() []model.Merchant {
	return s.merchants
}

// Lookup resolves a parsed merchant name to a catalog entry: an exact name
// or alias match, else the longest catalog key of at least minContainedLen
// runes contained in name as whole words.
func (s *Service) Lookup(name string) (model.Merchant, bool) {
	key := foldKey(name)
	if key == "" {
		return model.Merchant{}, false
	}
	if i, ok := s.byKey[key]; ok {
		return s.merchants[i], true
	}

	padded := " " + key + " "
	best, bestLen := -1, 0
	for _, k := range s.keys {
		kLen := utf8.RuneCountInString(k.key)
		if kLen < minContainedLen || kLen <= bestLen {
			continue
		}
		if strings.Contains(padded, " "+k.key+" ") {
			best, bestLen = k.idx, kLen
		}
	}
	if best >= 0 {
		return s.merchants[best], true
	}
	return model.Merchant{}, false
}

// closest returns the catalog entry spelled most like name. It only feeds
// category suggestions.
func (s *Service) closest(name string) (model.Merchant, bool) {
	key := foldKey(name)
	keyLen := utf8.RuneCountInString(key)
	if keyLen < minFuzzyLen {
		return model.Merchant{}, false
	}
	best, bestRatio := -1, maxFuzzyRatio
	for _, k := range s.keys {
		kLen := utf8.RuneCountInString(k.key)
		if kLen < minFuzzyLen {
			continue
		}
		ratio := float64(levenshtein.ComputeDistance(key, k.key)) / float64(max(keyLen, kLen))
		if ratio < bestRatio {
			best, bestRatio = k.idx, ratio
		}
	}
	if best < 0 {
		return model.Merchant{}, false
	}
	return s.merchants[best], true
}

// Canonical returns the catalog spelling of name when name is a catalog
// merchant's own name written differently ("SWIGGY", "Dominos"). Aliases,
// partial matches and other names come back unchanged.
func (s *Service) Canonical(name string) string {
	key := foldKey(name)
	if i, ok := s.byKey[key]; ok && foldKey(s.merchants[i].Name) == key {
		return s.merchants[i].Name
	}
	return name
}

// SuggestCategory picks a category for a transaction: the catalog category
// of a known merchant, else the category whose keywords occur most often in
// the merchant name and message text. Returns OtherCategory when nothing
// matches.
func (s *Service) SuggestCategory(text, merchant string) string {
	if merchant != model.UnknownMerchant {
		m, ok := s.Lookup(merchant)
		if !ok {
			m, ok = s.closest(merchant)
		}
		if ok && m.Category != "" {
			return m.Category
		}
	}

	padded := " " + foldKey(merchant) + " " + foldKey(text) + " "
	best, bestCount := OtherCategory, 0
	for _, ck := range categoryKeywords {
		count := 0
		for _, kw := range ck.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = ck.category, count
		}
	}
	return best
}

// foldKey case-folds s and reduces it to space-separated letter/digit words,
// dropping apostrophes so "Domino's" keys as "dominos".
func foldKey(s string) string {
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	folded := cases.Fold().String(s)
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
