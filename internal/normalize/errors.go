package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// Reason classifies why a parse failed.
type Reason string

const (
	ReasonEmptyInput      Reason = "EmptyInput"
	ReasonNoAmountFound   Reason = "NoAmountFound"
	ReasonAmbiguousAmount Reason = "AmbiguousAmount"
)

// Sentinels for errors.Is checks against a *ParseError.
var (
	ErrEmptyInput      = errors.New("empty input")
	ErrNoAmountFound   = errors.New("no amount found")
	ErrAmbiguousAmount = errors.New("ambiguous amount")
)

// ParseError is returned for every expected parse failure. It carries the
// offending text and, for AmbiguousAmount, the competing amount candidates so
// a caller can offer manual entry.
type ParseError struct {
	Reason     Reason
	Text       string
	Candidates []Candidate
}

func (e *ParseError) Error() string {
	switch e.Reason {
	case ReasonAmbiguousAmount:
		vals := make([]string, len(e.Candidates))
		for i, c := range e.Candidates {
			vals[i] = c.Value
		}
		return fmt.Sprintf("%s: competing amounts %s", ErrAmbiguousAmount, strings.Join(vals, ", "))
	case ReasonNoAmountFound:
		return ErrNoAmountFound.Error()
	default:
		return ErrEmptyInput.Error()
	}
}

// Is matches the sentinel for e's reason.
func (e *ParseError) Is(target error) bool {
	switch e.Reason {
	case ReasonEmptyInput:
		return target == ErrEmptyInput
	case ReasonNoAmountFound:
		return target == ErrNoAmountFound
	case ReasonAmbiguousAmount:
		return target == ErrAmbiguousAmount
	}
	return false
}

// ReasonOf extracts the failure reason from err, if it wraps a *ParseError.
func ReasonOf(err error) (Reason, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Reason, true
	}
	return "", false
}
