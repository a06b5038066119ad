// Package text turns free-form user input into an observation sequence.
package text

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode"

	"statcalc/domain/core"
	"statcalc/domain/dataset"
)

// Parsed is the outcome of a lenient parse
type Parsed struct {
	Values  []float64
	Skipped []string // tokens that were not finite numbers, in input order
}

// Tokenize splits input on commas, semicolons and whitespace, dropping empty tokens.
func Tokenize(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

// ParseLenient keeps every finite number and skips anything else.
// It fails only when nothing numeric remains.
func ParseLenient(input string) (Parsed, error) {
	var out Parsed
	for _, tok := range Tokenize(input) {
		v, ok := parseToken(tok)
		if !ok {
			out.Skipped = append(out.Skipped, tok)
			continue
		}
		out.Values = append(out.Values, v)
	}
	if len(out.Values) == 0 {
		return out, core.ErrNoObservations
	}
	return out, nil
}

// ParseStrict rejects the input at the first token that is not a finite number.
func ParseStrict(input string) ([]float64, error) {
	tokens := Tokenize(input)
	values := make([]float64, 0, len(tokens))
	for i, tok := range tokens {
		v, ok := parseToken(tok)
		if !ok {
			return nil, core.NewObservationError(i, tok, "not a finite number")
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, core.ErrNoObservations
	}
	return values, nil
}

func parseToken(tok string) (float64, bool) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Source adapts pasted text to the observation source port
type Source struct {
	Input  string
	Strict bool
}

func (s Source) Kind() dataset.SourceKind { return dataset.SourceText }
func (s Source) Origin() string           { return "" }

// Load parses the input according to the configured strictness
func (s Source) Load(ctx context.Context) ([]float64, error) {
	if s.Strict {
		return ParseStrict(s.Input)
	}
	parsed, err := ParseLenient(s.Input)
	if err != nil {
		return nil, err
	}
	return parsed.Values, nil
}
