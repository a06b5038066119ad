package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ConfidenceLevel is one of the tabulated levels, keyed the way users pick them ("0.95").
type ConfidenceLevel string

const (
	Level90 ConfidenceLevel = "0.90"
	Level95 ConfidenceLevel = "0.95"
	Level99 ConfidenceLevel = "0.99"

	// DefaultLevel replaces any level the tables do not know.
	DefaultLevel = Level95
)

var levels = []ConfidenceLevel{Level90, Level95, Level99}

// Levels returns the supported levels in ascending order.
func Levels() []ConfidenceLevel {
	out := make([]ConfidenceLevel, len(levels))
	copy(out, levels)
	return out
}

// Valid reports whether the level is one of the tabulated keys.
func (l ConfidenceLevel) Valid() bool {
	switch l {
	case Level90, Level95, Level99:
		return true
	}
	return false
}

// Float returns the level as a probability. Unknown levels report the default.
func (l ConfidenceLevel) Float() float64 {
	switch NormalizeLevel(l) {
	case Level90:
		return 0.90
	case Level99:
		return 0.99
	default:
		return 0.95
	}
}

func (l ConfidenceLevel) String() string {
	return string(l)
}

// NormalizeLevel maps unrecognised keys to DefaultLevel.
// The lookup tables never fail on a bad level; this is the single place that leniency lives.
func NormalizeLevel(l ConfidenceLevel) ConfidenceLevel {
	if l.Valid() {
		return l
	}
	return DefaultLevel
}

// ParseLevel is the strict counterpart of NormalizeLevel for input surfaces.
// It accepts "0.95", "0.9", "95" and "95%" style spellings and rejects anything
// that is not a tabulated level.
func ParseLevel(s string) (ConfidenceLevel, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return "", fmt.Errorf("%w: empty value", ErrUnknownLevel)
	}
	if l := ConfidenceLevel(raw); l.Valid() {
		return l, nil
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
	if v > 1 {
		v /= 100
	}
	for _, l := range levels {
		if math.Abs(l.Float()-v) < 1e-9 {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: 0.90, 0.95, 0.99)", ErrUnknownLevel, s)
}
