// Package answer grades typed learner input against an item's expected
// answer.
package answer

import (
	"math/big"
	"regexp"
	"strings"
)

var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+|\d+\s*/\s*\d+)$`)

// Check compares the learner's input against the expected answer.
//
// Normalization rules:
//   - Whitespace is trimmed
//   - Comparison is case-insensitive
//   - When both sides are numeric (integer, decimal or a/b fraction) they are
//     compared by value, so "007" matches "7", "3.50" matches "3.5" and
//     "2/4" matches "0.5"
func Check(expected, given string) bool {
	expected = strings.TrimSpace(expected)
	given = strings.TrimSpace(given)
	if given == "" {
		return expected == ""
	}

	if a, ok := parseNumber(expected); ok {
		if b, ok := parseNumber(given); ok {
			return a.Cmp(b) == 0
		}
	}
	return strings.EqualFold(expected, given)
}

// parseNumber parses s as an exact rational. Zero denominators are rejected.
func parseNumber(s string) (*big.Rat, bool) {
	if !numericPattern.MatchString(s) {
		return nil, false
	}
	num, den, found := strings.Cut(s, "/")
	if !found {
		return new(big.Rat).SetString(s)
	}

	n, ok := new(big.Int).SetString(strings.TrimSpace(num), 10)
	if !ok {
		return nil, false
	}
	d, ok := new(big.Int).SetString(strings.TrimSpace(den), 10)
	if !ok || d.Sign() == 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(n, d), true
}
