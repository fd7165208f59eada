// Package namematch compares team and player names coming from different
// data providers.
package namematch

import (
	"strings"
	"unicode"
)

// Normalize lowercases name, turns punctuation into spaces and collapses
// whitespace. "Busan I'Park" and "busan i park" normalize identically.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingSpace := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if r == '\'' || r == '’' || r == '.' {
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Dice is the Sørensen–Dice coefficient over distinct tokens.
func Dice(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(setA)+len(setB))
}

func subsetOf(small, large []string) bool {
	if len(small) == 0 {
		return false
	}
	set := toSet(large)
	for _, token := range small {
		if _, ok := set[token]; !ok {
			return false
		}
	}
	return true
}

func toSet(tokens []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if token != "" {
			out[token] = struct{}{}
		}
	}
	return out
}
