package namematch

import (
	"fmt"
	"strings"
)

// Result describes how two names relate. Match reports whether the names
// may refer to the same entity; Score ranks competing matches.
type Result struct {
	Match bool
	Exact bool
	Score float64
}

// Matcher compares names after resolving known aliases to one canonical form.
type Matcher struct {
	canonical map[string]string
}

// NewMatcher builds a matcher from canonical name -> alias list.
func NewMatcher(aliases map[string][]string) *Matcher {
	m := &Matcher{canonical: make(map[string]string)}
	for canonical, variants := range aliases {
		m.add(canonical, variants...)
	}
	return m
}

func (m *Matcher) add(canonical string, variants ...string) {
	key := Normalize(canonical)
	if key == "" {
		return
	}
	m.canonical[key] = key
	for _, variant := range variants {
		if v := Normalize(variant); v != "" {
			m.canonical[v] = key
		}
	}
}

// Canonical returns the normalized canonical form of name.
func (m *Matcher) Canonical(name string) string {
	normalized := Normalize(name)
	if m == nil {
		return normalized
	}
	if canonical, ok := m.canonical[normalized]; ok {
		return canonical
	}
	return normalized
}

// Compare matches case-, punctuation- and alias-insensitively. Names also
// match when one is contained in the other, either as a substring of the
// compacted form or as a token subset.
func (m *Matcher) Compare(a, b string) Result {
	ca := m.Canonical(a)
	cb := m.Canonical(b)
	if ca == "" || cb == "" {
		return Result{}
	}
	if ca == cb {
		return Result{Match: true, Exact: true, Score: 1}
	}

	ta := strings.Fields(ca)
	tb := strings.Fields(cb)
	score := Dice(ta, tb)

	compactA := strings.ReplaceAll(ca, " ", "")
	compactB := strings.ReplaceAll(cb, " ", "")
	contained := strings.Contains(compactA, compactB) || strings.Contains(compactB, compactA)
	if contained || subsetOf(ta, tb) || subsetOf(tb, ta) {
		return Result{Match: true, Score: score}
	}
	return Result{Score: score}
}

// ParseAliases reads "Canonical=Alias One|Alias Two;Other=Alias" into the
// form NewMatcher expects.
func ParseAliases(raw string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid alias item %q, expected canonical=alias|alias", item)
		}
		canonical := strings.TrimSpace(parts[0])
		for _, alias := range strings.Split(parts[1], "|") {
			if alias = strings.TrimSpace(alias); alias != "" {
				out[canonical] = append(out[canonical], alias)
			}
		}
	}
	return out, nil
}

// MergeAliases returns base extended with extra. Neither input is modified.
func MergeAliases(base, extra map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base)+len(extra))
	for canonical, variants := range base {
		out[canonical] = append([]string(nil), variants...)
	}
	for canonical, variants := range extra {
		out[canonical] = append(out[canonical], variants...)
	}
	return out
}
