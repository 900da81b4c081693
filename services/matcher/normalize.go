package matcher

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// stopWords are ignored when comparing titles token-by-token. They carry no
// identifying signal and would otherwise inflate overlap between unrelated
// titles.
var stopWords = map[string]struct{}{
	"the": {},
	"a":   {},
	"an":  {},
	"of":  {},
	"and": {},
	"in":  {},
	"to":  {},
	"for": {},
	"on":  {},
	"is":  {},
	"at":  {},
}

// NormalizeTitle reduces a display title to its comparison form:
// transliterated to ASCII, lowercased, punctuation stripped, whitespace
// collapsed. "Amélie" and "AMELIE!" normalize identically.
func NormalizeTitle(title string) string {
	ascii := unidecode.Unidecode(title)
	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range strings.ToLower(ascii) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// significantTokens splits a normalized title into its identifying words,
// dropping stop words. When every token is a stop word (titles like "The
// One") the full token list is returned instead so the title still has an
// identity to compare.
func significantTokens(normalized string) []string {
	tokens := strings.Fields(normalized)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, skip := stopWords[tok]; skip {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return tokens
	}
	return kept
}

// tokenOverlap computes the fraction of the shorter token list that also
// appears in the longer one. Both inputs are significant-token lists.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shorter, longer := a, b
	if len(b) < len(a) {
		shorter, longer = b, a
	}
	longerSet := make(map[string]struct{}, len(longer))
	for _, tok := range longer {
		longerSet[tok] = struct{}{}
	}
	var shared int
	for _, tok := range shorter {
		if _, ok := longerSet[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(shorter))
}
