package notification

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// NormalizeTitle lower-cases, trims and collapses inner whitespace.
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// StringSimilarity returns 1 - distance/maxLen over normalized titles, in
// [0, 1]. Two empty strings are identical.
func StringSimilarity(a, b string) float64 {
	a, b = NormalizeTitle(a), NormalizeTitle(b)
	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}
