// Package normalize provides text normalization for case-insensitive matching.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns s case-folded for caseless comparison.
// Unlike strings.ToLower, Unicode case folding handles characters whose
// lowercase mapping differs from their fold (e.g. İ, ß).
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr is within s under Unicode case folding.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// EqualFold reports whether a and b are equal under Unicode case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}
