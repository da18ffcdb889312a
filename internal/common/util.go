package common

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// WipeByteArray overwrites the contents of b with zeros. Used for passwords
// read from the terminal. Nil-safe.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// FoldName returns the caseless, NFC-normalized form of s, suitable for
// comparing member names such as "JOÃO" and "joão".
func FoldName(s string) string {
	// cases.Caser is stateful, a fresh one per call keeps this goroutine-safe.
	return cases.Fold().String(norm.NFC.String(s))
}

// EqualFoldName reports whether a and b name the same person, ignoring case
// and surrounding whitespace.
func EqualFoldName(a, b string) bool {
	return FoldName(strings.TrimSpace(a)) == FoldName(strings.TrimSpace(b))
}

// ContainsFoldName reports whether sub occurs in s, ignoring case.
// An empty sub matches everything.
func ContainsFoldName(s, sub string) bool {
	if sub == "" {
		return true
	}
	return strings.Contains(FoldName(s), FoldName(sub))
}
