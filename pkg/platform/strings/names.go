// Package strings provides string normalization utilities.
package strings

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// NormalizeName prepares a personal name for comparison: Unicode NFC,
// case folding, trimming and collapsing inner whitespace to single spaces.
//
// Example:
//
//	NormalizeName("  MARÍA   josé ")
//	// Returns: "maría josé"
func NormalizeName(s string) string {
	s = norm.NFC.String(s)
	s = folder.String(s)
	return CollapseSpaces(s)
}

// CollapseSpaces trims s and replaces each run of whitespace with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JoinNonEmpty joins the non-blank parts with single spaces.
func JoinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = CollapseSpaces(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
