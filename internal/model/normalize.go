package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics, trims and lower-cases s, so "  Sí " and "si"
// compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// IsAffirmative reports whether a plus-one / attending cell means yes.
func IsAffirmative(raw string) bool {
	switch Normalize(raw) {
	case "si", "yes", "true", "x", "1":
		return true
	}
	return false
}

// IsNegative reports whether a cell explicitly means no.
func IsNegative(raw string) bool {
	switch Normalize(raw) {
	case "no", "false", "0":
		return true
	}
	return false
}
