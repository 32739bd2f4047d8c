// Package textnorm normalizes the free-form text the registration core
// receives from spreadsheets and forms: accented names, license plates and
// date/time strings in several local formats.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the accent-insensitive canonical form of s: combining marks
// stripped, lowercased, surrounding whitespace removed. Two strings that
// differ only in diacritics or case fold to the same value.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	// Đ/đ carry no combining mark, so the NFD pass leaves them alone.
	out = strings.Map(func(r rune) rune {
		switch r {
		case 'đ':
			return 'd'
		case 'Đ':
			return 'D'
		}
		return r
	}, out)
	return strings.ToLower(strings.TrimSpace(out))
}

// ContainsFold reports whether sub occurs in s under accent- and
// case-insensitive comparison.
func ContainsFold(s, sub string) bool {
	return strings.Contains(Fold(s), Fold(sub))
}
