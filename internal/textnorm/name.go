package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatFullName normalizes a person name to Title Case. Input is lowered
// first so mixed-case entries ("NguyễN VăN A") come out consistently.
func FormatFullName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	return cases.Title(language.Und).String(name)
}
