package app

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const selectKeyword = "select"

// IsSelect reports whether the trimmed query starts with the SELECT keyword.
// The keyword must end the input or be followed by something other than a
// letter, digit or underscore, so "selection" is rejected.
func IsSelect(query string) bool {
	q := strings.TrimLeftFunc(query, unicode.IsSpace)
	if len(q) < len(selectKeyword) || !strings.EqualFold(q[:len(selectKeyword)], selectKeyword) {
		return false
	}

	rest := q[len(selectKeyword):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

// abbreviate shortens a query for log output.
func abbreviate(query string) string {
	q := strings.Join(strings.Fields(query), " ")
	if len(q) > 80 {
		return q[:77] + "..."
	}
	return q
}
