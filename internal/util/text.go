package util

import (
	"regexp"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

// CleanHeader flattens the artifacts the form exports leave in column
// headers: non-breaking spaces, embedded newlines and runs of
// whitespace all collapse to single ordinary spaces. Idempotent.
func CleanHeader(input string) string {
	s := strings.ReplaceAll(input, " ", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CollapseSpaces squashes internal whitespace runs and trims the ends.
func CollapseSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// UpperTrim is the canonical string normalization applied before any
// value comparison or grouping.
func UpperTrim(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}
