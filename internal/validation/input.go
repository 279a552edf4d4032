package validation

import "strings"

// MaxQueryLength bounds free-text search input.
const MaxQueryLength = 256

// SanitizeQuery trims, flattens whitespace and limits the length of free-text
// search input. The result is safe to hand to the query builder.
func SanitizeQuery(input string) string {
	input = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		}
		if r < 32 {
			return -1
		}
		return r
	}, input)

	input = strings.Join(strings.Fields(input), " ")

	if r := []rune(input); len(r) > MaxQueryLength {
		input = strings.TrimSpace(string(r[:MaxQueryLength]))
	}
	return input
}
