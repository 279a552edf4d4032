package catalog

import "strings"

// BuildQuery combines free text and interest tags into one search string.
// Text comes first, then tags in the order given. With neither present the
// result is DefaultQuery. Escaping is left to the transport.
func BuildQuery(text string, interests []string) string {
	var parts []string
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, t)
	}
	for _, tag := range interests {
		if tag = strings.TrimSpace(tag); tag != "" {
			parts = append(parts, tag)
		}
	}
	if len(parts) == 0 {
		return DefaultQuery
	}
	return strings.Join(parts, " ")
}
