package tui

import "github.com/charmbracelet/x/ansi"

// truncateEnd shortens s to at most limit terminal cells, ending with an
// ellipsis when it had to cut. Styled text keeps its escape sequences.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= limit {
		return s
	}
	return ansi.Truncate(s, limit, "…")
}

// truncateMiddle keeps both ends of s around a single ellipsis. Used for
// paths, where the file name matters as much as the root.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	left := (limit - 1) / 2
	right := limit - 1 - left
	return string(r[:left]) + "…" + string(r[len(r)-right:])
}
