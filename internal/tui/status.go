package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusKind indicates severity for status messages.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

func statusStyle(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

// Canonical short status messages used across the app.
const (
	MsgLoadingBooks  = "Loading books…"
	MsgLoadingDetail = "Loading details…"
	MsgFetchFailed   = "Could not load books. Please try again."
	MsgNoBooks       = "No books found"
	MsgNoFavorites   = "No favorites yet"
	MsgNoResults     = "No results"
	MsgExporting     = "Exporting…"
	MsgCanceled      = "Search canceled"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgAddedFavorite(title string) string {
	return fmt.Sprintf("Added '%s' to favorites", strings.TrimSpace(title))
}

func MsgRemovedFavorite(title string) string {
	return fmt.Sprintf("Removed '%s' from favorites", strings.TrimSpace(title))
}

func MsgExported(count int, path string) string {
	if count == 1 {
		return "Exported 1 favorite to " + path
	}
	return fmt.Sprintf("Exported %d favorites to %s", count, path)
}
