package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/shelf/internal/catalog"
)

type View int

const (
	ViewBrowse View = iota
	ViewInterests
	ViewDetail
	ViewFavorites
)

type bookItem struct {
	book     catalog.BookSummary
	favorite bool
	maxDesc  int
}

func (i bookItem) Title() string {
	if i.favorite {
		return FavoriteMarkStyle.Render("★ ") + i.book.Title
	}
	return i.book.Title
}

func (i bookItem) Description() string {
	parts := []string{i.book.Author, i.book.Year, fmt.Sprintf("%.1f★", i.book.Rating)}
	if len(i.book.Genres) > 0 {
		parts = append(parts, strings.Join(i.book.Genres, ", "))
	}
	desc := strings.Join(parts, " • ")
	if i.maxDesc > 0 {
		desc = truncateEnd(desc, i.maxDesc)
	}
	return lipgloss.NewStyle().Foreground(MutedColor).Render(desc)
}

func (i bookItem) FilterValue() string { return i.book.Title }

type interestItem struct {
	interest catalog.Interest
	selected bool
}

func (i interestItem) Title() string {
	if i.selected {
		return SelectedChipStyle.Render("[x] " + i.interest.Label)
	}
	return "[ ] " + i.interest.Label
}

func (i interestItem) Description() string { return renderMuted(i.interest.Group) }
func (i interestItem) FilterValue() string { return i.interest.Label }

type debounceFireMsg struct {
	seq uint64
}

type booksLoadedMsg struct {
	seq   uint64
	query string
	books []catalog.BookSummary
	err   error
}

type detailRenderedMsg struct {
	id      string
	content string
}

type favoritesLoadedMsg struct {
	books []catalog.BookSummary
	err   error
}

type favoritesFilteredMsg struct {
	query string
	ids   []string
	err   error
}

type favoritePersistedMsg struct {
	err error
}

type exportDoneMsg struct {
	path  string
	count int
	err   error
}

type errorMsg struct {
	err error
}
