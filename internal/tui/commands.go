package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/shelf/internal/catalog"
	"github.com/pders01/shelf/internal/media"
)

func (a *App) fetchBooks(ctx context.Context, seq uint64, query string) tea.Cmd {
	client := a.client
	return func() tea.Msg {
		books, err := client.Search(ctx, query)
		return booksLoadedMsg{seq: seq, query: query, books: books, err: err}
	}
}

func (a *App) renderDetail(book catalog.BookSummary) tea.Cmd {
	worksURL := a.config.Catalog.WorksURL
	r, rerr := a.getRenderer()
	return func() tea.Msg {
		var content strings.Builder
		content.WriteString(fmt.Sprintf("# %s\n\n", book.Title))
		content.WriteString(fmt.Sprintf("*%s* • %s • rating %.1f / 5\n\n", book.Author, book.Year, book.Rating))

		if len(book.Genres) > 0 {
			content.WriteString("**Genres:** " + strings.Join(book.Genres, ", ") + "\n\n")
		}

		content.WriteString("---\n\n")
		content.WriteString(book.Description + "\n\n")
		content.WriteString("---\n\n")
		content.WriteString(fmt.Sprintf("[Open Library](%s)\n\n", media.BookURL(worksURL, book.ID)))
		content.WriteString(fmt.Sprintf("Cover: %s\n", book.CoverURL))

		if rerr != nil {
			return detailRenderedMsg{id: book.ID, content: "Error initializing renderer: " + rerr.Error()}
		}

		rendered, err := r.Render(content.String())
		if err != nil {
			return detailRenderedMsg{id: book.ID, content: fmt.Sprintf("Failed to render details: %s\n\nPress Escape to go back.", err.Error())}
		}
		return detailRenderedMsg{id: book.ID, content: rendered}
	}
}

func (a *App) loadFavorites() tea.Cmd {
	store := a.store
	return func() tea.Msg {
		books, err := store.ListFavorites()
		return favoritesLoadedMsg{books: books, err: err}
	}
}

// persistFavorite mirrors a toggle to the store when one is configured.
func (a *App) persistFavorite(book catalog.BookSummary, added bool) tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		var err error
		if added {
			err = wrapErr("saving favorite", store.SaveFavorite(book))
		} else {
			err = wrapErr("removing favorite", store.DeleteFavorite(book.ID))
		}
		return favoritePersistedMsg{err: err}
	}
}

// filterFavorites ranks favorites against query. Short queries show every
// favorite.
func (a *App) filterFavorites(query string) tea.Cmd {
	idx := a.favIndex
	return func() tea.Msg {
		if len(strings.TrimSpace(query)) < 2 {
			return favoritesFilteredMsg{query: query}
		}
		results, err := idx.Search(query, 100)
		if err != nil {
			return favoritesFilteredMsg{query: query, err: err}
		}
		ids := make([]string, 0, len(results))
		for _, r := range results {
			ids = append(ids, r.ID)
		}
		return favoritesFilteredMsg{query: query, ids: ids}
	}
}

// exportFavorites writes a snapshot of the favorites taken on the update loop.
func (a *App) exportFavorites() tea.Cmd {
	snapshot := a.favorites.Clone()
	path := a.config.Favorites.ExportPath
	format := a.config.Favorites.ExportFormat
	return func() tea.Msg {
		if err := snapshot.ExportFile(path, format); err != nil {
			return exportDoneMsg{path: path, err: err}
		}
		return exportDoneMsg{path: path, count: snapshot.Len()}
	}
}

func (a *App) openURL(url string) tea.Cmd {
	opener := a.opener
	return func() tea.Msg {
		if err := opener.Open(url); err != nil {
			return errorMsg{err: fmt.Errorf("failed to open %s: %w", url, err)}
		}
		return nil
	}
}

