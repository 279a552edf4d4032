package search

import "github.com/pders01/shelf/internal/catalog"

// Result is one matching favorite.
type Result struct {
	ID    string
	Score float64
}

// Searcher narrows the favorites list by a free-text query.
type Searcher interface {
	Search(query string, limit int) ([]Result, error)
}

// Indexer keeps a searcher in step with the favorites set.
type Indexer interface {
	Index(book catalog.BookSummary) error
	Remove(id string) error
	Reindex(books []catalog.BookSummary) error
}

// FavoritesIndex is a searcher that can be kept up to date.
type FavoritesIndex interface {
	Searcher
	Indexer
	DocCount() (int, error)
	Close() error
}
