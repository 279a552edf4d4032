package storage

import (
	"time"

	"github.com/pders01/shelf/internal/catalog"
)

// FavoriteRecord is the stored form of a favorite book.
type FavoriteRecord struct {
	Book    catalog.BookSummary `json:"book"`
	Seq     uint64              `json:"seq"`
	AddedAt time.Time           `json:"added_at"`
}
