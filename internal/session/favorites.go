package session

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pders01/shelf/internal/catalog"
	"github.com/pders01/shelf/internal/validation"
)

// Favorites is an insertion-ordered set of books keyed by ID.
type Favorites struct {
	order []string
	books map[string]catalog.BookSummary
}

func NewFavorites() *Favorites {
	return &Favorites{books: make(map[string]catalog.BookSummary)}
}

// Toggle adds book when absent and removes it when present. It reports
// whether the book is a favorite afterwards.
func (f *Favorites) Toggle(book catalog.BookSummary) bool {
	if f.Has(book.ID) {
		f.Remove(book.ID)
		return false
	}
	f.Add(book)
	return true
}

// Add inserts book unless its ID is already present.
func (f *Favorites) Add(book catalog.BookSummary) {
	if f.books == nil {
		f.books = make(map[string]catalog.BookSummary)
	}
	if _, ok := f.books[book.ID]; ok {
		return
	}
	f.books[book.ID] = book
	f.order = append(f.order, book.ID)
}

func (f *Favorites) Remove(id string) {
	if _, ok := f.books[id]; !ok {
		return
	}
	delete(f.books, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

func (f *Favorites) Has(id string) bool {
	_, ok := f.books[id]
	return ok
}

func (f *Favorites) Get(id string) (catalog.BookSummary, bool) {
	b, ok := f.books[id]
	return b, ok
}

func (f *Favorites) Len() int {
	return len(f.order)
}

// List returns the favorites in insertion order.
func (f *Favorites) List() []catalog.BookSummary {
	out := make([]catalog.BookSummary, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.books[id])
	}
	return out
}

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

type exportDocument struct {
	ExportedAt time.Time             `json:"exported_at" yaml:"exported_at"`
	Count      int                   `json:"count" yaml:"count"`
	Books      []catalog.BookSummary `json:"books" yaml:"books"`
}

// Export writes the favorites to w as YAML or JSON.
func (f *Favorites) Export(w io.Writer, format string) error {
	doc := exportDocument{
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Count:      f.Len(),
		Books:      f.List(),
	}

	switch strings.ToLower(format) {
	case FormatYAML, "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportFile writes the favorites to path, creating parent directories.
func (f *Favorites) ExportFile(path, format string) error {
	path, err := validation.NewPermissiveFilePathValidator().ValidateFile(path)
	if err != nil {
		return fmt.Errorf("invalid export path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := f.Export(file, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Clone returns an independent copy.
func (f *Favorites) Clone() *Favorites {
	c := NewFavorites()
	for _, b := range f.List() {
		c.Add(b)
	}
	return c
}
