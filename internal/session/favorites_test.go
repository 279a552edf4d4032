package session

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pders01/shelf/internal/catalog"
)

func TestFavorites_ToggleTwiceRestores(t *testing.T) {
	f := NewFavorites()
	books := sampleBooks("a", "b")
	f.Add(books[0])
	before := f.List()

	assert.True(t, f.Toggle(books[1]))
	assert.True(t, f.Has("b"))
	assert.False(t, f.Toggle(books[1]))
	assert.False(t, f.Has("b"))

	assert.Equal(t, before, f.List())
}

func TestFavorites_InsertionOrder(t *testing.T) {
	f := NewFavorites()
	for _, b := range sampleBooks("c", "a", "b") {
		f.Toggle(b)
	}
	f.Toggle(catalog.BookSummary{ID: "a"})

	var ids []string
	for _, b := range f.List() {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"c", "b"}, ids)
	assert.Equal(t, 2, f.Len())
}

func TestFavorites_AddIsIdempotent(t *testing.T) {
	f := NewFavorites()
	b := sampleBooks("a")[0]
	f.Add(b)
	f.Add(b)
	assert.Equal(t, 1, f.Len())

	got, ok := f.Get("a")
	require.True(t, ok)
	assert.Equal(t, b, got)

	f.Remove("missing")
	assert.Equal(t, 1, f.Len())
}

func TestFavorites_ZeroValue(t *testing.T) {
	var f Favorites
	assert.False(t, f.Has("a"))
	assert.True(t, f.Toggle(catalog.BookSummary{ID: "a"}))
	assert.Equal(t, 1, f.Len())
}

func TestFavorites_ExportYAML(t *testing.T) {
	f := NewFavorites()
	f.Add(catalog.BookSummary{ID: "/works/OL1W", Title: "Dune", Author: "Frank Herbert", Genres: []string{"Science Fiction"}, Rating: 4.2})

	var buf bytes.Buffer
	require.NoError(t, f.Export(&buf, FormatYAML))

	var doc exportDocument
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 1, doc.Count)
	require.Len(t, doc.Books, 1)
	assert.Equal(t, "Dune", doc.Books[0].Title)
	assert.Contains(t, buf.String(), "cover_url:")
}

func TestFavorites_ExportJSON(t *testing.T) {
	f := NewFavorites()
	for _, b := range sampleBooks("a", "b") {
		f.Add(b)
	}

	var buf bytes.Buffer
	require.NoError(t, f.Export(&buf, "JSON"))

	var doc exportDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, "a", doc.Books[0].ID)
	assert.Equal(t, "b", doc.Books[1].ID)
}

func TestFavorites_ExportUnsupported(t *testing.T) {
	var buf bytes.Buffer
	err := NewFavorites().Export(&buf, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestFavorites_ExportFile(t *testing.T) {
	f := NewFavorites()
	f.Add(sampleBooks("a")[0])

	path := filepath.Join(t.TempDir(), "nested", "favorites.yaml")
	require.NoError(t, f.ExportFile(path, FormatYAML))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "id: a")
}

func TestFavorites_CloneIsIndependent(t *testing.T) {
	f := NewFavorites()
	f.Add(sampleBooks("a")[0])

	c := f.Clone()
	c.Add(sampleBooks("b")[0])
	f.Remove("a")

	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Has("a"))
}

func TestFavorites_ExportFileRejectsTraversal(t *testing.T) {
	err := NewFavorites().ExportFile("../favorites.yaml", FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid export path")
}
