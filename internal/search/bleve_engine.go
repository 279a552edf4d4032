package search

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/shelf/internal/catalog"
)

type bleveEngine struct {
	idx bleve.Index
}

// NewBleveEngine creates an in-memory index over books. Favorites are small
// and rebuilt from the session on start, so nothing is written to disk.
func NewBleveEngine(books []catalog.BookSummary) (FavoritesIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}

	be := &bleveEngine{idx: idx}
	if err := be.Reindex(books); err != nil {
		idx.Close()
		return nil, err
	}
	return be, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	author := bleve.NewTextFieldMapping()
	author.Analyzer = standard.Name
	author.Store = true

	genres := bleve.NewTextFieldMapping()
	genres.Analyzer = standard.Name
	genres.Store = false

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = standard.Name
	desc.Store = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("author", author)
	dm.AddFieldMappingsAt("genres", genres)
	dm.AddFieldMappingsAt("description", desc)

	im.DefaultMapping = dm
	return im
}

func bookDoc(b catalog.BookSummary) map[string]any {
	return map[string]any{
		"title":       b.Title,
		"author":      b.Author,
		"genres":      strings.Join(b.Genres, " "),
		"description": b.Description,
	}
}

func (b *bleveEngine) Index(book catalog.BookSummary) error {
	return b.idx.Index(book.ID, bookDoc(book))
}

func (b *bleveEngine) Remove(id string) error {
	return b.idx.Delete(id)
}

// Reindex replaces the index contents with books.
func (b *bleveEngine) Reindex(books []catalog.BookSummary) error {
	existing, err := b.allIDs()
	if err != nil {
		return err
	}

	batch := b.idx.NewBatch()
	for _, id := range existing {
		batch.Delete(id)
	}
	for _, book := range books {
		if err := batch.Index(book.ID, bookDoc(book)); err != nil {
			return err
		}
	}
	return b.idx.Batch(batch)
}

func (b *bleveEngine) allIDs() ([]string, error) {
	n, err := b.idx.DocCount()
	if err != nil || n == 0 {
		return nil, err
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(n), 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Search matches query tokens against title, author, genres and description,
// boosting title and author. Queries shorter than two characters match nothing.
func (b *bleveEngine) Search(query string, limit int) ([]Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []Result{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	fields := []struct {
		name  string
		boost float64
	}{
		{"title", 4.0},
		{"author", 3.0},
		{"genres", 2.0},
		{"description", 1.0},
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, f := range fields {
			qm := bleve.NewMatchQuery(tok)
			qm.SetField(f.name)
			qm.SetBoost(f.boost)
			qs = append(qs, qm)

			qp := bleve.NewPrefixQuery(tok)
			qp.SetField(f.name)
			qp.SetBoost(f.boost * 0.8)
			qs = append(qs, qp)
		}
	}
	if len(qs) == 0 {
		return []Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		out = append(out, Result{ID: h.ID, Score: h.Score})
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *bleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

func (b *bleveEngine) Close() error {
	return b.idx.Close()
}
