package search

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/pders01/shelf/internal/catalog"
)

// Engine scores favorites in memory without an index. It backs the favorites
// filter when the bleve index cannot be built.
type Engine struct {
	mu    sync.RWMutex
	books map[string]catalog.BookSummary
	order []string
}

// NewEngine creates an engine over books.
func NewEngine(books []catalog.BookSummary) *Engine {
	e := &Engine{}
	_ = e.Reindex(books)
	return e
}

func (e *Engine) Index(book catalog.BookSummary) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.indexLocked(book)
	return nil
}

func (e *Engine) indexLocked(book catalog.BookSummary) {
	if _, ok := e.books[book.ID]; !ok {
		e.order = append(e.order, book.ID)
	}
	e.books[book.ID] = book
}

func (e *Engine) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.books[id]; !ok {
		return nil
	}
	delete(e.books, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

func (e *Engine) Reindex(books []catalog.BookSummary) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.books = make(map[string]catalog.BookSummary, len(books))
	e.order = nil
	for _, b := range books {
		e.indexLocked(b)
	}
	return nil
}

func (e *Engine) DocCount() (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.order), nil
}

func (e *Engine) Close() error { return nil }

// Search ranks books by weighted term matches, highest first. Ties keep
// insertion order.
func (e *Engine) Search(query string, limit int) ([]Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []Result{}, nil
	}

	e.mu.RLock()
	var results []Result
	for _, id := range e.order {
		if score := e.scoreBook(e.books[id], terms); score > 0 {
			results = append(results, Result{ID: id, Score: score})
		}
	}
	e.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (e *Engine) scoreBook(b catalog.BookSummary, terms []string) float64 {
	return e.scoreField(b.Title, terms, 4.0) +
		e.scoreField(b.Author, terms, 3.0) +
		e.scoreField(strings.Join(b.Genres, " "), terms, 2.0) +
		e.scoreField(b.Description, terms, 1.0)
}

// scoreField calculates relevance score for a field
func (e *Engine) scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	// Boost score if multiple terms match
	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// tokenize breaks text into lowercase searchable terms, skipping single
// characters.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len(term) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if current.Len() > 1 {
		terms = append(terms, current.String())
	}

	return terms
}
