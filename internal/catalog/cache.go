package catalog

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// resultCache keeps normalized results per built query.
type resultCache struct {
	lru *lru.Cache[string, []BookSummary]
}

// newResultCache returns nil when size is not positive, which disables caching.
func newResultCache(size int) (*resultCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[string, []BookSummary](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{lru: c}, nil
}

func (c *resultCache) get(query string) ([]BookSummary, bool) {
	if c == nil {
		return nil, false
	}
	books, ok := c.lru.Get(query)
	if !ok {
		return nil, false
	}
	return cloneBooks(books), true
}

func (c *resultCache) add(query string, books []BookSummary) {
	if c == nil {
		return
	}
	c.lru.Add(query, cloneBooks(books))
}

func (c *resultCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func cloneBooks(books []BookSummary) []BookSummary {
	out := make([]BookSummary, len(books))
	for i, b := range books {
		genres := make([]string, len(b.Genres))
		copy(genres, b.Genres)
		b.Genres = genres
		out[i] = b
	}
	return out
}
