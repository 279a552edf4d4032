package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/debuglog"
	"github.com/pders01/shelf/internal/validation"
)

// ErrTransport marks any failure to obtain a usable response from the catalog:
// network errors, non-success status codes and undecodable bodies.
var ErrTransport = errors.New("catalog request failed")

// Client searches the catalog and normalizes its records.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	coversURL      string
	placeholderURL string
	userAgent      string
	limit          int
	cache          *resultCache
	metrics        *Metrics
	random         func() float64
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records request metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRandom sets the source used to synthesize ratings. f must return
// values in [0, 1).
func WithRandom(f func() float64) Option {
	return func(c *Client) { c.random = f }
}

// NewClient builds a client from the catalog section of cfg.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	validator := validation.NewCatalogURLValidator()
	baseURL, err := validator.ValidateAndNormalize(cfg.Catalog.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base URL: %w", err)
	}

	cache, err := newResultCache(cfg.Catalog.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}

	limit := cfg.Catalog.Limit
	if limit <= 0 {
		limit = 12
	}

	c := &Client{
		httpClient:     &http.Client{Timeout: cfg.Catalog.HTTPTimeout},
		baseURL:        baseURL,
		coversURL:      strings.TrimRight(cfg.Catalog.CoversURL, "/"),
		placeholderURL: cfg.Catalog.PlaceholderURL,
		userAgent:      cfg.Catalog.UserAgent,
		limit:          limit,
		cache:          cache,
		random:         rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search runs query against the catalog. An empty slice with a nil error means
// the catalog had no matching records. Failures wrap ErrTransport, except
// context cancellation which is returned unchanged.
func (c *Client) Search(ctx context.Context, query string) ([]BookSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = DefaultQuery
	}

	log := debuglog.WithFields(map[string]interface{}{"component": "catalog", "query": query})

	if books, ok := c.cache.get(query); ok {
		c.metrics.incCacheHit()
		log.Debugf("cache hit (%d books)", len(books))
		return books, nil
	}

	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(c.limit)},
		"_":     {strconv.FormatUint(rand.Uint64(), 36)},
	}
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.observeDuration(time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.metrics.incRequest("canceled")
			return nil, ctxErr
		}
		c.metrics.incRequest("error")
		log.Warnf("request failed: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.incRequest("error")
		log.Warnf("unexpected status %d", resp.StatusCode)
		return nil, fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.metrics.incRequest("canceled")
			return nil, ctxErr
		}
		c.metrics.incRequest("error")
		return nil, fmt.Errorf("%w: decoding response: %w", ErrTransport, err)
	}

	books, dropped := c.normalize(sr.Docs)
	c.metrics.addDropped(dropped)
	if len(books) == 0 {
		c.metrics.incRequest("empty")
	} else {
		c.metrics.incRequest("ok")
	}
	log.Infof("search returned %d books (%d dropped)", len(books), dropped)

	c.cache.add(query, books)
	return books, nil
}

// PurgeCache drops every cached result.
func (c *Client) PurgeCache() {
	c.cache.purge()
}

// CoverURL derives the medium cover image URL for a cover id, or the
// placeholder when the record has none.
func (c *Client) CoverURL(coverID *int64) string {
	if coverID == nil || *coverID <= 0 || c.coversURL == "" {
		return c.placeholderURL
	}
	return fmt.Sprintf("%s/b/id/%d-M.jpg", c.coversURL, *coverID)
}

// normalize maps raw docs to summaries, dropping docs without a key.
func (c *Client) normalize(docs []searchDoc) ([]BookSummary, int) {
	books := make([]BookSummary, 0, len(docs))
	dropped := 0
	for _, doc := range docs {
		book, ok := c.normalizeDoc(doc)
		if !ok {
			dropped++
			continue
		}
		books = append(books, book)
	}
	return books, dropped
}

func (c *Client) normalizeDoc(doc searchDoc) (BookSummary, bool) {
	key := strings.TrimSpace(doc.Key)
	if key == "" {
		return BookSummary{}, false
	}

	book := BookSummary{
		ID:          key,
		Title:       DefaultTitle,
		Author:      DefaultAuthor,
		CoverURL:    c.CoverURL(doc.CoverI),
		Year:        DefaultYear,
		Genres:      []string{},
		Rating:      c.rating(),
		Description: DefaultDescription,
	}

	if t := strings.TrimSpace(doc.Title); t != "" {
		book.Title = t
	}
	if a := firstNonEmpty(doc.AuthorName); a != "" {
		book.Author = a
	}
	if doc.FirstPublishYear != nil {
		book.Year = strconv.Itoa(*doc.FirstPublishYear)
	}
	if d := firstNonEmpty(doc.FirstSentence); d != "" {
		book.Description = d
	}

	subjects := doc.SubjectFacet
	if len(subjects) == 0 {
		subjects = doc.Subject
	}
	for _, s := range subjects {
		if len(book.Genres) == MaxGenres {
			break
		}
		if s = strings.TrimSpace(s); s != "" {
			book.Genres = append(book.Genres, s)
		}
	}

	return book, true
}

// rating synthesizes a display rating in [MinRating, MaxRating] at one
// decimal. It carries no meaning beyond decoration.
func (c *Client) rating() float64 {
	r := c.random()
	if r < 0 || r >= 1 || math.IsNaN(r) {
		r = 0.5
	}
	v := math.Round((MinRating+r*(MaxRating-MinRating))*10) / 10
	return math.Min(MaxRating, math.Max(MinRating, v))
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
