package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/shelf/internal/catalog"
	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/search"
	"github.com/pders01/shelf/internal/session"
)

type fakeSearcher struct {
	mu      sync.Mutex
	books   []catalog.BookSummary
	err     error
	queries []string
	purged  int
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]catalog.BookSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.books, f.err
}

func (f *fakeSearcher) PurgeCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged++
}

type fakeOpener struct {
	urls []string
}

func (f *fakeOpener) Open(url string) error {
	f.urls = append(f.urls, url)
	return nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved map[string]catalog.BookSummary
	order []string
}

func newFakeStore(books ...catalog.BookSummary) *fakeStore {
	s := &fakeStore{saved: map[string]catalog.BookSummary{}}
	for _, b := range books {
		_ = s.SaveFavorite(b)
	}
	return s
}

func (s *fakeStore) SaveFavorite(book catalog.BookSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saved[book.ID]; !ok {
		s.order = append(s.order, book.ID)
	}
	s.saved[book.ID] = book
	return nil
}

func (s *fakeStore) DeleteFavorite(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, id)
	return nil
}

func (s *fakeStore) ListFavorites() ([]catalog.BookSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []catalog.BookSummary
	for _, id := range s.order {
		if b, ok := s.saved[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func testBooks() []catalog.BookSummary {
	return []catalog.BookSummary{
		{ID: "/works/OL1W", Title: "Dune", Author: "Frank Herbert", Year: "1965", Genres: []string{"Science Fiction"}, Rating: 4.5, Description: "Desert planet."},
		{ID: "/works/OL2W", Title: "Emma", Author: "Jane Austen", Year: "1815", Genres: []string{"Romance"}, Rating: 3.8, Description: "Matchmaking."},
	}
}

func newTestApp(t *testing.T, searcher *fakeSearcher, opts ...Option) *App {
	t.Helper()
	cfg := config.TestConfig()
	cfg.Favorites.ExportPath = filepath.Join(t.TempDir(), "favorites.yaml")
	opts = append([]Option{WithOpener(&fakeOpener{}), WithFavoritesIndex(search.NewEngine(nil))}, opts...)
	app := NewApp(cfg, searcher, opts...)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app
}

// collectMsgs runs cmd and every command it batches, returning the messages.
// Only pass commands that do not sleep.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMsg[T any](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T in %v", zero, msgs)
	return zero
}

// loadResults runs one fetch to completion through the update loop.
func loadResults(t *testing.T, app *App) {
	t.Helper()
	msgs := collectMsgs(app.startFetch())
	app.Update(findMsg[booksLoadedMsg](t, msgs))
	require.Equal(t, session.ModeResults, app.state.Mode())
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewApp_Defaults(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{})

	assert.Equal(t, ViewBrowse, app.view)
	assert.True(t, app.inputFocused)
	assert.Equal(t, session.ModeIdle, app.state.Mode())
	assert.NotEmpty(t, app.interests)
	assert.Len(t, app.interestList.Items(), len(app.interests))
	assert.Equal(t, "ctrl+", app.keyHandler.modifierKey)
}

func TestApp_InitialFetchUsesDefaultQuery(t *testing.T) {
	searcher := &fakeSearcher{books: testBooks()}
	app := newTestApp(t, searcher)

	msgs := collectMsgs(app.startFetch())
	assert.True(t, app.state.Loading())

	loaded := findMsg[booksLoadedMsg](t, msgs)
	assert.Equal(t, "popular", loaded.query)
	assert.Equal(t, []string{"popular"}, searcher.queries)

	app.Update(loaded)
	assert.Equal(t, session.ModeResults, app.state.Mode())
	assert.Len(t, app.resultList.Items(), 2)
	assert.Contains(t, app.View(), "Dune")
}

func TestApp_FetchOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		books    []catalog.BookSummary
		err      error
		wantMode session.Mode
		wantView string
	}{
		{name: "results", books: testBooks(), wantMode: session.ModeResults, wantView: "Emma"},
		{name: "empty", books: []catalog.BookSummary{}, wantMode: session.ModeEmpty, wantView: MsgNoBooks},
		{name: "failure", err: catalog.ErrTransport, wantMode: session.ModeError, wantView: MsgFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, &fakeSearcher{books: tt.books, err: tt.err})
			msgs := collectMsgs(app.startFetch())
			app.Update(findMsg[booksLoadedMsg](t, msgs))

			assert.Equal(t, tt.wantMode, app.state.Mode())
			assert.Contains(t, app.View(), tt.wantView)
			if tt.wantMode != session.ModeResults {
				assert.Empty(t, app.resultList.Items())
			}
		})
	}
}

func TestApp_StaleFetchIgnored(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{})
	first := app.state.Begin()
	second := app.state.Begin()

	app.Update(booksLoadedMsg{seq: first, query: "old", books: testBooks()})
	assert.True(t, app.state.Loading())

	app.Update(booksLoadedMsg{seq: second, query: "new", books: testBooks()[:1]})
	assert.Equal(t, session.ModeResults, app.state.Mode())
	assert.Len(t, app.resultList.Items(), 1)
}

func TestApp_CanceledFetchIgnored(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{})
	seq := app.state.Begin()

	app.Update(booksLoadedMsg{seq: seq, err: context.Canceled})
	assert.True(t, app.state.Loading())
}

func TestApp_NewFetchCancelsPrevious(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{books: testBooks()})

	app.startFetch()
	firstCancel := app.cancelFetch
	require.NotNil(t, firstCancel)

	app.startFetch()
	assert.Equal(t, uint64(2), app.state.Seq())
}

func TestApp_DebouncedTyping(t *testing.T) {
	searcher := &fakeSearcher{books: testBooks()}
	app := newTestApp(t, searcher)

	app.Update(key("d"))
	app.Update(key("u"))
	app.Update(key("n"))
	app.Update(key("e"))
	assert.Equal(t, "dune", app.criteria.Text())
	assert.Equal(t, uint64(4), app.debounceSeq)
	assert.Zero(t, app.state.Seq(), "no fetch before the debounce fires")

	// Earlier ticks are superseded.
	_, cmd := app.Update(debounceFireMsg{seq: 2})
	assert.Nil(t, cmd)
	assert.Zero(t, app.state.Seq())

	_, cmd = app.Update(debounceFireMsg{seq: 4})
	require.NotNil(t, cmd)
	assert.True(t, app.state.Loading())

	loaded := findMsg[booksLoadedMsg](t, collectMsgs(cmd))
	assert.Equal(t, "dune", loaded.query)
}

func TestApp_EnterFetchesImmediately(t *testing.T) {
	searcher := &fakeSearcher{books: testBooks()}
	app := newTestApp(t, searcher)
	app.input.SetValue("  dune   messiah ")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	loaded := findMsg[booksLoadedMsg](t, collectMsgs(cmd))
	assert.Equal(t, "dune messiah", loaded.query)

	// The pending debounce from earlier typing no longer fires.
	_, cmd = app.Update(debounceFireMsg{seq: app.debounceSeq - 1})
	assert.Nil(t, cmd)
}

func TestApp_InterestToggleFetchesImmediately(t *testing.T) {
	searcher := &fakeSearcher{books: testBooks()}
	app := newTestApp(t, searcher)

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	require.Equal(t, ViewInterests, app.view)

	label := app.interests[0].Label
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, app.criteria.HasInterest(label))
	assert.True(t, app.state.Loading())

	loaded := findMsg[booksLoadedMsg](t, collectMsgs(cmd))
	assert.Equal(t, label, loaded.query)

	item, ok := app.interestList.SelectedItem().(interestItem)
	require.True(t, ok)
	assert.True(t, item.selected)

	// Toggling again deselects.
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, app.criteria.HasInterest(label))

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewBrowse, app.view)
}

func TestApp_DetailDrawer(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{books: testBooks()})
	loadResults(t, app)

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.False(t, app.inputFocused)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewDetail, app.view)
	selected, ok := app.state.Selected()
	require.True(t, ok)
	assert.Equal(t, "Dune", selected.Title)

	rendered := findMsg[detailRenderedMsg](t, collectMsgs(cmd))
	assert.Equal(t, selected.ID, rendered.id)
	assert.Contains(t, rendered.content, "Herbert")
	app.Update(rendered)

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewBrowse, app.view)
	_, ok = app.state.Selected()
	assert.False(t, ok)
	assert.Len(t, app.resultList.Items(), 2, "closing the drawer keeps results")
}

func TestApp_DetailRenderForOtherBookIgnored(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{books: testBooks()})
	loadResults(t, app)
	app.state.Select(testBooks()[1])
	app.view = ViewDetail

	app.Update(detailRenderedMsg{id: "/works/OL1W", content: "stale"})
	assert.NotContains(t, app.viewport.View(), "stale")
}

func TestApp_ToggleFavorite(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(t, &fakeSearcher{books: testBooks()}, WithStore(store))
	loadResults(t, app)
	app.Update(tea.KeyMsg{Type: tea.KeyTab})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.True(t, app.favorites.Has("/works/OL1W"))
	assert.Contains(t, app.status, "Added 'Dune'")
	item := app.resultList.Items()[0].(bookItem)
	assert.True(t, item.favorite)

	persisted := findMsg[favoritePersistedMsg](t, collectMsgs(cmd))
	assert.NoError(t, persisted.err)
	saved, _ := store.ListFavorites()
	require.Len(t, saved, 1)

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.False(t, app.favorites.Has("/works/OL1W"))
	collectMsgs(cmd)
	saved, _ = store.ListFavorites()
	assert.Empty(t, saved)
}

func TestApp_ToggleFavoriteWithoutSelection(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.Nil(t, cmd)
	assert.Zero(t, app.favorites.Len())
}

func TestApp_FavoritesLoadedFromStore(t *testing.T) {
	store := newFakeStore(testBooks()...)
	app := newTestApp(t, &fakeSearcher{}, WithStore(store))

	app.Update(findMsg[favoritesLoadedMsg](t, collectMsgs(app.loadFavorites())))
	assert.Equal(t, 2, app.favorites.Len())
	assert.Len(t, app.favoritesList.Items(), 2)

	n, err := app.favIndex.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestApp_FavoritesFilter(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{})
	for _, b := range testBooks() {
		app.toggleFavorite(b)
	}

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.Equal(t, ViewFavorites, app.view)
	assert.Len(t, app.favoritesList.Items(), 2)

	app.favFilter.SetValue("aus")
	app.Update(findMsg[favoritesFilteredMsg](t, collectMsgs(app.filterFavorites("aus"))))
	require.Len(t, app.favoritesList.Items(), 1)
	assert.Equal(t, "Emma", app.favoritesList.Items()[0].(bookItem).book.Title)

	// Results for an outdated filter value are dropped.
	app.Update(favoritesFilteredMsg{query: "dune", ids: []string{"/works/OL1W"}})
	assert.Equal(t, "Emma", app.favoritesList.Items()[0].(bookItem).book.Title)

	app.favFilter.SetValue("a")
	app.Update(findMsg[favoritesFilteredMsg](t, collectMsgs(app.filterFavorites("a"))))
	assert.Len(t, app.favoritesList.Items(), 2, "short filters show every favorite")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewBrowse, app.view)
}

func TestApp_Export(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.Nil(t, cmd)
	assert.Equal(t, MsgNoFavorites, app.status)

	app.toggleFavorite(testBooks()[0])
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	done := findMsg[exportDoneMsg](t, collectMsgs(cmd))
	require.NoError(t, done.err)
	assert.Equal(t, 1, done.count)

	app.Update(done)
	assert.Equal(t, StatusSuccess, app.statusKind)

	data, err := os.ReadFile(app.config.Favorites.ExportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Dune")
}

func TestApp_OpenSelectedBook(t *testing.T) {
	opener := &fakeOpener{}
	app := newTestApp(t, &fakeSearcher{books: testBooks()}, WithOpener(opener))
	loadResults(t, app)
	app.Update(tea.KeyMsg{Type: tea.KeyTab})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	collectMsgs(cmd)
	assert.Equal(t, []string{"https://openlibrary.org/works/OL1W"}, opener.urls)
}

func TestApp_EscCancelsLoading(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{books: testBooks()})
	cmd := app.startFetch()
	require.True(t, app.state.Loading())

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, session.ModeIdle, app.state.Mode())
	assert.Equal(t, MsgCanceled, app.status)
	assert.Nil(t, app.cancelFetch)

	// The canceled request's response is dropped.
	app.Update(findMsg[booksLoadedMsg](t, collectMsgs(cmd)))
	assert.Equal(t, session.ModeIdle, app.state.Mode())
}

func TestApp_RefreshPurgesCache(t *testing.T) {
	searcher := &fakeSearcher{books: testBooks()}
	app := newTestApp(t, searcher)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, searcher.purged)
	assert.True(t, app.state.Loading())
}

func TestApp_ErrorMsgSetsStatus(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{})
	app.Update(errorMsg{err: errors.New("boom")})
	assert.Equal(t, StatusError, app.statusKind)
	assert.True(t, strings.Contains(app.statusBar(), "boom"))
}

func TestApp_QuitShutsDown(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{books: testBooks()})
	app.startFetch()

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Nil(t, app.cancelFetch)
}
