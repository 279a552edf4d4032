package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/shelf/internal/catalog"
	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/debuglog"
	"github.com/pders01/shelf/internal/media"
	"github.com/pders01/shelf/internal/search"
	"github.com/pders01/shelf/internal/session"
)

// BookSearcher runs catalog searches.
type BookSearcher interface {
	Search(ctx context.Context, query string) ([]catalog.BookSummary, error)
}

// URLOpener opens a URL outside the terminal.
type URLOpener interface {
	Open(url string) error
}

// FavoritesStore persists favorites between runs.
type FavoritesStore interface {
	SaveFavorite(book catalog.BookSummary) error
	DeleteFavorite(id string) error
	ListFavorites() ([]catalog.BookSummary, error)
}

type Option func(*App)

// WithStore mirrors every favorite toggle to store and loads favorites from
// it on start.
func WithStore(store FavoritesStore) Option {
	return func(a *App) { a.store = store }
}

func WithOpener(opener URLOpener) Option {
	return func(a *App) { a.opener = opener }
}

func WithFavoritesIndex(idx search.FavoritesIndex) Option {
	return func(a *App) { a.favIndex = idx }
}

type App struct {
	config     *config.Config
	client     BookSearcher
	store      FavoritesStore
	opener     URLOpener
	favIndex   search.FavoritesIndex
	keyHandler *KeyHandler

	input         textinput.Model
	resultList    list.Model
	interestList  list.Model
	favoritesList list.Model
	favFilter     textinput.Model
	viewport      viewport.Model
	spinner       spinner.Model

	view         View
	previousView View
	inputFocused bool

	criteria  session.Criteria
	state     session.State
	favorites *session.Favorites
	interests []catalog.Interest

	// debounceSeq identifies the latest pending text edit.
	debounceSeq uint64
	cancelFetch context.CancelFunc

	status     string
	statusKind StatusKind

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func NewApp(cfg *config.Config, client BookSearcher, opts ...Option) *App {
	ApplyTheme(cfg.UI.Colors)

	resultList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	resultList.Title = "› books"
	resultList.SetShowStatusBar(false)
	resultList.SetFilteringEnabled(false)
	resultList.SetShowHelp(false)

	interestList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	interestList.Title = "› interests"
	interestList.SetShowStatusBar(false)
	interestList.SetFilteringEnabled(false)
	interestList.SetShowHelp(false)

	favoritesList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	favoritesList.Title = "› favorites"
	favoritesList.SetShowStatusBar(false)
	favoritesList.SetFilteringEnabled(false)
	favoritesList.SetShowHelp(false)

	ti := textinput.New()
	ti.Placeholder = "Search books by title, author or topic..."
	ti.CharLimit = 256
	ti.Focus()

	ff := textinput.New()
	ff.Placeholder = "Filter favorites..."
	ff.CharLimit = 256

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	app := &App{
		config:        cfg,
		client:        client,
		input:         ti,
		resultList:    resultList,
		interestList:  interestList,
		favoritesList: favoritesList,
		favFilter:     ff,
		viewport:      viewport.New(0, 0),
		spinner:       sp,
		view:          ViewBrowse,
		previousView:  ViewBrowse,
		inputFocused:  true,
		favorites:     session.NewFavorites(),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.opener == nil {
		app.opener = media.NewLauncher(cfg)
	}
	if app.favIndex == nil {
		idx, err := search.NewBleveEngine(nil)
		if err != nil {
			debuglog.Warnf("bleve index unavailable, using in-memory matcher: %v", err)
			app.favIndex = search.NewEngine(nil)
		} else {
			app.favIndex = idx
		}
	}

	interests, err := catalog.Interests(cfg.Catalog.Interests)
	if err != nil {
		debuglog.Errorf("loading interests: %v", err)
		app.setStatus(err.Error(), StatusError)
	}
	app.interests = interests
	app.refreshInterestItems()

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.WordWrapMaxWidth
	minWidth := a.config.UI.WordWrapMinWidth

	wordWrapWidth := (a.width * 9) / 10
	if maxWidth > 0 && wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width > 0 && a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen, textinput.Blink, a.startFetch()}
	if a.store != nil {
		cmds = append(cmds, a.loadFavorites())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		listHeight := max(msg.Height-8, 5)
		a.resultList.SetSize(msg.Width, listHeight)
		a.favoritesList.SetSize(msg.Width, listHeight)
		a.interestList.SetSize(msg.Width, msg.Height-3)
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 3

		inputWidth := msg.Width - 8
		if inputWidth < 10 {
			inputWidth = msg.Width
		}
		a.input.Width = inputWidth
		a.favFilter.Width = inputWidth

		if book, ok := a.state.Selected(); ok && a.view == ViewDetail {
			cmds = append(cmds, a.renderDetail(book))
		}

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case debounceFireMsg:
		if msg.seq == a.debounceSeq {
			return a, a.startFetch()
		}
		return a, nil

	case booksLoadedMsg:
		a.applyBooks(msg)
		return a, nil

	case detailRenderedMsg:
		if book, ok := a.state.Selected(); ok && book.ID == msg.id {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
		}
		return a, nil

	case favoritesLoadedMsg:
		if msg.err != nil {
			a.setStatus(wrapErr("loading favorites", msg.err).Error(), StatusError)
			return a, nil
		}
		for _, b := range msg.books {
			a.favorites.Add(b)
		}
		if err := a.favIndex.Reindex(a.favorites.List()); err != nil {
			debuglog.Warnf("indexing favorites: %v", err)
		}
		a.refreshBookItems()
		a.refreshFavoriteItems(nil)
		return a, nil

	case favoritesFilteredMsg:
		if msg.query == a.favFilter.Value() {
			if msg.err != nil {
				a.setStatus(wrapErr("filtering favorites", msg.err).Error(), StatusError)
				return a, nil
			}
			a.refreshFavoriteItems(msg.ids)
		}
		return a, nil

	case favoritePersistedMsg:
		if msg.err != nil {
			a.setStatus(msg.err.Error(), StatusError)
		}
		return a, nil

	case exportDoneMsg:
		if msg.err != nil {
			a.setStatus(wrapErr("export failed", msg.err).Error(), StatusError)
		} else {
			a.setStatus(MsgExported(msg.count, truncateMiddle(msg.path, 40)), StatusSuccess)
		}
		return a, nil

	case errorMsg:
		a.setStatus(msg.err.Error(), StatusError)
		return a, nil

	case spinner.TickMsg:
		if !a.state.Loading() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	switch a.view {
	case ViewBrowse:
		if a.inputFocused {
			var cmd tea.Cmd
			a.input, cmd = a.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	case ViewFavorites:
		var cmd tea.Cmd
		a.favFilter, cmd = a.favFilter.Update(msg)
		cmds = append(cmds, cmd)
	case ViewDetail:
		switch msg.(type) {
		case tea.MouseMsg:
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

// applyBooks resolves a fetch into the session state and the result list.
func (a *App) applyBooks(msg booksLoadedMsg) {
	if isCanceled(msg.err) {
		return
	}
	if !a.state.Resolve(msg.seq, msg.books, msg.err) {
		debuglog.Debugf("dropping stale result for %q (seq %d, current %d)", msg.query, msg.seq, a.state.Seq())
		return
	}

	if msg.err != nil {
		debuglog.Warnf("search %q failed: %v", msg.query, msg.err)
	}
	a.clearStatus()
	a.refreshBookItems()
	a.resultList.Select(0)
}

// startFetch cancels any in-flight fetch and starts a new one for the
// current criteria.
func (a *App) startFetch() tea.Cmd {
	if a.cancelFetch != nil {
		a.cancelFetch()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelFetch = cancel

	seq := a.state.Begin()
	query := a.criteria.Query()
	debuglog.Debugf("fetch #%d for %q", seq, query)

	return tea.Batch(a.spinner.Tick, a.fetchBooks(ctx, seq, query))
}

// scheduleFetch debounces text edits: only the last edit within the window
// triggers a fetch.
func (a *App) scheduleFetch() tea.Cmd {
	a.debounceSeq++
	seq := a.debounceSeq
	return tea.Tick(a.config.UI.Debounce, func(_ time.Time) tea.Msg {
		return debounceFireMsg{seq: seq}
	})
}

// shutdown cancels outstanding work before the program exits.
func (a *App) shutdown() {
	if a.cancelFetch != nil {
		a.cancelFetch()
		a.cancelFetch = nil
	}
	if a.favIndex != nil {
		_ = a.favIndex.Close()
	}
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
}

// selectedBook returns the book the current view is pointing at.
func (a *App) selectedBook() (catalog.BookSummary, bool) {
	switch a.view {
	case ViewDetail:
		return a.state.Selected()
	case ViewBrowse:
		if a.state.Mode() != session.ModeResults {
			return catalog.BookSummary{}, false
		}
		if i, ok := a.resultList.SelectedItem().(bookItem); ok {
			return i.book, true
		}
	case ViewFavorites:
		if i, ok := a.favoritesList.SelectedItem().(bookItem); ok {
			return i.book, true
		}
	}
	return catalog.BookSummary{}, false
}

func (a *App) refreshBookItems() {
	books := a.state.Results()
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = bookItem{book: b, favorite: a.favorites.Has(b.ID), maxDesc: a.config.UI.MaxDescriptionLength}
	}
	a.resultList.SetItems(items)
}

// refreshFavoriteItems shows all favorites, or only ids in rank order when
// ids is non-nil.
func (a *App) refreshFavoriteItems(ids []string) {
	var books []catalog.BookSummary
	if ids == nil {
		books = a.favorites.List()
	} else {
		for _, id := range ids {
			if b, ok := a.favorites.Get(id); ok {
				books = append(books, b)
			}
		}
	}

	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = bookItem{book: b, favorite: true, maxDesc: a.config.UI.MaxDescriptionLength}
	}
	a.favoritesList.SetItems(items)
}

func (a *App) refreshInterestItems() {
	items := make([]list.Item, len(a.interests))
	for i, in := range a.interests {
		items[i] = interestItem{interest: in, selected: a.criteria.HasInterest(in.Label)}
	}
	a.interestList.SetItems(items)
}

// toggleFavorite flips book's membership and keeps the index, the lists and
// the optional store in step.
func (a *App) toggleFavorite(book catalog.BookSummary) tea.Cmd {
	added := a.favorites.Toggle(book)

	var err error
	if added {
		err = a.favIndex.Index(book)
		a.setStatus(MsgAddedFavorite(book.Title), StatusSuccess)
	} else {
		err = a.favIndex.Remove(book.ID)
		a.setStatus(MsgRemovedFavorite(book.Title), StatusInfo)
	}
	if err != nil {
		debuglog.Warnf("updating favorites index: %v", err)
	}

	a.refreshBookItems()
	if a.view == ViewFavorites {
		return tea.Batch(a.persistFavorite(book, added), a.filterFavorites(a.favFilter.Value()))
	}
	a.refreshFavoriteItems(nil)
	return a.persistFavorite(book, added)
}

func (a *App) View() string {
	var content string
	contentHeight := max(a.height-3, 1)

	switch a.view {
	case ViewBrowse:
		content = a.browseView(contentHeight)
	case ViewInterests:
		content = a.interestList.View()
	case ViewDetail:
		content = a.viewport.View()
	case ViewFavorites:
		content = a.favoritesView(contentHeight)
	}

	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width-1, 0)))
	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.statusBar())
}

func (a *App) browseView(height int) string {
	header := renderHeader("› "+AppName, "", a.width)
	chips := renderChips(a.criteria.Interests(), a.width)
	input := renderInputFrame(a.input.View(), a.inputFocused, a.input.Width)

	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(chips)-lipgloss.Height(input), 1)

	var body string
	switch a.state.Mode() {
	case session.ModeIdle:
		body = renderCentered(a.width, bodyHeight, GetWelcomeMessage())
	case session.ModeLoading:
		body = renderCentered(a.width, bodyHeight, a.spinner.View()+" "+renderMuted(MsgLoadingBooks))
	case session.ModeError:
		body = renderCentered(a.width, bodyHeight, ErrorMessageStyle.Render("✗ "+MsgFetchFailed))
	case session.ModeEmpty:
		body = renderCentered(a.width, bodyHeight, renderMuted(MsgNoBooks))
	case session.ModeResults:
		body = a.resultList.View()
	}

	return ContentWrapper(a.width, height).Render(lipgloss.JoinVertical(lipgloss.Top, header, chips, input, body))
}

func (a *App) favoritesView(height int) string {
	header := renderHeader("› favorites", fmt.Sprintf("%d saved", a.favorites.Len()), a.width)
	filter := renderInputFrame(a.favFilter.View(), true, a.favFilter.Width)

	var body string
	if a.favorites.Len() == 0 {
		body = renderCentered(a.width, max(height-6, 1), renderMuted(MsgNoFavorites))
	} else if len(a.favoritesList.Items()) == 0 {
		body = renderCentered(a.width, max(height-6, 1), renderMuted(MsgNoResults))
	} else {
		body = a.favoritesList.View()
	}

	return ContentWrapper(a.width, height).Render(lipgloss.JoinVertical(lipgloss.Top, header, filter, body))
}

// statusBar shows a transient status when set, otherwise the fetch outcome
// and the key help for the current view.
func (a *App) statusBar() string {
	var text string
	switch {
	case a.status != "":
		text = statusStyle(a.statusKind).Render(a.status)
	case a.view == ViewBrowse && a.state.Loading():
		text = a.spinner.View() + " " + MsgLoadingBooks
	case a.view == ViewBrowse && a.state.Error():
		text = StatusErrorStyle.Render("✗ " + MsgFetchFailed)
	case a.view == ViewBrowse && a.state.NoResults():
		text = StatusWarnStyle.Render(MsgNoBooks)
	case a.view == ViewBrowse && a.state.Mode() == session.ModeResults:
		text = MsgResultsCount(len(a.state.Results())) + " for “" + truncateEnd(a.criteria.Query(), 40) + "”"
	}

	help := strings.Join(a.keyHandler.GetHelpForCurrentView(), " • ")
	if text != "" {
		text = text + "  " + renderMuted(help)
	} else {
		text = renderMuted(help)
	}
	return StatusBarStyle.Width(a.width).Render(text)
}
