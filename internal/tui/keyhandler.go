package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/shelf/internal/catalog"
	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/debuglog"
	"github.com/pders01/shelf/internal/media"
	"github.com/pders01/shelf/internal/session"
	"github.com/pders01/shelf/internal/validation"
)

// cachePurger is implemented by searchers that memoize responses.
type cachePurger interface {
	PurgeCache()
}

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
	bindings    config.KeyBindings
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey, bindings: cfg.Keys.Bindings}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if key == "q" {
		return kh.quit()
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewBrowse:
		return kh.app.inputFocused
	case ViewFavorites:
		return kh.app.favFilter.Focused()
	default:
		return false
	}
}

// handleCustomKeys handles the modifier actions, which work in every view
// including while typing.
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", kh.modifierKey + kh.bindings.Quit:
		model, cmd := kh.quit()
		return model, cmd, true
	case kh.bindings.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.modifierKey + kh.bindings.Interests:
		model, cmd := kh.toggleInterestsView()
		return model, cmd, true
	case kh.modifierKey + kh.bindings.Favorites:
		model, cmd := kh.toggleFavoritesView()
		return model, cmd, true
	case kh.modifierKey + kh.bindings.ToggleFavorite:
		if book, ok := kh.app.selectedBook(); ok {
			return kh.app, kh.app.toggleFavorite(book), true
		}
		return kh.app, nil, true
	case kh.modifierKey + kh.bindings.Open:
		if book, ok := kh.app.selectedBook(); ok {
			return kh.app, kh.app.openURL(media.BookURL(kh.config.Catalog.WorksURL, book.ID)), true
		}
		return kh.app, nil, true
	case kh.modifierKey + kh.bindings.Export:
		if kh.app.favorites.Len() == 0 {
			kh.app.setStatus(MsgNoFavorites, StatusWarn)
			return kh.app, nil, true
		}
		kh.app.setStatus(MsgExporting, StatusInfo)
		return kh.app, kh.app.exportFavorites(), true
	case kh.modifierKey + kh.bindings.Refresh:
		if p, ok := kh.app.client.(cachePurger); ok {
			p.PurgeCache()
		}
		kh.app.clearStatus()
		return kh.app, kh.app.startFetch(), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewBrowse:
		return kh.handleQueryInput(msg)
	case ViewFavorites:
		return kh.handleFilterInput(msg)
	default:
		return kh.app, nil
	}
}

// handleQueryInput edits the free-text query. Edits are debounced, enter
// fetches right away.
func (kh *KeyHandler) handleQueryInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// Invalidate any pending debounce so it does not fetch twice.
		kh.app.debounceSeq++
		kh.app.criteria.SetText(validation.SanitizeQuery(kh.app.input.Value()))
		return kh.app, kh.app.startFetch()
	case "tab", "down":
		if kh.app.state.Mode() == session.ModeResults && len(kh.app.resultList.Items()) > 0 {
			kh.app.input.Blur()
			kh.app.inputFocused = false
		}
		return kh.app, nil
	}

	var cmd tea.Cmd
	kh.app.input, cmd = kh.app.input.Update(msg)

	if kh.app.criteria.SetText(validation.SanitizeQuery(kh.app.input.Value())) {
		return kh.app, tea.Batch(cmd, kh.app.scheduleFetch())
	}
	return kh.app, cmd
}

func (kh *KeyHandler) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "up", "down", "pgup", "pgdown":
		kh.app.favoritesList, cmd = kh.app.favoritesList.Update(msg)
		return kh.app, cmd
	case "enter":
		if i, ok := kh.app.favoritesList.SelectedItem().(bookItem); ok {
			return kh.openDetail(i.book)
		}
		return kh.app, nil
	}

	prev := kh.app.favFilter.Value()
	kh.app.favFilter, cmd = kh.app.favFilter.Update(msg)
	if kh.app.favFilter.Value() != prev {
		return kh.app, tea.Batch(cmd, kh.app.filterFavorites(kh.app.favFilter.Value()))
	}
	return kh.app, cmd
}

// delegateToCharm lets the focused widget handle keys we don't intercept.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewBrowse:
		switch msg.String() {
		case "tab", "shift+tab", "/", "i":
			return kh.focusInput()
		case "up":
			if kh.app.resultList.Index() == 0 {
				return kh.focusInput()
			}
		case "enter":
			if book, ok := kh.app.selectedBook(); ok {
				return kh.openDetail(book)
			}
			return kh.app, nil
		}
		kh.app.resultList, cmd = kh.app.resultList.Update(msg)
		return kh.app, cmd

	case ViewInterests:
		switch msg.String() {
		case "enter", " ":
			if i, ok := kh.app.interestList.SelectedItem().(interestItem); ok {
				return kh.toggleInterest(i.interest)
			}
			return kh.app, nil
		case "c":
			if kh.app.criteria.ClearInterests() {
				kh.app.refreshInterestItems()
				return kh.app, kh.app.startFetch()
			}
			return kh.app, nil
		}
		kh.app.interestList, cmd = kh.app.interestList.Update(msg)
		return kh.app, cmd

	case ViewDetail:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// toggleInterest refetches immediately; tag changes are not debounced.
func (kh *KeyHandler) toggleInterest(in catalog.Interest) (tea.Model, tea.Cmd) {
	kh.app.criteria.ToggleInterest(in.Label)
	kh.app.refreshInterestItems()
	return kh.app, kh.app.startFetch()
}

func (kh *KeyHandler) focusInput() (tea.Model, tea.Cmd) {
	kh.app.inputFocused = true
	return kh.app, kh.app.input.Focus()
}

// openDetail shows book in the drawer, replacing any book already open.
func (kh *KeyHandler) openDetail(book catalog.BookSummary) (tea.Model, tea.Cmd) {
	kh.app.state.Select(book)
	if kh.app.view != ViewDetail {
		kh.app.previousView = kh.app.view
	}
	kh.app.view = ViewDetail
	kh.app.viewport.SetContent(renderMuted(MsgLoadingDetail))
	return kh.app, kh.app.renderDetail(book)
}

func (kh *KeyHandler) toggleInterestsView() (tea.Model, tea.Cmd) {
	if kh.app.view == ViewInterests {
		kh.app.view = ViewBrowse
		return kh.app, nil
	}
	kh.app.state.Close()
	kh.app.view = ViewInterests
	return kh.app, nil
}

func (kh *KeyHandler) toggleFavoritesView() (tea.Model, tea.Cmd) {
	if kh.app.view == ViewFavorites {
		kh.app.favFilter.Blur()
		kh.app.view = ViewBrowse
		return kh.app, nil
	}
	kh.app.state.Close()
	kh.app.view = ViewFavorites
	kh.app.refreshFavoriteItems(nil)
	kh.app.favFilter.Reset()
	return kh.app, kh.app.favFilter.Focus()
}

// navigateBack closes the drawer or leaves the current overlay. On the browse
// view it cancels a fetch in flight.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewDetail:
		kh.app.state.Close()
		kh.app.view = kh.app.previousView
		if kh.app.view == ViewDetail {
			kh.app.view = ViewBrowse
		}
		return kh.app, nil

	case ViewInterests:
		kh.app.view = ViewBrowse
		return kh.app, nil

	case ViewFavorites:
		kh.app.favFilter.Blur()
		kh.app.view = ViewBrowse
		return kh.app, nil

	default:
		if kh.app.state.Loading() {
			if kh.app.cancelFetch != nil {
				kh.app.cancelFetch()
				kh.app.cancelFetch = nil
			}
			kh.app.state.Cancel()
			kh.app.setStatus(MsgCanceled, StatusWarn)
			debuglog.Debugf("fetch canceled by user")
			return kh.app, nil
		}
		if !kh.app.inputFocused {
			return kh.focusInput()
		}
		return kh.app, nil
	}
}

func (kh *KeyHandler) quit() (tea.Model, tea.Cmd) {
	kh.app.shutdown()
	return kh.app, tea.Quit
}

// GetHelpForCurrentView returns our custom help text; the bubbles widgets
// document their own navigation.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	m := kh.modifierKey
	b := kh.bindings

	switch kh.app.view {
	case ViewBrowse:
		help := []string{m + b.Interests + ": interests", m + b.Favorites + ": favorites", m + b.Refresh + ": refresh"}
		if kh.app.state.Mode() == session.ModeResults {
			help = append(help, m+b.ToggleFavorite+": favorite", m+b.Open+": open")
		}
		return append(help, m+b.Quit+": quit")

	case ViewInterests:
		return []string{"enter: toggle", "c: clear", b.Back + ": back"}

	case ViewDetail:
		return []string{m + b.ToggleFavorite + ": favorite", m + b.Open + ": open", b.Back + ": close"}

	case ViewFavorites:
		return []string{"enter: details", m + b.ToggleFavorite + ": remove", m + b.Export + ": export", b.Back + ": back"}

	default:
		return []string{}
	}
}
