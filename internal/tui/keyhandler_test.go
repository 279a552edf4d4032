package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/pders01/shelf/internal/config"
)

func TestKeyHandler_ModifierKey(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Modifier = "alt"
	app := NewApp(cfg, &fakeSearcher{}, WithOpener(&fakeOpener{}))

	assert.NotNil(t, app.keyHandler)
	assert.Equal(t, "alt+", app.keyHandler.modifierKey)

	// ctrl+t is not bound under the alt modifier, so it reaches the input.
	app.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, ViewBrowse, app.view)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t"), Alt: true})
	assert.Equal(t, ViewInterests, app.view)
}

func TestKeyHandler_ViewToggles(t *testing.T) {
	tests := []struct {
		name     string
		from     View
		msg      tea.KeyMsg
		expected View
	}{
		{name: "browse to interests", from: ViewBrowse, msg: tea.KeyMsg{Type: tea.KeyCtrlT}, expected: ViewInterests},
		{name: "interests back to browse", from: ViewInterests, msg: tea.KeyMsg{Type: tea.KeyCtrlT}, expected: ViewBrowse},
		{name: "browse to favorites", from: ViewBrowse, msg: tea.KeyMsg{Type: tea.KeyCtrlL}, expected: ViewFavorites},
		{name: "favorites back to browse", from: ViewFavorites, msg: tea.KeyMsg{Type: tea.KeyCtrlL}, expected: ViewBrowse},
		{name: "esc leaves interests", from: ViewInterests, msg: tea.KeyMsg{Type: tea.KeyEsc}, expected: ViewBrowse},
		{name: "esc leaves favorites", from: ViewFavorites, msg: tea.KeyMsg{Type: tea.KeyEsc}, expected: ViewBrowse},
		{name: "esc stays on browse", from: ViewBrowse, msg: tea.KeyMsg{Type: tea.KeyEsc}, expected: ViewBrowse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, &fakeSearcher{})
			app.view = tt.from

			model, _ := app.Update(tt.msg)
			assert.Equal(t, tt.expected, model.(*App).view)
		})
	}
}

func TestKeyHandler_QOnlyQuitsOutsideInput(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{})

	_, cmd := app.Update(key("q"))
	assert.Equal(t, "q", app.input.Value())
	if cmd != nil {
		// Only the debounce tick may be scheduled.
		assert.Equal(t, uint64(1), app.debounceSeq)
	}

	app.view = ViewInterests
	_, cmd = app.Update(key("q"))
	if assert.NotNil(t, cmd) {
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestKeyHandler_UpFromFirstResultFocusesInput(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{books: testBooks()})
	loadResults(t, app)

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, app.inputFocused)

	app.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.True(t, app.inputFocused)
}

func TestKeyHandler_TabStaysInInputWithoutResults(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{})

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, app.inputFocused)
}

func TestKeyHandler_ClearInterests(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{})
	app.criteria.ToggleInterest(app.interests[0].Label)
	app.view = ViewInterests

	_, cmd := app.Update(key("c"))
	assert.NotNil(t, cmd)
	assert.Empty(t, app.criteria.Interests())
	assert.True(t, app.state.Loading())

	_, cmd = app.Update(key("c"))
	assert.Nil(t, cmd, "clearing an empty selection does not refetch")
}

func TestKeyHandler_HelpPerView(t *testing.T) {
	app := newTestApp(t, &fakeSearcher{books: testBooks()})

	help := app.keyHandler.GetHelpForCurrentView()
	assert.Contains(t, help, "ctrl+t: interests")
	assert.NotContains(t, help, "ctrl+f: favorite")

	loadResults(t, app)
	help = app.keyHandler.GetHelpForCurrentView()
	assert.Contains(t, help, "ctrl+f: favorite")
	assert.Contains(t, help, "ctrl+o: open")

	app.view = ViewFavorites
	assert.Contains(t, app.keyHandler.GetHelpForCurrentView(), "ctrl+e: export")

	app.view = ViewDetail
	assert.Contains(t, app.keyHandler.GetHelpForCurrentView(), "esc: close")

	app.view = View(99)
	assert.Empty(t, app.keyHandler.GetHelpForCurrentView())
}
