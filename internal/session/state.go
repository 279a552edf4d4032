package session

import (
	"github.com/pders01/shelf/internal/catalog"
)

// Mode is the active render mode of the result area.
type Mode int

const (
	ModeIdle Mode = iota
	ModeLoading
	ModeResults
	ModeEmpty
	ModeError
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeLoading:
		return "loading"
	case ModeResults:
		return "results"
	case ModeEmpty:
		return "empty"
	case ModeError:
		return "error"
	default:
		return "unknown"
	}
}

// State holds the outcome of the latest fetch and the open detail drawer.
// Exactly one mode is active at a time; results are only populated in
// ModeResults.
type State struct {
	mode     Mode
	err      error
	results  []catalog.BookSummary
	selected *catalog.BookSummary
	seq      uint64
}

// Begin enters ModeLoading for a new fetch and returns its sequence number.
// Results stay visible underneath until the fetch resolves.
func (s *State) Begin() uint64 {
	s.seq++
	s.mode = ModeLoading
	s.err = nil
	return s.seq
}

// Resolve applies the outcome of fetch seq. Outcomes of superseded fetches
// are ignored and Resolve reports false.
func (s *State) Resolve(seq uint64, books []catalog.BookSummary, err error) bool {
	if seq != s.seq || s.mode != ModeLoading {
		return false
	}

	switch {
	case err != nil:
		s.mode = ModeError
		s.err = err
		s.results = nil
	case len(books) == 0:
		s.mode = ModeEmpty
		s.results = nil
	default:
		s.mode = ModeResults
		s.results = books
	}
	return true
}

// Cancel abandons the in-flight fetch, if any, so its outcome is ignored.
// The mode falls back to what the current results imply.
func (s *State) Cancel() {
	if s.mode != ModeLoading {
		return
	}
	s.seq++
	if len(s.results) > 0 {
		s.mode = ModeResults
	} else {
		s.mode = ModeIdle
	}
}

func (s *State) Mode() Mode                     { return s.mode }
func (s *State) Seq() uint64                    { return s.seq }
func (s *State) Err() error                     { return s.err }
func (s *State) Results() []catalog.BookSummary { return s.results }

func (s *State) Loading() bool   { return s.mode == ModeLoading }
func (s *State) NoResults() bool { return s.mode == ModeEmpty }
func (s *State) Error() bool     { return s.mode == ModeError }

// Select opens the detail drawer on book, replacing any open one.
func (s *State) Select(book catalog.BookSummary) {
	b := book
	s.selected = &b
}

// Close closes the detail drawer. Results are untouched.
func (s *State) Close() {
	s.selected = nil
}

// Selected returns the book shown in the drawer.
func (s *State) Selected() (catalog.BookSummary, bool) {
	if s.selected == nil {
		return catalog.BookSummary{}, false
	}
	return *s.selected, true
}
