package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderChips(t *testing.T) {
	assert.Contains(t, renderChips(nil, 80), "no interests selected")

	out := renderChips([]string{"Fantasy", "Horror"}, 80)
	assert.Contains(t, out, "Fantasy")
	assert.Contains(t, out, "Horror")
	assert.NotContains(t, out, "+")

	narrow := renderChips([]string{"Science Fiction", "Historical Fiction", "Romance"}, 30)
	assert.Contains(t, narrow, "Science Fiction")
	assert.Contains(t, narrow, "+2")
}

func TestRenderHeader(t *testing.T) {
	out := renderHeader("› shelf", "3 saved", 40)
	assert.Contains(t, out, "shelf")
	assert.Contains(t, out, "3 saved")

	assert.NotContains(t, renderHeader("› a very long title indeed", "", 10), "indeed")
}
