package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateEnd(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"Dune", 10, "Dune"},
		{"Dune Messiah", 5, "Dune…"},
		{"Dune", 0, ""},
		{"Dune", 1, "…"},
		{"Les Misérables", 8, "Les Mis…"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateEnd(tt.in, tt.limit), "%q/%d", tt.in, tt.limit)
	}
}

func TestTruncateMiddle(t *testing.T) {
	assert.Equal(t, "/home/user/f.yaml", truncateMiddle("/home/user/f.yaml", 40))
	assert.Equal(t, "/ho…yaml", truncateMiddle("/home/user/favorites.yaml", 8))
	assert.Equal(t, "…", truncateMiddle("abc", 1))
	assert.Equal(t, "", truncateMiddle("abc", 0))
}
