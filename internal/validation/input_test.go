package validation

import (
	"strings"
	"testing"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"dune", "dune"},
		{"  dune  ", "dune"},
		{"the\tleft\nhand", "the left hand"},
		{"a    b", "a b"},
		{"bell\x07char", "bellchar"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeQuery(tt.input); got != tt.expected {
			t.Errorf("SanitizeQuery(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSanitizeQueryLength(t *testing.T) {
	got := SanitizeQuery(strings.Repeat("é", MaxQueryLength+20))
	if n := len([]rune(got)); n != MaxQueryLength {
		t.Errorf("expected %d runes, got %d", MaxQueryLength, n)
	}
}
