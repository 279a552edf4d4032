package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultInterests(t *testing.T) {
	interests, err := DefaultInterests()
	require.NoError(t, err)
	require.NotEmpty(t, interests)

	seen := make(map[string]bool)
	for _, in := range interests {
		assert.NotEmpty(t, in.Label)
		assert.Contains(t, []string{"fiction", "nonfiction"}, in.Group, "interest %q", in.Label)
		assert.False(t, seen[in.Label], "duplicate interest %q", in.Label)
		seen[in.Label] = true
	}
	assert.True(t, seen["Fantasy"])
}

func TestInterests_Override(t *testing.T) {
	interests, err := Interests([]string{"Cooking", " ", "cooking", "Travel"})
	require.NoError(t, err)

	require.Len(t, interests, 2)
	assert.Equal(t, Interest{Label: "Cooking", Group: "custom"}, interests[0])
	assert.Equal(t, Interest{Label: "Travel", Group: "custom"}, interests[1])
}

func TestInterests_NoOverride(t *testing.T) {
	want, err := DefaultInterests()
	require.NoError(t, err)

	got, err := Interests(nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
