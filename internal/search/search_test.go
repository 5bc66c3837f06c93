package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterTagNames(t *testing.T) {
	res := Filter("app", []string{"app-v1", "base", "app-v2"})

	assert.Equal(t, []bool{true, false, true}, res.Visible)
	assert.Equal(t, []int{0, 2}, res.VisibleIndices())
	assert.Equal(t, "2 of 3", res.Count())
}

func TestFilterEmptyQueryShowsAllWithoutCount(t *testing.T) {
	res := Filter("   ", []string{"a", "b"})

	assert.Equal(t, []bool{true, true}, res.Visible)
	assert.Equal(t, "", res.Count())
}

func TestFilterIsCaseInsensitiveAndTrimmed(t *testing.T) {
	res := Filter("  APP ", []string{"MyApp", "other"})
	assert.Equal(t, []bool{true, false}, res.Visible)
	assert.Equal(t, "1 of 2", res.Count())
}

func TestFilterIgnoresStylingAndIcons(t *testing.T) {
	labels := []string{
		"\x1b[32m● \x1b[0mregistry-one",
		"\uf1b2 box",
		"📦 package",
	}
	assert.Equal(t, "registry-one", DisplayName(labels[0]))
	assert.Equal(t, "box", DisplayName(labels[1]))
	assert.Equal(t, "package", DisplayName(labels[2]))

	// "32" sits in the escape sequence, not in the name.
	res := Filter("32", labels)
	assert.Equal(t, 0, res.Matches)
	assert.Equal(t, "0 of 3", res.Count())
}

func TestFilterGroups(t *testing.T) {
	groups := []Group{
		{Key: "online", Labels: []string{"alpha", "beta"}},
		{Key: "checking", Labels: []string{"gamma"}},
		{Key: "offline", Labels: []string{"alphabet"}, Collapsed: true},
	}

	results, total := FilterGroups("alph", groups)
	require.Len(t, results, 3)

	assert.False(t, results[0].Hidden)
	assert.Equal(t, 1, results[0].Count)
	assert.True(t, results[1].Hidden)
	assert.Equal(t, 0, results[1].Count)
	assert.False(t, results[2].Hidden)
	assert.True(t, results[2].Expanded, "a collapsed group with a match opens")
	assert.Equal(t, "2 of 4", total.Count())
}

func TestFilterGroupsWithoutQueryKeepsCollapse(t *testing.T) {
	groups := []Group{
		{Key: "online", Labels: []string{"alpha", "beta"}},
		{Key: "offline", Labels: []string{"x"}, Collapsed: true},
	}

	results, total := FilterGroups("", groups)
	assert.Equal(t, 2, results[0].Count)
	assert.True(t, results[0].Expanded)
	assert.False(t, results[1].Expanded)
	assert.False(t, results[1].Hidden)
	assert.Equal(t, "", total.Count())
}
