package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/cache"
)

func TestClearAllForgetsEveryKey(t *testing.T) {
	t.Parallel()

	store := cache.New()
	keys := []cache.Key{
		{Registry: "a", Repository: "x"},
		{Registry: "a", Repository: "y/z"},
		{Registry: "b", Repository: "x"},
	}
	for _, key := range keys {
		store.Put(key.Registry, key.Repository, cache.Entry{Info: api.RepositoryInfo{Name: key.Repository}})
	}
	require.Equal(t, len(keys), store.Len())

	store.ClearAll()

	for _, key := range keys {
		_, ok := store.Get(key.Registry, key.Repository)
		assert.False(t, ok, key.String())
	}
	assert.Zero(t, store.Len())
}

func TestClearForKeepsOtherRegistries(t *testing.T) {
	t.Parallel()

	store := cache.New()
	store.Put("a", "x", cache.Entry{})
	store.Put("a", "y", cache.Entry{})
	store.Put("ab", "x", cache.Entry{})

	store.ClearFor("a")

	_, ok := store.Get("a", "x")
	assert.False(t, ok)
	_, ok = store.Get("ab", "x")
	assert.True(t, ok, "registry sharing a prefix must survive")
	assert.Equal(t, 1, store.Len())
}

func TestSlashNamesDoNotCollide(t *testing.T) {
	t.Parallel()

	store := cache.New()
	store.Put("a/b", "c", cache.Entry{Info: api.RepositoryInfo{TagsCount: 1}})
	store.Put("a", "b/c", cache.Entry{Info: api.RepositoryInfo{TagsCount: 2}})

	first, ok := store.Get("a/b", "c")
	require.True(t, ok)
	second, ok := store.Get("a", "b/c")
	require.True(t, ok)
	assert.Equal(t, 1, first.Info.TagsCount)
	assert.Equal(t, 2, second.Info.TagsCount)
}

func TestPutUpgradesInPlace(t *testing.T) {
	t.Parallel()

	store := cache.New()
	store.Put("a", "x", cache.Entry{Info: api.RepositoryInfo{Name: "x", TagsCount: 15}, ManyTags: true})

	size := int64(10)
	store.Put("a", "x", cache.Entry{Info: api.RepositoryInfo{Name: "x", TagsCount: 15, TotalSize: &size, IsEstimate: true}})

	entry, ok := store.Get("a", "x")
	require.True(t, ok)
	assert.True(t, entry.Complete())
	assert.True(t, entry.Info.IsEstimate)
	assert.Equal(t, 1, store.Len())

	store.Delete("a", "x")
	assert.Zero(t, store.Len())
}
