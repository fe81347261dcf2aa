package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCacheRoundTrip(t *testing.T) {
	cache, err := newScoreCache(t.TempDir(), "model-a")
	require.NoError(t, err)

	_, ok := cache.get("hello")
	assert.False(t, ok)

	want := []float32{0.25, -1.5}
	cache.put("hello", want)

	got, ok := cache.get("hello")
	require.True(t, ok)
	assert.Equal(t, want, got)

	// Mutating the returned slice must not poison the cache.
	got[0] = 99
	again, ok := cache.get("hello")
	require.True(t, ok)
	assert.Equal(t, want, again)
}

func TestScoreCacheDiskReload(t *testing.T) {
	dir := t.TempDir()
	first, err := newScoreCache(dir, "model-a")
	require.NoError(t, err)
	first.put("persisted", []float32{1, 2, 3})

	second, err := newScoreCache(dir, "model-a")
	require.NoError(t, err)
	got, ok := second.get("persisted")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, got)
}

func TestScoreCacheKeyedByModel(t *testing.T) {
	dir := t.TempDir()
	a, err := newScoreCache(dir, "model-a")
	require.NoError(t, err)
	a.put("shared text", []float32{1})

	b, err := newScoreCache(dir, "model-b")
	require.NoError(t, err)
	_, ok := b.get("shared text")
	assert.False(t, ok)
}

func TestScoreCacheRejectsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	cache, err := newScoreCache(dir, "model-a")
	require.NoError(t, err)

	key := cacheKey("broken", "model-a")
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".bin"), []byte{8, 0, 0, 0, 1}, 0o644))

	_, ok := cache.get("broken")
	assert.False(t, ok)
}
