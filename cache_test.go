package docpost

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostCacheServesStaleUntilInvalidated(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SavePost(testPost("first", "2011-09-01", true, "go")))

	c := NewPostCache(s, time.Hour)
	posts, err := c.ListPosts("")
	require.NoError(t, err)
	require.Len(t, posts, 1)

	require.NoError(t, s.SavePost(testPost("second", "2012-09-01", true, "web")))
	posts, err = c.ListPosts("")
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	c.Invalidate()
	posts, err = c.ListPosts("")
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	tags, err := c.ListTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, tags)
}

func TestPostCacheFilterAndGet(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SavePost(testPost("first", "2011-09-01", true, "go")))
	require.NoError(t, s.SavePost(testPost("hidden", "2011-09-02", false, "go")))

	c := NewPostCache(s, time.Hour)
	tagged, err := c.ListPosts("Go")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "first", tagged[0].Slug)

	got, err := c.GetPost("first")
	require.NoError(t, err)
	assert.Equal(t, "Post first", got.Title)

	_, err = c.GetPost("hidden")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostCacheEmptyStore(t *testing.T) {
	c := NewPostCache(setupTestStore(t), time.Hour)
	posts, err := c.ListPosts("")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostCacheIndexesBySlugAndTag(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SavePost(testPost("old", "2010-01-01", true, "go", "GO ", "web")))
	require.NoError(t, s.SavePost(testPost("new", "2012-01-01", true, "go")))

	c := NewPostCache(s, time.Hour)
	tagged, err := c.ListPosts("go")
	require.NoError(t, err)
	require.Len(t, tagged, 2)
	assert.Equal(t, "new", tagged[0].Slug)
	assert.Equal(t, "old", tagged[1].Slug)

	web, err := c.ListPosts(" Web")
	require.NoError(t, err)
	require.Len(t, web, 1)
	assert.Equal(t, "old", web[0].Slug)

	none, err := c.ListPosts("rust")
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := c.GetPost("old")
	require.NoError(t, err)
	assert.Equal(t, "Post old", got.Title)

	_, err = c.GetPost("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostCacheReloadsAfterTTL(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SavePost(testPost("first", "2011-09-01", true)))

	c := NewPostCache(s, time.Nanosecond)
	_, err := c.GetPost("first")
	require.NoError(t, err)

	require.NoError(t, s.SavePost(testPost("second", "2012-09-01", true)))
	time.Sleep(time.Millisecond)
	got, err := c.GetPost("second")
	require.NoError(t, err)
	assert.Equal(t, "Post second", got.Title)
}
