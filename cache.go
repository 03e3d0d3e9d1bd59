package docpost

import (
	"database/sql"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// postIndex is one load of the public posts with lookups by slug and tag.
// Slices are shared with callers and never modified after load.
type postIndex struct {
	posts  []Post
	tags   []string
	bySlug map[string]int
	byTag  map[string][]Post
}

func newPostIndex(posts []Post, tags []string) *postIndex {
	idx := &postIndex{
		posts:  posts,
		tags:   tags,
		bySlug: make(map[string]int, len(posts)),
		byTag:  make(map[string][]Post),
	}
	if idx.posts == nil {
		idx.posts = []Post{}
	}
	for i, p := range idx.posts {
		// Import keeps slugs unique; on a clash the first listed post wins.
		if _, ok := idx.bySlug[p.Slug]; !ok {
			idx.bySlug[p.Slug] = i
		}
		seen := make(map[string]struct{}, len(p.Tags))
		for _, t := range p.Tags {
			t = normalizeTag(t)
			if _, dup := seen[t]; dup || t == "" {
				continue
			}
			seen[t] = struct{}{}
			idx.byTag[t] = append(idx.byTag[t], p)
		}
	}
	return idx
}

// PostCache is an in-memory TTL cache of the public posts and tags in a Store.
type PostCache struct {
	mu      sync.RWMutex
	index   *postIndex
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) fresh() *postIndex {
	if c.index == nil || time.Since(c.fetched) >= c.ttl {
		return nil
	}
	return c.index
}

// Invalidate drops the loaded index so the next read reloads from the store.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.index = nil
	c.mu.Unlock()
}

// current returns the loaded index, rebuilding it under the write lock when
// it is missing or older than the TTL.
func (c *PostCache) current() (*postIndex, error) {
	c.mu.RLock()
	idx := c.fresh()
	c.mu.RUnlock()
	if idx != nil {
		return idx, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.fresh(); idx != nil {
		return idx, nil
	}
	posts, err := c.store.ListPosts("")
	if err != nil {
		return nil, err
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return nil, err
	}
	c.index = newPostIndex(posts, tags)
	c.fetched = time.Now()
	return c.index, nil
}

// ListPosts returns public posts, optionally filtered by tag.
func (c *PostCache) ListPosts(tag string) ([]Post, error) {
	idx, err := c.current()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return idx.posts, nil
	}
	return idx.byTag[normalizeTag(tag)], nil
}

// ListTags returns all unique tags of public posts.
func (c *PostCache) ListTags() ([]string, error) {
	idx, err := c.current()
	if err != nil {
		return nil, err
	}
	return idx.tags, nil
}

// GetPost returns a single public post by slug.
func (c *PostCache) GetPost(slug string) (Post, error) {
	idx, err := c.current()
	if err != nil {
		return Post{}, err
	}
	i, ok := idx.bySlug[slug]
	if !ok {
		return Post{}, ErrNotFound
	}
	return idx.posts[i], nil
}
