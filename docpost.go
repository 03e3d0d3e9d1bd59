// Package docpost turns structured-text and markdown sources into blog posts.
//
// A Reader assembles one source file into a Post: the markup renderer yields
// the title, body and docinfo block, the docinfo fields are extracted and
// validated, and the file-system derived fields (slug, destination, mtime)
// are filled in. A Site reads a whole content tree; an App stores the posts
// in SQLite and serves a read-only preview over HTTP.
package docpost

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/docpost/highlight"
)

// App wires the store, cache, handlers and middleware of the preview server.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache

	log         *zap.Logger
	highlighter *highlight.Highlighter
	opened      bool
}

// Option configures an App.
type Option func(*App)

// WithStore uses an already opened Store instead of opening Config.DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithAppLogger sets the logger used for requests, imports and server errors.
func WithAppLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.log = l
	}
}

// New creates an App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		log:    zap.NewNop(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	a.highlighter = a.Config.Highlighter()
	return a
}

// Open initializes the store, cache, middleware and routes. It is called by
// Start and Import and may be called more than once.
func (a *App) Open() error {
	if a.opened {
		return nil
	}
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("docpost: init store: %w", err)
		}
		a.Store = store
	}
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)

	a.setupMiddleware()
	a.setupRoutes()
	a.opened = true
	return nil
}

// Import reads every post under fsys and upserts it into the store keyed by
// destination. Posts whose source no longer exists are removed. A post whose
// slug is already taken by an earlier post of the same import is renamed with
// uniqueSlug; two posts with the same destination fail the import. It returns
// the number of posts saved.
func (a *App) Import(ctx context.Context, fsys fs.FS) (int, error) {
	if err := a.Open(); err != nil {
		return 0, err
	}
	posts, err := NewSite(fsys, a.Config, WithSiteLogger(a.log)).ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("docpost: import: %w", err)
	}

	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.Destination]; ok {
			return 0, fmt.Errorf("docpost: import: more than one post writes %s", p.Destination)
		}
		seen[p.Destination] = struct{}{}
	}

	slugs := make(map[string]string, len(posts))
	for _, p := range posts {
		post := *p
		post.Slug = uniqueSlug(post, slugs)
		if post.Slug != p.Slug {
			a.log.Warn("duplicate slug",
				zap.String("slug", p.Slug),
				zap.String("destination", post.Destination),
				zap.String("conflicts_with", slugs[p.Slug]),
				zap.String("renamed", post.Slug))
		}
		slugs[post.Slug] = post.Destination
		if err := a.Store.SavePost(&post); err != nil {
			return 0, fmt.Errorf("docpost: save %s: %w", post.Destination, err)
		}
	}
	stored, err := a.Store.ListAllPosts()
	if err != nil {
		return 0, fmt.Errorf("docpost: import: %w", err)
	}
	for _, p := range stored {
		if _, ok := seen[p.Destination]; ok {
			continue
		}
		if err := a.Store.DeletePost(p.Destination); err != nil {
			return 0, fmt.Errorf("docpost: delete %s: %w", p.Destination, err)
		}
		a.log.Info("removed stale post", zap.String("slug", p.Slug), zap.String("destination", p.Destination))
	}

	a.Cache.Invalidate()
	a.log.Info("imported posts", zap.Int("posts", len(posts)))
	return len(posts), nil
}

// uniqueSlug returns p.Slug, or when another post of the import already holds
// it, the slug prefixed with p's folder and then suffixed with a counter until
// it is free.
func uniqueSlug(p Post, taken map[string]string) string {
	if _, ok := taken[p.Slug]; !ok {
		return p.Slug
	}
	base := p.Slug
	if folder := Slugify(p.Folder); folder != "" {
		base = folder + "-" + p.Slug
	}
	candidate := base
	for n := 2; ; n++ {
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// Start opens the app and serves HTTP on Config.Addr until the server stops.
func (a *App) Start() error {
	if err := a.Open(); err != nil {
		return err
	}
	a.log.Info("serving preview", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/highlight.css", a.handleHighlightCSS)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/posts", handlePostsRedirect)
	e.GET("/posts/:slug/", a.handlePost)

	api := e.Group("/api")
	api.GET("/posts", a.handleAPIPosts)
	api.GET("/posts/:slug", a.handleAPIPost)
	api.GET("/tags", a.handleAPITags)
}

// Close releases the store. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
