package docpost

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/docpost/markup"
)

// Site reads every supported source file under a content file system.
type Site struct {
	fsys      fs.FS
	cfg       Config
	renderers []markup.Renderer
	slugger   func(string) string
	log       *zap.Logger
}

// SiteOption configures a Site.
type SiteOption func(*Site)

// WithRenderers replaces the renderers chosen per file (default Config.Renderers).
func WithRenderers(rs ...markup.Renderer) SiteOption {
	return func(s *Site) {
		s.renderers = rs
	}
}

// WithSiteLogger sets the logger handed to every Reader.
func WithSiteLogger(l *zap.Logger) SiteOption {
	return func(s *Site) {
		s.log = l
	}
}

// WithSiteSlugger sets the slug function handed to every Reader.
func WithSiteSlugger(fn func(string) string) SiteOption {
	return func(s *Site) {
		s.slugger = fn
	}
}

// NewSite creates a Site over fsys.
func NewSite(fsys fs.FS, cfg Config, opts ...SiteOption) *Site {
	cfg.setDefaults()
	s := &Site{
		fsys:    fsys,
		cfg:     cfg,
		slugger: Slugify,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderers == nil {
		s.renderers = cfg.Renderers()
	}
	return s
}

// Readers returns a Reader for every file a renderer supports, in path order.
// Hidden files and directories are skipped.
func (s *Site) Readers(ctx context.Context) ([]*Reader, error) {
	var readers []*Reader
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		for _, r := range s.renderers {
			if r.Supports(p) {
				readers = append(readers, NewReader(s.fsys, p, s.cfg,
					WithRenderer(r),
					WithSlugger(s.slugger),
					WithLogger(s.log),
				))
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return readers, nil
}

// ReadAll renders every post concurrently, skipping sources without a date.
// Any other error, including *DateFormatError, aborts the batch. Posts are
// ordered by date descending, then by destination.
func (s *Site) ReadAll(ctx context.Context) ([]*Post, error) {
	readers, err := s.Readers(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*Post, len(readers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, r := range readers {
		i, r := i, r
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			post, err := r.Render()
			if errors.Is(err, ErrMissingDate) {
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = post
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	posts := make([]*Post, 0, len(results))
	for _, p := range results {
		if p != nil {
			posts = append(posts, p)
		}
	}
	SortPosts(posts)
	s.log.Info("read posts", zap.Int("posts", len(posts)), zap.Int("files", len(readers)))
	return posts, nil
}

// SortPosts orders posts by date descending, then by destination.
func SortPosts(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Destination < posts[j].Destination
	})
}

// PublicPosts returns the posts whose Public flag is set.
func PublicPosts(posts []*Post) []*Post {
	var out []*Post
	for _, p := range posts {
		if p.Public {
			out = append(out, p)
		}
	}
	return out
}
