package docpost

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/docpost/docinfo"
	"github.com/eringen/docpost/markup"
)

// Reader assembles one source file into a Post. The post is built on the
// first successful Render and cached; a Reader may be shared between
// goroutines.
type Reader struct {
	fsys     fs.FS
	path     string
	author   string
	renderer markup.Renderer
	slugger  func(string) string
	log      *zap.Logger

	mu   sync.Mutex
	post *Post
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithRenderer sets the markup renderer (default: a field-list renderer
// built from the Reader's Config).
func WithRenderer(r markup.Renderer) ReaderOption {
	return func(rd *Reader) {
		rd.renderer = r
	}
}

// WithSlugger sets the function deriving a slug from the file basename
// (default Slugify).
func WithSlugger(fn func(string) string) ReaderOption {
	return func(rd *Reader) {
		rd.slugger = fn
	}
}

// WithLogger sets the logger (default zap.NewNop()).
func WithLogger(l *zap.Logger) ReaderOption {
	return func(rd *Reader) {
		rd.log = l
	}
}

// NewReader creates a Reader for the slash-separated path inside fsys.
func NewReader(fsys fs.FS, name string, cfg Config, opts ...ReaderOption) *Reader {
	cfg.setDefaults()
	r := &Reader{
		fsys:    fsys,
		path:    path.Clean(strings.TrimPrefix(name, "/")),
		author:  cfg.Author,
		slugger: Slugify,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.renderer == nil {
		r.renderer = markup.NewFieldList(markup.Options{Highlighter: cfg.Highlighter()})
	}
	return r
}

// Path returns the source path inside the Reader's file system.
func (r *Reader) Path() string {
	return r.path
}

// Supports reports whether the Reader's renderer accepts its source file.
func (r *Reader) Supports() bool {
	return r.renderer.Supports(r.path)
}

// Basename returns the file name without directory and extension.
func (r *Reader) Basename() string {
	base := path.Base(r.path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Render reads, renders and assembles the post. Later calls return the same
// *Post without touching the file again. A source without a date logs an
// error and returns an error wrapping ErrMissingDate; a malformed date
// returns *DateFormatError.
func (r *Reader) Render() (*Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.post != nil {
		return r.post, nil
	}

	r.log.Info("read", zap.String("path", r.path))
	source, err := fs.ReadFile(r.fsys, r.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	info, err := fs.Stat(r.fsys, r.path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", r.path, err)
	}

	parts, err := r.renderer.Publish(source)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", r.path, err)
	}
	table := parts.Table
	if table == nil {
		table, err = docinfo.Extract(parts.Docinfo)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.path, err)
		}
	}

	post, err := r.assemble(parts, table)
	if err != nil {
		return nil, err
	}
	post.Mtime = info.ModTime()
	post.Slug = r.slugger(r.Basename())
	post.Destination = r.Basename() + ".html"
	if post.Folder != "" {
		post.Destination = path.Join(post.Folder, post.Destination)
	}

	r.post = post
	return post, nil
}

// assemble validates the docinfo fields and builds the Post from them and
// the rendered parts.
func (r *Reader) assemble(parts markup.Parts, table docinfo.Table) (*Post, error) {
	fields := table.Map()

	date, ok := fields["date"]
	if !ok || date.IsZero() {
		r.log.Error("no create date", zap.String("path", r.path))
		return nil, fmt.Errorf("%s: %w", r.path, ErrMissingDate)
	}
	created, err := time.Parse(DateLayout, date.String())
	if err != nil {
		return nil, &DateFormatError{Path: r.path, Value: date.String(), Err: err}
	}

	post := &Post{
		Title:   parts.Title,
		Content: parts.Body,
		Date:    created,
		Public:  true,
		Meta:    make(map[string]docinfo.Value),
	}
	for key, value := range fields {
		switch key {
		case "date", "title":
		case "tags":
			post.Tags = tagList(value)
		case "folder":
			post.Folder = cleanFolder(value)
		case "author":
			post.Author = value.String()
		case "public":
			// Only the exact string "false" unpublishes a post.
			post.Public = value.List || value.Text != "false"
		default:
			post.Meta[key] = value
		}
	}
	if post.Author == "" {
		post.Author = r.author
	}
	return post, nil
}

func tagList(v docinfo.Value) []string {
	if v.List {
		return FilterEmpty(v.Strings())
	}
	return FilterEmpty(strings.Split(v.Text, ","))
}

// cleanFolder turns a folder field into a relative slash path that stays
// inside the output root. List items are joined as path segments, and ".."
// segments cannot climb above the root.
func cleanFolder(v docinfo.Value) string {
	segments := FilterEmpty(v.Strings())
	for i, seg := range segments {
		segments[i] = strings.ReplaceAll(seg, "\\", "/")
	}
	return strings.TrimPrefix(path.Clean("/"+path.Join(segments...)), "/")
}
