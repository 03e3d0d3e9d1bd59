package docpost

import (
	"net/url"
	"time"

	"github.com/eringen/docpost/docinfo"
)

// DateLayout is the only accepted format of a post's date field.
const DateLayout = "2006-01-02"

// Post is a normalized blog post assembled from one source file.
// Docinfo fields without a typed counterpart are kept in Meta.
type Post struct {
	Title       string                   `json:"title"`
	Date        time.Time                `json:"date"`
	Tags        []string                 `json:"tags,omitempty"`
	Folder      string                   `json:"folder,omitempty"`
	Author      string                   `json:"author"`
	Public      bool                     `json:"public"`
	Content     string                   `json:"content"`
	Destination string                   `json:"destination"`
	Slug        string                   `json:"slug"`
	Mtime       time.Time                `json:"mtime"`
	Meta        map[string]docinfo.Value `json:"meta,omitempty"`
}

// Link returns the preview URL path of the post.
func (p *Post) Link() string {
	return "/posts/" + url.PathEscape(p.Slug) + "/"
}

// DateString formats Date with DateLayout.
func (p *Post) DateString() string {
	return p.Date.Format(DateLayout)
}

// Summary returns the "summary" docinfo field, if any.
func (p *Post) Summary() string {
	return p.Meta["summary"].String()
}
