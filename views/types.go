package views

// SiteConfig holds the site-wide settings every page is rendered with.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Post is the view model of an assembled post.
type Post struct {
	Title   string
	Date    string
	Tags    []string
	Author  string
	Summary string
	Link    string
	Slug    string
	Content string // rendered HTML, written without escaping
}
