package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// esc escapes s for HTML text and attribute values.
func esc(s string) string {
	return templ.EscapeString(s)
}

func layout(cfg SiteConfig, meta PageMeta, jsonLD string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := cfg.Name
		if meta.Title != "" {
			title = meta.Title + " | " + cfg.Name
		}
		description := meta.Description
		if description == "" {
			description = cfg.Description
		}
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<meta name="description" content="%s">
<meta property="og:title" content="%s">
<meta property="og:type" content="%s">
<meta property="og:url" content="%s">
<link rel="canonical" href="%s">
<link rel="alternate" type="application/rss+xml" title="%s" href="/feed.xml">
<link rel="stylesheet" href="/highlight.css">
<script type="application/ld+json">%s</script>
</head>
<body>
<header><a href="/">%s</a></header>
<main>
`, esc(title), esc(description), esc(title), esc(meta.OGType), esc(meta.URL), esc(meta.URL),
			esc(cfg.Name), jsonLD, esc(cfg.Name)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>\n</body>\n</html>\n")
		return err
	})
}

func tagLinks(w io.Writer, tags []string, active string) error {
	if len(tags) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, `<ul class="tags">`); err != nil {
		return err
	}
	for _, t := range tags {
		class := "tag"
		if t == active {
			class += " active"
		}
		if _, err := fmt.Fprintf(w, `<li><a class="%s" href="/?tag=%s">%s</a></li>`, class, esc(PathEscape(t)), esc(t)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</ul>\n")
	return err
}

func postList(w io.Writer, posts []Post) error {
	if _, err := io.WriteString(w, `<ul class="posts">`+"\n"); err != nil {
		return err
	}
	for _, p := range posts {
		if _, err := fmt.Fprintf(w, `<li><time datetime="%s">%s</time> <a href="%s">%s</a>`,
			esc(p.Date), esc(p.Date), esc(p.Link), esc(p.Title)); err != nil {
			return err
		}
		if p.Summary != "" {
			if _, err := fmt.Fprintf(w, `<p>%s</p>`, esc(p.Summary)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</li>\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</ul>\n")
	return err
}

// Index lists posts, optionally filtered by activeTag, with the tag cloud.
func Index(cfg SiteConfig, posts []Post, activeTag string, tags []string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := tagLinks(w, tags, activeTag); err != nil {
			return err
		}
		if len(posts) == 0 {
			_, err := io.WriteString(w, "<p>No posts yet.</p>\n")
			return err
		}
		return postList(w, posts)
	})
	meta := PageMeta{URL: buildURL(cfg.URL), OGType: "website"}
	return layout(cfg, meta, WebsiteJsonLD(cfg), body)
}

// Article renders one post with links to related posts.
func Article(cfg SiteConfig, post Post, related []Post) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<article>\n<h1>%s</h1>\n<p class=\"byline\"><time datetime=\"%s\">%s</time> by %s</p>\n",
			esc(post.Title), esc(post.Date), esc(post.Date), esc(post.Author)); err != nil {
			return err
		}
		if err := tagLinks(w, post.Tags, ""); err != nil {
			return err
		}
		if err := templ.Raw(post.Content).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</article>\n"); err != nil {
			return err
		}
		if len(related) == 0 {
			return nil
		}
		if _, err := io.WriteString(w, "<h2>Related</h2>\n"); err != nil {
			return err
		}
		return postList(w, related)
	})
	meta := PageMeta{
		Title:       post.Title,
		Description: post.Summary,
		URL:         buildURL(cfg.URL, "posts", post.Slug),
		OGType:      "article",
	}
	return layout(cfg, meta, BlogPostingJsonLD(cfg, post), body)
}

func message(cfg SiteConfig, title, text string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<h1>%s</h1>\n<p>%s</p>\n", esc(title), esc(text))
		return err
	})
	return layout(cfg, PageMeta{Title: title, OGType: "website"}, WebsiteJsonLD(cfg), body)
}

// NotFound is the 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	return message(cfg, "Not found", "The page you are looking for does not exist.")
}

// ServerError is the 5xx page.
func ServerError(cfg SiteConfig) templ.Component {
	return message(cfg, "Server error", "Something went wrong. Please try again later.")
}
