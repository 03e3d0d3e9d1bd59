package docpost

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/docpost/views"
)

func (a *App) siteConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

// renderPage writes a templ component as an HTML response with status code.
func renderPage(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func postView(p Post) views.Post {
	return views.Post{
		Title:   p.Title,
		Date:    p.DateString(),
		Tags:    p.Tags,
		Author:  p.Author,
		Summary: p.Summary(),
		Link:    p.Link(),
		Slug:    p.Slug,
		Content: p.Content,
	}
}

func postViews(posts []Post) []views.Post {
	out := make([]views.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, postView(p))
	}
	return out
}

func (a *App) handleHome(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return renderPage(c, http.StatusOK, views.Index(a.siteConfig(), postViews(posts), normalizeTag(tag), tags))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return renderPage(c, http.StatusNotFound, views.NotFound(a.siteConfig()))
		}
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	related := FilterRelatedPosts(post, posts)
	return renderPage(c, http.StatusOK, views.Article(a.siteConfig(), postView(post), postViews(related)))
}

func (a *App) handleAPIPosts(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.QueryParam("tag"))
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []Post{}
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleAPIPost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleAPITags(c echo.Context) error {
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(http.StatusOK, tags)
}

func (a *App) handleHighlightCSS(c echo.Context) error {
	css, err := a.highlighter.CSS()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", []byte(css))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handlePostsRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = renderPage(c, http.StatusNotFound, views.NotFound(a.siteConfig()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.Error("server error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		_ = renderPage(c, code, views.ServerError(a.siteConfig()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
