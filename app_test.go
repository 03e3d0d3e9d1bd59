package docpost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appFS() fstest.MapFS {
	return fstest.MapFS{
		"hello.rst":   rstFile("Hello World\n===========\n\n:date: 2011-09-01\n:tags: go\n:summary: first post\n\nSome *text*.\n"),
		"other.rst":   rstFile("Other\n=====\n\n:date: 2011-08-01\n:tags: Go, web\n\nMore.\n"),
		"draft.rst":   rstFile("Draft\n=====\n\n:date: 2012-01-01\n:public: false\n\nSecret.\n"),
		"undated.rst": rstFile("Undated\n=======\n\nno date\n"),
	}
}

func setupTestApp(t *testing.T) *App {
	t.Helper()
	a := New(Config{URL: "https://example.com", Name: "Notes"}, WithStore(setupTestStore(t)))
	n, err := a.Import(context.Background(), appFS())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	return a
}

func get(a *App, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHomeListsPublicPosts(t *testing.T) {
	a := setupTestApp(t)
	rec := get(a, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Hello World")
	assert.Contains(t, body, "Other")
	assert.NotContains(t, body, "Draft")

	rec = get(a, "/?tag=web")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Other")
	assert.NotContains(t, rec.Body.String(), "Hello World")
}

func TestPostPage(t *testing.T) {
	a := setupTestApp(t)
	rec := get(a, "/posts/hello/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Hello World</h1>")
	assert.Contains(t, body, "<em>text</em>")
	assert.Contains(t, body, `href="/posts/other/"`)

	assert.Equal(t, http.StatusNotFound, get(a, "/posts/draft/").Code)
	assert.Equal(t, http.StatusNotFound, get(a, "/posts/missing/").Code)
}

func TestTrailingSlashRedirect(t *testing.T) {
	a := setupTestApp(t)
	rec := get(a, "/posts/hello")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/posts/hello/", rec.Header().Get("Location"))

	rec = get(a, "/posts")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAPI(t *testing.T) {
	a := setupTestApp(t)

	rec := get(a, "/api/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "hello", posts[0].Slug)
	assert.Equal(t, "first post", posts[0].Summary())

	rec = get(a, "/api/posts/other")
	require.Equal(t, http.StatusOK, rec.Code)
	var post Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, []string{"go", "web"}, post.Tags)

	assert.Equal(t, http.StatusNotFound, get(a, "/api/posts/draft").Code)

	rec = get(a, "/api/tags")
	require.Equal(t, http.StatusOK, rec.Code)
	var tags []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	assert.Equal(t, []string{"go", "web"}, tags)
}

func TestFeedAndSitemap(t *testing.T) {
	a := setupTestApp(t)

	rec := get(a, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	feed := rec.Body.String()
	assert.Contains(t, feed, "<title>Notes</title>")
	assert.Contains(t, feed, "<link>https://example.com/posts/hello/</link>")
	assert.Contains(t, feed, "<pubDate>Thu, 01 Sep 2011 00:00:00 +0000</pubDate>")
	assert.Contains(t, feed, "<description>first post</description>")
	assert.NotContains(t, feed, "Draft")

	rec = get(a, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	sitemap := rec.Body.String()
	assert.Contains(t, sitemap, "<loc>https://example.com/</loc>")
	assert.Contains(t, sitemap, "<loc>https://example.com/posts/other/</loc>")
	assert.Contains(t, sitemap, "<lastmod>2012-03-04</lastmod>")
}

func TestHighlightCSS(t *testing.T) {
	rec := get(setupTestApp(t), "/highlight.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.NotEmpty(t, rec.Body.String())
}

func TestImportRemovesStalePosts(t *testing.T) {
	a := setupTestApp(t)
	fsys := appFS()
	delete(fsys, "other.rst")

	n, err := a.Import(context.Background(), fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = a.Store.GetPostAny("other")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, http.StatusNotFound, get(a, "/posts/other/").Code)
}

func TestImportFailsOnBadDate(t *testing.T) {
	a := New(Config{}, WithStore(setupTestStore(t)))
	_, err := a.Import(context.Background(), fstest.MapFS{"bad.rst": rstFile("Bad\n===\n\n:date: 01/09/2011\n")})
	var derr *DateFormatError
	assert.ErrorAs(t, err, &derr)
}

func TestImportKeepsPostsSharingABasename(t *testing.T) {
	a := New(Config{}, WithStore(setupTestStore(t)))
	n, err := a.Import(context.Background(), fstest.MapFS{
		"life/hello.rst": rstFile("Life\n====\n\n:date: 2011-09-01\n:folder: life\n"),
		"tech/hello.rst": rstFile("Tech\n====\n\n:date: 2011-09-01\n:folder: tech\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := a.Store.ListAllPosts()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "life/hello.html", all[0].Destination)
	assert.Equal(t, "hello", all[0].Slug)
	assert.Equal(t, "tech/hello.html", all[1].Destination)
	assert.Equal(t, "tech-hello", all[1].Slug)

	assert.Contains(t, get(a, "/posts/hello/").Body.String(), "<h1>Life</h1>")
	assert.Contains(t, get(a, "/posts/tech-hello/").Body.String(), "<h1>Tech</h1>")
}

func TestImportFailsOnSharedDestination(t *testing.T) {
	a := New(Config{}, WithStore(setupTestStore(t)))
	_, err := a.Import(context.Background(), fstest.MapFS{
		"a/hello.rst": rstFile("Alpha\n=====\n\n:date: 2011-09-01\n"),
		"b/hello.rst": rstFile("Beta\n====\n\n:date: 2011-09-02\n"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hello.html")

	all, err := a.Store.ListAllPosts()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImportNonASCIIBasenames(t *testing.T) {
	a := New(Config{}, WithStore(setupTestStore(t)))
	n, err := a.Import(context.Background(), fstest.MapFS{
		"你好.rst": rstFile("Hello\n=====\n\n:date: 2011-09-01\n"),
		"世界.rst": rstFile("World\n=====\n\n:date: 2011-09-02\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := a.Store.ListAllPosts()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "世界", all[0].Slug)
	assert.Equal(t, "/posts/%E4%B8%96%E7%95%8C/", all[0].Link())
	assert.Equal(t, "你好", all[1].Slug)

	rec := get(a, "/posts/%E4%BD%A0%E5%A5%BD/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Hello</h1>")
	assert.Contains(t, get(a, "/").Body.String(), `href="/posts/%E4%BD%A0%E5%A5%BD/"`)
}
