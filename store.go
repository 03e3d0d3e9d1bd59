package docpost

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/docpost/docinfo"
)

// Store wraps a SQLite database holding assembled posts.
type Store struct {
	db *sql.DB
}

const postColumns = `slug, title, date, tags, folder, author, public, content, destination, mtime, meta`

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the preview server read while an import writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    tags TEXT NOT NULL,
    folder TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL,
    public INTEGER NOT NULL DEFAULT 1,
    content TEXT NOT NULL,
    destination TEXT PRIMARY KEY,
    mtime INTEGER NOT NULL DEFAULT 0,
    meta TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS posts_date ON posts (date DESC);
CREATE INDEX IF NOT EXISTS posts_slug ON posts (slug);
`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var (
		p                Post
		date, tags, meta string
		public           int
		mtime            int64
	)
	if err := row.Scan(&p.Slug, &p.Title, &date, &tags, &p.Folder, &p.Author, &public, &p.Content, &p.Destination, &mtime, &meta); err != nil {
		return Post{}, err
	}
	created, err := time.Parse(DateLayout, date)
	if err != nil {
		return Post{}, fmt.Errorf("post %s: stored date %q: %w", p.Slug, date, err)
	}
	p.Date = created
	p.Tags = ParseTags(tags)
	p.Public = public == 1
	p.Mtime = time.Unix(mtime, 0).UTC()
	if err := json.Unmarshal([]byte(meta), &p.Meta); err != nil {
		return Post{}, fmt.Errorf("post %s: stored meta: %w", p.Slug, err)
	}
	return p, nil
}

func (s *Store) queryPosts(query string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts returns all public posts ordered by date descending.
// If tag is non-empty, results are filtered to posts carrying that tag.
func (s *Store) ListPosts(tag string) ([]Post, error) {
	if tag == "" {
		return s.queryPosts(`SELECT ` + postColumns + ` FROM posts WHERE public = 1 ORDER BY date DESC, destination ASC`)
	}
	return s.queryPosts(`SELECT `+postColumns+` FROM posts WHERE public = 1 AND instr(tags, ',' || ? || ',') > 0 ORDER BY date DESC, destination ASC`, normalizeTag(tag))
}

// ListAllPosts returns every post, public or not, ordered by date descending.
func (s *Store) ListAllPosts() ([]Post, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts ORDER BY date DESC, destination ASC`)
}

// ListTags returns a sorted, deduplicated slice of the tags of public posts.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE public = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetPost returns a single public post by slug. When several posts share the
// slug the one with the lowest destination is returned.
func (s *Store) GetPost(slug string) (Post, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND public = 1 ORDER BY destination LIMIT 1`, slug))
}

// GetPostAny returns a post by slug regardless of its public flag.
func (s *Store) GetPostAny(slug string) (Post, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? ORDER BY destination LIMIT 1`, slug))
}

// SavePost upserts a post keyed by destination. Tags are stored lower-cased.
func (s *Store) SavePost(p *Post) error {
	normalized := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = normalizeTag(t); t != "" {
			normalized = append(normalized, t)
		}
	}
	tagString := "," + strings.Join(normalized, ",") + ","
	meta := p.Meta
	if meta == nil {
		meta = map[string]docinfo.Value{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("post %s: encode meta: %w", p.Slug, err)
	}
	public := 0
	if p.Public {
		public = 1
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, p.Title, p.DateString(), tagString, p.Folder, p.Author, public, p.Content, p.Destination, p.Mtime.Unix(), string(metaJSON))
	return err
}

// DeletePost removes the post written to destination.
func (s *Store) DeletePost(destination string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE destination = ?`, destination)
	return err
}
