package docpost

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/eringen/docpost/highlight"
	"github.com/eringen/docpost/markup"
)

// Config holds all configuration for reading and serving posts.
// It is read-only once handed to a Reader, Site or App.
type Config struct {
	Author     string `mapstructure:"author" validate:"required"`      // Default post author (default "admin")
	ContentDir string `mapstructure:"content_dir" validate:"required"` // Source directory (default "content")
	Workers    int    `mapstructure:"workers" validate:"gte=1,lte=64"` // Concurrent file reads (default 4)

	HighlightStyle string `mapstructure:"highlight_style"` // chroma style (default "github")
	InlineStyles   bool   `mapstructure:"inline_styles"`   // inline highlight styles instead of CSS classes

	Name        string `mapstructure:"name"`                         // Site name (default "Blog")
	URL         string `mapstructure:"url" validate:"omitempty,url"` // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"description"`                  // Site description for RSS and meta tags

	Addr         string        `mapstructure:"addr"`           // Listen address (default ":3000")
	DatabasePath string        `mapstructure:"database_path"`  // SQLite path (default "data/posts.db")
	PostCacheTTL time.Duration `mapstructure:"post_cache_ttl"` // Post cache TTL (default 5min)
}

func (c *Config) setDefaults() {
	if c.Author == "" {
		c.Author = "admin"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.HighlightStyle == "" {
		c.HighlightStyle = "github"
	}
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/posts.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
}

// WithDefaults returns a copy of c with unset fields defaulted.
func (c Config) WithDefaults() Config {
	c.setDefaults()
	return c
}

// Validate checks field constraints after defaults are applied.
func (c Config) Validate() error {
	c.setDefaults()
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("docpost: invalid config: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("docpost: invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads configuration from file (YAML; optional) and DOCPOST_*
// environment variables, applies defaults and validates the result.
func LoadConfig(file string) (Config, error) {
	v := viper.New()

	defaults := Config{}.WithDefaults()
	v.SetDefault("author", defaults.Author)
	v.SetDefault("content_dir", defaults.ContentDir)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("highlight_style", defaults.HighlightStyle)
	v.SetDefault("inline_styles", false)
	v.SetDefault("name", defaults.Name)
	v.SetDefault("url", defaults.URL)
	v.SetDefault("description", "")
	v.SetDefault("addr", defaults.Addr)
	v.SetDefault("database_path", defaults.DatabasePath)
	v.SetDefault("post_cache_ttl", defaults.PostCacheTTL)

	v.SetEnvPrefix("DOCPOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("docpost: read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("docpost: decode config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Highlighter builds the code highlighter described by c.
func (c Config) Highlighter() *highlight.Highlighter {
	c.setDefaults()
	return highlight.New(highlight.Config{
		Style:  c.HighlightStyle,
		Inline: c.InlineStyles,
	})
}

// Renderers returns the markup renderers for every supported source format,
// sharing one highlighter.
func (c Config) Renderers() []markup.Renderer {
	opts := markup.Options{Highlighter: c.Highlighter()}
	return []markup.Renderer{
		markup.NewFieldList(opts),
		markup.NewFrontMatter(opts),
	}
}
