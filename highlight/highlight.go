// Package highlight renders source snippets as highlighted HTML with chroma.
package highlight

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Variant is a named formatter flavour selectable per code block,
// e.g. the "linenos" flag of a sourcecode directive.
type Variant struct {
	Name        string
	LineNumbers bool
}

// Config configures a Highlighter. The zero value uses the "github" style,
// CSS classes and a single "linenos" variant.
type Config struct {
	Style    string    // chroma style name (default "github")
	Inline   bool      // emit inline styles instead of CSS classes
	Variants []Variant // selectable variants, in priority order
}

func (c *Config) setDefaults() {
	if c.Style == "" {
		c.Style = "github"
	}
	if c.Variants == nil {
		c.Variants = []Variant{{Name: "linenos", LineNumbers: true}}
	}
}

// Highlighter formats code blocks. It holds no mutable state after New and is
// safe for concurrent use.
type Highlighter struct {
	style    *chroma.Style
	base     *chromahtml.Formatter
	variants []Variant
	formats  map[string]*chromahtml.Formatter
}

// New builds a Highlighter from cfg.
func New(cfg Config) *Highlighter {
	cfg.setDefaults()
	h := &Highlighter{
		style:    styles.Get(cfg.Style),
		base:     chromahtml.New(chromahtml.WithClasses(!cfg.Inline)),
		variants: append([]Variant(nil), cfg.Variants...),
		formats:  make(map[string]*chromahtml.Formatter, len(cfg.Variants)),
	}
	for _, v := range cfg.Variants {
		h.formats[v.Name] = chromahtml.New(
			chromahtml.WithClasses(!cfg.Inline),
			chromahtml.WithLineNumbers(v.LineNumbers),
			chromahtml.LineNumbersInTable(v.LineNumbers),
		)
	}
	return h
}

// Variant returns the name of the variant options select: the first declared
// variant named in options. It returns "" when none matches.
func (h *Highlighter) Variant(options ...string) string {
	for _, v := range h.variants {
		for _, opt := range options {
			if strings.EqualFold(strings.TrimSpace(opt), v.Name) {
				return v.Name
			}
		}
	}
	return ""
}

// Highlight renders code in lang as HTML. Unknown languages are rendered as
// plain text.
func (h *Highlighter) Highlight(lang, code string, options ...string) (string, error) {
	lexer := lexers.Get(strings.TrimSpace(lang))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := h.base
	if name := h.Variant(options...); name != "" {
		formatter = h.formats[name]
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("highlight %s: %w", lang, err)
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, h.style, iterator); err != nil {
		return "", fmt.Errorf("highlight %s: %w", lang, err)
	}
	return buf.String(), nil
}

// CSS writes the stylesheet for class-based output.
func (h *Highlighter) CSS() (string, error) {
	var buf bytes.Buffer
	if err := h.base.WriteCSS(&buf, h.style); err != nil {
		return "", err
	}
	return buf.String(), nil
}
