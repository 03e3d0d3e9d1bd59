// Package markup turns post sources into rendered parts: a title, an HTML
// body and the document's metadata block. Body markup is converted by
// goldmark and code blocks are highlighted through package highlight.
package markup

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/eringen/docpost/docinfo"
	"github.com/eringen/docpost/highlight"
)

// Parts is the output of publishing one source document.
type Parts struct {
	Title string
	Body  string
	// Docinfo is the rendered metadata table, parsed later by docinfo.Extract.
	Docinfo string
	// Table holds metadata for renderers that decode fields directly
	// instead of rendering a docinfo table. When non-nil it takes precedence
	// over Docinfo.
	Table docinfo.Table
}

// Renderer publishes raw source text into Parts.
type Renderer interface {
	Supports(path string) bool
	Publish(source []byte) (Parts, error)
}

// Options configures the body engine shared by the renderers.
type Options struct {
	// Highlighter renders fenced code blocks. Defaults to highlight.New(highlight.Config{}).
	Highlighter *highlight.Highlighter
	// HeaderLevel is the HTML level top-level body headings start at (default 2).
	HeaderLevel int
}

func (o *Options) setDefaults() {
	if o.Highlighter == nil {
		o.Highlighter = highlight.New(highlight.Config{})
	}
	if o.HeaderLevel <= 0 {
		o.HeaderLevel = 2
	}
}

// engine converts body markup with goldmark. A goldmark.Markdown is safe for
// concurrent Convert calls, so one engine serves every document.
type engine struct {
	md goldmark.Markdown
}

func newEngine(opts Options) *engine {
	opts.setDefaults()
	return &engine{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.DefinitionList,
			extension.Footnote,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(headingShift(opts.HeaderLevel-1), 100)),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{h: opts.Highlighter}, 200)),
		),
	)}
}

func (e *engine) convert(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := e.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("markup: convert body: %w", err)
	}
	return buf.String(), nil
}

// headingShift moves every heading down by its value, capped at h6.
type headingShift int

func (s headingShift) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	if s <= 0 {
		return
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			h.Level += int(s)
			if h.Level > 6 {
				h.Level = 6
			}
		}
		return ast.WalkContinue, nil
	})
}

// codeBlockRenderer replaces goldmark's fenced code output with highlighted
// HTML. The info string is "<lang> [variant...]".
type codeBlockRenderer struct {
	h *highlight.Highlighter
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	lang := "text"
	var options []string
	if n.Info != nil {
		fields := strings.Fields(string(n.Info.Segment.Value(source)))
		if len(fields) > 0 {
			lang = fields[0]
			options = fields[1:]
		}
	}

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	out, err := r.h.Highlight(lang, code.String(), options...)
	if err != nil {
		return ast.WalkStop, err
	}
	_, _ = w.WriteString(out)
	return ast.WalkContinue, nil
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
