package docinfo

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseError reports docinfo markup that is not well formed.
type ParseError struct {
	Offset int
	Tag    string
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("docinfo: %s at offset %d", e.Msg, e.Offset)
	}
	return fmt.Sprintf("docinfo: %s <%s> at offset %d", e.Msg, e.Tag, e.Offset)
}

// Extract parses the rendered docinfo table in src into an ordered Table.
// Rows whose label cell has no text are skipped. Markup with mismatched or
// unclosed elements fails with *ParseError.
func Extract(src string) (Table, error) {
	src = strings.ReplaceAll(src, "\r", "")
	src = strings.ReplaceAll(src, "\n", "")
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	if err := checkWellFormed(src); err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("docinfo: parse: %w", err)
	}

	var table Table
	for _, row := range findAll(doc, atom.Tr) {
		if entry, ok := rowEntry(row); ok {
			table = append(table, entry)
		}
	}
	return table, nil
}

func rowEntry(row *html.Node) (Entry, bool) {
	cells := elementChildren(row)
	if len(cells) < 2 {
		return Entry{}, false
	}
	label, ok := firstText(cells[0])
	if !ok {
		return Entry{}, false
	}
	return Entry{Key: NormalizeKey(label), Value: cellValue(cells[len(cells)-1])}, true
}

func cellValue(cell *html.Node) Value {
	first := cell.FirstChild
	if first != nil && first.Type == html.ElementNode && (first.DataAtom == atom.Ul || first.DataAtom == atom.Ol) {
		items := []string{}
		for _, li := range elementChildren(first) {
			if li.DataAtom != atom.Li {
				continue
			}
			items = append(items, strings.TrimSpace(textContent(li)))
		}
		return Value{Items: items, List: true}
	}
	return Value{Text: strings.TrimSpace(textContent(cell))}
}

// firstText returns the first direct text child that is not blank.
func firstText(n *html.Node) (string, bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return c.Data, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "param": {}, "source": {}, "track": {}, "wbr": {},
}

// checkWellFormed applies XML-style nesting rules that the lenient HTML5
// tree builder would otherwise repair silently.
func checkWellFormed(src string) error {
	z := html.NewTokenizer(strings.NewReader(src))
	var open []string
	offset := 0
	for {
		tt := z.Next()
		raw := len(z.Raw())
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return &ParseError{Offset: offset, Msg: err.Error()}
			}
			if len(open) > 0 {
				return &ParseError{Offset: offset, Tag: open[len(open)-1], Msg: "unclosed element"}
			}
			return nil
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if _, void := voidElements[tag]; !void {
				open = append(open, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if _, void := voidElements[tag]; void {
				break
			}
			if len(open) == 0 || open[len(open)-1] != tag {
				return &ParseError{Offset: offset, Tag: tag, Msg: "unexpected end tag"}
			}
			open = open[:len(open)-1]
		}
		offset += raw
	}
}
