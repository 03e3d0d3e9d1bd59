package markup

import (
	"html"
	"regexp"
	"strings"
)

var (
	reField     = regexp.MustCompile(`^:([^:\s][^:]*):(?:\s+(.*))?$`)
	reBullet    = regexp.MustCompile(`^[-*+]\s+`)
	reEnumItem  = regexp.MustCompile(`^(?:\d+|#)[.)]\s+`)
	reDirective = regexp.MustCompile(`^(\s*)\.\.\s+(?:sourcecode|code-block|code)::\s*(\S*)\s*$`)
	reDirOption = regexp.MustCompile(`^\s+:([\w-]+):\s*(.*)$`)
)

const adornmentChars = "=-~#*^+\"'`:._"

// FieldList renders documents laid out as a title, a field list of metadata
// and a body:
//
//	Hello World
//	===========
//
//	:date: 2011-09-01
//	:folder: life
//	:tags:
//	    - tag1
//	    - tag2
//
//	Body text.
type FieldList struct {
	engine *engine
}

// NewFieldList constructs a FieldList renderer.
func NewFieldList(opts Options) *FieldList {
	opts.setDefaults()
	return &FieldList{engine: newEngine(opts)}
}

// Supports reports whether path is a .rst or .txt source.
func (r *FieldList) Supports(path string) bool {
	return hasExt(path, ".rst", ".txt")
}

// Publish splits source into title, field list and body and renders each.
func (r *FieldList) Publish(source []byte) (Parts, error) {
	lines := splitLines(string(source))

	i := skipBlank(lines, 0)
	title, i := scanTitle(lines, i)
	i = skipBlank(lines, i)
	fields, i := scanFields(lines, i)

	body, err := r.engine.convert([]byte(translateDirectives(lines[i:])))
	if err != nil {
		return Parts{}, err
	}
	return Parts{
		Title:   title,
		Body:    body,
		Docinfo: renderDocinfo(fields),
	}, nil
}

type field struct {
	name    string
	text    string
	items   []string
	ordered bool
	list    bool
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

func skipBlank(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return i
}

func isAdornment(line string) bool {
	line = strings.TrimRight(line, " \t")
	if len(line) < 2 || !strings.ContainsRune(adornmentChars, rune(line[0])) {
		return false
	}
	return strings.Count(line, line[:1]) == len(line)
}

// scanTitle recognizes "Title\n=====" and "=====\nTitle\n=====".
func scanTitle(lines []string, i int) (string, int) {
	if i >= len(lines) {
		return "", i
	}
	if isAdornment(lines[i]) && i+2 < len(lines) && strings.TrimSpace(lines[i+1]) != "" && isAdornment(lines[i+2]) {
		return strings.TrimSpace(lines[i+1]), i + 3
	}
	if i+1 < len(lines) && strings.TrimSpace(lines[i]) != "" && !isIndented(lines[i]) && isAdornment(lines[i+1]) {
		return strings.TrimSpace(lines[i]), i + 2
	}
	return "", i
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// scanFields reads the field list starting at i and returns the index of the
// first body line. Blank lines may separate fields, and an indented block
// after a blank line still belongs to the field above it.
func scanFields(lines []string, i int) ([]field, int) {
	var fields []field
	for {
		next := skipBlank(lines, i)
		if next >= len(lines) {
			break
		}
		m := reField.FindStringSubmatch(lines[next])
		if m == nil {
			break
		}
		f := field{name: strings.TrimSpace(m[1]), text: strings.TrimSpace(m[2])}
		i = next + 1

		var block []string
		for {
			j := skipBlank(lines, i)
			if j >= len(lines) || !isIndented(lines[j]) {
				break
			}
			for j < len(lines) && isIndented(lines[j]) && strings.TrimSpace(lines[j]) != "" {
				block = append(block, strings.TrimSpace(lines[j]))
				j++
			}
			i = j
		}
		f.addBlock(block)
		fields = append(fields, f)
	}
	return fields, i
}

func (f *field) addBlock(block []string) {
	if len(block) == 0 {
		return
	}
	bullet, enum := reBullet.MatchString(block[0]), reEnumItem.MatchString(block[0])
	if f.text != "" || (!bullet && !enum) {
		f.text = strings.TrimSpace(f.text + " " + strings.Join(block, " "))
		return
	}
	marker := reBullet
	if enum {
		marker = reEnumItem
		f.ordered = true
	}
	f.list = true
	for _, line := range block {
		if loc := marker.FindStringIndex(line); loc != nil {
			f.items = append(f.items, strings.TrimSpace(line[loc[1]:]))
			continue
		}
		last := len(f.items) - 1
		f.items[last] = f.items[last] + " " + line
	}
}

func renderDocinfo(fields []field) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<table class="docinfo"><tbody>`)
	for _, f := range fields {
		b.WriteString(`<tr><th class="docinfo-name">`)
		b.WriteString(html.EscapeString(f.name))
		b.WriteString(`:</th><td>`)
		if f.list {
			tag := "ul"
			if f.ordered {
				tag = "ol"
			}
			b.WriteString("<" + tag + ">")
			for _, item := range f.items {
				b.WriteString("<li>" + html.EscapeString(item) + "</li>")
			}
			b.WriteString("</" + tag + ">")
		} else {
			b.WriteString(html.EscapeString(f.text))
		}
		b.WriteString("</td></tr>\n")
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}

// translateDirectives rewrites sourcecode/code-block directives into fenced
// code blocks and "::" literal markers into plain colons, leaving the
// indented literal block for the markdown parser.
func translateDirectives(lines []string) string {
	var out []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		m := reDirective.FindStringSubmatch(line)
		if m == nil {
			out = append(out, literalMarker(line))
			continue
		}
		base := len(m[1])
		lang := m[2]
		if lang == "" {
			lang = "text"
		}
		i++

		var options []string
		for i < len(lines) {
			om := reDirOption.FindStringSubmatch(lines[i])
			if om == nil || indentOf(lines[i]) <= base {
				break
			}
			options = append(options, om[1])
			i++
		}

		var content []string
		for i < len(lines) {
			if strings.TrimSpace(lines[i]) != "" && indentOf(lines[i]) <= base {
				break
			}
			content = append(content, lines[i])
			i++
		}
		i--
		content = dedent(trimBlankEdges(content))

		fence := "```"
		if strings.Contains(strings.Join(content, "\n"), "```") {
			fence = "~~~~"
		}
		info := strings.TrimSpace(strings.Join(append([]string{lang}, options...), " "))
		out = append(out, "", fence+info)
		out = append(out, content...)
		out = append(out, fence, "")
	}
	return strings.Join(out, "\n")
}

func literalMarker(line string) string {
	trimmed := strings.TrimRight(line, " \t")
	switch {
	case strings.TrimSpace(trimmed) == "::":
		return ""
	case strings.HasSuffix(trimmed, "::"):
		return strings.TrimSuffix(trimmed, ":")
	}
	return line
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func trimBlankEdges(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func dedent(lines []string) []string {
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if n := indentOf(l); indent < 0 || n < indent {
			indent = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			out[i] = l[indent:]
		} else {
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return out
}
