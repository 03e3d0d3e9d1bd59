package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v2"

	"github.com/eringen/docpost/docinfo"
)

// yamlFormat decodes "---" delimited YAML into an ordered yaml.MapSlice so
// metadata keeps its source order.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// FrontMatter renders markdown documents carrying YAML front matter. The
// "title" key becomes the title; other keys become docinfo entries, with
// sequences decoded as list values.
type FrontMatter struct {
	engine *engine
}

// NewFrontMatter constructs a FrontMatter renderer.
func NewFrontMatter(opts Options) *FrontMatter {
	return &FrontMatter{engine: newEngine(opts)}
}

// Supports reports whether path is a markdown source.
func (r *FrontMatter) Supports(path string) bool {
	return hasExt(path, ".md", ".markdown")
}

// Publish parses the front matter and renders the markdown body.
func (r *FrontMatter) Publish(source []byte) (Parts, error) {
	var meta yaml.MapSlice
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta, yamlFormat)
	if err != nil {
		return Parts{}, fmt.Errorf("markup: parse frontmatter: %w", err)
	}

	parts := Parts{Table: docinfo.Table{}}
	for _, item := range meta {
		key := docinfo.NormalizeKey(fmt.Sprint(item.Key))
		value := yamlValue(item.Value)
		if key == "title" {
			parts.Title = value.String()
			continue
		}
		parts.Table = append(parts.Table, docinfo.Entry{Key: key, Value: value})
	}

	parts.Body, err = r.engine.convert(body)
	if err != nil {
		return Parts{}, err
	}
	return parts, nil
}

func yamlValue(v interface{}) docinfo.Value {
	switch val := v.(type) {
	case nil:
		return docinfo.Value{}
	case string:
		return docinfo.Scalar(strings.TrimSpace(val))
	case []interface{}:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, strings.TrimSpace(fmt.Sprint(item)))
		}
		return docinfo.ListOf(items...)
	default:
		return docinfo.Scalar(fmt.Sprint(val))
	}
}
