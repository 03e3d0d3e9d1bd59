// Package docinfo extracts the "document information" block of a rendered
// post into ordered key/value entries.
//
// The block is the HTML table a markup renderer emits for a document's field
// list, one row per field:
//
//	<tr><th class="docinfo-name">Date:</th><td>2011-10-12</td></tr>
//	<tr><th class="docinfo-name">Tags:</th><td><ul><li>go</li><li>web</li></ul></td></tr>
package docinfo

import "strings"

// Value is a docinfo field value: either a single string or, when the source
// field was a bulleted or numbered list, an ordered list of strings.
// The zero Value is a field that carried no text.
type Value struct {
	Text  string
	Items []string
	List  bool
}

// Scalar returns a single-string Value.
func Scalar(s string) Value {
	return Value{Text: s}
}

// ListOf returns a list Value holding items in order.
func ListOf(items ...string) Value {
	return Value{Items: append([]string(nil), items...), List: true}
}

// IsZero reports whether the field carried no text at all.
func (v Value) IsZero() bool {
	if v.List {
		return len(v.Items) == 0
	}
	return v.Text == ""
}

// String returns the scalar text, or the list items joined with ", ".
func (v Value) String() string {
	if v.List {
		return strings.Join(v.Items, ", ")
	}
	return v.Text
}

// Strings returns the list items, or the scalar text as a one-element slice.
func (v Value) Strings() []string {
	if v.List {
		return append([]string(nil), v.Items...)
	}
	if v.Text == "" {
		return nil
	}
	return []string{v.Text}
}

// Entry is one docinfo row. Key is lower-cased with its trailing colon removed.
type Entry struct {
	Key   string
	Value Value
}

// Table is the ordered list of docinfo entries. Duplicate keys are kept in
// raw form; Map and Get resolve them last-wins.
type Table []Entry

// Map collapses the table into a mapping, the last entry for a key winning.
func (t Table) Map() map[string]Value {
	m := make(map[string]Value, len(t))
	for _, e := range t {
		m[e.Key] = e.Value
	}
	return m
}

// Get returns the last value recorded for key.
func (t Table) Get(key string) (Value, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Key == key {
			return t[i].Value, true
		}
	}
	return Value{}, false
}

// Keys returns the distinct keys in first-seen order.
func (t Table) Keys() []string {
	seen := make(map[string]struct{}, len(t))
	var keys []string
	for _, e := range t {
		if _, ok := seen[e.Key]; ok {
			continue
		}
		seen[e.Key] = struct{}{}
		keys = append(keys, e.Key)
	}
	return keys
}

// NormalizeKey lower-cases a field label and strips one trailing colon.
func NormalizeKey(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	return strings.TrimSuffix(key, ":")
}
