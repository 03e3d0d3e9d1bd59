package docinfo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTable = `<table class="docinfo" frame="void" rules="none">
<col class="docinfo-name" />
<col class="docinfo-content" />
<tbody valign="top">
<tr><th class="docinfo-name">Date:</th>
<td>2011-10-12</td></tr>
<tr class="field"><th class="docinfo-name">Folder:</th><td class="field-body">life</td></tr>
<tr class="field"><th class="docinfo-name">Tags:</th><td class="field-body"><ul class="first last simple">
<li>tag1</li>
<li>tag2</li>
</ul>
</td></tr>
</tbody>
</table>`

func TestExtractScalarAndListFields(t *testing.T) {
	table, err := Extract(sampleTable)
	require.NoError(t, err)

	require.Len(t, table, 3)
	assert.Equal(t, Entry{Key: "date", Value: Scalar("2011-10-12")}, table[0])
	assert.Equal(t, Entry{Key: "folder", Value: Scalar("life")}, table[1])
	assert.Equal(t, "tags", table[2].Key)
	assert.True(t, table[2].Value.List)
	assert.Equal(t, []string{"tag1", "tag2"}, table[2].Value.Items)
}

func TestExtractStripsOnlyOneTrailingColon(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Date:", "date"},
		{"AUTHOR", "author"},
		{"Note::", "note:"},
		{"Re: Subject:", "re: subject"},
	}
	for _, tt := range tests {
		src := `<table><tr><th>` + tt.label + `</th><td>x</td></tr></table>`
		table, err := Extract(src)
		require.NoError(t, err, tt.label)
		require.Len(t, table, 1, tt.label)
		assert.Equal(t, tt.want, table[0].Key, tt.label)
	}
}

func TestExtractOrderedListKeepsItemOrder(t *testing.T) {
	src := `<table><tr><th>Steps:</th><td><ol><li>one</li><li>two</li><li>three</li></ol></td></tr></table>`
	table, err := Extract(src)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, ListOf("one", "two", "three"), table[0].Value)
}

func TestExtractSkipsRowsWithoutLabelText(t *testing.T) {
	src := `<table>` +
		`<tr><th><em>Odd:</em></th><td>ignored</td></tr>` +
		`<tr><th></th><td>ignored</td></tr>` +
		`<tr><td>lonely</td></tr>` +
		`<tr><th>Date:</th><td>2012-01-02</td></tr>` +
		`</table>`
	table, err := Extract(src)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "date", table[0].Key)
}

func TestExtractEmptyValueCell(t *testing.T) {
	table, err := Extract(`<table><tr><th>Author:</th><td></td></tr></table>`)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.True(t, table[0].Value.IsZero())
}

func TestExtractMalformedNesting(t *testing.T) {
	tests := []string{
		`<table><tr><th>Date:</td></th></tr></table>`,
		`<table><tr><th>Date:</th><td>x</td></tr>`,
		`<table></tr></table>`,
	}
	for _, src := range tests {
		_, err := Extract(src)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), "want ParseError for %q, got %v", src, err)
	}
}

func TestExtractEmptySource(t *testing.T) {
	table, err := Extract("  \n ")
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestTableMapLastWins(t *testing.T) {
	table := Table{
		{Key: "author", Value: Scalar("first")},
		{Key: "date", Value: Scalar("2011-09-01")},
		{Key: "author", Value: Scalar("second")},
	}
	m := table.Map()
	assert.Equal(t, Scalar("second"), m["author"])
	v, ok := table.Get("author")
	require.True(t, ok)
	assert.Equal(t, "second", v.Text)
	assert.Equal(t, []string{"author", "date"}, table.Keys())

	_, ok = table.Get("missing")
	assert.False(t, ok)
}

func TestValueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ListOf("a", "b").Strings())
	assert.Equal(t, []string{"a"}, Scalar("a").Strings())
	assert.Nil(t, Value{}.Strings())
	assert.Equal(t, "a, b", ListOf("a", "b").String())
}
