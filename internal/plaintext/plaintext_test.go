package plaintext

import (
	"testing"

	"github.com/dgallion1/docforge/internal/doctree"
	"github.com/dgallion1/docforge/internal/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDocumentBlocksOnOwnLines(t *testing.T) {
	d := &doctree.Document{Children: []doctree.Node{
		doctree.NewElement(doctree.HeadingOne, &doctree.Text{Text: "Title"}),
		doctree.NewParagraph(
			&doctree.Text{Text: "plain "},
			&doctree.Text{Text: "bold", Bold: true},
		),
	}}
	assert.Equal(t, "Title\nplain bold", FromDocument(d))
}

func TestNestedListNewlines(t *testing.T) {
	d := markdown.Parse("- a\n  - b\n- c\n")
	// Closing the nested list and its item leaves a blank line.
	assert.Equal(t, "a\nb\n\nc", FromDocument(d))
}

func TestBlankRunsCollapse(t *testing.T) {
	d := &doctree.Document{Children: []doctree.Node{
		doctree.NewParagraph(&doctree.Text{Text: "a\n\n\n\nb"}),
		doctree.NewParagraph(),
		doctree.NewParagraph(),
		doctree.NewParagraph(&doctree.Text{Text: "c"}),
	}}
	assert.Equal(t, "a\n\nb\n\nc", FromDocument(d))
}

func TestMarkdownSyntaxRemoved(t *testing.T) {
	d := markdown.Parse("Some **bold**, _italic_ and `code` text.\n\n> quoted <u>under</u>\n")
	got := FromDocument(d)
	assert.Equal(t, "Some bold, italic and code text.\nquoted under", got)
	for _, tx := range d.Texts() {
		assert.Contains(t, got, tx.Text)
	}
}

func TestEmpty(t *testing.T) {
	assert.Empty(t, FromDocument(nil))
	assert.Empty(t, FromDocument(doctree.NewEmpty()))
	assert.Empty(t, FromNodes(nil))
}

func TestFromJSONTolerant(t *testing.T) {
	got, err := FromJSON([]byte(`[
		{"type":"paragraph","children":[{"text":"one"},{"text":" two","bold":true}]},
		{"children":[{"text":"no type"}]},
		{"type":"mystery"},
		42,
		{"type":"bulleted-list","children":[{"type":"list-item","children":[{"type":"paragraph","children":[{"text":"item"}]}]}]}
	]`))
	require.NoError(t, err)
	assert.Equal(t, "one two\nno type\nitem", got)

	single, err := FromJSON([]byte(`{"type":"paragraph","children":[{"text":"solo"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "solo", single)

	_, err = FromJSON([]byte(`{`))
	assert.Error(t, err)
}
