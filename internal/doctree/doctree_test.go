package doctree

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func para(s string) *Element { return NewParagraph(&Text{Text: s}) }

func item(children ...Node) *Element { return NewElement(ListItem, children...) }

func list(k Kind, items ...Node) *Element { return NewElement(k, items...) }

func sample() *Document {
	return &Document{Children: []Node{
		para("intro"),
		list(BulletedList,
			item(para("a")),
			item(para("b"), list(NumberedList, item(para("b1")))),
			item(para("c")),
		),
		para("outro"),
	}}
}

func TestGetAndPathErrors(t *testing.T) {
	doc := sample()

	n, err := doc.Get(Path{1, 1, 1, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, "b1", n.(*Text).Text)

	_, err = doc.Get(Path{1, 9})
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.True(t, errors.Is(err, ErrNoNode))

	_, err = doc.Get(Path{0, 0, 0, 0})
	require.ErrorAs(t, err, &pe)
	assert.True(t, errors.Is(err, ErrNotElement))

	_, err = doc.Get(nil)
	assert.ErrorIs(t, err, ErrRoot)
}

func TestPathHelpers(t *testing.T) {
	p := Path{1, 2, 3}
	assert.Equal(t, Path{1, 2}, p.Parent())
	assert.Equal(t, Path{1, 2, 4}, p.Next())
	prev, ok := p.Previous()
	require.True(t, ok)
	assert.Equal(t, Path{1, 2, 2}, prev)
	_, ok = Path{1, 0}.Previous()
	assert.False(t, ok)

	assert.True(t, Path{1}.IsAncestorOf(Path{1, 0}))
	assert.False(t, Path{1}.IsAncestorOf(Path{1}))
	assert.Equal(t, Path{1, 2}, Common(Path{1, 2, 0}, Path{1, 2, 5, 1}))
	assert.True(t, Path{0}.EndsBefore(Path{1, 3}))
	assert.False(t, Path{1, 0}.EndsBefore(Path{1}))
	assert.Equal(t, "[1,2,3]", p.String())
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in   string
		want Point
	}{
		{"0.1.0:3", Point{Path: Path{0, 1, 0}, Offset: 3}},
		{"[2,0]:0", Point{Path: Path{2, 0}, Offset: 0}},
		{"1:12", Point{Path: Path{1}, Offset: 12}},
	}
	for _, tt := range tests {
		got, err := ParsePoint(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	pt := Point{Path: Path{3, 1}, Offset: 4}
	round, err := ParsePoint(pt.String())
	require.NoError(t, err)
	assert.Equal(t, pt, round)

	for _, bad := range []string{"", "0.1", "a.b:1", "0:-1", "0:x", "-1:0"} {
		_, err := ParsePoint(bad)
		assert.Error(t, err, bad)
	}
}

func TestAboveSkipsSelf(t *testing.T) {
	doc := sample()
	isList := func(el *Element) bool { return el.Kind.IsList() }

	el, p, ok := doc.Above(Path{1, 1, 1, 0, 0, 0}, isList)
	require.True(t, ok)
	assert.Equal(t, NumberedList, el.Kind)
	assert.Equal(t, Path{1, 1, 1}, p)

	_, p, ok = doc.Above(Path{1, 1, 1}, isList)
	require.True(t, ok)
	assert.Equal(t, Path{1}, p, "a node is not its own ancestor")

	_, _, ok = doc.Above(Path{0, 0}, isList)
	assert.False(t, ok)
}

func TestInsertRemoveRenumber(t *testing.T) {
	doc := sample()
	require.NoError(t, doc.Insert(Path{1}, para("new")))
	assert.Equal(t, "new", NodeString(doc.Children[1]))
	assert.Equal(t, BulletedList, doc.Children[2].(*Element).Kind)

	n, err := doc.Remove(Path{1})
	require.NoError(t, err)
	assert.Equal(t, "new", NodeString(n))
	assert.Len(t, doc.Children, 3)

	assert.Error(t, doc.Insert(Path{5}, para("x")))
}

func TestMoveKeepsSubtree(t *testing.T) {
	doc := sample()
	moved, _ := doc.Get(Path{1, 1})
	before := CloneNode(moved)

	// Destination expressed against the tree before the move.
	require.NoError(t, doc.Move(Path{1, 1}, Path{1, 0, 1}))
	got, err := doc.Get(Path{1, 0, 1})
	require.NoError(t, err)
	assert.Same(t, moved, got)
	assert.True(t, NodeEqual(before, got))
	assert.Len(t, doc.Children[1].(*Element).Children, 2)
}

func TestMoveAdjustsForEarlierSibling(t *testing.T) {
	doc := &Document{Children: []Node{para("a"), list(BulletedList, item(para("x")))}}
	require.NoError(t, doc.Move(Path{0}, Path{1, 0, 0}))
	require.Len(t, doc.Children, 1)
	assert.Equal(t, "ax", NodeString(doc.Children[0]))
	n, err := doc.Get(Path{0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, "a", NodeString(n))
}

func TestMoveIntoOwnSubtree(t *testing.T) {
	doc := sample()
	err := doc.Move(Path{1}, Path{1, 0, 0})
	assert.ErrorIs(t, err, ErrIntoSubtree)
	assert.True(t, Equal(sample(), doc))
}

func TestSplitTextAndElement(t *testing.T) {
	doc := &Document{Children: []Node{NewParagraph(&Text{Text: "héllo", Bold: true})}}
	require.NoError(t, doc.Split(Path{0, 0}, 2))
	p := doc.Children[0].(*Element)
	require.Len(t, p.Children, 2)
	assert.Equal(t, &Text{Text: "hé", Bold: true}, p.Children[0])
	assert.Equal(t, &Text{Text: "llo", Bold: true}, p.Children[1])

	require.NoError(t, doc.Split(Path{0}, 1))
	require.Len(t, doc.Children, 2)
	assert.Equal(t, "hé", NodeString(doc.Children[0]))
	assert.Equal(t, "llo", NodeString(doc.Children[1]))

	assert.Error(t, doc.Split(Path{0, 0}, 9))
}

func TestSplitAtListItem(t *testing.T) {
	doc := &Document{Children: []Node{list(BulletedList, item(para("xy")))}}
	right, err := doc.SplitAt(Point{Path: Path{0, 0, 0, 0}, Offset: 1}, Path{0, 0})
	require.NoError(t, err)
	assert.Equal(t, Path{0, 1}, right)
	l := doc.Children[0].(*Element)
	require.Len(t, l.Children, 2)
	assert.Equal(t, "x", NodeString(l.Children[0]))
	assert.Equal(t, "y", NodeString(l.Children[1]))
	assert.NoError(t, Validate(doc))
}

func TestWrapUnwrapLift(t *testing.T) {
	doc := &Document{Children: []Node{para("a"), para("b"), para("c")}}
	require.NoError(t, doc.Wrap(nil, 0, 2, BlockQuote))
	require.Len(t, doc.Children, 2)
	assert.Equal(t, BlockQuote, doc.Children[0].(*Element).Kind)
	assert.Equal(t, "c", NodeString(doc.Children[1]))

	require.NoError(t, doc.Unwrap(Path{0}))
	require.Len(t, doc.Children, 3)
	assert.Equal(t, "a", NodeString(doc.Children[0]))

	doc = &Document{Children: []Node{list(BulletedList, item(para("a")), item(para("b")), item(para("c")))}}
	p, err := doc.Lift(Path{0, 1})
	require.NoError(t, err)
	assert.Equal(t, Path{1}, p)
	require.Len(t, doc.Children, 3)
	assert.Equal(t, BulletedList, doc.Children[0].(*Element).Kind)
	assert.Equal(t, ListItem, doc.Children[1].(*Element).Kind)
	assert.Equal(t, BulletedList, doc.Children[2].(*Element).Kind)
	assert.Equal(t, "c", NodeString(doc.Children[2]))
}

func TestEditRollsBackAndCleansUp(t *testing.T) {
	doc := sample()
	err := Edit(doc, func(d *Document) error {
		if _, err := d.Remove(Path{0}); err != nil {
			return err
		}
		_, err := d.Remove(Path{42})
		return err
	})
	require.Error(t, err)
	assert.True(t, Equal(sample(), doc), "failed edit must restore the snapshot")

	err = Edit(doc, func(d *Document) error {
		_, err := d.Remove(Path{1, 1, 1, 0})
		return err
	})
	require.NoError(t, err)
	second := doc.Children[1].(*Element).Children[1].(*Element)
	assert.Len(t, second.Children, 1, "emptied nested list is removed at scope exit")
	assert.NoError(t, Validate(doc))
}

func TestRemoveEmptyKeepsOneParagraph(t *testing.T) {
	doc := &Document{Children: []Node{list(BulletedList, item())}}
	doc.RemoveEmpty()
	require.Len(t, doc.Children, 1)
	assert.Equal(t, Paragraph, doc.Children[0].(*Element).Kind)
}

func TestDeleteRange(t *testing.T) {
	doc := &Document{Children: []Node{para("hello"), para("big"), para("world")}}
	err := Edit(doc, func(d *Document) error {
		return d.DeleteRange(Point{Path: Path{2, 0}, Offset: 2}, Point{Path: Path{0, 0}, Offset: 3})
	})
	require.NoError(t, err)
	require.Len(t, doc.Children, 1)
	assert.Equal(t, "helrld", NodeString(doc.Children[0]))

	doc = &Document{Children: []Node{para("abcdef")}}
	require.NoError(t, doc.DeleteRange(Point{Path: Path{0, 0}, Offset: 1}, Point{Path: Path{0, 0}, Offset: 4}))
	assert.Equal(t, "aef", NodeString(doc.Children[0]))
}

func TestPathOfIdentity(t *testing.T) {
	doc := sample()
	leaf, err := doc.Get(Path{1, 2, 0, 0})
	require.NoError(t, err)
	require.NoError(t, doc.Insert(Path{0}, para("first")))
	p, ok := doc.PathOf(leaf)
	require.True(t, ok)
	assert.Equal(t, Path{2, 2, 0, 0}, p)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(sample()))

	bad := &Document{Children: []Node{
		list(BulletedList, para("not an item"), item(&Text{Text: "bare"})),
		NewElement(BlockQuote),
	}}
	err := Validate(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a list-item")
	assert.Contains(t, err.Error(), "bare text in list-item")
	assert.Contains(t, err.Error(), "empty block-quote")
}

func TestJSONCodec(t *testing.T) {
	in := `[{"type":"paragraph","children":[{"text":"a","bold":true},{"text":"b"}]},` +
		`{"type":"bulleted-list","children":[{"type":"list-item","children":[{"type":"paragraph","children":[{"text":"x","underline":true}]}]}]}]`
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(in), &doc))
	require.Len(t, doc.Children, 2)
	assert.Equal(t, &Text{Text: "a", Bold: true}, doc.Children[0].(*Element).Children[0])

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))

	err = json.Unmarshal([]byte(`[{"type":"table","children":[]}]`), &doc)
	assert.ErrorContains(t, err, `unknown element type "table"`)
}
