package doctree

import "strings"

// Kind is the type tag of an Element.
type Kind string

const (
	Paragraph    Kind = "paragraph"
	HeadingOne   Kind = "heading-one"
	HeadingTwo   Kind = "heading-two"
	BlockQuote   Kind = "block-quote"
	BulletedList Kind = "bulleted-list"
	NumberedList Kind = "numbered-list"
	ListItem     Kind = "list-item"
)

// Valid reports whether k is one of the known element kinds.
func (k Kind) Valid() bool {
	switch k {
	case Paragraph, HeadingOne, HeadingTwo, BlockQuote, BulletedList, NumberedList, ListItem:
		return true
	}
	return false
}

// IsList reports whether k is a list container.
func (k Kind) IsList() bool {
	return k == BulletedList || k == NumberedList
}

// IsTextBlock reports whether k holds text runs directly.
func (k Kind) IsTextBlock() bool {
	return k == Paragraph || k == HeadingOne || k == HeadingTwo
}

// Node is either a *Text or an *Element.
type Node interface {
	node()
}

// Text is a leaf run of characters with independent marks.
type Text struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
}

// Element is a typed container node.
type Element struct {
	Kind     Kind
	Children []Node
}

func (*Text) node()    {}
func (*Element) node() {}

// Document is the root of the canonical tree.
type Document struct {
	Children []Node
}

// Marks holds the formatting flags of a Text run.
type Marks struct {
	Bold      bool
	Italic    bool
	Underline bool
}

// Marks returns the run's formatting flags.
func (t *Text) Marks() Marks {
	return Marks{Bold: t.Bold, Italic: t.Italic, Underline: t.Underline}
}

// NewText builds a run carrying marks m.
func NewText(s string, m Marks) *Text {
	return &Text{Text: s, Bold: m.Bold, Italic: m.Italic, Underline: m.Underline}
}

// NewElement builds an element of kind k.
func NewElement(k Kind, children ...Node) *Element {
	return &Element{Kind: k, Children: children}
}

// NewParagraph builds a paragraph, defaulting to one empty run.
func NewParagraph(runs ...Node) *Element {
	if len(runs) == 0 {
		runs = []Node{&Text{}}
	}
	return &Element{Kind: Paragraph, Children: runs}
}

// NewEmpty returns a document holding a single empty paragraph.
func NewEmpty() *Document {
	return &Document{Children: []Node{NewParagraph()}}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{Children: make([]Node, len(d.Children))}
	for i, c := range d.Children {
		out.Children[i] = CloneNode(c)
	}
	return out
}

// CloneNode returns a deep copy of n.
func CloneNode(n Node) Node {
	switch v := n.(type) {
	case *Text:
		cp := *v
		return &cp
	case *Element:
		cp := &Element{Kind: v.Kind, Children: make([]Node, len(v.Children))}
		for i, c := range v.Children {
			cp.Children[i] = CloneNode(c)
		}
		return cp
	}
	return nil
}

// NodeString concatenates the text of every run under n.
func NodeString(n Node) string {
	var b strings.Builder
	writeString(&b, n)
	return b.String()
}

func writeString(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Text:
		b.WriteString(v.Text)
	case *Element:
		for _, c := range v.Children {
			writeString(b, c)
		}
	}
}

// Equal reports whether two documents are structurally identical, marks included.
func Equal(a, b *Document) bool {
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !NodeEqual(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// NodeEqual compares two subtrees.
func NodeEqual(a, b Node) bool {
	switch x := a.(type) {
	case *Text:
		y, ok := b.(*Text)
		return ok && *x == *y
	case *Element:
		y, ok := b.(*Element)
		if !ok || x.Kind != y.Kind || len(x.Children) != len(y.Children) {
			return false
		}
		for i := range x.Children {
			if !NodeEqual(x.Children[i], y.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Walk visits every node in pre-order with its path. Returning false from fn
// skips the node's children.
func (d *Document) Walk(fn func(n Node, p Path) bool) {
	for i, c := range d.Children {
		walk(c, Path{i}, fn)
	}
}

func walk(n Node, p Path, fn func(Node, Path) bool) {
	if !fn(n, p) {
		return
	}
	if el, ok := n.(*Element); ok {
		for i, c := range el.Children {
			walk(c, p.Child(i), fn)
		}
	}
}

// PathOf locates n by identity. Paths are never cached on nodes, so callers
// recompute them after each mutation.
func (d *Document) PathOf(n Node) (Path, bool) {
	var found Path
	d.Walk(func(c Node, p Path) bool {
		if found != nil {
			return false
		}
		if c == n {
			found = p.Clone()
			return false
		}
		return true
	})
	return found, found != nil
}

// Texts returns every leaf in document order.
func (d *Document) Texts() []*Text {
	var out []*Text
	d.Walk(func(n Node, _ Path) bool {
		if t, ok := n.(*Text); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}
