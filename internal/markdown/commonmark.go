package markdown

import (
	"bytes"
	"strings"

	"github.com/dgallion1/docforge/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseCommonMark converts src using goldmark's CommonMark parser and maps
// the result onto the same node set as Parse.
func ParseCommonMark(src string) *doctree.Document {
	source := []byte(strings.ReplaceAll(src, "\r\n", "\n"))
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	c := &cmConverter{src: source}
	blocks := c.blocks(root)
	if len(blocks) == 0 {
		return doctree.NewEmpty()
	}
	return &doctree.Document{Children: blocks}
}

type cmConverter struct {
	src []byte
}

func (c *cmConverter) blocks(parent ast.Node) []doctree.Node {
	var out []doctree.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			kind := doctree.HeadingTwo
			if node.Level == 1 {
				kind = doctree.HeadingOne
			}
			out = append(out, doctree.NewElement(kind, c.inlines(node)...))

		case *ast.Paragraph, *ast.TextBlock:
			out = append(out, doctree.NewParagraph(c.inlines(node)...))

		case *ast.Blockquote:
			children := c.blocks(node)
			if len(children) == 0 {
				children = []doctree.Node{doctree.NewParagraph()}
			}
			out = append(out, doctree.NewElement(doctree.BlockQuote, children...))

		case *ast.List:
			kind := doctree.BulletedList
			if node.IsOrdered() {
				kind = doctree.NumberedList
			}
			list := doctree.NewElement(kind)
			for it := node.FirstChild(); it != nil; it = it.NextSibling() {
				children := c.blocks(it)
				if len(children) == 0 {
					children = []doctree.Node{doctree.NewParagraph()}
				}
				list.Children = append(list.Children, doctree.NewElement(doctree.ListItem, children...))
			}
			if len(list.Children) > 0 {
				out = append(out, list)
			}

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			// Code keeps its literal text but has no block type of its own.
			code := strings.TrimSuffix(string(c.lines(node)), "\n")
			out = append(out, doctree.NewParagraph(&doctree.Text{Text: code}))

		case *ast.HTMLBlock:
			raw := strings.TrimSpace(string(c.lines(node)))
			if raw != "" {
				out = append(out, doctree.NewParagraph(parseInline(raw)...))
			}

		case *ast.ThematicBreak:

		default:
			out = append(out, c.blocks(n)...)
		}
	}
	return out
}

func (c *cmConverter) lines(n ast.Node) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(c.src))
	}
	return buf.Bytes()
}

func (c *cmConverter) inlines(n ast.Node) []doctree.Node {
	var out []doctree.Node
	c.walkInline(n, doctree.Marks{}, &out)
	if len(out) == 0 {
		return []doctree.Node{&doctree.Text{}}
	}
	return out
}

func (c *cmConverter) walkInline(parent ast.Node, m doctree.Marks, out *[]doctree.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			s := string(node.Segment.Value(c.src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				s += "\n"
			}
			pushRun(out, s, m)

		case *ast.String:
			pushRun(out, string(node.Value), m)

		case *ast.CodeSpan:
			var code bytes.Buffer
			for ch := node.FirstChild(); ch != nil; ch = ch.NextSibling() {
				switch seg := ch.(type) {
				case *ast.Text:
					code.Write(seg.Segment.Value(c.src))
				case *ast.String:
					code.Write(seg.Value)
				}
			}
			pushRun(out, code.String(), m)

		case *ast.Emphasis:
			inner := m
			if node.Level >= 2 {
				inner.Bold = true
			} else {
				inner.Italic = true
			}
			c.walkInline(node, inner, out)

		case *ast.RawHTML:
			// Underline is the only inline tag the tree can represent.
			var raw bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				raw.Write(seg.Value(c.src))
			}
			switch strings.ToLower(strings.TrimSpace(raw.String())) {
			case "<u>", "<ins>":
				m.Underline = true
			case "</u>", "</ins>":
				m.Underline = false
			}

		case *ast.AutoLink:
			pushRun(out, string(node.URL(c.src)), m)

		case *ast.Image:

		default:
			c.walkInline(n, m, out)
		}
	}
	if last := len(*out) - 1; last >= 0 {
		if t, ok := (*out)[last].(*doctree.Text); ok && parent.Type() == ast.TypeBlock {
			t.Text = strings.TrimRight(t.Text, "\n")
			if t.Text == "" {
				*out = (*out)[:last]
			}
		}
	}
}
