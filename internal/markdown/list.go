package markdown

import (
	"strings"

	"github.com/dgallion1/docforge/internal/doctree"
)

// listFrame is one open list on the nesting stack, root first.
type listFrame struct {
	indent int
	kind   doctree.Kind
	list   *doctree.Element
	last   *doctree.Element
}

type listBuilder struct {
	blocks []doctree.Node
	stack  []*listFrame
}

// parseList builds nested lists from a run of marker, continuation and blank
// lines. Same indent and type continue a list; deeper indent opens a list
// inside the previous item; a type change at the same indent starts a new
// list; shallower indent returns to an enclosing list.
func parseList(lines []string) []doctree.Node {
	b := &listBuilder{}
	pendingBlank := false

	for i := 0; i < len(lines); {
		line := lines[i]
		if isBlank(line) {
			pendingBlank = true
			i++
			continue
		}

		if m, ok := parseListMarker(line); ok {
			f := b.frameAt(m.indent, m.kind)
			it := doctree.NewElement(doctree.ListItem, doctree.NewParagraph(parseInline(trimRight(m.text))...))
			f.list.Children = append(f.list.Children, it)
			f.last = it
			pendingBlank = false
			i++
			continue
		}

		if len(b.stack) == 0 {
			b.blocks = append(b.blocks, doctree.NewParagraph(parseInline(trimRight(line))...))
			pendingBlank = false
			i++
			continue
		}

		f := b.stack[len(b.stack)-1]
		if f.last == nil {
			f.last = placeholderItem()
			f.list.Children = append(f.list.Children, f.last)
		}

		var run []string
		for ; i < len(lines); i++ {
			if isBlank(lines[i]) || isListMarker(lines[i]) {
				break
			}
			run = append(run, strings.TrimSpace(lines[i]))
		}
		appendItemText(f.last, trimRight(strings.Join(run, "\n")), !pendingBlank)
		pendingBlank = false
	}

	if len(b.blocks) == 0 {
		list := doctree.NewElement(doctree.BulletedList, placeholderItem())
		return []doctree.Node{list}
	}
	return b.blocks
}

// frameAt returns the frame a marker at indent with kind belongs to, popping
// and opening frames as needed.
func (b *listBuilder) frameAt(indent int, kind doctree.Kind) *listFrame {
	for len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		if indent < top.indent || (indent == top.indent && top.kind != kind) {
			b.stack = b.stack[:len(b.stack)-1]
			continue
		}
		break
	}

	if len(b.stack) == 0 {
		f := &listFrame{indent: indent, kind: kind, list: doctree.NewElement(kind)}
		b.blocks = append(b.blocks, f.list)
		b.stack = append(b.stack, f)
		return f
	}

	top := b.stack[len(b.stack)-1]
	if indent == top.indent {
		return top
	}

	if top.last == nil {
		top.last = placeholderItem()
		top.list.Children = append(top.list.Children, top.last)
	}
	var nested *doctree.Element
	for i := len(top.last.Children) - 1; i >= 0; i-- {
		if el, ok := top.last.Children[i].(*doctree.Element); ok && el.Kind == kind {
			nested = el
			break
		}
	}
	if nested == nil {
		nested = doctree.NewElement(kind)
		top.last.Children = append(top.last.Children, nested)
	}
	f := &listFrame{indent: indent, kind: kind, list: nested}
	b.stack = append(b.stack, f)
	return f
}

// appendItemText adds continuation text to an item: joined to its trailing
// paragraph with a newline, or as a new paragraph after a blank line.
func appendItemText(it *doctree.Element, text string, join bool) {
	runs := parseInline(text)
	if join && len(it.Children) > 0 {
		if p, ok := it.Children[len(it.Children)-1].(*doctree.Element); ok && p.Kind == doctree.Paragraph {
			p.Children = append(p.Children, &doctree.Text{Text: "\n"})
			p.Children = append(p.Children, runs...)
			return
		}
	}
	it.Children = append(it.Children, doctree.NewParagraph(runs...))
}

func placeholderItem() *doctree.Element {
	return doctree.NewElement(doctree.ListItem, doctree.NewParagraph())
}
