package listedit

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docforge/internal/doctree"
)

var errNoBlock = errors.New("selection is not inside a block")

// ToggleList switches the innermost list around the selection. A list of
// the same format is dissolved into its content, a list of another format
// is retyped, and outside any list the selected blocks are wrapped into a
// new list. It reports whether the document changed.
func (s *Session) ToggleList(format doctree.Kind) bool {
	if !format.IsList() {
		return false
	}
	sel, ok := s.current()
	if !ok {
		return false
	}
	if list, at, ok := s.above(sel, isList); ok {
		if list.Kind != format {
			return s.edit(func(d *doctree.Document, _ *caret) error {
				return d.SetKind(at, format)
			})
		}
		return s.edit(func(d *doctree.Document, _ *caret) error {
			return unwrapList(d, at)
		})
	}
	return s.edit(func(d *doctree.Document, _ *caret) error {
		return wrapBlocks(d, sel, format)
	})
}

// unwrapList replaces the list at p with the content of its items. Bare
// text inside an item is first gathered into paragraphs.
func unwrapList(d *doctree.Document, p doctree.Path) error {
	list, err := d.Element(p)
	if err != nil {
		return err
	}
	for i := len(list.Children) - 1; i >= 0; i-- {
		it, ok := list.Children[i].(*doctree.Element)
		if !ok || !isItem(it) {
			continue
		}
		if _, err := d.WrapTextRuns(p.Child(i)); err != nil {
			return err
		}
		if err := d.Unwrap(p.Child(i)); err != nil {
			return err
		}
	}
	return d.Unwrap(p)
}

// wrapBlocks turns the blocks covered by sel into items of a new list.
// Headings become paragraphs, lists in the range give up their items to
// the new list, and other containers split the range. Bare text held by a
// container is first gathered into paragraphs.
func wrapBlocks(d *doctree.Document, sel doctree.Selection, format doctree.Kind) error {
	startLeaf, err := d.Text(sel.Start().Path)
	if err != nil {
		return err
	}
	endLeaf, err := d.Text(sel.End().Path)
	if err != nil {
		return err
	}
	first, err := blockOf(d, startLeaf)
	if err != nil {
		return err
	}
	last, err := blockOf(d, endLeaf)
	if err != nil {
		return err
	}
	parent := first.Parent()
	lo, hi := first.Last(), first.Last()
	if !first.Equal(last) {
		parent = doctree.Common(first, last)
		switch {
		case len(first) <= len(parent):
			parent = first.Parent()
			lo, hi = first.Last(), first.Last()
		case len(last) <= len(parent):
			parent = last.Parent()
			lo, hi = last.Last(), last.Last()
		default:
			lo, hi = first[len(parent)], last[len(parent)]
		}
	}

	end := hi
	for i := hi; i >= lo; i-- {
		el, ok := childrenOf(d, parent)[i].(*doctree.Element)
		if !ok {
			continue
		}
		switch {
		case el.Kind.IsTextBlock():
			el.Kind = doctree.Paragraph
			if err := d.Wrap(parent, i, i+1, doctree.ListItem); err != nil {
				return err
			}
		case el.Kind.IsList():
			if err := d.Unwrap(parent.Child(i)); err != nil {
				return err
			}
			end += len(el.Children) - 1
		}
	}

	children := childrenOf(d, parent)
	wrapped := 0
	for i := end; i >= lo; {
		if el, ok := children[i].(*doctree.Element); !ok || !isItem(el) {
			i--
			continue
		}
		j := i
		for j > lo {
			if el, ok := children[j-1].(*doctree.Element); !ok || !isItem(el) {
				break
			}
			j--
		}
		if err := d.Wrap(parent, j, i+1, format); err != nil {
			return err
		}
		wrapped++
		i = j - 1
	}
	if wrapped == 0 {
		return errNoBlock
	}
	return nil
}

// blockOf returns the path of the text block holding leaf. A leaf sitting
// directly in a container is gathered into a paragraph first.
func blockOf(d *doctree.Document, leaf *doctree.Text) (doctree.Path, error) {
	p, ok := d.PathOf(leaf)
	if !ok || len(p) < 2 {
		return nil, errNoBlock
	}
	block := p.Parent()
	el, err := d.Element(block)
	if err != nil {
		return nil, err
	}
	if el.Kind.IsTextBlock() {
		return block, nil
	}
	if _, err := d.WrapTextRuns(block); err != nil {
		return nil, err
	}
	if p, ok = d.PathOf(leaf); !ok {
		return nil, errNoBlock
	}
	return p.Parent(), nil
}

// Indent moves the item at the selection into a nested list inside its
// previous sibling. The first item of a list cannot be indented.
func (s *Session) Indent() bool {
	sel, ok := s.current()
	if !ok {
		return false
	}
	_, p, ok := s.above(sel, isItem)
	if !ok || !canIndent(s.Doc, p) {
		return false
	}
	return s.edit(func(d *doctree.Document, _ *caret) error {
		return indent(d, p)
	})
}

func canIndent(d *doctree.Document, item doctree.Path) bool {
	list := element(d, item.Parent())
	if list == nil || !isList(list) {
		return false
	}
	prev, ok := item.Previous()
	if !ok {
		return false
	}
	el := element(d, prev)
	return el != nil && isItem(el)
}

func indent(d *doctree.Document, item doctree.Path) error {
	list, err := d.Element(item.Parent())
	if err != nil {
		return err
	}
	prev, _ := item.Previous()
	if _, err := d.WrapTextRuns(prev); err != nil {
		return err
	}
	sibling, err := d.Element(prev)
	if err != nil {
		return err
	}

	idx := -1
	for i, c := range sibling.Children {
		if el, ok := c.(*doctree.Element); ok && el.Kind == list.Kind {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = len(sibling.Children)
		if err := d.Insert(prev.Child(idx), doctree.NewElement(list.Kind)); err != nil {
			return err
		}
	}
	nested, err := d.Element(prev.Child(idx))
	if err != nil {
		return err
	}
	return d.Move(item, prev.Child(idx).Child(len(nested.Children)))
}

// Outdent moves the item at the selection out of its nested list to follow
// the item that contained it. Items of a top-level list stay put.
func (s *Session) Outdent() bool {
	sel, ok := s.current()
	if !ok {
		return false
	}
	_, p, ok := s.above(sel, isItem)
	if !ok || !canOutdent(s.Doc, p) {
		return false
	}
	return s.edit(func(d *doctree.Document, _ *caret) error {
		return outdent(d, p)
	})
}

func canOutdent(d *doctree.Document, item doctree.Path) bool {
	listPath := item.Parent()
	if list := element(d, listPath); list == nil || !isList(list) || len(listPath) < 2 {
		return false
	}
	owner := element(d, listPath.Parent())
	if owner == nil || !isItem(owner) {
		return false
	}
	outer := element(d, listPath.Parent().Parent())
	return outer != nil && isList(outer)
}

func outdent(d *doctree.Document, item doctree.Path) error {
	owner := item.Parent().Parent()
	return d.Move(item, owner.Next())
}

// Enter handles the Enter key inside a list item. A range selection is
// deleted first. An item with text is split at the caret into two items;
// an empty item is outdented one level, or, at the top level, replaced by a
// paragraph that ends the list. It reports false when the selection is not
// in a list item, so the caller can fall back to a plain line break.
func (s *Session) Enter() bool {
	sel, ok := s.current()
	if !ok {
		return false
	}
	start := sel.Start()
	item, p, ok := s.Doc.Above(start.Path, isItem)
	if !ok {
		return false
	}
	empty := strings.TrimSpace(doctree.NodeString(item)) == ""

	return s.edit(func(d *doctree.Document, moveTo *caret) error {
		if !sel.IsCollapsed() {
			if err := d.DeleteRange(start, sel.End()); err != nil {
				return err
			}
		}
		switch {
		case !empty:
			next, err := d.SplitAt(start, p)
			if err != nil {
				return err
			}
			n, err := d.Get(next)
			if err != nil {
				return err
			}
			moveTo.leaf = firstText(n)
			return nil
		case canOutdent(d, p):
			return outdent(d, p)
		}
		return exitList(d, p, moveTo)
	})
}

// exitList replaces the item at p with a paragraph holding its text and
// lifts that paragraph out of the list, splitting the list around it.
func exitList(d *doctree.Document, p doctree.Path, moveTo *caret) error {
	item, err := d.Remove(p)
	if err != nil {
		return err
	}
	text := doctree.NodeString(item)
	leaf := &doctree.Text{Text: text}
	if err := d.Insert(p, doctree.NewParagraph(leaf)); err != nil {
		return err
	}
	if _, err := d.Lift(p); err != nil {
		return err
	}
	moveTo.leaf, moveTo.offset = leaf, utf8.RuneCountInString(text)
	return nil
}
