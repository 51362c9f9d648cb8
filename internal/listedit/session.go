// Package listedit implements the structural list commands of the editor:
// toggling list formats, indenting and outdenting items, and Enter inside
// a list. Commands run against a Session and leave every list and list
// item with at least one child.
package listedit

import (
	"unicode/utf8"

	"github.com/dgallion1/docforge/internal/doctree"
)

// Session is one open editing session. It is not safe for concurrent use;
// callers serialize commands per session.
type Session struct {
	Doc       *doctree.Document
	Selection *doctree.Selection
}

// NewSession returns a session with a caret at pt.
func NewSession(d *doctree.Document, pt doctree.Point) *Session {
	sel := doctree.Caret(pt)
	return &Session{Doc: d, Selection: &sel}
}

func isList(el *doctree.Element) bool { return el.Kind.IsList() }

func isItem(el *doctree.Element) bool { return el.Kind == doctree.ListItem }

// current returns the selection if both ends address text leaves.
func (s *Session) current() (doctree.Selection, bool) {
	if s.Doc == nil || s.Selection == nil {
		return doctree.Selection{}, false
	}
	sel := *s.Selection
	for _, pt := range []doctree.Point{sel.Anchor, sel.Focus} {
		t, err := s.Doc.Text(pt.Path)
		if err != nil || pt.Offset < 0 || pt.Offset > utf8.RuneCountInString(t.Text) {
			return sel, false
		}
	}
	return sel, true
}

// above finds the nearest element matching fn that contains the whole
// selection.
func (s *Session) above(sel doctree.Selection, fn func(*doctree.Element) bool) (*doctree.Element, doctree.Path, bool) {
	at := doctree.Common(sel.Anchor.Path, sel.Focus.Path)
	if len(at) > 0 && !at.Equal(sel.Anchor.Path) {
		if el, err := s.Doc.Element(at); err == nil && fn(el) {
			return el, at, true
		}
	}
	return s.Doc.Above(at, fn)
}

// element returns the element at p, or nil when p is the root or does not
// address an element.
func element(d *doctree.Document, p doctree.Path) *doctree.Element {
	if len(p) == 0 {
		return nil
	}
	el, err := d.Element(p)
	if err != nil {
		return nil
	}
	return el
}

// childrenOf returns the children of the element at p, or the top level
// for the root path.
func childrenOf(d *doctree.Document, p doctree.Path) []doctree.Node {
	if len(p) == 0 {
		return d.Children
	}
	if el := element(d, p); el != nil {
		return el.Children
	}
	return nil
}

func firstText(n doctree.Node) *doctree.Text {
	switch v := n.(type) {
	case *doctree.Text:
		return v
	case *doctree.Element:
		for _, c := range v.Children {
			if t := firstText(c); t != nil {
				return t
			}
		}
	}
	return nil
}

type caret struct {
	leaf   *doctree.Text
	offset int
}

// edit runs fn as one edit scope and carries the selection across it by
// leaf identity. fn may set *moveTo to place a caret on a new leaf. It
// reports whether the edit was applied.
func (s *Session) edit(fn func(d *doctree.Document, moveTo *caret) error) bool {
	anchor := s.capture(s.Selection.Anchor)
	focus := s.capture(s.Selection.Focus)

	var moveTo caret
	if err := doctree.Edit(s.Doc, func(d *doctree.Document) error {
		return fn(d, &moveTo)
	}); err != nil {
		return false
	}

	if moveTo.leaf != nil {
		anchor, focus = moveTo, moveTo
	}
	sel := doctree.Selection{Anchor: s.locate(anchor), Focus: s.locate(focus)}
	s.Selection = &sel
	return true
}

func (s *Session) capture(pt doctree.Point) caret {
	t, _ := s.Doc.Text(pt.Path)
	return caret{leaf: t, offset: pt.Offset}
}

// locate finds c's leaf again, falling back to the start of the document
// when the leaf is gone.
func (s *Session) locate(c caret) doctree.Point {
	if c.leaf != nil {
		if p, ok := s.Doc.PathOf(c.leaf); ok {
			return doctree.Point{Path: p, Offset: min(c.offset, utf8.RuneCountInString(c.leaf.Text))}
		}
	}
	if len(s.Doc.Children) > 0 {
		if t := firstText(s.Doc.Children[0]); t != nil {
			if p, ok := s.Doc.PathOf(t); ok {
				return doctree.Point{Path: p}
			}
		}
	}
	return doctree.Point{Path: doctree.Path{0, 0}}
}

// IsListActive reports whether the innermost list around the selection has
// the given format.
func (s *Session) IsListActive(format doctree.Kind) bool {
	sel, ok := s.current()
	if !ok {
		return false
	}
	list, _, ok := s.above(sel, isList)
	return ok && list.Kind == format
}

// IsInListItem reports whether the selection is inside a list item.
func (s *Session) IsInListItem() bool {
	sel, ok := s.current()
	if !ok {
		return false
	}
	_, _, ok = s.above(sel, isItem)
	return ok
}

// CanIndent reports whether Indent would act.
func (s *Session) CanIndent() bool {
	sel, ok := s.current()
	if !ok {
		return false
	}
	_, p, ok := s.above(sel, isItem)
	return ok && canIndent(s.Doc, p)
}

// CanOutdent reports whether Outdent would act.
func (s *Session) CanOutdent() bool {
	sel, ok := s.current()
	if !ok {
		return false
	}
	_, p, ok := s.above(sel, isItem)
	return ok && canOutdent(s.Doc, p)
}
