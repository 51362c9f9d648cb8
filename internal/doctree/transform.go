package doctree

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// PathError reports a path that does not address a usable node.
type PathError struct {
	Op   string
	Path Path
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("doctree: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

var (
	ErrNoNode      = errors.New("no node at path")
	ErrNotElement  = errors.New("node is not an element")
	ErrNotText     = errors.New("node is not a text run")
	ErrOutOfRange  = errors.New("index out of range")
	ErrIntoSubtree = errors.New("cannot move a node into its own subtree")
	ErrRoot        = errors.New("operation not allowed on the root")
)

func pathErr(op string, p Path, err error) error {
	return &PathError{Op: op, Path: p.Clone(), Err: err}
}

// children returns the child slice owned by the node at p. The empty path
// yields the document's top-level slice.
func (d *Document) children(op string, p Path) (*[]Node, error) {
	cur := &d.Children
	for depth, i := range p {
		if i < 0 || i >= len(*cur) {
			return nil, pathErr(op, p[:depth+1], ErrNoNode)
		}
		el, ok := (*cur)[i].(*Element)
		if !ok {
			return nil, pathErr(op, p[:depth+1], ErrNotElement)
		}
		cur = &el.Children
	}
	return cur, nil
}

// Get returns the node at p.
func (d *Document) Get(p Path) (Node, error) {
	if len(p) == 0 {
		return nil, pathErr("get", p, ErrRoot)
	}
	siblings, err := d.children("get", p.Parent())
	if err != nil {
		return nil, err
	}
	i := p.Last()
	if i < 0 || i >= len(*siblings) {
		return nil, pathErr("get", p, ErrNoNode)
	}
	return (*siblings)[i], nil
}

// Has reports whether p addresses an existing node.
func (d *Document) Has(p Path) bool {
	_, err := d.Get(p)
	return err == nil
}

// Element returns the element at p.
func (d *Document) Element(p Path) (*Element, error) {
	n, err := d.Get(p)
	if err != nil {
		return nil, err
	}
	el, ok := n.(*Element)
	if !ok {
		return nil, pathErr("element", p, ErrNotElement)
	}
	return el, nil
}

// Text returns the text run at p.
func (d *Document) Text(p Path) (*Text, error) {
	n, err := d.Get(p)
	if err != nil {
		return nil, err
	}
	t, ok := n.(*Text)
	if !ok {
		return nil, pathErr("text", p, ErrNotText)
	}
	return t, nil
}

// Above returns the nearest strict ancestor of p accepted by match.
func (d *Document) Above(p Path, match func(*Element) bool) (*Element, Path, bool) {
	for at := p.Parent(); len(at) > 0; at = at.Parent() {
		el, err := d.Element(at)
		if err != nil {
			return nil, nil, false
		}
		if match(el) {
			return el, at, true
		}
	}
	return nil, nil, false
}

// Insert places n at p, shifting later siblings right.
func (d *Document) Insert(p Path, n Node) error {
	if len(p) == 0 {
		return pathErr("insert", p, ErrRoot)
	}
	siblings, err := d.children("insert", p.Parent())
	if err != nil {
		return err
	}
	i := p.Last()
	if i < 0 || i > len(*siblings) {
		return pathErr("insert", p, ErrOutOfRange)
	}
	*siblings = append(*siblings, nil)
	copy((*siblings)[i+1:], (*siblings)[i:])
	(*siblings)[i] = n
	return nil
}

// Remove detaches and returns the node at p.
func (d *Document) Remove(p Path) (Node, error) {
	if len(p) == 0 {
		return nil, pathErr("remove", p, ErrRoot)
	}
	siblings, err := d.children("remove", p.Parent())
	if err != nil {
		return nil, err
	}
	i := p.Last()
	if i < 0 || i >= len(*siblings) {
		return nil, pathErr("remove", p, ErrNoNode)
	}
	n := (*siblings)[i]
	*siblings = append((*siblings)[:i], (*siblings)[i+1:]...)
	return n, nil
}

// Move relocates the node at from so that it ends up at to. The destination
// is expressed against the tree before the move: when from is an earlier
// sibling of one of to's ancestors, that ancestor's index is shifted down.
func (d *Document) Move(from, to Path) error {
	if from.Equal(to) {
		_, err := d.Get(from)
		return err
	}
	if from.IsAncestorOf(to) {
		return pathErr("move", from, ErrIntoSubtree)
	}
	n, err := d.Remove(from)
	if err != nil {
		return err
	}
	dest := to.Clone()
	if from.EndsBefore(to) && len(from) < len(to) {
		dest[len(from)-1]--
	}
	if err := d.Insert(dest, n); err != nil {
		_ = d.Insert(from, n)
		return err
	}
	return nil
}

// Split divides the node at p into two siblings. A text run is cut at rune
// offset pos and both halves keep its marks; an element is cut before child
// index pos and both halves keep its kind.
func (d *Document) Split(p Path, pos int) error {
	n, err := d.Get(p)
	if err != nil {
		return err
	}
	switch v := n.(type) {
	case *Text:
		if pos < 0 || pos > utf8.RuneCountInString(v.Text) {
			return pathErr("split", p, ErrOutOfRange)
		}
		left, right := splitRunes(v.Text, pos)
		v.Text = left
		return d.Insert(p.Next(), NewText(right, v.Marks()))
	case *Element:
		if pos < 0 || pos > len(v.Children) {
			return pathErr("split", p, ErrOutOfRange)
		}
		tail := make([]Node, len(v.Children)-pos)
		copy(tail, v.Children[pos:])
		v.Children = v.Children[:pos]
		return d.Insert(p.Next(), &Element{Kind: v.Kind, Children: tail})
	}
	return pathErr("split", p, ErrNoNode)
}

// SplitAt splits every level from the text leaf under pt up to and including
// the ancestor at. It returns the path of the right half of at.
func (d *Document) SplitAt(pt Point, at Path) (Path, error) {
	if !at.IsAncestorOf(pt.Path) {
		return nil, pathErr("split", at, ErrOutOfRange)
	}
	if err := d.Split(pt.Path, pt.Offset); err != nil {
		return nil, err
	}
	pos := pt.Path.Last() + 1
	for p := pt.Path.Parent(); len(p) >= len(at); p = p.Parent() {
		if err := d.Split(p, pos); err != nil {
			return nil, err
		}
		pos = p.Last() + 1
	}
	return at.Next(), nil
}

// Wrap moves the children [start, end) of the node at parent into a new
// element of kind k placed at start.
func (d *Document) Wrap(parent Path, start, end int, k Kind) error {
	siblings, err := d.children("wrap", parent)
	if err != nil {
		return err
	}
	if start < 0 || end > len(*siblings) || start >= end {
		return pathErr("wrap", parent.Child(start), ErrOutOfRange)
	}
	inner := make([]Node, end-start)
	copy(inner, (*siblings)[start:end])
	rest := append([]Node{}, (*siblings)[end:]...)
	*siblings = append(append((*siblings)[:start], &Element{Kind: k, Children: inner}), rest...)
	return nil
}

// Unwrap replaces the element at p with its children.
func (d *Document) Unwrap(p Path) error {
	el, err := d.Element(p)
	if err != nil {
		return err
	}
	siblings, err := d.children("unwrap", p.Parent())
	if err != nil {
		return err
	}
	i := p.Last()
	rest := append([]Node{}, (*siblings)[i+1:]...)
	*siblings = append(append((*siblings)[:i], el.Children...), rest...)
	return nil
}

// Lift moves the node at p out of its parent, splitting the parent so that
// siblings before and after p stay in their own copies. A parent left with no
// children is removed. It returns the node's new path.
func (d *Document) Lift(p Path) (Path, error) {
	if len(p) < 2 {
		return nil, pathErr("lift", p, ErrRoot)
	}
	parentPath := p.Parent()
	parent, err := d.Element(parentPath)
	if err != nil {
		return nil, err
	}
	i := p.Last()
	if i < 0 || i >= len(parent.Children) {
		return nil, pathErr("lift", p, ErrNoNode)
	}
	switch {
	case len(parent.Children) == 1:
		if err := d.Unwrap(parentPath); err != nil {
			return nil, err
		}
		return parentPath, nil
	case i == 0:
		if err := d.Move(p, parentPath); err != nil {
			return nil, err
		}
		return parentPath, nil
	case i == len(parent.Children)-1:
		dest := parentPath.Next()
		if err := d.Move(p, dest); err != nil {
			return nil, err
		}
		return dest, nil
	}
	if err := d.Split(parentPath, i); err != nil {
		return nil, err
	}
	// The node is now the first child of the right half.
	if err := d.Move(parentPath.Next().Child(0), parentPath.Next()); err != nil {
		return nil, err
	}
	return parentPath.Next(), nil
}

// SetKind retypes the element at p.
func (d *Document) SetKind(p Path, k Kind) error {
	el, err := d.Element(p)
	if err != nil {
		return err
	}
	el.Kind = k
	return nil
}

func splitRunes(s string, pos int) (string, string) {
	i := 0
	for n := 0; n < pos && i < len(s); n++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}
