package doctree

import "unicode/utf8"

// Edit runs fn as one atomic batch of mutations. If fn fails the document is
// restored to its state before the call. On success, containers emptied by the
// batch are removed once, at scope exit.
func Edit(d *Document, fn func(d *Document) error) error {
	snapshot := d.Clone()
	if err := fn(d); err != nil {
		d.Children = snapshot.Children
		return err
	}
	d.RemoveEmpty()
	return nil
}

// RemoveEmpty deletes every element with no children, including ancestors
// that become empty as a result. A document left with nothing gets one empty
// paragraph.
func (d *Document) RemoveEmpty() {
	d.Children = pruneEmpty(d.Children)
	if len(d.Children) == 0 {
		d.Children = []Node{NewParagraph()}
	}
}

func pruneEmpty(nodes []Node) []Node {
	out := nodes[:0]
	for _, n := range nodes {
		if el, ok := n.(*Element); ok {
			el.Children = pruneEmpty(el.Children)
			if len(el.Children) == 0 {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// WrapTextRuns gathers each run of consecutive text children of the element
// at p into its own paragraph. It returns the number of paragraphs created.
func (d *Document) WrapTextRuns(p Path) (int, error) {
	el, err := d.Element(p)
	if err != nil {
		return 0, err
	}
	created := 0
	for i := 0; i < len(el.Children); i++ {
		if _, ok := el.Children[i].(*Text); !ok {
			continue
		}
		j := i
		for j < len(el.Children) {
			if _, ok := el.Children[j].(*Text); !ok {
				break
			}
			j++
		}
		if err := d.Wrap(p, i, j, Paragraph); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// DeleteRange removes the content between start and end, both of which must
// address text leaves. When the ends sit in different blocks, whatever
// follows end in its block is merged into start's block.
func (d *Document) DeleteRange(start, end Point) error {
	if start.Compare(end) > 0 {
		start, end = end, start
	}
	first, err := d.Text(start.Path)
	if err != nil {
		return err
	}
	last, err := d.Text(end.Path)
	if err != nil {
		return err
	}
	if first == last {
		left, _ := splitRunes(first.Text, start.Offset)
		_, right := splitRunes(first.Text, end.Offset)
		first.Text = left + right
		return nil
	}
	if start.Offset > utf8.RuneCountInString(first.Text) {
		return pathErr("delete", start.Path, ErrOutOfRange)
	}
	first.Text, _ = splitRunes(first.Text, start.Offset)
	_, last.Text = splitRunes(last.Text, end.Offset)

	// Drop every leaf strictly between the two ends.
	var between []*Text
	inside := false
	for _, t := range d.Texts() {
		switch {
		case t == first:
			inside = true
		case t == last:
			inside = false
		case inside:
			between = append(between, t)
		}
	}
	for i := len(between) - 1; i >= 0; i-- {
		p, ok := d.PathOf(between[i])
		if !ok {
			continue
		}
		if _, err := d.Remove(p); err != nil {
			return err
		}
	}

	startBlock := start.Path.Parent()
	endPath, _ := d.PathOf(last)
	endBlock := endPath.Parent()
	if startBlock.Equal(endBlock) {
		return nil
	}
	src, err := d.Element(endBlock)
	if err != nil {
		return err
	}
	dst, err := d.Element(startBlock)
	if err != nil {
		return err
	}
	tail := src.Children[endPath.Last():]
	dst.Children = append(dst.Children, tail...)
	src.Children = src.Children[:endPath.Last()]
	return nil
}
