package doctree

import (
	"errors"
	"fmt"
)

// Validate reports every structural invariant the document violates.
func Validate(d *Document) error {
	var errs []error
	for i, c := range d.Children {
		if _, ok := c.(*Text); ok {
			errs = append(errs, fmt.Errorf("%s: text run at top level", Path{i}))
		}
	}
	d.Walk(func(n Node, p Path) bool {
		el, ok := n.(*Element)
		if !ok {
			return true
		}
		if !el.Kind.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown element type %q", p, el.Kind))
		}
		if len(el.Children) == 0 {
			errs = append(errs, fmt.Errorf("%s: empty %s", p, el.Kind))
		}
		for i, c := range el.Children {
			child, isElement := c.(*Element)
			switch {
			case el.Kind.IsList() && (!isElement || child.Kind != ListItem):
				errs = append(errs, fmt.Errorf("%s: %s child is not a list-item", p.Child(i), el.Kind))
			case el.Kind == ListItem && !isElement:
				errs = append(errs, fmt.Errorf("%s: bare text in list-item", p.Child(i)))
			case el.Kind.IsTextBlock() && isElement:
				errs = append(errs, fmt.Errorf("%s: element inside %s", p.Child(i), el.Kind))
			}
		}
		return true
	})
	return errors.Join(errs...)
}
