package doctree

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node by child indices from the root. The empty path is
// the document itself.
type Path []int

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Child returns the path of p's i-th child.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Parent returns the path of p's parent. The parent of a top-level path is
// the empty path.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1].Clone()
}

// Last returns the index of p within its parent.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// Next returns the path of the following sibling.
func (p Path) Next() Path {
	out := p.Clone()
	if len(out) > 0 {
		out[len(out)-1]++
	}
	return out
}

// Previous returns the path of the preceding sibling, or false for a first child.
func (p Path) Previous() (Path, bool) {
	if len(p) == 0 || p[len(p)-1] == 0 {
		return nil, false
	}
	out := p.Clone()
	out[len(out)-1]--
	return out, true
}

// Equal reports whether p and q address the same position.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Compare orders paths in document order. An ancestor compares equal to its
// descendants, matching how ranges treat containment.
func (p Path) Compare(q Path) int {
	n := min(len(p), len(q))
	for i := 0; i < n; i++ {
		switch {
		case p[i] < q[i]:
			return -1
		case p[i] > q[i]:
			return 1
		}
	}
	return 0
}

// IsAncestorOf reports whether p is a strict ancestor of q.
func (p Path) IsAncestorOf(q Path) bool {
	return len(p) < len(q) && p.Compare(q) == 0
}

// EndsBefore reports whether p is an earlier sibling of q or of one of q's ancestors.
func (p Path) EndsBefore(q Path) bool {
	if len(p) == 0 || len(q) < len(p) {
		return false
	}
	i := len(p) - 1
	return Path(p[:i]).Equal(q[:i]) && p[i] < q[i]
}

// Common returns the deepest path that is an ancestor of, or equal to, both.
func Common(p, q Path) Path {
	var out Path
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] != q[i] {
			break
		}
		out = append(out, p[i])
	}
	return out
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ParsePath reads a path written as "0.1.2" or "[0,1,2]".
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if s == "" {
		return Path{}, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == ',' })
	out := make(Path, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid path %q", s)
		}
		out = append(out, n)
	}
	return out, nil
}

// Point is a caret position: a text leaf and a rune offset inside it.
type Point struct {
	Path   Path `json:"path"`
	Offset int  `json:"offset"`
}

// Compare orders points in document order.
func (p Point) Compare(q Point) int {
	if c := p.Path.Compare(q.Path); c != 0 {
		return c
	}
	switch {
	case p.Offset < q.Offset:
		return -1
	case p.Offset > q.Offset:
		return 1
	}
	return 0
}

func (p Point) String() string {
	return fmt.Sprintf("%s:%d", p.Path, p.Offset)
}

// ParsePoint reads a point written as PATH:OFFSET, the form String produces.
func ParsePoint(s string) (Point, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return Point{}, fmt.Errorf("invalid point %q: want PATH:OFFSET", s)
	}
	path, err := ParsePath(s[:i])
	if err != nil {
		return Point{}, err
	}
	off, err := strconv.Atoi(s[i+1:])
	if err != nil || off < 0 {
		return Point{}, fmt.Errorf("invalid offset in point %q", s)
	}
	return Point{Path: path, Offset: off}, nil
}

// Selection is an anchor/focus pair. It is collapsed when both ends coincide.
type Selection struct {
	Anchor Point `json:"anchor"`
	Focus  Point `json:"focus"`
}

// Caret returns a collapsed selection at pt.
func Caret(pt Point) Selection {
	return Selection{Anchor: pt, Focus: Point{Path: pt.Path.Clone(), Offset: pt.Offset}}
}

// IsCollapsed reports whether anchor and focus are the same point.
func (s Selection) IsCollapsed() bool {
	return s.Anchor.Path.Equal(s.Focus.Path) && s.Anchor.Offset == s.Focus.Offset
}

// Start returns the earlier end in document order.
func (s Selection) Start() Point {
	if s.Anchor.Compare(s.Focus) <= 0 {
		return s.Anchor
	}
	return s.Focus
}

// End returns the later end in document order.
func (s Selection) End() Point {
	if s.Anchor.Compare(s.Focus) <= 0 {
		return s.Focus
	}
	return s.Anchor
}
