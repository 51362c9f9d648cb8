package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docforge/internal/doctree"
)

type delimiter struct {
	token string
	apply func(doctree.Marks) doctree.Marks
}

// Checked in order at each position, so "**" wins over "*".
var delimiters = []delimiter{
	{"**", func(m doctree.Marks) doctree.Marks { m.Bold = true; return m }},
	{"__", func(m doctree.Marks) doctree.Marks { m.Bold = true; return m }},
	{"*", func(m doctree.Marks) doctree.Marks { m.Italic = true; return m }},
	{"_", func(m doctree.Marks) doctree.Marks { m.Italic = true; return m }},
	{"`", nil},
}

// parseInline converts one block's text into marked runs. It never fails:
// unmatched openers and unterminated tags come through as literal text.
func parseInline(s string) []doctree.Node {
	var out []doctree.Node
	scanInline(s, doctree.Marks{}, &out)
	if len(out) == 0 {
		return []doctree.Node{&doctree.Text{}}
	}
	return out
}

func scanInline(s string, m doctree.Marks, out *[]doctree.Node) {
	i := 0
	for i < len(s) {
		if r, size := utf8.DecodeRuneInString(s[i:]); isBackslash(r) && i+size < len(s) {
			next, nsize := utf8.DecodeRuneInString(s[i+size:])
			// Before letters and digits the backslash is literal text,
			// so paths like C:\Users survive.
			if isBackslash(next) || isEscapable(next) {
				pushRun(out, string(next), m)
				i += size + nsize
				continue
			}
		}

		if tag, ok := underlineTag(s[i:]); ok {
			start := i + len(tag) + 2
			closing := "</" + tag + ">"
			if end := indexFold(s[start:], closing); end >= 0 {
				u := m
				u.Underline = true
				scanInline(s[start:start+end], u, out)
				i = start + end + len(closing)
				continue
			}
			pushRun(out, "<", m)
			i++
			continue
		}

		if n, ok := scanDelimited(s, i, m, out); ok {
			i = n
			continue
		}

		j := nextCandidate(s, i+1)
		pushRun(out, s[i:j], m)
		i = j
	}
}

// scanDelimited handles an emphasis or code-span opener at i and returns the
// position after the construct.
func scanDelimited(s string, i int, m doctree.Marks, out *[]doctree.Node) (int, bool) {
	for _, d := range delimiters {
		if !strings.HasPrefix(s[i:], d.token) {
			continue
		}
		start := i + len(d.token)
		end := strings.Index(s[start:], d.token)
		if end < 0 {
			pushRun(out, d.token, m)
			return start, true
		}
		inner := s[start : start+end]
		if d.apply == nil {
			pushRun(out, inner, m)
		} else {
			scanInline(inner, d.apply(m), out)
		}
		return start + end + len(d.token), true
	}
	return 0, false
}

// underlineTag matches a case-insensitive <u> or <ins> opener and returns
// the lower-cased tag name.
func underlineTag(s string) (string, bool) {
	if len(s) < 3 || s[0] != '<' {
		return "", false
	}
	for _, tag := range []string{"u", "ins"} {
		n := len(tag) + 2
		if len(s) >= n && strings.EqualFold(s[1:n-1], tag) && s[n-1] == '>' {
			return tag, true
		}
	}
	return "", false
}

// indexFold finds an ASCII needle ignoring case without shifting byte offsets.
func indexFold(s, needle string) int {
	for k := 0; k+len(needle) <= len(s); k++ {
		if strings.EqualFold(s[k:k+len(needle)], needle) {
			return k
		}
	}
	return -1
}

// nextCandidate returns the index of the next byte that may start an inline
// construct, or len(s).
func nextCandidate(s string, from int) int {
	for j := from; j < len(s); {
		r, size := utf8.DecodeRuneInString(s[j:])
		switch r {
		case '<', '*', '_', '`', '\\', '＼':
			return j
		}
		j += size
	}
	return len(s)
}

func pushRun(out *[]doctree.Node, s string, m doctree.Marks) {
	if s == "" {
		return
	}
	if n := len(*out); n > 0 {
		if prev, ok := (*out)[n-1].(*doctree.Text); ok && prev.Marks() == m {
			prev.Text += s
			return
		}
	}
	*out = append(*out, doctree.NewText(s, m))
}

func isBackslash(r rune) bool { return r == '\\' || r == '＼' }

// isEscapable matches anything other than ASCII letters, digits and whitespace.
func isEscapable(r rune) bool {
	if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
		return false
	}
	return !unicode.IsSpace(r)
}
