package parser

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	inlineEscaper = strings.NewReplacer(
		`\`, `\\`,
		`＼`, `\＼`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"<", `\<`,
	)
	blockMarkerRe = regexp.MustCompile(`^\s*(?:[#>]|[-+](?:\s|$)|\d+[.)](?:\s|$))`)
)

// escapeLine makes a line of literal text parse back as itself: emphasis
// and code delimiters are escaped, and a leading block marker is defused.
func escapeLine(s string) string {
	s = inlineEscaper.Replace(s)
	if loc := blockMarkerRe.FindStringIndex(s); loc != nil {
		head := strings.TrimRightFunc(s[:loc[1]], unicode.IsSpace)
		at := len(head) - 1
		s = s[:at] + `\` + s[at:]
	}
	return s
}

// escapeText escapes every line of s.
func escapeText(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = escapeLine(l)
	}
	return strings.Join(lines, "\n")
}
