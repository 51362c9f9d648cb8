package pdfmd

import (
	"regexp"
	"strings"
	"unicode"
)

// Page number markers that can appear inside a line of running text.
const inlineMarker = `--\s*\d+\s*(?:of\s*\d+)?\s*--` +
	`|page\s*\d+\s*(?:of\s*\d+)?` +
	`|第?\s*\d+\s*(?:页|page)\s*(?:/\s*(?:共|of)?\s*\d+\s*(?:页|page))?`

var (
	markerPrefixRe = compile(`(?i)^(?:` + inlineMarker + `|[-—–]+\s*\d+\s*(?:of\s*\d+)?\s*[-—–]+)\s+`)
	markerInlineRe = compile(`(?i)\s*(?:` + inlineMarker + `)\s*`)
	spaceRunRe     = compile(`\s+`)

	paginationLineRes = []*regexp.Regexp{
		compile(`(?i)^[-—–]+\s*\d+\s*(?:of\s*\d+)?\s*[-—–]+$`),
		compile(`^\d+\s*/\s*\d+$`),
		compile(`(?i)^page\s*\d+\s*(?:of\s*\d+)?$`),
		compile(`(?i)^第?\s*\d+\s*(?:页|page)\s*(?:/\s*(?:共|of)?\s*\d+\s*(?:页|page))?$`),
	}
)

// compile widens \s to Unicode spacing, which extracted text is full of.
func compile(pattern string) *regexp.Regexp {
	return regexp.MustCompile(strings.ReplaceAll(pattern, `\s`, `[\s\p{Zs}]`))
}

// normalizeForMatch collapses whitespace runs so lines compare by content.
func normalizeForMatch(line string) string {
	line = strings.ReplaceAll(line, "\x00", "")
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
}

// stripMarkers removes page-number markers at the start of a line or inside
// it, keeping the line's indentation. A line holding nothing else becomes "".
func stripMarkers(line string) string {
	if line == "" {
		return line
	}
	body := strings.TrimLeftFunc(line, unicode.IsSpace)
	leading := line[:len(line)-len(body)]

	hasPrefix := markerPrefixRe.MatchString(body)
	hasInline := markerInlineRe.MatchString(body)
	if !hasPrefix && !hasInline {
		return line
	}
	rest := markerPrefixRe.ReplaceAllString(body, "")
	rest = markerInlineRe.ReplaceAllString(rest, " ")
	rest = strings.TrimSpace(spaceRunRe.ReplaceAllString(rest, " "))
	if rest == "" {
		return ""
	}
	return leading + rest
}

// isPaginationLine matches lines that are nothing but a page number marker.
func isPaginationLine(line string) bool {
	s := normalizeForMatch(line)
	if s == "" {
		return false
	}
	for _, re := range paginationLineRes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
