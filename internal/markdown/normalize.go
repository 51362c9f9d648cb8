package markdown

import (
	"regexp"
	"strings"
)

var (
	imageRe       = regexp.MustCompile(`!\[[^\]]*]\([^)]*\)`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	tagNameRe     = regexp.MustCompile(`^</?\s*([A-Za-z0-9]+)`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
	flatBulletRe  = regexp.MustCompile(`^([-*+])\s+(.*)$`)
	flatOrderedRe = regexp.MustCompile(`^\d+[.)]\s+(.*)$`)
)

// NormalizeImported cleans markdown produced by document converters before
// it is parsed: headings collapse to two levels, images and HTML other than
// underline tags are dropped, blank-line runs shrink to one, and flat lists
// that encode nesting through alternating bullet glyphs are re-indented.
// Empty input yields the empty string; anything else ends with one newline.
func NormalizeImported(md string) string {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	md = strings.ReplaceAll(md, "\r", "\n")

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if len(m[1]) <= 1 {
			lines[i] = "# " + trimRight(m[2])
		} else {
			lines[i] = "## " + trimRight(m[2])
		}
	}
	lines = renestFlatLists(lines)

	out := strings.Join(lines, "\n")
	out = imageRe.ReplaceAllString(out, "")
	out = tagRe.ReplaceAllStringFunc(out, func(tag string) string {
		if m := tagNameRe.FindStringSubmatch(tag); m != nil {
			switch strings.ToLower(m[1]) {
			case "u", "ins":
				return tag
			}
		}
		return ""
	})
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	out = strings.TrimSpace(out)
	if out == "" {
		return ""
	}
	return out + "\n"
}

// renestFlatLists rewrites unindented list runs. Converters emit every level
// at column zero and vary the bullet glyph per level, so the first glyph
// seen in a run is depth zero, the next new glyph depth one, and so on.
// Bullets under an ordered item sit one level deeper. Ordered items are
// renumbered to 1 and left to the list parser to count.
func renestFlatLists(lines []string) []string {
	depths := map[string]int{}
	underOrdered := false
	for i, line := range lines {
		if isBlank(line) {
			continue
		}
		if m := flatBulletRe.FindStringSubmatch(line); m != nil {
			d, ok := depths[m[1]]
			if !ok {
				d = len(depths)
				depths[m[1]] = d
			}
			if underOrdered {
				d++
			}
			lines[i] = strings.Repeat("  ", d) + "- " + m[2]
			continue
		}
		if m := flatOrderedRe.FindStringSubmatch(line); m != nil {
			lines[i] = "1. " + m[1]
			underOrdered = true
			continue
		}
		if isContinuation(line) {
			continue
		}
		depths = map[string]int{}
		underOrdered = false
	}
	return lines
}
