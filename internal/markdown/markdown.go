// Package markdown converts authoring markdown into the canonical document
// tree. Parse implements the practical subset the editor exchanges;
// ParseCommonMark offers a stricter goldmark-backed alternative.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/docforge/internal/doctree"
)

// Engine selects a markdown implementation.
type Engine string

const (
	EngineHeuristic  Engine = "heuristic"
	EngineCommonMark Engine = "commonmark"
)

// ParseEngine validates an engine name. The empty string selects the heuristic engine.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case "", EngineHeuristic:
		return EngineHeuristic, nil
	case EngineCommonMark:
		return EngineCommonMark, nil
	}
	return "", fmt.Errorf("unknown markdown engine %q", name)
}

// Parse converts src with the selected engine.
func (e Engine) Parse(src string) *doctree.Document {
	if e == EngineCommonMark {
		return ParseCommonMark(src)
	}
	return Parse(src)
}

var (
	fenceRe         = regexp.MustCompile("^\\s*```")
	headingRe       = regexp.MustCompile(`^\s*(#{1,6})\s+(.*)$`)
	headingPrefixRe = regexp.MustCompile(`^\s*#{1,6}\s+`)
	quoteRe         = regexp.MustCompile(`^\s*>`)
	quoteStripRe    = regexp.MustCompile(`^\s*>\s?`)
	bulletMarkerRe  = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	orderedMarkerRe = regexp.MustCompile(`^\d+[.)]\s+(.*)$`)
	continuationRe  = regexp.MustCompile(`^(?:\s{2,}|\t+)\S`)
)

// Parse converts markdown into a document. It is total: any input, including
// the empty string, yields a well-formed tree with at least one block.
func Parse(src string) *doctree.Document {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	blocks := parseBlocks(lines)
	if len(blocks) == 0 {
		return doctree.NewEmpty()
	}
	return &doctree.Document{Children: blocks}
}

func parseBlocks(lines []string) []doctree.Node {
	var blocks []doctree.Node
	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case isBlank(line):
			i++

		case fenceRe.MatchString(line):
			// Close on a bare backtick run; the opener may carry an info string.
			fence := strings.TrimSpace(line)
			fence = fence[:len(fence)-len(strings.TrimLeft(fence, "`"))]
			var code []string
			i++
			for i < len(lines) && strings.TrimSpace(lines[i]) != fence {
				code = append(code, lines[i])
				i++
			}
			if i < len(lines) {
				i++
			}
			blocks = append(blocks, doctree.NewParagraph(&doctree.Text{Text: strings.Join(code, "\n")}))

		case headingRe.MatchString(line):
			m := headingRe.FindStringSubmatch(line)
			kind := doctree.HeadingTwo
			if len(m[1]) == 1 {
				kind = doctree.HeadingOne
			}
			blocks = append(blocks, doctree.NewElement(kind, parseInline(trimRight(m[2]))...))
			i++

		case quoteRe.MatchString(line):
			var inner []string
			for i < len(lines) && quoteRe.MatchString(lines[i]) {
				inner = append(inner, quoteStripRe.ReplaceAllString(lines[i], ""))
				i++
			}
			children := parseBlocks(inner)
			if len(children) == 0 {
				children = []doctree.Node{doctree.NewParagraph()}
			}
			blocks = append(blocks, doctree.NewElement(doctree.BlockQuote, children...))

		case isListMarker(line):
			var run []string
			for i < len(lines) {
				cur := lines[i]
				if isBlank(cur) {
					// A blank line belongs to the list only when the list resumes after it.
					if i+1 < len(lines) && (isListMarker(lines[i+1]) || isContinuation(lines[i+1])) {
						run = append(run, cur)
						i++
						continue
					}
					break
				}
				if !isListMarker(cur) && !isContinuation(cur) {
					break
				}
				run = append(run, cur)
				i++
			}
			blocks = append(blocks, parseList(run)...)

		default:
			var para []string
			for i < len(lines) {
				cur := lines[i]
				if isBlank(cur) || fenceRe.MatchString(cur) || headingPrefixRe.MatchString(cur) ||
					quoteRe.MatchString(cur) || isListMarker(cur) {
					break
				}
				para = append(para, cur)
				i++
			}
			text := trimRight(strings.Join(para, "\n"))
			blocks = append(blocks, doctree.NewParagraph(parseInline(text)...))
		}
	}
	return blocks
}

// listMarker describes a bullet or ordinal line.
type listMarker struct {
	indent int
	kind   doctree.Kind
	text   string
}

func parseListMarker(line string) (listMarker, bool) {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)
	if m := bulletMarkerRe.FindStringSubmatch(rest); m != nil {
		return listMarker{indent: indentWidth(line), kind: doctree.BulletedList, text: m[1]}, true
	}
	if m := orderedMarkerRe.FindStringSubmatch(rest); m != nil {
		return listMarker{indent: indentWidth(line), kind: doctree.NumberedList, text: m[1]}, true
	}
	return listMarker{}, false
}

func isListMarker(line string) bool {
	_, ok := parseListMarker(line)
	return ok
}

func isContinuation(line string) bool {
	return !isBlank(line) && continuationRe.MatchString(line)
}

// indentWidth counts leading spaces as one column and tabs as four.
func indentWidth(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func trimRight(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }
