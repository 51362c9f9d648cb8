package pdfmd

import (
	"strings"
	"unicode"
)

// writer accumulates markdown lines while classifying page lines. A
// paragraph may span several input lines; list and quote runs end with a
// blank line.
type writer struct {
	r   *Reconstructor
	out []string

	para     string
	paraLast string
	inList   bool
	inQuote  bool
}

func (w *writer) flushParagraph() {
	if p := strings.TrimSpace(w.para); p != "" {
		w.out = append(w.out, p, "")
	}
	w.para, w.paraLast = "", ""
}

func (w *writer) endList() {
	if w.inList {
		w.out = append(w.out, "")
		w.inList = false
	}
}

func (w *writer) endQuote() {
	if w.inQuote {
		w.out = append(w.out, "")
		w.inQuote = false
	}
}

func (w *writer) endBlocks() {
	w.flushParagraph()
	w.endList()
	w.endQuote()
}

func (w *writer) blank() {
	if n := len(w.out); n > 0 && w.out[n-1] != "" {
		w.out = append(w.out, "")
	}
}

// listContinues reports whether the next content line after a blank at i
// is another list item, so a list interrupted by blank lines stays whole.
func listContinues(lines []string, i int) bool {
	for j := i + 1; j < len(lines); j++ {
		line := trimRight(lines[j])
		t := strings.TrimSpace(stripMarkers(line))
		if t == "" || isPaginationLine(t) {
			continue
		}
		_, ok := normalizeListLine(line)
		return ok
	}
	return false
}

func (w *writer) page(lines []string) {
	for i, raw := range lines {
		line := trimRight(raw)
		trimmed := strings.TrimSpace(stripMarkers(line))

		if trimmed == "" {
			if w.inList && listContinues(lines, i) {
				continue
			}
			w.endBlocks()
			w.blank()
			continue
		}
		if isPaginationLine(trimmed) {
			w.endBlocks()
			w.blank()
			continue
		}

		if item, ok := normalizeListLine(line); ok {
			w.flushParagraph()
			w.endQuote()
			w.inList = true
			w.out = append(w.out, item)
			continue
		}

		if isIndented(line) {
			w.flushParagraph()
			w.endList()
			w.inQuote = true
			w.out = append(w.out, "> "+strings.TrimLeftFunc(line, unicode.IsSpace))
			continue
		}

		if kv, ok := w.r.parseKeyValue(trimmed); ok {
			w.endBlocks()
			w.out = append(w.out, "**"+kv.key+kv.sep+"** "+kv.value, "")
			continue
		}

		if w.r.isSectionHeading(trimmed) {
			w.endBlocks()
			w.out = append(w.out, "## "+trimmed, "")
			continue
		}

		w.endList()
		w.endQuote()
		switch {
		case w.para == "":
			w.para = trimmed
		case w.r.shouldJoin(w.paraLast, trimmed):
			w.para += " " + trimmed
		default:
			w.flushParagraph()
			w.para = trimmed
		}
		w.paraLast = trimmed
	}
	w.endBlocks()
}

func (w *writer) String() string {
	out := w.out
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
