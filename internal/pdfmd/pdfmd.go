// Package pdfmd rebuilds markdown from the raw text of PDF pages.
//
// Extracted page text has lost its structure: running headers and footers
// repeat on every page, page numbers are interleaved with content, list
// glyphs are not markdown, and paragraphs are hard wrapped. Reconstruct
// removes the noise and classifies each remaining line as a list item,
// quote, key-value pair, heading or paragraph text.
package pdfmd

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Result is the output of a reconstruction.
type Result struct {
	Markdown string `json:"markdown"`
	Pages    int    `json:"pages"`
	// RunningLines are the header and footer lines removed from page edges.
	RunningLines []string `json:"running_lines,omitempty"`
	// PaginationLines counts page-number lines dropped.
	PaginationLines int `json:"pagination_lines"`
}

// Reconstructor converts page text to markdown. It holds no state between
// calls and is safe for concurrent use.
type Reconstructor struct {
	cfg Config
}

// New returns a Reconstructor; zero Config fields take their defaults.
func New(cfg Config) *Reconstructor {
	return &Reconstructor{cfg: cfg.withDefaults()}
}

// Config returns the effective heuristics.
func (r *Reconstructor) Config() Config { return r.cfg }

// PagesToMarkdown reconstructs pages with the default heuristics.
func PagesToMarkdown(pages []string) string {
	return New(Config{}).Reconstruct(pages).Markdown
}

// Reconstruct converts the ordered text of each page into one markdown
// string.
func (r *Reconstructor) Reconstruct(pages []string) Result {
	res := Result{Pages: len(pages)}

	pageLines := make([][]string, len(pages))
	for i, p := range pages {
		pageLines[i] = r.splitPage(p, &res.PaginationLines)
	}

	running := r.runningLines(pageLines)
	for key := range running {
		res.RunningLines = append(res.RunningLines, key)
	}
	sort.Strings(res.RunningLines)

	w := &writer{r: r}
	for i, lines := range pageLines {
		lines = r.filterPage(lines, running, &res.PaginationLines)
		w.page(lines)
		if i < len(pageLines)-1 {
			w.blank()
		}
	}
	res.Markdown = w.String()
	return res
}

// splitPage normalizes a page and breaks it into candidate lines.
func (r *Reconstructor) splitPage(text string, pagination *int) []string {
	text = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\f", "\n",
		"\x00", "",
		"\t", "    ",
	).Replace(text)
	text = norm.NFC.String(text)

	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := trimRight(raw)
		cleaned := stripMarkers(line)
		if strings.TrimSpace(cleaned) == "" {
			if line != "" {
				*pagination++
			}
			out = append(out, "")
			continue
		}
		for _, kv := range r.splitKeyValueRuns(cleaned) {
			out = append(out, r.splitLongLine(kv)...)
		}
	}
	return out
}

// lineKey is the comparison key for header and footer detection, or "" for
// lines that cannot be one.
func (r *Reconstructor) lineKey(line string) string {
	key := normalizeForMatch(stripMarkers(line))
	if len([]rune(key)) > r.cfg.SignatureMaxRunes {
		return ""
	}
	return key
}

// runningLines finds lines repeated at the edges of enough pages to be
// headers or footers.
func (r *Reconstructor) runningLines(pageLines [][]string) map[string]bool {
	freq := map[string]int{}
	for _, lines := range pageLines {
		var keys []string
		for _, l := range lines {
			if k := r.lineKey(l); k != "" {
				keys = append(keys, k)
			}
		}
		seen := map[string]bool{}
		count := func(edge []string) {
			for _, k := range edge {
				if !seen[k] {
					seen[k] = true
					freq[k]++
				}
			}
		}
		count(keys[:min(r.cfg.CandidateLines, len(keys))])
		count(keys[max(0, len(keys)-r.cfg.CandidateLines):])
	}

	threshold := max(r.cfg.RepeatMinPages, int(math.Ceil(float64(len(pageLines))*r.cfg.RepeatRatio)))
	out := map[string]bool{}
	for k, n := range freq {
		if n >= threshold && len([]rune(k)) >= r.cfg.RepeatMinRunes {
			out[k] = true
		}
	}
	return out
}

// filterPage drops pagination lines anywhere on the page and running lines
// within the edge zones.
func (r *Reconstructor) filterPage(lines []string, running map[string]bool, pagination *int) []string {
	var idx []int
	for i, l := range lines {
		if r.lineKey(l) != "" {
			idx = append(idx, i)
		}
	}
	zone := map[int]bool{}
	for _, i := range idx[:min(r.cfg.ZoneLines, len(idx))] {
		zone[i] = true
	}
	for _, i := range idx[max(0, len(idx)-r.cfg.ZoneLines):] {
		zone[i] = true
	}

	out := make([]string, 0, len(lines))
	for i, l := range lines {
		n := normalizeForMatch(l)
		if n == "" {
			out = append(out, l)
			continue
		}
		if isPaginationLine(n) {
			*pagination++
			continue
		}
		if zone[i] && running[r.lineKey(l)] {
			continue
		}
		out = append(out, l)
	}
	return out
}
