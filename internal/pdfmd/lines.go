package pdfmd

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

var (
	columnGapRe    = compile(`\s{2,}`)
	glyphBulletRe  = compile(`^([•·●▪◦])\s+(.*)$`)
	orderedRe      = compile(`^(\d+)[.)]\s+(.*)$`)
	orderedCJKRe   = compile(`^(\d+)[、）)]\s*(.*)$`)
	cnNumeralRe    = compile(`^([一二三四五六七八九十]+)[、）)]\s*(.*)$`)
	mdBulletRe     = compile(`^[-*+]\s+(.*)$`)
	mdBulletHeadRe = compile(`^[-*+]\s+`)
	mdOrderedHead  = compile(`^\d+\.\s+`)
	sentenceEndRe  = regexp.MustCompile(`[。！？!?；;：:]$`)
	headingPunctRe = regexp.MustCompile(`[，,。.!?？！（）()]`)
	urlRe          = regexp.MustCompile(`(?i)https?://`)
)

func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeftFunc(s, unicode.IsSpace))]
}

func isColon(r rune) bool { return r == ':' || r == '：' }

func hasColon(s string) bool { return strings.ContainsAny(s, ":：") }

func hasDigit(s string) bool { return strings.ContainsFunc(s, unicode.IsDigit) }

// labelKey reports the label of a token that starts a "label: value" run:
// the text before the last colon found within the first maxRunes+1 runes.
func labelKey(token string, maxRunes int) (string, bool) {
	rs := []rune(token)
	for j := min(maxRunes, len(rs)-1); j >= 1; j-- {
		if isColon(rs[j]) {
			return string(rs[:j]), true
		}
	}
	return "", false
}

func isLabel(key string) bool {
	if !strings.ContainsFunc(key, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.Is(unicode.Han, r)
	}) {
		return false
	}
	switch strings.ToLower(key) {
	case "http", "https":
		return false
	}
	return true
}

// splitKeyValueRuns breaks a line holding several "label: value" pairs into
// one line per pair. Lines with fewer than two labels come back unchanged.
func (r *Reconstructor) splitKeyValueRuns(line string) []string {
	line = trimRight(line)
	leading := leadingSpace(line)
	body := line[len(leading):]
	if body == "" {
		return nil
	}

	var starts []int
	prevSpace := true
	for i, ch := range body {
		space := unicode.IsSpace(ch)
		if prevSpace && !space {
			end := strings.IndexFunc(body[i:], unicode.IsSpace)
			token := body[i:]
			if end >= 0 {
				token = body[i : i+end]
			}
			if key, ok := labelKey(token, r.cfg.LabelMaxRunes); ok && isLabel(key) {
				starts = append(starts, i)
			}
		}
		prevSpace = space
	}
	if len(starts) < 2 {
		return []string{line}
	}

	var out []string
	bounds := append(starts[1:], len(body))
	last := 0
	for _, pos := range bounds {
		if chunk := strings.TrimSpace(body[last:pos]); chunk != "" {
			out = append(out, leading+chunk)
		}
		last = pos
	}
	return out
}

// splitLongLine splits wide lines on column gaps, which is how side by side
// layout survives text extraction.
func (r *Reconstructor) splitLongLine(line string) []string {
	line = trimRight(line)
	var segs []string
	for _, s := range columnGapRe.Split(line, -1) {
		if strings.TrimSpace(s) != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) <= 1 || runewidth.StringWidth(line) < r.cfg.LongLineWidth {
		return []string{line}
	}
	return segs
}

// normalizeListLine rewrites glyph bullets and Western or Chinese ordinals
// as markdown list markers, keeping the indentation that encodes nesting.
func normalizeListLine(line string) (string, bool) {
	leading := leadingSpace(line)
	body := line[len(leading):]

	item := func(marker, rest string) (string, bool) {
		return trimRight(leading + marker + " " + strings.TrimSpace(rest)), true
	}
	if m := glyphBulletRe.FindStringSubmatch(body); m != nil {
		return item("-", m[2])
	}
	if m := orderedRe.FindStringSubmatch(body); m != nil {
		return item(m[1]+".", m[2])
	}
	if m := orderedCJKRe.FindStringSubmatch(body); m != nil {
		return item(m[1]+".", m[2])
	}
	if m := cnNumeralRe.FindStringSubmatch(body); m != nil {
		n, ok := cnToInt(m[1])
		if !ok {
			return "", false
		}
		return item(strconv.Itoa(n)+".", m[2])
	}
	if m := mdBulletRe.FindStringSubmatch(body); m != nil {
		return item("-", m[1])
	}
	return "", false
}

var cnDigits = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5,
	"六": 6, "七": 7, "八": 8, "九": 9,
}

// cnToInt reads Chinese numerals from 1 to 99.
func cnToInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if s == "十" {
		return 10, true
	}
	if n, ok := cnDigits[s]; ok {
		return n, true
	}
	tensPart, onesPart, found := strings.Cut(s, "十")
	if !found {
		return 0, false
	}
	tens := 1
	if tensPart != "" {
		n, ok := cnDigits[tensPart]
		if !ok {
			return 0, false
		}
		tens = n
	}
	ones := 0
	if onesPart != "" {
		n, ok := cnDigits[onesPart]
		if !ok {
			return 0, false
		}
		ones = n
	}
	return tens*10 + ones, true
}

type keyValue struct {
	key, sep, value string
}

// parseKeyValue splits "label：value" on the first full-width colon, or the
// first ASCII colon when there is none.
func (r *Reconstructor) parseKeyValue(s string) (keyValue, bool) {
	sep := "："
	pos := strings.Index(s, sep)
	if pos < 0 {
		sep = ":"
		pos = strings.Index(s, sep)
	}
	if pos <= 0 {
		return keyValue{}, false
	}
	kv := keyValue{
		key:   strings.TrimSpace(s[:pos]),
		sep:   sep,
		value: strings.TrimSpace(s[pos+len(sep):]),
	}
	if kv.key == "" || kv.value == "" {
		return keyValue{}, false
	}
	if utf8.RuneCountInString(kv.key) > r.cfg.LabelMaxRunes || strings.ContainsFunc(kv.key, unicode.IsSpace) {
		return keyValue{}, false
	}
	return kv, true
}

func (r *Reconstructor) isSectionHeading(line string) bool {
	s := normalizeForMatch(line)
	n := utf8.RuneCountInString(s)
	switch {
	case s == "":
		return false
	case n < r.cfg.HeadingMinRunes || n > r.cfg.HeadingMaxRunes:
		return false
	case hasColon(s):
		return false
	case hasDigit(s) && n > r.cfg.HeadingDigitMaxRunes:
		return false
	case urlRe.MatchString(s):
		return false
	case mdBulletHeadRe.MatchString(s), mdOrderedHead.MatchString(s):
		return false
	case headingPunctRe.MatchString(s):
		return false
	}
	return true
}

// shouldJoin reports whether next continues the paragraph line prev, which
// undoes hard wraps without merging short standalone lines.
func (r *Reconstructor) shouldJoin(prev, next string) bool {
	a, b := strings.TrimSpace(prev), strings.TrimSpace(next)
	switch {
	case a == "" || b == "":
		return false
	case sentenceEndRe.MatchString(a):
		return false
	case hasColon(a) || hasColon(b):
		return false
	case utf8.RuneCountInString(a) < r.cfg.JoinPrevMinRunes:
		return false
	case utf8.RuneCountInString(b) < r.cfg.JoinNextMinRunes:
		return false
	case mdBulletHeadRe.MatchString(b), mdOrderedHead.MatchString(b), strings.HasPrefix(b, ">"):
		return false
	}
	return true
}

func isIndented(line string) bool {
	n := 0
	for _, ch := range line {
		if !unicode.IsSpace(ch) {
			return n >= 4
		}
		n++
	}
	return false
}
