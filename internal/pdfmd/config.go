package pdfmd

// Config holds the reconstruction heuristics. They were tuned on Chinese and
// English business documents; zero fields fall back to DefaultConfig.
type Config struct {
	// LabelMaxRunes caps the key of a "label: value" run.
	LabelMaxRunes int `yaml:"label_max_runes" json:"label_max_runes,omitempty"`
	// HeadingMinRunes and HeadingMaxRunes bound a section heading line.
	HeadingMinRunes int `yaml:"heading_min_runes" json:"heading_min_runes,omitempty"`
	HeadingMaxRunes int `yaml:"heading_max_runes" json:"heading_max_runes,omitempty"`
	// HeadingDigitMaxRunes is the longest heading allowed to contain digits.
	HeadingDigitMaxRunes int `yaml:"heading_digit_max_runes" json:"heading_digit_max_runes,omitempty"`

	// RepeatRatio is the share of pages a header or footer must appear on.
	RepeatRatio float64 `yaml:"repeat_ratio" json:"repeat_ratio,omitempty"`
	// RepeatMinPages is the floor of the repeat threshold.
	RepeatMinPages int `yaml:"repeat_min_pages" json:"repeat_min_pages,omitempty"`
	// RepeatMinRunes ignores shorter repeated lines.
	RepeatMinRunes int `yaml:"repeat_min_runes" json:"repeat_min_runes,omitempty"`
	// SignatureMaxRunes ignores longer lines when counting repeats.
	SignatureMaxRunes int `yaml:"signature_max_runes" json:"signature_max_runes,omitempty"`
	// CandidateLines is how many non-empty lines at each page edge are counted.
	CandidateLines int `yaml:"candidate_lines" json:"candidate_lines,omitempty"`
	// ZoneLines is how many non-empty lines at each page edge may be removed.
	ZoneLines int `yaml:"zone_lines" json:"zone_lines,omitempty"`

	// LongLineWidth is the display width from which column gaps split a line.
	LongLineWidth int `yaml:"long_line_width" json:"long_line_width,omitempty"`
	// JoinPrevMinRunes and JoinNextMinRunes gate undoing hard line wraps.
	JoinPrevMinRunes int `yaml:"join_prev_min_runes" json:"join_prev_min_runes,omitempty"`
	JoinNextMinRunes int `yaml:"join_next_min_runes" json:"join_next_min_runes,omitempty"`
}

// DefaultConfig returns the stock heuristics.
func DefaultConfig() Config {
	return Config{
		LabelMaxRunes:        16,
		HeadingMinRunes:      4,
		HeadingMaxRunes:      26,
		HeadingDigitMaxRunes: 12,
		RepeatRatio:          0.6,
		RepeatMinPages:       2,
		RepeatMinRunes:       3,
		SignatureMaxRunes:    100,
		CandidateLines:       3,
		ZoneLines:            5,
		LongLineWidth:        120,
		JoinPrevMinRunes:     20,
		JoinNextMinRunes:     10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LabelMaxRunes <= 0 {
		c.LabelMaxRunes = d.LabelMaxRunes
	}
	if c.HeadingMinRunes <= 0 {
		c.HeadingMinRunes = d.HeadingMinRunes
	}
	if c.HeadingMaxRunes <= 0 {
		c.HeadingMaxRunes = d.HeadingMaxRunes
	}
	if c.HeadingDigitMaxRunes <= 0 {
		c.HeadingDigitMaxRunes = d.HeadingDigitMaxRunes
	}
	if c.RepeatRatio <= 0 || c.RepeatRatio > 1 {
		c.RepeatRatio = d.RepeatRatio
	}
	if c.RepeatMinPages <= 0 {
		c.RepeatMinPages = d.RepeatMinPages
	}
	if c.RepeatMinRunes <= 0 {
		c.RepeatMinRunes = d.RepeatMinRunes
	}
	if c.SignatureMaxRunes <= 0 {
		c.SignatureMaxRunes = d.SignatureMaxRunes
	}
	if c.CandidateLines <= 0 {
		c.CandidateLines = d.CandidateLines
	}
	if c.ZoneLines <= 0 {
		c.ZoneLines = d.ZoneLines
	}
	if c.LongLineWidth <= 0 {
		c.LongLineWidth = d.LongLineWidth
	}
	if c.JoinPrevMinRunes <= 0 {
		c.JoinPrevMinRunes = d.JoinPrevMinRunes
	}
	if c.JoinNextMinRunes <= 0 {
		c.JoinNextMinRunes = d.JoinNextMinRunes
	}
	return c
}
