package chunker

import (
	"strings"

	"github.com/dgallion1/docforge/internal/doctree"
	"github.com/dgallion1/docforge/internal/plaintext"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Sections smaller than this merge into the next one.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

// Chunk is a retrieval-sized slice of a document's text.
type Chunk struct {
	Text       string   `json:"text"`
	Index      int      `json:"index"`
	Title      string   `json:"title,omitempty"`
	Breadcrumb []string `json:"breadcrumb,omitempty"`
	Tokens     int      `json:"tokens"`
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = def.ChunkOverlap
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = def.MinChunk
	}
	return cfg
}

// section is a heading path and the plain text of the blocks under it.
type section struct {
	breadcrumb []string
	paras      []string
}

// sections groups top-level blocks under their headings. A heading-one
// starts a new path; a heading-two nests under the last heading-one.
func sections(doc *doctree.Document) []section {
	var out []section
	cur := section{}
	var h1 string

	flush := func() {
		if len(cur.paras) > 0 {
			out = append(out, cur)
		}
	}
	for _, n := range doc.Children {
		e, ok := n.(*doctree.Element)
		if ok && (e.Kind == doctree.HeadingOne || e.Kind == doctree.HeadingTwo) {
			flush()
			title := strings.TrimSpace(plaintext.FromNodes([]doctree.Node{e}))
			if e.Kind == doctree.HeadingOne {
				h1 = title
				cur = section{breadcrumb: nonEmpty(title)}
			} else {
				cur = section{breadcrumb: nonEmpty(h1, title)}
			}
			continue
		}
		if t := plaintext.FromNodes([]doctree.Node{n}); t != "" {
			cur.paras = append(cur.paras, t)
		}
	}
	flush()
	return out
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ChunkDocument projects doc to plain text section by section and splits
// each section into chunks. Sections smaller than MinChunk are carried into
// the next section rather than dropped.
func ChunkDocument(doc *doctree.Document, title string, cfg Config) []Chunk {
	cfg = cfg.withDefaults()
	if doc == nil {
		return nil
	}

	var chunks []Chunk
	emit := func(text string, bc []string) {
		chunks = append(chunks, Chunk{
			Text:       text,
			Index:      len(chunks),
			Title:      title,
			Breadcrumb: copyBreadcrumb(bc),
			Tokens:     EstimateTokens(text),
		})
	}

	var carry string
	var carryBC []string
	for _, sec := range sections(doc) {
		text := strings.Join(sec.paras, "\n\n")
		if carry != "" {
			text = carry + "\n\n" + text
			carry, carryBC = "", nil
		}

		tokens := EstimateTokens(text)
		if tokens < cfg.MinChunk {
			carry, carryBC = text, sec.breadcrumb
			continue
		}
		if tokens <= cfg.ChunkSize {
			emit(text, sec.breadcrumb)
			continue
		}
		for _, part := range splitText(text, cfg.ChunkSize, cfg.ChunkOverlap) {
			emit(part, sec.breadcrumb)
		}
	}
	if carry != "" {
		emit(carry, carryBC)
	}
	return chunks
}

// splitText breaks text into chunks of approximately targetTokens, with overlap.
func splitText(text string, targetTokens, overlapTokens int) []string {
	// Split by paragraphs first.
	paragraphs := splitByParagraphs(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		// If a single paragraph exceeds the target, split it further.
		if paraTokens > targetTokens {
			// Flush current buffer.
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			// Split the large paragraph by sentences.
			subParts := splitBySentences(para, targetTokens, overlapTokens)
			result = append(result, subParts...)
			continue
		}

		// Would adding this paragraph exceed the target?
		if currentTokens+paraTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())

			// Start next chunk with overlap from end of current.
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences breaks a large paragraph into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	sentences := splitSentences(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range sentences {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}

// getOverlapText extracts the last N tokens worth of text for overlap.
func getOverlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	// Approximate: 1.33 tokens per word.
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
