package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/docforge/internal/markdown"
)

// MarkdownParser handles Markdown files with the configured engine.
type MarkdownParser struct {
	Engine markdown.Engine
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Import, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	return fromMarkdown(filename, string(src), p.Engine), nil
}
