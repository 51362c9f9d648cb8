package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docforge/internal/doctree"
)

// TextParser handles plain text files. Text is taken literally: each
// paragraph becomes one unmarked run, and the markdown rendition escapes
// anything a markdown parser would read as syntax.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Import, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	doc := &doctree.Document{}
	escaped := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		doc.Children = append(doc.Children, doctree.NewParagraph(&doctree.Text{Text: para}))
		escaped = append(escaped, escapeText(para))
	}
	if len(doc.Children) == 0 {
		doc = doctree.NewEmpty()
	}

	return &Import{
		Title:    Title(filename),
		Format:   format(filename),
		Markdown: strings.Join(escaped, "\n\n"),
		Document: doc,
	}, nil
}
