package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docforge/internal/markdown"
)

// DOCXParser handles .docx files. Heading styles become markdown headings,
// numbered or list-styled paragraphs become list items and run formatting
// becomes emphasis.
type DOCXParser struct {
	Engine markdown.Engine
}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Import, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmpPath, size, err := spool(r, "docforge-docx-*.docx")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPath)

	f, err := os.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open temp file: %w", err)
	}
	doc, err := docx.Parse(f, size)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	md := markdown.NormalizeImported(docxMarkdown(doc.Document.Body.Items))
	return fromMarkdown(filename, md, p.Engine), nil
}

// docxMarkdown renders body items. List paragraphs stay adjacent so they
// form one list; everything else is separated by a blank line.
func docxMarkdown(items []interface{}) string {
	var b strings.Builder
	inList := false
	block := func(s string, list bool) {
		if b.Len() > 0 && !(list && inList) {
			b.WriteString("\n")
		}
		b.WriteString(s + "\n")
		inList = list
	}

	for _, item := range items {
		switch v := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(v)
			if text == "" {
				continue
			}
			if level := docxHeadingLevel(v); level > 0 {
				block(strings.Repeat("#", level)+" "+text, false)
				continue
			}
			if marker, depth, ok := docxListMarker(v); ok {
				block(strings.Repeat("  ", depth)+marker+" "+text, true)
				continue
			}
			block(text, false)
		case *docx.Table:
			for _, row := range v.TableRows {
				var cells []string
				for _, cell := range row.TableCells {
					var parts []string
					for _, para := range cell.Paragraphs {
						if t := docxParagraphText(para); t != "" {
							parts = append(parts, t)
						}
					}
					cells = append(cells, strings.Join(parts, " "))
				}
				if strings.TrimSpace(strings.Join(cells, "")) != "" {
					block("- "+strings.Join(cells, " | "), true)
				}
			}
		}
	}
	return b.String()
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

func docxHeadingLevel(para *docx.Paragraph) int {
	style := docxStyle(para)
	if style == "title" {
		return 1
	}
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

// docxListMarker reports the markdown marker and nesting depth of a list
// paragraph.
func docxListMarker(para *docx.Paragraph) (string, int, bool) {
	style := docxStyle(para)
	numbered := strings.Contains(style, "number")
	list := numbered || strings.Contains(style, "list") || strings.Contains(style, "bullet")

	depth := 0
	if para.Properties != nil && para.Properties.NumProperties != nil {
		list = true
		if lvl := para.Properties.NumProperties.Ilvl; lvl != nil {
			if n, err := strconv.Atoi(lvl.Val); err == nil && n > 0 {
				depth = n
			}
		}
	}
	if !list {
		return "", 0, false
	}
	if numbered {
		return "1.", depth, true
	}
	return "-", depth, true
}

// docxParagraphText renders a paragraph's runs with their emphasis.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			buf.WriteString(docxRunText(c))
		case *docx.Hyperlink:
			buf.WriteString(docxRunText(&c.Run))
		}
	}
	return strings.TrimSpace(buf.String())
}

func docxRunText(run *docx.Run) string {
	var buf strings.Builder
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(escapeLine(t.Text))
		case *docx.Tab, *docx.BarterRabbet:
			buf.WriteString(" ")
		}
	}
	text := buf.String()
	if strings.TrimSpace(text) == "" || run.RunProperties == nil {
		return text
	}

	// Emphasis markers must hug the text, so surrounding spaces stay outside.
	lead := text[:len(text)-len(strings.TrimLeft(text, " "))]
	trail := text[len(strings.TrimRight(text, " ")):]
	core := strings.TrimSpace(text)

	props := run.RunProperties
	if props.Underline != nil && props.Underline.Val != "none" {
		core = "<u>" + core + "</u>"
	}
	if props.Italic != nil {
		core = "_" + core + "_"
	}
	if props.Bold != nil {
		core = "**" + core + "**"
	}
	return lead + core + trail
}
