package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/dgallion1/docforge/internal/markdown"
)

// HTMLParser handles HTML files. Page chrome is dropped, the body is
// sanitized and converted to markdown, and the markdown is normalized to
// the editor's block set before parsing.
type HTMLParser struct {
	Engine markdown.Engine
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Import, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := findTitle(doc)

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	dropChrome(root)

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
	}

	md, err := htmlToMarkdown(buf.String())
	if err != nil {
		return nil, err
	}

	imp := fromMarkdown(filename, markdown.NormalizeImported(md), p.Engine)
	if title != "" {
		imp.Title = title
	}
	return imp, nil
}

func htmlPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("u", "ins")
	return policy
}

func newHTMLConverter() *converter.Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	conv.Register.RendererFor("u", converter.TagTypeInline, renderUnderline, converter.PriorityStandard)
	conv.Register.RendererFor("ins", converter.TagTypeInline, renderUnderline, converter.PriorityStandard)
	return conv
}

// renderUnderline keeps underline as an inline tag, which the markdown
// parser reads back as the underline mark.
func renderUnderline(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	w.WriteString("<u>")
	ctx.RenderChildNodes(ctx, w, n)
	w.WriteString("</u>")
	return converter.RenderSuccess
}

// htmlToMarkdown sanitizes a fragment and converts it to markdown.
func htmlToMarkdown(fragment string) (string, error) {
	clean := htmlPolicy().Sanitize(fragment)
	md, err := newHTMLConverter().ConvertString(clean)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return md, nil
}

// dropChrome removes scripts, styles and page navigation.
func dropChrome(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			switch c.Data {
			case "script", "style", "nav", "footer", "header", "noscript":
				n.RemoveChild(c)
				c = next
				continue
			}
		}
		dropChrome(c)
		c = next
	}
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
