// Package plaintext projects documents to plain text for search indexing.
package plaintext

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/docforge/internal/doctree"
)

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// FromDocument returns the text of d. Every element contributes a newline
// after its last child, so blocks come out on their own lines; marks are
// dropped and runs of blank lines collapse to one.
func FromDocument(d *doctree.Document) string {
	if d == nil {
		return ""
	}
	return FromNodes(d.Children)
}

// FromNodes projects a sequence of nodes the same way as FromDocument.
func FromNodes(nodes []doctree.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		visit(&b, n)
	}
	return finish(b.String())
}

func visit(b *strings.Builder, n doctree.Node) {
	switch v := n.(type) {
	case *doctree.Text:
		b.WriteString(v.Text)
	case *doctree.Element:
		for _, c := range v.Children {
			visit(b, c)
		}
		b.WriteByte('\n')
	}
}

// FromJSON projects editor JSON without validating it: a node with a text
// string is a run, a node with a children array is an element, and
// anything else is skipped. The input may be a node array or one node.
func FromJSON(data []byte) (string, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("decode plain text input: %w", err)
	}
	var b strings.Builder
	if arr, ok := v.([]any); ok {
		for _, n := range arr {
			visitRaw(&b, n)
		}
	} else {
		visitRaw(&b, v)
	}
	return finish(b.String()), nil
}

func visitRaw(b *strings.Builder, v any) {
	obj, ok := v.(map[string]any)
	if !ok {
		return
	}
	if text, ok := obj["text"].(string); ok {
		b.WriteString(text)
		return
	}
	if children, ok := obj["children"].([]any); ok {
		for _, c := range children {
			visitRaw(b, c)
		}
		b.WriteByte('\n')
	}
}

func finish(s string) string {
	return strings.TrimSpace(blankRunRe.ReplaceAllString(s, "\n\n"))
}
