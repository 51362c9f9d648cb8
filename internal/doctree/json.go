package doctree

import (
	"encoding/json"
	"fmt"
)

// wireNode is the editor's JSON shape for both elements and text runs.
type wireNode struct {
	Type      string            `json:"type,omitempty"`
	Children  []json.RawMessage `json:"children,omitempty"`
	Text      *string           `json:"text,omitempty"`
	Bold      bool              `json:"bold,omitempty"`
	Italic    bool              `json:"italic,omitempty"`
	Underline bool              `json:"underline,omitempty"`
}

// MarshalJSON encodes the document as an array of top-level nodes.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make([]any, len(d.Children))
	for i, c := range d.Children {
		out[i] = encodeNode(c)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an array of editor nodes. Unknown element types are
// rejected; missing optional fields are tolerated.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	children := make([]Node, 0, len(raw))
	for i, r := range raw {
		n, err := decodeNode(r)
		if err != nil {
			return fmt.Errorf("decode node %d: %w", i, err)
		}
		children = append(children, n)
	}
	d.Children = children
	return nil
}

func encodeNode(n Node) any {
	switch v := n.(type) {
	case *Text:
		m := map[string]any{"text": v.Text}
		if v.Bold {
			m["bold"] = true
		}
		if v.Italic {
			m["italic"] = true
		}
		if v.Underline {
			m["underline"] = true
		}
		return m
	case *Element:
		children := make([]any, len(v.Children))
		for i, c := range v.Children {
			children[i] = encodeNode(c)
		}
		return map[string]any{"type": string(v.Kind), "children": children}
	}
	return nil
}

func decodeNode(data []byte) (Node, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.Text != nil && w.Type == "" {
		return &Text{Text: *w.Text, Bold: w.Bold, Italic: w.Italic, Underline: w.Underline}, nil
	}
	k := Kind(w.Type)
	if !k.Valid() {
		return nil, fmt.Errorf("unknown element type %q", w.Type)
	}
	el := &Element{Kind: k, Children: make([]Node, 0, len(w.Children))}
	for i, c := range w.Children {
		child, err := decodeNode(c)
		if err != nil {
			return nil, fmt.Errorf("%s child %d: %w", k, i, err)
		}
		el.Children = append(el.Children, child)
	}
	return el, nil
}
