package doctree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// wireNode is the JSON shape of a node object. Every field stays raw so a
// value of the wrong type spoils only its own field, never the document.
type wireNode struct {
	Type      json.RawMessage `json:"type"`
	Text      json.RawMessage `json:"text"`
	Bold      json.RawMessage `json:"bold"`
	Underline json.RawMessage `json:"underline"`
	Color     json.RawMessage `json:"color"`
	Title     json.RawMessage `json:"title"`
	Children  json.RawMessage `json:"children"`
}

var errEmptyInput = errors.New("empty input")

// Decode reads the source JSON: an array whose first element holds the
// document in its "children" array.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errEmptyInput
	}

	var roots []json.RawMessage
	if err := json.Unmarshal(data, &roots); err != nil {
		return nil, fmt.Errorf("decode root array: %w", err)
	}
	if len(roots) == 0 {
		return Document{}, nil
	}

	var root struct {
		Children json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(roots[0], &root); err != nil {
		return nil, fmt.Errorf("decode root element: %w", err)
	}

	children := rawArray(root.Children)
	doc := make(Document, 0, len(children))
	for i, raw := range children {
		n, err := decodeNode(raw)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		doc = append(doc, n)
	}
	return doc, nil
}

// DecodeYAML accepts the same structure written as YAML.
func DecodeYAML(data []byte) (Document, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return DecodeBytes(js)
}

// Load decodes r and degrades any failure to an empty document.
func Load(r io.Reader) Document {
	doc, err := Decode(r)
	if err != nil {
		return Document{}
	}
	return doc
}

// UnmarshalJSON decodes a node object or bare string.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec, err := decodeNode(data)
	if err != nil {
		return err
	}
	if dec == nil {
		*n = Node{}
		return nil
	}
	*n = *dec
	return nil
}

// decodeNode returns nil for JSON null and for any value that is neither a
// string nor an object, so the renderer skips the entry.
func decodeNode(raw json.RawMessage) (*Node, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &Node{Type: KindText, Text: s, HasText: true, Bare: true}, nil
	}
	if raw[0] != '{' {
		return nil, nil
	}

	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	n := &Node{
		Bold:      rawBool(w.Bold),
		Underline: rawBool(w.Underline),
		Color:     rawString(w.Color),
		Title:     rawString(w.Title),
	}

	switch {
	case isNull(w.Type):
		n.Type = KindText
	case w.Type[0] == '"':
		n.RawType = rawString(w.Type)
		n.Type = ParseKind(n.RawType)
	default:
		// A non-string type names no known kind.
		n.Type = KindUnknown
		n.RawType = string(w.Type)
	}

	// A non-string text value does not count as text.
	if len(w.Text) > 0 && w.Text[0] == '"' {
		if err := json.Unmarshal(w.Text, &n.Text); err != nil {
			return nil, err
		}
		n.HasText = true
	}

	if children := rawArray(w.Children); children != nil {
		n.Children = make([]*Node, 0, len(children))
		for _, c := range children {
			child, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
	}
	return n, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// rawString returns raw as a string, or "" when it holds anything else.
func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// rawBool is true only for the literal true.
func rawBool(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("true"))
}

// rawArray splits a JSON array into its elements. Anything other than an
// array yields nil.
func rawArray(raw json.RawMessage) []json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

// MarshalJSON writes the wire form back out.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.Bare {
		return json.Marshal(n.Text)
	}
	out := struct {
		Type      string  `json:"type,omitempty"`
		Text      *string `json:"text,omitempty"`
		Bold      bool    `json:"bold,omitempty"`
		Underline bool    `json:"underline,omitempty"`
		Color     string  `json:"color,omitempty"`
		Title     string  `json:"title,omitempty"`
		Children  []*Node `json:"children,omitempty"`
	}{
		Type:      n.RawType,
		Bold:      n.Bold,
		Underline: n.Underline,
		Color:     n.Color,
		Title:     n.Title,
		Children:  n.Children,
	}
	if out.Type == "" && n.Type != KindText && n.Type != KindUnknown {
		out.Type = n.Type.String()
	}
	if n.HasText {
		out.Text = &n.Text
	}
	return json.Marshal(out)
}

// Encode writes doc in the source layout accepted by Decode.
func Encode(w io.Writer, doc Document) error {
	root := []map[string]any{{"children": doc}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}
