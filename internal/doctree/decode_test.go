package doctree

import (
	"bytes"
	"strings"
	"testing"
)

const sample = `[
  {
    "children": [
      {"type": "h1", "children": [{"text": "Services Agreement", "bold": true}]},
      {"type": "clause", "title": "Key Details", "children": [
        {"type": "p", "children": ["bare", null, {"type": "mention", "color": "#f00", "children": [{"text": "Acme"}]}]}
      ]},
      null,
      {"type": "widget", "children": []}
    ]
  }
]`

func TestDecode_Structure(t *testing.T) {
	doc, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 4 {
		t.Fatalf("expected 4 top-level entries, got %d", len(doc))
	}

	h1 := doc[0]
	if h1.Type != KindHeading1 {
		t.Errorf("expected h1, got %v", h1.Type)
	}
	if !h1.Children[0].Bold || h1.Children[0].Text != "Services Agreement" {
		t.Errorf("unexpected h1 child: %+v", h1.Children[0])
	}

	clause := doc[1]
	if clause.Type != KindClause || clause.Title != "Key Details" {
		t.Errorf("unexpected clause: %+v", clause)
	}
	p := clause.Children[0]
	if len(p.Children) != 3 {
		t.Fatalf("expected 3 paragraph children, got %d", len(p.Children))
	}
	if !p.Children[0].Bare || p.Children[0].Text != "bare" {
		t.Errorf("expected bare string node, got %+v", p.Children[0])
	}
	if p.Children[1] != nil {
		t.Errorf("expected nil entry for null, got %+v", p.Children[1])
	}
	if m := p.Children[2]; m.Type != KindMention || m.Color != "#f00" {
		t.Errorf("unexpected mention: %+v", m)
	}

	if doc[2] != nil {
		t.Errorf("expected nil top-level entry")
	}
	if doc[3].Type != KindUnknown || doc[3].RawType != "widget" {
		t.Errorf("expected unknown kind to keep raw type, got %+v", doc[3])
	}
}

func TestDecode_Aliases(t *testing.T) {
	tests := []struct {
		wire string
		want Kind
	}{
		{"h1", KindHeading1},
		{"heading-1", KindHeading1},
		{"heading-4", KindHeading4},
		{"paragraph", KindParagraph},
		{"list", KindList},
		{"generic-block", KindBlock},
		{"", KindText},
		{"table", KindUnknown},
	}
	for _, tt := range tests {
		if got := ParseKind(tt.wire); got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.wire, got, tt.want)
		}
	}
}

func TestDecode_NonStringTextIsNotText(t *testing.T) {
	doc, err := Decode(strings.NewReader(`[{"children":[{"type":"p","children":[{"text":42}]}]}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc[0].Children[0].HasText {
		t.Errorf("numeric text must not count as text")
	}
}

func TestLoad_WrongFieldTypesSpoilOnlyTheirNode(t *testing.T) {
	title := `{"type":"h1","children":[{"text":"Service Agreement"}]}`
	bad := []struct {
		name string
		node string
		want func(*Node) bool
	}{
		{"bold", `{"type":"p","children":[{"text":"x","bold":1}]}`, func(n *Node) bool {
			run := n.Children[0]
			return n.Type == KindParagraph && run.Text == "x" && !run.Bold
		}},
		{"title", `{"type":"clause","title":5}`, func(n *Node) bool {
			return n.Type == KindClause && n.Title == ""
		}},
		{"type", `{"type":7,"children":[{"text":"x"}]}`, func(n *Node) bool {
			return n.Type == KindUnknown
		}},
		{"children", `{"type":"p","children":{}}`, func(n *Node) bool {
			return n.Type == KindParagraph && n.Children == nil
		}},
		{"color", `{"type":"mention","color":["red"],"underline":"yes"}`, func(n *Node) bool {
			return n.Type == KindMention && n.Color == "" && !n.Underline
		}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			doc := Load(strings.NewReader(`[{"children":[` + title + `,` + tt.node + `]}]`))
			if len(doc) != 2 {
				t.Fatalf("expected 2 blocks, got %d", len(doc))
			}
			if doc[0].Type != KindHeading1 || doc[0].Children[0].Text != "Service Agreement" {
				t.Errorf("valid title lost: %+v", doc[0])
			}
			if !tt.want(doc[1]) {
				t.Errorf("unexpected node %+v", doc[1])
			}
		})
	}
}

func TestDecode_NonObjectChildrenAreSkipped(t *testing.T) {
	doc, err := Decode(strings.NewReader(`[{"children":[42,true,[1],{"type":"p"}]}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 4 || doc[0] != nil || doc[1] != nil || doc[2] != nil {
		t.Fatalf("expected three nil entries before the paragraph, got %+v", doc)
	}
	if doc[3].Type != KindParagraph {
		t.Errorf("expected paragraph, got %v", doc[3].Type)
	}
}

func TestLoad_DegradesToEmpty(t *testing.T) {
	inputs := []string{
		"",
		"not json",
		"{}",
		"[]",
		"[42]",
		`[{"children": "nope"}]`,
	}
	for _, in := range inputs {
		doc := Load(strings.NewReader(in))
		if doc == nil || len(doc) != 0 {
			t.Errorf("input %q: expected empty document, got %d blocks", in, len(doc))
		}
	}
}

func TestDecodeYAML(t *testing.T) {
	input := `
- children:
    - type: clause
      title: Definitions
      children:
        - type: p
          children:
            - text: "Term means a word."
              bold: true
`
	doc, err := DecodeYAML([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 1 || doc[0].Title != "Definitions" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	run := doc[0].Children[0].Children[0]
	if run.Text != "Term means a word." || !run.Bold {
		t.Errorf("unexpected run: %+v", run)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	doc, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode after encode: %v", err)
	}
	if len(again) != len(doc) {
		t.Fatalf("expected %d blocks, got %d", len(doc), len(again))
	}
	if again[1].Children[0].Children[0].Text != "bare" || !again[1].Children[0].Children[0].Bare {
		t.Errorf("bare string lost in round trip")
	}
	if again[3].RawType != "widget" {
		t.Errorf("unknown type lost in round trip: %q", again[3].RawType)
	}
}
