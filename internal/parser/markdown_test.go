package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/dgallion1/docrender/internal/render"
	"github.com/google/go-cmp/cmp"
)

const contractMarkdown = `# Services Agreement

## Parties

PARTIES
Acme Corp

Client Pty Ltd

## Key Details

The **Supplier** is <u>Acme</u>.

## Definitions

- **Business Day** means a weekday.
- *Services* means the work.

## Agreement to Provide Services

The Supplier agrees:

### Delivery

To deliver on time.

### Quality

To meet the standards.

## Termination

Either party may terminate.
`

func TestMarkdownParser_ContractOutline(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(contractMarkdown), "contract.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kinds := make([]doctree.Kind, 0, len(doc))
	for _, b := range doc {
		kinds = append(kinds, b.Type)
	}
	wantKinds := []doctree.Kind{
		doctree.KindHeading1,
		doctree.KindBlock,
		doctree.KindClause,
		doctree.KindClause,
		doctree.KindClause,
		doctree.KindClause,
	}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Fatalf("top-level kinds mismatch (-want +got):\n%s", diff)
	}

	agreement := doc[4]
	if agreement.Title != "Agreement to Provide Services" {
		t.Fatalf("unexpected clause title %q", agreement.Title)
	}
	if n := len(agreement.Children); n != 3 {
		t.Fatalf("expected paragraph + 2 sub-clauses, got %d children", n)
	}
	if agreement.Children[1].Type != doctree.KindClause || agreement.Children[1].Title != "Delivery" {
		t.Errorf("expected Delivery sub-clause, got %+v", agreement.Children[1])
	}
}

func TestMarkdownParser_RendersContract(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(contractMarkdown), "contract.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := render.Lines(render.Document(doc))
	want := []string{
		"Services Agreement",
		"PARTIES",
		"Acme Corp",
		"Client Pty Ltd",
		"1. Key Details",
		"The Supplier is Acme.",
		"2. Definitions",
		"Business Day means a weekday.",
		"Services means the work.",
		"3. Agreement to Provide Services",
		"The Supplier agrees:",
		"(a) To deliver on time.",
		"(b) To meet the standards.",
		"Termination",
		"Either party may terminate.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rendered lines mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdownParser_InlineStyles(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader("The **Supplier** is <u>Acme</u>."), "s.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc))
	}
	runs := doc[0].Children
	if len(runs) != 5 {
		t.Fatalf("expected 5 runs, got %d", len(runs))
	}
	if !runs[1].Bold || runs[1].Text != "Supplier" {
		t.Errorf("expected bold Supplier, got %+v", runs[1])
	}
	if !runs[3].Underline || runs[3].Text != "Acme" {
		t.Errorf("expected underlined Acme, got %+v", runs[3])
	}
	if runs[4].Underline {
		t.Errorf("underline must stop at </u>")
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(doc))
	}
	for _, b := range doc {
		if b.Type != doctree.KindParagraph {
			t.Errorf("expected paragraph, got %v", b.Type)
		}
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 0 {
		t.Errorf("expected 0 blocks for empty input, got %d", len(doc))
	}
}
