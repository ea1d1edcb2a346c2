package render

import (
	"testing"

	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/google/go-cmp/cmp"
)

func TestInline_SkipsNilAndKeepsBareStrings(t *testing.T) {
	nodes := []*doctree.Node{
		nil,
		{Type: doctree.KindText, Text: "plain", HasText: true, Bare: true, Bold: true},
		doctree.Styled("bold", true, false),
	}
	got := Inline(nodes, false)
	want := []Fragment{
		{Role: InlineSpan, Text: "plain"},
		{Role: InlineSpan, Text: "bold", Bold: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Inline mismatch (-want +got):\n%s", diff)
	}
}

func TestInline_RolesFromType(t *testing.T) {
	nodes := []*doctree.Node{
		doctree.Element(doctree.KindHeading1, doctree.Text("a")),
		doctree.Element(doctree.KindHeading4, doctree.Text("b")),
		doctree.Element(doctree.KindParagraph, doctree.Text("c")),
		{Type: doctree.KindUnknown, RawType: "marquee", Text: "d", HasText: true},
	}
	got := Inline(nodes, false)
	roles := []InlineRole{InlineHeading1, InlineHeading4, InlineParagraph, InlineSpan}
	if len(got) != len(roles) {
		t.Fatalf("expected %d fragments, got %d", len(roles), len(got))
	}
	for i, r := range roles {
		if got[i].Role != r {
			t.Errorf("fragment %d: expected role %q, got %q", i, r, got[i].Role)
		}
	}
	if got[3].Text != "d" {
		t.Errorf("leaf without children should render its text, got %q", got[3].Text)
	}
}

func TestInline_ForcePlainPropagates(t *testing.T) {
	nodes := []*doctree.Node{
		{Type: doctree.KindParagraph, Bold: true, Children: []*doctree.Node{
			doctree.Styled("deep", true, true),
			doctree.Mention("#0a0", doctree.Styled("inside", true, true)),
		}},
	}
	got := Inline(nodes, true)
	var check func([]Fragment)
	check = func(frags []Fragment) {
		for _, f := range frags {
			if f.Bold || f.Underline {
				t.Errorf("styling leaked through forcePlain: %+v", f)
			}
			check(f.Children)
		}
	}
	check(got)
	if PlainText(got) != "deepinside" {
		t.Errorf("unexpected text %q", PlainText(got))
	}
}

func TestInline_MentionWrapsChildrenIndividually(t *testing.T) {
	m := doctree.Mention("#123456",
		doctree.Styled("Acme", true, false),
		nil,
		doctree.Text(" Corp"),
	)
	got := Inline([]*doctree.Node{doctree.Text("by "), m, doctree.Text(" only")}, false)
	want := []Fragment{
		{Role: InlineSpan, Text: "by "},
		{Role: InlineMention, BackgroundColor: "#123456", Children: []Fragment{
			{Role: InlineSpan, Text: "Acme", Bold: true},
			{Role: InlineSpan, Text: " Corp"},
		}},
		{Role: InlineSpan, Text: " only"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mention mismatch (-want +got):\n%s", diff)
	}
}

func TestInline_ChildrenWinOverText(t *testing.T) {
	n := &doctree.Node{Type: doctree.KindParagraph, Text: "ignored", HasText: true, Children: []*doctree.Node{doctree.Text("used")}}
	got := Inline([]*doctree.Node{n}, false)
	if got[0].Text != "" || PlainText(got) != "used" {
		t.Errorf("expected children to be rendered instead of text, got %+v", got[0])
	}
}

func TestInline_Deterministic(t *testing.T) {
	nodes := []*doctree.Node{doctree.Mention("red", doctree.Styled("x", true, true)), doctree.Text("y")}
	if diff := cmp.Diff(Inline(nodes, false), Inline(nodes, false)); diff != "" {
		t.Errorf("Inline not deterministic:\n%s", diff)
	}
}
