package present

import (
	"bytes"
	"testing"

	"github.com/dgallion1/docrender/internal/parser"
	"github.com/dgallion1/docrender/internal/render"
	"github.com/google/go-cmp/cmp"
)

func TestDOCXPresenter_ReadsBack(t *testing.T) {
	var buf bytes.Buffer
	if err := (&DOCXPresenter{}).Present(&buf, fixtureUnits()); err != nil {
		t.Fatalf("present: %v", err)
	}

	doc, err := (&parser.DOCXParser{}).Parse(&buf, "out.docx")
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	want := []string{
		"Services Agreement",
		"PARTIES",
		"Acme Corp",
		"1. Key Details",
		"Supplier: Acme (the Supplier)",
		"• first item",
		"• second item",
		"(a) sub clause",
	}
	units := render.Document(doc)
	if diff := cmp.Diff(want, render.Lines(units)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}

	var mention *render.Fragment
	for _, u := range units {
		for _, c := range u.Children {
			for i, f := range c.Content {
				if f.Role == render.InlineMention {
					mention = &c.Content[i]
				}
			}
		}
	}
	if mention == nil {
		t.Fatal("expected the shaded run to come back as a mention")
	}
	if mention.BackgroundColor != "#3B82F6" {
		t.Errorf("unexpected mention color %q", mention.BackgroundColor)
	}
}
