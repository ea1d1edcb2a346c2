package present

import (
	"io"
	"strings"

	"github.com/dgallion1/docrender/internal/render"
	"github.com/fumiama/go-docx"
)

// DOCXPresenter writes a Word document. Heading units use the Title and
// HeadingN paragraph styles, which the docx importer reads back as the same
// outline.
type DOCXPresenter struct{}

func (p *DOCXPresenter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (p *DOCXPresenter) Present(w io.Writer, units []render.Unit) error {
	doc := docx.New().WithDefaultTheme()
	addDOCXUnits(doc, units)
	_, err := doc.WriteTo(w)
	return err
}

func addDOCXUnits(doc *docx.Docx, units []render.Unit) {
	for _, u := range units {
		switch u.Role {
		case render.RoleSection:
			addDOCXUnits(doc, u.Children)
		case render.RoleTitle:
			addDOCXRuns(doc.AddParagraph().Style("Title"), u.Content)
		case render.RoleHeading:
			para := doc.AddParagraph().Style("Heading2")
			if u.Label != "" {
				preserveSpace(para.AddText(u.Label + " "))
			}
			addDOCXRuns(para, u.Content)
		case render.RoleParagraph:
			para := doc.AddParagraph()
			if u.Variant == string(render.InlineHeading4) {
				para.Style("Heading4")
			}
			addDOCXRuns(para, u.Content)
		case render.RoleLabeledLine:
			para := doc.AddParagraph()
			preserveSpace(para.AddText(u.Label + " "))
			addDOCXRuns(para, u.Content)
		case render.RoleList:
			for _, item := range u.Items {
				para := doc.AddParagraph().Style("ListParagraph")
				para.AddText(bullet)
				addDOCXRuns(para, item)
			}
		}
	}
}

func addDOCXRuns(para *docx.Paragraph, frags []render.Fragment) {
	for _, s := range flatten(frags) {
		run := preserveSpace(para.AddText(s.Text))
		if s.Bold {
			run.Bold()
		}
		if s.Underline {
			run.Underline("single")
		}
		// w:fill takes hex only.
		if fill, ok := strings.CutPrefix(s.Background, "#"); ok {
			run.Shade("clear", "auto", fill)
		}
	}
}

// preserveSpace keeps Word from collapsing leading and trailing blanks.
func preserveSpace(run *docx.Run) *docx.Run {
	for _, c := range run.Children {
		if t, ok := c.(*docx.Text); ok && strings.TrimSpace(t.Text) != t.Text {
			t.XMLSpace = "preserve"
		}
	}
	return run
}
