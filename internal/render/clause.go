package render

import (
	"strconv"

	"github.com/dgallion1/docrender/internal/doctree"
)

// NoOrdinal renders a clause title without a number.
const NoOrdinal = -1

// definitionsTitle switches off inline styling for a clause body.
const definitionsTitle = "Definitions"

// Clause renders a clause block: an optional title line, then its body.
// ordinal is zero-based; the title is prefixed with ordinal+1 unless it is
// NoOrdinal.
func Clause(block *doctree.Node, ordinal int) Unit {
	u := Unit{Role: RoleSection, Variant: "clause"}
	if block == nil {
		return u
	}

	if block.Title != "" {
		title := Unit{
			Role:    RoleHeading,
			Content: []Fragment{{Role: InlineSpan, Text: block.Title, Bold: true}},
		}
		if ordinal != NoOrdinal {
			title.Label = strconv.Itoa(ordinal+1) + "."
		}
		u.Children = append(u.Children, title)
	}

	forcePlain := block.Title == definitionsTitle
	key := titleKey(block.Title)
	subClauses := 0

	for _, item := range block.Children {
		if item == nil {
			continue
		}
		switch item.Type {
		case doctree.KindHeading4:
			kept := make([]*doctree.Node, 0, len(item.Children))
			for _, c := range item.Children {
				if c == nil {
					continue
				}
				if c.IsTextRun() && titleKey(c.Text) == key {
					continue
				}
				kept = append(kept, c)
			}
			if len(kept) == 0 {
				continue
			}
			u.Children = append(u.Children, Unit{
				Role:    RoleParagraph,
				Variant: string(InlineHeading4),
				Content: Inline(kept, forcePlain),
			})

		case doctree.KindParagraph:
			if titleKey(ExtractPlainText(item.Children)) == key {
				continue
			}
			u.Children = append(u.Children, Unit{
				Role:    RoleParagraph,
				Content: Inline(item.Children, forcePlain),
			})

		case doctree.KindList:
			list := Unit{Role: RoleList, Items: make([][]Fragment, 0, len(item.Children))}
			for _, li := range item.Children {
				if li == nil {
					continue
				}
				var content []*doctree.Node
				if first := li.FirstChild(); first != nil {
					content = first.Children
				}
				list.Items = append(list.Items, Inline(content, false))
			}
			u.Children = append(u.Children, list)

		case doctree.KindClause:
			subClauses++
			var content []*doctree.Node
			if p := item.FirstChildOfType(doctree.KindParagraph); p != nil {
				content = p.Children
			}
			u.Children = append(u.Children, Unit{
				Role:    RoleLabeledLine,
				Label:   SubClauseLabel(subClauses),
				Content: Inline(content, true),
			})

		case doctree.KindText, doctree.KindHeading1, doctree.KindListItem,
			doctree.KindBlock, doctree.KindMention, doctree.KindUnknown:
			// Not part of a clause body.
		}
	}
	return u
}

// SubClauseLabel returns the label of the n-th sub-clause: (a), (b), ...
func SubClauseLabel(n int) string {
	return "(" + string(rune(96+n)) + ")"
}
