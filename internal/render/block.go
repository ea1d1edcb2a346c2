package render

import (
	"github.com/dgallion1/docrender/internal/doctree"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ClauseTitles are the top-level clauses that get a number, in order.
var ClauseTitles = []string{
	"Key Details",
	"Definitions",
	"Agreement to Provide Services",
}

// partiesTitle marks the block whose text is split into address lines.
const partiesTitle = "Parties"

// clauseRunOrdinal numbers every clause in a paragraph of clauses.
// It is always the third position regardless of where the clause sits.
const clauseRunOrdinal = 2

// Block renders one block. It returns nil for blocks that produce nothing.
func Block(block *doctree.Node) []Unit {
	if block == nil {
		return nil
	}

	switch block.Type {
	case doctree.KindHeading1:
		return []Unit{{Role: RoleTitle, Content: Inline(block.Children, false)}}

	case doctree.KindParagraph:
		if first := block.FirstChild(); first != nil && first.Type == doctree.KindClause {
			units := make([]Unit, 0, len(block.Children))
			for _, child := range block.Children {
				units = append(units, Clause(child, clauseRunOrdinal))
			}
			return units
		}
		return []Unit{{Role: RoleParagraph, Content: Inline(block.Children, false)}}

	case doctree.KindBlock:
		if block.Title != partiesTitle {
			return nil
		}
		return []Unit{parties(block)}

	case doctree.KindClause:
		return []Unit{Clause(block, clauseOrdinal(block.Title))}

	case doctree.KindText, doctree.KindHeading4, doctree.KindList, doctree.KindListItem,
		doctree.KindMention, doctree.KindUnknown:
		return nil
	}
	return nil
}

func parties(block *doctree.Node) Unit {
	u := Unit{Role: RoleSection, Variant: "parties"}
	u.Children = append(u.Children, Unit{
		Role:    RoleHeading,
		Content: []Fragment{{Role: InlineSpan, Text: cases.Upper(language.Und).String(block.Title), Bold: true}},
	})

	var content []*doctree.Node
	if first := block.FirstChild(); first != nil {
		content = first.Children
	}
	for _, line := range SplitLines(content, block.Title) {
		u.Children = append(u.Children, Unit{Role: RoleParagraph, Content: Inline(line, false)})
	}
	return u
}

func clauseOrdinal(title string) int {
	for i, t := range ClauseTitles {
		if t == title {
			return i
		}
	}
	return NoOrdinal
}
