package render

import "github.com/dgallion1/docrender/internal/doctree"

// Inline converts a sequence of inline nodes into fragments. When forcePlain
// is set, bold and underline are dropped for the whole subtree.
func Inline(nodes []*doctree.Node, forcePlain bool) []Fragment {
	out := make([]Fragment, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, inlineNode(n, forcePlain))
	}
	return out
}

func inlineNode(n *doctree.Node, forcePlain bool) Fragment {
	if n.Bare {
		return Fragment{Role: InlineSpan, Text: n.Text}
	}

	if n.Type == doctree.KindMention {
		f := Fragment{Role: InlineMention, BackgroundColor: n.Color}
		// Each child is rendered on its own so its formatting survives.
		for _, c := range n.Children {
			f.Children = append(f.Children, Inline([]*doctree.Node{c}, forcePlain)...)
		}
		return f
	}

	f := Fragment{Role: inlineRole(n.Type)}
	if !forcePlain {
		f.Bold = n.Bold
		f.Underline = n.Underline
	}
	if n.Children != nil {
		f.Children = Inline(n.Children, forcePlain)
	} else {
		f.Text = n.Text
	}
	return f
}

func inlineRole(k doctree.Kind) InlineRole {
	switch k {
	case doctree.KindHeading1:
		return InlineHeading1
	case doctree.KindHeading4:
		return InlineHeading4
	case doctree.KindParagraph:
		return InlineParagraph
	case doctree.KindText, doctree.KindList, doctree.KindListItem,
		doctree.KindClause, doctree.KindBlock, doctree.KindMention, doctree.KindUnknown:
		return InlineSpan
	}
	return InlineSpan
}
