package parser

import (
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/dgallion1/docrender/internal/render"
)

const partiesTitle = "Parties"

// outline assembles a contract tree from a flat stream of headings,
// paragraphs and lists, the way most foreign formats present them.
//
// Level 1 headings become the document title. Level 2 headings open a
// top-level clause, deeper levels open sub-clauses under the nearest
// shallower one. A "Parties" heading opens the parties block, which collects
// following paragraphs as break-separated lines until the next heading. A
// top-level paragraph whose first line reads "Parties" forms a parties block
// by itself.
type outline struct {
	doc     doctree.Document
	stack   []stackEntry
	parties *doctree.Node // Paragraph collecting party lines, nil when closed
}

type stackEntry struct {
	node  *doctree.Node
	level int
}

func (o *outline) heading(level int, title string) {
	o.parties = nil
	title = strings.TrimSpace(title)

	if level <= 1 {
		o.stack = o.stack[:0]
		o.doc = append(o.doc, doctree.Element(doctree.KindHeading1, doctree.Text(title)))
		return
	}

	if render.SameTitle(title, partiesTitle) {
		o.stack = o.stack[:0]
		o.openParties()
		return
	}

	node := doctree.Titled(doctree.KindClause, title)

	// Pop until we find a parent with a lower level.
	for len(o.stack) > 0 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	if len(o.stack) == 0 {
		o.doc = append(o.doc, node)
	} else {
		parent := o.stack[len(o.stack)-1].node
		parent.Children = append(parent.Children, node)
	}
	o.stack = append(o.stack, stackEntry{node: node, level: level})
}

func (o *outline) openParties() {
	o.parties = doctree.Element(doctree.KindParagraph)
	o.doc = append(o.doc, doctree.Titled(doctree.KindBlock, partiesTitle, o.parties))
}

// paragraph adds a run sequence to the innermost open container.
func (o *outline) paragraph(runs []*doctree.Node) {
	runs = trimRuns(runs)
	if len(runs) == 0 {
		return
	}

	// A self-titled paragraph is a parties block on its own.
	if o.parties == nil && len(o.stack) == 0 && startsWithParties(runs) {
		o.openParties()
		o.parties.Children = runs
		o.parties = nil
		return
	}
	if o.parties != nil {
		if len(o.parties.Children) > 0 {
			o.parties.Children = append(o.parties.Children, doctree.Text("\n"))
		}
		o.parties.Children = append(o.parties.Children, runs...)
		return
	}

	o.add(doctree.Element(doctree.KindParagraph, runs...))
}

// list adds a bulleted list; each item wraps its runs in one paragraph.
func (o *outline) list(items [][]*doctree.Node) {
	ul := doctree.Element(doctree.KindList)
	for _, runs := range items {
		runs = trimRuns(runs)
		if len(runs) == 0 {
			continue
		}
		ul.Children = append(ul.Children,
			doctree.Element(doctree.KindListItem, doctree.Element(doctree.KindParagraph, runs...)))
	}
	if len(ul.Children) == 0 {
		return
	}
	o.parties = nil
	o.add(ul)
}

func (o *outline) add(n *doctree.Node) {
	if len(o.stack) == 0 {
		o.doc = append(o.doc, n)
		return
	}
	top := o.stack[len(o.stack)-1].node
	top.Children = append(top.Children, n)
}

func (o *outline) document() doctree.Document {
	if o.doc == nil {
		return doctree.Document{}
	}
	return o.doc
}

func startsWithParties(runs []*doctree.Node) bool {
	first := runs[0]
	if !first.IsTextRun() {
		return false
	}
	line, _, _ := strings.Cut(first.Text, "\n")
	return render.SameTitle(line, partiesTitle)
}

// trimRuns drops empty runs and trims surrounding whitespace of the sequence.
func trimRuns(runs []*doctree.Node) []*doctree.Node {
	out := make([]*doctree.Node, 0, len(runs))
	for _, r := range runs {
		if r == nil || (r.IsTextRun() && r.Text == "") {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	if first := out[0]; first.IsTextRun() {
		out[0] = first.WithText(strings.TrimLeft(first.Text, " \t\n"))
	}
	if last := out[len(out)-1]; last.IsTextRun() {
		out[len(out)-1] = last.WithText(strings.TrimRight(last.Text, " \t\n"))
	}
	if len(out) == 1 && out[0].IsTextRun() && out[0].Text == "" {
		return nil
	}
	return out
}

// runBuilder accumulates text runs, merging neighbours with equal styling.
type runBuilder struct {
	runs []*doctree.Node
}

func (b *runBuilder) text(s string, bold, underline bool) {
	if s == "" {
		return
	}
	if n := len(b.runs); n > 0 {
		last := b.runs[n-1]
		if last.Type == doctree.KindText && last.Bold == bold && last.Underline == underline {
			last.Text += s
			return
		}
	}
	b.runs = append(b.runs, doctree.Styled(s, bold, underline))
}

func (b *runBuilder) node(n *doctree.Node) {
	b.runs = append(b.runs, n)
}
