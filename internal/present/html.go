package present

import (
	"io"
	"strings"

	"github.com/dgallion1/docrender/internal/render"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLPresenter writes a standalone HTML document. Sections become divs
// classed by variant, mentions become spans with an inline background color.
type HTMLPresenter struct {
	Title string // Document <title>; defaults to the first title unit
}

func (p *HTMLPresenter) ContentType() string { return "text/html; charset=utf-8" }

func (p *HTMLPresenter) Present(w io.Writer, units []render.Unit) error {
	title := p.Title
	if title == "" {
		for _, u := range units {
			if u.Role == render.RoleTitle {
				title = render.PlainText(u.Content)
				break
			}
		}
	}

	head := element(atom.Head,
		withAttr(element(atom.Meta), "charset", "utf-8"),
		element(atom.Title, textNode(title)),
	)
	body := element(atom.Body)
	appendUnits(body, units)
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(element(atom.Html, head, body))
	return html.Render(w, doc)
}

func appendUnits(parent *html.Node, units []render.Unit) {
	for _, u := range units {
		switch u.Role {
		case render.RoleTitle:
			parent.AppendChild(element(atom.H1, fragmentNodes(u.Content)...))
		case render.RoleHeading:
			h := element(atom.H2, labelNodes(u.Label)...)
			appendAll(h, fragmentNodes(u.Content))
			parent.AppendChild(h)
		case render.RoleParagraph:
			tag := atom.P
			if u.Variant == string(render.InlineHeading4) {
				tag = atom.H4
			}
			parent.AppendChild(element(tag, fragmentNodes(u.Content)...))
		case render.RoleLabeledLine:
			p := withAttr(element(atom.P, labelNodes(u.Label)...), "class", "labeled-line")
			appendAll(p, fragmentNodes(u.Content))
			parent.AppendChild(p)
		case render.RoleList:
			ul := element(atom.Ul)
			for _, item := range u.Items {
				ul.AppendChild(element(atom.Li, fragmentNodes(item)...))
			}
			parent.AppendChild(ul)
		case render.RoleSection:
			div := withAttr(element(atom.Div), "class", strings.TrimSpace("section "+u.Variant))
			appendUnits(div, u.Children)
			parent.AppendChild(div)
		}
	}
}

func labelNodes(label string) []*html.Node {
	if label == "" {
		return nil
	}
	return []*html.Node{
		withAttr(element(atom.Span, textNode(label)), "class", "label"),
		textNode(" "),
	}
}

func fragmentNodes(frags []render.Fragment) []*html.Node {
	var out []*html.Node
	for _, f := range frags {
		var inner []*html.Node
		if len(f.Children) > 0 {
			inner = fragmentNodes(f.Children)
		} else if f.Text != "" {
			inner = textLines(f.Text)
		}
		if len(inner) == 0 {
			continue
		}

		if f.Underline {
			inner = []*html.Node{element(atom.U, inner...)}
		}
		if f.Bold {
			inner = []*html.Node{element(atom.Strong, inner...)}
		}
		switch f.Role {
		case render.InlineMention:
			span := withAttr(element(atom.Span, inner...), "class", "mention")
			if bg := cssColor(f.BackgroundColor); bg != "" {
				withAttr(span, "style", "background-color:"+bg)
			}
			inner = []*html.Node{span}
		case render.InlineHeading1, render.InlineHeading4, render.InlineParagraph:
			inner = []*html.Node{withAttr(element(atom.Span, inner...), "class", string(f.Role))}
		case render.InlineSpan:
		}
		out = append(out, inner...)
	}
	return out
}

// textLines turns embedded line breaks into <br> elements.
func textLines(s string) []*html.Node {
	parts := strings.Split(s, "\n")
	out := make([]*html.Node, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			out = append(out, element(atom.Br))
		}
		if part != "" {
			out = append(out, textNode(part))
		}
	}
	return out
}

func element(a atom.Atom, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	appendAll(n, children)
	return n
}

func appendAll(parent *html.Node, children []*html.Node) {
	for _, c := range children {
		parent.AppendChild(c)
	}
}

func withAttr(n *html.Node, key, val string) *html.Node {
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
