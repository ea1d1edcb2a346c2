package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. <b>/<strong> map to bold, <u> to underline,
// <br> to a line break, and a <mark> or span.mention with a background
// color to a mention.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (doctree.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var o outline

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				o.heading(level, textContent(n))
				return // Don't recurse into heading children (already extracted text).
			}

			// Skip non-content elements.
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "p", "blockquote", "td":
				var b runBuilder
				htmlRuns(n, &b, false, false)
				o.paragraph(b.runs)
				return
			case "ul", "ol":
				var items [][]*doctree.Node
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.Data == "li" {
						var b runBuilder
						htmlRuns(c, &b, false, false)
						items = append(items, b.runs)
					}
				}
				o.list(items)
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return o.document(), nil
}

func htmlRuns(n *html.Node, b *runBuilder, bold, underline bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.text(collapseSpace(c.Data), bold, underline)
		case html.ElementNode:
			switch c.Data {
			case "br":
				b.text("\n", bold, underline)
			case "b", "strong":
				htmlRuns(c, b, true, underline)
			case "u", "ins":
				htmlRuns(c, b, bold, true)
			case "mark", "span":
				color := backgroundColor(c)
				if color == "" || (c.Data == "span" && !hasClass(c, "mention")) {
					htmlRuns(c, b, bold, underline)
					continue
				}
				var inner runBuilder
				htmlRuns(c, &inner, bold, underline)
				b.node(doctree.Mention(color, inner.runs...))
			default:
				htmlRuns(c, b, bold, underline)
			}
		}
	}
}

// collapseSpace folds source formatting whitespace the way a browser would.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}
	out := strings.Join(fields, " ")
	if strings.TrimLeft(s, " \t\r\n") != s {
		out = " " + out
	}
	if strings.TrimRight(s, " \t\r\n") != s {
		out += " "
	}
	return out
}

func backgroundColor(n *html.Node) string {
	if v := attr(n, "data-color"); v != "" {
		return v
	}
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "background-color", "background":
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
