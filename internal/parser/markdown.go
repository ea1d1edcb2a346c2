package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Strong emphasis maps
// to bold and inline <u> tags to underline.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var o outline
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			o.heading(node.Level, string(node.Text(src)))

		case *ast.List:
			var items [][]*doctree.Node
			for li := node.FirstChild(); li != nil; li = li.NextSibling() {
				var b runBuilder
				for c := li.FirstChild(); c != nil; c = c.NextSibling() {
					markdownRuns(c, src, &b, false, false)
				}
				items = append(items, b.runs)
			}
			o.list(items)

		case *ast.ThematicBreak:
			// Visual only.

		default:
			var b runBuilder
			if node.Type() == ast.TypeBlock && !node.HasChildren() {
				// Code blocks and the like carry their text as lines.
				b.text(blockLines(node, src), false, false)
			} else {
				markdownRuns(node, src, &b, false, false)
			}
			o.paragraph(b.runs)
		}
	}
	return o.document(), nil
}

// markdownRuns collects the inline content of n as styled runs.
func markdownRuns(n ast.Node, src []byte, b *runBuilder, bold, underline bool) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			s := string(v.Value(src))
			if v.HardLineBreak() || v.SoftLineBreak() {
				s += "\n"
			}
			b.text(s, bold, underline)
		case *ast.String:
			b.text(string(v.Value), bold, underline)
		case *ast.Emphasis:
			markdownRuns(v, src, b, bold || v.Level >= 2, underline)
		case *ast.RawHTML:
			switch tag := strings.ToLower(rawHTML(v, src)); {
			case strings.HasPrefix(tag, "<u"):
				underline = true
			case strings.HasPrefix(tag, "</u"):
				underline = false
			}
		default:
			markdownRuns(c, src, b, bold, underline)
		}
	}
}

func rawHTML(n *ast.RawHTML, src []byte) string {
	var buf bytes.Buffer
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimSpace(buf.String())
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return strings.TrimSpace(buf.String())
}
