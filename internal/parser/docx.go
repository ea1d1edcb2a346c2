package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading styles drive the clause outline,
// numbered or list-styled paragraphs become list items, and shaded runs
// become mentions.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (doctree.Document, error) {
	// go-docx needs a ReaderAt+size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var o outline
	var pending [][]*doctree.Node

	flushList := func() {
		if len(pending) > 0 {
			o.list(pending)
			pending = nil
		}
	}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		if level := docxHeadingLevel(para); level > 0 {
			if title := docxParagraphText(para); title != "" {
				flushList()
				o.heading(level, title)
			}
			continue
		}

		runs := docxParagraphRuns(para)
		if docxIsListItem(para) {
			pending = append(pending, runs)
			continue
		}
		flushList()
		o.paragraph(runs)
	}
	flushList()

	return o.document(), nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxHeadingLevel(para *docx.Paragraph) int {
	style := strings.ToLower(strings.ReplaceAll(docxStyle(para), " ", ""))
	switch style {
	case "title", "heading1":
		return 1
	case "heading2":
		return 2
	case "heading3":
		return 3
	case "heading4":
		return 4
	case "heading5":
		return 5
	case "heading6":
		return 6
	}
	return 0
}

func docxIsListItem(para *docx.Paragraph) bool {
	if para.Properties != nil && para.Properties.NumProperties != nil {
		return true
	}
	return strings.EqualFold(strings.ReplaceAll(docxStyle(para), " ", ""), "ListParagraph")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func docxParagraphRuns(para *docx.Paragraph) []*doctree.Node {
	var b runBuilder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}

		var bold, underline bool
		var shade string
		if props := run.RunProperties; props != nil {
			bold = props.Bold != nil
			underline = props.Underline != nil && props.Underline.Val != "none"
			if props.Shade != nil && props.Shade.Fill != "" && props.Shade.Fill != "auto" {
				shade = "#" + strings.TrimPrefix(props.Shade.Fill, "#")
			}
		}

		target := &b
		var inner runBuilder
		if shade != "" {
			target = &inner
		}
		for _, rc := range run.Children {
			switch v := rc.(type) {
			case *docx.Text:
				target.text(v.Text, bold, underline)
			case *docx.BarterRabbet:
				target.text("\n", bold, underline)
			case *docx.Tab:
				target.text("\t", bold, underline)
			}
		}
		if shade != "" && len(inner.runs) > 0 {
			b.node(doctree.Mention(shade, inner.runs...))
		}
	}
	return b.runs
}
