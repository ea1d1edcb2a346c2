package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs; line
// breaks inside a paragraph are kept in its text run.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (doctree.Document, error) {
	paragraphs, err := splitParagraphs(r)
	if err != nil {
		return nil, err
	}

	var o outline
	for _, para := range paragraphs {
		o.paragraph([]*doctree.Node{doctree.Text(para)})
	}
	return o.document(), nil
}

func splitParagraphs(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paragraphs, nil
}
