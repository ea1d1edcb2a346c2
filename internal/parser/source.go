package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/docrender/internal/doctree"
)

// JSONParser reads the native document format.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (doctree.Document, error) {
	doc, err := doctree.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return doc, nil
}

// YAMLParser reads the native document structure written as YAML.
type YAMLParser struct{}

func (p *YAMLParser) Parse(r io.Reader, filename string) (doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := doctree.DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return doc, nil
}
