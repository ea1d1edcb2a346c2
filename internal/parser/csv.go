package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
)

const csvBatchSize = 20

// CSVParser handles CSV files. The file name becomes the title, and data rows
// are grouped into "Rows a-b" clauses whose list items pair each cell with its
// bold column header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var o outline
	if title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)); title != "" && title != "." {
		o.heading(1, title)
	}
	if len(records) == 0 {
		return o.document(), nil
	}

	headers := records[0]
	rows := records[1:]
	for i := 0; i < len(rows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(rows))

		// 1-indexed, header row included.
		o.heading(2, fmt.Sprintf("Rows %d-%d", i+2, end+1))

		items := make([][]*doctree.Node, 0, end-i)
		for _, row := range rows[i:end] {
			items = append(items, csvRowRuns(headers, row))
		}
		o.list(items)
	}
	return o.document(), nil
}

func csvRowRuns(headers, row []string) []*doctree.Node {
	var b runBuilder
	for j, cell := range row {
		if j > 0 {
			b.text(", ", false, false)
		}
		if j < len(headers) && headers[j] != "" {
			b.text(headers[j]+":", true, false)
			b.text(" ", false, false)
		}
		b.text(cell, false, false)
	}
	return b.runs
}
