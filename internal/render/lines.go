package render

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
)

var lineBreaks = regexp.MustCompile(`\n+`)

// SplitLines partitions an inline sequence at the line breaks embedded in its
// text runs. Split parts keep the styling of the run they came from. A line
// consisting only of a run that repeats title is dropped.
func SplitLines(nodes []*doctree.Node, title string) [][]*doctree.Node {
	var lines [][]*doctree.Node
	var current []*doctree.Node

	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !n.IsTextRun() || !strings.Contains(n.Text, "\n") {
			current = append(current, n)
			continue
		}
		for i, part := range lineBreaks.Split(n.Text, -1) {
			if i > 0 && len(current) > 0 {
				lines = append(lines, current)
				current = nil
			}
			if part != "" {
				current = append(current, n.WithText(part))
			}
		}
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}

	want := Normalize(title)
	kept := lines[:0]
	for _, line := range lines {
		if len(line) == 1 && line[0].IsTextRun() && Normalize(strings.TrimSpace(line[0].Text)) == want {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}
