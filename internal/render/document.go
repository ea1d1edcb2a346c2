// Package render turns a contract document tree into an ordered list of
// presentation units. Rendering is a pure projection of the input: it never
// mutates the tree and keeps no state between calls, so it is safe to call
// concurrently.
package render

import "github.com/dgallion1/docrender/internal/doctree"

// Document renders the top-level blocks in order.
func Document(doc doctree.Document) []Unit {
	units := make([]Unit, 0, len(doc))
	for _, block := range doc {
		units = append(units, Block(block)...)
	}
	return units
}
