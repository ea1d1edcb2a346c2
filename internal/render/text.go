package render

import (
	"strings"
	"unicode"

	"github.com/dgallion1/docrender/internal/doctree"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize uppercases s and deletes every whitespace, period and colon,
// for loose title comparison.
func Normalize(s string) string {
	// Casers are stateful; a fresh one keeps Normalize safe for concurrent use.
	upper := cases.Upper(language.Und).String(s)
	return strings.Map(func(r rune) rune {
		if r == '.' || r == ':' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, upper)
}

// StripTrailingPunct removes a trailing run of periods and colons.
func StripTrailingPunct(s string) string {
	return strings.TrimRight(s, ".:")
}

// ExtractPlainText concatenates the text of the nodes that carry text and
// trims the result. Containers contribute nothing.
func ExtractPlainText(nodes []*doctree.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		if n.IsTextRun() {
			sb.WriteString(n.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// SameTitle reports whether a and b are equal once trailing punctuation is
// stripped and both are normalized.
func SameTitle(a, b string) bool {
	return titleKey(a) == titleKey(b)
}

func titleKey(s string) string {
	return Normalize(StripTrailingPunct(s))
}
