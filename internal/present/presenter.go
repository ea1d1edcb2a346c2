// Package present writes rendered units in a concrete output format.
package present

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/docrender/internal/render"
)

// Presenter writes a rendered document.
type Presenter interface {
	Present(w io.Writer, units []render.Unit) error
	ContentType() string
}

var presenters = map[string]func() Presenter{
	"json":     func() Presenter { return &JSONPresenter{} },
	"text":     func() Presenter { return &TextPresenter{} },
	"ansi":     func() Presenter { return &ANSIPresenter{} },
	"html":     func() Presenter { return &HTMLPresenter{} },
	"markdown": func() Presenter { return &MarkdownPresenter{} },
	"docx":     func() Presenter { return &DOCXPresenter{} },
}

// aliases maps alternative format names to their canonical name.
var aliases = map[string]string{
	"txt":      "text",
	"md":       "markdown",
	"terminal": "ansi",
	"htm":      "html",
}

var extensions = map[string]string{
	"json":     ".json",
	"text":     ".txt",
	"ansi":     ".ans",
	"html":     ".html",
	"markdown": ".md",
	"docx":     ".docx",
}

// Canonical resolves a case-insensitive format name or alias.
func Canonical(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	if _, ok := presenters[key]; !ok {
		return "", fmt.Errorf("unsupported output format: %q", name)
	}
	return key, nil
}

// ForFormat returns the presenter for a format name.
func ForFormat(name string) (Presenter, error) {
	key, err := Canonical(name)
	if err != nil {
		return nil, err
	}
	return presenters[key](), nil
}

// Extension returns the file extension for a canonical format name.
func Extension(format string) string {
	return extensions[format]
}

// Formats lists the canonical format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(presenters))
	for name := range presenters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// cssColorPattern admits hex colors, color names and rgb()/hsl() calls with
// numeric arguments. Nothing that could close an attribute or start another
// declaration gets through.
var cssColorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{1,32}|(rgb|rgba|hsl|hsla)\([0-9.,%/ ]{1,64}\))$`)

// cssColor returns c trimmed when it is a plain CSS color value, else "".
func cssColor(c string) string {
	c = strings.TrimSpace(c)
	if !cssColorPattern.MatchString(c) {
		return ""
	}
	return c
}

// span is a flattened run of text with the styling inherited from every
// enclosing fragment.
type span struct {
	Text       string
	Bold       bool
	Underline  bool
	Background string
}

// flatten resolves nested fragments into a run sequence. Parent styling
// applies to descendants; the innermost valid background color wins.
func flatten(frags []render.Fragment) []span {
	var out []span
	var walk func(frags []render.Fragment, parent span)
	walk = func(frags []render.Fragment, parent span) {
		for _, f := range frags {
			s := span{
				Bold:       parent.Bold || f.Bold,
				Underline:  parent.Underline || f.Underline,
				Background: parent.Background,
			}
			if bg := cssColor(f.BackgroundColor); bg != "" {
				s.Background = bg
			}
			if len(f.Children) > 0 {
				walk(f.Children, s)
				continue
			}
			if f.Text == "" {
				continue
			}
			s.Text = f.Text
			out = append(out, s)
		}
	}
	walk(frags, span{})
	return out
}
