package present

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docrender/internal/render"
	"golang.org/x/net/html"
)

// MarkdownPresenter writes CommonMark. Underline and mentions have no
// Markdown syntax and are written as inline HTML.
type MarkdownPresenter struct{}

func (p *MarkdownPresenter) ContentType() string { return "text/markdown; charset=utf-8" }

func (p *MarkdownPresenter) Present(w io.Writer, units []render.Unit) error {
	bw := bufio.NewWriter(w)
	var blocks []string
	collectMarkdown(&blocks, units)
	for i, b := range blocks {
		if i > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString(b + "\n")
	}
	return bw.Flush()
}

func collectMarkdown(blocks *[]string, units []render.Unit) {
	for _, u := range units {
		switch u.Role {
		case render.RoleSection:
			collectMarkdown(blocks, u.Children)
		case render.RoleTitle:
			*blocks = append(*blocks, "# "+headingText(u))
		case render.RoleHeading:
			*blocks = append(*blocks, "## "+headingText(u))
		case render.RoleParagraph:
			text := markdownInline(u.Content)
			if u.Variant == string(render.InlineHeading4) {
				text = "#### " + headingText(u)
			}
			*blocks = append(*blocks, text)
		case render.RoleLabeledLine:
			*blocks = append(*blocks, u.Label+" "+markdownInline(u.Content))
		case render.RoleList:
			lines := make([]string, 0, len(u.Items))
			for _, item := range u.Items {
				lines = append(lines, "- "+markdownInline(item))
			}
			*blocks = append(*blocks, strings.Join(lines, "\n"))
		}
	}
}

// headingText drops bold markers, which headings imply.
func headingText(u render.Unit) string {
	text := markdownEscaper.Replace(strings.Join(strings.Fields(render.PlainText(u.Content)), " "))
	if u.Label == "" {
		return text
	}
	return u.Label + " " + text
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
	`<`, `&lt;`,
)

func markdownInline(frags []render.Fragment) string {
	var sb strings.Builder
	for _, s := range flatten(frags) {
		lead, body, trail := splitSpace(s.Text)
		sb.WriteString(lead)
		if body == "" {
			sb.WriteString(trail)
			continue
		}
		text := strings.ReplaceAll(markdownEscaper.Replace(body), "\n", "\\\n")
		if s.Underline {
			text = "<u>" + text + "</u>"
		}
		if s.Bold {
			text = "**" + text + "**"
		}
		if s.Background != "" {
			text = `<mark style="background-color:` + html.EscapeString(s.Background) + `">` + text + "</mark>"
		}
		sb.WriteString(text + trail)
	}
	return sb.String()
}

// splitSpace separates surrounding whitespace, which must stay outside
// emphasis delimiters.
func splitSpace(s string) (lead, body, trail string) {
	trimmed := strings.TrimLeft(s, " \t\n")
	lead = s[:len(s)-len(trimmed)]
	body = strings.TrimRight(trimmed, " \t\n")
	trail = trimmed[len(body):]
	return lead, body, trail
}
