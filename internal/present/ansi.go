package present

import (
	"bufio"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/docrender/internal/render"
	"github.com/muesli/termenv"
)

// ANSIPresenter writes terminal output with escape sequences for bold,
// underline and mention backgrounds. The color profile is fixed so output
// does not depend on whether the writer is a terminal.
type ANSIPresenter struct {
	Profile termenv.Profile // Zero value is TrueColor
}

func (p *ANSIPresenter) ContentType() string { return "text/plain; charset=utf-8" }

func (p *ANSIPresenter) Present(w io.Writer, units []render.Unit) error {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(p.Profile)

	bw := bufio.NewWriter(w)
	a := ansiWriter{r: r, bw: bw, label: r.NewStyle().Bold(true)}
	a.units(units, 0)
	return bw.Flush()
}

type ansiWriter struct {
	r     *lipgloss.Renderer
	bw    *bufio.Writer
	label lipgloss.Style
}

func (a *ansiWriter) units(units []render.Unit, depth int) {
	for i, u := range units {
		switch u.Role {
		case render.RoleSection:
			if depth == 0 && i > 0 {
				a.bw.WriteString("\n")
			}
			a.units(u.Children, depth+1)
		case render.RoleList:
			for _, item := range u.Items {
				a.bw.WriteString("  " + bullet + a.fragments(item) + "\n")
			}
		case render.RoleTitle:
			a.bw.WriteString(a.r.NewStyle().Bold(true).Underline(true).Render(render.PlainText(u.Content)) + "\n")
		default:
			var line strings.Builder
			if u.Label != "" {
				if u.Role == render.RoleLabeledLine {
					line.WriteString("  ")
				}
				line.WriteString(a.label.Render(u.Label) + " ")
			}
			line.WriteString(a.fragments(u.Content))
			a.bw.WriteString(line.String() + "\n")
		}
	}
}

func (a *ansiWriter) fragments(frags []render.Fragment) string {
	var sb strings.Builder
	for _, s := range flatten(frags) {
		style := a.r.NewStyle().Bold(s.Bold).Underline(s.Underline)
		if s.Background != "" {
			style = style.Background(lipgloss.Color(s.Background))
		}
		sb.WriteString(style.Render(s.Text))
	}
	return sb.String()
}
