package present

import (
	"bufio"
	"io"

	"github.com/dgallion1/docrender/internal/render"
)

const bullet = "• "

// TextPresenter writes one plain line per display line.
type TextPresenter struct{}

func (p *TextPresenter) ContentType() string { return "text/plain; charset=utf-8" }

func (p *TextPresenter) Present(w io.Writer, units []render.Unit) error {
	bw := bufio.NewWriter(w)
	writeTextLines(bw, units)
	return bw.Flush()
}

func writeTextLines(bw *bufio.Writer, units []render.Unit) {
	for _, u := range units {
		switch u.Role {
		case render.RoleSection:
			writeTextLines(bw, u.Children)
		case render.RoleList:
			for _, item := range u.Items {
				bw.WriteString(bullet + render.PlainText(item) + "\n")
			}
		default:
			bw.WriteString(u.PlainText() + "\n")
		}
	}
}
