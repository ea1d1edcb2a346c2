package present

import (
	"encoding/json"
	"io"

	"github.com/dgallion1/docrender/internal/render"
)

// JSONPresenter writes the units themselves.
type JSONPresenter struct{}

func (p *JSONPresenter) ContentType() string { return "application/json" }

func (p *JSONPresenter) Present(w io.Writer, units []render.Unit) error {
	if units == nil {
		units = []render.Unit{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(units)
}
