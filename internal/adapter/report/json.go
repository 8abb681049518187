package report

import (
	"encoding/json"
	"io"

	"github.com/iho/stockrecon/internal/domain"
)

// JSONRenderer writes the summary as a JSON document.
type JSONRenderer struct {
	Indent bool
}

// Render implements Renderer.
func (r JSONRenderer) Render(w io.Writer, s domain.Summary) error {
	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(s)
}
