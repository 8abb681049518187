package report

import (
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/iho/stockrecon/internal/domain"
)

// PrettyRenderer renders the Markdown report for a terminal.
type PrettyRenderer struct {
	// Style is a glamour standard style name; empty selects one from the
	// terminal background.
	Style    string
	WordWrap int
}

// Render implements Renderer.
func (r PrettyRenderer) Render(w io.Writer, s domain.Summary) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(r.wordWrap())}
	if r.Style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(r.Style))
	}

	term, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return err
	}

	out, err := term.Render(markdown(s))
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, out)
	return err
}

func (r PrettyRenderer) wordWrap() int {
	if r.WordWrap > 0 {
		return r.WordWrap
	}
	return 100
}
