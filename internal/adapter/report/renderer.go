// Package report renders reconciliation summaries.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/iho/stockrecon/internal/domain"
)

// Supported output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatPretty   = "pretty"
)

// Renderer writes a summary in one output format.
type Renderer interface {
	Render(w io.Writer, s domain.Summary) error
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatMarkdown, FormatPretty}
}

// New returns the renderer for format.
func New(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return TextRenderer{}, nil
	case FormatJSON:
		return JSONRenderer{Indent: true}, nil
	case FormatMarkdown, "md":
		return MarkdownRenderer{}, nil
	case FormatPretty:
		return PrettyRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
}

func refLabel(ref string) string {
	if ref == "" {
		return "NOREF"
	}
	return ref
}
