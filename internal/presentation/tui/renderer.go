package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns markdown into terminal output.
type Renderer struct {
	r *glamour.TermRenderer
}

// NewRenderer picks a style for w: the auto-detected dark or light theme on a terminal,
// plain text otherwise.
func NewRenderer(w io.Writer) (*Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("notty")}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			opts = append(opts, glamour.WithWordWrap(width))
		}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return &Renderer{r: r}, nil
}

// Render renders markdown.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.r.Render(markdown)
}
