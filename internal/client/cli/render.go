package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWidth = 80

// getTermSize is a test seam for term.GetSize.
var getTermSize = term.GetSize

// Renderer turns markdown into terminal output.
type Renderer interface {
	Render(markdown string) (string, error)
}

// NewMarkdownRenderer builds a glamour renderer. style is a built-in glamour
// style name ("dark", "light", "notty", ...) or a path to a JSON style file.
func NewMarkdownRenderer(style string, width int) (Renderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return r, nil
}

// terminalWidth is the width of the terminal on f, or defaultWidth when f is
// not a terminal.
func terminalWidth(f *os.File) int {
	w, _, err := getTermSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
