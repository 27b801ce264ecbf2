package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/devnotes/internal/client/services"
)

const emptyListMessage = "No notes yet. Create one!"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	metaStyle    = lipgloss.NewStyle().Faint(true)
	previewStyle = lipgloss.NewStyle().PaddingLeft(2)
)

// List prints the note list. With refresh the list is refetched even when
// the cached copy is fresh.
func (a *App) List(ctx context.Context, refresh bool) error {
	var (
		views []services.NoteView
		err   error
	)
	if refresh {
		views, err = a.notes.Refresh(ctx)
	} else {
		views, err = a.notes.List(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Fprint(a.out, formatList(views))
	return nil
}

func formatList(views []services.NoteView) string {
	if len(views) == 0 {
		return emptyListMessage + "\n"
	}

	var b strings.Builder
	for i, v := range views {
		if i > 0 {
			b.WriteString("\n")
		}
		title := v.Title
		if strings.TrimSpace(title) == "" {
			title = "(untitled)"
		}
		b.WriteString(titleStyle.Render(title) + "  " + metaStyle.Render(v.ID) + "\n")
		if v.Preview != "" {
			b.WriteString(previewStyle.Render(v.Preview) + "\n")
		}
		b.WriteString(previewStyle.Render(metaStyle.Render("Updated: "+v.Updated)) + "\n")
	}
	return b.String()
}
