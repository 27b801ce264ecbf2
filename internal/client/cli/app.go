package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/devnotes/internal/client/client"
	"github.com/dmitrijs2005/devnotes/internal/client/config"
	"github.com/dmitrijs2005/devnotes/internal/client/editor"
	"github.com/dmitrijs2005/devnotes/internal/client/services"
	"github.com/dmitrijs2005/devnotes/internal/logging"
)

type App struct {
	config   *config.Config
	notes    services.NoteService
	renderer Renderer
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	// session is the open editor, nil in the list view.
	session *editor.Session
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	gw, err := client.NewNoteStoreClient(c.ServerBaseURL, c.RequestTimeout,
		client.WithAccessToken(c.AccessToken),
		client.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	r, err := NewMarkdownRenderer(c.PreviewStyle, terminalWidth(os.Stdout))
	if err != nil {
		return nil, err
	}

	return &App{
		config:   c,
		notes:    services.NewNoteService(gw, logger),
		renderer: r,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run shows the note list and then serves commands until exit or EOF.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintf(a.out, "DevNotes (%s), type 'help' for commands\n", a.config.ServerBaseURL)
	if err := a.List(ctx, false); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
	}
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) inEditor() bool {
	return a.session != nil
}

// status is shown in the prompt: the open note and whether it has unsaved
// changes.
func (a *App) status() string {
	if a.session == nil {
		return ""
	}
	name := a.session.ID()
	if name == "" {
		name = editor.NewTarget
	}
	if a.session.Dirty() {
		name += "*"
	}
	return fmt.Sprintf("[%s %s]", a.session.Mode(), name)
}
