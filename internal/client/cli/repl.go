package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	inEditor() bool
	List(ctx context.Context, refresh bool) error
	Open(ctx context.Context, id string) error
	New(ctx context.Context) error
	Title(ctx context.Context, title string) error
	Edit(ctx context.Context) error
	Show(ctx context.Context) error
	Preview(ctx context.Context) error
	Save(ctx context.Context) error
	Delete(ctx context.Context) error
	Discard(ctx context.Context) error
}

const (
	listHelp   = "Available commands: (l)ist [-r], open <id>, new, help, exit"
	editorHelp = "Available commands: title <text>, edit, show, preview, save, delete, discard, (l)ist [-r], help, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// The prompt shows statusFn(). The loop exits on EOF or on "exit"/"quit".
//
//	List view:
//	  - list [-r]      print the notes; -r forces a refetch
//	  - open <id>      edit an existing note
//	  - new            start a new note
//
//	Editor view:
//	  - title <text>   set the title
//	  - edit           replace the content (multi-line input)
//	  - show           print the draft in the current mode
//	  - preview        toggle between raw markdown and rendered preview
//	  - save           save and return to the list
//	  - delete         delete the note and return to the list
//	  - discard        drop the draft and return to the list
//
// Command errors are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(strings.TrimSpace(fmt.Sprintf("notes %s", statusFn())) + "> ")
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		rest = strings.TrimSpace(rest)
		if cmd == "" {
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.inEditor() {
				printlnFn(editorHelp)
			} else {
				printlnFn(listHelp)
			}

		case "l", "list":
			cmdErr = a.List(ctx, rest == "-r")

		case "open":
			if rest == "" {
				printlnFn("Usage: open <id>")
				continue
			}
			cmdErr = a.Open(ctx, rest)

		case "new":
			cmdErr = a.New(ctx)

		case "title":
			cmdErr = a.Title(ctx, rest)

		case "edit":
			cmdErr = a.Edit(ctx)

		case "show":
			cmdErr = a.Show(ctx)

		case "preview":
			cmdErr = a.Preview(ctx)

		case "save":
			cmdErr = a.Save(ctx)

		case "delete":
			cmdErr = a.Delete(ctx)

		case "discard":
			cmdErr = a.Discard(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
