package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/devnotes/internal/client/editor"
)

var (
	errNoNote      = errors.New("no note is open, use 'open <id>' or 'new'")
	errEditorInUse = errors.New("another note is open, save or discard it first")
)

func (a *App) Open(ctx context.Context, id string) error {
	if a.session != nil {
		return errEditorInUse
	}
	if id == editor.NewTarget {
		return a.New(ctx)
	}
	sess, err := a.notes.Open(ctx, id)
	if err != nil {
		return err
	}
	a.session = sess
	fmt.Fprintf(a.out, "Editing note %s\n", sess.ID())
	return a.Show(ctx)
}

func (a *App) New(ctx context.Context) error {
	if a.session != nil {
		return errEditorInUse
	}
	sess, err := a.notes.Open(ctx, editor.NewTarget)
	if err != nil {
		return err
	}
	a.session = sess
	fmt.Fprintln(a.out, "New note. Set the title with 'title <text>' and the content with 'edit'.")
	return nil
}

func (a *App) Title(ctx context.Context, title string) error {
	if a.session == nil {
		return errNoNote
	}
	return a.session.SetTitle(title)
}

func (a *App) Edit(ctx context.Context) error {
	if a.session == nil {
		return errNoNote
	}
	content, err := GetMultiline(a.reader, "Enter content (markdown)", a.out)
	if err != nil {
		return err
	}
	return a.session.SetContent(content)
}

// Show prints the draft, raw in edit mode and rendered in preview mode.
func (a *App) Show(ctx context.Context) error {
	if a.session == nil {
		return errNoNote
	}
	d := a.session.Draft()

	fmt.Fprintln(a.out, titleStyle.Render("Title: "+d.Title))
	if a.session.Mode() == editor.ModeEdit {
		fmt.Fprintln(a.out, d.Content)
		return nil
	}

	out, err := a.renderer.Render(d.Content)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	fmt.Fprint(a.out, out)
	return nil
}

func (a *App) Preview(ctx context.Context) error {
	if a.session == nil {
		return errNoNote
	}
	mode := a.session.ToggleMode()
	fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	return a.Show(ctx)
}

// Save commits the draft and returns to the list. On failure the editor
// stays open with the draft intact.
func (a *App) Save(ctx context.Context) error {
	if a.session == nil {
		return errNoNote
	}
	id, err := a.session.Save(ctx)
	if err != nil {
		return fmt.Errorf("not saved, your changes are kept: %w", err)
	}
	a.closeCommitted()
	fmt.Fprintf(a.out, "Saved note %s\n", id)
	return a.List(ctx, false)
}

func (a *App) Delete(ctx context.Context) error {
	if a.session == nil {
		return errNoNote
	}
	if a.session.Kind() == editor.KindNew {
		return fmt.Errorf("%w, use 'discard' instead", editor.ErrNewNote)
	}
	ok, err := Confirm(a.reader, "Delete this note?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	id := a.session.ID()
	if err := a.session.Delete(ctx); err != nil {
		return fmt.Errorf("not deleted: %w", err)
	}
	a.closeCommitted()
	fmt.Fprintf(a.out, "Deleted note %s\n", id)
	return a.List(ctx, false)
}

// Discard closes the editor without saving, asking first when the draft has
// unsaved changes.
func (a *App) Discard(ctx context.Context) error {
	if a.session == nil {
		return errNoNote
	}
	if a.session.Dirty() {
		ok, err := Confirm(a.reader, "Discard unsaved changes?", a.out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Cancelled")
			return nil
		}
	}
	if err := a.session.Discard(); err != nil {
		return err
	}
	a.session = nil
	fmt.Fprintln(a.out, "Discarded")
	return a.List(ctx, false)
}

// closeCommitted leaves the editor once the open session has committed.
func (a *App) closeCommitted() {
	if a.session == nil {
		return
	}
	select {
	case <-a.session.Done():
		a.session = nil
	default:
	}
}
