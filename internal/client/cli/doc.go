// Package cli provides the interactive DevNotes terminal client.
//
// The client has two views. The list view prints every note with a short
// content preview; the editor view holds one editor.Session at a time and
// lets the user change the title and content, preview the markdown, then
// save, delete or discard the note. Both views share one services.NoteService
// and therefore one note cache.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command set.
package cli
