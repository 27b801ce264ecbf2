// Package editor owns the lifecycle of one in-progress edit of a note.
//
// A Session targets either an existing note id or NewTarget. It seeds a
// private draft from the note cache exactly once, lets the caller mutate the
// draft, and commits it with Save or removes the note with Delete. Commits go
// straight to the gateway and then invalidate the affected cache keys; the
// cache is never patched in place.
//
//	Initializing -> Editing -> Saving   -> Committed
//	                        \          \-> Editing (on failure)
//	                         -> Deleting -> Committed
//	                                    \-> Editing (on failure)
//
// Discard may be called from Initializing or Editing and touches nothing.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/devnotes/internal/client/cache"
	"github.com/dmitrijs2005/devnotes/internal/client/client"
	"github.com/dmitrijs2005/devnotes/internal/client/models"
	"github.com/dmitrijs2005/devnotes/internal/logging"
)

// NewTarget is the target of a session editing a note that does not exist yet.
const NewTarget = "new"

var (
	ErrInvalidState = errors.New("operation not allowed in this state")
	ErrBusy         = errors.New("save or delete already in progress")
	ErrNewNote      = errors.New("note has never been saved")
)

type Kind int

const (
	KindNew Kind = iota
	KindExisting
)

func (k Kind) String() string {
	if k == KindNew {
		return "new"
	}
	return "existing"
}

type State int

const (
	StateInitializing State = iota
	StateEditing
	StateSaving
	StateDeleting
	StateCommitted
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StateDeleting:
		return "deleting"
	case StateCommitted:
		return "committed"
	case StateDiscarded:
		return "discarded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Mode is the editor view: raw markdown or rendered preview.
type Mode int

const (
	ModeEdit Mode = iota
	ModePreview
)

func (m Mode) String() string {
	if m == ModePreview {
		return "preview"
	}
	return "edit"
}

// NoteCache is the part of the note cache a session uses.
type NoteCache interface {
	Note(ctx context.Context, id string) (models.Note, error)
	Invalidate(keys ...cache.Key)
}

type Session struct {
	gateway client.Client
	cache   NoteCache
	logger  logging.Logger

	mu       sync.Mutex
	id       string
	kind     Kind
	state    State
	mode     Mode
	draft    models.Draft
	base     models.Draft
	snapshot *models.Note
	err      error
	done     chan struct{}
}

// New starts a session for target, an existing note id or NewTarget. A new
// note session starts in Editing with an empty draft; an existing one starts
// in Initializing and needs Load.
func New(target string, gateway client.Client, nc NoteCache, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Session{
		gateway: gateway,
		cache:   nc,
		logger:  logger.With("component", "editor", "session", uuid.NewString(), "target", target),
		done:    make(chan struct{}),
	}
	if target == NewTarget || target == "" {
		s.kind = KindNew
		s.state = StateEditing
	} else {
		s.id = target
		s.kind = KindExisting
		s.state = StateInitializing
	}
	return s
}

// Load reads the target note through the cache and seeds the draft from it.
// The draft is seeded once; calling Load again once editing has started
// changes nothing. On failure the session stays in Initializing and Load may
// be retried.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInitializing {
		st := s.state
		s.mu.Unlock()
		if st == StateDiscarded {
			return fmt.Errorf("%w: load in %s", ErrInvalidState, st)
		}
		return nil
	}
	id := s.id
	s.mu.Unlock()

	note, err := s.cache.Note(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.err = err
		s.logger.Warn(ctx, "note load failed", "error", err)
		return fmt.Errorf("load note %s: %w", id, err)
	}
	if s.state != StateInitializing {
		if s.state == StateDiscarded {
			return fmt.Errorf("%w: load in %s", ErrInvalidState, s.state)
		}
		return nil
	}

	s.snapshot = &note
	s.base = models.DraftOf(note)
	s.draft = s.base
	s.err = nil
	s.setState(ctx, StateEditing)
	return nil
}

func (s *Session) SetTitle(title string) error {
	return s.edit(func(d *models.Draft) { d.Title = title })
}

func (s *Session) SetContent(content string) error {
	return s.edit(func(d *models.Draft) { d.Content = content })
}

func (s *Session) edit(fn func(d *models.Draft)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateEditing:
		fn(&s.draft)
		return nil
	case StateSaving, StateDeleting:
		return ErrBusy
	default:
		return fmt.Errorf("%w: edit in %s", ErrInvalidState, s.state)
	}
}

// Save upserts the draft. The payload carries an id only when the session
// targets an existing note. On success both the note key (under the id the
// store returned) and the list key are invalidated, the session adopts that
// id and becomes Committed. On failure it returns to Editing with the draft
// untouched and no invalidation. While a save or delete is in flight Save
// returns ErrBusy without calling the store.
func (s *Session) Save(ctx context.Context) (string, error) {
	s.mu.Lock()
	switch s.state {
	case StateEditing:
	case StateSaving, StateDeleting:
		s.mu.Unlock()
		return "", ErrBusy
	default:
		st := s.state
		s.mu.Unlock()
		return "", fmt.Errorf("%w: save in %s", ErrInvalidState, st)
	}
	req := models.UpsertRequest{Title: s.draft.Title, Content: s.draft.Content}
	if s.kind == KindExisting {
		req.ID = s.id
	}
	prevID := s.id
	s.setState(ctx, StateSaving)
	s.mu.Unlock()

	id, err := s.gateway.Upsert(ctx, req)
	if err != nil {
		s.mu.Lock()
		s.err = err
		s.setState(ctx, StateEditing)
		s.mu.Unlock()
		s.logger.Warn(ctx, "note save failed", "error", err)
		return "", fmt.Errorf("save note: %w", err)
	}

	keys := []cache.Key{cache.NoteKey(id), cache.ListKey}
	if prevID != "" && prevID != id {
		keys = append(keys, cache.NoteKey(prevID))
	}
	s.cache.Invalidate(keys...)

	s.mu.Lock()
	s.id = id
	s.err = nil
	s.setState(ctx, StateCommitted)
	s.mu.Unlock()
	s.logger.Info(ctx, "note saved", "id", id)
	return id, nil
}

// Delete removes the target note from the store. Only existing notes can be
// deleted. On success the note key and the list key are invalidated and the
// session becomes Committed; on failure it returns to Editing.
func (s *Session) Delete(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.state == StateSaving || s.state == StateDeleting:
		s.mu.Unlock()
		return ErrBusy
	case s.state != StateEditing:
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: delete in %s", ErrInvalidState, st)
	case s.kind == KindNew:
		s.mu.Unlock()
		return ErrNewNote
	}
	id := s.id
	s.setState(ctx, StateDeleting)
	s.mu.Unlock()

	if err := s.gateway.Delete(ctx, id); err != nil {
		s.mu.Lock()
		s.err = err
		s.setState(ctx, StateEditing)
		s.mu.Unlock()
		s.logger.Warn(ctx, "note delete failed", "error", err)
		return fmt.Errorf("delete note %s: %w", id, err)
	}

	s.cache.Invalidate(cache.NoteKey(id), cache.ListKey)

	s.mu.Lock()
	s.err = nil
	s.setState(ctx, StateCommitted)
	s.mu.Unlock()
	s.logger.Info(ctx, "note deleted", "id", id)
	return nil
}

// Discard abandons the session without calling the store or touching the
// cache. It fails with ErrBusy while a save or delete is in flight.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateInitializing, StateEditing:
		s.setState(context.Background(), StateDiscarded)
		return nil
	case StateSaving, StateDeleting:
		return ErrBusy
	default:
		return nil
	}
}

// ToggleMode flips between edit and preview and returns the new mode.
func (s *Session) ToggleMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeEdit {
		s.mode = ModePreview
	} else {
		s.mode = ModeEdit
	}
	return s.mode
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ID is the note id: the target id, or for a new note the id the store
// assigned on save ("" before that).
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) Kind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Draft() models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Snapshot is the note the draft was seeded from, if any.
func (s *Session) Snapshot() (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return models.Note{}, false
	}
	return s.snapshot.Clone(), true
}

// Dirty reports whether the draft differs from what was loaded.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft != s.base
}

// Err is the last load, save or delete failure, cleared by the next success.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed once the session is Committed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// setState must be called with mu held.
func (s *Session) setState(ctx context.Context, st State) {
	s.logger.Debug(ctx, "editor transition", "from", s.state, "to", st)
	s.state = st
	if st == StateCommitted {
		close(s.done)
	}
}
