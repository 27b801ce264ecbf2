// Package services wires the note cache, the gateway and editor sessions into
// the single object the terminal commands share.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/devnotes/internal/client/cache"
	"github.com/dmitrijs2005/devnotes/internal/client/client"
	"github.com/dmitrijs2005/devnotes/internal/client/editor"
	"github.com/dmitrijs2005/devnotes/internal/client/models"
	"github.com/dmitrijs2005/devnotes/internal/logging"
)

const (
	previewLines    = 2
	timestampLayout = "Jan 2, 2006 15:04"
	unknownDate     = "unknown"
)

// NoteView is one card of the note list.
type NoteView struct {
	ID      string
	Title   string
	Preview string
	Updated string
}

// NoteService defines what the list and editor commands need.
//
//   - List: the note list, read through the cache.
//   - Refresh: invalidate the list and read it again.
//   - Open: start an editor session for an id or editor.NewTarget; existing
//     notes are loaded before the session is returned.
//   - CacheKeys / CacheState: non-fetching cache inspection.
type NoteService interface {
	List(ctx context.Context) ([]NoteView, error)
	Refresh(ctx context.Context) ([]NoteView, error)
	Open(ctx context.Context, target string) (*editor.Session, error)
	CacheKeys() []cache.Key
	CacheState(key cache.Key) cache.Snapshot
}

type noteService struct {
	gateway client.Client
	cache   *cache.NoteCache
	logger  logging.Logger
	loc     *time.Location
}

// NewNoteService builds the service around one cache shared by every session.
func NewNoteService(gateway client.Client, logger logging.Logger) NoteService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &noteService{
		gateway: gateway,
		cache:   cache.New(gateway, logger),
		logger:  logger,
		loc:     time.Local,
	}
}

func (s *noteService) List(ctx context.Context) ([]NoteView, error) {
	notes, err := s.cache.Notes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	views := make([]NoteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, NoteView{
			ID:      n.ID,
			Title:   n.Title,
			Preview: models.Preview(n.Content, previewLines),
			Updated: models.FormatTimestamp(n.UpdatedAt, timestampLayout, s.loc, unknownDate),
		})
	}
	return views, nil
}

func (s *noteService) Refresh(ctx context.Context) ([]NoteView, error) {
	s.cache.Invalidate(cache.ListKey)
	return s.List(ctx)
}

func (s *noteService) Open(ctx context.Context, target string) (*editor.Session, error) {
	sess := editor.New(target, s.gateway, s.cache, s.logger)
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *noteService) CacheKeys() []cache.Key {
	return s.cache.Keys()
}

func (s *noteService) CacheState(key cache.Key) cache.Snapshot {
	return s.cache.Peek(key)
}
