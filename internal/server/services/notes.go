// Package services contains server-side business logic. NoteService assigns
// ids and timestamps and enforces the upsert rules of the note store.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/devnotes/internal/common"
	"github.com/dmitrijs2005/devnotes/internal/server/models"
	"github.com/dmitrijs2005/devnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/devnotes/internal/server/repositories/repomanager"
)

// UpsertInput is a validated upsert body. An empty ID creates a note.
type UpsertInput struct {
	ID      string
	Title   string
	Content string
}

type NoteService struct {
	repomanager repomanager.RepositoryManager
	now         func() time.Time
	newID       func() string
}

func NewNoteService(m repomanager.RepositoryManager) *NoteService {
	return &NoteService{
		repomanager: m,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (s *NoteService) List(ctx context.Context) ([]*models.Note, error) {
	list, err := s.repomanager.Notes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return list, nil
}

func (s *NoteService) Get(ctx context.Context, id string) (*models.Note, error) {
	n, err := s.repomanager.Notes().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get note %s: %w", id, err)
	}
	return n, nil
}

// Upsert creates a note with a fresh id when in.ID is empty. Otherwise it
// overwrites title and content of the existing note and refreshes UpdatedAt;
// an unknown id yields common.ErrNotFound.
func (s *NoteService) Upsert(ctx context.Context, in UpsertInput) (*models.Note, error) {
	if strings.ContainsAny(in.ID, "/ \t\n") {
		return nil, fmt.Errorf("%w: malformed id %q", common.ErrValidation, in.ID)
	}

	now := s.now().UTC().Truncate(time.Second)
	var saved *models.Note

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repo notes.Repository) error {
		if in.ID == "" {
			n := &models.Note{
				ID:        s.newID(),
				Title:     in.Title,
				Content:   in.Content,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.Create(ctx, n); err != nil {
				return err
			}
			saved = n
			return nil
		}

		n, err := repo.Get(ctx, in.ID)
		if err != nil {
			return err
		}
		n.Title = in.Title
		n.Content = in.Content
		n.UpdatedAt = now
		if err := repo.Update(ctx, n); err != nil {
			return err
		}
		saved = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("upsert note: %w", err)
	}
	return saved, nil
}

func (s *NoteService) Delete(ctx context.Context, id string) error {
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repo notes.Repository) error {
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	return nil
}
