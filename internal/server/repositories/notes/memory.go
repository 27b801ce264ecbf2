package notes

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/devnotes/internal/common"
	"github.com/dmitrijs2005/devnotes/internal/server/models"
)

// MemoryRepository keeps notes in a map. It is safe for concurrent use and
// hands out copies only.
type MemoryRepository struct {
	mu    sync.RWMutex
	notes map[string]models.Note
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{notes: make(map[string]models.Note)}
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Note, 0, len(r.notes))
	for _, n := range r.notes {
		n := n
		out = append(out, &n)
	}
	slices.SortFunc(out, func(a, b *models.Note) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.notes[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &n, nil
}

func (r *MemoryRepository) Create(ctx context.Context, note *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[note.ID]; ok {
		return fmt.Errorf("note %s already exists", note.ID)
	}
	r.notes[note.ID] = *note
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, note *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.notes[note.ID]
	if !ok {
		return common.ErrNotFound
	}
	cur.Title = note.Title
	cur.Content = note.Content
	cur.UpdatedAt = note.UpdatedAt
	r.notes[note.ID] = cur
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.notes, id)
	return nil
}
