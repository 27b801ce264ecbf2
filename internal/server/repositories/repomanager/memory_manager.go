package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/devnotes/internal/server/repositories/notes"
)

// InMemoryRepositoryManager keeps notes in process memory. WithTx serializes
// writers but does not roll back: a failing fn keeps the writes it made.
type InMemoryRepositoryManager struct {
	mu    sync.Mutex
	notes *notes.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{notes: notes.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Notes() notes.Repository {
	return m.notes
}

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.notes)
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
