package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/devnotes/internal/client/cache"
	"github.com/dmitrijs2005/devnotes/internal/client/client"
	"github.com/dmitrijs2005/devnotes/internal/client/models"
)

type fakeStore struct {
	mu      sync.Mutex
	notes   map[string]models.Note
	upserts []models.UpsertRequest
	deletes []string
	gets    int
	lists   int

	upsertFn func(ctx context.Context, req models.UpsertRequest) (string, error)
	deleteFn func(ctx context.Context, id string) error
}

func newFakeStore(notes ...models.Note) *fakeStore {
	s := &fakeStore{notes: map[string]models.Note{}}
	for _, n := range notes {
		s.notes[n.ID] = n
	}
	return s
}

func (s *fakeStore) List(ctx context.Context) ([]models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	out := make([]models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	return out, nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	n, ok := s.notes[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	return &n, nil
}

func (s *fakeStore) Upsert(ctx context.Context, req models.UpsertRequest) (string, error) {
	s.mu.Lock()
	s.upserts = append(s.upserts, req)
	fn := s.upsertFn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := req.ID
	if id == "" {
		id = "x7"
	}
	s.notes[id] = models.Note{ID: id, Title: req.Title, Content: req.Content}
	return id, nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deletes = append(s.deletes, id)
	fn := s.deleteFn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, id)
	return nil
}

func (s *fakeStore) calls() (upserts, deletes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.upserts), len(s.deletes)
}

func newSession(t *testing.T, target string, store *fakeStore) (*Session, *cache.NoteCache) {
	t.Helper()
	nc := cache.New(store, nil)
	return New(target, store, nc, nil), nc
}

func TestNew_Kinds(t *testing.T) {
	store := newFakeStore()

	s, _ := newSession(t, NewTarget, store)
	assert.Equal(t, KindNew, s.Kind())
	assert.Equal(t, StateEditing, s.State())
	assert.Equal(t, "", s.ID())
	assert.False(t, s.Dirty())
	assert.Equal(t, ModeEdit, s.Mode())

	s, _ = newSession(t, "n1", store)
	assert.Equal(t, KindExisting, s.Kind())
	assert.Equal(t, StateInitializing, s.State())
	assert.Equal(t, "n1", s.ID())
}

func TestNewNote_SaveAdoptsReturnedID(t *testing.T) {
	store := newFakeStore()
	s, nc := newSession(t, NewTarget, store)
	ctx := context.Background()

	_, err := nc.Notes(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SetTitle("A"))
	require.NoError(t, s.SetContent("B"))
	assert.True(t, s.Dirty())

	id, err := s.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x7", id)
	assert.Equal(t, "x7", s.ID())
	assert.Equal(t, StateCommitted, s.State())

	require.Len(t, store.upserts, 1)
	assert.Equal(t, models.UpsertRequest{Title: "A", Content: "B"}, store.upserts[0])

	assert.True(t, nc.Peek(cache.ListKey).Dirty)
	assert.NotContains(t, nc.Keys(), cache.NoteKey(NewTarget))

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after commit")
	}

	notes, err := nc.Notes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "x7", notes[0].ID)

	n, err := nc.Note(ctx, "x7")
	require.NoError(t, err)
	assert.Equal(t, "A", n.Title)
}

func TestExistingNote_SaveCarriesIDAndInvalidates(t *testing.T) {
	store := newFakeStore(models.Note{ID: "n1", Title: "Old", Content: "body"})
	s, nc := newSession(t, "n1", store)
	ctx := context.Background()

	_, err := nc.Notes(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, StateEditing, s.State())
	assert.Equal(t, models.Draft{Title: "Old", Content: "body"}, s.Draft())
	assert.False(t, s.Dirty())

	require.NoError(t, s.SetTitle("New"))
	id, err := s.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "n1", id)
	assert.Equal(t, models.UpsertRequest{ID: "n1", Title: "New", Content: "body"}, store.upserts[0])

	assert.True(t, nc.Peek(cache.NoteKey("n1")).Dirty)
	assert.True(t, nc.Peek(cache.ListKey).Dirty)

	n, err := nc.Note(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "New", n.Title)
}

func TestLoad_SeedsOnce(t *testing.T) {
	store := newFakeStore(models.Note{ID: "n1", Title: "T", Content: "C"})
	s, nc := newSession(t, "n1", store)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.SetContent("typed"))

	store.mu.Lock()
	store.notes["n1"] = models.Note{ID: "n1", Title: "T2", Content: "C2"}
	store.mu.Unlock()
	nc.Invalidate(cache.NoteKey("n1"))
	_, err := nc.Note(ctx, "n1")
	require.NoError(t, err)

	require.NoError(t, s.Load(ctx))
	assert.Equal(t, models.Draft{Title: "T", Content: "typed"}, s.Draft())

	snap, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "C", snap.Content)
}

func TestLoad_FailureStaysInitializing(t *testing.T) {
	store := newFakeStore()
	s, _ := newSession(t, "missing", store)
	ctx := context.Background()

	err := s.Load(ctx)
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Equal(t, StateInitializing, s.State())
	assert.ErrorIs(t, s.Err(), client.ErrNotFound)

	require.ErrorIs(t, s.SetTitle("x"), ErrInvalidState)
	_, err = s.Save(ctx)
	require.ErrorIs(t, err, ErrInvalidState)

	store.mu.Lock()
	store.notes["missing"] = models.Note{ID: "missing", Title: "back"}
	store.mu.Unlock()

	require.NoError(t, s.Load(ctx))
	assert.Equal(t, StateEditing, s.State())
	assert.NoError(t, s.Err())
}

func TestNewNote_LoadIsNoop(t *testing.T) {
	store := newFakeStore()
	s, nc := newSession(t, NewTarget, store)

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 0, store.gets)
	assert.Empty(t, nc.Keys())
}

func TestSave_FailureKeepsDraftAndCache(t *testing.T) {
	store := newFakeStore(models.Note{ID: "n1", Title: "T", Content: "C"})
	store.upsertFn = func(ctx context.Context, req models.UpsertRequest) (string, error) {
		return "", client.ErrValidation
	}
	s, nc := newSession(t, "n1", store)
	ctx := context.Background()

	_, err := nc.Notes(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.SetContent("edited"))

	_, err = s.Save(ctx)
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Equal(t, StateEditing, s.State())
	assert.Equal(t, models.Draft{Title: "T", Content: "edited"}, s.Draft())
	assert.ErrorIs(t, s.Err(), client.ErrValidation)

	assert.False(t, nc.Peek(cache.NoteKey("n1")).Dirty)
	assert.False(t, nc.Peek(cache.ListKey).Dirty)

	store.upsertFn = nil
	_, err = s.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, s.State())
}

func TestSave_RejectedWhileInFlight(t *testing.T) {
	store := newFakeStore()
	release := make(chan struct{})
	started := make(chan struct{})
	store.upsertFn = func(ctx context.Context, req models.UpsertRequest) (string, error) {
		close(started)
		<-release
		return "x7", nil
	}
	s, _ := newSession(t, NewTarget, store)
	ctx := context.Background()
	require.NoError(t, s.SetTitle("A"))

	var firstErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = s.Save(ctx)
	}()
	<-started

	assert.Equal(t, StateSaving, s.State())
	_, err := s.Save(ctx)
	require.ErrorIs(t, err, ErrBusy)
	require.ErrorIs(t, s.Delete(ctx), ErrBusy)
	require.ErrorIs(t, s.SetTitle("B"), ErrBusy)
	require.ErrorIs(t, s.Discard(), ErrBusy)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)

	upserts, _ := store.calls()
	assert.Equal(t, 1, upserts)
	assert.Equal(t, "A", store.upserts[0].Title)
}

func TestSave_ConcurrentCallersIssueOneUpsert(t *testing.T) {
	store := newFakeStore()
	release := make(chan struct{})
	store.upsertFn = func(ctx context.Context, req models.UpsertRequest) (string, error) {
		<-release
		return "x7", nil
	}
	s, _ := newSession(t, NewTarget, store)

	var ok, busy atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Save(context.Background())
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrBusy), errors.Is(err, ErrInvalidState):
				busy.Add(1)
			}
		}()
	}

	require.Eventually(t, func() bool { return busy.Load() == 7 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	upserts, _ := store.calls()
	assert.Equal(t, 1, upserts)
}

func TestDiscard_LeavesNoTrace(t *testing.T) {
	store := newFakeStore(models.Note{ID: "n1", Title: "T"})
	ctx := context.Background()

	t.Run("new", func(t *testing.T) {
		s, nc := newSession(t, NewTarget, store)
		_, err := nc.Notes(ctx)
		require.NoError(t, err)

		require.NoError(t, s.SetTitle("scratch"))
		require.NoError(t, s.Discard())
		assert.Equal(t, StateDiscarded, s.State())

		upserts, deletes := store.calls()
		assert.Zero(t, upserts)
		assert.Zero(t, deletes)
		assert.False(t, nc.Peek(cache.ListKey).Dirty)
		assert.Equal(t, []cache.Key{cache.ListKey}, nc.Keys())

		require.ErrorIs(t, s.SetTitle("again"), ErrInvalidState)
		_, err = s.Save(ctx)
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("existing", func(t *testing.T) {
		s, nc := newSession(t, "n1", store)
		require.NoError(t, s.Load(ctx))
		require.NoError(t, s.SetContent("changes"))
		require.NoError(t, s.Discard())

		upserts, deletes := store.calls()
		assert.Zero(t, upserts)
		assert.Zero(t, deletes)
		snap := nc.Peek(cache.NoteKey("n1"))
		assert.Equal(t, cache.StateFresh, snap.State)
		assert.False(t, snap.Dirty)
		assert.Equal(t, "", snap.Value.(models.Note).Content)
	})

	t.Run("before load", func(t *testing.T) {
		s, _ := newSession(t, "n1", store)
		require.NoError(t, s.Discard())
		require.ErrorIs(t, s.Load(ctx), ErrInvalidState)
	})
}

func TestDelete_InvalidatesNoteAndList(t *testing.T) {
	store := newFakeStore(models.Note{ID: "n1", Title: "T"}, models.Note{ID: "n2", Title: "U"})
	s, nc := newSession(t, "n1", store)
	ctx := context.Background()

	notes, err := nc.Notes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.NoError(t, s.Load(ctx))

	require.NoError(t, s.Delete(ctx))
	assert.Equal(t, StateCommitted, s.State())
	assert.Equal(t, []string{"n1"}, store.deletes)

	assert.True(t, nc.Peek(cache.NoteKey("n1")).Dirty)
	assert.True(t, nc.Peek(cache.ListKey).Dirty)

	notes, err = nc.Notes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "n2", notes[0].ID)

	_, err = nc.Note(ctx, "n1")
	require.ErrorIs(t, err, client.ErrNotFound)
}

func TestDelete_NewNoteRejected(t *testing.T) {
	store := newFakeStore()
	s, _ := newSession(t, NewTarget, store)

	require.ErrorIs(t, s.Delete(context.Background()), ErrNewNote)
	assert.Equal(t, StateEditing, s.State())
	_, deletes := store.calls()
	assert.Zero(t, deletes)
}

func TestDelete_FailureReturnsToEditing(t *testing.T) {
	store := newFakeStore(models.Note{ID: "n1", Title: "T"})
	store.deleteFn = func(ctx context.Context, id string) error { return client.ErrTransport }
	s, nc := newSession(t, "n1", store)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	err := s.Delete(ctx)
	require.ErrorIs(t, err, client.ErrTransport)
	assert.Equal(t, StateEditing, s.State())
	assert.False(t, nc.Peek(cache.NoteKey("n1")).Dirty)
}

func TestCommitted_IsTerminal(t *testing.T) {
	store := newFakeStore()
	s, _ := newSession(t, NewTarget, store)
	ctx := context.Background()

	_, err := s.Save(ctx)
	require.NoError(t, err)

	_, err = s.Save(ctx)
	require.ErrorIs(t, err, ErrInvalidState)
	require.ErrorIs(t, s.Delete(ctx), ErrInvalidState)
	require.NoError(t, s.Discard())
	assert.Equal(t, StateCommitted, s.State())
}

func TestToggleMode(t *testing.T) {
	s, _ := newSession(t, NewTarget, newFakeStore())

	assert.Equal(t, ModePreview, s.ToggleMode())
	assert.Equal(t, ModePreview, s.Mode())
	assert.Equal(t, ModeEdit, s.ToggleMode())
	assert.Equal(t, "edit", ModeEdit.String())
	assert.Equal(t, "preview", ModePreview.String())
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "new", KindNew.String())
	assert.Equal(t, "existing", KindExisting.String())
	assert.Equal(t, "saving", StateSaving.String())
	assert.Equal(t, "state(42)", State(42).String())
}
