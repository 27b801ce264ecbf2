// Package cache keeps the client's in-memory copy of the note store.
//
// Two kinds of keys exist: ListKey for the ordered note list and NoteKey(id)
// for a single note. Every key moves through Empty, Loading, Fresh and
// StaleError. Reads of a key that is not fresh share one gateway fetch;
// Invalidate marks a key dirty so the next read fetches again. Consumers are
// never pushed updates, they re-read.
package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/devnotes/internal/client/client"
	"github.com/dmitrijs2005/devnotes/internal/client/models"
	"github.com/dmitrijs2005/devnotes/internal/logging"
)

// Key names one cached collection.
type Key string

const (
	ListKey    Key = "notes:list"
	notePrefix     = "notes:"
)

var ErrUnknownKey = errors.New("unknown cache key")

// NoteKey is the key of the note with the given id.
func NoteKey(id string) Key {
	return Key(notePrefix + id)
}

// NoteID returns the note id of a per-note key.
func (k Key) NoteID() (string, bool) {
	if k == ListKey {
		return "", false
	}
	id, ok := strings.CutPrefix(string(k), notePrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

type State int

const (
	StateEmpty State = iota
	StateLoading
	StateFresh
	StateStaleError
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateFresh:
		return "fresh"
	case StateStaleError:
		return "stale-error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a point-in-time view of one key, taken without fetching.
// Value holds the last successfully fetched value, which survives both
// invalidation and later failed fetches. Waiters counts the readers attached
// to the current in-flight fetch.
type Snapshot struct {
	State     State
	Value     any
	Err       error
	Dirty     bool
	FetchedAt time.Time
	Waiters   int
}

type entry struct {
	state     State
	value     any
	err       error
	dirty     bool
	fetchedAt time.Time

	// gen is bumped by Invalidate. A fetch that started under an older gen
	// may record its outcome but never clears dirty.
	gen uint64

	inflight    bool
	inflightSeq uint64
	inflightGen uint64
	flightKey   string
	waiters     int

	// appliedSeq is the seq of the fetch whose outcome is recorded; outcomes
	// of older fetches are dropped.
	appliedSeq uint64
}

// NoteCache is safe for concurrent use. The lock is never held across a
// gateway call.
type NoteCache struct {
	gateway client.Client
	logger  logging.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[Key]*entry
	seq     uint64
	flights singleflight.Group
}

func New(gateway client.Client, logger logging.Logger) *NoteCache {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NoteCache{
		gateway: gateway,
		logger:  logger.With("component", "cache"),
		now:     time.Now,
		entries: make(map[Key]*entry),
	}
}

// Read returns the value under key: immediately if it is fresh, otherwise
// after the one fetch shared by every concurrent reader of that key.
// A cancelled ctx stops this caller from waiting; the fetch still completes
// for the others.
func (c *NoteCache) Read(ctx context.Context, key Key) (any, error) {
	fetch, err := c.fetcher(key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}

	if e.state == StateFresh && !e.dirty {
		v := e.value
		c.mu.Unlock()
		c.logger.Debug(ctx, "cache hit", "key", key)
		return cloneValue(v), nil
	}

	if !e.inflight || e.inflightGen != e.gen {
		c.seq++
		e.inflight = true
		e.inflightSeq = c.seq
		e.inflightGen = e.gen
		e.flightKey = fmt.Sprintf("%s#%d", key, c.seq)
		e.waiters = 0
		c.logger.Debug(ctx, "cache fetch", "key", key, "seq", c.seq)
	}
	e.waiters++
	e.state = StateLoading
	seq, gen := e.inflightSeq, e.inflightGen
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(e.flightKey, func() (any, error) {
		v, err := fetch(fetchCtx)
		c.apply(fetchCtx, key, seq, gen, v, err)
		return v, err
	})
	c.mu.Unlock()

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneValue(res.Val), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Notes reads ListKey.
func (c *NoteCache) Notes(ctx context.Context) ([]models.Note, error) {
	v, err := c.Read(ctx, ListKey)
	if err != nil {
		return nil, err
	}
	return v.([]models.Note), nil
}

// Note reads NoteKey(id).
func (c *NoteCache) Note(ctx context.Context, id string) (models.Note, error) {
	v, err := c.Read(ctx, NoteKey(id))
	if err != nil {
		return models.Note{}, err
	}
	return v.(models.Note), nil
}

// Invalidate marks each key dirty; the next Read of it fetches. Keys that were
// never read stay absent.
func (c *NoteCache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		e, ok := c.entries[key]
		if !ok {
			continue
		}
		e.gen++
		e.dirty = true
		c.logger.Debug(context.Background(), "cache invalidate", "key", key, "state", e.state)
	}
}

// Peek reports the current state of key without fetching.
func (c *NoteCache) Peek(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{State: StateEmpty}
	}
	return Snapshot{
		State:     e.state,
		Value:     cloneValue(e.value),
		Err:       e.err,
		Dirty:     e.dirty,
		FetchedAt: e.fetchedAt,
		Waiters:   e.waiters,
	}
}

// Keys lists every key that has been read at least once, sorted.
func (c *NoteCache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *NoteCache) apply(ctx context.Context, key Key, seq, gen uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	if e.inflight && e.inflightSeq == seq {
		e.inflight = false
		e.waiters = 0
	}
	if seq < e.appliedSeq {
		c.logger.Debug(ctx, "cache drop outdated fetch", "key", key, "seq", seq)
		return
	}
	e.appliedSeq = seq

	if err != nil {
		e.err = err
		c.logger.Warn(ctx, "cache fetch failed", "key", key, "error", err)
	} else {
		e.value = v
		e.err = nil
		e.fetchedAt = c.now()
	}
	if gen == e.gen {
		e.dirty = false
	}

	switch {
	case e.inflight:
		e.state = StateLoading
	case err != nil:
		e.state = StateStaleError
	default:
		e.state = StateFresh
	}
}

type fetchFunc func(ctx context.Context) (any, error)

func (c *NoteCache) fetcher(key Key) (fetchFunc, error) {
	if key == ListKey {
		return c.fetchList, nil
	}
	id, ok := key.NoteID()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return func(ctx context.Context) (any, error) {
		n, err := c.gateway.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return n.Clone(), nil
	}, nil
}

func (c *NoteCache) fetchList(ctx context.Context) (any, error) {
	notes, err := c.gateway.List(ctx)
	if err != nil {
		return nil, err
	}
	persisted := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if n.IsNew() {
			c.logger.Warn(ctx, "note store listed a note without id", "title", n.Title)
			continue
		}
		persisted = append(persisted, n.Clone())
	}
	return persisted, nil
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []models.Note:
		out := make([]models.Note, len(val))
		for i, n := range val {
			out[i] = n.Clone()
		}
		return out
	case models.Note:
		return val.Clone()
	default:
		return v
	}
}
