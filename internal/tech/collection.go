package tech

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/techtrail/techtrail/internal/store"
)

// ErrEmpty reports a collection-wide operation invoked on an empty
// collection. Callers surface it instead of silently doing nothing.
var ErrEmpty = errors.New("tech: collection is empty")

// KV is the slice of the storage namespace the collection needs.
// *store.Store satisfies it.
type KV interface {
	Read(key string, dest any, fallback any)
	Write(key string, value any) error
}

// Collection is the canonical in-memory technology list, write-through
// persisted under the "technologies" key. Every mutation builds a new
// slice, persists it, and only then swaps the in-memory state: a failed
// persist leaves memory at the last successfully stored collection.
type Collection struct {
	kv KV

	mu      sync.Mutex
	items   []Technology
	subs    map[int]chan []Technology
	nextSub int

	// intN picks a random index; replaced in tests for determinism.
	intN func(n int) int
}

// Open loads the collection from storage, seeding the starter list on
// first run.
func Open(kv KV) *Collection {
	c := &Collection{
		kv:   kv,
		subs: make(map[int]chan []Technology),
		intN: rand.IntN,
	}
	items := []Technology{}
	kv.Read(store.KeyTechnologies, &items, Seed())
	c.items = items
	return c
}

// List returns a snapshot of the current collection.
func (c *Collection) List() []Technology {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.items)
}

// Subscribe returns a channel that receives a collection snapshot after
// every successful mutation. Slow receivers miss intermediate snapshots
// rather than blocking mutations.
func (c *Collection) Subscribe() (<-chan []Technology, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan []Technology, 1)
	c.subs[id] = ch
	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// SetStatus replaces the status of the record with the given id.
// A missing id is a silent no-op.
func (c *Collection) SetStatus(id int64, status Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replaceByID(id, func(t *Technology) { t.Status = status })
}

// SetNotes replaces the notes of the record with the given id.
// A missing id is a silent no-op.
func (c *Collection) SetNotes(id int64, notes string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replaceByID(id, func(t *Technology) { t.Notes = notes })
}

// BulkSetStatus sets status on every record whose id is in ids. Unmatched
// ids are ignored. All matched records change in one persisted write, so
// no partial application is ever observable.
func (c *Collection) BulkSetStatus(ids []int64, status Status) error {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next := snapshot(c.items)
	changed := false
	for i := range next {
		if want[next[i].ID] {
			next[i].Status = status
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return c.persist(next)
}

// Add appends a record, assigning an id and creation timestamp when the
// caller left them unset, and returns the stored record.
func (c *Collection) Add(t Technology) (Technology, error) {
	t.applyDefaults()
	if t.ID == 0 {
		t.ID = NewID()
	}
	if t.CreatedAt == "" {
		t.CreatedAt = Timestamp(time.Now())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next := append(snapshot(c.items), t)
	if err := c.persist(next); err != nil {
		return Technology{}, err
	}
	return t, nil
}

// Remove deletes the record with the given id. A missing id is a silent
// no-op.
func (c *Collection) Remove(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]Technology, 0, len(c.items))
	for _, t := range c.items {
		if t.ID != id {
			next = append(next, t)
		}
	}
	if len(next) == len(c.items) {
		return nil
	}
	return c.persist(next)
}

// MarkAllCompleted sets every record to completed. Returns ErrEmpty on an
// empty collection.
func (c *Collection) MarkAllCompleted() error {
	return c.setAll(StatusCompleted)
}

// ResetAll sets every record back to not-started. Returns ErrEmpty on an
// empty collection.
func (c *Collection) ResetAll() error {
	return c.setAll(StatusNotStarted)
}

func (c *Collection) setAll(status Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return ErrEmpty
	}
	next := snapshot(c.items)
	for i := range next {
		next[i].Status = status
	}
	return c.persist(next)
}

// PickRandomNotStarted selects uniformly at random among not-started
// records, transitions the pick to in-progress, and returns it. A nil
// record (with nil error) means nothing is left to pick.
func (c *Collection) PickRandomNotStarted() (*Technology, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var candidates []int
	for i, t := range c.items {
		if t.Status == StatusNotStarted {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	idx := candidates[c.intN(len(candidates))]
	next := snapshot(c.items)
	next[idx].Status = StatusInProgress
	if err := c.persist(next); err != nil {
		return nil, err
	}
	picked := next[idx]
	return &picked, nil
}

// Replace swaps in an entirely new collection, as produced by an import
// merge or a roadmap install.
func (c *Collection) Replace(records []Technology) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persist(snapshot(records))
}

// Merge applies imported records under the given policy and returns the
// resulting collection size. Append does not deduplicate by id: two
// records may share an id afterwards, a documented property of the lenient
// merge.
func (c *Collection) Merge(records []Technology, mode MergeMode) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next []Technology
	switch mode {
	case MergeReplace:
		next = snapshot(records)
	default:
		next = append(snapshot(c.items), records...)
	}
	if err := c.persist(next); err != nil {
		return 0, err
	}
	return len(next), nil
}

// replaceByID maps the collection, applying mutate to the matching record.
// Caller holds the lock.
func (c *Collection) replaceByID(id int64, mutate func(*Technology)) error {
	found := false
	next := snapshot(c.items)
	for i := range next {
		if next[i].ID == id {
			mutate(&next[i])
			found = true
		}
	}
	if !found {
		return nil
	}
	return c.persist(next)
}

// persist writes next through to storage and, only on success, makes it
// the in-memory state and notifies subscribers. Caller holds the lock.
func (c *Collection) persist(next []Technology) error {
	if err := c.kv.Write(store.KeyTechnologies, next); err != nil {
		return err
	}
	c.items = next
	for _, ch := range c.subs {
		// Latest snapshot wins: drop an unconsumed older one first.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot(next):
		default:
		}
	}
	return nil
}

func snapshot(items []Technology) []Technology {
	out := make([]Technology, len(items))
	copy(out, items)
	return out
}
