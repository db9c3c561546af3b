package resource

import (
	"sort"
	"sync"
)

// Table is the registry of handles that have not been finalized or orphaned.
// It exists for lifecycle observation and inspection; usability is decided
// by the epoch check in Object, never by table membership.
type Table struct {
	entries   map[ID]Handle
	observers map[int]Observer
	nextObs   int
	mu        sync.RWMutex
	obsMu     sync.RWMutex
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:   make(map[ID]Handle),
		observers: make(map[int]Observer),
	}
}

// Insert registers a handle.
func (t *Table) Insert(h Handle) {
	b := h.Base()
	t.mu.Lock()
	t.entries[b.id] = h
	t.mu.Unlock()

	t.notify(Event{
		Type:   EventCreated,
		Handle: h,
		ID:     b.id,
		Epoch:  b.epoch,
		Kind:   b.kind,
	})
}

// Get retrieves a handle by ID.
func (t *Table) Get(id ID) (Handle, bool) {
	if id == 0 {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.entries[id]
	return h, ok
}

// GetTyped retrieves a handle only if it has the expected kind.
func (t *Table) GetTyped(id ID, kind Kind) (Handle, bool) {
	h, ok := t.Get(id)
	if !ok || h.Base().kind != kind {
		return nil, false
	}
	return h, true
}

func (t *Table) finalize(o *Object) {
	t.mu.Lock()
	h, ok := t.entries[o.id]
	if ok {
		delete(t.entries, o.id)
	}
	t.mu.Unlock()
	if !ok {
		return
	}

	t.notify(Event{
		Type:   EventFinalized,
		Handle: h,
		ID:     o.id,
		Epoch:  o.epoch,
		Kind:   o.kind,
	})
}

// Orphan removes every handle created under epoch and notifies observers.
// The handles themselves stay allocated for as long as anyone references
// them; they just can no longer be used.
func (t *Table) Orphan(epoch Epoch) int {
	var orphaned []Handle
	t.mu.Lock()
	for id, h := range t.entries {
		if h.Base().epoch == epoch {
			orphaned = append(orphaned, h)
			delete(t.entries, id)
		}
	}
	t.mu.Unlock()

	sort.Slice(orphaned, func(i, j int) bool {
		return orphaned[i].Base().id < orphaned[j].Base().id
	})
	for _, h := range orphaned {
		b := h.Base()
		t.notify(Event{
			Type:   EventOrphaned,
			Handle: h,
			ID:     b.id,
			Epoch:  b.epoch,
			Kind:   b.kind,
		})
	}
	return len(orphaned)
}

// Subscribe adds an observer for lifecycle events and returns a function
// that removes it.
func (t *Table) Subscribe(o Observer) (unsubscribe func()) {
	t.obsMu.Lock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = o
	t.obsMu.Unlock()

	return func() {
		t.obsMu.Lock()
		delete(t.observers, id)
		t.obsMu.Unlock()
	}
}

// Len returns the number of registered handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Each iterates over registered handles in ID order.
func (t *Table) Each(fn func(Handle) bool) {
	t.mu.RLock()
	handles := make([]Handle, 0, len(t.entries))
	for _, h := range t.entries {
		handles = append(handles, h)
	}
	t.mu.RUnlock()

	sort.Slice(handles, func(i, j int) bool {
		return handles[i].Base().id < handles[j].Base().id
	})
	for _, h := range handles {
		if !fn(h) {
			return
		}
	}
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	ids := make([]int, 0, len(t.observers))
	for id := range t.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	obs := make([]Observer, 0, len(ids))
	for _, id := range ids {
		obs = append(obs, t.observers[id])
	}
	t.obsMu.RUnlock()

	for _, o := range obs {
		o.OnResourceEvent(e)
	}
}
