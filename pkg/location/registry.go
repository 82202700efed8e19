package location

import (
	"slices"
	"sync"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/payload"
)

// Registry is the ordered, in-memory location collection. All access goes
// through an RWMutex; callers only ever receive copies.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	ids     *IDGenerator
}

// NewRegistry returns a registry seeded with entries. A nil ids uses a
// wall-clock generator.
func NewRegistry(entries []Entry, ids *IDGenerator) *Registry {
	if ids == nil {
		ids = NewIDGenerator(nil)
	}
	return &Registry{
		entries: slices.Clone(entries),
		ids:     ids,
	}
}

// NextID mints a fresh id without touching the collection.
func (r *Registry) NextID() int64 {
	return r.ids.Next()
}

// List returns a snapshot of all entries in order.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.entries)
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Filter returns the entries matching keep, in order. The registry is not
// modified.
func (r *Registry) Filter(keep func(Entry) bool) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Get returns the first entry with the given id.
func (r *Registry) Get(serverID int64) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(serverID); i >= 0 {
		return r.entries[i], true
	}
	return Entry{}, false
}

// Add appends e under a freshly minted id and returns the stored copy.
func (r *Registry) Add(e Entry) Entry {
	e.ServerID = r.ids.Next()

	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return e
}

// Update merges fields into the first entry with serverID. It reports false
// when no entry matches.
func (r *Registry) Update(serverID int64, fields payload.Map) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(serverID)
	if i < 0 {
		return false
	}
	r.entries[i].Merge(fields)
	return true
}

// Remove deletes the first entry with serverID. It reports false when no
// entry matches.
func (r *Registry) Remove(serverID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(serverID)
	if i < 0 {
		return false
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return true
}

func (r *Registry) indexOf(serverID int64) int {
	return slices.IndexFunc(r.entries, func(e Entry) bool { return e.ServerID == serverID })
}
