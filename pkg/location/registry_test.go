package location

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/payload"
)

// fixedClock returns a clock that never advances.
func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestIDGenerator(t *testing.T) {
	t.Run("MonotonicOnStalledClock", func(t *testing.T) {
		g := NewIDGenerator(fixedClock(1_700_000_000_000))
		a, b, c := g.Next(), g.Next(), g.Next()
		assert.Equal(t, int64(1_700_000_000_000), a)
		assert.Equal(t, a+1, b)
		assert.Equal(t, b+1, c)
	})

	t.Run("ClockStepsBack", func(t *testing.T) {
		now := int64(2000)
		g := NewIDGenerator(func() time.Time { return time.UnixMilli(now) })
		first := g.Next()
		now = 1000
		assert.Greater(t, g.Next(), first)
	})

	t.Run("ConcurrentUnique", func(t *testing.T) {
		g := NewIDGenerator(nil)
		var mu sync.Mutex
		seen := make(map[int64]bool)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := g.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Len(t, seen, 50)
	})
}

func TestDefaultEntries(t *testing.T) {
	entries := DefaultEntries(true)
	require.Len(t, entries, 4)

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ServerID
	}
	assert.Equal(t, []int64{1, 100, 101, 102}, ids)

	assert.True(t, entries[0].IsRootPlaceholder())
	assert.Equal(t, RootSentinel, entries[0].ServerAddr)
	assert.Equal(t, ConnFTP, entries[0].ConnectionType)
	assert.True(t, entries[1].IsSharePlaceholder())
	assert.Equal(t, ShareSentinel, entries[1].ServerAddr)
	assert.Equal(t, ConnSFTP, entries[1].ConnectionType)

	for _, e := range entries[2:] {
		assert.Equal(t, ConnSMB, e.ConnectionType)
		assert.Equal(t, 445, e.ServerPort)
		assert.Equal(t, "100", e.ParentID)
		assert.Equal(t, NetworkStorageTag, e.Category)
	}

	for _, e := range DefaultEntries(false) {
		assert.Zero(t, e.ServerID)
	}
}

func TestRegistry(t *testing.T) {
	newRegistry := func() *Registry {
		return NewRegistry(DefaultEntries(true), NewIDGenerator(fixedClock(5_000)))
	}

	t.Run("AddAssignsFreshID", func(t *testing.T) {
		r := newRegistry()
		added := r.Add(Entry{ServerID: 1, ServerAddr: "203.0.113.5", ConnectionType: ConnSMB})

		assert.Equal(t, int64(5_000), added.ServerID)
		got, ok := r.Get(added.ServerID)
		require.True(t, ok)
		assert.Equal(t, "203.0.113.5", got.ServerAddr)
		assert.Equal(t, 5, r.Len())

		second := r.Add(Entry{ServerAddr: "203.0.113.6"})
		assert.NotEqual(t, added.ServerID, second.ServerID)
	})

	t.Run("UpdateMergesKnownID", func(t *testing.T) {
		r := newRegistry()
		fields := payload.Map{payload.KeyServerName: "renamed", payload.KeySharedFolder: "/pub"}

		assert.True(t, r.Update(101, fields))
		first := r.List()
		assert.True(t, r.Update(101, fields))
		assert.Equal(t, first, r.List(), "repeated identical updates are idempotent")

		got, _ := r.Get(101)
		assert.Equal(t, "renamed", got.ServerName)
		assert.Equal(t, "/pub", got.SharedFolder)
		assert.Equal(t, "smb://192.168.1.100/shared", got.ServerAddr)
	})

	t.Run("UpdateUnknownIDLeavesRegistry", func(t *testing.T) {
		r := newRegistry()
		before := r.List()
		assert.False(t, r.Update(999, payload.Map{payload.KeyServerName: "x"}))
		assert.Equal(t, before, r.List())
	})

	t.Run("RemoveFirstMatch", func(t *testing.T) {
		r := NewRegistry([]Entry{
			{ServerID: 7, ServerName: "a"},
			{ServerID: 7, ServerName: "b"},
		}, nil)

		assert.True(t, r.Remove(7))
		list := r.List()
		require.Len(t, list, 1)
		assert.Equal(t, "b", list[0].ServerName)

		assert.True(t, r.Remove(7))
		assert.False(t, r.Remove(7))
	})

	t.Run("FilterDoesNotMutate", func(t *testing.T) {
		r := newRegistry()
		placeholders := r.Filter(Entry.IsRootPlaceholder)
		require.Len(t, placeholders, 1)
		assert.Equal(t, RootPlaceholderID, placeholders[0].ServerID)
		assert.Equal(t, 4, r.Len())
	})

	t.Run("ListReturnsCopy", func(t *testing.T) {
		r := newRegistry()
		list := r.List()
		list[0].ServerName = "mutated"

		got, _ := r.Get(RootPlaceholderID)
		assert.NotEqual(t, "mutated", got.ServerName)
	})

	t.Run("ConcurrentMutation", func(t *testing.T) {
		r := NewRegistry(nil, nil)
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				r.Add(Entry{ServerAddr: "10.0.0.1"})
			}()
			go func() {
				defer wg.Done()
				_ = r.Filter(func(Entry) bool { return true })
			}()
		}
		wg.Wait()
		assert.Equal(t, 32, r.Len())
	})
}

func TestEntryMerge(t *testing.T) {
	e := Entry{ServerID: 9, IsAnonymousMode: true}
	e.Merge(payload.Map{
		payload.KeyServerID:   int64(12),
		payload.KeyAnonymous:  false,
		payload.KeyUsername:   "alice",
		payload.KeyPassword:   "secret",
		payload.KeyServerPort: float64(2121),
	})

	assert.Equal(t, int64(9), e.ServerID, "merge never changes the id")
	assert.False(t, e.IsAnonymousMode)
	assert.Equal(t, "alice", e.Username)
	assert.Equal(t, 2121, e.ServerPort)

	e.Merge(payload.Map{payload.KeyAnonymous: "true"})
	assert.Empty(t, e.Username)
	assert.Empty(t, e.Password)
}

func TestFromFields(t *testing.T) {
	e := FromFields(payload.Map{
		payload.KeyServerAddr:     "203.0.113.5",
		payload.KeyConnectionType: "SMB",
		payload.KeyServerName:     "office",
	})
	assert.True(t, e.IsAnonymousMode)
	assert.Equal(t, "203.0.113.5", e.ServerAddr)
	assert.Equal(t, ConnSMB, e.ConnectionType)
	assert.Zero(t, e.ServerID)
}

func TestCredentialsWithoutAnonymousFlag(t *testing.T) {
	e := FromFields(payload.Map{
		payload.KeyServerAddr: "203.0.113.5",
		payload.KeyUsername:   "alice",
		payload.KeyPassword:   "secret",
	})
	assert.False(t, e.IsAnonymousMode)
	assert.Equal(t, "alice", e.Username)
	assert.Equal(t, "secret", e.Password)

	e.Merge(payload.Map{payload.KeyUsername: "bob"})
	assert.False(t, e.IsAnonymousMode)
	assert.Equal(t, "bob", e.Username)
	assert.Equal(t, "secret", e.Password)

	anon := FromFields(payload.Map{payload.KeyServerAddr: "203.0.113.6"})
	anon.Merge(payload.Map{payload.KeyUsername: "carol"})
	assert.False(t, anon.IsAnonymousMode)
	assert.Equal(t, "carol", anon.Username)

	anon.Merge(payload.Map{payload.KeyUsername: "dave", payload.KeyAnonymous: true})
	assert.True(t, anon.IsAnonymousMode)
	assert.Empty(t, anon.Username)
}
