package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "profile", Key("profile"))
	assert.Equal(t, "directMessages/alice", Key("directMessages", "alice"))
	assert.Equal(t, "isFollowing/alice/bob", Key("isFollowing", "alice", "bob"))
}

func TestStoreGetFresh(t *testing.T) {
	current := time.Now()
	s := NewStore(0)
	s.now = func() time.Time { return current }

	s.Put("feed", []int{1, 2, 3}, 30*time.Second)

	v, ok := s.GetFresh("feed")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, v)

	// Past the freshness window the entry is stale but still retrievable.
	current = current.Add(31 * time.Second)
	_, ok = s.GetFresh("feed")
	assert.False(t, ok)

	v, ok = s.Get("feed")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, v)
	assert.True(t, s.IsStale("feed"))
}

func TestStoreRetentionEviction(t *testing.T) {
	current := time.Now()
	s := NewStore(time.Minute)
	s.now = func() time.Time { return current }

	s.Put("profile/alice", "a", 5*time.Minute)
	current = current.Add(2 * time.Minute)

	_, ok := s.Get("profile/alice")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStoreInvalidatePrefix(t *testing.T) {
	s := NewStore(0)
	s.Put("followers/alice", 3, time.Minute)
	s.Put("followers/bob", 5, time.Minute)
	s.Put("feed", nil, time.Minute)

	marked := s.Invalidate("followers")
	assert.Equal(t, 2, marked)

	_, ok := s.GetFresh("followers/alice")
	assert.False(t, ok)
	_, ok = s.GetFresh("followers/bob")
	assert.False(t, ok)
	_, ok = s.GetFresh("feed")
	assert.True(t, ok)

	// Re-invalidating already stale entries marks nothing.
	assert.Equal(t, 0, s.Invalidate("followers"))
}

func TestStorePutResetsStale(t *testing.T) {
	s := NewStore(0)
	s.Put("post/1", "v1", time.Minute)
	s.Invalidate("post/1")
	require.True(t, s.IsStale("post/1"))

	s.Put("post/1", "v2", time.Minute)
	v, ok := s.GetFresh("post/1")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore(0)

	var got []string
	cancel := s.Subscribe("directMessages/alice", func(prefix string) {
		got = append(got, prefix)
	})

	// Invalidation of a broader prefix reaches the narrower subscriber, and
	// the other way around.
	s.Invalidate("directMessages")
	s.Invalidate("directMessages/alice/extra")
	s.Invalidate("feed")
	assert.Equal(t, []string{"directMessages", "directMessages/alice/extra"}, got)

	cancel()
	cancel() // safe to call twice
	s.Invalidate("directMessages")
	assert.Len(t, got, 2)
}

func TestStoreSubscriberMayUseStore(t *testing.T) {
	s := NewStore(0)
	s.Put("feed", "old", time.Minute)

	s.Subscribe("feed", func(string) {
		// A refetch writing back into the store must not deadlock.
		s.Put("feed", "new", time.Minute)
	})

	s.Invalidate("feed")
	v, ok := s.GetFresh("feed")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}
