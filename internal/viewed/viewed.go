// Package viewed persists the set of post ids the user has already seen. The
// set survives restarts on the same device and is bounded: once the limit is
// reached the oldest ids are dropped first.
package viewed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the fixed storage file under the app's data directory.
const FileName = "xoroots_viewed_posts.json"

// DefaultLimit caps the number of retained ids.
const DefaultLimit = 1000

// Set is a persistent, insertion-ordered, deduplicated set of post ids.
type Set struct {
	mu    sync.Mutex
	path  string
	ids   []string
	index map[string]struct{}
	limit int
}

// Open loads the set stored in dir, creating an empty one when no file
// exists. Duplicate ids in the stored list are discarded.
func Open(dir string) (*Set, error) {
	return OpenWithLimit(dir, DefaultLimit)
}

// OpenWithLimit opens the set with a custom retention limit.
func OpenWithLimit(dir string, limit int) (*Set, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Set{
		path:  filepath.Join(dir, FileName),
		index: make(map[string]struct{}),
		limit: limit,
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read viewed posts: %w", err)
	}

	var stored []string
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse viewed posts: %w", err)
	}
	for _, id := range stored {
		if _, dup := s.index[id]; dup {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	s.trimLocked()
	return s, nil
}

// Add records the given post ids as viewed and rewrites the storage file.
// Already-present ids are ignored.
func (s *Set) Add(ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := s.index[id]; dup {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
		changed = true
	}
	if !changed {
		return nil
	}
	s.trimLocked()
	return s.saveLocked()
}

// Contains reports whether the post id has been viewed.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// All returns the viewed ids in insertion order.
func (s *Set) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

// Len returns the number of viewed ids.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *Set) trimLocked() {
	if len(s.ids) <= s.limit {
		return
	}
	drop := s.ids[:len(s.ids)-s.limit]
	for _, id := range drop {
		delete(s.index, id)
	}
	s.ids = append([]string(nil), s.ids[len(s.ids)-s.limit:]...)
}

func (s *Set) saveLocked() error {
	data, err := json.Marshal(s.ids)
	if err != nil {
		return fmt.Errorf("failed to encode viewed posts: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write viewed posts: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace viewed posts file: %w", err)
	}
	return nil
}
