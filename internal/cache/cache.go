// Package cache keeps repository metadata fetched for the active registry.
package cache

import (
	"sync"

	"github.com/scottbass3/reglite/internal/api"
)

// Key identifies a repository. Using both parts as separate fields keeps
// names containing "/" from colliding.
type Key struct {
	Registry   string
	Repository string
}

func (k Key) String() string {
	return k.Registry + "/" + k.Repository
}

// Entry is a cached repository record. ManyTags entries hold only the tag
// count; Info.TotalSize is never set on them.
type Entry struct {
	Info     api.RepositoryInfo
	ManyTags bool
}

// Complete reports whether the entry carries full repository info.
func (e Entry) Complete() bool {
	return !e.ManyTags
}

type Store struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

func New() *Store {
	return &Store{entries: make(map[Key]Entry)}
}

func (s *Store) Get(registry, repository string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[Key{Registry: registry, Repository: repository}]
	return entry, ok
}

func (s *Store) Put(registry, repository string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[Key{Registry: registry, Repository: repository}] = entry
}

func (s *Store) Delete(registry, repository string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, Key{Registry: registry, Repository: repository})
}

// ClearFor drops every entry belonging to registry.
func (s *Store) ClearFor(registry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if key.Registry == registry {
			delete(s.entries, key)
		}
	}
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Key]Entry)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
