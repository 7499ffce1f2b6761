package cache

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// NoUniqueKey is the unique key type of stores that only index by primary key.
type NoUniqueKey struct{}

// Store holds cached entities indexed by primary key and, optionally, by a
// unique key. Reads are lock free. Mutations are serialized and update both
// indexes inside one critical section, so an entity reachable through its
// unique key is always reachable through its primary key.
//
// A Store is meant to be shared by the read and write decorators of one
// repository. It never evicts and never expires entries.
type Store[PK comparable, UK comparable, E any] struct {
	mu         sync.Mutex
	primaryKey func(E) PK
	uniqueKey  func(E) UK
	byPrimary  *xsync.MapOf[PK, E]
	byUnique   *xsync.MapOf[UK, E]

	// generation is bumped by every invalidation. Population started before
	// an invalidation is dropped.
	generation atomic.Uint64
}

// NewStore creates a Store indexed by primary key only.
func NewStore[K comparable, E any](primaryKey func(E) K) *Store[K, NoUniqueKey, E] {
	return &Store[K, NoUniqueKey, E]{
		primaryKey: primaryKey,
		byPrimary:  xsync.NewMapOf[K, E](),
	}
}

// NewUniqueStore creates a Store indexed by primary key and unique key.
func NewUniqueStore[PK comparable, UK comparable, E any](primaryKey func(E) PK, uniqueKey func(E) UK) *Store[PK, UK, E] {
	return &Store[PK, UK, E]{
		primaryKey: primaryKey,
		uniqueKey:  uniqueKey,
		byPrimary:  xsync.NewMapOf[PK, E](),
		byUnique:   xsync.NewMapOf[UK, E](),
	}
}

// HasUniqueKey reports whether the store maintains a unique key index.
func (s *Store[PK, UK, E]) HasUniqueKey() bool {
	return s.byUnique != nil
}

// PrimaryKey returns the primary key of entity.
func (s *Store[PK, UK, E]) PrimaryKey(entity E) PK {
	return s.primaryKey(entity)
}

// Get returns the entity cached under the primary key.
func (s *Store[PK, UK, E]) Get(key PK) (E, bool) {
	return s.byPrimary.Load(key)
}

// GetByUniqueKey returns the entity cached under the unique key.
func (s *Store[PK, UK, E]) GetByUniqueKey(key UK) (E, bool) {
	if s.byUnique == nil {
		var zero E
		return zero, false
	}
	return s.byUnique.Load(key)
}

// Generation returns the current invalidation generation.
func (s *Store[PK, UK, E]) Generation() uint64 {
	return s.generation.Load()
}

// Put caches entities if no invalidation happened since gen was read with
// Generation. It reports whether the entities were stored.
func (s *Store[PK, UK, E]) Put(gen uint64, entities ...E) bool {
	if len(entities) == 0 {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation.Load() != gen {
		return false
	}
	for _, entity := range entities {
		s.put(entity)
	}
	return true
}

// Set caches entities unconditionally.
func (s *Store[PK, UK, E]) Set(entities ...E) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entity := range entities {
		s.put(entity)
	}
}

// Invalidate removes entities from every index. Both the entity's current
// unique key and the unique key of the cached copy are dropped.
func (s *Store[PK, UK, E]) Invalidate(entities ...E) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation.Add(1)
	for _, entity := range entities {
		s.remove(entity)
	}
}

// InvalidateKeys removes the entities cached under the primary keys.
func (s *Store[PK, UK, E]) InvalidateKeys(keys ...PK) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation.Add(1)
	for _, key := range keys {
		if cached, ok := s.byPrimary.Load(key); ok {
			s.remove(cached)
		}
	}
}

// Clear drops every cached entity.
func (s *Store[PK, UK, E]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation.Add(1)
	if s.byUnique != nil {
		s.byUnique.Clear()
	}
	s.byPrimary.Clear()
}

// Len returns the number of cached entities.
func (s *Store[PK, UK, E]) Len() int {
	return s.byPrimary.Size()
}

// PrimaryKeys returns the cached primary keys in no particular order.
func (s *Store[PK, UK, E]) PrimaryKeys() []PK {
	keys := make([]PK, 0, s.byPrimary.Size())
	s.byPrimary.Range(func(key PK, _ E) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Verify checks that both indexes describe the same set of entities. A
// non-nil result means an invalidation path skipped one of the indexes.
func (s *Store[PK, UK, E]) Verify() error {
	if s.byUnique == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	s.byUnique.Range(func(uk UK, entity E) bool {
		if got := s.uniqueKey(entity); got != uk {
			err = fmt.Errorf("unique key %v holds entity with unique key %v", uk, got)
			return false
		}
		pk := s.primaryKey(entity)
		cached, ok := s.byPrimary.Load(pk)
		if !ok {
			err = fmt.Errorf("unique key %v has no primary key entry %v", uk, pk)
			return false
		}
		if !reflect.DeepEqual(cached, entity) {
			err = fmt.Errorf("unique key %v and primary key %v hold different entities", uk, pk)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	s.byPrimary.Range(func(pk PK, entity E) bool {
		if _, ok := s.byUnique.Load(s.uniqueKey(entity)); !ok {
			err = fmt.Errorf("primary key %v has no unique key entry", pk)
			return false
		}
		return true
	})
	return err
}

// put must be called with mu held.
func (s *Store[PK, UK, E]) put(entity E) {
	pk := s.primaryKey(entity)
	if s.byUnique == nil {
		s.byPrimary.Store(pk, entity)
		return
	}

	uk := s.uniqueKey(entity)
	if prev, ok := s.byPrimary.Load(pk); ok {
		if prevUK := s.uniqueKey(prev); prevUK != uk {
			s.byUnique.Delete(prevUK)
		}
	}
	// the unique key moved from another entity
	if holder, ok := s.byUnique.Load(uk); ok {
		if holderPK := s.primaryKey(holder); holderPK != pk {
			s.byUnique.Delete(uk)
			s.byPrimary.Delete(holderPK)
		}
	}

	s.byPrimary.Store(pk, entity)
	s.byUnique.Store(uk, entity)
}

// remove must be called with mu held. Unique entries go first so a lock
// free reader never finds a unique entry without its primary entry.
func (s *Store[PK, UK, E]) remove(entity E) {
	pk := s.primaryKey(entity)
	if s.byUnique != nil {
		if holder, ok := s.byUnique.LoadAndDelete(s.uniqueKey(entity)); ok {
			if holderPK := s.primaryKey(holder); holderPK != pk {
				s.byPrimary.Delete(holderPK)
			}
		}
		if cached, ok := s.byPrimary.Load(pk); ok {
			s.byUnique.Delete(s.uniqueKey(cached))
		}
	}
	s.byPrimary.Delete(pk)
}
