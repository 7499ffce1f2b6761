package cache

// Index is a single key view over a Store used by the read decorators.
type Index[K comparable, E any] interface {
	// Lookup returns the cached entity for key.
	Lookup(key K) (E, bool)
	// Generation returns a token to pass to Populate after a fetch.
	Generation() uint64
	// Populate caches entities fetched since gen was taken. Every index of
	// the owning store is updated, whichever view is used.
	Populate(gen uint64, entities ...E) bool
}

// Invalidator is the write side of a Store used by the write decorators.
type Invalidator[E any] interface {
	Invalidate(entities ...E)
	Set(entities ...E)
}

var (
	_ Index[int, any]    = primaryIndex[int, string, any]{}
	_ Index[string, any] = uniqueIndex[int, string, any]{}
	_ Invalidator[any]   = (*Store[int, string, any])(nil)
)

// ByPrimaryKey returns the primary key view of the store.
func (s *Store[PK, UK, E]) ByPrimaryKey() Index[PK, E] {
	return primaryIndex[PK, UK, E]{store: s}
}

// ByUniqueKey returns the unique key view of the store. It panics when the
// store was created without a unique key.
func (s *Store[PK, UK, E]) ByUniqueKey() Index[UK, E] {
	if s.byUnique == nil {
		panic("cache: store has no unique key index")
	}
	return uniqueIndex[PK, UK, E]{store: s}
}

type primaryIndex[PK comparable, UK comparable, E any] struct {
	store *Store[PK, UK, E]
}

func (i primaryIndex[PK, UK, E]) Lookup(key PK) (E, bool) { return i.store.Get(key) }

func (i primaryIndex[PK, UK, E]) Generation() uint64 { return i.store.Generation() }

func (i primaryIndex[PK, UK, E]) Populate(gen uint64, entities ...E) bool {
	return i.store.Put(gen, entities...)
}

type uniqueIndex[PK comparable, UK comparable, E any] struct {
	store *Store[PK, UK, E]
}

func (i uniqueIndex[PK, UK, E]) Lookup(key UK) (E, bool) { return i.store.GetByUniqueKey(key) }

func (i uniqueIndex[PK, UK, E]) Generation() uint64 { return i.store.Generation() }

func (i uniqueIndex[PK, UK, E]) Populate(gen uint64, entities ...E) bool {
	return i.store.Put(gen, entities...)
}
