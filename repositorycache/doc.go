// Package repositorycache provides caching decorators for the repository
// contracts of package repository.
//
// # Overview
//
// A cached reader answers lookups from a cache.Store and falls back to the
// underlying repository on a miss, caching what it fetched. A cached writer
// forwards every write and, once the write succeeded, invalidates the
// entities it touched. A reader and a writer built over the same store form a
// consistent pair:
//
//	store := cache.NewStore(func(u User) int64 { return u.ID })
//	reader := repositorycache.NewReader(base, store.ByPrimaryKey())
//	writer := repositorycache.NewWriter(base, store)
//
// New and NewUnique build such a pair in one call:
//
//	users := repositorycache.New(base, func(u User) int64 { return u.ID },
//		repositorycache.WithLogger(logger),
//		repositorycache.WithName("users"),
//	)
//
// # Read behaviour
//
//   - Get serves a hit without calling the underlying repository. Not found
//     results are returned as is and never cached.
//   - GetRange serves cached keys from the store and fetches the remaining
//     ones with a single underlying GetRange. Cached entities come first.
//   - GetAll always reads from the underlying repository and caches the
//     result. GetAllKeys is never cached.
//
// With cache.Config.CoalesceMisses set, concurrent misses on the same key
// share a single underlying Get.
//
// WithCacheBypass marks a context so reads skip the cache entirely.
//
// # Write behaviour
//
// Update and Delete invalidate their entities. Insert invalidates by default;
// with cache.InsertPopulate the inserted entities are cached instead. When
// the underlying writer implements repository.ItemizedWriter, range writes
// invalidate only the entities reported as affected.
//
// # Unique keys
//
// NewUniqueReader serves GetByPrimaryKey and GetByUniqueKey from one store,
// so an entity fetched through either key is cached under both.
//
// # Repository contexts and asynchronous repositories
//
// The Context variants forward a caller supplied repository context, such
// as a transaction, to the underlying repository. The context is not part of
// any cache key. The Async variants wrap the synchronous decorators: single
// results come back as repository.Future values and collections as lazy
// sequences.
package repositorycache
