// Package cache provides the entity store shared by the repository cache
// decorators, the decorator configuration and key serialization.
//
// # Store
//
// A Store maps primary keys to entities and, when created with
// NewUniqueStore, unique keys to the same entities:
//
//	byID := cache.NewStore(func(u User) int64 { return u.ID })
//	byIDAndEmail := cache.NewUniqueStore(
//		func(u User) int64 { return u.ID },
//		func(u User) string { return u.Email },
//	)
//
// The read decorator works against an Index view (ByPrimaryKey or
// ByUniqueKey) and the write decorator against the Invalidator side. Build
// both decorators from the same Store so a write is visible to the reader:
// the store is the only thing they share.
//
// Lookups never take a lock. Every mutation runs under one mutex and touches
// both indexes before releasing it, so an entity found through its unique
// key is always present under its primary key.
//
// Entries are never evicted and never expire. Scope the Store lifetime to
// the data it may see; sharing one Store across tenants shares their data.
//
// # Population after invalidation
//
// The store keeps a generation counter that every invalidation bumps. Read
// paths take the generation before calling the underlying repository and
// pass it to Put, which drops the result if an invalidation happened
// meanwhile. A read that raced a write therefore cannot put the pre-write
// entity back after the write returned.
//
// # Key serialization
//
// KeySerializer renders a method name plus key arguments as a stable
// string. The decorators use it for log fields and to coalesce concurrent
// misses; the file store uses it to derive file names.
//
//	serializer := cache.NewKeySerializer("users")
//	key := serializer.SerializeKey("Get", 42) // "users::Get::42"
package cache
