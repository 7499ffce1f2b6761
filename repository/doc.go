// Package repository defines the repository contracts consumed and produced
// by the cache decorators, together with adapters that reshape one contract
// into another without adding behavior.
//
// # Contracts
//
//   - Reader / Writer: entities addressed by a single key type
//   - UniqueReader: entities addressed by a primary key and a unique key
//   - Context* variants: the same operations with a caller supplied
//     repository context (connection, transaction) passed through untouched
//   - Async* variants: Futures for single values, iter.Seq2 for sequences
//
// Get style lookups report a missing entity with ErrNotFound. Range and
// All lookups leave missing entities out of the result.
//
// # Adapters
//
//	byID := repository.PrimaryKeyReader(uniqueRepo)   // Reader[PK, E]
//	byCode := repository.UniqueKeyReader(uniqueRepo)  // Reader[UK, E]
//	plain := repository.BindReader(ctxRepo, tx)       // Reader[K, E] for one tx
//	async := repository.NewAsyncReader(plain)         // AsyncReader[K, E]
//	sync := repository.AwaitReader(async)             // Reader[K, E]
//
// Every adapter forwards UseTransactionScope to the wrapped value.
package repository
