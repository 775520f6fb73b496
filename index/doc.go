// Package index defines the vector index abstraction used by the
// recommendation engine: append-only insertion, kNN search by inner product
// and a shared binary serialization. Implementations live in subpackages:
// flat (exhaustive scan), cover (exact cover tree) and chromem (chromem-go
// collection).
package index
