// Package recommend is the recommendation engine. It keeps a vector index
// and a catalog store aligned position for position, answers free-text and
// profile queries by nearest-neighbor search, filters free-text results
// through guardrails, and persists both halves to a snapshot directory.
//
// An Engine holds no locks. Callers that share one Engine between
// goroutines must serialize writers (AddRecord, Reset, Restore) against
// readers themselves.
package recommend
