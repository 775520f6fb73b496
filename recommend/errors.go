package recommend

import "errors"

var (
	// ErrNotReady is returned when an operation needs a loaded, non-empty index.
	ErrNotReady = errors.New("recommend: engine not ready")

	// ErrNotFound is returned when no catalog title matches.
	ErrNotFound = errors.New("recommend: movie not found")

	// ErrEmptyQuery is returned when a query has no text to embed.
	ErrEmptyQuery = errors.New("recommend: empty query")
)
