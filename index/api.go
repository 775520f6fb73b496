package index

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when a vector's length differs from the
// index dimension.
var ErrDimensionMismatch = errors.New("index: dimension mismatch")

// Kind names an Index implementation.
type Kind string

const (
	KindFlat    Kind = "flat"
	KindCover   Kind = "cover"
	KindChromem Kind = "chromem"
)

// Match is a search hit: the insertion position of a stored vector and its
// inner product with the query. Higher scores are more similar.
type Match struct {
	Position int
	Score    float64
}

// Index is an append-only vector store answering kNN queries by inner
// product. Callers insert unit-length vectors, so scores are cosine
// similarities.
type Index interface {
	// Dim returns the fixed vector dimension.
	Dim() int

	// Len returns the number of stored vectors.
	Len() int

	// Add appends vector and returns its position, which equals Len() before
	// the call.
	Add(vector []float32) (int, error)

	// Search returns up to k matches ordered by descending score; equal
	// scores are ordered by ascending position. An empty index yields no
	// matches and no error.
	Search(query []float32, k int) ([]Match, error)

	// Vector returns the stored vector at position.
	Vector(position int) ([]float32, bool)

	// MarshalBinary serializes all stored vectors in position order.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary replaces the contents with a serialized index.
	UnmarshalBinary(data []byte) error
}

// CheckDim returns ErrDimensionMismatch when len(vector) != dim.
func CheckDim(dim int, vector []float32) error {
	if len(vector) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), dim)
	}
	return nil
}

// ParseKind validates a configured kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindFlat, KindCover, KindChromem:
		return k, nil
	case "":
		return KindFlat, nil
	default:
		return "", fmt.Errorf("index: unknown kind %q", s)
	}
}
