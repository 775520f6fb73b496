// Package flat implements an exhaustive inner-product index.
package flat

import (
	"fmt"
	"sort"

	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/vector"
)

// Index scans every stored vector on each query.
type Index struct {
	dim  int
	vecs [][]float32
}

// New returns an empty index for dim-length vectors.
func New(dim int) *Index { return &Index{dim: dim} }

func (i *Index) Dim() int { return i.dim }

func (i *Index) Len() int { return len(i.vecs) }

// Add appends a copy of v.
func (i *Index) Add(v []float32) (int, error) {
	if err := index.CheckDim(i.dim, v); err != nil {
		return 0, err
	}
	i.vecs = append(i.vecs, append([]float32(nil), v...))
	return len(i.vecs) - 1, nil
}

// Search returns the top-k vectors by inner product.
func (i *Index) Search(query []float32, k int) ([]index.Match, error) {
	if err := index.CheckDim(i.dim, query); err != nil {
		return nil, err
	}
	if k <= 0 || len(i.vecs) == 0 {
		return nil, nil
	}
	matches := make([]index.Match, len(i.vecs))
	for pos, v := range i.vecs {
		matches[pos] = index.Match{Position: pos, Score: vector.Dot(query, v)}
	}
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })
	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

func (i *Index) Vector(position int) ([]float32, bool) {
	if position < 0 || position >= len(i.vecs) {
		return nil, false
	}
	return i.vecs[position], true
}

func (i *Index) MarshalBinary() ([]byte, error) {
	return vector.EncodeMatrix(i.dim, i.vecs)
}

func (i *Index) UnmarshalBinary(data []byte) error {
	dim, rows, err := vector.DecodeMatrix(data)
	if err != nil {
		return fmt.Errorf("flat: %w", err)
	}
	i.dim, i.vecs = dim, rows
	return nil
}
