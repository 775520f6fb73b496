package cover

import (
	"fmt"
	"sort"

	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/internal/cover/tree"
	"github.com/viant/cinematch/vector"
)

// Index wraps a cover tree.
type Index struct {
	dim  int
	base float32
	tree *tree.Tree
}

// Option configures an Index.
type Option func(*Index)

// WithBase sets the cover tree expansion base.
func WithBase(base float32) Option { return func(i *Index) { i.base = base } }

// New returns an empty index for dim-length vectors.
func New(dim int, opts ...Option) *Index {
	i := &Index{dim: dim}
	for _, opt := range opts {
		opt(i)
	}
	i.tree = tree.New(i.base)
	return i
}

func (i *Index) Dim() int { return i.dim }

func (i *Index) Len() int { return i.tree.Len() }

func (i *Index) Add(v []float32) (int, error) {
	if err := index.CheckDim(i.dim, v); err != nil {
		return 0, err
	}
	return i.tree.Insert(append([]float32(nil), v...)), nil
}

// Search returns the k nearest vectors. For unit vectors
// |q-v|^2 = 2 - 2<q,v>, so the closest points have the largest inner product.
func (i *Index) Search(query []float32, k int) ([]index.Match, error) {
	if err := index.CheckDim(i.dim, query); err != nil {
		return nil, err
	}
	if k <= 0 || i.tree.Len() == 0 {
		return nil, nil
	}
	neighbors := i.tree.Search(query, k)
	matches := make([]index.Match, len(neighbors))
	for n, nb := range neighbors {
		matches[n] = index.Match{Position: nb.Point.Position, Score: vector.Dot(query, nb.Point.Vector)}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		return matches[a].Position < matches[b].Position
	})
	return matches, nil
}

func (i *Index) Vector(position int) ([]float32, bool) {
	p, ok := i.tree.Point(position)
	if !ok {
		return nil, false
	}
	return p.Vector, true
}

func (i *Index) MarshalBinary() ([]byte, error) {
	rows := make([][]float32, i.tree.Len())
	for pos := range rows {
		p, _ := i.tree.Point(pos)
		rows[pos] = p.Vector
	}
	return vector.EncodeMatrix(i.dim, rows)
}

// UnmarshalBinary rebuilds the tree by replaying inserts in position order.
func (i *Index) UnmarshalBinary(data []byte) error {
	dim, rows, err := vector.DecodeMatrix(data)
	if err != nil {
		return fmt.Errorf("cover: %w", err)
	}
	t := tree.New(i.base)
	for _, row := range rows {
		t.Insert(row)
	}
	i.dim, i.tree = dim, t
	return nil
}
