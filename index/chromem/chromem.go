// Package chromem adapts an in-memory chromem-go collection to index.Index.
// chromem-go ranks by cosine similarity, which equals the inner product for
// the unit vectors the engine inserts.
package chromem

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/vector"
)

const collectionName = "movies"

// Index keeps vectors in a chromem-go collection keyed by position, plus a
// local copy for Vector and MarshalBinary.
type Index struct {
	dim  int
	vecs [][]float32
	coll *chromem.Collection
}

// New returns an empty index for dim-length vectors.
func New(dim int) (*Index, error) {
	coll, err := newCollection()
	if err != nil {
		return nil, err
	}
	return &Index{dim: dim, coll: coll}, nil
}

func newCollection() (*chromem.Collection, error) {
	db := chromem.NewDB()
	// Embeddings are always supplied; chromem never needs to compute one.
	noEmbed := func(context.Context, string) ([]float32, error) {
		return nil, fmt.Errorf("chromem: embedding must be precomputed")
	}
	coll, err := db.CreateCollection(collectionName, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("chromem: create collection: %w", err)
	}
	return coll, nil
}

func (i *Index) Dim() int { return i.dim }

func (i *Index) Len() int { return len(i.vecs) }

func (i *Index) Add(v []float32) (int, error) {
	if err := index.CheckDim(i.dim, v); err != nil {
		return 0, err
	}
	pos := len(i.vecs)
	stored := append([]float32(nil), v...)
	doc := chromem.Document{
		ID:        strconv.Itoa(pos),
		Embedding: append([]float32(nil), v...),
		Metadata:  map[string]string{"position": strconv.Itoa(pos)},
	}
	if err := i.coll.AddDocument(context.Background(), doc); err != nil {
		return 0, fmt.Errorf("chromem: add %d: %w", pos, err)
	}
	i.vecs = append(i.vecs, stored)
	return pos, nil
}

func (i *Index) Search(query []float32, k int) ([]index.Match, error) {
	if err := index.CheckDim(i.dim, query); err != nil {
		return nil, err
	}
	if k <= 0 || len(i.vecs) == 0 {
		return nil, nil
	}
	if k > len(i.vecs) {
		k = len(i.vecs)
	}
	if vector.Magnitude(query) == 0 {
		// every score is zero; chromem cannot normalize the query
		matches := make([]index.Match, k)
		for pos := range matches {
			matches[pos] = index.Match{Position: pos}
		}
		return matches, nil
	}
	results, err := i.coll.QueryEmbedding(context.Background(), query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: query: %w", err)
	}
	matches := make([]index.Match, 0, len(results))
	for _, r := range results {
		pos, err := strconv.Atoi(r.ID)
		if err != nil || pos < 0 || pos >= len(i.vecs) {
			continue
		}
		matches = append(matches, index.Match{Position: pos, Score: vector.Dot(query, i.vecs[pos])})
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
		return fmt.Errorf("chromem: %w", err)
	}
	coll, err := newCollection()
	if err != nil {
		return err
	}
	fresh := &Index{dim: dim, coll: coll}
	for _, row := range rows {
		if _, err := fresh.Add(row); err != nil {
			return err
		}
	}
	*i = *fresh
	return nil
}
