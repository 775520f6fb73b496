package cover

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/index/flat"
	"github.com/viant/cinematch/vector"
)

var _ index.Index = (*Index)(nil)

func randomUnit(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for j := range v {
		v[j] = float32(rng.NormFloat64())
	}
	return vector.Normalize(v)
}

func TestRankingMatchesFlat(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const dim = 16
	cv := New(dim)
	fl := flat.New(dim)
	for n := 0; n < 500; n++ {
		v := randomUnit(rng, dim)
		if _, err := cv.Add(v); err != nil {
			t.Fatalf("cover Add failed: %v", err)
		}
		fl.Add(v)
	}
	for trial := 0; trial < 25; trial++ {
		q := randomUnit(rng, dim)
		want, _ := fl.Search(q, 10)
		got, err := cv.Search(q, 10)
		if err != nil {
			t.Fatalf("cover Search failed: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("trial %d: got %d matches, want %d", trial, len(got), len(want))
		}
		for r := range want {
			if got[r].Position != want[r].Position {
				t.Fatalf("trial %d rank %d: got %d, want %d", trial, r, got[r].Position, want[r].Position)
			}
			if math.Abs(got[r].Score-want[r].Score) > 1e-9 {
				t.Fatalf("trial %d rank %d: score %v, want %v", trial, r, got[r].Score, want[r].Score)
			}
		}
	}
}

func TestDimensionMismatch(t *testing.T) {
	cv := New(4)
	if _, err := cv.Add([]float32{1}); !errors.Is(err, index.ErrDimensionMismatch) {
		t.Fatalf("Add err = %v", err)
	}
	if _, err := cv.Search([]float32{1}, 1); !errors.Is(err, index.ErrDimensionMismatch) {
		t.Fatalf("Search err = %v", err)
	}
}

func TestMarshalRoundTripPreservesPositions(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cv := New(8, WithBase(2))
	for n := 0; n < 50; n++ {
		cv.Add(randomUnit(rng, 8))
	}
	data, err := cv.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	restored := New(0)
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if restored.Len() != 50 || restored.Dim() != 8 {
		t.Fatalf("restored len=%d dim=%d", restored.Len(), restored.Dim())
	}
	q := randomUnit(rng, 8)
	a, _ := cv.Search(q, 5)
	b, _ := restored.Search(q, 5)
	for r := range a {
		if a[r] != b[r] {
			t.Fatalf("rank %d: %+v != %+v", r, a[r], b[r])
		}
	}
}
