package vector

import (
	"math"
	"testing"
)

func TestPairwise(t *testing.T) {
	x, y := []float32{1, 0}, []float32{0, 1}
	cases := []struct {
		name string
		fn   func(a, b []float32) (float64, error)
		a, b []float32
		want float64
	}{
		{"cosine orthogonal", CosineSimilarity, x, y, 0},
		{"cosine scaled", CosineSimilarity, []float32{3, 0}, x, 1},
		{"cosine opposite", CosineSimilarity, x, []float32{-2, 0}, -1},
		{"l2 3-4-5", L2Distance, []float32{0, 0}, []float32{3, 4}, 5},
		{"l2 same", L2Distance, y, y, 0},
	}
	for _, tc := range cases {
		got, err := tc.fn(tc.a, tc.b)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s = %v, want %v", tc.name, got, tc.want)
		}
	}
	if _, err := CosineSimilarity(x, []float32{1}); err == nil {
		t.Fatalf("cosine over different dims: expected error")
	}
	if _, err := CosineSimilarity(x, []float32{0, 0}); err == nil {
		t.Fatalf("cosine with zero vector: expected error")
	}
}

func TestNormalize(t *testing.T) {
	n := Normalize([]float32{3, 4})
	if math.Abs(float64(n[0])-0.6) > 1e-6 || math.Abs(float64(n[1])-0.8) > 1e-6 {
		t.Fatalf("Normalize(3,4) = %v, want [0.6 0.8]", n)
	}
	if m := Magnitude(n); math.Abs(float64(m)-1) > 1e-6 {
		t.Fatalf("Magnitude(normalized) = %v, want 1", m)
	}

	zero := Normalize([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Fatalf("Normalize(zero) = %v, want zeros", zero)
	}
}

func TestNormalize_DoesNotAlias(t *testing.T) {
	in := []float32{2, 0}
	out := Normalize(in)
	if in[0] != 2 {
		t.Fatalf("Normalize mutated its input: %v", in)
	}
	if out[0] != 1 {
		t.Fatalf("Normalize(2,0) = %v, want [1 0]", out)
	}
}

func TestMean(t *testing.T) {
	m, err := Mean([][]float32{{1, 0}, {0, 1}, {2, 2}})
	if err != nil {
		t.Fatalf("Mean failed: %v", err)
	}
	if m[0] != 1 || m[1] != 1 {
		t.Fatalf("Mean = %v, want [1 1]", m)
	}
	if _, err := Mean(nil); err == nil {
		t.Fatalf("expected error on empty mean")
	}
	if _, err := Mean([][]float32{{1}, {1, 2}}); err == nil {
		t.Fatalf("expected error on mismatched dims")
	}
}

func TestDot(t *testing.T) {
	if d := Dot([]float32{1, 2, 3}, []float32{4, 5, 6}); d != 32 {
		t.Fatalf("Dot = %v, want 32", d)
	}
}
