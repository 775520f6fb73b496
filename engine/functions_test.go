package engine

import (
	"math"
	"testing"

	"github.com/viant/cinematch/vector"
)

func blob(t *testing.T, v ...float32) []byte {
	t.Helper()
	b, err := vector.EncodeEmbedding(v)
	if err != nil {
		t.Fatalf("EncodeEmbedding(%v): %v", v, err)
	}
	return b
}

func TestVectorFunctions(t *testing.T) {
	RegisterVectorFunctions()
	RegisterVectorFunctions() // second call is a no-op
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	cases := []struct {
		sql  string
		a, b []byte
		want float64
	}{
		{"SELECT vec_cosine(?, ?)", blob(t, 1, 0), blob(t, 0, 1), 0},
		{"SELECT vec_cosine(?, ?)", blob(t, 2, 0), blob(t, 1, 0), 1},
		{"SELECT vec_dot(?, ?)", blob(t, 1, 2), blob(t, 3, 4), 11},
		{"SELECT vec_l2(?, ?)", blob(t, 0, 0), blob(t, 3, 4), 5},
	}
	for _, tc := range cases {
		var got float64
		if err := db.QueryRow(tc.sql, tc.a, tc.b).Scan(&got); err != nil {
			t.Fatalf("%s: %v", tc.sql, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s = %v, want %v", tc.sql, got, tc.want)
		}
	}
}

func TestVectorFunctionsNullAndMismatch(t *testing.T) {
	RegisterVectorFunctions()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var got *float64
	if err := db.QueryRow("SELECT vec_dot(NULL, ?)", blob(t, 1)).Scan(&got); err != nil {
		t.Fatalf("vec_dot(NULL, x): %v", err)
	}
	if got != nil {
		t.Fatalf("vec_dot(NULL, x) = %v, want NULL", *got)
	}
	if err := db.QueryRow("SELECT vec_dot(?, ?)", blob(t, 1, 2), blob(t, 1)).Scan(&got); err == nil {
		t.Fatalf("vec_dot over different dims: expected error")
	}
}
