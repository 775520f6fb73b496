package vector

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestEmbeddingBlob(t *testing.T) {
	for _, v := range [][]float32{{0.25}, {0, 1.5, -2.25, 3.75}, {float32(1e-7), -1e7}} {
		b, err := EncodeEmbedding(v)
		if err != nil {
			t.Fatalf("EncodeEmbedding(%v): %v", v, err)
		}
		if len(b) != 4*len(v) {
			t.Fatalf("EncodeEmbedding(%v) = %d bytes, want %d", v, len(b), 4*len(v))
		}
		back, err := DecodeEmbedding(b)
		if err != nil {
			t.Fatalf("DecodeEmbedding: %v", err)
		}
		if !reflect.DeepEqual(back, v) {
			t.Fatalf("DecodeEmbedding = %v, want %v", back, v)
		}
	}
	if b, err := EncodeEmbedding(nil); err != nil || b != nil {
		t.Fatalf("EncodeEmbedding(nil) = %v, %v; want nil, nil", b, err)
	}
}

func TestDecodeEmbedding_BadLength(t *testing.T) {
	if _, err := DecodeEmbedding([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for 3-byte blob")
	}
}

func TestEncodeDecodeMatrix(t *testing.T) {
	rows := [][]float32{{1, 0, 0}, {0, 1, 0}, {0.5, 0.5, 0}}
	data, err := EncodeMatrix(3, rows)
	if err != nil {
		t.Fatalf("EncodeMatrix failed: %v", err)
	}
	dim, got, err := DecodeMatrix(data)
	if err != nil {
		t.Fatalf("DecodeMatrix failed: %v", err)
	}
	if dim != 3 || len(got) != 3 {
		t.Fatalf("DecodeMatrix = dim %d, rows %d; want 3, 3", dim, len(got))
	}
	if got[2][1] != 0.5 {
		t.Fatalf("row 2 = %v, want %v", got[2], rows[2])
	}
}

func TestEncodeMatrix_Empty(t *testing.T) {
	data, err := EncodeMatrix(384, nil)
	if err != nil {
		t.Fatalf("EncodeMatrix(nil) failed: %v", err)
	}
	dim, rows, err := DecodeMatrix(data)
	if err != nil {
		t.Fatalf("DecodeMatrix failed: %v", err)
	}
	if dim != 384 || len(rows) != 0 {
		t.Fatalf("DecodeMatrix = dim %d, rows %d; want 384, 0", dim, len(rows))
	}
}

func TestDecodeMatrix_Truncated(t *testing.T) {
	data, _ := EncodeMatrix(2, [][]float32{{1, 2}, {3, 4}})
	if _, _, err := DecodeMatrix(data[:len(data)-2]); !errors.Is(err, ErrTruncated) {
		t.Fatalf("DecodeMatrix(truncated) err = %v, want ErrTruncated", err)
	}
	if _, _, err := DecodeMatrix([]byte{1}); !errors.Is(err, ErrTruncated) {
		t.Fatalf("DecodeMatrix(short) err = %v, want ErrTruncated", err)
	}

	headers := []struct {
		name   string
		dim, n uint32
	}{
		{"zero dim, max rows", 0, math.MaxUint32},
		{"zero dim, one row", 0, 1},
		{"product beyond payload", math.MaxUint32, math.MaxUint32},
		{"rows beyond payload", 4, 1 << 30},
	}
	for _, h := range headers {
		hdr := make([]byte, 8)
		binary.LittleEndian.PutUint32(hdr[0:4], h.dim)
		binary.LittleEndian.PutUint32(hdr[4:8], h.n)
		if _, _, err := DecodeMatrix(hdr); !errors.Is(err, ErrTruncated) {
			t.Fatalf("DecodeMatrix(%s) err = %v, want ErrTruncated", h.name, err)
		}
	}
}

func TestEncodeMatrix_RowDimMismatch(t *testing.T) {
	if _, err := EncodeMatrix(2, [][]float32{{1, 2, 3}}); err == nil {
		t.Fatalf("expected error for mismatched row")
	}
}
