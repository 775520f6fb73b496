package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrTruncated is returned when a matrix payload ends before its declared size.
var ErrTruncated = errors.New("vector: truncated matrix data")

// EncodeEmbedding encodes a slice of float32 values into a BLOB representation
// suitable for storage in SQLite: a little-endian sequence of IEEE 754 float32
// values without a length prefix. The length is derived from the BLOB size on
// decode.
func EncodeEmbedding(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b, nil
}

// DecodeEmbedding decodes a BLOB produced by EncodeEmbedding.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

// EncodeMatrix stores: dim(uint32), n(uint32), then n rows of float32[dim].
// Rows are written in position order so that decoding and re-inserting them
// reproduces the same positions.
func EncodeMatrix(dim int, rows [][]float32) ([]byte, error) {
	out := make([]byte, 8, 8+len(rows)*dim*4)
	binary.LittleEndian.PutUint32(out[0:4], uint32(dim))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(rows)))
	buf := make([]byte, 4)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("vector: row %d has dim %d, want %d", i, len(row), dim)
		}
		for _, v := range row {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			out = append(out, buf...)
		}
	}
	return out, nil
}

// DecodeMatrix restores the rows written by EncodeMatrix.
func DecodeMatrix(data []byte) (int, [][]float32, error) {
	if len(data) < 8 {
		return 0, nil, ErrTruncated
	}
	dim32 := binary.LittleEndian.Uint32(data[0:4])
	n32 := binary.LittleEndian.Uint32(data[4:8])
	if dim32 == 0 && n32 > 0 {
		return 0, nil, fmt.Errorf("%w: %d rows of dimension 0", ErrTruncated, n32)
	}
	// dividing keeps a corrupt header from overflowing the bound
	payload := uint64(len(data) - 8)
	if dim32 > 0 && uint64(n32) > payload/(uint64(dim32)*4) {
		return 0, nil, fmt.Errorf("%w: have %d payload bytes for %d rows of dimension %d", ErrTruncated, payload, n32, dim32)
	}
	dim, n := int(dim32), int(n32)
	off := 8
	rows := make([][]float32, n)
	for i := 0; i < n; i++ {
		row := make([]float32, dim)
		for j := 0; j < dim; j++ {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		rows[i] = row
	}
	return dim, rows, nil
}
