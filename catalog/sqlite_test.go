package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")
	records := []Record{
		{ID: 1, Title: "Heat", Soup: "Heat Heat Crime", Rating: ptr(7.9)},
		{ID: 2, Title: "Up", Soup: "Up Up Animation"},
	}
	vectors := [][]float32{{1, 0}, {0, 1}}
	require.NoError(t, SaveSQLite(ctx, path, records, vectors))

	gotRecords, gotVectors, err := LoadSQLite(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, records, gotRecords)
	assert.Equal(t, vectors, gotVectors)

	// saving again replaces the previous content
	require.NoError(t, SaveSQLite(ctx, path, records[:1], nil))
	gotRecords, gotVectors, err = LoadSQLite(ctx, path)
	require.NoError(t, err)
	assert.Len(t, gotRecords, 1)
	assert.Nil(t, gotVectors[0])
}

func TestLoadSQLiteMissing(t *testing.T) {
	_, _, err := LoadSQLite(context.Background(), filepath.Join(t.TempDir(), "nope.db"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadSQLiteCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	require.NoError(t, os.WriteFile(path, []byte("definitely not sqlite, just some bytes padding the header out"), 0o644))
	_, _, err := LoadSQLite(context.Background(), path)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSaveSQLiteMisaligned(t *testing.T) {
	err := SaveSQLite(context.Background(), filepath.Join(t.TempDir(), "c.db"), []Record{{ID: 1, Title: "a", Soup: "a"}}, [][]float32{})
	assert.Error(t, err)
}

func TestNearest(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")
	records := []Record{
		{ID: 1, Title: "East", Soup: "e"},
		{ID: 2, Title: "North", Soup: "n"},
		{ID: 3, Title: "NorthEast", Soup: "ne"},
	}
	vectors := [][]float32{{1, 0}, {0, 1}, {0.6, 0.8}}
	require.NoError(t, SaveSQLite(ctx, path, records, vectors))

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	hits, err := Nearest(ctx, db, MetricDot, []float32{0, 1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 2, hits[0].ID)
	assert.Equal(t, 3, hits[1].ID)
	assert.InDelta(t, 0.8, hits[1].Score, 1e-6)

	// an unnormalized query: cosine ignores its length, l2 ranks by distance
	hits, err = Nearest(ctx, db, MetricCosine, []float32{0, 5}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].ID)
	assert.InDelta(t, 1, hits[0].Score, 1e-6)

	hits, err = Nearest(ctx, db, MetricL2, []float32{0.9, 0.1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, []int{1, 3, 2}, []int{hits[0].ID, hits[1].ID, hits[2].ID})
	assert.Less(t, hits[0].Score, hits[1].Score)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestParseMetric(t *testing.T) {
	for in, want := range map[string]Metric{"": MetricDot, "dot": MetricDot, "cosine": MetricCosine, "l2": MetricL2} {
		got, err := ParseMetric(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMetric("manhattan")
	assert.Error(t, err)
}
