package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/recommend"
)

const moviesCSV = `id,title,tagline,overview,genres,vote_average
862,Toy Story,,Toys come alive when nobody is watching.,"[{'id': 16, 'name': 'Animation'}]",7.7
949,Heat,A Los Angeles crime saga,A crew of professional robbers and a detective.,"[{'id': 80, 'name': 'Crime'}]",7.7
603,The Matrix,Welcome to the real world,A hacker learns reality is a simulation.,"[{'id': 878, 'name': 'Science Fiction'}]",7.9
13,Forrest Gump,,A slow-witted man lives through history.,"[{'id': 18, 'name': 'Drama'}]",8.2
`

func writeFixture(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	store := filepath.Join(dir, "models")
	cfg := "store:\n  dir: " + store + "\nembedder:\n  provider: hashing\n  dimension: 256\nlog:\n  level: error\n"
	cfgPath := filepath.Join(dir, "cinematch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	csvFile := filepath.Join(dir, "movies.csv")
	require.NoError(t, os.WriteFile(csvFile, []byte(moviesCSV), 0o644))
	return cfgPath, csvFile
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	queryK, queryProfile, querySimilar, querySQL, queryMetric = 10, false, false, false, "dot"
	batchSize = 256
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestBuildQueryReindex(t *testing.T) {
	cfgPath, csvFile := writeFixture(t)

	out := run(t, "build", "--config", cfgPath, "--csv", csvFile, "--batch", "2")
	assert.Contains(t, out, "built 4 movies")

	var results []recommend.Result
	require.NoError(t, json.Unmarshal([]byte(run(t, "query", "--config", cfgPath, "-k", "2", "hacker", "simulation")), &results))
	require.Len(t, results, 2)
	assert.Equal(t, 603, results[0].ID)

	var similar []recommend.Result
	require.NoError(t, json.Unmarshal([]byte(run(t, "query", "--config", cfgPath, "--similar", "-k", "3", "matrix")), &similar))
	require.Len(t, similar, 3)
	for _, r := range similar {
		assert.NotEqual(t, 603, r.ID)
	}

	assert.Contains(t, run(t, "reindex", "--config", cfgPath), "reindexed 4 vectors")

	var hits []catalog.Hit
	require.NoError(t, json.Unmarshal([]byte(run(t, "query", "--config", cfgPath, "--sql", "-k", "1", "hacker", "simulation")), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, 603, hits[0].ID)

	var nearest []catalog.Hit
	require.NoError(t, json.Unmarshal([]byte(run(t, "query", "--config", cfgPath, "--sql", "--metric", "l2", "-k", "1", "hacker", "simulation")), &nearest))
	require.Len(t, nearest, 1)
	assert.Equal(t, 603, nearest[0].ID)
}

func TestQueryWithoutSnapshot(t *testing.T) {
	cfgPath, _ := writeFixture(t)
	queryK, queryProfile, querySimilar, querySQL = 10, false, false, false
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"query", "--config", cfgPath, "anything"})
	err := rootCmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, recommend.ErrNotReady)
}
