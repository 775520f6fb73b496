package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/cinematch/embedder"
	"github.com/viant/cinematch/recommend"
)

type staticSource struct {
	movies    []Movie
	genres    map[int]string
	genreErr  error
	popularEr error
}

func (s *staticSource) GenreMap(context.Context) (map[int]string, error) {
	return s.genres, s.genreErr
}

func (s *staticSource) Popular(_ context.Context, limit int) ([]Movie, error) {
	if s.popularEr != nil {
		return nil, s.popularEr
	}
	if limit < len(s.movies) {
		return s.movies[:limit], nil
	}
	return s.movies, nil
}

func newEngine(t *testing.T) *recommend.Engine {
	t.Helper()
	e, err := recommend.New(embedder.NewHashing(32))
	require.NoError(t, err)
	return e
}

func TestRunnerBuildsAndUpdatesSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	source := &staticSource{
		movies: []Movie{
			{ID: 1, Title: "Heat", Overview: "heist", GenreIDs: []int{80}},
			{ID: 2, Title: "Up", Overview: "balloons", GenreIDs: []int{16}, VoteAverage: 7.9},
			{ID: 1, Title: "Heat", Overview: "heist", GenreIDs: []int{80}},
		},
		genres: map[int]string{80: "Crime", 16: "Animation"},
	}

	report, err := NewRunner(source, newEngine(t), 100, nil).Run(ctx, dir)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 2, report.Added)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 2, report.Total)

	serving := newEngine(t)
	require.NoError(t, serving.Restore(ctx, dir))
	require.Equal(t, 2, serving.Size())
	records := serving.Records()
	assert.Equal(t, "Heat Heat Crime heist", records[0].Soup)
	require.NotNil(t, records[1].Rating)

	source.movies = append(source.movies, Movie{ID: 3, Title: "Alien", Overview: "space"})
	second, err := NewRunner(source, newEngine(t), 100, nil).Run(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Added)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, 3, second.Total)
	assert.NotEqual(t, report.RunID, second.RunID)
}

func TestRunnerGenreFailureAndNothingNew(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	source := &staticSource{
		movies:   []Movie{{ID: 5, Title: "Solaris", Overview: "ocean", GenreIDs: []int{878}}},
		genreErr: errors.New("down"),
	}
	report, err := NewRunner(source, newEngine(t), 10, nil).Run(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)

	again, err := NewRunner(source, newEngine(t), 10, nil).Run(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Added)
	assert.Equal(t, 1, again.Total)
}

func TestRunnerFetchError(t *testing.T) {
	source := &staticSource{popularEr: errors.New("offline")}
	_, err := NewRunner(source, newEngine(t), 10, nil).Run(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := &staticSource{movies: []Movie{{ID: 1, Title: "Heat", Overview: "heist"}}}
	report, err := NewRunner(source, newEngine(t), 10, nil).Run(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Added)
}
