package ingest

import "strings"

// BuildSoup returns the embedding text for a TMDB movie. The title appears
// twice to weight it over the overview.
func BuildSoup(title string, genres []string, overview string) string {
	return strings.Join([]string{title, title, strings.Join(genres, " "), overview}, " ")
}

// GenreNames resolves genre ids; unknown ids become empty strings so the
// soup keeps one slot per id.
func GenreNames(ids []int, genres map[int]string) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = genres[id]
	}
	return names
}
