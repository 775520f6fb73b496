// Package ingest produces catalog records: it pulls popular movies from
// TMDB, converts the movies_metadata.csv dump into records, and runs the
// incremental update that adds unseen movies to a persisted snapshot.
package ingest
