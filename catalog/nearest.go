package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/cinematch/vector"
)

// Hit is a row ranked by Nearest.
type Hit struct {
	Position int     `json:"position"`
	ID       int     `json:"movie_id"`
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
}

// Metric names the SQL function Nearest ranks by.
type Metric string

const (
	MetricDot    Metric = "dot"
	MetricCosine Metric = "cosine"
	MetricL2     Metric = "l2"
)

// ParseMetric maps a metric name to a Metric; empty means MetricDot.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case "":
		return MetricDot, nil
	case MetricDot, MetricCosine, MetricL2:
		return m, nil
	default:
		return "", fmt.Errorf("catalog: unknown metric %q (want dot, cosine or l2)", s)
	}
}

// rankClause returns the scoring expression and the ORDER BY direction.
func (m Metric) rankClause() (string, string) {
	switch m {
	case MetricCosine:
		return "vec_cosine(embedding, ?)", "DESC"
	case MetricL2:
		return "vec_l2(embedding, ?)", "ASC"
	default:
		return "vec_dot(embedding, ?)", "DESC"
	}
}

// Nearest ranks stored embeddings against query inside SQLite: by
// similarity for dot and cosine, by distance for l2. It scans the whole
// table and is meant for diagnostics; db must be opened after
// engine.RegisterVectorFunctions (Open does this).
func Nearest(ctx context.Context, db *sql.DB, metric Metric, query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	blob, err := vector.EncodeEmbedding(query)
	if err != nil {
		return nil, err
	}
	expr, dir := metric.rankClause()
	rows, err := db.QueryContext(ctx, `
SELECT position, id, title, `+expr+` AS score
FROM records
WHERE embedding IS NOT NULL
ORDER BY score `+dir+`, position ASC
LIMIT ?`, blob, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Position, &h.ID, &h.Title, &h.Score); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
