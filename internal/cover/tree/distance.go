package tree

import "github.com/viant/vec/search"

// Distance returns the Euclidean distance between two points. The tree only
// prunes with the triangle inequality, so any true metric works here; for
// unit vectors the Euclidean distance orders neighbors exactly as the inner
// product does.
func Distance(p1, p2 *Point) float32 {
	return search.Float32s(p1.Vector).EuclideanDistance(p2.Vector)
}
