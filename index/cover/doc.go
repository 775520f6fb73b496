// Package cover provides an exact kNN index backed by a cover tree. Vectors
// are stored unit length and compared by Euclidean distance, which orders
// neighbors the same way the inner product does; reported scores are the
// inner products recomputed from the stored vectors.
package cover
