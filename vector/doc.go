// Package vector holds the numeric helpers shared by the index, catalog and
// recommendation packages. It includes:
//   - normalization, mean and similarity functions over float32 embeddings
//   - the float32 BLOB codec used for SQLite columns
//   - the matrix codec used by every index implementation for persistence
package vector
