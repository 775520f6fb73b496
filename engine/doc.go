// Package engine provides helpers for working with the modernc.org/sqlite
// driver: opening catalog databases with the pragmas this module relies on
// and registering the vector SQL scalar functions (vec_dot, vec_cosine,
// vec_l2). It keeps a thin surface so the catalog and its tools share one
// driver instance.
package engine
