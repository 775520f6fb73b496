// Package catalog holds movie records in insertion order. A record's
// position in the Store is the position of its embedding in the vector
// index. The package also reads and writes the catalog.db SQLite artifact.
package catalog
