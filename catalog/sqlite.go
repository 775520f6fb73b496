package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/viant/cinematch/engine"
	"github.com/viant/cinematch/vector"
)

// ErrCorrupt is returned when catalog.db cannot be read back consistently.
var ErrCorrupt = errors.New("catalog: corrupt artifact")

const recordsSchema = `
CREATE TABLE IF NOT EXISTS records (
    position INTEGER PRIMARY KEY,
    id INTEGER NOT NULL,
    title TEXT NOT NULL,
    soup TEXT NOT NULL,
    rating REAL,
    embedding BLOB
);
CREATE INDEX IF NOT EXISTS records_id ON records(id);
`

// EnsureSchema creates the records table if it does not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, recordsSchema)
	return err
}

// Open opens an existing catalog database for querying, with WAL pragmas
// applied and the vector SQL functions registered. It returns
// fs.ErrNotExist when path is missing.
func Open(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	engine.RegisterVectorFunctions()
	return engine.OpenFile(path)
}

// SaveSQLite writes records and their embeddings to path, replacing any
// previous file only once the new one is complete. vectors may be nil;
// otherwise it must align with records.
func SaveSQLite(ctx context.Context, path string, records []Record, vectors [][]float32) error {
	tmp := path + ".tmp"
	if err := WriteSQLite(ctx, tmp, records, vectors); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// WriteSQLite creates a fresh database at path holding records and their
// embeddings. Any existing file at path is removed first; on failure the
// partial file is removed too.
func WriteSQLite(ctx context.Context, path string, records []Record, vectors [][]float32) error {
	if vectors != nil && len(vectors) != len(records) {
		return fmt.Errorf("catalog: %d records but %d vectors", len(records), len(vectors))
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("catalog: replace %s: %w", path, err)
	}
	db, err := engine.Open(path)
	if err != nil {
		return err
	}
	if err := writeRecords(ctx, db, records, vectors); err != nil {
		db.Close()
		_ = os.Remove(path)
		return err
	}
	if err := db.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func writeRecords(ctx context.Context, db *sql.DB, records []Record, vectors [][]float32) error {
	if err := EnsureSchema(ctx, db); err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records(position, id, title, soup, rating, embedding) VALUES(?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for pos, r := range records {
		var emb []byte
		if vectors != nil {
			if emb, err = vector.EncodeEmbedding(vectors[pos]); err != nil {
				return err
			}
		}
		var rating sql.NullFloat64
		if r.Rating != nil {
			rating = sql.NullFloat64{Float64: *r.Rating, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, pos, r.ID, r.Title, r.Soup, rating, emb); err != nil {
			return fmt.Errorf("catalog: insert position %d: %w", pos, err)
		}
	}
	return tx.Commit()
}

// LoadSQLite reads all records and stored embeddings in position order.
// Rows without an embedding yield a nil vector.
func LoadSQLite(ctx context.Context, path string) ([]Record, [][]float32, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("catalog: stat %s: %w", path, err)
	}
	db, err := engine.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT position, id, title, soup, rating, embedding FROM records ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer rows.Close()

	var records []Record
	var vectors [][]float32
	for rows.Next() {
		var (
			pos    int
			r      Record
			rating sql.NullFloat64
			emb    []byte
		)
		if err := rows.Scan(&pos, &r.ID, &r.Title, &r.Soup, &rating, &emb); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if pos != len(records) {
			return nil, nil, fmt.Errorf("%w: position gap at %d", ErrCorrupt, len(records))
		}
		if rating.Valid {
			v := rating.Float64
			r.Rating = &v
		}
		vec, err := vector.DecodeEmbedding(emb)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: position %d: %v", ErrCorrupt, pos, err)
		}
		records = append(records, r)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return records, vectors, nil
}
