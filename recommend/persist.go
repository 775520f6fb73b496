package recommend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/index"
	"go.uber.org/zap"
)

// Snapshot artifact names inside a persistence directory.
const (
	IndexFile   = "movie_index.bin"
	CatalogFile = "catalog.db"
)

// Persist writes the index and catalog to dir, creating it if needed. Both
// artifacts are staged under temporary names and renamed into place only
// after both were written, so a failed persist leaves the previous snapshot
// intact.
func (e *Engine) Persist(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.index == nil {
		if err := e.Reset(); err != nil {
			return err
		}
	}
	data, err := e.index.MarshalBinary()
	if err != nil {
		return fmt.Errorf("recommend: encode index: %w", err)
	}
	records := e.store.Records()
	vectors := make([][]float32, len(records))
	for pos := range records {
		vectors[pos], _ = e.index.Vector(pos)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("recommend: create %s: %w", dir, err)
	}
	indexPath := filepath.Join(dir, IndexFile)
	catalogPath := filepath.Join(dir, CatalogFile)
	indexTmp, catalogTmp := indexPath+".tmp", catalogPath+".tmp"
	if err := os.WriteFile(indexTmp, data, 0o644); err != nil {
		_ = os.Remove(indexTmp)
		return fmt.Errorf("recommend: write %s: %w", indexTmp, err)
	}
	if err := catalog.WriteSQLite(ctx, catalogTmp, records, vectors); err != nil {
		_ = os.Remove(indexTmp)
		return fmt.Errorf("recommend: save catalog: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(indexTmp)
		_ = os.Remove(catalogTmp)
		return err
	}
	// WAL sidecars left by a query connection belong to the old file
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(catalogPath + suffix)
	}
	if err := os.Rename(catalogTmp, catalogPath); err != nil {
		_ = os.Remove(indexTmp)
		_ = os.Remove(catalogTmp)
		return fmt.Errorf("recommend: commit catalog: %w", err)
	}
	if err := os.Rename(indexTmp, indexPath); err != nil {
		_ = os.Remove(indexTmp)
		return fmt.Errorf("recommend: commit index: %w", err)
	}
	e.logger.Info("snapshot persisted", zap.String("dir", dir), zap.Int("records", len(records)))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("recommend: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("recommend: rename %s: %w", tmp, err)
	}
	return nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// clear leaves the engine without an index and with an empty store.
func (e *Engine) clear() {
	e.index = nil
	e.store = catalog.NewStore()
	e.metrics.setRecords(0)
}

// Restore loads a snapshot from dir. When either artifact is missing the
// engine is left empty and nil is returned. A corrupted or inconsistent
// snapshot returns an error and leaves the engine as it was.
func (e *Engine) Restore(ctx context.Context, dir string) error {
	indexPath := filepath.Join(dir, IndexFile)
	catalogPath := filepath.Join(dir, CatalogFile)
	for _, p := range []string{indexPath, catalogPath} {
		ok, err := exists(p)
		if err != nil {
			return fmt.Errorf("recommend: stat %s: %w", p, err)
		}
		if !ok {
			e.clear()
			e.logger.Warn("snapshot artifact missing, engine left empty", zap.String("path", p))
			return nil
		}
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return fmt.Errorf("recommend: read index: %w", err)
	}
	idx, err := NewIndex(e.kind, e.dim)
	if err != nil {
		return err
	}
	if err := idx.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("recommend: decode index: %w", err)
	}
	if idx.Dim() != e.dim {
		return fmt.Errorf("recommend: snapshot %w: index dim %d, embedder dim %d", index.ErrDimensionMismatch, idx.Dim(), e.dim)
	}
	records, _, err := catalog.LoadSQLite(ctx, catalogPath)
	if err != nil {
		return fmt.Errorf("recommend: load catalog: %w", err)
	}
	if len(records) != idx.Len() {
		return fmt.Errorf("recommend: snapshot misaligned: %d vectors, %d records", idx.Len(), len(records))
	}
	e.index = idx
	e.store = catalog.NewStore(records...)
	e.metrics.setRecords(len(records))
	e.logger.Info("snapshot restored", zap.String("dir", dir), zap.Int("records", len(records)))
	return nil
}

// Reindex rebuilds the index artifact in dir from the embeddings stored in
// catalog.db, then loads the result. It returns the number of vectors
// indexed.
func (e *Engine) Reindex(ctx context.Context, dir string) (int, error) {
	records, vectors, err := catalog.LoadSQLite(ctx, filepath.Join(dir, CatalogFile))
	if err != nil {
		return 0, fmt.Errorf("recommend: load catalog: %w", err)
	}
	idx, err := NewIndex(e.kind, e.dim)
	if err != nil {
		return 0, err
	}
	for pos, v := range vectors {
		if v == nil {
			return 0, fmt.Errorf("recommend: record %d (position %d) has no stored embedding", records[pos].ID, pos)
		}
		if _, err := idx.Add(v); err != nil {
			return 0, fmt.Errorf("recommend: reindex position %d: %w", pos, err)
		}
	}
	data, err := idx.MarshalBinary()
	if err != nil {
		return 0, err
	}
	if err := writeFileAtomic(filepath.Join(dir, IndexFile), data); err != nil {
		return 0, err
	}
	e.index = idx
	e.store = catalog.NewStore(records...)
	e.metrics.setRecords(len(records))
	e.logger.Info("index rebuilt", zap.String("dir", dir), zap.String("kind", string(e.kind)), zap.Int("records", len(records)))
	return len(records), nil
}
