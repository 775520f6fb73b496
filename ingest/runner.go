package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/viant/cinematch/catalog"
	"go.uber.org/zap"
)

// Source supplies candidate movies and the genre lookup.
type Source interface {
	GenreMap(ctx context.Context) (map[int]string, error)
	Popular(ctx context.Context, limit int) ([]Movie, error)
}

// Target is the engine surface the runner drives.
type Target interface {
	Restore(ctx context.Context, dir string) error
	IDs() map[int]struct{}
	AddRecord(ctx context.Context, record catalog.Record) error
	Persist(ctx context.Context, dir string) error
	Size() int
}

// Report summarizes one update run.
type Report struct {
	RunID   string `json:"run_id"`
	Fetched int    `json:"fetched"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	Total   int    `json:"total"`
}

// Runner adds newly popular movies to the snapshot in a directory.
type Runner struct {
	source Source
	target Target
	limit  int
	logger *zap.Logger
}

// NewRunner builds a runner fetching up to limit candidates per run.
func NewRunner(source Source, target Target, limit int, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 1000
	}
	return &Runner{source: source, target: target, limit: limit, logger: logger}
}

// Run restores the snapshot in dir, adds unseen candidates and persists the
// result. A missing snapshot starts an empty catalog. Cancellation is
// checked between records; records added before it are still persisted.
func (r *Runner) Run(ctx context.Context, dir string) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := r.logger.With(zap.String("run_id", report.RunID))

	if err := r.target.Restore(ctx, dir); err != nil {
		return report, fmt.Errorf("ingest: restore %s: %w", dir, err)
	}
	existing := r.target.IDs()
	log.Info("update started", zap.Int("existing", len(existing)))

	candidates, err := r.source.Popular(ctx, r.limit)
	if err != nil {
		return report, fmt.Errorf("ingest: fetch popular: %w", err)
	}
	report.Fetched = len(candidates)

	genres, err := r.source.GenreMap(ctx)
	if err != nil {
		log.Warn("genre map unavailable, continuing without genres", zap.Error(err))
		genres = map[int]string{}
	}

	var fresh []Movie
	for _, m := range candidates {
		if _, ok := existing[m.ID]; ok {
			report.Skipped++
			continue
		}
		existing[m.ID] = struct{}{}
		fresh = append(fresh, m)
	}
	log.Info("new additions found", zap.Int("count", len(fresh)))
	if len(fresh) == 0 {
		report.Total = r.target.Size()
		return report, nil
	}

	var runErr error
	for _, m := range fresh {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		record := catalog.Record{
			ID:    m.ID,
			Title: m.Title,
			Soup:  BuildSoup(m.Title, GenreNames(m.GenreIDs, genres), m.Overview),
		}
		if m.VoteAverage > 0 {
			v := m.VoteAverage
			record.Rating = &v
		}
		if err := r.target.AddRecord(ctx, record); err != nil {
			report.Failed++
			log.Warn("movie not added", zap.Int("id", m.ID), zap.String("title", m.Title), zap.Error(err))
			continue
		}
		report.Added++
		log.Debug("added", zap.Int("id", m.ID), zap.String("title", m.Title))
	}

	if report.Added > 0 {
		// cancellation must not discard records already embedded
		if err := r.target.Persist(context.WithoutCancel(ctx), dir); err != nil {
			return report, fmt.Errorf("ingest: persist %s: %w", dir, err)
		}
	}
	report.Total = r.target.Size()
	log.Info("update complete", zap.Int("added", report.Added), zap.Int("total", report.Total))
	return report, runErr
}
