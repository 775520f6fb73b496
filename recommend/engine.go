package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/embedder"
	"github.com/viant/cinematch/guardrail"
	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/index/chromem"
	"github.com/viant/cinematch/index/cover"
	"github.com/viant/cinematch/index/flat"
	"github.com/viant/cinematch/vector"
	"go.uber.org/zap"
)

const (
	overFetchExtra = 15
	overFetchMin   = 25
)

// overFetch returns how many candidates to pull for k filtered results.
func overFetch(k int) int {
	if n := k + overFetchExtra; n > overFetchMin {
		return n
	}
	return overFetchMin
}

// Result is one ranked recommendation.
type Result struct {
	ID    int     `json:"movie_id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Engine owns one index and one catalog store. Position i of the store
// describes vector i of the index.
type Engine struct {
	embedder embedder.Embedder
	kind     index.Kind
	dim      int
	index    index.Index
	store    *catalog.Store
	logger   *zap.Logger
	metrics  *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger; the default discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *Metrics) Option { return func(e *Engine) { e.metrics = m } }

// WithIndexKind selects the index implementation; the default is flat.
func WithIndexKind(kind index.Kind) Option { return func(e *Engine) { e.kind = kind } }

// New returns an empty engine whose vectors have emb.Dimension() entries.
func New(emb embedder.Embedder, opts ...Option) (*Engine, error) {
	if emb == nil {
		return nil, fmt.Errorf("recommend: embedder is nil")
	}
	e := &Engine{
		embedder: emb,
		kind:     index.KindFlat,
		dim:      emb.Dimension(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dim <= 0 {
		return nil, fmt.Errorf("recommend: embedder %s reports dimension %d", emb.Name(), e.dim)
	}
	if err := e.Reset(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewIndex constructs an empty index of the given kind.
func NewIndex(kind index.Kind, dim int) (index.Index, error) {
	switch kind {
	case index.KindFlat, "":
		return flat.New(dim), nil
	case index.KindCover:
		return cover.New(dim), nil
	case index.KindChromem:
		idx, err := chromem.New(dim)
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("recommend: unknown index kind %q", kind)
	}
}

// Reset replaces the index and store with empty ones.
func (e *Engine) Reset() error {
	idx, err := NewIndex(e.kind, e.dim)
	if err != nil {
		return err
	}
	e.index = idx
	e.store = catalog.NewStore()
	e.metrics.setRecords(0)
	return nil
}

// Ready reports whether the index is loaded and holds at least one vector.
func (e *Engine) Ready() bool { return e.index != nil && e.index.Len() > 0 }

// Size returns the number of catalog records.
func (e *Engine) Size() int { return e.store.Len() }

// IDs returns the set of catalog ids, used by ingestion to skip known movies.
func (e *Engine) IDs() map[int]struct{} { return e.store.IDs() }

// Records returns a copy of the catalog in position order.
func (e *Engine) Records() []catalog.Record { return e.store.Records() }

func (e *Engine) encode(ctx context.Context, text string) ([]float32, error) {
	v, err := embedder.EmbedOne(ctx, e.embedder, text)
	if err != nil {
		return nil, err
	}
	return vector.Normalize(v), nil
}

func (e *Engine) result(position int, score float64) (Result, bool) {
	r, err := e.store.Get(position)
	if err != nil {
		return Result{}, false
	}
	return Result{ID: r.ID, Title: r.Title, Score: score}, true
}

// Recommend answers a free-text query. It over-fetches candidates so that
// guardrail and duplicate-title filtering still leave k results when
// possible, and returns fewer than k otherwise.
func (e *Engine) Recommend(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 || e.index == nil || e.store.Len() == 0 {
		return []Result{}, nil
	}
	defer e.metrics.observeQuery(ModeText, time.Now())

	q, err := e.encode(ctx, query)
	if err != nil {
		return nil, err
	}
	matches, err := e.index.Search(q, overFetch(k))
	if err != nil {
		return nil, err
	}
	banned := guardrail.BannedCategories(query)
	if len(banned) > 0 {
		e.logger.Debug("guardrails active", zap.String("query", query), zap.Strings("banned", banned))
	}

	results := make([]Result, 0, k)
	seen := make(map[string]struct{}, k)
	for _, m := range matches {
		r, err := e.store.Get(m.Position)
		if err != nil {
			continue
		}
		if category, ok := guardrail.IsBanned(r.Soup, banned); ok {
			e.logger.Debug("blocked candidate", zap.String("title", r.Title), zap.String("category", category))
			e.metrics.blockedCandidate(category)
			continue
		}
		if _, dup := seen[r.Title]; dup {
			continue
		}
		seen[r.Title] = struct{}{}
		results = append(results, Result{ID: r.ID, Title: r.Title, Score: m.Score})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// RecommendForProfile ranks the catalog against the mean embedding of the
// movies a user liked. Titles are matched by case-insensitive substring;
// unmatched titles are ignored. When nothing matches the result is empty.
// Profile queries skip guardrails.
func (e *Engine) RecommendForProfile(ctx context.Context, titles []string, k int) ([]Result, error) {
	if k <= 0 || e.index == nil || e.store.Len() == 0 {
		return []Result{}, nil
	}
	defer e.metrics.observeQuery(ModeProfile, time.Now())

	var soups []string
	for _, title := range titles {
		r, _, ok := e.store.FindByTitle(title)
		if !ok {
			e.logger.Debug("profile title not found", zap.String("title", title))
			continue
		}
		soups = append(soups, r.Soup)
	}
	if len(soups) == 0 {
		return []Result{}, nil
	}
	vectors, err := e.embedder.Embed(ctx, soups)
	if err != nil {
		return nil, err
	}
	mean, err := vector.Mean(vectors)
	if err != nil {
		return nil, err
	}
	matches, err := e.index.Search(vector.Normalize(mean), k)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		if r, ok := e.result(m.Position, m.Score); ok {
			results = append(results, r)
		}
	}
	return results, nil
}

// RecommendSimilar returns movies near the first movie whose title contains
// title, excluding that movie and repeated titles.
func (e *Engine) RecommendSimilar(ctx context.Context, title string, k int) ([]Result, error) {
	if !e.Ready() {
		return nil, ErrNotReady
	}
	if k <= 0 {
		return []Result{}, nil
	}
	defer e.metrics.observeQuery(ModeSimilar, time.Now())

	seed, pos, ok := e.store.FindByTitle(title)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	q, ok := e.index.Vector(pos)
	if !ok {
		return nil, fmt.Errorf("%w: %q has no vector", ErrNotFound, title)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := e.index.Search(q, overFetch(k+1))
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, k)
	seen := map[string]struct{}{seed.Title: {}}
	for _, m := range matches {
		if m.Position == pos {
			continue
		}
		r, ok := e.result(m.Position, m.Score)
		if !ok {
			continue
		}
		if _, dup := seen[r.Title]; dup {
			continue
		}
		seen[r.Title] = struct{}{}
		results = append(results, r)
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// VibeQuery builds query text from tags and a free-form description. Tags
// are repeated to weight them over the description.
func VibeQuery(tags []string, description string) (string, error) {
	joined := strings.Join(tags, " ")
	q := strings.TrimSpace(joined + " " + joined + " " + description)
	if q == "" {
		return "", ErrEmptyQuery
	}
	return q, nil
}

// AddRecord validates, embeds and appends one record. On error neither the
// index nor the store changes.
func (e *Engine) AddRecord(ctx context.Context, record catalog.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	v, err := e.encode(ctx, record.Soup)
	if err != nil {
		return fmt.Errorf("recommend: embed %d: %w", record.ID, err)
	}
	return e.insert(record, v)
}

func (e *Engine) insert(record catalog.Record, v []float32) error {
	if e.index == nil {
		if err := e.Reset(); err != nil {
			return err
		}
	}
	pos, err := e.index.Add(v)
	if err != nil {
		return fmt.Errorf("recommend: index %d: %w", record.ID, err)
	}
	if got := e.store.Append(record); got != pos {
		return fmt.Errorf("recommend: index position %d != catalog position %d", pos, got)
	}
	e.metrics.setRecords(e.store.Len())
	return nil
}

// AddRecords embeds records in one batch and appends them in order. It stops
// at the first invalid record or failed insert and returns how many were
// added.
func (e *Engine) AddRecords(ctx context.Context, records []catalog.Record) (int, error) {
	valid := len(records)
	var invalid error
	for i, r := range records {
		if err := r.Validate(); err != nil {
			valid, invalid = i, err
			break
		}
	}
	if valid > 0 {
		soups := make([]string, valid)
		for i := range soups {
			soups[i] = records[i].Soup
		}
		vectors, err := e.embedder.Embed(ctx, soups)
		if err != nil {
			return 0, fmt.Errorf("recommend: embed batch: %w", err)
		}
		if len(vectors) != valid {
			return 0, fmt.Errorf("%w: got %d vectors for %d records", embedder.ErrEmbeddingFailed, len(vectors), valid)
		}
		for i := 0; i < valid; i++ {
			if err := e.insert(records[i], vector.Normalize(vectors[i])); err != nil {
				return i, err
			}
		}
	}
	return valid, invalid
}
