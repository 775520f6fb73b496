package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTMDBBaseURL is the public TMDB v3 API.
	DefaultTMDBBaseURL = "https://api.themoviedb.org/3"
	pageSize           = 20
)

// ErrNoAPIKey is returned when the TMDB client has no API key.
var ErrNoAPIKey = errors.New("ingest: tmdb api key not set")

// Movie is the subset of a TMDB list entry used for ingestion.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	GenreIDs    []int   `json:"genre_ids"`
	VoteAverage float64 `json:"vote_average"`
}

// TMDBConfig configures the TMDB client.
type TMDBConfig struct {
	APIKey            string
	BaseURL           string
	RequestsPerSecond float64
	Timeout           time.Duration
	// FailureThreshold is the number of consecutive failures that opens the
	// circuit breaker.
	FailureThreshold uint32
}

// TMDB is a rate-limited TMDB API client guarded by a circuit breaker.
type TMDB struct {
	cfg     TMDBConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

// NewTMDB builds a client. logger may be nil.
func NewTMDB(cfg TMDBConfig, logger *zap.Logger) (*TMDB, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTMDBBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 20
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &TMDB{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return c, nil
}

func (c *TMDB) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.cfg.APIKey)
	params.Set("language", "en-US")
	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("tmdb %s: status %d", path, resp.StatusCode)
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("tmdb %s: decode: %w", path, err)
	}
	return nil
}

// GenreMap returns TMDB genre ids mapped to names.
func (c *TMDB) GenreMap(ctx context.Context) (map[int]string, error) {
	var resp struct {
		Genres []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", nil, &resp); err != nil {
		return nil, err
	}
	genres := make(map[int]string, len(resp.Genres))
	for _, g := range resp.Genres {
		genres[g.ID] = g.Name
	}
	return genres, nil
}

// Popular returns up to limit currently popular movies. Failed pages are
// logged and skipped; only a cancelled context aborts the walk.
func (c *TMDB) Popular(ctx context.Context, limit int) ([]Movie, error) {
	if limit <= 0 {
		return nil, nil
	}
	pages := limit/pageSize + 1
	movies := make([]Movie, 0, limit)
	for page := 1; page <= pages; page++ {
		var resp struct {
			Results []Movie `json:"results"`
		}
		params := url.Values{"page": {strconv.Itoa(page)}}
		if err := c.get(ctx, "/movie/popular", params, &resp); err != nil {
			if ctx.Err() != nil {
				return movies, ctx.Err()
			}
			c.logger.Warn("popular page failed", zap.Int("page", page), zap.Error(err))
			continue
		}
		movies = append(movies, resp.Results...)
		if len(movies) >= limit {
			break
		}
	}
	if len(movies) > limit {
		movies = movies[:limit]
	}
	return movies, nil
}
