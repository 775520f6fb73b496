package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/viant/cinematch/recommend"
	"go.uber.org/zap"
)

const (
	defaultK = 10
	maxK     = 100
)

// HealthResponse is the body of GET /.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Size        int    `json:"size"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	K     int    `json:"k" validate:"gte=1,lte=100"`
}

// VibeRequest is the body of POST /recommend/vibe.
type VibeRequest struct {
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	K           int      `json:"k" validate:"gte=1,lte=100"`
}

// VibeResponse is the body returned by POST /recommend/vibe.
type VibeResponse struct {
	InterpretedQuery string             `json:"interpreted_query"`
	Results          []recommend.Result `json:"results"`
}

// UserRequest is the body of POST /recommend/user.
type UserRequest struct {
	LikedMovies []string `json:"liked_movies" validate:"required,min=1"`
	K           int      `json:"k" validate:"gte=1,lte=100"`
}

func (s *Server) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func notReady() error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, "model not loaded")
}

func (s *Server) internalError(err error) error {
	s.logger.Error("request failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func (s *Server) handleHealth(c echo.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(http.StatusOK, HealthResponse{Status: "online", ModelLoaded: s.engine.Ready(), Size: s.engine.Size()})
}

func (s *Server) handleSearch(c echo.Context) error {
	req := SearchRequest{K: defaultK}
	if err := s.bind(c, &req); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.engine.Ready() {
		return notReady()
	}
	results, err := s.engine.Recommend(c.Request().Context(), req.Query, req.K)
	if err != nil {
		return s.internalError(err)
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleVibe(c echo.Context) error {
	req := VibeRequest{K: defaultK}
	if err := s.bind(c, &req); err != nil {
		return err
	}
	query, err := recommend.VibeQuery(req.Tags, req.Description)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "provide tags or a description")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.engine.Ready() {
		return notReady()
	}
	results, err := s.engine.Recommend(c.Request().Context(), query, req.K)
	if err != nil {
		return s.internalError(err)
	}
	return c.JSON(http.StatusOK, VibeResponse{InterpretedQuery: query, Results: results})
}

func (s *Server) handleUser(c echo.Context) error {
	req := UserRequest{K: defaultK}
	if err := s.bind(c, &req); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.engine.Ready() {
		return notReady()
	}
	results, err := s.engine.RecommendForProfile(c.Request().Context(), req.LikedMovies, req.K)
	if err != nil {
		return s.internalError(err)
	}
	if len(results) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "none of the liked movies were found")
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleMovie(c echo.Context) error {
	title, err := url.PathUnescape(c.Param("title"))
	if err != nil || title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid title")
	}
	k := defaultK
	if raw := c.QueryParam("k"); raw != "" {
		if k, err = strconv.Atoi(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "k must be an integer")
		}
	}
	if k < 1 || k > maxK {
		return echo.NewHTTPError(http.StatusBadRequest, "k must be between 1 and 100")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	results, err := s.engine.RecommendSimilar(c.Request().Context(), title, k)
	switch {
	case errors.Is(err, recommend.ErrNotReady):
		return notReady()
	case errors.Is(err, recommend.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "movie not found")
	case err != nil:
		return s.internalError(err)
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleTriggerUpdate(c echo.Context) error {
	if s.updater == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "updates are not configured")
	}
	if !s.TriggerUpdate() {
		return echo.NewHTTPError(http.StatusConflict, "update already running")
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "update started"})
}
