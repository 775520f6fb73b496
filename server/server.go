// Package server exposes the recommendation engine over HTTP with echo.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/viant/cinematch/ingest"
	"github.com/viant/cinematch/recommend"
	"go.uber.org/zap"
)

// Updater runs one ingestion pass against the snapshot directory.
type Updater func(ctx context.Context) (ingest.Report, error)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
	// StoreDir is the snapshot directory reloaded after an update.
	StoreDir string
}

// Server serves queries from one engine. Queries hold a read lock; reloading
// the snapshot after an update holds the write lock.
type Server struct {
	echo     *echo.Echo
	mu       sync.RWMutex
	engine   *recommend.Engine
	config   Config
	logger   *zap.Logger
	updater  Updater
	gatherer prometheus.Gatherer
	updating atomic.Bool
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithUpdater enables POST /admin/trigger-update.
func WithUpdater(u Updater) Option { return func(s *Server) { s.updater = u } }

// WithGatherer serves the gatherer's metrics at /metrics.
func WithGatherer(g prometheus.Gatherer) Option { return func(s *Server) { s.gatherer = g } }

type requestValidator struct {
	v *validator.Validate
}

func (r *requestValidator) Validate(i interface{}) error { return r.v.Struct(i) }

// New builds a server around engine.
func New(engine *recommend.Engine, cfg Config, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("server: engine cannot be nil")
	}
	s := &Server{
		engine:   engine,
		config:   cfg,
		logger:   zap.NewNop(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: validator.New(validator.WithRequiredStructEnabled())}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			s.logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	})
	s.echo = e
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleHealth)
	s.echo.POST("/search", s.handleSearch)
	s.echo.POST("/recommend/vibe", s.handleVibe)
	s.echo.POST("/recommend/user", s.handleUser)
	s.echo.GET("/recommend/movie/:title", s.handleMovie)
	s.echo.POST("/admin/trigger-update", s.handleTriggerUpdate)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// TriggerUpdate starts a background update followed by a snapshot reload.
// It returns false when no updater is configured or one is already running.
func (s *Server) TriggerUpdate() bool {
	if s.updater == nil || !s.updating.CompareAndSwap(false, true) {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.updating.Store(false)
		report, err := s.updater(s.ctx)
		if err != nil {
			// the snapshot on disk is whatever the last successful persist left
			s.logger.Error("update failed, keeping current snapshot", zap.String("run_id", report.RunID), zap.Int("added", report.Added), zap.Error(err))
			return
		}
		s.logger.Info("update finished", zap.String("run_id", report.RunID), zap.Int("added", report.Added))
		if report.Added == 0 {
			return
		}
		if err := s.Reload(s.ctx); err != nil {
			s.logger.Error("reload after update failed", zap.Error(err))
		}
	}()
	return true
}

// Reload restores the engine from the snapshot directory under the write lock.
func (s *Server) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Restore(ctx, s.config.StoreDir); err != nil {
		return err
	}
	s.logger.Info("snapshot reloaded", zap.Int("size", s.engine.Size()))
	return nil
}

// Start serves until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests, cancels a running update and waits for it.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	s.cancel()
	err := s.echo.Shutdown(ctx)
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return err
}
