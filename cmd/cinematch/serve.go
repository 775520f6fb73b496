package main

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/viant/cinematch/ingest"
	"github.com/viant/cinematch/recommend"
	"github.com/viant/cinematch/server"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Restore the snapshot from store.dir and serve the HTTP API. When
tmdb.api_key is set, POST /admin/trigger-update runs an ingestion pass and
tmdb.schedule (cron syntax) runs it periodically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return runServe(cmd.Context(), a)
	},
}

func runServe(ctx context.Context, a *app) error {
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engine, err := a.newEngine(recommend.NewMetrics(a.registry))
	if err != nil {
		return err
	}
	if err := engine.Restore(ctx, a.cfg.Store.Dir); err != nil {
		a.logger.Error("snapshot restore failed, serving empty", zap.Error(err))
	}

	opts := []server.Option{server.WithLogger(a.logger), server.WithGatherer(a.registry)}
	updater, err := a.updater()
	switch {
	case err == nil:
		opts = append(opts, server.WithUpdater(updater))
	case errors.Is(err, ingest.ErrNoAPIKey):
		a.logger.Warn("tmdb api key not set, updates disabled")
	default:
		return err
	}

	srv, err := server.New(engine, server.Config{
		Host:     a.cfg.Server.Host,
		Port:     a.cfg.Server.Port,
		StoreDir: a.cfg.Store.Dir,
	}, opts...)
	if err != nil {
		return err
	}

	if updater != nil && a.cfg.TMDB.Schedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(a.cfg.TMDB.Schedule, func() {
			if !srv.TriggerUpdate() {
				a.logger.Info("scheduled update skipped, one is already running")
			}
		}); err != nil {
			return err
		}
		c.Start()
		defer c.Stop()
		a.logger.Info("scheduled updates enabled", zap.String("schedule", a.cfg.TMDB.Schedule))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// updater returns an ingestion pass that runs on its own engine, so the
// serving engine is only touched by the reload that follows.
func (a *app) updater() (server.Updater, error) {
	client, err := a.tmdbClient()
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (ingest.Report, error) {
		worker, err := a.newEngine(nil)
		if err != nil {
			return ingest.Report{}, err
		}
		return ingest.NewRunner(client, worker, a.cfg.TMDB.Limit, a.logger).Run(ctx, a.cfg.Store.Dir)
	}, nil
}

func (a *app) tmdbClient() (*ingest.TMDB, error) {
	return ingest.NewTMDB(ingest.TMDBConfig{
		APIKey:            a.cfg.TMDB.APIKey,
		BaseURL:           a.cfg.TMDB.BaseURL,
		RequestsPerSecond: a.cfg.TMDB.RequestsPerSecond,
	}, a.logger)
}
