package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/viant/cinematch/config"
	"github.com/viant/cinematch/embedder"
	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/internal/logging"
	"github.com/viant/cinematch/recommend"
	"go.uber.org/zap"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cinematch",
	Short: "Semantic movie recommendations",
	Long: `cinematch answers free-text and taste-profile movie queries by
nearest-neighbor search over sentence embeddings, with content guardrails
applied to free-text results.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "cinematch.yaml", "config file (YAML); CINEMATCH_* env vars override it")
	rootCmd.AddCommand(serveCmd, buildCmd, ingestCmd, queryCmd, reindexCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app bundles the pieces every command needs.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	embedder embedder.Embedder
	registry *prometheus.Registry
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedder.Provider,
		Model:     cfg.Embedder.Model,
		CacheDir:  cfg.Embedder.CacheDir,
		BaseURL:   cfg.Embedder.BaseURL,
		Dimension: cfg.Embedder.Dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	logger.Info("embedder ready", zap.String("name", emb.Name()), zap.Int("dimension", emb.Dimension()))
	return &app{cfg: cfg, logger: logger, embedder: emb, registry: prometheus.NewRegistry()}, nil
}

// newEngine builds an empty engine; metrics are attached only when m is non-nil.
func (a *app) newEngine(m *recommend.Metrics) (*recommend.Engine, error) {
	kind, err := index.ParseKind(a.cfg.Index.Kind)
	if err != nil {
		return nil, err
	}
	opts := []recommend.Option{recommend.WithLogger(a.logger), recommend.WithIndexKind(kind)}
	if m != nil {
		opts = append(opts, recommend.WithMetrics(m))
	}
	return recommend.New(a.embedder, opts...)
}

func (a *app) close() {
	if err := embedder.Close(a.embedder); err != nil {
		a.logger.Warn("closing embedder", zap.Error(err))
	}
	_ = a.logger.Sync()
}
