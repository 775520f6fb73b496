package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/embedder"
	"github.com/viant/cinematch/recommend"
	"github.com/viant/cinematch/vector"
)

var (
	queryK       int
	queryProfile bool
	querySimilar bool
	querySQL     bool
	queryMetric  string
)

var queryCmd = &cobra.Command{
	Use:   "query [text | titles...]",
	Short: "Run a recommendation query against the snapshot",
	Long: `Run a query against the snapshot in store.dir. By default the
arguments form one free-text query. --profile treats each argument as a
liked title, --similar finds movies like the given title, and --sql ranks
inside catalog.db with vec_dot, vec_cosine or vec_l2 (--metric) instead of
the in-memory index.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		ctx := cmd.Context()
		out := json.NewEncoder(cmd.OutOrStdout())
		out.SetIndent("", "  ")

		if querySQL {
			metric, err := catalog.ParseMetric(queryMetric)
			if err != nil {
				return err
			}
			q, err := embedder.EmbedOne(ctx, a.embedder, strings.Join(args, " "))
			if err != nil {
				return err
			}
			db, err := catalog.Open(filepath.Join(a.cfg.Store.Dir, recommend.CatalogFile))
			if err != nil {
				return err
			}
			defer db.Close()
			hits, err := catalog.Nearest(ctx, db, metric, vector.Normalize(q), queryK)
			if err != nil {
				return err
			}
			return out.Encode(hits)
		}

		engine, err := a.newEngine(nil)
		if err != nil {
			return err
		}
		if err := engine.Restore(ctx, a.cfg.Store.Dir); err != nil {
			return err
		}
		if !engine.Ready() {
			return fmt.Errorf("%w: no snapshot in %s", recommend.ErrNotReady, a.cfg.Store.Dir)
		}
		var results []recommend.Result
		switch {
		case queryProfile:
			results, err = engine.RecommendForProfile(ctx, args, queryK)
		case querySimilar:
			results, err = engine.RecommendSimilar(ctx, strings.Join(args, " "), queryK)
		default:
			results, err = engine.Recommend(ctx, strings.Join(args, " "), queryK)
		}
		if err != nil {
			return err
		}
		return out.Encode(results)
	},
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "k", "k", 10, "number of results")
	queryCmd.Flags().BoolVar(&queryProfile, "profile", false, "treat arguments as liked titles")
	queryCmd.Flags().BoolVar(&querySimilar, "similar", false, "find movies similar to the title")
	queryCmd.Flags().BoolVar(&querySQL, "sql", false, "rank inside SQLite instead of the in-memory index")
	queryCmd.Flags().StringVar(&queryMetric, "metric", "dot", "SQL ranking metric with --sql: dot, cosine or l2")
	queryCmd.MarkFlagsMutuallyExclusive("profile", "similar", "sql")
}
