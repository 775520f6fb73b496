package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/viant/cinematch/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add newly popular TMDB movies to the snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		client, err := a.tmdbClient()
		if err != nil {
			return err
		}
		engine, err := a.newEngine(nil)
		if err != nil {
			return err
		}
		report, err := ingest.NewRunner(client, engine, a.cfg.TMDB.Limit, a.logger).Run(cmd.Context(), a.cfg.Store.Dir)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}
