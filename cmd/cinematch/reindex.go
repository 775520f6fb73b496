package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild movie_index.bin from the embeddings stored in catalog.db",
	Long: `Rebuild the index artifact with the configured index.kind from the
embedding column of catalog.db. No text is re-embedded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		engine, err := a.newEngine(nil)
		if err != nil {
			return err
		}
		n, err := engine.Reindex(cmd.Context(), a.cfg.Store.Dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d vectors (%s) in %s\n", n, a.cfg.Index.Kind, a.cfg.Store.Dir)
		return nil
	},
}
