package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/viant/cinematch/ingest"
	"go.uber.org/zap"
)

var (
	csvPath   string
	batchSize int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a fresh snapshot from movies_metadata.csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		ctx := cmd.Context()

		f, err := os.Open(csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		records, stats, err := ingest.LoadCSV(f)
		if err != nil {
			return err
		}
		a.logger.Info("csv loaded", zap.Int("rows", stats.Rows), zap.Int("loaded", stats.Loaded), zap.Int("dropped", stats.Dropped))

		engine, err := a.newEngine(nil)
		if err != nil {
			return err
		}
		for start := 0; start < len(records); start += batchSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			end := start + batchSize
			if end > len(records) {
				end = len(records)
			}
			if _, err := engine.AddRecords(ctx, records[start:end]); err != nil {
				return fmt.Errorf("batch at %d: %w", start, err)
			}
			a.logger.Info("embedded", zap.Int("done", end), zap.Int("total", len(records)))
		}
		if err := engine.Persist(ctx, a.cfg.Store.Dir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "built %d movies into %s\n", engine.Size(), a.cfg.Store.Dir)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&csvPath, "csv", "movies_metadata.csv", "path to the movies metadata CSV")
	buildCmd.Flags().IntVar(&batchSize, "batch", 256, "records embedded per batch")
}
