package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/playlist-scraper/pkg/logger"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored records of a run as JSON lines",
		Long: `Export prints every record stored for --run-id, one JSON object per line,
in the order the records were emitted. With --failed the requests that
exhausted their attempts are printed instead.`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().String("run-id", "", "Run to export (printed in the run summary)")
	cmd.Flags().Bool("failed", false, "Export failed requests instead of records")
	cmd.Flags().String("postgres-url", "", "PostgreSQL connection string for results")
	cmd.Flags().String("dataset", "./storage/dataset.db", "SQLite dataset file used when no PostgreSQL is set")

	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	runID, _ := cmd.Flags().GetString("run-id")
	if runID == "" {
		return errors.New("--run-id is required")
	}
	failedOnly, _ := cmd.Flags().GetBool("failed")

	cfg, err := readConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	log, err := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	b := newBackends()
	defer b.Close()
	if err := b.openSinks(ctx, cfg, log); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if failedOnly {
		failed, err := b.failedRepo.ListByRun(ctx, runID)
		if err != nil {
			return fmt.Errorf("failed to list failed requests: %w", err)
		}
		for _, f := range failed {
			if err := enc.Encode(f); err != nil {
				return err
			}
		}
		return nil
	}

	records, err := b.resultRepo.ListByRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to list results: %w", err)
	}
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
