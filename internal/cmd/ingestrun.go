package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prose66/InvestigationWorkbench/internal/config"
	"github.com/prose66/InvestigationWorkbench/internal/database"
	"github.com/prose66/InvestigationWorkbench/internal/ingest"
	"github.com/prose66/InvestigationWorkbench/internal/mapper"
)

var (
	ingestSkipErrors bool
	ingestLenient    bool
	ingestVerbose    bool
)

var ingestRunCmd = &cobra.Command{
	Use:   "ingest-run <case-id> <run-id>",
	Short: "Normalize and persist one registered run",
	Long: `Ingest one pending run: resolve the mapper for its source system,
translate every row into the unified event schema, and persist events in
batches. Without --skip-errors the first bad row aborts the run; rows already
committed stay committed and re-ingesting is duplicate-safe.`,
	Args: cobra.ExactArgs(2),
	RunE: runIngestRun,
}

var ingestAllCmd = &cobra.Command{
	Use:   "ingest-all <case-id>",
	Short: "Ingest every pending run for a case",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestAll,
}

func init() {
	for _, c := range []*cobra.Command{ingestRunCmd, ingestAllCmd} {
		c.Flags().BoolVar(&ingestSkipErrors, "skip-errors", false, "skip bad rows instead of aborting")
		c.Flags().BoolVar(&ingestLenient, "lenient", false, "relax validation to the minimal required fields")
		c.Flags().BoolVarP(&ingestVerbose, "verbose", "v", false, "print per-row errors in the report")
		rootCmd.AddCommand(c)
	}
}

func newRunner(cfg *config.Config, caseID string) (*ingest.Runner, database.Store, error) {
	layout := layoutFor(cfg)
	db, err := layout.OpenStore(caseID, cfg.Driver, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return &ingest.Runner{
		Store:      db,
		Resolver:   &mapper.Resolver{},
		Log:        logger,
		CaseDir:    layout.CaseDir(caseID),
		SkipErrors: ingestSkipErrors,
		Lenient:    ingestLenient,
	}, db, nil
}

func runIngestRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caseID, runID := args[0], args[1]

	runner, db, err := newRunner(cfg, caseID)
	if err != nil {
		return err
	}
	defer db.Close()
	defer runner.Log.Sync()

	result, err := runner.IngestRun(caseID, runID)
	if result != nil {
		printReport(result)
	}
	return err
}

func runIngestAll(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caseID := args[0]

	runner, db, err := newRunner(cfg, caseID)
	if err != nil {
		return err
	}
	defer db.Close()
	defer runner.Log.Sync()

	results, err := runner.IngestAll(caseID)
	for _, result := range results {
		printReport(result)
	}
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No pending runs.")
	}
	return nil
}

func printReport(result *ingest.IngestResult) {
	for _, line := range ingest.FormatReport(result, ingestVerbose) {
		fmt.Println(line)
	}
}
