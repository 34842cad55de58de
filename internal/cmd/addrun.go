package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prose66/InvestigationWorkbench/internal/casefile"
	"github.com/prose66/InvestigationWorkbench/internal/ingest"
)

var (
	addRunSource    string
	addRunQuery     string
	addRunQueryText string
	addRunExecuted  string
	addRunStart     string
	addRunEnd       string
	addRunAllowDup  bool
)

var addRunCmd = &cobra.Command{
	Use:   "add-run <case-id> <file>",
	Short: "Register a query-result export against a case",
	Long: `Register an export file as a query run: hash it, archive a copy under
the case's raw directory, and record the run as pending ingestion. A file whose
content was already registered for the case is refused unless
--allow-duplicate is set.`,
	Args: cobra.ExactArgs(2),
	RunE: runAddRun,
}

func init() {
	addRunCmd.Flags().StringVar(&addRunSource, "source", "", "source system (splunk, kusto, cloudtrail, okta, ...)")
	addRunCmd.Flags().StringVar(&addRunQuery, "query-name", "", "short name for the query")
	addRunCmd.Flags().StringVar(&addRunQueryText, "query-text", "", "full query text")
	addRunCmd.Flags().StringVar(&addRunExecuted, "executed-at", "", "when the query was executed (ISO-8601)")
	addRunCmd.Flags().StringVar(&addRunStart, "time-start", "", "query window start (ISO-8601)")
	addRunCmd.Flags().StringVar(&addRunEnd, "time-end", "", "query window end (ISO-8601)")
	addRunCmd.Flags().BoolVar(&addRunAllowDup, "allow-duplicate", false, "register even if this file content was already added")
	_ = addRunCmd.MarkFlagRequired("source")
	_ = addRunCmd.MarkFlagRequired("query-name")
	rootCmd.AddCommand(addRunCmd)
}

func runAddRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caseID, filePath := args[0], args[1]

	layout := layoutFor(cfg)
	db, err := layout.OpenStore(caseID, cfg.Driver, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	meta := casefile.RunMeta{
		SourceSystem: addRunSource,
		QueryName:    addRunQuery,
		QueryText:    addRunQueryText,
		ExecutedAt:   addRunExecuted,
		TimeStart:    addRunStart,
		TimeEnd:      addRunEnd,
	}

	run, err := casefile.AddRun(layout, db, caseID, filePath, meta, addRunAllowDup)
	var dup *ingest.DuplicateInputError
	if errors.As(err, &dup) {
		return dup
	}
	if err != nil {
		return fmt.Errorf("adding run: %w", err)
	}

	fmt.Printf("Registered run %s (%s / %s)\n", run.RunID, run.SourceSystem, run.QueryName)
	fmt.Printf("Archived to %s\n", run.RawPath)
	return nil
}
